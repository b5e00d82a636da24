// Package coords parses operator-supplied coordinate strings into the
// engine's decimal geo.Location, so a waypoint fed to simulate_trip or a
// replay recording can be typed in whatever format is at hand instead of
// requiring pre-converted decimal degrees.
//
// Supported formats, tried in order of specificity:
//   - MGRS: Military Grid Reference System (e.g. "47QNB8598697460")
//   - UTM: zone + band + easting + northing (e.g. "47N 485986 2197460")
//   - DMS: degrees/minutes/seconds with hemisphere (e.g. `60°32'05"N 149°32'36"W`)
//   - Decimal degrees: "60.534716, -149.543469"
package coords

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/akhenakh/mgrs"
)

// Format names a recognized coordinate notation.
type Format string

const (
	FormatUnknown Format = "unknown"
	FormatDecimal Format = "decimal"
	FormatDMS     Format = "dms"
	FormatMGRS    Format = "mgrs"
	FormatUTM     Format = "utm"
)

var (
	mgrsPattern = regexp.MustCompile(`(?i)^(\d{1,2})([C-HJ-NP-X])([A-HJ-NP-Z]{2})(\d{2,10})$`)
	utmPattern  = regexp.MustCompile(`(?i)^(\d{1,2})([C-HJ-NP-X])\s+(\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)$`)
	dmsPattern  = regexp.MustCompile(`(?i)^(\d+)[°d\s]+(\d+)[′'m\s]+(\d+(?:\.\d+)?)[″"s]?\s*([NS])[\s,]+(\d+)[°d\s]+(\d+)[′'m\s]+(\d+(?:\.\d+)?)[″"s]?\s*([EW])$`)
	ddPattern   = regexp.MustCompile(`^(-?\d+\.?\d*)[,\s]+(-?\d+\.?\d*)$`)
)

// parsers associates each format with its matcher and converter, ordered
// most-specific first so "60 149" never shadows a grid reference.
var parsers = []struct {
	format  Format
	pattern *regexp.Regexp
	parse   func(string) (geo.Location, error)
}{
	{FormatMGRS, mgrsPattern, parseMGRS},
	{FormatUTM, utmPattern, parseUTM},
	{FormatDMS, dmsPattern, parseDMS},
	{FormatDecimal, ddPattern, parseDecimal},
}

// ParseLocation detects the notation of input and converts it to a decimal
// geo.Location. The detected Format is returned alongside so callers can
// echo it back to the operator.
func ParseLocation(input string) (geo.Location, Format, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return geo.Location{}, FormatUnknown, fmt.Errorf("empty coordinate string")
	}
	for _, p := range parsers {
		if !p.pattern.MatchString(input) {
			continue
		}
		loc, err := p.parse(input)
		if err != nil {
			return geo.Location{}, p.format, err
		}
		if !loc.Valid() {
			return geo.Location{}, p.format, fmt.Errorf("%s conversion out of range: lat=%f, lng=%f", p.format, loc.Latitude, loc.Longitude)
		}
		return loc, p.format, nil
	}
	return geo.Location{}, FormatUnknown, fmt.Errorf("unrecognized coordinate format: %q", input)
}

// ParseLocationList parses a semicolon- or newline-separated sequence of
// coordinate strings, e.g. a waypoint list pasted into a tool argument.
// Blank entries are skipped; the first entry that fails aborts the parse.
func ParseLocationList(input string) ([]geo.Location, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ';' || r == '\n'
	})
	var out []geo.Location
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		loc, _, err := ParseLocation(f)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", len(out)+1, err)
		}
		out = append(out, loc)
	}
	return out, nil
}

// Detect reports the notation input appears to be in, without converting.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	for _, p := range parsers {
		if p.pattern.MatchString(input) {
			return p.format
		}
	}
	return FormatUnknown
}

// ToMGRS renders loc as an MGRS string. precision runs 1-5 for 10km down
// to 1m; out-of-range values fall back to 1m.
func ToMGRS(loc geo.Location, precision int) (string, error) {
	if precision < 1 || precision > 5 {
		precision = 5
	}
	if !loc.Valid() {
		return "", fmt.Errorf("coordinates out of range: lat=%f, lng=%f", loc.Latitude, loc.Longitude)
	}
	return mgrs.LatLngToMGRS(loc.Latitude, loc.Longitude, precision)
}

func parseMGRS(input string) (geo.Location, error) {
	lat, lng, err := mgrs.MGRSToLatLng(strings.ToUpper(strings.TrimSpace(input)))
	if err != nil {
		return geo.Location{}, fmt.Errorf("MGRS conversion failed: %w", err)
	}
	return geo.Location{Latitude: lat, Longitude: lng}, nil
}

func parseUTM(input string) (geo.Location, error) {
	m := utmPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(input)))
	if m == nil {
		return geo.Location{}, fmt.Errorf("invalid UTM format: %q", input)
	}
	zone, err := strconv.Atoi(m[1])
	if err != nil || zone < 1 || zone > 60 {
		return geo.Location{}, fmt.Errorf("invalid UTM zone: %s", m[1])
	}
	easting, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return geo.Location{}, fmt.Errorf("invalid UTM easting: %s", m[3])
	}
	northing, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return geo.Location{}, fmt.Errorf("invalid UTM northing: %s", m[4])
	}
	// Latitude bands C-M lie south of the equator, N-X north of it.
	return utmToLatLng(zone, easting, northing, m[2][0] >= 'N'), nil
}

func parseDMS(input string) (geo.Location, error) {
	m := dmsPattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return geo.Location{}, fmt.Errorf("invalid DMS format: %q", input)
	}
	lat, err := dmsToDecimal(m[1], m[2], m[3], 90)
	if err != nil {
		return geo.Location{}, fmt.Errorf("invalid latitude in %q: %w", input, err)
	}
	lng, err := dmsToDecimal(m[5], m[6], m[7], 180)
	if err != nil {
		return geo.Location{}, fmt.Errorf("invalid longitude in %q: %w", input, err)
	}
	if strings.EqualFold(m[4], "S") {
		lat = -lat
	}
	if strings.EqualFold(m[8], "W") {
		lng = -lng
	}
	return geo.Location{Latitude: lat, Longitude: lng}, nil
}

func dmsToDecimal(degStr, minStr, secStr string, maxDeg float64) (float64, error) {
	deg, _ := strconv.ParseFloat(degStr, 64)
	min, _ := strconv.ParseFloat(minStr, 64)
	sec, _ := strconv.ParseFloat(secStr, 64)
	if deg > maxDeg || min >= 60 || sec >= 60 {
		return 0, fmt.Errorf("component out of range: %s° %s' %s\"", degStr, minStr, secStr)
	}
	return deg + min/60 + sec/3600, nil
}

func parseDecimal(input string) (geo.Location, error) {
	m := ddPattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return geo.Location{}, fmt.Errorf("invalid decimal format: %q", input)
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return geo.Location{}, fmt.Errorf("invalid latitude: %s", m[1])
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return geo.Location{}, fmt.Errorf("invalid longitude: %s", m[2])
	}
	return geo.Location{Latitude: lat, Longitude: lng}, nil
}

// utmToLatLng inverts the transverse Mercator projection on the WGS84
// ellipsoid (standard series expansion about the footpoint latitude).
func utmToLatLng(zone int, easting, northing float64, northern bool) geo.Location {
	const (
		a  = 6378137.0         // semi-major axis (m)
		f  = 1 / 298.257223563 // flattening
		k0 = 0.9996            // central scale factor
	)
	b := a * (1 - f)
	e2 := (a*a - b*b) / (a * a)
	ep2 := (a*a - b*b) / (b * b)
	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))

	x := easting - 500000.0
	y := northing
	if !northern {
		y -= 10000000.0
	}
	lng0 := float64((zone-1)*6-180+3) * math.Pi / 180

	// Footpoint latitude from the meridional arc.
	mu := y / k0 / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sin1, cos1, tan1 := math.Sin(phi1), math.Cos(phi1), math.Tan(phi1)
	n1 := a / math.Sqrt(1-e2*sin1*sin1)
	t1 := tan1 * tan1
	c1 := ep2 * cos1 * cos1
	r1 := a * (1 - e2) / math.Pow(1-e2*sin1*sin1, 1.5)
	d := x / (n1 * k0)

	lat := phi1 - (n1*tan1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*d*d*d*d/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d*d*d*d*d*d/720)
	lng := lng0 + (d-
		(1+2*t1+c1)*d*d*d/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d*d*d*d*d/120)/cos1

	return geo.Location{
		Latitude:  lat * 180 / math.Pi,
		Longitude: lng * 180 / math.Pi,
	}
}
