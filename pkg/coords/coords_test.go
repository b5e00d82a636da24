package coords

import (
	"math"
	"strings"
	"testing"

	"github.com/NERVsystems/navengine/pkg/geo"
)

// closeTo reports whether got is within tol degrees of want.
func closeTo(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestParseLocationDecimal(t *testing.T) {
	tests := []struct {
		input    string
		lat, lng float64
	}{
		{"60.534716, -149.543469", 60.534716, -149.543469},
		{"60.534716 -149.543469", 60.534716, -149.543469},
		{"-33.8688, 151.2093", -33.8688, 151.2093},
		{"0, 0", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			loc, format, err := ParseLocation(tt.input)
			if err != nil {
				t.Fatalf("ParseLocation(%q): %v", tt.input, err)
			}
			if format != FormatDecimal {
				t.Errorf("format = %s, want decimal", format)
			}
			if loc.Latitude != tt.lat || loc.Longitude != tt.lng {
				t.Errorf("got (%f, %f), want (%f, %f)", loc.Latitude, loc.Longitude, tt.lat, tt.lng)
			}
		})
	}
}

func TestParseLocationDMS(t *testing.T) {
	tests := []struct {
		input    string
		lat, lng float64
	}{
		// The trailhead of the two-step Seward Highway test route.
		{`60°32'05"N 149°32'36"W`, 60.534722, -149.543333},
		{`19d51m22sN 99d48m59sE`, 19.856111, 99.816389},
		{`33°52'08"S 151°12'33"E`, -33.868889, 151.209167},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			loc, format, err := ParseLocation(tt.input)
			if err != nil {
				t.Fatalf("ParseLocation(%q): %v", tt.input, err)
			}
			if format != FormatDMS {
				t.Errorf("format = %s, want dms", format)
			}
			if !closeTo(loc.Latitude, tt.lat, 1e-4) || !closeTo(loc.Longitude, tt.lng, 1e-4) {
				t.Errorf("got (%f, %f), want (%f, %f)", loc.Latitude, loc.Longitude, tt.lat, tt.lng)
			}
		})
	}
}

func TestParseLocationUTM(t *testing.T) {
	loc, format, err := ParseLocation("47Q 585437 2195753")
	if err != nil {
		t.Fatalf("ParseLocation: %v", err)
	}
	if format != FormatUTM {
		t.Errorf("format = %s, want utm", format)
	}
	if !closeTo(loc.Latitude, 19.856, 0.01) || !closeTo(loc.Longitude, 99.816, 0.01) {
		t.Errorf("got (%f, %f), want (~19.856, ~99.816)", loc.Latitude, loc.Longitude)
	}
}

func TestParseLocationUTMSouthernHemisphere(t *testing.T) {
	// Band H is south of the equator; the inverse projection must remove
	// the 10,000 km false northing.
	loc, _, err := ParseLocation("56H 334369 6250948")
	if err != nil {
		t.Fatalf("ParseLocation: %v", err)
	}
	if loc.Latitude >= 0 {
		t.Errorf("latitude = %f, want southern hemisphere", loc.Latitude)
	}
	if !closeTo(loc.Latitude, -33.87, 0.05) || !closeTo(loc.Longitude, 151.21, 0.05) {
		t.Errorf("got (%f, %f), want (~-33.87, ~151.21)", loc.Latitude, loc.Longitude)
	}
}

func TestParseLocationMGRSRoundTrip(t *testing.T) {
	// Render known locations as MGRS and parse them back; 1m precision
	// should land within ~2m of the original.
	locations := []geo.Location{
		{Latitude: 60.534716, Longitude: -149.543469},
		{Latitude: 19.856, Longitude: 99.816},
		{Latitude: -33.8688, Longitude: 151.2093},
	}
	for _, orig := range locations {
		ref, err := ToMGRS(orig, 5)
		if err != nil {
			t.Fatalf("ToMGRS(%v): %v", orig, err)
		}
		parsed, format, err := ParseLocation(ref)
		if err != nil {
			t.Fatalf("ParseLocation(%q): %v", ref, err)
		}
		if format != FormatMGRS {
			t.Errorf("format = %s, want mgrs", format)
		}
		if dist := geo.Haversine(orig, parsed); dist > 2.0 {
			t.Errorf("round trip through %q moved %.1fm", ref, dist)
		}
	}
}

func TestParseLocationRejectsGarbage(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"not a coordinate",
		"91.0, 0.0",          // latitude out of range
		"0.0, 181.0",         // longitude out of range
		"61N 485986 2197460", // zone 61 does not exist
	} {
		if _, _, err := ParseLocation(input); err == nil {
			t.Errorf("ParseLocation(%q) succeeded, want error", input)
		}
	}
}

func TestParseLocationDMSComponentRange(t *testing.T) {
	for _, input := range []string{
		`60°61'05"N 149°32'36"W`, // minutes >= 60
		`60°32'75"N 149°32'36"W`, // seconds >= 60
	} {
		if _, _, err := ParseLocation(input); err == nil {
			t.Errorf("ParseLocation(%q) succeeded, want error", input)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"60.534716, -149.543469", FormatDecimal},
		{`60°32'05"N 149°32'36"W`, FormatDMS},
		{"47QNB8598697460", FormatMGRS},
		{"47N 485986 2197460", FormatUTM},
		{"somewhere in Alaska", FormatUnknown},
		{"", FormatUnknown},
	}
	for _, tt := range tests {
		if got := Detect(tt.input); got != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseLocationList(t *testing.T) {
	input := "60.534716, -149.543469; 60.534991 -149.548581\n47QNB8598697460"
	locs, err := ParseLocationList(input)
	if err != nil {
		t.Fatalf("ParseLocationList: %v", err)
	}
	if len(locs) != 3 {
		t.Fatalf("got %d locations, want 3", len(locs))
	}
	if locs[1].Longitude != -149.548581 {
		t.Errorf("second waypoint longitude = %f", locs[1].Longitude)
	}
}

func TestParseLocationListReportsPosition(t *testing.T) {
	_, err := ParseLocationList("60.534716, -149.543469; bogus")
	if err == nil {
		t.Fatal("want error for bogus second entry")
	}
	if !strings.Contains(err.Error(), "waypoint 2") {
		t.Errorf("error %q does not name the failing entry", err)
	}
}

func TestToMGRSPrecisionFallback(t *testing.T) {
	loc := geo.Location{Latitude: 60.534716, Longitude: -149.543469}
	full, err := ToMGRS(loc, 5)
	if err != nil {
		t.Fatalf("ToMGRS: %v", err)
	}
	fallback, err := ToMGRS(loc, 99)
	if err != nil {
		t.Fatalf("ToMGRS with out-of-range precision: %v", err)
	}
	if full != fallback {
		t.Errorf("precision fallback produced %q, want %q", fallback, full)
	}
	if _, err := ToMGRS(geo.Location{Latitude: 200}, 5); err == nil {
		t.Error("ToMGRS accepted an out-of-range location")
	}
}
