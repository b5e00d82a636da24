package geo

import (
	"errors"
	"math"
)

// Polyline is an ordered sequence of coordinates, treated as the vertices of
// a great-circle linestring. A well-formed polyline has at least two points;
// functions in this package tolerate shorter or empty polylines by returning
// zero values rather than panicking.
type Polyline []Location

// EncodePolyline encodes points using Google's Polyline Algorithm Format at
// the given precision (5 or 6 decimal digits). Precision 5 is the original
// Google format (1e-5 scale); precision 6 is the common OSRM/Valhalla/Mapbox
// extension (1e-6 scale) used for higher-resolution geometry.
//
// See https://developers.google.com/maps/documentation/utilities/polylinealgorithm
func EncodePolyline(points []Location, precision uint32) string {
	if len(points) == 0 {
		return ""
	}

	scale := math.Pow(10, float64(precision))

	result := make([]byte, 0, len(points)*12)

	prevLat := 0
	prevLon := 0

	for _, point := range points {
		lat := int(math.Round(point.Latitude * scale))
		lon := int(math.Round(point.Longitude * scale))

		result = append(result, encodeSigned(lat-prevLat)...)
		result = append(result, encodeSigned(lon-prevLon)...)

		prevLat = lat
		prevLon = lon
	}

	return string(result)
}

// DecodePolyline decodes a polyline string encoded at the given precision
// (5 or 6) into its constituent coordinates.
func DecodePolyline(polyline string, precision uint32) ([]Location, error) {
	if len(polyline) == 0 {
		return []Location{}, nil
	}

	scale := math.Pow(10, float64(precision))

	count := len(polyline) / 8
	if count <= 0 {
		count = 1
	}

	points := make([]Location, 0, count)

	index := 0
	prevLat := 0
	prevLon := 0
	strLen := len(polyline)

	for index < strLen {
		lat, newIndex, err := decodeValue(polyline, index, prevLat)
		if err != nil {
			return nil, err
		}
		index = newIndex
		prevLat = lat

		if index >= strLen {
			return nil, errors.New("invalid polyline: unexpected end of string")
		}
		lon, newIndex, err := decodeValue(polyline, index, prevLon)
		if err != nil {
			return nil, err
		}
		index = newIndex
		prevLon = lon

		points = append(points, Location{
			Latitude:  float64(lat) / scale,
			Longitude: float64(lon) / scale,
		})
	}

	return points, nil
}

func decodeValue(polyline string, index, prev int) (int, int, error) {
	strLen := len(polyline)
	result := 0
	shift := 0

	for {
		if index >= strLen {
			return 0, 0, errors.New("invalid polyline: unexpected end of string")
		}
		b := int(polyline[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	delta := (result >> 1) ^ (-(result & 1))
	value := prev + delta

	return value, index, nil
}

func encodeSigned(value int) []byte {
	s := value << 1
	if value < 0 {
		s = ^s
	}

	var buf []byte
	for s >= 0x20 {
		buf = append(buf, byte((0x20|(s&0x1f))+63))
		s >>= 5
	}
	buf = append(buf, byte(s+63))
	return buf
}
