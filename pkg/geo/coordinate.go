// Package geo provides the geographic primitives and polyline algorithms
// that the rest of the navigation engine is built on: coordinates, bounding
// boxes, polylines, and the snap/distance/deviation calculations used by the
// step-advance and deviation-detection packages.
package geo

import "math"

// EarthRadius is the mean radius of the Earth in meters, used for all
// haversine distance calculations in this package.
const EarthRadius = 6371000.0

// Location is a WGS84 geographic coordinate.
//
// Latitude and longitude are not validated or clamped; callers may pass
// values outside [-90, 90] / [-180, 180] and functions in this package will
// still return a result rather than panic, though the result is only
// meaningful for well-formed coordinates.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Valid reports whether l lies within WGS84 bounds. Functions in this
// package tolerate invalid locations; Valid is for callers that want to
// reject operator input up front.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// CourseOverGround is the direction the device is observed to be traveling,
// measured in clockwise degrees from true north.
type CourseOverGround struct {
	Degrees  uint16 `json:"degrees"`
	Accuracy uint16 `json:"accuracy"`
}

// NewCourseOverGround constructs a CourseOverGround from a degree heading and
// its accuracy, both in degrees.
func NewCourseOverGround(degrees, accuracy uint16) CourseOverGround {
	return CourseOverGround{Degrees: degrees, Accuracy: accuracy}
}

// UserLocation is a single observation of the device's position, supplied by
// the host application. It is never mutated once constructed.
type UserLocation struct {
	Coordinates        Location          `json:"coordinates"`
	HorizontalAccuracy float64           `json:"horizontal_accuracy"`
	CourseOverGround   *CourseOverGround `json:"course_over_ground,omitempty"`
	Timestamp          int64             `json:"timestamp"`
	Speed              *float64          `json:"speed,omitempty"`
	SpeedAccuracy      *float64          `json:"speed_accuracy,omitempty"`
}

// HaversineDistance returns the great-circle distance, in meters, between
// two WGS84 coordinates given as decimal degrees.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const toRad = math.Pi / 180.0

	phi1 := lat1 * toRad
	phi2 := lat2 * toRad
	dPhi := (lat2 - lat1) * toRad
	dLambda := (lon2 - lon1) * toRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// Haversine returns the great-circle distance, in meters, between two
// Locations.
func Haversine(a, b Location) float64 {
	return HaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// isFiniteLocation reports whether both coordinates of l are finite,
// non-NaN values. Locations failing this check are treated as degenerate
// throughout this package.
func isFiniteLocation(l Location) bool {
	return !math.IsNaN(l.Latitude) && !math.IsInf(l.Latitude, 0) &&
		!math.IsNaN(l.Longitude) && !math.IsInf(l.Longitude, 0)
}
