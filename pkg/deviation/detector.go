// Package deviation implements route-deviation detection: reporting, on
// every location update, whether the user appears to have left the route.
// Detectors only report; recalculating a route in response is the host
// application's responsibility.
package deviation

import (
	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/route"
)

// Status is the outcome of evaluating a Detector.
type Status struct {
	// OffRoute is true if the detector judged the user to have deviated.
	OffRoute bool `json:"off_route"`
	// Deviation is the haversine distance, in meters, from the user to the
	// current step's line. Only meaningful when OffRoute is true.
	Deviation float64 `json:"deviation,omitempty"`
}

// NoDeviation is the zero-value Status reported when a detector finds no
// evidence of deviation (or cannot evaluate reliably).
var NoDeviation = Status{}

// Detector decides whether the user has deviated from the current route
// step.
type Detector interface {
	Check(user geo.UserLocation, currentStep route.RouteStep) Status
}

// None never reports a deviation; used when the host application handles
// off-route detection itself, or deviation tracking is disabled.
type None struct{}

// Check implements Detector.
func (None) Check(geo.UserLocation, route.RouteStep) Status {
	return NoDeviation
}

// StaticThreshold reports a deviation once the user's distance to the
// current step's line exceeds MaxAcceptableDeviation, provided the
// location's accuracy is trustworthy.
type StaticThreshold struct {
	MinAccuracy            float64
	MaxAcceptableDeviation float64
}

// Check implements Detector.
func (d StaticThreshold) Check(user geo.UserLocation, currentStep route.RouteStep) Status {
	if user.HorizontalAccuracy >= d.MinAccuracy {
		return NoDeviation
	}
	dev, ok := geo.DeviationFromLine(user.Coordinates, currentStep.Linestring())
	if !ok {
		return NoDeviation
	}
	if dev > d.MaxAcceptableDeviation {
		return Status{OffRoute: true, Deviation: dev}
	}
	return NoDeviation
}

// CustomFunc adapts a plain function into a Detector, letting a host
// application supply an arbitrary predicate. The library does not guard
// against a panicking CustomFunc; that is the caller's responsibility.
type CustomFunc func(user geo.UserLocation, currentStep route.RouteStep) Status

// Check implements Detector.
func (f CustomFunc) Check(user geo.UserLocation, currentStep route.RouteStep) Status {
	return f(user, currentStep)
}
