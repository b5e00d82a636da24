// Package waypoint implements the controller's waypoint-pruning strategies:
// deciding when a visited waypoint should be dropped from the remaining
// list, without ever dropping the destination.
package waypoint

import (
	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/route"
)

// Checker decides which waypoints should be dropped from a trip's remaining
// waypoint list.
type Checker interface {
	// Advance returns the waypoints that should remain, given the user's
	// current location and the step that was just completed (nil if no
	// step advance occurred this update).
	Advance(user geo.Location, remaining []route.Waypoint, justCompletedStep *route.RouteStep) []route.Waypoint
}

// WithinRange drops the front waypoint when the user comes within Radius
// meters of it, evaluated on every location update. At most one waypoint
// is dropped per update; the final (destination) waypoint is never
// dropped.
type WithinRange struct {
	Radius float64
}

// Advance implements Checker.
func (w WithinRange) Advance(user geo.Location, remaining []route.Waypoint, _ *route.RouteStep) []route.Waypoint {
	if len(remaining) > 1 && geo.Haversine(user, remaining[0].Coordinate) < w.Radius {
		return remaining[1:]
	}
	return remaining
}

// AlongAdvancingStep drops every non-terminal waypoint whose distance to
// its nearest point on the just-completed step's polyline is under Radius.
// It only acts when a step has just advanced; on a plain location update it
// leaves the list untouched. The destination waypoint is always preserved.
type AlongAdvancingStep struct {
	Radius float64
}

// Advance implements Checker.
func (w AlongAdvancingStep) Advance(_ geo.Location, remaining []route.Waypoint, justCompletedStep *route.RouteStep) []route.Waypoint {
	if justCompletedStep == nil || len(remaining) <= 1 {
		return remaining
	}

	ls := justCompletedStep.Linestring()
	out := remaining[:0:0]
	for i, wp := range remaining {
		isLast := i == len(remaining)-1
		if isLast {
			out = append(out, wp)
			continue
		}
		dev, ok := geo.DeviationFromLine(wp.Coordinate, ls)
		if ok && dev < w.Radius {
			continue
		}
		out = append(out, wp)
	}
	return out
}
