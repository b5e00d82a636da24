// Package request builds route-request payloads (payload shape only; actual
// HTTP transport is the host application's responsibility). Two built-in
// Generators are provided, matching two popular OSRM-family routing
// backends: Valhalla and GraphHopper.
package request

import (
	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/naverr"
	"github.com/NERVsystems/navengine/pkg/route"
)

// Request is the payload a Generator produces, to be sent by the host
// application over whatever HTTP client it already owns.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte
}

// Generator builds a route request from the user's current position and
// the trip's waypoints.
type Generator interface {
	GenerateRequest(current geo.UserLocation, waypoints []route.Waypoint) (Request, error)
}

// errNotEnoughWaypoints is returned when fewer than one destination
// waypoint is supplied; a route needs the user's current position plus at
// least one place to go.
func errNotEnoughWaypoints() error {
	return naverr.New(naverr.CodeNotEnoughWaypoints, "at least one destination waypoint is required").
		WithGuidance("pass the user's current position separately and at least one route waypoint")
}

func errRequestJSON(reason string) error {
	return naverr.Newf(naverr.CodeRequestJSONError, "%s", reason)
}
