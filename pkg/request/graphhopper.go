package request

import (
	"encoding/json"

	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/route"
)

// GraphHopperGenerator builds route-request payloads for a GraphHopper
// /route endpoint. Options holds caller-supplied extra fields merged into
// the final JSON object (e.g. "locale", "optimize").
type GraphHopperGenerator struct {
	BaseURL string
	Profile string
	Details []string
	Options map[string]any
}

// GenerateRequest implements Generator. The user's current position is the
// first point; waypoints follow in order. GraphHopper has no separate
// "via" wire representation for intermediate stops in the basic /route
// request, so every waypoint contributes only its coordinate.
func (g GraphHopperGenerator) GenerateRequest(current geo.UserLocation, waypoints []route.Waypoint) (Request, error) {
	if len(waypoints) == 0 {
		return Request{}, errNotEnoughWaypoints()
	}

	points := make([][2]float64, 0, len(waypoints)+1)
	points = append(points, [2]float64{current.Coordinates.Longitude, current.Coordinates.Latitude})
	for _, wp := range waypoints {
		points = append(points, [2]float64{wp.Coordinate.Longitude, wp.Coordinate.Latitude})
	}

	profile := g.Profile
	if profile == "" {
		profile = "car"
	}
	details := g.Details
	if details == nil {
		details = []string{"leg_time", "max_speed"}
	}

	merged := map[string]any{}
	for k, v := range g.Options {
		merged[k] = v
	}
	merged["profile"] = profile
	merged["points"] = points
	merged["instructions"] = true
	merged["elevation"] = false
	merged["details"] = details

	data, err := json.Marshal(merged)
	if err != nil {
		return Request{}, errRequestJSON(err.Error())
	}

	url := g.BaseURL
	if url == "" {
		url = "https://graphhopper.com/api/1/route"
	}

	return Request{
		URL:     url,
		Method:  "POST",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    data,
	}, nil
}
