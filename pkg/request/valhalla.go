package request

import (
	"encoding/json"

	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/route"
)

// valhallaLocation is one entry in a Valhalla /route request's locations
// array.
type valhallaLocation struct {
	Lat                 float64  `json:"lat"`
	Lon                 float64  `json:"lon"`
	Type                string   `json:"type,omitempty"`
	StreetSideTolerance float64  `json:"street_side_tolerance,omitempty"`
	Heading             *float64 `json:"heading,omitempty"`
	HeadingTolerance    *float64 `json:"heading_tolerance,omitempty"`
}

type valhallaBody struct {
	Format             string             `json:"format"`
	BannerInstructions bool               `json:"banner_instructions"`
	VoiceInstructions  bool               `json:"voice_instructions"`
	Costing            string             `json:"costing"`
	Locations          []valhallaLocation `json:"locations"`
	CostingOptions     map[string]any     `json:"costing_options,omitempty"`
	Filters            map[string]any     `json:"filters,omitempty"`
}

// ValhallaGenerator builds route-request payloads for a Valhalla /route
// endpoint. heading_tolerance is only included when HeadingTolerance is
// explicitly set; routing engines apply their own default otherwise.
type ValhallaGenerator struct {
	BaseURL          string
	Costing          string
	CostingOptions   map[string]any
	Filters          map[string]any
	HeadingTolerance *float64
}

// GenerateRequest implements Generator.
func (g ValhallaGenerator) GenerateRequest(current geo.UserLocation, waypoints []route.Waypoint) (Request, error) {
	if len(waypoints) == 0 {
		return Request{}, errNotEnoughWaypoints()
	}

	tolerance := current.HorizontalAccuracy
	if tolerance < 5 {
		tolerance = 5
	}

	var heading *float64
	if current.CourseOverGround != nil {
		h := float64(current.CourseOverGround.Degrees)
		heading = &h
	}

	locations := make([]valhallaLocation, 0, len(waypoints)+1)
	locations = append(locations, valhallaLocation{
		Lat:                 current.Coordinates.Latitude,
		Lon:                 current.Coordinates.Longitude,
		StreetSideTolerance: tolerance,
		Heading:             heading,
		HeadingTolerance:    g.HeadingTolerance,
	})
	for _, wp := range waypoints {
		locations = append(locations, valhallaLocation{
			Lat:  wp.Coordinate.Latitude,
			Lon:  wp.Coordinate.Longitude,
			Type: valhallaWaypointType(wp.Kind),
		})
	}

	costing := g.Costing
	if costing == "" {
		costing = "auto"
	}

	body := valhallaBody{
		Format:             "osrm",
		BannerInstructions: true,
		VoiceInstructions:  true,
		Costing:            costing,
		Locations:          locations,
		CostingOptions:     g.CostingOptions,
		Filters:            g.Filters,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return Request{}, errRequestJSON(err.Error())
	}

	url := g.BaseURL
	if url == "" {
		url = "https://valhalla1.openstreetmap.de/route"
	}

	return Request{
		URL:     url,
		Method:  "POST",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    data,
	}, nil
}

func valhallaWaypointType(k route.WaypointKind) string {
	if k == route.WaypointKindVia {
		return "via"
	}
	return "break"
}
