package request

import (
	"encoding/json"
	"testing"

	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/route"
)

func TestValhallaGenerateRequest(t *testing.T) {
	g := ValhallaGenerator{Costing: "auto"}
	current := geo.UserLocation{
		Coordinates:        geo.Location{Latitude: 60.5, Longitude: -149.5},
		HorizontalAccuracy: 3,
		CourseOverGround:   &geo.CourseOverGround{Degrees: 90, Accuracy: 5},
	}
	waypoints := []route.Waypoint{
		{Coordinate: geo.Location{Latitude: 60.6, Longitude: -149.6}, Kind: route.WaypointKindBreak},
	}

	req, err := g.GenerateRequest(current, waypoints)
	if err != nil {
		t.Fatalf("GenerateRequest: %v", err)
	}
	if req.Method != "POST" {
		t.Fatalf("expected POST, got %s", req.Method)
	}

	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["format"] != "osrm" {
		t.Fatalf("expected format osrm, got %v", body["format"])
	}
	locs, ok := body["locations"].([]any)
	if !ok || len(locs) != 2 {
		t.Fatalf("expected 2 locations, got %v", body["locations"])
	}
	first := locs[0].(map[string]any)
	if first["street_side_tolerance"].(float64) != 5 {
		t.Fatalf("expected street_side_tolerance clamped to 5, got %v", first["street_side_tolerance"])
	}
	if first["heading"].(float64) != 90 {
		t.Fatalf("expected heading 90 from course over ground, got %v", first["heading"])
	}
}

func TestValhallaNotEnoughWaypoints(t *testing.T) {
	g := ValhallaGenerator{}
	_, err := g.GenerateRequest(geo.UserLocation{}, nil)
	if err == nil {
		t.Fatal("expected an error for zero waypoints")
	}
}

func TestGraphHopperGenerateRequest(t *testing.T) {
	g := GraphHopperGenerator{Options: map[string]any{"locale": "en"}}
	current := geo.UserLocation{Coordinates: geo.Location{Latitude: 60.5, Longitude: -149.5}}
	waypoints := []route.Waypoint{
		{Coordinate: geo.Location{Latitude: 60.6, Longitude: -149.6}, Kind: route.WaypointKindBreak},
	}

	req, err := g.GenerateRequest(current, waypoints)
	if err != nil {
		t.Fatalf("GenerateRequest: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["profile"] != "car" {
		t.Fatalf("expected default profile car, got %v", body["profile"])
	}
	if body["locale"] != "en" {
		t.Fatalf("expected merged caller option locale=en, got %v", body["locale"])
	}
	points, ok := body["points"].([]any)
	if !ok || len(points) != 2 {
		t.Fatalf("expected 2 points, got %v", body["points"])
	}
	p0 := points[0].([]any)
	if p0[0].(float64) != -149.5 || p0[1].(float64) != 60.5 {
		t.Fatalf("expected [lng,lat] ordering, got %v", p0)
	}
}
