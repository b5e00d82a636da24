package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func callTool(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestHandleDecodePolyline(t *testing.T) {
	s := NewServer(nil)
	req := callTool(map[string]any{"polyline": "wzvmrBxalf|GcCrX}A|Nu@jI}@pMkBtZ{@x^_Afj@Inn@`@veB", "precision": float64(6)})

	result, err := s.handleDecodePolyline(context.Background(), req)
	if err != nil {
		t.Fatalf("handleDecodePolyline: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %v", result.Content)
	}
}

func TestHandleDecodePolylineMissingInput(t *testing.T) {
	s := NewServer(nil)
	req := callTool(map[string]any{})

	result, err := s.handleDecodePolyline(context.Background(), req)
	if err != nil {
		t.Fatalf("handleDecodePolyline: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected an error result for missing polyline input")
	}
}

func TestHandleParseCoordinateDecimal(t *testing.T) {
	s := NewServer(nil)
	req := callTool(map[string]any{"input": "60.534716, -149.543469"})

	result, err := s.handleParseCoordinate(context.Background(), req)
	if err != nil {
		t.Fatalf("handleParseCoordinate: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %v", result.Content)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	var out parseCoordinateOutput
	if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Format != "decimal" {
		t.Fatalf("expected decimal format, got %q", out.Format)
	}
	if out.Location.Latitude != 60.534716 || out.Location.Longitude != -149.543469 {
		t.Fatalf("unexpected location: %+v", out.Location)
	}
}

func TestHandleParseCoordinateInvalid(t *testing.T) {
	s := NewServer(nil)
	req := callTool(map[string]any{"input": "not a coordinate"})

	result, err := s.handleParseCoordinate(context.Background(), req)
	if err != nil {
		t.Fatalf("handleParseCoordinate: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected an error result for unparseable input")
	}
}

func TestHandleSimulateTripDistanceToEndScenario(t *testing.T) {
	s := NewServer(nil)

	routeJSON := map[string]any{
		"geometry": []any{},
		"bbox":     map[string]any{},
		"distance": 284,
		"waypoints": []any{
			map[string]any{"coordinate": map[string]any{"lat": 60.534716, "lng": -149.543469}, "kind": "break"},
			map[string]any{"coordinate": map[string]any{"lat": 60.534991, "lng": -149.548581}, "kind": "break"},
		},
		"steps": []any{
			map[string]any{
				"geometry": []any{
					map[string]any{"lat": 60.534716, "lng": -149.543469},
					map[string]any{"lat": 60.534991, "lng": -149.548581},
				},
				"distance":            284,
				"duration":            45,
				"instruction":         "",
				"visual_instructions": []any{},
				"spoken_instructions": []any{},
			},
			map[string]any{
				"geometry": []any{
					map[string]any{"lat": 60.534991, "lng": -149.548581},
					map[string]any{"lat": 60.534991, "lng": -149.548581},
				},
				"distance":            0,
				"duration":            0,
				"instruction":         "",
				"visual_instructions": []any{},
				"spoken_instructions": []any{},
			},
		},
	}

	req := callTool(map[string]any{
		"route": routeJSON,
		"locations": []any{
			map[string]any{"coordinates": map[string]any{"lat": 60.534716, "lng": -149.543469}, "horizontal_accuracy": float64(0)},
			map[string]any{"coordinates": map[string]any{"lat": 60.534991, "lng": -149.548581}, "horizontal_accuracy": float64(0)},
		},
		"step_advance_distance":     float64(0),
		"step_advance_min_accuracy": float64(0),
	})

	result, err := s.handleSimulateTrip(context.Background(), req)
	if err != nil {
		t.Fatalf("handleSimulateTrip: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %v", result.Content)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	var out simulateTripOutput
	if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(out.TripStates) != 2 {
		t.Fatalf("expected 2 trip states, got %d", len(out.TripStates))
	}
}
