package routeparser

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/NERVsystems/navengine/pkg/route"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	return data
}

func TestParseResponseAlaskaRoute(t *testing.T) {
	data := loadFixture(t, "alaska_osrm_response.json")

	p, err := New(6, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	routes, err := p.ParseResponse(data)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}

	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	r := routes[0]

	if len(r.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(r.Steps))
	}
	if len(r.Steps[0].Geometry) != 10 {
		t.Errorf("step 0 geometry has %d coords, want 10", len(r.Steps[0].Geometry))
	}
	if r.Distance != 284.0 {
		t.Errorf("route.Distance = %v, want 284", r.Distance)
	}
	if len(r.Waypoints) != 2 {
		t.Fatalf("got %d waypoints, want 2", len(r.Waypoints))
	}
	for i, wp := range r.Waypoints {
		if wp.Kind != route.WaypointKindBreak {
			t.Errorf("waypoint %d kind = %v, want Break", i, wp.Kind)
		}
	}

	// Step 0 carries one annotation per geometry segment (9 = 10 - 1).
	if len(r.Steps[0].Annotations) != 9 {
		t.Errorf("step 0 annotations len = %d, want 9", len(r.Steps[0].Annotations))
	}
	// The arrival step's degenerate geometry carries no annotations.
	if r.Steps[1].Annotations != nil {
		t.Errorf("step 1 (arrival) annotations = %v, want nil", r.Steps[1].Annotations)
	}

	if r.Steps[0].Instruction == "" {
		t.Error("expected a non-empty instruction for step 0")
	}
	if len(r.Steps[0].VisualInstructions) != 1 {
		t.Errorf("step 0 visual instructions = %d, want 1", len(r.Steps[0].VisualInstructions))
	}
}

func TestParseResponseNonOkStatus(t *testing.T) {
	body := []byte(`{"code":"NoRoute","message":"No route found between the given coordinates","routes":[]}`)

	p, err := New(6, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.ParseResponse(body)
	if err == nil {
		t.Fatal("expected an error for a non-Ok status")
	}
	if got := err.Error(); got == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestZipAnnotationsHandlesMismatchedLengths(t *testing.T) {
	a := &wireAnnotation{
		Distance: []float64{1, 2, 3},
		Speed:    []float64{4, 5},
	}
	out := zipAnnotations(a)
	if len(out) != 3 {
		t.Fatalf("got %d annotations, want 3", len(out))
	}
	if out[2].Speed != nil {
		t.Errorf("expected nil speed at index 2, got %v", *out[2].Speed)
	}
}

func TestAnnotationSliceOfArrivalStepIsNil(t *testing.T) {
	full := make([]route.Annotation, 9)
	if got := annotationSliceOf(full, 9, 10); got != nil {
		t.Errorf("expected nil for an arrival-step slice past the end, got %v", got)
	}
}

func TestRebaseIncidentsWithinRange(t *testing.T) {
	end := uint64(5)
	incidents := []wireIncident{
		{ID: "a", GeometryIndexStart: 2, GeometryIndexEnd: &end},
		{ID: "b", GeometryIndexStart: 20},
	}
	out := rebaseIncidents(incidents, 0, 9)
	if len(out) != 1 {
		t.Fatalf("got %d incidents, want 1", len(out))
	}
	if out[0].ID != "a" {
		t.Errorf("got incident %q, want %q", out[0].ID, "a")
	}
	if out[0].GeometryIndexStart != 2 {
		t.Errorf("rebased start = %d, want 2", out[0].GeometryIndexStart)
	}
}

func TestWireManeuverFallsBackToSynthesizedInstruction(t *testing.T) {
	m := wireManeuver{Type: "depart"}
	if got := m.getInstruction(); got == "" {
		t.Error("expected a non-empty synthesized instruction")
	}

	explicit := "Turn right onto Main St"
	m2 := wireManeuver{Type: "turn", Instruction: &explicit}
	if got := m2.getInstruction(); got != explicit {
		t.Errorf("got %q, want %q", got, explicit)
	}
}

func TestWireCoordinateJSONOrderIsLonLat(t *testing.T) {
	var c wireCoordinate
	if err := json.Unmarshal([]byte(`[-149.543469, 60.534716]`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.longitude() != -149.543469 {
		t.Errorf("longitude = %v, want -149.543469", c.longitude())
	}
	if c.latitude() != 60.534716 {
		t.Errorf("latitude = %v, want 60.534716", c.latitude())
	}
}

func TestParseResponseContextMatchesParseResponse(t *testing.T) {
	data := loadFixture(t, "alaska_osrm_response.json")

	p, err := New(6, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	routes, err := p.ParseResponseContext(context.Background(), data)
	if err != nil {
		t.Fatalf("ParseResponseContext: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
}
