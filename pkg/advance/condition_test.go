package advance

import (
	"testing"

	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/route"
)

func straightStep(lat1, lon1, lat2, lon2 float64) route.RouteStep {
	return route.RouteStep{
		Geometry: []geo.Location{
			{Latitude: lat1, Longitude: lon1},
			{Latitude: lat2, Longitude: lon2},
		},
	}
}

func userAt(lat, lon, accuracy float64) geo.UserLocation {
	return geo.UserLocation{
		Coordinates:        geo.Location{Latitude: lat, Longitude: lon},
		HorizontalAccuracy: accuracy,
	}
}

func TestManualNeverAdvances(t *testing.T) {
	step := straightStep(60.5, -149.5, 60.6, -149.4)
	user := userAt(60.6, -149.4, 5)

	m := Manual{}
	r := m.Evaluate(user, step, nil)
	if r.ShouldAdvance {
		t.Error("Manual should never advance")
	}
	if _, ok := r.NextIteration.(Manual); !ok {
		t.Errorf("expected Manual carried forward, got %T", r.NextIteration)
	}
}

func TestDistanceEntryAndExitNeverAdvancesOnZeroMovement(t *testing.T) {
	step := straightStep(60.5, -149.5, 60.6, -149.4)
	// Far from the end of the step, accuracy fine, never enters phase B.
	user := userAt(60.5, -149.5, 5)

	c := DefaultDistanceEntryAndExit()
	for i := 0; i < 10; i++ {
		r := c.Evaluate(user, step, nil)
		if r.ShouldAdvance {
			t.Fatalf("iteration %d: should not advance on zero movement far from step end", i)
		}
		c = r.NextIteration.(DistanceEntryAndExit)
	}
	if c.HasReachedEnd {
		t.Error("should not have entered the end zone without moving")
	}
}

func TestDistanceEntryAndExitRequiresExitAfterEntry(t *testing.T) {
	step := straightStep(60.0, -149.0, 60.0, -148.999)
	end := step.Geometry[1]

	c := DefaultDistanceEntryAndExit()

	// Step 1: arrive within the entry threshold of the step's end.
	near := userAt(end.Latitude, end.Longitude, 5)
	r1 := c.Evaluate(near, step, nil)
	if r1.ShouldAdvance {
		t.Fatal("should not advance on entry alone")
	}
	c = r1.NextIteration.(DistanceEntryAndExit)
	if !c.HasReachedEnd {
		t.Fatal("expected HasReachedEnd to be set after entering the zone")
	}

	// Step 2: still right at the end, inside the exit distance - no advance yet.
	r2 := c.Evaluate(near, step, nil)
	if r2.ShouldAdvance {
		t.Fatal("should not advance until the user exits the zone")
	}
	c = r2.NextIteration.(DistanceEntryAndExit)

	// Step 3: move away far enough to exit the zone.
	far := userAt(end.Latitude+0.01, end.Longitude+0.01, 5)
	r3 := c.Evaluate(far, step, nil)
	if !r3.ShouldAdvance {
		t.Fatal("expected advance once the user has exited the zone after entering it")
	}
}

func TestDistanceToEndOfStepIgnoresPoorAccuracy(t *testing.T) {
	step := straightStep(60.0, -149.0, 60.0, -148.999)
	end := step.Geometry[1]
	user := userAt(end.Latitude, end.Longitude, 999)

	c := DistanceToEndOfStep{Distance: 20, MinAccuracy: 25}
	r := c.Evaluate(user, step, nil)
	if r.ShouldAdvance {
		t.Error("should not advance when accuracy exceeds the minimum required")
	}
}

func TestOrAdvancesWhenAnyChildAdvances(t *testing.T) {
	step := straightStep(60.0, -149.0, 60.0, -148.999)
	end := step.Geometry[1]
	user := userAt(end.Latitude, end.Longitude, 5)

	o := Or{Conditions: []Condition{
		Manual{},
		DistanceToEndOfStep{Distance: 20, MinAccuracy: 25},
	}}
	r := o.Evaluate(user, step, nil)
	if !r.ShouldAdvance {
		t.Error("expected Or to advance since one child condition is satisfied")
	}
	next := r.NextIteration.(Or)
	if len(next.Conditions) != 2 {
		t.Fatalf("expected 2 carried-forward conditions, got %d", len(next.Conditions))
	}
	if _, ok := next.Conditions[0].(Manual); !ok {
		t.Errorf("expected first child to remain Manual, got %T", next.Conditions[0])
	}
}

func TestAndRequiresAllChildren(t *testing.T) {
	step := straightStep(60.0, -149.0, 60.0, -148.999)
	end := step.Geometry[1]
	user := userAt(end.Latitude, end.Longitude, 5)

	a := And{Conditions: []Condition{
		Manual{},
		DistanceToEndOfStep{Distance: 20, MinAccuracy: 25},
	}}
	r := a.Evaluate(user, step, nil)
	if r.ShouldAdvance {
		t.Error("And should not advance while Manual never does")
	}
}

func TestRelativeLineStringDistanceFallsBackWithoutNextStep(t *testing.T) {
	step := straightStep(60.0, -149.0, 60.0, -148.999)
	end := step.Geometry[1]
	user := userAt(end.Latitude, end.Longitude, 5)

	c := RelativeLineStringDistance{MinAccuracy: 25}
	r := c.Evaluate(user, step, nil)
	if !r.ShouldAdvance {
		t.Error("expected fallback DistanceToEndOfStep(minAccuracy, minAccuracy) to advance at the step's end")
	}
}

func TestRelativeLineStringDistancePrefersCloserStep(t *testing.T) {
	current := straightStep(60.0, -149.0, 60.0, -148.999)
	next := straightStep(60.0, -148.999, 60.1, -148.999)

	// On the next step's line, about 111 m past the junction - closer to next.
	user := userAt(60.001, -148.999, 5)

	c := RelativeLineStringDistance{MinAccuracy: 25}
	r := c.Evaluate(user, current, &next)
	if !r.ShouldAdvance {
		t.Error("expected advance since the user is closer to the next step's line")
	}
}

func TestConditionSerializeRoundTrip(t *testing.T) {
	cases := []Condition{
		Manual{},
		DistanceToEndOfStep{Distance: 20, MinAccuracy: 25},
		DistanceFromStep{Distance: 50, MinAccuracy: 25},
		DefaultDistanceEntryAndExit(),
		RelativeLineStringDistance{MinAccuracy: 25},
		Or{Conditions: []Condition{Manual{}, DistanceToEndOfStep{Distance: 20, MinAccuracy: 25}}},
		And{Conditions: []Condition{Manual{}, DistanceFromStep{Distance: 50, MinAccuracy: 25}}},
	}

	step := straightStep(60.0, -149.0, 60.0, -148.999)
	end := step.Geometry[1]
	user := userAt(end.Latitude, end.Longitude, 5)

	for _, original := range cases {
		data, err := Marshal(original)
		if err != nil {
			t.Fatalf("Marshal(%T): %v", original, err)
		}
		decoded, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal(%T): %v", original, err)
		}

		want := original.Evaluate(user, step, nil)
		got := decoded.Evaluate(user, step, nil)
		if want.ShouldAdvance != got.ShouldAdvance {
			t.Errorf("%T: round-tripped condition disagrees on ShouldAdvance: want %v, got %v", original, want.ShouldAdvance, got.ShouldAdvance)
		}
	}
}
