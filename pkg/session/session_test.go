package session

import (
	"context"
	"testing"

	"github.com/NERVsystems/navengine/pkg/advance"
	"github.com/NERVsystems/navengine/pkg/deviation"
	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/nav"
	"github.com/NERVsystems/navengine/pkg/route"
)

var (
	alaskaStart = geo.Location{Latitude: 60.534716, Longitude: -149.543469}
	alaskaEnd   = geo.Location{Latitude: 60.534991, Longitude: -149.548581}
)

func alaskaRoute() route.Route {
	step0 := route.RouteStep{
		Geometry: []geo.Location{alaskaStart, alaskaEnd},
		Distance: 284,
		Duration: 45,
	}
	step1 := route.RouteStep{
		Geometry: []geo.Location{alaskaEnd, alaskaEnd},
		Distance: 0,
		Duration: 0,
	}
	return route.Route{
		Geometry: []geo.Location{alaskaStart, alaskaEnd},
		Distance: 284,
		Waypoints: []route.Waypoint{
			{Coordinate: alaskaStart, Kind: route.WaypointKindBreak},
			{Coordinate: alaskaEnd, Kind: route.WaypointKindBreak},
		},
		Steps: []route.RouteStep{step0, step1},
	}
}

func userAt(loc geo.Location, accuracy float64) geo.UserLocation {
	return geo.UserLocation{Coordinates: loc, HorizontalAccuracy: accuracy}
}

func TestSessionBroadcastsInOrder(t *testing.T) {
	cfg := nav.Config{
		StepAdvanceCondition:        advance.Manual{},
		ArrivalStepAdvanceCondition: advance.Manual{},
		RouteDeviationTracking:      deviation.None{},
	}
	sess := New(nav.New(alaskaRoute(), cfg), nil)

	var firstSeen, secondSeen []nav.Kind
	sess.AddObserver(ObserverFunc(func(s nav.NavState) { firstSeen = append(firstSeen, s.TripState.Kind) }))
	sess.AddObserver(ObserverFunc(func(s nav.NavState) { secondSeen = append(secondSeen, s.TripState.Kind) }))

	sess.Start(userAt(alaskaStart, 5))
	sess.AdvanceToNextStep()
	sess.AdvanceToNextStep()

	want := []nav.Kind{nav.Navigating, nav.Navigating, nav.Complete}
	for i, k := range want {
		if firstSeen[i] != k || secondSeen[i] != k {
			t.Fatalf("event %d: observers saw %v / %v, want %v", i, firstSeen[i], secondSeen[i], k)
		}
	}

	if sess.Current().TripState.Kind != nav.Complete {
		t.Fatalf("expected Current() to reflect the final broadcast state")
	}
}

func TestSessionIgnoresUpdatesBeforeStart(t *testing.T) {
	cfg := nav.Config{
		StepAdvanceCondition:        advance.Manual{},
		ArrivalStepAdvanceCondition: advance.Manual{},
		RouteDeviationTracking:      deviation.None{},
	}
	sess := New(nav.New(alaskaRoute(), cfg), nil)

	state := sess.UpdateUserLocation(userAt(alaskaStart, 5))
	if state.TripState.Kind != nav.Idle {
		t.Fatalf("expected Idle zero-value state before Start, got %v", state.TripState.Kind)
	}
}

func TestSessionContextVariantsMatchPlainVariants(t *testing.T) {
	cfg := nav.Config{
		StepAdvanceCondition:        advance.Manual{},
		ArrivalStepAdvanceCondition: advance.Manual{},
		RouteDeviationTracking:      deviation.None{},
	}
	sess := New(nav.New(alaskaRoute(), cfg), nil)
	ctx := context.Background()

	state := sess.StartContext(ctx, userAt(alaskaStart, 5))
	if state.TripState.Kind != nav.Navigating {
		t.Fatalf("expected Navigating after StartContext, got %v", state.TripState.Kind)
	}

	state = sess.UpdateUserLocationContext(ctx, userAt(alaskaStart, 5))
	if state.TripState.Kind != nav.Navigating {
		t.Fatalf("expected Navigating after UpdateUserLocationContext, got %v", state.TripState.Kind)
	}

	state = sess.AdvanceToNextStepContext(ctx)
	state = sess.AdvanceToNextStepContext(ctx)
	if state.TripState.Kind != nav.Complete {
		t.Fatalf("expected Complete after two AdvanceToNextStepContext calls, got %v", state.TripState.Kind)
	}
}
