// Package nav implements the navigation controller: the pure state machine
// that turns a route plus a stream of observed locations into a sequence of
// trip states, consulting the step-advance, waypoint-advance and deviation
// packages at each tick.
package nav

import (
	"encoding/json"
	"time"

	"github.com/NERVsystems/navengine/pkg/advance"
	"github.com/NERVsystems/navengine/pkg/deviation"
	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/route"
	"github.com/NERVsystems/navengine/pkg/waypoint"
)

// Progress holds the distance/duration figures recomputed on every tick.
type Progress struct {
	DistanceToNextManeuver float64 `json:"distance_to_next_maneuver"`
	DistanceRemaining      float64 `json:"distance_remaining"`
	DurationRemaining      float64 `json:"duration_remaining"`
}

// Summary holds the lifetime figures for a trip.
type Summary struct {
	StartedAt               time.Time  `json:"started_at"`
	EndedAt                 *time.Time `json:"ended_at,omitempty"`
	DistanceTraveled        float64    `json:"distance_traveled"`
	SnappedDistanceTraveled float64    `json:"snapped_distance_traveled"`
}

// TripState is a sum type: a trip is Idle (never started), Navigating, or
// Complete.
type TripState struct {
	Kind Kind `json:"kind"`

	// Populated only when Kind == Navigating.
	UserLocation             geo.UserLocation         `json:"user_location,omitzero"`
	SnappedUserLocation      geo.UserLocation         `json:"snapped_user_location,omitzero"`
	CurrentStepGeometryIndex int                      `json:"current_step_geometry_index,omitempty"`
	RemainingSteps           []route.RouteStep        `json:"remaining_steps,omitempty"`
	RemainingWaypoints       []route.Waypoint         `json:"remaining_waypoints,omitempty"`
	Progress                 Progress                 `json:"progress,omitzero"`
	Deviation                deviation.Status         `json:"deviation,omitzero"`
	VisualInstruction        *route.VisualInstruction `json:"visual_instruction,omitempty"`
	SpokenInstruction        *route.SpokenInstruction `json:"spoken_instruction,omitempty"`
	AnnotationJSON           json.RawMessage          `json:"annotation,omitempty"`

	// Populated for both Navigating and Complete.
	Summary Summary `json:"summary"`
}

// Kind discriminates TripState's variants.
type Kind int

const (
	Idle Kind = iota
	Navigating
	Complete
)

// String returns the lowercase wire name of k, used by pkg/recording and by
// logging call sites throughout the engine's edges.
func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Navigating:
		return "navigating"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "idle":
		*k = Idle
	case "navigating":
		*k = Navigating
	case "complete":
		*k = Complete
	default:
		*k = Idle
	}
	return nil
}

// NavState wraps a TripState together with the current step-advance
// condition instance, which may carry evolving internal state (e.g.
// DistanceEntryAndExit.HasReachedEnd).
type NavState struct {
	TripState TripState
	Condition advance.Condition
}

// Config configures a Controller. All fields are immutable once the
// Controller is constructed.
type Config struct {
	WaypointAdvance                waypoint.Checker
	RouteDeviationTracking         deviation.Detector
	StepAdvanceCondition           advance.Condition
	ArrivalStepAdvanceCondition    advance.Condition
	SnappedLocationCourseFiltering bool
}
