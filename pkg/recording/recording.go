// Package recording implements trip recording: a pluggable observer that
// witnesses every trip-state transition a navigation session produces and
// can serialize/deserialize a full trip for regression testing.
// pkg/recording/replay.go provides the matching replayer.
package recording

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/NERVsystems/navengine/pkg/advance"
	"github.com/NERVsystems/navengine/pkg/deviation"
	"github.com/NERVsystems/navengine/pkg/monitoring"
	"github.com/NERVsystems/navengine/pkg/nav"
	"github.com/NERVsystems/navengine/pkg/naverr"
	"github.com/NERVsystems/navengine/pkg/route"
	"github.com/NERVsystems/navengine/pkg/waypoint"
)

// Version is the current Recording wire format version. Replayers must
// ignore event variants they don't recognize rather than failing the whole
// replay.
const Version = 1

// EventKind discriminates the tagged union of recorded events.
type EventKind string

const (
	// EventStateUpdate records a single NavState produced by the session,
	// whether from Start, UpdateUserLocation, or AdvanceToNextStep.
	EventStateUpdate EventKind = "state_update"
	// EventRouteUpdate records the trip switching to a newly computed
	// route (e.g. after the host application reroutes); the engine itself
	// never produces this event, but the format reserves it for hosts
	// that layer rerouting on top of the session.
	EventRouteUpdate EventKind = "route_update"
)

// Event is one entry in a Recording's event log.
type Event struct {
	Kind        EventKind       `json:"kind"`
	TimestampMs int64           `json:"timestamp_ms"`
	TripState   json.RawMessage `json:"trip_state,omitempty"`
	Condition   json.RawMessage `json:"step_advance_condition_snapshot,omitempty"`
	Route       *route.Route    `json:"route,omitempty"`
}

// ConfigWire is the canonical serialized form of a nav.Config, built from
// each component package's own tagged-union wire representation.
type ConfigWire struct {
	WaypointAdvance                json.RawMessage `json:"waypoint_advance"`
	RouteDeviationTracking         json.RawMessage `json:"route_deviation_tracking"`
	StepAdvanceCondition           json.RawMessage `json:"step_advance_condition"`
	ArrivalStepAdvanceCondition    json.RawMessage `json:"arrival_step_advance_condition"`
	SnappedLocationCourseFiltering bool            `json:"snapped_location_course_filtering"`
}

// MarshalConfig encodes a nav.Config into its canonical wire form.
func MarshalConfig(cfg nav.Config) (ConfigWire, error) {
	wp, err := waypoint.Marshal(cfg.WaypointAdvance)
	if err != nil {
		return ConfigWire{}, naverr.Newf(naverr.CodeSerializationError, "waypoint advance: %v", err)
	}
	dev, err := deviation.Marshal(cfg.RouteDeviationTracking)
	if err != nil {
		return ConfigWire{}, naverr.Newf(naverr.CodeSerializationError, "deviation tracking: %v", err)
	}
	step, err := advance.Marshal(cfg.StepAdvanceCondition)
	if err != nil {
		return ConfigWire{}, naverr.Newf(naverr.CodeSerializationError, "step advance condition: %v", err)
	}
	arrival, err := advance.Marshal(cfg.ArrivalStepAdvanceCondition)
	if err != nil {
		return ConfigWire{}, naverr.Newf(naverr.CodeSerializationError, "arrival step advance condition: %v", err)
	}
	return ConfigWire{
		WaypointAdvance:                wp,
		RouteDeviationTracking:         dev,
		StepAdvanceCondition:           step,
		ArrivalStepAdvanceCondition:    arrival,
		SnappedLocationCourseFiltering: cfg.SnappedLocationCourseFiltering,
	}, nil
}

// UnmarshalConfig reconstructs a nav.Config from its canonical wire form.
func UnmarshalConfig(w ConfigWire) (nav.Config, error) {
	wp, err := waypoint.Unmarshal(w.WaypointAdvance)
	if err != nil {
		return nav.Config{}, naverr.Newf(naverr.CodeSerializationError, "waypoint advance: %v", err)
	}
	dev, err := deviation.Unmarshal(w.RouteDeviationTracking)
	if err != nil {
		return nav.Config{}, naverr.Newf(naverr.CodeSerializationError, "deviation tracking: %v", err)
	}
	step, err := advance.Unmarshal(w.StepAdvanceCondition)
	if err != nil {
		return nav.Config{}, naverr.Newf(naverr.CodeSerializationError, "step advance condition: %v", err)
	}
	arrival, err := advance.Unmarshal(w.ArrivalStepAdvanceCondition)
	if err != nil {
		return nav.Config{}, naverr.Newf(naverr.CodeSerializationError, "arrival step advance condition: %v", err)
	}
	return nav.Config{
		WaypointAdvance:                wp,
		RouteDeviationTracking:         dev,
		StepAdvanceCondition:           step,
		ArrivalStepAdvanceCondition:    arrival,
		SnappedLocationCourseFiltering: w.SnappedLocationCourseFiltering,
	}, nil
}

// Recording is a full serialized trip: enough to reconstruct a controller
// and replay the exact sequence of location updates and step advances that
// produced it.
type Recording struct {
	Version            int         `json:"version"`
	InitialTimestampMs int64       `json:"initial_timestamp_ms"`
	Config             ConfigWire  `json:"config"`
	InitialRoute       route.Route `json:"initial_route"`
	Events             []Event     `json:"events"`
}

// Recorder observes a navigation session and appends every transition to an
// in-memory Recording. It satisfies session.Observer structurally via
// OnStateUpdate. The event list is the recorder's only mutable state and
// is guarded by a mutex that is never held across an observer callback.
type Recorder struct {
	logger *slog.Logger

	mu      sync.Mutex
	rec     Recording
	enabled bool
}

// New constructs a Recorder seeded with the route and configuration the
// trip is about to run with. logger may be nil, in which case
// slog.Default() is used.
func New(initialRoute route.Route, cfg nav.Config, logger *slog.Logger) (*Recorder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfgWire, err := MarshalConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		logger: logger,
		rec: Recording{
			Version:            Version,
			InitialTimestampMs: nowMs(),
			Config:             cfgWire,
			InitialRoute:       initialRoute,
		},
		enabled: true,
	}, nil
}

// Disable stops the recorder from appending further events. Existing events
// remain in the Recording.
func (r *Recorder) Disable() {
	r.mu.Lock()
	r.enabled = false
	r.mu.Unlock()
}

// OnStateUpdate implements session.Observer. It is called synchronously by
// the session after every transition.
func (r *Recorder) OnStateUpdate(state nav.NavState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}

	tsJSON, err := json.Marshal(state.TripState)
	if err != nil {
		r.logger.Error("recording: failed to marshal trip state", "error", err)
		return
	}
	condJSON, err := advance.Marshal(state.Condition)
	if err != nil {
		r.logger.Error("recording: failed to marshal step-advance condition", "error", err)
		return
	}

	r.rec.Events = append(r.rec.Events, Event{
		Kind:        EventStateUpdate,
		TimestampMs: nowMs(),
		TripState:   tsJSON,
		Condition:   condJSON,
	})
	monitoring.RecordRecordingEvent(string(EventStateUpdate))
}

// RecordRouteUpdate appends a RouteUpdate event, for host applications that
// layer rerouting on top of a session.
func (r *Recorder) RecordRouteUpdate(newRoute route.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	r.rec.Events = append(r.rec.Events, Event{
		Kind:        EventRouteUpdate,
		TimestampMs: nowMs(),
		Route:       &newRoute,
	})
	monitoring.RecordRecordingEvent(string(EventRouteUpdate))
}

// Recording returns a snapshot of the recording captured so far.
func (r *Recorder) Recording() Recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.rec
	out.Events = append([]Event(nil), r.rec.Events...)
	return out
}

// Marshal serializes the recording as JSON, forward-compatible via the
// Version field.
func (r *Recorder) Marshal() ([]byte, error) {
	rec := r.Recording()
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, naverr.Newf(naverr.CodeSerializationError, "marshal recording: %v", err)
	}
	return data, nil
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
