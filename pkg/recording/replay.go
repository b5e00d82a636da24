package recording

import (
	"encoding/json"
	"fmt"

	"github.com/NERVsystems/navengine/pkg/nav"
	"github.com/NERVsystems/navengine/pkg/naverr"
	"github.com/NERVsystems/navengine/pkg/route"
)

// Replayer exposes a previously captured Recording for step-by-step
// inspection, and for decoding the trip-state sequence it recorded so a
// fresh controller's output can be compared against it.
type Replayer struct {
	rec   Recording
	index int
}

// NewReplayer parses a serialized Recording. The JSON decode only fails on
// a structurally invalid document; unknown event kinds are tolerated and
// simply skipped by TripStates.
func NewReplayer(data []byte) (*Replayer, error) {
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, naverr.Newf(naverr.CodeSerializationError, "unmarshal recording: %v", err)
	}
	return &Replayer{rec: rec}, nil
}

// InitialRoute returns the route the recorded trip started with.
func (r *Replayer) InitialRoute() route.Route { return r.rec.InitialRoute }

// InitialTimestampMs returns the wall-clock time, in Unix milliseconds, the
// recording began at.
func (r *Replayer) InitialTimestampMs() int64 { return r.rec.InitialTimestampMs }

// Config reconstructs the nav.Config the recorded trip ran with.
func (r *Replayer) Config() (nav.Config, error) {
	return UnmarshalConfig(r.rec.Config)
}

// Events returns every recorded event, in order.
func (r *Replayer) Events() []Event {
	return append([]Event(nil), r.rec.Events...)
}

// DurationMs returns the span between the first and last recorded event
// timestamps, in milliseconds. Zero if there are fewer than two events.
func (r *Replayer) DurationMs() int64 {
	if len(r.rec.Events) < 2 {
		return 0
	}
	first := r.rec.Events[0].TimestampMs
	last := r.rec.Events[len(r.rec.Events)-1].TimestampMs
	return last - first
}

// Index returns the replayer's current cursor position into Events.
func (r *Replayer) Index() int { return r.index }

// Next returns the next event and advances the cursor, or ok=false once the
// log is exhausted.
func (r *Replayer) Next() (Event, bool) {
	if r.index >= len(r.rec.Events) {
		return Event{}, false
	}
	e := r.rec.Events[r.index]
	r.index++
	return e, true
}

// Reset rewinds the cursor to the start of the event log.
func (r *Replayer) Reset() { r.index = 0 }

// TripStates decodes every StateUpdate event's trip_state, skipping any
// event kind it does not recognize so a newer recording still replays on
// an older engine.
func (r *Replayer) TripStates() ([]nav.TripState, error) {
	var out []nav.TripState
	for _, e := range r.rec.Events {
		if e.Kind != EventStateUpdate {
			continue
		}
		var ts nav.TripState
		if err := json.Unmarshal(e.TripState, &ts); err != nil {
			return nil, fmt.Errorf("recording: decoding trip state: %w", err)
		}
		out = append(out, ts)
	}
	return out, nil
}
