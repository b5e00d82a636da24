package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTripStateTransition(t *testing.T) {
	before := testutil.ToFloat64(TripStateTransitionsTotal.WithLabelValues("navigating"))
	RecordTripStateTransition("navigating")
	after := testutil.ToFloat64(TripStateTransitionsTotal.WithLabelValues("navigating"))
	if after != before+1 {
		t.Fatalf("expected counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestRecordStepAdvance(t *testing.T) {
	before := testutil.ToFloat64(StepAdvancesTotal.WithLabelValues("explicit"))
	RecordStepAdvance("explicit")
	after := testutil.ToFloat64(StepAdvancesTotal.WithLabelValues("explicit"))
	if after != before+1 {
		t.Fatalf("expected counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestRecordDeviationEvent(t *testing.T) {
	before := testutil.ToFloat64(DeviationEventsTotal)
	RecordDeviationEvent()
	after := testutil.ToFloat64(DeviationEventsTotal)
	if after != before+1 {
		t.Fatalf("expected counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestRecordRouteParseFailure(t *testing.T) {
	before := testutil.ToFloat64(RouteParseFailuresTotal.WithLabelValues("INVALID_GEOMETRY"))
	RecordRouteParseFailure("INVALID_GEOMETRY")
	after := testutil.ToFloat64(RouteParseFailuresTotal.WithLabelValues("INVALID_GEOMETRY"))
	if after != before+1 {
		t.Fatalf("expected counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestRecordRecordingEvent(t *testing.T) {
	before := testutil.ToFloat64(RecordingEventsTotal.WithLabelValues("state_update"))
	RecordRecordingEvent("state_update")
	after := testutil.ToFloat64(RecordingEventsTotal.WithLabelValues("state_update"))
	if after != before+1 {
		t.Fatalf("expected counter to increment by 1, got %v -> %v", before, after)
	}
}
