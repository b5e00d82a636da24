// Package monitoring provides the Prometheus metrics the navigation
// engine's edges emit: state transitions, deviation events, step advances,
// and route-parse failures. The engine's pure core (pkg/nav and below)
// does not import this package; only pkg/session, pkg/routeparser,
// pkg/recording, and cmd/navmcp do.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ServiceName identifies this service in metrics and traces.
const ServiceName = "navengine"

var (
	// TripStateTransitionsTotal counts every trip-state transition a
	// session produces, labeled by the trip_state kind it transitioned
	// into ("navigating", "complete").
	TripStateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navengine_trip_state_transitions_total",
			Help: "Total number of trip-state transitions produced by navigation sessions",
		},
		[]string{"kind"},
	)

	// StepAdvancesTotal counts step advances, labeled by whether they
	// were triggered by a step-advance condition or forced explicitly.
	StepAdvancesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navengine_step_advances_total",
			Help: "Total number of route-step advances",
		},
		[]string{"trigger"},
	)

	// DeviationEventsTotal counts every update in which the deviation
	// detector reported the user off-route.
	DeviationEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "navengine_deviation_events_total",
			Help: "Total number of location updates reporting route deviation",
		},
	)

	// RouteParseFailuresTotal counts route-response parse failures,
	// labeled by the naverr.Code of the failure.
	RouteParseFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navengine_route_parse_failures_total",
			Help: "Total number of OSRM-family route response parse failures",
		},
		[]string{"code"},
	)

	// RouteParseDuration observes how long parsing an OSRM-family
	// response took, in seconds.
	RouteParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "navengine_route_parse_duration_seconds",
			Help:    "Duration of OSRM-family route response parsing",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
	)

	// RecordingEventsTotal counts events appended to recordings, labeled
	// by event kind.
	RecordingEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navengine_recording_events_total",
			Help: "Total number of events appended to trip recordings",
		},
		[]string{"kind"},
	)
)

// RecordTripStateTransition increments TripStateTransitionsTotal for the
// given trip-state kind.
func RecordTripStateTransition(kind string) {
	TripStateTransitionsTotal.WithLabelValues(kind).Inc()
}

// RecordStepAdvance increments StepAdvancesTotal for the given trigger,
// either "condition" (the configured step-advance condition fired) or
// "explicit" (the host called AdvanceToNextStep directly).
func RecordStepAdvance(trigger string) {
	StepAdvancesTotal.WithLabelValues(trigger).Inc()
}

// RecordDeviationEvent increments DeviationEventsTotal.
func RecordDeviationEvent() {
	DeviationEventsTotal.Inc()
}

// RecordRouteParseFailure increments RouteParseFailuresTotal for the given
// error code.
func RecordRouteParseFailure(code string) {
	RouteParseFailuresTotal.WithLabelValues(code).Inc()
}

// RecordRecordingEvent increments RecordingEventsTotal for the given event
// kind.
func RecordRecordingEvent(kind string) {
	RecordingEventsTotal.WithLabelValues(kind).Inc()
}
