// Package session wraps a navigation controller with observer dispatch:
// every state transition the controller produces is broadcast,
// synchronously and in order, to every registered observer before the
// call returns to the caller.
//
// A Session owns no mutable navigation state of its own beyond the current
// NavState and its observer list; the controller and route it wraps remain
// immutable. Callers may drive a Session from any goroutine but must
// serialize their own calls into it.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/monitoring"
	"github.com/NERVsystems/navengine/pkg/nav"
	"github.com/NERVsystems/navengine/pkg/tracing"
)

// Observer witnesses every trip-state transition a Session produces.
// Implementations must not re-enter the Session that is calling them, and
// must hand off any work that would block or suspend.
type Observer interface {
	OnStateUpdate(state nav.NavState)
}

// ObserverFunc adapts a plain function into an Observer.
type ObserverFunc func(state nav.NavState)

// OnStateUpdate implements Observer.
func (f ObserverFunc) OnStateUpdate(state nav.NavState) { f(state) }

// Session drives a nav.Controller and fans its output out to observers in
// registration order. The zero value is not usable; construct with New.
type Session struct {
	controller *nav.Controller
	logger     *slog.Logger

	mu        sync.Mutex
	observers []Observer
	current   nav.NavState
	started   bool
}

// New constructs a Session around controller. logger may be nil, in which
// case slog.Default() is used.
func New(controller *nav.Controller, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{controller: controller, logger: logger}
}

// AddObserver registers an observer. Observers added after the trip has
// started do not receive past states; they see every subsequent one.
func (s *Session) AddObserver(o Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Start begins navigation at location, computing and broadcasting the
// initial NavState. Calling Start more than once re-initializes the trip.
func (s *Session) Start(location geo.UserLocation) nav.NavState {
	return s.StartContext(context.Background(), location)
}

// StartContext is Start with a context threaded through for tracing, so a
// host calling in from an already-traced operation (e.g. an MCP tool
// handler) gets a child span for the dispatch.
func (s *Session) StartContext(ctx context.Context, location geo.UserLocation) nav.NavState {
	ctx, span := tracing.StartSpan(ctx, "session.Start")
	defer span.End()

	state := s.controller.GetInitialState(location)
	s.setState(state)
	s.logger.Debug("navigation session started", "kind", state.TripState.Kind)
	monitoring.RecordTripStateTransition(state.TripState.Kind.String())
	tracing.SetAttributes(ctx, tracing.TripStateAttributes(state.TripState.Kind.String())...)
	s.broadcast(state)
	return state
}

// UpdateUserLocation feeds a new observed location into the controller and
// broadcasts the resulting NavState. Before Start it returns the zero
// NavState without broadcasting; once the trip has completed it is a
// no-op that still broadcasts the unchanged state.
func (s *Session) UpdateUserLocation(location geo.UserLocation) nav.NavState {
	return s.UpdateUserLocationContext(context.Background(), location)
}

// UpdateUserLocationContext is UpdateUserLocation with a context threaded
// through for tracing.
func (s *Session) UpdateUserLocationContext(ctx context.Context, location geo.UserLocation) nav.NavState {
	ctx, span := tracing.StartSpan(ctx, "session.UpdateUserLocation")
	defer span.End()

	s.mu.Lock()
	prev := s.current
	started := s.started
	s.mu.Unlock()

	if !started {
		s.logger.Warn("location update received before session start; ignoring")
		return prev
	}

	next := s.controller.UpdateUserLocation(location, prev)
	s.setState(next)
	if next.TripState.Kind != prev.TripState.Kind {
		s.logger.Info("trip state transitioned", "from", prev.TripState.Kind, "to", next.TripState.Kind)
		monitoring.RecordTripStateTransition(next.TripState.Kind.String())
	}
	if len(next.TripState.RemainingSteps) < len(prev.TripState.RemainingSteps) {
		monitoring.RecordStepAdvance("condition")
	}
	if next.TripState.Deviation.OffRoute {
		monitoring.RecordDeviationEvent()
	}
	tracing.SetAttributes(ctx, tracing.TripStateAttributes(next.TripState.Kind.String())...)
	s.broadcast(next)
	return next
}

// AdvanceToNextStep forces a single step advance and broadcasts the result.
func (s *Session) AdvanceToNextStep() nav.NavState {
	return s.AdvanceToNextStepContext(context.Background())
}

// AdvanceToNextStepContext is AdvanceToNextStep with a context threaded
// through for tracing.
func (s *Session) AdvanceToNextStepContext(ctx context.Context) nav.NavState {
	_, span := tracing.StartSpan(ctx, "session.AdvanceToNextStep")
	defer span.End()

	s.mu.Lock()
	prev := s.current
	s.mu.Unlock()

	next := s.controller.AdvanceToNextStep(prev)
	s.setState(next)
	s.logger.Debug("step advanced explicitly", "remaining_steps", len(next.TripState.RemainingSteps))
	monitoring.RecordStepAdvance("explicit")
	s.broadcast(next)
	return next
}

// Current returns the most recently broadcast NavState.
func (s *Session) Current() nav.NavState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) setState(state nav.NavState) {
	s.mu.Lock()
	s.current = state
	s.started = true
	s.mu.Unlock()
}

// broadcast delivers state to every observer, synchronously and in
// registration order, without holding the session's mutex across the
// callbacks so an observer calling back into Current (but not into a
// mutating method) cannot deadlock.
func (s *Session) broadcast(state nav.NavState) {
	s.mu.Lock()
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.OnStateUpdate(state)
	}
}
