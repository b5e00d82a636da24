// Package advance implements the step-advance condition framework: a small
// set of composable predicates, each evaluated once per location update,
// that decide whether navigation should move on to the next route step.
//
// Every Condition is a value; Evaluate returns the next condition instance
// to carry forward rather than mutating the receiver, so the navigation
// controller can treat conditions as part of its otherwise-pure state.
package advance

import (
	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/route"
)

// Result is the outcome of evaluating a Condition once.
type Result struct {
	ShouldAdvance bool
	NextIteration Condition
}

// Condition decides, given the user's current location and the current
// (and, where relevant, next) route step, whether navigation should
// advance to the next step.
type Condition interface {
	Evaluate(user geo.UserLocation, currentStep route.RouteStep, nextStep *route.RouteStep) Result
}

// Manual never advances automatically; the application must call
// advance_to_next_step explicitly.
type Manual struct{}

// Evaluate implements Condition.
func (m Manual) Evaluate(geo.UserLocation, route.RouteStep, *route.RouteStep) Result {
	return Result{ShouldAdvance: false, NextIteration: Manual{}}
}

// DistanceToEndOfStep advances once the user is within Distance meters of
// the end of the current step, provided the location's accuracy is good
// enough to trust.
type DistanceToEndOfStep struct {
	Distance    float64
	MinAccuracy float64
}

// Evaluate implements Condition.
func (c DistanceToEndOfStep) Evaluate(user geo.UserLocation, currentStep route.RouteStep, _ *route.RouteStep) Result {
	if user.HorizontalAccuracy > c.MinAccuracy {
		return Result{ShouldAdvance: false, NextIteration: c}
	}
	advance := geo.IsWithinThresholdToEndOfLinestring(user.Coordinates, currentStep.Linestring(), c.Distance)
	return Result{ShouldAdvance: advance, NextIteration: c}
}

// DistanceFromStep advances once the user has deviated more than Distance
// meters from the current step's line, used to force an advance when the
// user has clearly left the step.
type DistanceFromStep struct {
	Distance    float64
	MinAccuracy float64
}

// Evaluate implements Condition.
func (c DistanceFromStep) Evaluate(user geo.UserLocation, currentStep route.RouteStep, _ *route.RouteStep) Result {
	if user.HorizontalAccuracy > c.MinAccuracy {
		return Result{ShouldAdvance: false, NextIteration: c}
	}
	deviation, ok := geo.DeviationFromLine(user.Coordinates, currentStep.Linestring())
	if !ok {
		return Result{ShouldAdvance: false, NextIteration: c}
	}
	return Result{ShouldAdvance: deviation > c.Distance, NextIteration: c}
}

// Or advances if any child condition advances. Every child is evaluated
// eagerly regardless of the others' outcome, so each carries its own
// evolved state forward independently into the next Or instance.
type Or struct {
	Conditions []Condition
}

// Evaluate implements Condition.
func (o Or) Evaluate(user geo.UserLocation, currentStep route.RouteStep, nextStep *route.RouteStep) Result {
	advance := false
	next := make([]Condition, len(o.Conditions))
	for i, c := range o.Conditions {
		r := c.Evaluate(user, currentStep, nextStep)
		if r.ShouldAdvance {
			advance = true
		}
		next[i] = r.NextIteration
	}
	return Result{ShouldAdvance: advance, NextIteration: Or{Conditions: next}}
}

// And advances only once every child condition advances. Like Or, every
// child is evaluated eagerly and its evolved state carried forward.
type And struct {
	Conditions []Condition
}

// Evaluate implements Condition.
func (a And) Evaluate(user geo.UserLocation, currentStep route.RouteStep, nextStep *route.RouteStep) Result {
	advance := true
	next := make([]Condition, len(a.Conditions))
	for i, c := range a.Conditions {
		r := c.Evaluate(user, currentStep, nextStep)
		if !r.ShouldAdvance {
			advance = false
		}
		next[i] = r.NextIteration
	}
	return Result{ShouldAdvance: advance, NextIteration: And{Conditions: next}}
}

// DistanceEntryAndExit is a two-phase condition that prevents eager advance
// on short steps and intersections: it first waits until the user has
// entered the zone near the end of the step, then requires the user to
// have physically passed through before releasing the step.
type DistanceEntryAndExit struct {
	DistanceToEnd    float64
	DistanceAfterEnd float64
	MinAccuracy      float64
	HasReachedEnd    bool
}

// DefaultDistanceEntryAndExit returns the condition's default tuning,
// matching the reference mobile SDK this engine was adapted from.
func DefaultDistanceEntryAndExit() DistanceEntryAndExit {
	return DistanceEntryAndExit{
		DistanceToEnd:    20,
		DistanceAfterEnd: 5,
		MinAccuracy:      25,
		HasReachedEnd:    false,
	}
}

// Evaluate implements Condition.
func (c DistanceEntryAndExit) Evaluate(user geo.UserLocation, currentStep route.RouteStep, nextStep *route.RouteStep) Result {
	if !c.HasReachedEnd {
		// Phase A: waiting to enter the zone near the end of the step.
		// Never advances in this phase.
		entry := DistanceToEndOfStep{Distance: c.DistanceToEnd, MinAccuracy: c.MinAccuracy}
		r := entry.Evaluate(user, currentStep, nextStep)

		next := c
		next.HasReachedEnd = r.ShouldAdvance
		return Result{ShouldAdvance: false, NextIteration: next}
	}

	// Phase B: waiting to exit the step's vicinity before releasing it.
	exit := DistanceFromStep{Distance: c.DistanceAfterEnd, MinAccuracy: c.MinAccuracy}
	r := exit.Evaluate(user, currentStep, nextStep)

	next := c
	if r.ShouldAdvance {
		next.HasReachedEnd = false
	}
	return Result{ShouldAdvance: r.ShouldAdvance, NextIteration: next}
}

// RelativeLineStringDistance advances when the user is closer to the next
// step's line than to the current one, which tracks naturally through
// intersections without a fixed distance threshold.
type RelativeLineStringDistance struct {
	MinAccuracy              float64
	AutomaticAdvanceDistance *float64
}

// Evaluate implements Condition.
func (c RelativeLineStringDistance) Evaluate(user geo.UserLocation, currentStep route.RouteStep, nextStep *route.RouteStep) Result {
	if user.HorizontalAccuracy > c.MinAccuracy {
		return Result{ShouldAdvance: false, NextIteration: c}
	}

	if c.AutomaticAdvanceDistance != nil {
		within := geo.IsWithinThresholdToEndOfLinestring(user.Coordinates, currentStep.Linestring(), *c.AutomaticAdvanceDistance)
		if within {
			return Result{ShouldAdvance: true, NextIteration: c}
		}
	}

	if nextStep == nil {
		return Result{ShouldAdvance: c.fallback(user, currentStep), NextIteration: c}
	}

	snapCurrent, okCurrent := geo.SnapPointToLine(user.Coordinates, currentStep.Linestring())
	snapNext, okNext := geo.SnapPointToLine(user.Coordinates, nextStep.Linestring())
	if !okCurrent || !okNext {
		return Result{ShouldAdvance: c.fallback(user, currentStep), NextIteration: c}
	}

	distCurrent := geo.Haversine(user.Coordinates, snapCurrent)
	distNext := geo.Haversine(user.Coordinates, snapNext)

	return Result{ShouldAdvance: distNext <= distCurrent, NextIteration: c}
}

// fallback is the contract fixed for the degenerate case where the
// relative-distance comparison cannot be made (either a missing next step
// or a degenerate snap on one of the two lines): fall back to
// DistanceToEndOfStep(min_accuracy, min_accuracy).
func (c RelativeLineStringDistance) fallback(user geo.UserLocation, currentStep route.RouteStep) bool {
	d := DistanceToEndOfStep{Distance: c.MinAccuracy, MinAccuracy: c.MinAccuracy}
	return d.Evaluate(user, currentStep, nil).ShouldAdvance
}
