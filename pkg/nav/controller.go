package nav

import (
	"math"
	"time"

	"github.com/NERVsystems/navengine/pkg/deviation"
	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/route"
)

// Controller is the pure navigation state machine: Idle, Navigating, or
// Complete, driven by location updates and explicit step-advance calls. It
// owns an immutable route and config; all mutable state lives in the
// NavState values it produces.
type Controller struct {
	route  route.Route
	config Config
}

// New constructs a Controller for the given route and config.
func New(r route.Route, config Config) *Controller {
	return &Controller{route: r, config: config}
}

// GetInitialState returns the starting NavState for location. If the route
// has no steps, the trip starts (and stays) Complete.
func (c *Controller) GetInitialState(location geo.UserLocation) NavState {
	now := time.Now()

	if len(c.route.Steps) == 0 {
		return NavState{
			TripState: TripState{
				Kind:    Complete,
				Summary: Summary{StartedAt: now, EndedAt: &now},
			},
			Condition: c.config.StepAdvanceCondition,
		}
	}

	remainingSteps := append([]route.RouteStep(nil), c.route.Steps...)
	remainingWaypoints := startingWaypoints(c.route.Waypoints)
	currentStep := remainingSteps[0]

	snapped := c.snapUserLocation(location, currentStep)
	progress := computeProgress(snapped, currentStep, remainingSteps)
	geomIndex := geometryIndex(snapped.Coordinates, currentStep)

	var dev deviation.Status
	if c.config.RouteDeviationTracking != nil {
		dev = c.config.RouteDeviationTracking.Check(location, currentStep)
	}

	visual := currentStep.GetActiveVisualInstruction(progress.DistanceToNextManeuver)
	spoken := currentStep.GetCurrentSpokenInstruction(progress.DistanceToNextManeuver)
	annJSON, _ := currentStep.AnnotationJSON(geomIndex)

	return NavState{
		TripState: TripState{
			Kind:                     Navigating,
			UserLocation:             location,
			SnappedUserLocation:      snapped,
			CurrentStepGeometryIndex: geomIndex,
			RemainingSteps:           remainingSteps,
			RemainingWaypoints:       remainingWaypoints,
			Progress:                 progress,
			Deviation:                dev,
			VisualInstruction:        visual,
			SpokenInstruction:        spoken,
			AnnotationJSON:           annJSON,
			Summary:                  Summary{StartedAt: now},
		},
		Condition: c.config.StepAdvanceCondition,
	}
}

// startingWaypoints drops the leading waypoint, which routers conventionally
// emit for the caller's own starting position.
func startingWaypoints(all []route.Waypoint) []route.Waypoint {
	if len(all) == 0 {
		return nil
	}
	return append([]route.Waypoint(nil), all[1:]...)
}

// UpdateUserLocation advances the trip state in response to a new observed
// location. It is a no-op on Idle or Complete states.
func (c *Controller) UpdateUserLocation(location geo.UserLocation, state NavState) NavState {
	if state.TripState.Kind != Navigating {
		return state
	}
	ts := state.TripState

	currentStep := ts.RemainingSteps[0]
	snapped := c.snapUserLocation(location, currentStep)

	distanceTraveled := ts.Summary.DistanceTraveled + geo.Haversine(ts.UserLocation.Coordinates, location.Coordinates)
	snappedDistanceTraveled := ts.Summary.SnappedDistanceTraveled + geo.Haversine(ts.SnappedUserLocation.Coordinates, snapped.Coordinates)

	next := nextStep(ts.RemainingSteps)
	result := state.Condition.Evaluate(snapped, currentStep, next)

	remainingSteps := ts.RemainingSteps
	remainingWaypoints := ts.RemainingWaypoints
	condition := result.NextIteration
	var justCompleted *route.RouteStep

	if result.ShouldAdvance {
		completed := remainingSteps[0]
		justCompleted = &completed
		remainingSteps = remainingSteps[1:]

		if len(remainingSteps) == 0 {
			now := time.Now()
			return NavState{
				TripState: TripState{
					Kind: Complete,
					Summary: Summary{
						StartedAt:               ts.Summary.StartedAt,
						EndedAt:                 &now,
						DistanceTraveled:        distanceTraveled,
						SnappedDistanceTraveled: snappedDistanceTraveled,
					},
				},
				Condition: condition,
			}
		}

		if len(remainingSteps) == 1 {
			condition = c.config.ArrivalStepAdvanceCondition
		}

		currentStep = remainingSteps[0]
		snapped = c.snapUserLocation(location, currentStep)
	}

	if c.config.WaypointAdvance != nil {
		remainingWaypoints = c.config.WaypointAdvance.Advance(location.Coordinates, remainingWaypoints, justCompleted)
	}

	geomIndex := geometryIndex(snapped.Coordinates, currentStep)
	progress := computeProgress(snapped, currentStep, remainingSteps)

	var dev deviation.Status
	if c.config.RouteDeviationTracking != nil {
		dev = c.config.RouteDeviationTracking.Check(location, currentStep)
	}

	visual := currentStep.GetActiveVisualInstruction(progress.DistanceToNextManeuver)
	spoken := currentStep.GetCurrentSpokenInstruction(progress.DistanceToNextManeuver)
	annJSON, _ := currentStep.AnnotationJSON(geomIndex)

	return NavState{
		TripState: TripState{
			Kind:                     Navigating,
			UserLocation:             location,
			SnappedUserLocation:      snapped,
			CurrentStepGeometryIndex: geomIndex,
			RemainingSteps:           remainingSteps,
			RemainingWaypoints:       remainingWaypoints,
			Progress:                 progress,
			Deviation:                dev,
			VisualInstruction:        visual,
			SpokenInstruction:        spoken,
			AnnotationJSON:           annJSON,
			Summary: Summary{
				StartedAt:               ts.Summary.StartedAt,
				DistanceTraveled:        distanceTraveled,
				SnappedDistanceTraveled: snappedDistanceTraveled,
			},
		},
		Condition: condition,
	}
}

// AdvanceToNextStep forces a single step advance regardless of the current
// condition's evaluation. Calling it on a Complete state is a no-op.
func (c *Controller) AdvanceToNextStep(state NavState) NavState {
	if state.TripState.Kind != Navigating {
		return state
	}
	ts := state.TripState

	completed := ts.RemainingSteps[0]
	remainingSteps := ts.RemainingSteps[1:]

	if len(remainingSteps) == 0 {
		now := time.Now()
		return NavState{
			TripState: TripState{
				Kind: Complete,
				Summary: Summary{
					StartedAt:               ts.Summary.StartedAt,
					EndedAt:                 &now,
					DistanceTraveled:        ts.Summary.DistanceTraveled,
					SnappedDistanceTraveled: ts.Summary.SnappedDistanceTraveled,
				},
			},
			Condition: state.Condition,
		}
	}

	condition := state.Condition
	if len(remainingSteps) == 1 {
		condition = c.config.ArrivalStepAdvanceCondition
	}

	currentStep := remainingSteps[0]
	snapped := c.snapUserLocation(ts.SnappedUserLocation, currentStep)

	remainingWaypoints := ts.RemainingWaypoints
	if c.config.WaypointAdvance != nil {
		remainingWaypoints = c.config.WaypointAdvance.Advance(ts.UserLocation.Coordinates, remainingWaypoints, &completed)
	}

	geomIndex := geometryIndex(snapped.Coordinates, currentStep)
	progress := computeProgress(snapped, currentStep, remainingSteps)

	var dev deviation.Status
	if c.config.RouteDeviationTracking != nil {
		dev = c.config.RouteDeviationTracking.Check(ts.UserLocation, currentStep)
	}

	visual := currentStep.GetActiveVisualInstruction(progress.DistanceToNextManeuver)
	spoken := currentStep.GetCurrentSpokenInstruction(progress.DistanceToNextManeuver)
	annJSON, _ := currentStep.AnnotationJSON(geomIndex)

	return NavState{
		TripState: TripState{
			Kind:                     Navigating,
			UserLocation:             ts.UserLocation,
			SnappedUserLocation:      snapped,
			CurrentStepGeometryIndex: geomIndex,
			RemainingSteps:           remainingSteps,
			RemainingWaypoints:       remainingWaypoints,
			Progress:                 progress,
			Deviation:                dev,
			VisualInstruction:        visual,
			SpokenInstruction:        spoken,
			AnnotationJSON:           annJSON,
			Summary:                  ts.Summary,
		},
		Condition: condition,
	}
}

func nextStep(remaining []route.RouteStep) *route.RouteStep {
	if len(remaining) < 2 {
		return nil
	}
	return &remaining[1]
}

// snapUserLocation snaps location onto currentStep's line, falling back to
// the raw coordinates when the snap is degenerate. When course filtering is
// enabled, the snapped location's course is replaced with the bearing of
// the polyline segment nearest the snap point.
func (c *Controller) snapUserLocation(location geo.UserLocation, currentStep route.RouteStep) geo.UserLocation {
	ls := currentStep.Linestring()
	snappedCoord, ok := geo.SnapPointToLine(location.Coordinates, ls)
	out := location
	if ok {
		out.Coordinates = snappedCoord
	}

	if c.config.SnappedLocationCourseFiltering {
		if course, ok := segmentBearing(location.Coordinates, ls); ok {
			cog := geo.NewCourseOverGround(uint16(math.Round(course)), 0)
			out.CourseOverGround = &cog
		}
	}

	return out
}

// segmentBearing finds the line segment nearest p and returns its bearing
// from true north, in clockwise degrees.
func segmentBearing(p geo.Location, ls geo.Polyline) (float64, bool) {
	if len(ls) < 2 {
		return 0, false
	}

	bestDist := math.Inf(1)
	bestIdx := -1
	for i := 0; i < len(ls)-1; i++ {
		mid := geo.Location{
			Latitude:  (ls[i].Latitude + ls[i+1].Latitude) / 2,
			Longitude: (ls[i].Longitude + ls[i+1].Longitude) / 2,
		}
		d := geo.Haversine(p, mid)
		if d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return bearing(ls[bestIdx], ls[bestIdx+1]), true
}

func bearing(a, b geo.Location) float64 {
	const toRad = math.Pi / 180.0
	lat1 := a.Latitude * toRad
	lat2 := b.Latitude * toRad
	dLon := (b.Longitude - a.Longitude) * toRad

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	theta := math.Atan2(y, x)

	return math.Mod(theta*180/math.Pi+360, 360)
}

// geometryIndex recomputes the current step geometry index by finding the
// greatest i such that haversine(p, geometry[i]) >= haversine(p,
// geometry[i+1]); ties resolve forward by construction, since the scan
// keeps the last qualifying index.
func geometryIndex(p geo.Location, step route.RouteStep) int {
	geom := step.Geometry
	best := 0
	for i := 0; i < len(geom)-1; i++ {
		if geo.HaversineDistance(p.Latitude, p.Longitude, geom[i].Latitude, geom[i].Longitude) >=
			geo.HaversineDistance(p.Latitude, p.Longitude, geom[i+1].Latitude, geom[i+1].Longitude) {
			best = i
		}
	}
	return best
}

func computeProgress(snapped geo.UserLocation, currentStep route.RouteStep, remainingSteps []route.RouteStep) Progress {
	distToNext := geo.DistanceToEndOfStep(snapped.Coordinates, currentStep.Linestring())

	distRemaining := distToNext
	durRemaining := fractionDuration(distToNext, currentStep)

	for _, s := range remainingSteps[1:] {
		distRemaining += s.Distance
		durRemaining += s.Duration
	}

	return Progress{
		DistanceToNextManeuver: distToNext,
		DistanceRemaining:      distRemaining,
		DurationRemaining:      durRemaining,
	}
}

func fractionDuration(distanceRemainingInStep float64, step route.RouteStep) float64 {
	if step.Distance <= 0 {
		return 0
	}
	fraction := distanceRemainingInStep / step.Distance
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	return fraction * step.Duration
}
