// Package route defines the route model that the navigation controller
// consumes: routes, steps, waypoints, instructions, and per-segment
// annotations. Values in this package are immutable once constructed.
package route

import (
	"encoding/json"

	"github.com/NERVsystems/navengine/pkg/geo"
)

// WaypointKind describes how a waypoint should be treated by the routing
// backend and by the controller's waypoint-advance logic.
type WaypointKind string

const (
	// WaypointKindBreak starts or ends a leg of the trip; most routing
	// engines generate arrival and departure instructions for it.
	WaypointKindBreak WaypointKind = "break"
	// WaypointKindVia is simply passed through, with no arrival/departure
	// instructions.
	WaypointKindVia WaypointKind = "via"
)

// Waypoint is a coordinate visited by the route.
type Waypoint struct {
	Coordinate geo.Location `json:"coordinate"`
	Kind       WaypointKind `json:"kind"`
}

// ManeuverType indicates the kind of maneuver to perform at a step.
type ManeuverType string

// Maneuver types, matching the OSRM/Mapbox/Valhalla vocabulary.
const (
	ManeuverTurn           ManeuverType = "turn"
	ManeuverNewName        ManeuverType = "new name"
	ManeuverDepart         ManeuverType = "depart"
	ManeuverArrive         ManeuverType = "arrive"
	ManeuverMerge          ManeuverType = "merge"
	ManeuverOnRamp         ManeuverType = "on ramp"
	ManeuverOffRamp        ManeuverType = "off ramp"
	ManeuverFork           ManeuverType = "fork"
	ManeuverEndOfRoad      ManeuverType = "end of road"
	ManeuverContinue       ManeuverType = "continue"
	ManeuverRoundabout     ManeuverType = "roundabout"
	ManeuverRotary         ManeuverType = "rotary"
	ManeuverRoundaboutTurn ManeuverType = "roundabout turn"
	ManeuverNotification   ManeuverType = "notification"
	ManeuverExitRoundabout ManeuverType = "exit roundabout"
	ManeuverExitRotary     ManeuverType = "exit rotary"
)

// ManeuverModifier specifies additional direction information about a
// ManeuverType.
type ManeuverModifier string

// Maneuver modifiers, matching the OSRM/Mapbox/Valhalla vocabulary.
const (
	ModifierUTurn       ManeuverModifier = "uturn"
	ModifierSharpRight  ManeuverModifier = "sharp right"
	ModifierRight       ManeuverModifier = "right"
	ModifierSlightRight ManeuverModifier = "slight right"
	ModifierStraight    ManeuverModifier = "straight"
	ModifierSlightLeft  ManeuverModifier = "slight left"
	ModifierLeft        ManeuverModifier = "left"
	ModifierSharpLeft   ManeuverModifier = "sharp left"
)

// LaneInfo describes one lane at an intersection, as surfaced by a banner's
// sub-instruction components.
type LaneInfo struct {
	Active          bool     `json:"active"`
	Directions      []string `json:"directions"`
	ActiveDirection *string  `json:"active_direction,omitempty"`
}

// VisualInstructionContent is the primary, secondary, or sub content of a
// visual instruction.
type VisualInstructionContent struct {
	Text                  string            `json:"text"`
	ManeuverType          *ManeuverType     `json:"maneuver_type,omitempty"`
	ManeuverModifier      *ManeuverModifier `json:"maneuver_modifier,omitempty"`
	RoundaboutExitDegrees *uint16           `json:"roundabout_exit_degrees,omitempty"`
	LaneInfo              []LaneInfo        `json:"lane_info,omitempty"`
	ExitNumbers           []string          `json:"exit_numbers,omitempty"`
}

// VisualInstruction is a single banner to display to the user, active over
// a window of distance before a maneuver.
type VisualInstruction struct {
	PrimaryContent                VisualInstructionContent  `json:"primary_content"`
	SecondaryContent              *VisualInstructionContent `json:"secondary_content,omitempty"`
	SubContent                    *VisualInstructionContent `json:"sub_content,omitempty"`
	TriggerDistanceBeforeManeuver float64                   `json:"trigger_distance_before_maneuver"`
}

// SpokenInstruction is a single utterance to announce to the user, active
// over a window of distance before a maneuver.
type SpokenInstruction struct {
	Text                          string  `json:"text"`
	SSML                          *string `json:"ssml,omitempty"`
	TriggerDistanceBeforeManeuver float64 `json:"trigger_distance_before_maneuver"`
	UtteranceID                   string  `json:"utterance_id"`
}

// MaxSpeedUnit is the unit a posted speed limit annotation is expressed in.
type MaxSpeedUnit string

const (
	MaxSpeedKPH   MaxSpeedUnit = "km/h"
	MaxSpeedMPH   MaxSpeedUnit = "mph"
	MaxSpeedKnots MaxSpeedUnit = "knots"
)

// MaxSpeed is the local posted speed limit between a pair of annotated
// coordinates. Exactly one of None, Unknown or Known applies.
type MaxSpeed struct {
	None    bool
	Unknown bool
	Speed   float64
	Unit    MaxSpeedUnit
}

// MetersPerSecond converts a Known max speed to meters per second. It
// returns false for None/Unknown max speeds.
func (m MaxSpeed) MetersPerSecond() (float64, bool) {
	if m.None || m.Unknown {
		return 0, false
	}
	switch m.Unit {
	case MaxSpeedKPH:
		return m.Speed / 3.6, true
	case MaxSpeedMPH:
		return m.Speed * 0.44704, true
	case MaxSpeedKnots:
		return m.Speed * 0.514444, true
	default:
		return 0, false
	}
}

// Annotation is the per-segment telemetry the router attaches between two
// consecutive geometry coordinates.
type Annotation struct {
	Distance   *float64  `json:"distance,omitempty"`
	Duration   *float64  `json:"duration,omitempty"`
	Speed      *float64  `json:"speed,omitempty"`
	MaxSpeed   *MaxSpeed `json:"maxspeed,omitempty"`
	Congestion *string   `json:"congestion,omitempty"`
}

// Incident is an event (closure, construction, accident, ...) affecting a
// range of a step's geometry, re-based to step-local indices.
type Incident struct {
	ID                 string  `json:"id"`
	Kind               string  `json:"kind,omitempty"`
	Description        string  `json:"description,omitempty"`
	GeometryIndexStart uint64  `json:"geometry_index_start"`
	GeometryIndexEnd   *uint64 `json:"geometry_index_end,omitempty"`
}

// RouteStep is a single maneuver plus the travel segment until the next
// maneuver.
type RouteStep struct {
	Geometry           []geo.Location      `json:"geometry"`
	Distance           float64             `json:"distance"`
	Duration           float64             `json:"duration"`
	RoadName           *string             `json:"road_name,omitempty"`
	Exits              []string            `json:"exits,omitempty"`
	Instruction        string              `json:"instruction"`
	VisualInstructions []VisualInstruction `json:"visual_instructions"`
	SpokenInstructions []SpokenInstruction `json:"spoken_instructions"`
	Annotations        []Annotation        `json:"annotations,omitempty"`
	Incidents          []Incident          `json:"incidents,omitempty"`
}

// Linestring returns the step's geometry as a geo.Polyline.
func (s RouteStep) Linestring() geo.Polyline {
	return geo.Polyline(s.Geometry)
}

// GetActiveVisualInstruction finds the last instruction whose trigger
// distance has been passed, within a 5 meter fudge factor accounting for
// cross-engine numeric drift. It returns nil if no instruction qualifies.
func (s RouteStep) GetActiveVisualInstruction(distanceToEndOfStep float64) *VisualInstruction {
	for i := len(s.VisualInstructions) - 1; i >= 0; i-- {
		instr := s.VisualInstructions[i]
		if distanceToEndOfStep-instr.TriggerDistanceBeforeManeuver <= 5.0 {
			return &s.VisualInstructions[i]
		}
	}
	return nil
}

// GetCurrentSpokenInstruction finds the last spoken instruction whose
// trigger distance has been passed, with the same 5 meter fudge factor as
// GetActiveVisualInstruction.
func (s RouteStep) GetCurrentSpokenInstruction(distanceToEndOfStep float64) *SpokenInstruction {
	for i := len(s.SpokenInstructions) - 1; i >= 0; i-- {
		instr := s.SpokenInstructions[i]
		if distanceToEndOfStep-instr.TriggerDistanceBeforeManeuver <= 5.0 {
			return &s.SpokenInstructions[i]
		}
	}
	return nil
}

// CurrentLanes returns the lane info of the step's sub visual instruction,
// if any is present on any visual instruction.
func (s RouteStep) CurrentLanes() []LaneInfo {
	for _, instr := range s.VisualInstructions {
		if instr.SubContent != nil && len(instr.SubContent.LaneInfo) > 0 {
			return instr.SubContent.LaneInfo
		}
	}
	return nil
}

// ActiveLaneDirections returns the directions of every currently-active
// lane reported for the step, de-duplicated in first-seen order.
func (s RouteStep) ActiveLaneDirections() []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, lane := range s.CurrentLanes() {
		if !lane.Active {
			continue
		}
		for _, d := range lane.Directions {
			if !seen[d] {
				seen[d] = true
				dirs = append(dirs, d)
			}
		}
	}
	return dirs
}

// AnnotationJSON re-marshals the annotation at geometry index i (if present)
// as a raw JSON object, so host applications can surface arbitrary
// per-segment data without this package needing to know their UI needs.
func (s RouteStep) AnnotationJSON(i int) (json.RawMessage, bool) {
	if i < 0 || i >= len(s.Annotations) {
		return nil, false
	}
	b, err := json.Marshal(s.Annotations[i])
	if err != nil {
		return nil, false
	}
	return json.RawMessage(b), true
}

// Route describes the series of steps needed to travel between two or more
// waypoints.
type Route struct {
	Geometry  []geo.Location  `json:"geometry"`
	Bbox      geo.BoundingBox `json:"bbox"`
	Distance  float64         `json:"distance"`
	Waypoints []Waypoint      `json:"waypoints"`
	Steps     []RouteStep     `json:"steps"`
}

// Linestring returns the route's overview geometry as a geo.Polyline.
func (r Route) Linestring() geo.Polyline {
	return geo.Polyline(r.Geometry)
}

// Polyline encodes the route's overview geometry at the given precision.
// Mostly useful for debugging and recording fixtures.
func (r Route) Polyline(precision uint32) string {
	return geo.EncodePolyline(r.Geometry, precision)
}
