package routeparser

// The types in this file mirror the OSRM route-response JSON schema
// (http://project-osrm.org/docs/v5.5.1/api/), extended with the
// pseudo-standard fields that Mapbox and Valhalla add on top of it
// (bannerInstructions, voiceInstructions, exits, driving_side, incidents).
// They exist only to decode the wire format; pkg/route holds the engine's
// own model, which Parser.parseRoute builds from these.

type wireCoordinate [2]float64

func (c wireCoordinate) longitude() float64 { return c[0] }
func (c wireCoordinate) latitude() float64  { return c[1] }

type wireResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message,omitempty"`
	Routes    []wireRoute    `json:"routes"`
	Waypoints []wireWaypoint `json:"waypoints"`
}

type wireRoute struct {
	Duration float64   `json:"duration"`
	Distance float64   `json:"distance"`
	Geometry string    `json:"geometry"`
	Legs     []wireLeg `json:"legs"`
}

type wireLeg struct {
	Annotation   *wireAnnotation   `json:"annotation,omitempty"`
	Duration     float64           `json:"duration"`
	Distance     float64           `json:"distance"`
	Steps        []wireStep        `json:"steps"`
	ViaWaypoints []wireViaWaypoint `json:"via_waypoints,omitempty"`
	Incidents    []wireIncident    `json:"incidents,omitempty"`
}

// wireAnnotation holds OSRM's parallel-array annotation encoding: each
// field, when present, has one entry per geometry segment in the leg.
type wireAnnotation struct {
	Distance   []float64      `json:"distance,omitempty"`
	Duration   []float64      `json:"duration,omitempty"`
	Speed      []float64      `json:"speed,omitempty"`
	MaxSpeed   []wireMaxSpeed `json:"maxspeed,omitempty"`
	Congestion []string       `json:"congestion,omitempty"`
}

type wireMaxSpeed struct {
	None    bool    `json:"none,omitempty"`
	Unknown bool    `json:"unknown,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
	Unit    string  `json:"unit,omitempty"`
}

type wireViaWaypoint struct {
	DistanceFromStart float64 `json:"distance_from_start"`
	GeometryIndex     float64 `json:"geometry_index"`
	WaypointIndex     int     `json:"waypoint_index"`
}

type wireIncident struct {
	ID                 string  `json:"id"`
	Type               string  `json:"type,omitempty"`
	Description        string  `json:"description,omitempty"`
	GeometryIndexStart uint64  `json:"geometry_index_start"`
	GeometryIndexEnd   *uint64 `json:"geometry_index_end,omitempty"`
}

type wireStep struct {
	Distance           float64                 `json:"distance"`
	Duration           float64                 `json:"duration"`
	Geometry           string                  `json:"geometry"`
	Name               *string                 `json:"name,omitempty"`
	Ref                *string                 `json:"ref,omitempty"`
	Mode               *string                 `json:"mode,omitempty"`
	Maneuver           wireManeuver            `json:"maneuver"`
	Intersections      []wireIntersection      `json:"intersections,omitempty"`
	Exits              *string                 `json:"exits,omitempty"`
	DrivingSide        *string                 `json:"driving_side,omitempty"`
	BannerInstructions []wireBannerInstruction `json:"bannerInstructions,omitempty"`
	VoiceInstructions  []wireVoiceInstruction  `json:"voiceInstructions,omitempty"`
}

type wireManeuver struct {
	Location      wireCoordinate `json:"location"`
	BearingBefore uint16         `json:"bearing_before"`
	BearingAfter  uint16         `json:"bearing_after"`
	Type          string         `json:"type"`
	Modifier      *string        `json:"modifier,omitempty"`
	Instruction   *string        `json:"instruction,omitempty"`
}

func (m wireManeuver) getInstruction() string {
	if m.Instruction != nil {
		return *m.Instruction
	}
	return synthesizeInstruction(m.Type, m.Modifier)
}

// synthesizeInstruction produces a fallback human-readable instruction for
// backends (plain OSRM) that do not compute one server-side the way Mapbox
// and Valhalla do.
func synthesizeInstruction(maneuverType string, modifier *string) string {
	mod := ""
	if modifier != nil {
		mod = " " + *modifier
	}
	switch maneuverType {
	case "depart":
		return "Head out"
	case "arrive":
		return "You have arrived at your destination"
	case "roundabout", "rotary":
		return "Enter the roundabout"
	default:
		return "Continue" + mod
	}
}

type wireIntersection struct {
	Location wireCoordinate `json:"location"`
	Bearings []uint16       `json:"bearings"`
	Classes  []string       `json:"classes,omitempty"`
	Entry    []bool         `json:"entry"`
	In       int            `json:"in"`
	Out      int            `json:"out"`
	Lanes    []wireLane     `json:"lanes,omitempty"`
}

type wireLane struct {
	Indications []string `json:"indications"`
	Valid       bool     `json:"valid"`
}

type wireBannerInstruction struct {
	DistanceAlongGeometry float64            `json:"distanceAlongGeometry"`
	Primary               wireBannerContent  `json:"primary"`
	Secondary             *wireBannerContent `json:"secondary,omitempty"`
	Sub                   *wireBannerContent `json:"sub,omitempty"`
}

type wireBannerContent struct {
	Text       string                `json:"text"`
	Type       *string               `json:"type,omitempty"`
	Modifier   *string               `json:"modifier,omitempty"`
	Degrees    *uint16               `json:"degrees,omitempty"`
	Components []wireBannerComponent `json:"components,omitempty"`
}

type wireBannerComponent struct {
	Text            string   `json:"text"`
	Type            *string  `json:"type,omitempty"`
	Directions      []string `json:"directions,omitempty"`
	Active          *bool    `json:"active,omitempty"`
	ActiveDirection *string  `json:"active_direction,omitempty"`
}

type wireVoiceInstruction struct {
	Announcement          string  `json:"announcement"`
	SSMLAnnouncement      *string `json:"ssmlAnnouncement,omitempty"`
	DistanceAlongGeometry float64 `json:"distanceAlongGeometry"`
}

type wireWaypoint struct {
	Name     *string        `json:"name,omitempty"`
	Distance *float64       `json:"distance,omitempty"`
	Location wireCoordinate `json:"location"`
}
