// Package server exposes the navigation engine over the Model Context
// Protocol: a small set of MCP tools, served over stdio, that let a host
// process drive the engine interactively for debugging and regression
// work.
package server

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/navengine/pkg/advance"
	"github.com/NERVsystems/navengine/pkg/coords"
	"github.com/NERVsystems/navengine/pkg/deviation"
	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/nav"
	"github.com/NERVsystems/navengine/pkg/recording"
	"github.com/NERVsystems/navengine/pkg/route"
	"github.com/NERVsystems/navengine/pkg/routeparser"
	"github.com/NERVsystems/navengine/pkg/session"
	"github.com/NERVsystems/navengine/pkg/waypoint"
)

const (
	// ServerName is the MCP server's advertised name.
	ServerName = "navengine-mcp-server"
	// ServerVersion is the MCP server's advertised version.
	ServerVersion = "0.1.0"
)

// Server wraps an MCP server exposing the navigation engine's tools over
// stdio.
type Server struct {
	srv    *mcpserver.MCPServer
	logger *slog.Logger
}

// NewServer constructs a Server with every tool registered. logger may be
// nil, in which case slog.Default() is used.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("initializing navigation engine MCP server", "name", ServerName, "version", ServerVersion)

	srv := mcpserver.NewMCPServer(
		ServerName,
		ServerVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	s := &Server{srv: srv, logger: logger}
	s.registerTools()
	return s
}

// Run serves the MCP protocol over stdin/stdout. It blocks until stdin is
// closed or an unrecoverable transport error occurs.
func (s *Server) Run() error {
	err := mcpserver.ServeStdio(s.srv)
	if err != nil && err != io.EOF {
		s.logger.Error("MCP server error", "error", err)
		return err
	}
	s.logger.Info("stdin closed, shutting down")
	return nil
}

func (s *Server) registerTools() {
	s.srv.AddTool(decodePolylineTool(), s.handleDecodePolyline)
	s.srv.AddTool(parseRouteTool(), s.handleParseRoute)
	s.srv.AddTool(simulateTripTool(), s.handleSimulateTrip)
	s.srv.AddTool(replayRecordingTool(), s.handleReplayRecording)
	s.srv.AddTool(parseCoordinateTool(), s.handleParseCoordinate)
}

// --- parse_coordinate ---

func parseCoordinateTool() mcp.Tool {
	return mcp.NewTool("parse_coordinate",
		mcp.WithDescription("Parse a coordinate string in decimal degrees, DMS, MGRS, or UTM format into a decimal GeographicCoordinate, so a test location can be typed in whatever format the operator has at hand"),
		mcp.WithString("input",
			mcp.Required(),
			mcp.Description("The coordinate string, e.g. \"19.856, 99.816\", \"47QNB8598697460\", or \"47N 485986 2197460\""),
		),
	)
}

type parseCoordinateOutput struct {
	Location geo.Location `json:"location"`
	Format   string       `json:"format"`
}

func (s *Server) handleParseCoordinate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := s.logger.With("tool", "parse_coordinate")

	input := mcp.ParseString(req, "input", "")
	if input == "" {
		return errorResult("input coordinate string is required"), nil
	}

	loc, format, err := coords.ParseLocation(input)
	if err != nil {
		logger.Error("failed to parse coordinate", "error", err)
		return errorResult("failed to parse coordinate: " + err.Error()), nil
	}
	return jsonResult(parseCoordinateOutput{Location: loc, Format: string(format)}), nil
}

// --- decode_polyline ---

func decodePolylineTool() mcp.Tool {
	return mcp.NewTool("decode_polyline",
		mcp.WithDescription("Decode an OSRM-family encoded polyline string into a series of geographic coordinates"),
		mcp.WithString("polyline",
			mcp.Required(),
			mcp.Description("The encoded polyline string to decode"),
		),
		mcp.WithNumber("precision",
			mcp.Description("Polyline precision: 5 or 6 (default 6)"),
		),
	)
}

type decodePolylineOutput struct {
	Points []geo.Location `json:"points"`
}

func (s *Server) handleDecodePolyline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := s.logger.With("tool", "decode_polyline")

	polyline := mcp.ParseString(req, "polyline", "")
	if polyline == "" {
		return errorResult("polyline string is required"), nil
	}
	precision := uint32(mcp.ParseFloat64(req, "precision", 6))

	points, err := geo.DecodePolyline(polyline, precision)
	if err != nil {
		logger.Error("failed to decode polyline", "error", err)
		return errorResult("failed to decode polyline: " + err.Error()), nil
	}
	return jsonResult(decodePolylineOutput{Points: points}), nil
}

// --- parse_route ---

func parseRouteTool() mcp.Tool {
	return mcp.NewTool("parse_route",
		mcp.WithDescription("Parse an OSRM-family route response JSON document into the engine's route model"),
		mcp.WithString("response",
			mcp.Required(),
			mcp.Description("The raw OSRM-family JSON response body"),
		),
		mcp.WithNumber("precision",
			mcp.Description("Polyline precision used by the routing backend: 5 or 6 (default 6)"),
		),
	)
}

type parseRouteOutput struct {
	Routes []route.Route `json:"routes"`
}

func (s *Server) handleParseRoute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := s.logger.With("tool", "parse_route")

	response := mcp.ParseString(req, "response", "")
	if response == "" {
		return errorResult("response JSON is required"), nil
	}
	precision := uint32(mcp.ParseFloat64(req, "precision", 6))

	parser, err := routeparser.New(precision, 0)
	if err != nil {
		logger.Error("failed to construct parser", "error", err)
		return errorResult("failed to construct parser: " + err.Error()), nil
	}

	routes, err := parser.ParseResponseContext(ctx, []byte(response))
	if err != nil {
		logger.Error("failed to parse route response", "error", err)
		return errorResult("failed to parse route response: " + err.Error()), nil
	}
	return jsonResult(parseRouteOutput{Routes: routes}), nil
}

// --- simulate_trip ---

func simulateTripTool() mcp.Tool {
	return mcp.NewTool("simulate_trip",
		mcp.WithDescription("Drive the navigation controller through a sequence of observed locations against a route and return the resulting trip-state sequence"),
		mcp.WithObject("route",
			mcp.Required(),
			mcp.Description("The route to navigate, in the engine's route model shape"),
		),
		mcp.WithArray("locations",
			mcp.Required(),
			mcp.Description("The ordered sequence of observed user locations to feed into the controller"),
		),
		mcp.WithNumber("step_advance_distance",
			mcp.Description("DistanceToEndOfStep trigger distance in meters (default 0)"),
		),
		mcp.WithNumber("step_advance_min_accuracy",
			mcp.Description("DistanceToEndOfStep minimum trusted horizontal accuracy in meters (default 0)"),
		),
		mcp.WithNumber("waypoint_radius",
			mcp.Description("WithinRange waypoint-advance radius in meters; 0 disables waypoint pruning"),
		),
		mcp.WithNumber("deviation_max_meters",
			mcp.Description("StaticThreshold max acceptable deviation in meters; 0 disables deviation tracking"),
		),
		mcp.WithNumber("deviation_min_accuracy",
			mcp.Description("StaticThreshold minimum trusted horizontal accuracy in meters"),
		),
	)
}

type simulateTripInput struct {
	Route                  route.Route        `json:"route"`
	Locations              []geo.UserLocation `json:"locations"`
	StepAdvanceDistance    float64            `json:"step_advance_distance"`
	StepAdvanceMinAccuracy float64            `json:"step_advance_min_accuracy"`
	WaypointRadius         float64            `json:"waypoint_radius"`
	DeviationMaxMeters     float64            `json:"deviation_max_meters"`
	DeviationMinAccuracy   float64            `json:"deviation_min_accuracy"`
}

type simulateTripOutput struct {
	TripStates []nav.TripState `json:"trip_states"`
}

func (s *Server) handleSimulateTrip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := s.logger.With("tool", "simulate_trip")

	input, err := parseArguments[simulateTripInput](req)
	if err != nil {
		logger.Error("failed to parse input", "error", err)
		return errorResult("invalid input: " + err.Error()), nil
	}
	if len(input.Locations) == 0 {
		return errorResult("at least one location is required"), nil
	}

	condition := advance.Condition(advance.DistanceToEndOfStep{
		Distance:    input.StepAdvanceDistance,
		MinAccuracy: input.StepAdvanceMinAccuracy,
	})

	var waypointChecker waypoint.Checker
	if input.WaypointRadius > 0 {
		waypointChecker = waypoint.WithinRange{Radius: input.WaypointRadius}
	}

	var deviationDetector deviation.Detector = deviation.None{}
	if input.DeviationMaxMeters > 0 {
		deviationDetector = deviation.StaticThreshold{
			MinAccuracy:            input.DeviationMinAccuracy,
			MaxAcceptableDeviation: input.DeviationMaxMeters,
		}
	}

	cfg := nav.Config{
		WaypointAdvance:             waypointChecker,
		RouteDeviationTracking:      deviationDetector,
		StepAdvanceCondition:        condition,
		ArrivalStepAdvanceCondition: condition,
	}

	sess := session.New(nav.New(input.Route, cfg), logger)
	var states []nav.TripState
	sess.AddObserver(session.ObserverFunc(func(st nav.NavState) {
		states = append(states, st.TripState)
	}))

	sess.StartContext(ctx, input.Locations[0])
	for _, loc := range input.Locations[1:] {
		sess.UpdateUserLocationContext(ctx, loc)
	}

	return jsonResult(simulateTripOutput{TripStates: states}), nil
}

// --- replay_recording ---

func replayRecordingTool() mcp.Tool {
	return mcp.NewTool("replay_recording",
		mcp.WithDescription("Decode a recorded trip and return its trip-state sequence and duration, without re-driving a controller"),
		mcp.WithString("recording",
			mcp.Required(),
			mcp.Description("The raw JSON of a recorded trip, as produced by pkg/recording"),
		),
	)
}

type replayRecordingOutput struct {
	TripStates   []nav.TripState `json:"trip_states"`
	DurationMs   int64           `json:"duration_ms"`
	InitialRoute route.Route     `json:"initial_route"`
}

func (s *Server) handleReplayRecording(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := s.logger.With("tool", "replay_recording")

	raw := mcp.ParseString(req, "recording", "")
	if raw == "" {
		return errorResult("recording JSON is required"), nil
	}

	replayer, err := recording.NewReplayer([]byte(raw))
	if err != nil {
		logger.Error("failed to parse recording", "error", err)
		return errorResult("failed to parse recording: " + err.Error()), nil
	}

	states, err := replayer.TripStates()
	if err != nil {
		logger.Error("failed to decode trip states", "error", err)
		return errorResult("failed to decode trip states: " + err.Error()), nil
	}

	return jsonResult(replayRecordingOutput{
		TripStates:   states,
		DurationMs:   replayer.DurationMs(),
		InitialRoute: replayer.InitialRoute(),
	}), nil
}
