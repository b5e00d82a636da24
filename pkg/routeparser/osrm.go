// Package routeparser reconstructs pkg/route.Route values from OSRM-family
// JSON route responses (standard OSRM, and the Mapbox/Valhalla extensions
// layered on top of it).
package routeparser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/NERVsystems/navengine/pkg/geo"
	"github.com/NERVsystems/navengine/pkg/monitoring"
	"github.com/NERVsystems/navengine/pkg/naverr"
	"github.com/NERVsystems/navengine/pkg/route"
	"github.com/NERVsystems/navengine/pkg/tracing"
)

// Parser decodes OSRM-family route responses at a fixed polyline precision
// (5 or 6, chosen at construction per the routing backend in use).
type Parser struct {
	precision uint32
	cache     *lru.Cache[string, []geo.Location]
}

// New returns a Parser for the given polyline precision. cacheSize bounds
// the number of distinct decoded polylines retained across calls; pass 0
// for a reasonable default.
func New(precision uint32, cacheSize int) (*Parser, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, []geo.Location](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating polyline cache: %w", err)
	}
	return &Parser{precision: precision, cache: cache}, nil
}

func (p *Parser) decodePolyline(encoded string) ([]geo.Location, error) {
	key := strconv.Itoa(int(p.precision)) + ":" + encoded
	if cached, ok := p.cache.Get(key); ok {
		return cached, nil
	}
	points, err := geo.DecodePolyline(encoded, p.precision)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, points)
	return points, nil
}

// ParseResponse parses a JSON byte buffer shaped like
// {code, message?, routes[], waypoints[]} into the engine's route model.
// Routes are decoded concurrently via errgroup, one goroutine per route,
// since each route's decode is pure and independent of the others; a
// route's legs are decoded in order.
func (p *Parser) ParseResponse(data []byte) ([]route.Route, error) {
	return p.ParseResponseContext(context.Background(), data)
}

// ParseResponseContext is ParseResponse with a context threaded through for
// tracing, so a host that calls into the parser from an already-traced
// operation (e.g. an MCP tool handler) gets a child span for the parse.
func (p *Parser) ParseResponseContext(ctx context.Context, data []byte) ([]route.Route, error) {
	ctx, span := tracing.StartSpan(ctx, "routeparser.ParseResponse")
	defer span.End()

	timer := prometheusTimer()
	defer timer()

	routes, err := p.parseResponse(data)
	if err != nil {
		code := parseFailureCode(err)
		monitoring.RecordRouteParseFailure(code)
		tracing.SetAttributes(ctx, tracing.RouteParseAttributes(code)...)
		tracing.RecordError(ctx, err)
		return nil, err
	}
	tracing.SetAttributes(ctx, tracing.RouteParseAttributes("ok")...)
	return routes, nil
}

func (p *Parser) parseResponse(data []byte) ([]route.Route, error) {
	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, invalidRouteObject(err.Error())
	}

	if resp.Code != "Ok" {
		if resp.Message != "" {
			return nil, invalidStatusCode(resp.Code + ": " + resp.Message)
		}
		return nil, invalidStatusCode(resp.Code)
	}

	waypoints := p.buildWaypoints(resp)

	routes := make([]route.Route, len(resp.Routes))
	var g errgroup.Group
	for i := range resp.Routes {
		i := i
		g.Go(func() error {
			r, err := p.parseRoute(&resp.Routes[i], waypoints)
			if err != nil {
				return err
			}
			routes[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return routes, nil
}

// prometheusTimer starts a RouteParseDuration observation and returns a
// func to stop it, so ParseResponse can defer a single call regardless of
// which return path it takes.
func prometheusTimer() func() {
	start := time.Now()
	return func() {
		monitoring.RouteParseDuration.Observe(time.Since(start).Seconds())
	}
}

// parseFailureCode extracts the naverr.Code from err for metric labeling,
// falling back to a generic label for errors outside the taxonomy (e.g. an
// errgroup-wrapped decode failure from a sub-parser).
func parseFailureCode(err error) string {
	var navErr *naverr.NavError
	if errors.As(err, &navErr) {
		return string(navErr.Code)
	}
	return "unknown"
}

func (p *Parser) buildWaypoints(resp wireResponse) []route.Waypoint {
	viaIndices := make(map[int]bool)
	for _, r := range resp.Routes {
		for _, leg := range r.Legs {
			for _, via := range leg.ViaWaypoints {
				viaIndices[via.WaypointIndex] = true
			}
		}
	}

	waypoints := make([]route.Waypoint, len(resp.Waypoints))
	for i, wp := range resp.Waypoints {
		kind := route.WaypointKindBreak
		if viaIndices[i] {
			kind = route.WaypointKindVia
		}
		waypoints[i] = route.Waypoint{
			Coordinate: geo.Location{Latitude: wp.Location.latitude(), Longitude: wp.Location.longitude()},
			Kind:       kind,
		}
	}
	return waypoints
}

func (p *Parser) parseRoute(r *wireRoute, waypoints []route.Waypoint) (route.Route, error) {
	geometry, err := p.decodePolyline(r.Geometry)
	if err != nil {
		return route.Route{}, invalidGeometry(err.Error())
	}
	bbox, ok := geo.BoundingBoxFromPolyline(geometry)
	if !ok {
		return route.Route{}, invalidGeometry("bounding box could not be calculated")
	}

	var steps []route.RouteStep
	for _, leg := range r.Legs {
		legSteps, err := p.parseLeg(&leg)
		if err != nil {
			return route.Route{}, err
		}
		steps = append(steps, legSteps...)
	}

	return route.Route{
		Geometry:  geometry,
		Bbox:      bbox,
		Distance:  r.Distance,
		Waypoints: waypoints,
		Steps:     steps,
	}, nil
}

func (p *Parser) parseLeg(leg *wireLeg) ([]route.RouteStep, error) {
	var fullAnnotations []route.Annotation
	if leg.Annotation != nil {
		fullAnnotations = zipAnnotations(leg.Annotation)
	}

	steps := make([]route.RouteStep, 0, len(leg.Steps))
	startIndex := 0

	for _, step := range leg.Steps {
		stepGeometry, err := p.decodePolyline(step.Geometry)
		if err != nil {
			return nil, invalidGeometry(err.Error())
		}

		segCount := len(stepGeometry) - 1
		if segCount < 0 {
			segCount = 0
		}
		endIndex := startIndex + segCount

		var annotationSlice []route.Annotation
		if fullAnnotations != nil {
			annotationSlice = annotationSliceOf(fullAnnotations, startIndex, endIndex)
		}

		incidents := rebaseIncidents(leg.Incidents, startIndex, endIndex)

		rs, err := buildRouteStep(&step, stepGeometry, annotationSlice, incidents)
		if err != nil {
			return nil, err
		}
		steps = append(steps, rs)

		startIndex = endIndex
	}

	// The arrival step's degenerate duplicate point consumes one more
	// segment than the leg geometry actually has, so a well-formed leg
	// never leaves annotation entries unconsumed.
	if len(fullAnnotations) > startIndex {
		return nil, annotationsError(fmt.Sprintf("leg has %d annotation entries but its steps consume only %d segments", len(fullAnnotations), startIndex))
	}

	return steps, nil
}

// zipAnnotations converts OSRM's parallel-array annotation encoding into a
// slice of per-segment route.Annotation values, one per index across all
// present arrays.
func zipAnnotations(a *wireAnnotation) []route.Annotation {
	n := len(a.Distance)
	if len(a.Duration) > n {
		n = len(a.Duration)
	}
	if len(a.Speed) > n {
		n = len(a.Speed)
	}
	if len(a.MaxSpeed) > n {
		n = len(a.MaxSpeed)
	}
	if len(a.Congestion) > n {
		n = len(a.Congestion)
	}

	out := make([]route.Annotation, n)
	for i := 0; i < n; i++ {
		var ann route.Annotation
		if i < len(a.Distance) {
			v := a.Distance[i]
			ann.Distance = &v
		}
		if i < len(a.Duration) {
			v := a.Duration[i]
			ann.Duration = &v
		}
		if i < len(a.Speed) {
			v := a.Speed[i]
			ann.Speed = &v
		}
		if i < len(a.MaxSpeed) {
			ms := a.MaxSpeed[i]
			ann.MaxSpeed = &route.MaxSpeed{
				None:    ms.None,
				Unknown: ms.Unknown,
				Speed:   ms.Speed,
				Unit:    route.MaxSpeedUnit(ms.Unit),
			}
		}
		if i < len(a.Congestion) {
			v := a.Congestion[i]
			ann.Congestion = &v
		}
		out[i] = ann
	}
	return out
}

// annotationSliceOf returns full[start:end], clamped to full's bounds. The
// arrival step (degenerate two-point geometry of the same coordinate) comes
// last, so its range starts at len(full) and it receives nil.
func annotationSliceOf(full []route.Annotation, start, end int) []route.Annotation {
	if start >= len(full) || start >= end {
		return nil
	}
	if end > len(full) {
		end = len(full)
	}
	return full[start:end]
}

func rebaseIncidents(incidents []wireIncident, start, end int) []route.Incident {
	var out []route.Incident
	for _, inc := range incidents {
		incStart := int(inc.GeometryIndexStart)
		var incEnd int
		hasEnd := inc.GeometryIndexEnd != nil
		if hasEnd {
			incEnd = int(*inc.GeometryIndexEnd)
		} else {
			incEnd = incStart
		}

		var within bool
		if hasEnd {
			within = incStart >= start && incEnd <= end
		} else {
			within = incStart >= start && incStart <= end
		}
		if !within {
			continue
		}

		rebasedStart := uint64(incStart - start)
		result := route.Incident{
			ID:                 inc.ID,
			Kind:               inc.Type,
			Description:        inc.Description,
			GeometryIndexStart: rebasedStart,
		}
		if hasEnd {
			rebasedEnd := incEnd - start
			if rebasedEnd > end-start {
				rebasedEnd = end - start
			}
			v := uint64(rebasedEnd)
			result.GeometryIndexEnd = &v
		}
		out = append(out, result)
	}
	return out
}

func buildRouteStep(step *wireStep, geometry []geo.Location, annotations []route.Annotation, incidents []route.Incident) (route.RouteStep, error) {
	visual := make([]route.VisualInstruction, 0, len(step.BannerInstructions))
	for _, banner := range step.BannerInstructions {
		visual = append(visual, bannerToVisualInstruction(&banner))
	}

	spoken := make([]route.SpokenInstruction, 0, len(step.VoiceInstructions))
	for i, v := range step.VoiceInstructions {
		spoken = append(spoken, route.SpokenInstruction{
			Text:                          v.Announcement,
			SSML:                          v.SSMLAnnouncement,
			TriggerDistanceBeforeManeuver: v.DistanceAlongGeometry,
			UtteranceID:                   syntheticUtteranceID(i),
		})
	}

	var exits []string
	if step.Exits != nil {
		for _, e := range strings.Split(*step.Exits, ";") {
			exits = append(exits, strings.TrimSpace(e))
		}
	}

	return route.RouteStep{
		Geometry:           geometry,
		Distance:           step.Distance,
		Duration:           step.Duration,
		RoadName:           step.Name,
		Exits:              exits,
		Instruction:        step.Maneuver.getInstruction(),
		VisualInstructions: visual,
		SpokenInstructions: spoken,
		Annotations:        annotations,
		Incidents:          incidents,
	}, nil
}

func bannerToVisualInstruction(banner *wireBannerInstruction) route.VisualInstruction {
	instr := route.VisualInstruction{
		PrimaryContent:                bannerContentToInstructionContent(&banner.Primary, nil),
		TriggerDistanceBeforeManeuver: banner.DistanceAlongGeometry,
	}
	if banner.Secondary != nil {
		c := bannerContentToInstructionContent(banner.Secondary, banner.Primary.Degrees)
		instr.SecondaryContent = &c
	}
	if banner.Sub != nil {
		c := bannerContentToInstructionContent(banner.Sub, banner.Sub.Degrees)
		c.LaneInfo = extractLaneInfo(banner.Sub)
		instr.SubContent = &c
	}
	return instr
}

func bannerContentToInstructionContent(content *wireBannerContent, fallbackDegrees *uint16) route.VisualInstructionContent {
	out := route.VisualInstructionContent{
		Text:        content.Text,
		ExitNumbers: extractExitNumbers(content),
	}
	if content.Type != nil {
		t := route.ManeuverType(*content.Type)
		out.ManeuverType = &t
	}
	if content.Modifier != nil {
		m := route.ManeuverModifier(*content.Modifier)
		out.ManeuverModifier = &m
	}
	if content.Degrees != nil {
		out.RoundaboutExitDegrees = content.Degrees
	} else {
		out.RoundaboutExitDegrees = fallbackDegrees
	}
	return out
}

func extractExitNumbers(content *wireBannerContent) []string {
	var out []string
	for _, c := range content.Components {
		if c.Type != nil && *c.Type == "exit-number" && c.Text != "" {
			out = append(out, c.Text)
		}
	}
	return out
}

func extractLaneInfo(content *wireBannerContent) []route.LaneInfo {
	var out []route.LaneInfo
	for _, c := range content.Components {
		if c.Type == nil || *c.Type != "lane" {
			continue
		}
		active := false
		if c.Active != nil {
			active = *c.Active
		}
		out = append(out, route.LaneInfo{
			Active:          active,
			Directions:      c.Directions,
			ActiveDirection: c.ActiveDirection,
		})
	}
	return out
}

// syntheticUtteranceID produces a stable per-parse identifier for a spoken
// instruction. Callers that need global uniqueness across parses should
// treat this as a local disambiguator rather than a UUID.
func syntheticUtteranceID(index int) string {
	return fmt.Sprintf("utterance-%d", index)
}
