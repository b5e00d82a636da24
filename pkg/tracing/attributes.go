package tracing

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for spans at the engine's external edges. The MCP tool keys
// are set only through MCPToolAttributes; pkg/server does not call it.
const (
	// MCP tool attributes
	AttrMCPToolName     = "mcp.tool.name"
	AttrMCPToolStatus   = "mcp.tool.status"
	AttrMCPToolDuration = "mcp.tool.duration_ms"
	AttrMCPResultSize   = "mcp.tool.result_size"

	// Navigation attributes
	AttrTripStateKind    = "nav.trip_state.kind"
	AttrRouteParseCode   = "nav.route_parse.code"
	AttrRequestGenerator = "nav.request.generator"

	// Error attributes
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
)

// Status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Request generator names, matching pkg/request's Generator implementations.
const (
	GeneratorValhalla    = "valhalla"
	GeneratorGraphHopper = "graphhopper"
)

// MCPToolAttributes returns attributes for MCP tool execution.
func MCPToolAttributes(toolName string, status string, durationMs int64, resultSize int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrMCPToolName, toolName),
		attribute.String(AttrMCPToolStatus, status),
		attribute.Int64(AttrMCPToolDuration, durationMs),
		attribute.Int(AttrMCPResultSize, resultSize),
	}
}

// TripStateAttributes returns attributes describing a trip-state transition.
func TripStateAttributes(kind string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrTripStateKind, kind),
	}
}

// RouteParseAttributes returns attributes describing a route-parse attempt.
func RouteParseAttributes(code string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRouteParseCode, code),
	}
}

// ErrorAttributes returns attributes for errors.
func ErrorAttributes(err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, "error"),
		attribute.String(AttrErrorMessage, err.Error()),
	}
}
