// Package naverr defines the navigation engine's typed error taxonomy:
// every construction-time failure carries a stable code plus a
// human-readable message, rather than an opaque error string.
package naverr

import "fmt"

// Code identifies the kind of failure within a taxonomy family.
type Code string

// RoutingRequestGenerationError codes.
const (
	CodeNotEnoughWaypoints Code = "NOT_ENOUGH_WAYPOINTS"
	CodeRequestJSONError   Code = "REQUEST_JSON_ERROR"
	CodeRequestUnknown     Code = "REQUEST_UNKNOWN_ERROR"
)

// ParsingError codes.
const (
	CodeInvalidStatusCode  Code = "INVALID_STATUS_CODE"
	CodeInvalidGeometry    Code = "INVALID_GEOMETRY"
	CodeInvalidRouteObject Code = "INVALID_ROUTE_OBJECT"
	CodeAnnotationsError   Code = "ANNOTATIONS_ERROR"
)

// RecordingError codes.
const (
	CodeSerializationError  Code = "SERIALIZATION_ERROR"
	CodeRecordingNotEnabled Code = "RECORDING_NOT_ENABLED"
)

// SimulationError codes.
const (
	CodePolylineError   Code = "POLYLINE_ERROR"
	CodeNotEnoughPoints Code = "NOT_ENOUGH_POINTS"
)

// NavError is the engine's structured error type. It satisfies the error
// interface and carries an optional guidance string for host applications
// that want to surface actionable feedback rather than a bare message.
type NavError struct {
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	Guidance string `json:"guidance,omitempty"`
}

// Error implements the error interface.
func (e *NavError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s. %s", e.Code, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a NavError with the given code and message.
func New(code Code, message string) *NavError {
	return &NavError{Code: code, Message: message}
}

// Newf creates a NavError with a formatted message.
func Newf(code Code, format string, args ...any) *NavError {
	return New(code, fmt.Sprintf(format, args...))
}

// WithGuidance attaches guidance text and returns the receiver for
// chaining.
func (e *NavError) WithGuidance(guidance string) *NavError {
	e.Guidance = guidance
	return e
}
