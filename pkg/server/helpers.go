package server

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// errorResult wraps a human-readable message as a CallToolResult flagged
// as an error.
func errorResult(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// jsonResult marshals v and wraps it as a successful CallToolResult, or
// falls back to an error result if marshaling fails.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to marshal result: " + err.Error())
	}
	return mcp.NewToolResultText(string(data))
}

// parseArguments decodes a tool call's arguments into T.
func parseArguments[T any](req mcp.CallToolRequest) (T, error) {
	var input T
	data, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return input, err
	}
	if err := json.Unmarshal(data, &input); err != nil {
		return input, err
	}
	return input, nil
}
