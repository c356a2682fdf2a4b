package mcpserver

import (
	"errors"
	"fmt"

	"meme-hunter/internal/app/relay"
	"meme-hunter/internal/program"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func mapDomainError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, relay.ErrInvalidRequest):
		return toolError("invalid_request", err.Error())
	case program.KindOf(err) == program.KindInternal:
		return toolError("internal_error", "internal error")
	default:
		code := err
		for next := errors.Unwrap(code); next != nil; next = errors.Unwrap(code) {
			code = next
		}
		return toolError(code.Error(), err.Error())
	}
}
