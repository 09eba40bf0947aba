package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veracode-tools/veracode-mcp/internal/veracode"
)

// Error detail policy for tool results:
//   - failure kind: safe (controlled enum from the engine taxonomy)
//   - HTTP status code: safe
//   - backend-supplied message: safe (already a client-facing string)
//   - operation name: safe (matches the tool name)
//
// NEVER expose:
//   - request URLs or query strings (may embed application names the
//     caller did not supply)
//   - wrapped cause chains (may embed transport addresses)
//   - anything derived from credentials
//
// Credentials cannot reach error values in the first place; the signer
// rejects them at construction and never echoes them.

// jsonResult marshals v into a single text content block. A marshal
// failure is a bug in our output types, so it propagates as a protocol
// error rather than an IsError result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil
}

// errorResult converts an engine failure into an IsError tool result so
// the calling agent can read it and react. The full error is logged
// server-side; only sanitized text crosses the protocol boundary.
func (s *Server) errorResult(tool string, err error) *mcp.CallToolResult {
	s.logger.Debug("tool call failed", "tool", tool, "error", err)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
		IsError: true,
	}
}

// sanitizeError renders err as "[kind] message" using only whitelisted
// detail.
func sanitizeError(err error) string {
	var apiErr *veracode.APIError
	switch {
	case errors.Is(err, veracode.ErrApplicationNotFound):
		return fmt.Sprintf("[not-found] %v", err)
	case errors.As(err, &apiErr):
		text := fmt.Sprintf("[%s] %s", apiErr.Kind, apiErr.Op)
		if apiErr.StatusCode > 0 {
			text += fmt.Sprintf(" (HTTP %d)", apiErr.StatusCode)
		}
		if apiErr.Message != "" {
			text += ": " + apiErr.Message
		}
		if apiErr.Kind == veracode.KindRateLimited {
			text += "; reduce request rate and retry later"
		}
		return text
	default:
		// Input validation failures raised before any network call;
		// the text is our own and safe to show.
		return fmt.Sprintf("[invalid-input] %v", err)
	}
}
