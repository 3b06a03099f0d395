package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultWaitTimeout applies when wait_for_idle gets no timeout_ms.
const defaultWaitTimeout = 10 * time.Second

// handlePendingCount reports the current pending count and ids.
func (s *Server) handlePendingCount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.registry.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading pending count failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatStatus(st.Count, st.Pending)), nil
}

// handleWaitForIdle blocks until the registry is idle or the timeout passes.
func (s *Server) handleWaitForIdle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	timeout := defaultWaitTimeout
	if ms := request.GetInt("timeout_ms", 0); ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := s.registry.WaitIdle(waitCtx, 0); err != nil {
		st, statusErr := s.registry.Status(ctx)
		if statusErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("wait failed: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("still busy after %s: %s", timeout, formatStatus(st.Count, st.Pending))), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Idle after %s.", time.Since(start).Round(time.Millisecond))), nil
}

// handleGetString resolves a catalog string.
func (s *Server) handleGetString(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := request.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: identifier"), nil
	}
	component, err := request.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: component"), nil
	}

	var a any
	if raw := request.GetString("a_json", ""); raw != "" {
		// Passed through as raw JSON so object key order survives.
		if !json.Valid([]byte(raw)) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid a_json: %s", raw)), nil
		}
		a = json.RawMessage(raw)
	} else if v := request.GetString("a", ""); v != "" {
		a = v
	}

	value, err := s.strings.GetString(ctx, identifier, component, a)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get_string failed: %v", err)), nil
	}
	return mcp.NewToolResultText(value), nil
}

func formatStatus(count int, ids []string) string {
	if count == 0 {
		return "0 pending operations; the page is idle."
	}
	return fmt.Sprintf("%d pending operation(s): %s", count, strings.Join(ids, ", "))
}
