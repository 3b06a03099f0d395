package mcp

import (
	"context"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/pageutil/internal/catalog"
	"github.com/ziadkadry99/pageutil/internal/client"
	"github.com/ziadkadry99/pageutil/internal/pending"
)

var (
	_ StringBackend = Local{}
	_ Backend       = (*client.Client)(nil)
)

func newLocal(t *testing.T) Local {
	t.Helper()
	table := catalog.NewTable()
	err := table.Populate("core", map[string]string{
		"hello":    "Hello {$a}",
		"fullname": "{$a->first} {$a->last}",
		"ordered":  "{$a->name}",
	})
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	table.Freeze()
	return Local{Table: table}
}

// newRemote serves a registry and table over HTTP and returns a server
// whose tools talk to it through the client.
func newRemote(t *testing.T) (*Server, *pending.Registry) {
	t.Helper()
	local := newLocal(t)
	reg := pending.New()
	r := chi.NewRouter()
	pending.RegisterRoutes(r, reg)
	catalog.RegisterRoutes(r, local.Table)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return NewServer(client.New(ts.URL)), reg
}

func toolNames(srv *Server) []string {
	var names []string
	for name := range srv.mcp.ListTools() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"pending_count", pendingCountTool, "pending_count"},
		{"wait_for_idle", waitForIdleTool, "wait_for_idle"},
		{"get_string", getStringTool, "get_string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(newLocal(t))

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestToolsFollowBackendCapabilities(t *testing.T) {
	local := NewServer(newLocal(t))
	if got := toolNames(local); len(got) != 1 || got[0] != "get_string" {
		t.Errorf("local tools = %v, want [get_string]", got)
	}
	if local.registry != nil {
		t.Error("local backend should not expose a registry")
	}

	remote, _ := newRemote(t)
	want := []string{"get_string", "pending_count", "wait_for_idle"}
	got := toolNames(remote)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("remote tools = %v, want %v", got, want)
	}
}

func TestHandlePendingCount(t *testing.T) {
	srv, reg := newRemote(t)
	ctx := context.Background()

	result, err := srv.handlePendingCount(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultText(t, result); !strings.HasPrefix(got, "0 pending") {
		t.Errorf("unexpected idle text %q", got)
	}

	reg.Begin("init")
	reg.Begin("io:7")
	result, err = srv.handlePendingCount(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultText(t, result); got != "2 pending operation(s): init, io:7" {
		t.Errorf("unexpected busy text %q", got)
	}
}

func TestHandleWaitForIdle(t *testing.T) {
	ctx := context.Background()

	t.Run("becomes idle", func(t *testing.T) {
		srv, reg := newRemote(t)
		reg.Begin("load")
		go func() {
			time.Sleep(20 * time.Millisecond)
			reg.End("load")
		}()

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"timeout_ms": 2000}
		result, err := srv.handleWaitForIdle(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", resultText(t, result))
		}
	})

	t.Run("times out", func(t *testing.T) {
		srv, reg := newRemote(t)
		reg.Begin("stuck")

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"timeout_ms": 30}
		result, err := srv.handleWaitForIdle(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected timeout error")
		}
		if got := resultText(t, result); !strings.Contains(got, "stuck") {
			t.Errorf("timeout text should name pending ids, got %q", got)
		}
	})
}

func TestHandleGetString(t *testing.T) {
	srv := NewServer(newLocal(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		args    map[string]any
		want    string
		wantErr bool
	}{
		{"scalar", map[string]any{"identifier": "hello", "component": "core", "a": "World"}, "Hello World", false},
		{"no substitution", map[string]any{"identifier": "hello", "component": "core"}, "Hello {$a}", false},
		{"keyed json", map[string]any{"identifier": "fullname", "component": "core", "a_json": `{"first":"Ada","last":"Lovelace"}`}, "Ada Lovelace", false},
		{"numeric json", map[string]any{"identifier": "hello", "component": "core", "a_json": `2.50`}, "Hello 2.5", false},
		{"json key order", map[string]any{"identifier": "ordered", "component": "core", "a_json": `{"name":"{$a->count}","count":3}`}, "3", false},
		{"miss", map[string]any{"identifier": "nope", "component": "core"}, "[[nope,core]]", false},
		{"bad json", map[string]any{"identifier": "hello", "component": "core", "a_json": `{`}, "", true},
		{"missing identifier", map[string]any{"component": "core"}, "", true},
		{"missing component", map[string]any{"identifier": "hello"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.CallToolRequest{}
			req.Params.Arguments = tt.args

			result, err := srv.handleGetString(ctx, req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsError != tt.wantErr {
				t.Fatalf("IsError = %v, want %v (%s)", result.IsError, tt.wantErr, resultText(t, result))
			}
			if !tt.wantErr {
				if got := resultText(t, result); got != tt.want {
					t.Errorf("got %q, want %q", got, tt.want)
				}
			}
		})
	}
}

func TestRemoteBackend(t *testing.T) {
	srv, reg := newRemote(t)
	ctx := context.Background()

	reg.Begin("remote")
	result, err := srv.handlePendingCount(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultText(t, result); got != "1 pending operation(s): remote" {
		t.Errorf("unexpected text %q", got)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"identifier": "fullname", "component": "core", "a_json": `{"first":"Grace","last":"Hopper"}`}
	result, err = srv.handleGetString(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultText(t, result); got != "Grace Hopper" {
		t.Errorf("unexpected text %q", got)
	}
}
