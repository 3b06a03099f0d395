package mcp

import "github.com/mark3labs/mcp-go/mcp"

// pendingCountTool defines the pending_count MCP tool.
var pendingCountTool = mcp.NewTool("pending_count",
	mcp.WithDescription("Report how many operations are pending on the page and their ids. Zero means the page is idle."),
)

// waitForIdleTool defines the wait_for_idle MCP tool.
var waitForIdleTool = mcp.NewTool("wait_for_idle",
	mcp.WithDescription("Block until no operations are pending, or the timeout passes."),
	mcp.WithNumber("timeout_ms",
		mcp.Description("Maximum time to wait in milliseconds (default 10000)"),
	),
)

// getStringTool defines the get_string MCP tool.
var getStringTool = mcp.NewTool("get_string",
	mcp.WithDescription("Resolve a localized string by identifier and component, filling {$a} or {$a->key} placeholders."),
	mcp.WithString("identifier",
		mcp.Required(),
		mcp.Description("String identifier, e.g. \"savechanges\""),
	),
	mcp.WithString("component",
		mcp.Required(),
		mcp.Description("Component the string belongs to, e.g. \"core\" or \"mod_forum\""),
	),
	mcp.WithString("a",
		mcp.Description("Scalar value substituted for {$a}"),
	),
	mcp.WithString("a_json",
		mcp.Description("JSON value for the substitution; an object fills {$a->key} placeholders. Takes precedence over a."),
	),
)
