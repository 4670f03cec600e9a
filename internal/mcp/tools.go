package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askConciergeTool defines the ask_concierge MCP tool.
var askConciergeTool = mcp.NewTool("ask_concierge",
	mcp.WithDescription("Ask the hotel concierge a guest question in any supported language. Maintains per-session dialogue state, so follow-ups and clarification answers work."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The guest message"),
	),
	mcp.WithString("session_id",
		mcp.Description("Session identifier; pass the same value across turns of one conversation"),
	),
	mcp.WithString("property",
		mcp.Description("Hotel property name, when already known from context"),
	),
)

// listPropertiesTool defines the list_properties MCP tool.
var listPropertiesTool = mcp.NewTool("list_properties",
	mcp.WithDescription("List the configured hotel properties and their time zones."),
)

// getKnowledgeTool defines the get_knowledge MCP tool.
var getKnowledgeTool = mcp.NewTool("get_knowledge",
	mcp.WithDescription("Get the stored knowledge text for a property in a given language."),
	mcp.WithString("property",
		mcp.Required(),
		mcp.Description("Hotel property name"),
	),
	mcp.WithString("language",
		mcp.Required(),
		mcp.Description("ISO 639-1 language code, e.g. en"),
	),
)
