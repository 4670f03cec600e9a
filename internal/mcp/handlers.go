package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/guestdesk/concierge/internal/engine"
)

// handleAskConcierge runs one engine turn on behalf of the calling agent.
func (s *Server) handleAskConcierge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}

	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp, err := s.engine.HandleTurn(ctx, engine.Request{
		SessionID: sessionID,
		Message:   message,
		Property:  request.GetString("property", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("turn failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "session_id: %s\n", sessionID)
	if resp.Property != "" {
		fmt.Fprintf(&b, "property: %s\n", resp.Property)
	}
	fmt.Fprintf(&b, "language: %s\n\n%s", resp.Language, resp.Text)
	if resp.AwaitingProperty || resp.AwaitingSupportConfirmation {
		b.WriteString("\n\n(The concierge is waiting for the guest's reply; pass the same session_id on the next call.)")
	}

	return mcp.NewToolResultText(b.String()), nil
}

// handleListProperties returns the configured property roster.
func (s *Server) handleListProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, p := range s.cfg.Properties {
		fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Timezone)
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("No properties configured."), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleGetKnowledge returns the flattened knowledge text for one
// (property, language) pair.
func (s *Server) handleGetKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	property, err := request.RequireString("property")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: property"), nil
	}
	language, err := request.RequireString("language")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: language"), nil
	}

	prop := s.cfg.PropertyByName(property)
	if prop == nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown property %q", property)), nil
	}

	rec, err := s.knowledge.Get(ctx, prop.Name, language)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading knowledge failed: %v", err)), nil
	}
	if rec.Empty() {
		return mcp.NewToolResultText(fmt.Sprintf("No %s knowledge stored for %s.", language, prop.Name)), nil
	}

	loc, _ := time.LoadLocation(prop.Timezone)
	return mcp.NewToolResultText(rec.ContextText(time.Now(), loc)), nil
}
