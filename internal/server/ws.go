package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/guestdesk/concierge/internal/chat"
	"github.com/guestdesk/concierge/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	SessionID string `json:"session_id"` // empty for new sessions
	Message   string `json:"message"`
	Property  string `json:"property,omitempty"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string `json:"type"` // "response" or "error"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Property  string `json:"property,omitempty"`
	Language  string `json:"language,omitempty"`
	HandedOff bool   `json:"handed_off,omitempty"`
}

// handleWebSocket runs a chat session over one connection. History is kept
// connection-local; the durable dialogue state lives in the session store.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	var history chat.History

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sendWS(conn, wsResponse{Type: "error", Text: "invalid message format"})
			continue
		}
		if req.Message == "" {
			sendWS(conn, wsResponse{Type: "error", SessionID: req.SessionID, Text: "message is required"})
			continue
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		resp, err := s.engine.HandleTurn(r.Context(), engine.Request{
			SessionID: req.SessionID,
			Message:   req.Message,
			History:   history,
			Property:  req.Property,
		})
		if err != nil {
			sendWS(conn, wsResponse{Type: "error", SessionID: req.SessionID, Text: "turn failed"})
			continue
		}

		history = append(history,
			chat.Message{Role: chat.RoleUser, Text: req.Message},
			chat.Message{Role: chat.RoleAssistant, Text: resp.Text},
		)

		sendWS(conn, wsResponse{
			Type:      "response",
			SessionID: req.SessionID,
			Text:      resp.Text,
			Property:  resp.Property,
			Language:  resp.Language,
			HandedOff: resp.HandedOff,
		})
	}
}

func sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("websocket write: %v", err)
	}
}
