package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/guestdesk/concierge/internal/chat"
	"github.com/guestdesk/concierge/internal/engine"
	"github.com/guestdesk/concierge/internal/knowledge"

	"github.com/google/uuid"
)

// turnRequest is the JSON body of POST /api/v1/turn.
type turnRequest struct {
	SessionID string       `json:"session_id"`
	Message   string       `json:"message"`
	Property  string       `json:"property,omitempty"`
	History   chat.History `json:"history,omitempty"`
	Location  string       `json:"location,omitempty"`
}

// turnResponse mirrors the engine's reply.
type turnResponse struct {
	SessionID                   string `json:"session_id"`
	Text                        string `json:"text"`
	Property                    string `json:"property,omitempty"`
	Language                    string `json:"language"`
	Intent                      string `json:"intent"`
	AwaitingProperty            bool   `json:"awaiting_property,omitempty"`
	AwaitingSupportConfirmation bool   `json:"awaiting_support_confirmation,omitempty"`
	HandedOff                   bool   `json:"handed_off,omitempty"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp, err := s.engine.HandleTurn(r.Context(), engine.Request{
		SessionID:    req.SessionID,
		Message:      req.Message,
		History:      req.History,
		Property:     req.Property,
		UserLocation: req.Location,
	})
	if err != nil {
		log.Printf("turn failed for session %s: %v", req.SessionID, err)
		writeError(w, http.StatusInternalServerError, "turn failed")
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{
		SessionID:                   req.SessionID,
		Text:                        resp.Text,
		Property:                    resp.Property,
		Language:                    resp.Language,
		Intent:                      resp.Intent,
		AwaitingProperty:            resp.AwaitingProperty,
		AwaitingSupportConfirmation: resp.AwaitingSupportConfirmation,
		HandedOff:                   resp.HandedOff,
	})
}

// propertyInfo is one entry of GET /api/v1/properties.
type propertyInfo struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	out := make([]propertyInfo, 0, len(s.cfg.Properties))
	for _, p := range s.cfg.Properties {
		out = append(out, propertyInfo{Name: p.Name, Timezone: p.Timezone})
	}
	writeJSON(w, http.StatusOK, out)
}

// knowledgeEntry is one row of the knowledge admin surface.
type knowledgeEntry struct {
	Category string `json:"category"`
	Name     string `json:"name,omitempty"`
	Day      string `json:"day,omitempty"`
	Content  string `json:"content"`
}

func (s *Server) handlePutKnowledge(w http.ResponseWriter, r *http.Request) {
	property := chi.URLParam(r, "property")
	language := chi.URLParam(r, "lang")
	if s.cfg.PropertyByName(property) == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown property %q", property))
		return
	}

	var entries []knowledgeEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	for _, e := range entries {
		cat := knowledge.Category(e.Category)
		switch cat {
		case knowledge.CategoryGeneral, knowledge.CategoryDaily, knowledge.CategoryAmenity, knowledge.CategoryMenu:
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", e.Category))
			return
		}
		if err := s.knowledge.Put(r.Context(), property, language, cat, e.Name, e.Day, e.Content); err != nil {
			log.Printf("knowledge upsert %s/%s failed: %v", property, language, err)
			writeError(w, http.StatusInternalServerError, "saving knowledge failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{"saved": len(entries)})
}

func (s *Server) handleGetKnowledge(w http.ResponseWriter, r *http.Request) {
	property := chi.URLParam(r, "property")
	language := chi.URLParam(r, "lang")
	if s.cfg.PropertyByName(property) == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown property %q", property))
		return
	}

	rec, err := s.knowledge.Get(r.Context(), property, language)
	if err != nil {
		log.Printf("knowledge fetch %s/%s failed: %v", property, language, err)
		writeError(w, http.StatusInternalServerError, "loading knowledge failed")
		return
	}

	var entries []knowledgeEntry
	if rec.General != "" {
		entries = append(entries, knowledgeEntry{Category: string(knowledge.CategoryGeneral), Content: rec.General})
	}
	for _, d := range rec.Daily {
		entries = append(entries, knowledgeEntry{Category: string(knowledge.CategoryDaily), Day: d.Day, Content: d.Content})
	}
	for name, text := range rec.AmenityCatalog {
		entries = append(entries, knowledgeEntry{Category: string(knowledge.CategoryAmenity), Name: name, Content: text})
	}
	for name, text := range rec.Menu {
		entries = append(entries, knowledgeEntry{Category: string(knowledge.CategoryMenu), Name: name, Content: text})
	}
	if entries == nil {
		entries = []knowledgeEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
