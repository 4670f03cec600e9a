package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/guestdesk/concierge/internal/cache"
	"github.com/guestdesk/concierge/internal/chain"
	"github.com/guestdesk/concierge/internal/chat"
	"github.com/guestdesk/concierge/internal/config"
	"github.com/guestdesk/concierge/internal/db"
	"github.com/guestdesk/concierge/internal/detect"
	"github.com/guestdesk/concierge/internal/engine"
	"github.com/guestdesk/concierge/internal/entities"
	"github.com/guestdesk/concierge/internal/intent"
	"github.com/guestdesk/concierge/internal/knowledge"
	"github.com/guestdesk/concierge/internal/lang"
	"github.com/guestdesk/concierge/internal/llm"
	"github.com/guestdesk/concierge/internal/questionlog"
	"github.com/guestdesk/concierge/internal/resolver"
	"github.com/guestdesk/concierge/internal/session"
)

type downProvider struct{}

func (downProvider) Name() string { return "down" }

func (downProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return nil, errors.New("model unreachable")
}

// echoGenerator replies with a fixed answer whenever it is shown context.
type echoGenerator struct{ answer string }

func (g echoGenerator) Name() string { return "echo" }

func (g echoGenerator) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: g.answer}, nil
}

type silentNotifier struct{}

func (silentNotifier) Notify(ctx context.Context, property string, history chat.History) error {
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.Server.AllowAll = true
	dict := entities.New(cfg.EntityMap, cfg.PropertyNames(), nil, cfg.Fuzzy.MaxDistance, cfg.Fuzzy.MinSimilarity)
	down := downProvider{}
	gen := echoGenerator{answer: "Pasha Restaurant is open from 18:00 to 22:00 every evening."}

	ks := knowledge.NewStore(database)
	if err := ks.Put(context.Background(), "Belvil", "en", knowledge.CategoryAmenity, "pasha restaurant", "",
		"Pasha Restaurant is an a la carte venue open 18:00 to 22:00."); err != nil {
		t.Fatalf("seeding knowledge: %v", err)
	}

	ch := chain.New(ks, gen, lang.NewLLMTranslator(down), dict, cache.Noop{}, chain.Options{
		PivotLanguage:   cfg.PivotLanguage,
		FallbackChain:   cfg.FallbackChain,
		NoInfoPhrases:   cfg.NoInfoPhrases,
		MinAnswerLength: cfg.MinAnswerLength,
	})

	eng := engine.New(
		resolver.New(cfg.ReferringWords),
		detect.New(dict, lang.NewLLMDetector(down, cfg.Languages, cfg.DefaultLanguage), down, cfg.Languages, cfg.DefaultLanguage),
		intent.New(dict, down, cfg.SupportKeywords, cfg.Affirmatives, cfg.Interrogatives, cfg.LocationPhrases),
		dict,
		ch,
		session.NewStore(database),
		silentNotifier{},
		questionlog.NewStore(database),
	)

	return New(cfg, eng, ks)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestTurnEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(turnRequest{Message: "What time does Pasha Restaurant open?"})
	req := httptest.NewRequest("POST", "/api/v1/turn", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp turnResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("expected a generated session id")
	}
	if resp.Property != "Belvil" {
		t.Errorf("property = %q, want Belvil", resp.Property)
	}
	if !strings.Contains(resp.Text, "18:00") {
		t.Errorf("answer %q does not mention the opening time", resp.Text)
	}
}

func TestTurnEndpointRejectsEmptyMessage(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(turnRequest{Message: "   "})
	req := httptest.NewRequest("POST", "/api/v1/turn", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPropertiesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/properties", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var props []propertyInfo
	if err := json.Unmarshal(w.Body.Bytes(), &props); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(props) != 3 {
		t.Fatalf("properties = %d, want 3", len(props))
	}
	if props[0].Name != "Belvil" || props[0].Timezone != "Europe/Istanbul" {
		t.Errorf("unexpected first property: %+v", props[0])
	}
}

func TestKnowledgeRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	entries := []knowledgeEntry{
		{Category: "general", Content: "Check-in is at 14:00, check-out at 12:00."},
		{Category: "daily", Day: "2026-08-31", Content: "Pool party at 15:00."},
	}
	body, _ := json.Marshal(entries)
	req := httptest.NewRequest("PUT", "/api/v1/knowledge/Zeugma/en", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("PUT: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/v1/knowledge/Zeugma/en", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET: expected 200, got %d", w.Code)
	}
	var got []knowledgeEntry
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
}

func TestKnowledgeUnknownProperty(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/knowledge/Nowhere/en", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestKnowledgeRejectsUnknownCategory(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal([]knowledgeEntry{{Category: "gossip", Content: "x"}})
	req := httptest.NewRequest("PUT", "/api/v1/knowledge/Belvil/en", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
