package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/guestdesk/concierge/internal/cache"
	"github.com/guestdesk/concierge/internal/chain"
	"github.com/guestdesk/concierge/internal/chat"
	"github.com/guestdesk/concierge/internal/config"
	"github.com/guestdesk/concierge/internal/db"
	"github.com/guestdesk/concierge/internal/detect"
	"github.com/guestdesk/concierge/internal/entities"
	"github.com/guestdesk/concierge/internal/intent"
	"github.com/guestdesk/concierge/internal/knowledge"
	"github.com/guestdesk/concierge/internal/lang"
	"github.com/guestdesk/concierge/internal/llm"
	"github.com/guestdesk/concierge/internal/questionlog"
	"github.com/guestdesk/concierge/internal/resolver"
	"github.com/guestdesk/concierge/internal/session"
)

// downProvider simulates an unreachable model; every component that uses
// it must fall back to its local heuristics.
type downProvider struct{}

func (downProvider) Name() string { return "down" }

func (downProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return nil, errors.New("model unreachable")
}

// contextGenerator answers a known question when the grounding context
// mentions its subject, and reports no information otherwise.
type contextGenerator struct {
	replies map[string]string // question substring -> reply
	calls   int
}

func (g *contextGenerator) Name() string { return "fake" }

func (g *contextGenerator) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	g.calls++
	question := strings.ToLower(req.Messages[len(req.Messages)-1].Content)
	for sub, reply := range g.replies {
		if strings.Contains(question, sub) {
			return &llm.CompletionResponse{Content: reply}, nil
		}
	}
	return &llm.CompletionResponse{Content: "I don't have that information."}, nil
}

type recordNotifier struct {
	calls    int
	property string
}

func (n *recordNotifier) Notify(ctx context.Context, property string, history chat.History) error {
	n.calls++
	n.property = property
	return nil
}

type harness struct {
	engine   *Engine
	store    *knowledge.Store
	qlog     *questionlog.Store
	notifier *recordNotifier
	gen      *contextGenerator
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	dict := entities.New(cfg.EntityMap, cfg.PropertyNames(), nil, cfg.Fuzzy.MaxDistance, cfg.Fuzzy.MinSimilarity)
	down := downProvider{}

	gen := &contextGenerator{replies: map[string]string{
		"pasha":     "Pasha Restaurant is open from 18:00 to 22:00 and takes reservations at the guest desk.",
		"breakfast": "Breakfast at Belvil is served from 07:00 to 10:30 at the main restaurant.",
	}}

	store := knowledge.NewStore(database)
	notifier := &recordNotifier{}
	qlog := questionlog.NewStore(database)

	ch := chain.New(store, gen, lang.NewLLMTranslator(down), dict, cache.Noop{}, chain.Options{
		PivotLanguage:   cfg.PivotLanguage,
		FallbackChain:   cfg.FallbackChain,
		NoInfoPhrases:   cfg.NoInfoPhrases,
		MinAnswerLength: cfg.MinAnswerLength,
	})

	eng := New(
		resolver.New(cfg.ReferringWords),
		detect.New(dict, lang.NewLLMDetector(down, cfg.Languages, cfg.DefaultLanguage), down, cfg.Languages, cfg.DefaultLanguage),
		intent.New(dict, down, cfg.SupportKeywords, cfg.Affirmatives, cfg.Interrogatives, cfg.LocationPhrases),
		dict,
		ch,
		session.NewStore(database),
		notifier,
		qlog,
	)

	return &harness{engine: eng, store: store, qlog: qlog, notifier: notifier, gen: gen}
}

func (h *harness) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := h.store.Put(ctx, "Belvil", "en", knowledge.CategoryGeneral, "", "",
		"Breakfast is served at the main restaurant from 07:00 to 10:30."); err != nil {
		t.Fatalf("seeding general knowledge: %v", err)
	}
	if err := h.store.Put(ctx, "Belvil", "en", knowledge.CategoryAmenity, "pasha restaurant", "",
		"Pasha Restaurant is an a la carte venue open 18:00 to 22:00."); err != nil {
		t.Fatalf("seeding amenity knowledge: %v", err)
	}
}

func TestQuestionWithVenueAnswersFromKnowledge(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	resp, err := h.engine.HandleTurn(context.Background(), Request{
		SessionID: "s1",
		Message:   "What time does Pasha Restaurant open?",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if resp.Property != "Belvil" {
		t.Errorf("property = %q, want Belvil", resp.Property)
	}
	if !resp.Answered {
		t.Fatalf("expected a grounded answer, got %q", resp.Text)
	}
	if resp.AnswerLanguage != "en" {
		t.Errorf("answer language = %q, want en", resp.AnswerLanguage)
	}
	if !strings.Contains(resp.Text, "18:00") {
		t.Errorf("answer %q does not mention the opening time", resp.Text)
	}
}

func TestQuestionWithoutPropertyAsksThenAnswers(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	ctx := context.Background()

	resp, err := h.engine.HandleTurn(ctx, Request{
		SessionID: "s1",
		Message:   "What time does breakfast start?",
	})
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if !resp.AwaitingProperty {
		t.Fatalf("expected a property clarification, got %q", resp.Text)
	}
	if h.gen.calls != 0 {
		t.Errorf("generator ran %d times before the property was known", h.gen.calls)
	}

	resp, err = h.engine.HandleTurn(ctx, Request{SessionID: "s1", Message: "Belvil"})
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if resp.AwaitingProperty {
		t.Fatal("clarification asked twice for the same question")
	}
	if !resp.Answered {
		t.Fatalf("expected the stored question answered, got %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "07:00") {
		t.Errorf("answer %q does not mention breakfast time", resp.Text)
	}
}

func TestFollowUpReferenceResolvesToLastVenue(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	ctx := context.Background()

	history := chat.History{
		{Role: chat.RoleUser, Text: "What time does Pasha Restaurant open?"},
		{Role: chat.RoleAssistant, Text: "Pasha Restaurant is open from 18:00 to 22:00."},
	}
	resp, err := h.engine.HandleTurn(ctx, Request{
		SessionID: "s1",
		Message:   "Can I make a reservation there?",
		History:   history,
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if resp.Property != "Belvil" {
		t.Errorf("property = %q, want Belvil via the referenced venue", resp.Property)
	}
	if !resp.Answered {
		t.Errorf("expected a grounded answer, got %q", resp.Text)
	}
}

func TestSupportRequestWithPropertyConfirmsThenHandsOff(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp, err := h.engine.HandleTurn(ctx, Request{
		SessionID: "s1",
		Message:   "I want to talk to a human at Belvil",
	})
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if !resp.AwaitingSupportConfirmation {
		t.Fatalf("expected a confirmation prompt, got %q", resp.Text)
	}
	if h.notifier.calls != 0 {
		t.Fatal("notification sent before the guest confirmed")
	}

	resp, err = h.engine.HandleTurn(ctx, Request{SessionID: "s1", Message: "yes"})
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if !resp.HandedOff {
		t.Fatalf("expected a handoff, got %q", resp.Text)
	}
	if h.notifier.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", h.notifier.calls)
	}
	if h.notifier.property != "Belvil" {
		t.Errorf("notified property = %q, want Belvil", h.notifier.property)
	}
}

func TestSupportRequestWithoutPropertyAsksFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp, err := h.engine.HandleTurn(ctx, Request{SessionID: "s1", Message: "I need live support"})
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if !resp.AwaitingSupportConfirmation {
		t.Fatalf("expected a property request for the handoff, got %q", resp.Text)
	}

	resp, err = h.engine.HandleTurn(ctx, Request{SessionID: "s1", Message: "Zeugma"})
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if !resp.AwaitingSupportConfirmation {
		t.Fatalf("expected a confirmation prompt after the property, got %q", resp.Text)
	}
	if resp.Property != "Zeugma" {
		t.Errorf("property = %q, want Zeugma", resp.Property)
	}
	if h.notifier.calls != 0 {
		t.Fatal("notification sent before the guest confirmed")
	}

	resp, err = h.engine.HandleTurn(ctx, Request{SessionID: "s1", Message: "sure"})
	if err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	if !resp.HandedOff || h.notifier.calls != 1 {
		t.Errorf("handed off = %v, notifier calls = %d", resp.HandedOff, h.notifier.calls)
	}
}

func TestNonAffirmativeAbandonsPendingHandoff(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	ctx := context.Background()

	if _, err := h.engine.HandleTurn(ctx, Request{
		SessionID: "s1",
		Message:   "I want to talk to a human at Belvil",
	}); err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	resp, err := h.engine.HandleTurn(ctx, Request{
		SessionID: "s1",
		Message:   "What time does Pasha Restaurant open?",
	})
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if resp.HandedOff || resp.AwaitingSupportConfirmation {
		t.Fatalf("pending handoff not abandoned: %+v", resp)
	}
	if !resp.Answered {
		t.Errorf("expected the new question answered, got %q", resp.Text)
	}
	if h.notifier.calls != 0 {
		t.Errorf("notifier calls = %d, want 0", h.notifier.calls)
	}
}

func TestSmallTalkNeverTouchesTheGenerator(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	resp, err := h.engine.HandleTurn(context.Background(), Request{SessionID: "s1", Message: "hello"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if resp.Intent != string(intent.IntentSmallTalk) {
		t.Errorf("intent = %q, want smalltalk", resp.Intent)
	}
	if h.gen.calls != 0 {
		t.Errorf("generator calls = %d, want 0", h.gen.calls)
	}
}

func TestLocationQuestionIsDeferred(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	resp, err := h.engine.HandleTurn(context.Background(), Request{
		SessionID: "s1",
		Message:   "Where is the nearest pharmacy?",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(resp.Text, "map") {
		t.Errorf("expected the map deferral, got %q", resp.Text)
	}
	if h.gen.calls != 0 {
		t.Errorf("generator calls = %d, want 0", h.gen.calls)
	}
}

func TestNoKnowledgeApologizesWithoutFabricating(t *testing.T) {
	h := newHarness(t)

	resp, err := h.engine.HandleTurn(context.Background(), Request{
		SessionID: "s1",
		Message:   "What time does Teppanyaki open?",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if resp.Property != "Zeugma" {
		t.Errorf("property = %q, want Zeugma", resp.Property)
	}
	if resp.Answered {
		t.Fatalf("answer fabricated with no stored knowledge: %q", resp.Text)
	}
	if !strings.Contains(strings.ToLower(resp.Text), "don't have") {
		t.Errorf("expected an apology, got %q", resp.Text)
	}
}

func TestEmptyInputsAreRejected(t *testing.T) {
	h := newHarness(t)

	if _, err := h.engine.HandleTurn(context.Background(), Request{SessionID: "s1", Message: "   "}); err == nil {
		t.Error("expected an error for a blank message")
	}
	if _, err := h.engine.HandleTurn(context.Background(), Request{Message: "hi"}); err == nil {
		t.Error("expected an error for a missing session id")
	}
}

func TestTurnsAreLogged(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	ctx := context.Background()

	if _, err := h.engine.HandleTurn(ctx, Request{SessionID: "s1", Message: "hello"}); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if _, err := h.engine.HandleTurn(ctx, Request{
		SessionID: "s1",
		Message:   "What time does Pasha Restaurant open?",
	}); err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	n, err := h.qlog.CountBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("CountBySession: %v", err)
	}
	if n != 2 {
		t.Errorf("logged turns = %d, want 2", n)
	}
}

func TestPropertyStickinessAcrossTurns(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	ctx := context.Background()

	if _, err := h.engine.HandleTurn(ctx, Request{
		SessionID: "s1",
		Message:   "What time does Pasha Restaurant open?",
	}); err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	// No property mentioned; the session's last property carries over.
	resp, err := h.engine.HandleTurn(ctx, Request{
		SessionID: "s1",
		Message:   "What time does breakfast start?",
	})
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if resp.AwaitingProperty {
		t.Fatal("property asked again despite session context")
	}
	if resp.Property != "Belvil" {
		t.Errorf("property = %q, want Belvil from session context", resp.Property)
	}
}

func TestGeneratorHumanWishArmsHandoffConfirmation(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.gen.replies["complaint"] = chain.HumanSupportMarker
	ctx := context.Background()

	// The generator decides this question needs a human.
	resp, err := h.engine.HandleTurn(ctx, Request{
		SessionID: "s1",
		Message:   "Who do I contact about a billing complaint at Belvil?",
	})
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if !resp.AwaitingSupportConfirmation {
		t.Fatalf("expected a confirmation prompt, got %q", resp.Text)
	}
	if h.notifier.calls != 0 {
		t.Fatal("notification sent before the guest confirmed")
	}

	// The affirmative must execute the handoff, not re-prompt.
	resp, err = h.engine.HandleTurn(ctx, Request{SessionID: "s1", Message: "yes"})
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if !resp.HandedOff {
		t.Fatalf("expected a handoff, got %q", resp.Text)
	}
	if h.notifier.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", h.notifier.calls)
	}
	if h.notifier.property != "Belvil" {
		t.Errorf("notified property = %q, want Belvil", h.notifier.property)
	}
}
