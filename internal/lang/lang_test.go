package lang

import (
	"context"
	"errors"
	"testing"

	"github.com/guestdesk/concierge/internal/llm"
)

// stubProvider returns a fixed reply or error.
type stubProvider struct {
	reply string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.reply}, nil
}

var supported = []string{"en", "tr", "de", "ru"}

func TestDetectUsesModelReply(t *testing.T) {
	d := NewLLMDetector(&stubProvider{reply: "tr"}, supported, "en")
	got, err := d.Detect(context.Background(), "spa kaçta açılıyor", nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got != "tr" {
		t.Errorf("got %q, want tr", got)
	}
}

func TestDetectFallsBackOnModelError(t *testing.T) {
	d := NewLLMDetector(&stubProvider{err: errors.New("timeout")}, supported, "en")
	got, err := d.Detect(context.Background(), "когда открывается спа", nil)
	if err != nil {
		t.Fatalf("Detect should not error on collaborator failure: %v", err)
	}
	if got != "ru" {
		t.Errorf("got %q, want ru via heuristic", got)
	}
}

func TestDetectRejectsUnsupportedModelReply(t *testing.T) {
	d := NewLLMDetector(&stubProvider{reply: "fr"}, supported, "en")
	got, err := d.Detect(context.Background(), "what time is breakfast", nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got != "en" {
		t.Errorf("got %q, want en", got)
	}
}

func TestDetectEmptyMessage(t *testing.T) {
	stub := &stubProvider{reply: "en"}
	d := NewLLMDetector(stub, supported, "en")
	got, err := d.Detect(context.Background(), "   ", nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got != "en" {
		t.Errorf("got %q, want en", got)
	}
	if stub.calls != 0 {
		t.Error("empty message should not reach the model")
	}
}

func TestHeuristicDetect(t *testing.T) {
	tests := []struct {
		text, want string
	}{
		{"спасибо большое", "ru"},
		{"havuz nerede", "tr"},
		{"wann öffnet das restaurant", "de"},
		{"what time is dinner", "en"},
		{"???", "en"},
	}
	for _, tt := range tests {
		if got := HeuristicDetect(tt.text, supported, "en"); got != tt.want {
			t.Errorf("HeuristicDetect(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	tr := NewLLMTranslator(&stubProvider{reply: "Wo ist der Pool?"})
	got, err := tr.Translate(context.Background(), "Where is the pool?", "de")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Wo ist der Pool?" {
		t.Errorf("got %q", got)
	}
}

func TestTranslateEmptyPassThrough(t *testing.T) {
	stub := &stubProvider{reply: "unused"}
	tr := NewLLMTranslator(stub)
	got, err := tr.Translate(context.Background(), "", "de")
	if err != nil || got != "" {
		t.Errorf("empty text should pass through, got (%q, %v)", got, err)
	}
	if stub.calls != 0 {
		t.Error("empty text should not reach the model")
	}
}

func TestTranslateErrorPropagates(t *testing.T) {
	tr := NewLLMTranslator(&stubProvider{err: errors.New("timeout")})
	if _, err := tr.Translate(context.Background(), "hello", "de"); err == nil {
		t.Error("expected error from failed translation")
	}
}
