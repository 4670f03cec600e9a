package support

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/guestdesk/concierge/internal/chat"
)

func TestWebhookNotifierPostsPayload(t *testing.T) {
	var received webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %s", ct)
		}
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "#guest-support")
	history := chat.History{
		{Role: chat.RoleUser, Text: "I want to talk to a human"},
		{Role: chat.RoleAssistant, Text: "Which hotel are you staying at?"},
		{Role: chat.RoleUser, Text: "Zeugma"},
	}

	if err := n.Notify(context.Background(), "Zeugma", history); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if received.Channel != "#guest-support" {
		t.Errorf("channel = %q", received.Channel)
	}
	if !strings.Contains(received.Text, "Zeugma") {
		t.Errorf("payload missing property: %q", received.Text)
	}
	if !strings.Contains(received.Text, "talk to a human") {
		t.Errorf("payload missing conversation tail: %q", received.Text)
	}
}

func TestWebhookNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "")
	if err := n.Notify(context.Background(), "Belvil", nil); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestWebhookNotifierDisabled(t *testing.T) {
	n := NewWebhookNotifier("", "")
	if err := n.Notify(context.Background(), "Belvil", nil); err != nil {
		t.Errorf("disabled notifier should no-op, got %v", err)
	}
}

// failingNotifier always errors.
type failingNotifier struct{}

func (failingNotifier) Notify(ctx context.Context, property string, history chat.History) error {
	return errors.New("webhook down")
}

func TestHandoffSurvivesNotifierFailure(t *testing.T) {
	// Best-effort: the guest still gets a confirmation.
	text := Handoff(context.Background(), failingNotifier{}, "Belvil", "en", nil)
	if !strings.Contains(text, "Belvil") {
		t.Errorf("confirmation text missing property: %q", text)
	}
}

func TestConfirmationTextPerLanguage(t *testing.T) {
	for _, lang := range []string{"en", "tr", "de", "ru"} {
		text := ConfirmationText("Zeugma", lang)
		if !strings.Contains(text, "Zeugma") {
			t.Errorf("language %s: confirmation missing property: %q", lang, text)
		}
	}
	// Unknown language falls back to English.
	if text := ConfirmationText("Zeugma", "fr"); !strings.Contains(text, "live support") {
		t.Errorf("fallback text = %q", text)
	}
}
