// Package support turns a confirmed live-support request into a handoff
// notification on an external channel. Sending is best-effort: a failed
// webhook never blocks the confirmation returned to the guest.
package support

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/guestdesk/concierge/internal/chat"
)

// Notifier delivers a handoff to the support channel.
type Notifier interface {
	Notify(ctx context.Context, property string, history chat.History) error
}

// WebhookNotifier posts Slack-compatible payloads to an incoming webhook.
type WebhookNotifier struct {
	url     string
	channel string
	client  *http.Client
}

// NewWebhookNotifier creates a notifier for the given webhook URL. An
// empty URL disables delivery (Notify becomes a logged no-op).
func NewWebhookNotifier(url, channel string) *WebhookNotifier {
	return &WebhookNotifier{
		url:     url,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

// Notify posts the handoff message.
func (n *WebhookNotifier) Notify(ctx context.Context, property string, history chat.History) error {
	if n.url == "" {
		log.Printf("support handoff for %s skipped: no webhook configured", property)
		return nil
	}

	payload, err := json.Marshal(webhookPayload{
		Channel: n.channel,
		Text:    formatHandoff(property, history),
	})
	if err != nil {
		return fmt.Errorf("marshalling handoff payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating handoff request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending handoff webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("handoff webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// formatHandoff renders the notification text: the property and the tail
// of the conversation so the agent has context.
func formatHandoff(property string, history chat.History) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Live support requested at %s\n", property)
	for _, m := range history.Tail(6) {
		fmt.Fprintf(&b, "• %s: %s\n", m.Role, m.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Handoff executes a confirmed handoff: fires the notification without
// letting a delivery failure reach the guest, and returns the
// confirmation text in the guest's language.
func Handoff(ctx context.Context, notifier Notifier, property, language string, history chat.History) string {
	if err := notifier.Notify(ctx, property, history); err != nil {
		log.Printf("warning: support notification for %s failed: %v", property, err)
	}
	return ConfirmationText(property, language)
}

// ConfirmationText is the message shown to the guest once the handoff is
// underway.
func ConfirmationText(property, language string) string {
	switch language {
	case "tr":
		return fmt.Sprintf("%s canlı destek ekibine bağlıyorum. Bir görevli kısa süre içinde size yazacak.", property)
	case "de":
		return fmt.Sprintf("Ich verbinde Sie mit dem Live-Support von %s. Ein Mitarbeiter meldet sich in Kürze bei Ihnen.", property)
	case "ru":
		return fmt.Sprintf("Соединяю вас со службой поддержки %s. Сотрудник скоро свяжется с вами.", property)
	default:
		return fmt.Sprintf("I'm connecting you with the live support team at %s. An agent will be with you shortly.", property)
	}
}

// ConfirmationPrompt asks the guest to confirm the handoff for a known
// property before anything is sent.
func ConfirmationPrompt(property, language string) string {
	switch language {
	case "tr":
		return fmt.Sprintf("%s canlı destek ekibiyle görüşmek istediğinizi onaylıyor musunuz?", property)
	case "de":
		return fmt.Sprintf("Möchten Sie mit dem Live-Support von %s verbunden werden?", property)
	case "ru":
		return fmt.Sprintf("Подтвердите, пожалуйста: соединить вас со службой поддержки %s?", property)
	default:
		return fmt.Sprintf("Just to confirm: would you like me to connect you with the live support team at %s?", property)
	}
}

// AskPropertyPrompt asks which property the guest is staying at before a
// support request can proceed.
func AskPropertyPrompt(language string) string {
	switch language {
	case "tr":
		return "Elbette! Hangi otelde konaklıyorsunuz?"
	case "de":
		return "Gerne! In welchem Hotel wohnen Sie?"
	case "ru":
		return "Конечно! В каком отеле вы остановились?"
	default:
		return "Of course! Which hotel are you staying at?"
	}
}
