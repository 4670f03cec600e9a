// Package lang provides the language detection and translation
// collaborators. Both are LLM-backed; detection carries a local heuristic
// fallback so a collaborator outage never fails a turn.
package lang

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/guestdesk/concierge/internal/chat"
	"github.com/guestdesk/concierge/internal/llm"
)

// Detector returns an ISO 639-1 language code for a piece of text.
type Detector interface {
	Detect(ctx context.Context, text string, history chat.History) (string, error)
}

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// LLMDetector detects language by asking the model, constrained to the
// supported set, with a script/stop-word heuristic as fallback.
type LLMDetector struct {
	provider  llm.Provider
	supported []string
	fallback  string
}

// NewLLMDetector creates a detector restricted to the supported language
// codes. fallback is returned when neither the model nor the heuristic is
// conclusive.
func NewLLMDetector(provider llm.Provider, supported []string, fallback string) *LLMDetector {
	return &LLMDetector{provider: provider, supported: supported, fallback: fallback}
}

// Detect returns the language code for text. On model failure it degrades
// to HeuristicDetect rather than returning an error, so callers can treat
// the result as always usable.
func (d *LLMDetector) Detect(ctx context.Context, text string, history chat.History) (string, error) {
	if strings.TrimSpace(text) == "" {
		return d.fallback, nil
	}

	prompt := fmt.Sprintf(
		"Identify the language of the user message below. Answer with exactly one of these ISO codes: %s. If unsure, answer %s.\n\nMessage: %s",
		strings.Join(d.supported, ", "), d.fallback, text)
	if recent := history.Tail(2); len(recent) > 0 {
		var b strings.Builder
		for _, m := range recent {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Text)
		}
		prompt += "\n\nRecent conversation:\n" + b.String()
	}

	resp, err := d.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a language identification service. Reply with a single ISO 639-1 code."},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   4,
		Temperature: 0,
	})
	if err != nil {
		return HeuristicDetect(text, d.supported, d.fallback), nil
	}

	code := strings.ToLower(strings.TrimSpace(resp.Content))
	for _, s := range d.supported {
		if code == s {
			return code, nil
		}
	}
	return HeuristicDetect(text, d.supported, d.fallback), nil
}

// HeuristicDetect guesses a language from script and stop words. It only
// distinguishes the launch languages; anything else falls back.
func HeuristicDetect(text string, supported []string, fallback string) string {
	lower := strings.ToLower(text)

	has := func(code string) bool {
		for _, s := range supported {
			if s == code {
				return true
			}
		}
		return false
	}

	// Cyrillic script implies Russian among the supported set.
	if has("ru") {
		for _, r := range lower {
			if unicode.Is(unicode.Cyrillic, r) {
				return "ru"
			}
		}
	}

	if has("tr") && containsAny(lower, "ı", "ş", "ğ", " mi", " mı", " mu", " mü", "nerede", "kaçta") {
		return "tr"
	}
	if has("de") && containsAny(lower, "ß", " der ", " die ", " das ", " ich ", "wann", "wo ist") {
		return "de"
	}
	if has("en") && containsAny(lower, " the ", "what", "when", "where", "how ", " is ", " are ") {
		return "en"
	}

	return fallback
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// LLMTranslator translates via the model. Translating into the source
// language is a pass-through that performs no call.
type LLMTranslator struct {
	provider llm.Provider
	names    map[string]string
}

// NewLLMTranslator creates a translator. langNames maps codes to display
// names used in prompts; unknown codes use the code itself.
func NewLLMTranslator(provider llm.Provider) *LLMTranslator {
	return &LLMTranslator{
		provider: provider,
		names: map[string]string{
			"en": "English", "tr": "Turkish", "de": "German", "ru": "Russian",
			"fr": "French", "es": "Spanish", "ar": "Arabic",
		},
	}
}

// Translate returns text rendered in targetLang. Empty text and empty
// targets are pass-throughs.
func (t *LLMTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" || targetLang == "" {
		return text, nil
	}

	name := t.names[targetLang]
	if name == "" {
		name = targetLang
	}

	resp, err := t.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf("You are a translation service. Translate the user's text into %s. Output only the translation, nothing else. If the text is already in %s, output it unchanged.", name, name)},
			{Role: llm.RoleUser, Content: text},
		},
		MaxTokens:   1024,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("translating to %s: %w", targetLang, err)
	}
	return strings.TrimSpace(resp.Content), nil
}
