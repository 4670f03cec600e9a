// Package detect settles on the {property, language} pair a turn concerns.
// Property detection is tiered: explicit parameter, venue dictionary,
// model-based classification, then fuzzy name match. Language prefers
// stickiness so short follow-ups do not flip the conversation language.
package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/guestdesk/concierge/internal/chat"
	"github.com/guestdesk/concierge/internal/entities"
	"github.com/guestdesk/concierge/internal/lang"
	"github.com/guestdesk/concierge/internal/llm"
)

// Unknown is the property value when every tier fails. It is a valid,
// expected outcome, not an error.
const Unknown = ""

// Result is the detector's output for one turn.
type Result struct {
	Property string
	Language string
}

// Detector combines the dictionary, a language detector, and the model.
type Detector struct {
	dict     *entities.Dictionary
	langDet  lang.Detector
	provider llm.Provider
	langs    []string
	fallback string
}

// New creates a Detector. provider is the model used for last-resort
// property classification; it may be nil in tests.
func New(dict *entities.Dictionary, langDet lang.Detector, provider llm.Provider, supported []string, fallbackLang string) *Detector {
	return &Detector{
		dict:     dict,
		langDet:  langDet,
		provider: provider,
		langs:    supported,
		fallback: fallbackLang,
	}
}

// Detect resolves the property and language for a turn. explicitProperty,
// when non-empty, wins the property tiers outright. The result is
// deterministic for identical inputs.
func (d *Detector) Detect(ctx context.Context, message string, history chat.History, explicitProperty string) Result {
	return Result{
		Property: d.detectProperty(ctx, message, explicitProperty),
		Language: d.detectLanguage(ctx, message, history),
	}
}

func (d *Detector) detectProperty(ctx context.Context, message, explicit string) string {
	// Tier 1: explicit caller-supplied property.
	if explicit != "" {
		for _, p := range d.dict.Properties() {
			if entities.Normalize(p) == entities.Normalize(explicit) {
				return p
			}
		}
	}

	// Tier 2: venue dictionary. Ambiguous (multi-property) matches yield "".
	if p := d.dict.MatchEntityOwner(message); p != "" {
		return p
	}

	// Tier 3: model-based classification.
	if p := d.classifyProperty(ctx, message); p != "" {
		return p
	}

	// Tier 4: fuzzy property-name match.
	return d.dict.MatchPropertyName(message)
}

// classifyProperty asks the model which configured property the message
// refers to. Any failure or unconfident reply is treated as no result so
// the next tier runs.
func (d *Detector) classifyProperty(ctx context.Context, message string) string {
	if d.provider == nil {
		return Unknown
	}

	names := d.dict.Properties()
	prompt := fmt.Sprintf(
		"Which hotel does this guest message refer to? Answer with exactly one of: %s, or NONE if the message does not clearly refer to any of them.\n\nMessage: %s",
		strings.Join(names, ", "), message)

	resp, err := d.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a strict classifier. Answer with a single hotel name or NONE."},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   8,
		Temperature: 0,
	})
	if err != nil {
		return Unknown
	}

	answer := entities.Normalize(resp.Content)
	for _, p := range names {
		if answer == entities.Normalize(p) {
			return p
		}
	}
	return Unknown
}

func (d *Detector) detectLanguage(ctx context.Context, message string, history chat.History) string {
	// Stickiness: keep the language of the last assistant turn when it is
	// confidently one of the supported set, so "yes" does not flip language.
	if last := history.LastAssistant(); last != "" {
		if code := lang.HeuristicDetect(last, d.langs, ""); code != "" && isShortReply(message) {
			return code
		}
	}

	code, err := d.langDet.Detect(ctx, message, history)
	if err != nil || code == "" {
		return d.fallback
	}
	return code
}

// isShortReply reports whether a message is too short to re-detect language
// from reliably (e.g. "yes", "ok", a bare hotel name).
func isShortReply(message string) bool {
	return len(strings.Fields(message)) <= 2
}
