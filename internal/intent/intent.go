// Package intent classifies a turn as small talk, an information question,
// a live-support request, or a bare hotel name.
package intent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/guestdesk/concierge/internal/chat"
	"github.com/guestdesk/concierge/internal/entities"
	"github.com/guestdesk/concierge/internal/llm"
)

// Intent is the classified purpose of a turn.
type Intent string

const (
	IntentSmallTalk      Intent = "smalltalk"
	IntentQuestion       Intent = "question"
	IntentSupportRequest Intent = "support_request"
	IntentPropertyName   Intent = "property_name"
)

// Classifier decides the intent of a message. Support detection uses the
// strict per-language keyword lists; question detection delegates to the
// model with a local interrogative-token fallback.
type Classifier struct {
	dict            *entities.Dictionary
	provider        llm.Provider
	supportKeywords map[string][]string
	affirmatives    map[string][]string
	interrogatives  map[string][]string
	locationPhrases []string
}

// New creates a Classifier from the configured dictionaries.
func New(dict *entities.Dictionary, provider llm.Provider, supportKeywords, affirmatives, interrogatives map[string][]string, locationPhrases []string) *Classifier {
	return &Classifier{
		dict:            dict,
		provider:        provider,
		supportKeywords: supportKeywords,
		affirmatives:    affirmatives,
		interrogatives:  interrogatives,
		locationPhrases: locationPhrases,
	}
}

// Classify returns the intent of message in the given language.
func (c *Classifier) Classify(ctx context.Context, message, language string, history chat.History) Intent {
	if c.IsSupportRequest(message) {
		return IntentSupportRequest
	}
	if _, ok := c.dict.IsPropertyNameOnly(message); ok {
		return IntentPropertyName
	}
	if c.isQuestion(ctx, message, language, history) {
		return IntentQuestion
	}
	return IntentSmallTalk
}

// IsSupportRequest reports whether message contains a support keyword in
// any configured language. The lists are deliberately strict; broad
// phrasing must not trigger a handoff.
func (c *Classifier) IsSupportRequest(message string) bool {
	norm := entities.Normalize(message)
	for _, phrases := range c.supportKeywords {
		for _, p := range phrases {
			if strings.Contains(norm, entities.Normalize(p)) {
				return true
			}
		}
	}
	return false
}

// IsAffirmative reports whether message is a short affirmative reply in
// any supported language ("yes", "evet", "ja", "да").
func (c *Classifier) IsAffirmative(message string) bool {
	norm := entities.Normalize(message)
	if len(strings.Fields(norm)) > 2 {
		return false
	}
	for _, words := range c.affirmatives {
		for _, w := range words {
			if norm == entities.Normalize(w) {
				return true
			}
		}
	}
	return false
}

// IsLocationQuestion reports whether message asks about nearby places
// outside the property ("nearest pharmacy"), which the engine defers to
// the maps collaborator instead of the knowledge chain.
func (c *Classifier) IsLocationQuestion(message string) bool {
	norm := entities.Normalize(message)
	for _, p := range c.locationPhrases {
		if strings.Contains(norm, entities.Normalize(p)) {
			return true
		}
	}
	return false
}

// isQuestion asks the model whether the message seeks information, falling
// back to a question-mark / interrogative-token check when the model is
// unavailable.
func (c *Classifier) isQuestion(ctx context.Context, message, language string, history chat.History) bool {
	if c.provider != nil {
		prompt := fmt.Sprintf(
			"Is the following guest message a genuine information-seeking message about a hotel stay (opening hours, facilities, food, activities, services)? Message: %q", message)
		isQ, err := llm.ClassifyYesNo(ctx, c.provider, prompt)
		if err == nil {
			return isQ
		}
		log.Printf("warning: question classification unavailable, using local fallback: %v", err)
	}
	return c.localQuestionCheck(message, language)
}

func (c *Classifier) localQuestionCheck(message, language string) bool {
	if strings.Contains(message, "?") {
		return true
	}
	norm := entities.Normalize(message)
	tokens := strings.Fields(norm)
	for _, t := range tokens {
		for _, q := range c.interrogatives[language] {
			if t == entities.Normalize(q) {
				return true
			}
		}
	}
	return false
}
