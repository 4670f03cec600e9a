// Package chain implements the cascading, multi-language knowledge answer
// pipeline. The question is translated once into a pivot language, then
// replayed against each language's stored context until one yields a
// grounded answer; the accepted answer is translated back to the user's
// language. Translation work stays bounded (at most N+1 calls) because
// contexts are never translated, only the question and the final answer.
package chain

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/guestdesk/concierge/internal/cache"
	"github.com/guestdesk/concierge/internal/entities"
	"github.com/guestdesk/concierge/internal/knowledge"
	"github.com/guestdesk/concierge/internal/lang"
	"github.com/guestdesk/concierge/internal/llm"
)

// HumanSupportMarker is the reserved Answer Generator output meaning the
// user wants a human. It is stripped from any returned text.
const HumanSupportMarker = "[[HUMAN_SUPPORT]]"

// KnowledgeSource supplies the stored record for a (property, language).
type KnowledgeSource interface {
	Get(ctx context.Context, property, language string) (*knowledge.Record, error)
}

// Answer is the outcome of one cascade run.
type Answer struct {
	Text           string
	Found          bool   // false means "no knowledge available", never fabricated text
	SourceLanguage string // language of the context that produced the answer
	WantsHuman     bool   // reserved marker seen in the generator output
	Cached         bool
	// GeneratorDown is set when every generation attempt failed, so the
	// caller can distinguish an outage from genuinely missing knowledge.
	GeneratorDown bool
}

// Options configures a Chain.
type Options struct {
	PivotLanguage   string
	FallbackChain   []string
	NoInfoPhrases   []string
	MinAnswerLength int
	CallTimeout     time.Duration
	Locations       map[string]*time.Location // property -> local time zone
}

// Chain runs the cascade.
type Chain struct {
	source     KnowledgeSource
	provider   llm.Provider
	translator lang.Translator
	dict       *entities.Dictionary
	cache      cache.AnswerCache
	opts       Options
	now        func() time.Time
}

// New creates a Chain. answerCache may be cache.Noop{}.
func New(source KnowledgeSource, provider llm.Provider, translator lang.Translator, dict *entities.Dictionary, answerCache cache.AnswerCache, opts Options) *Chain {
	if opts.MinAnswerLength <= 0 {
		opts.MinAnswerLength = 20
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 30 * time.Second
	}
	if answerCache == nil {
		answerCache = cache.Noop{}
	}
	return &Chain{
		source:     source,
		provider:   provider,
		translator: translator,
		dict:       dict,
		cache:      answerCache,
		opts:       opts,
		now:        time.Now,
	}
}

// Answer resolves question against property's knowledge, returning text in
// userLang. A Found=false result means no language in the cascade produced
// grounded information; the caller decides how to apologize.
func (c *Chain) Answer(ctx context.Context, question, property, userLang string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return &Answer{Found: false}, nil
	}

	cacheKey := entities.Normalize(property + " " + userLang + " " + question)
	if text, ok := c.cache.Get(ctx, cacheKey); ok {
		return &Answer{Text: text, Found: true, Cached: true}, nil
	}

	// Step 1: pivot the question. Already-pivot questions pass through
	// without a translator call.
	pivotQuestion := question
	if userLang != c.opts.PivotLanguage {
		translated, err := c.translate(ctx, question, c.opts.PivotLanguage)
		if err != nil {
			// Translator down: replay the question as-is and let the
			// generator cope, rather than failing the turn.
			log.Printf("warning: pivot translation failed, using original question: %v", err)
		} else {
			pivotQuestion = translated
		}
	}

	// Venue restriction: a question naming a known venue is answered only
	// from that venue's catalog/menu slice.
	venue, venueOnly := c.dict.EntityNamed(question)
	if !venueOnly {
		venue, venueOnly = c.dict.EntityNamed(pivotQuestion)
	}

	// Step 2: language search order.
	order := c.searchOrder(userLang)

	// Step 3: the cascade.
	attempts, failures := 0, 0
	for _, kl := range order {
		rec, err := c.source.Get(ctx, property, kl)
		if err != nil {
			log.Printf("warning: knowledge lookup %s/%s failed: %v", property, kl, err)
			continue
		}

		var contextText string
		if venueOnly {
			contextText = rec.VenueText(venue)
		} else {
			contextText = rec.ContextText(c.now(), c.opts.Locations[property])
		}
		if contextText == "" {
			continue
		}

		attempts++
		text, err := c.generate(ctx, pivotQuestion, contextText)
		if err != nil {
			// Generator timeout or failure counts as "no information" for
			// this language; the cascade proceeds.
			log.Printf("warning: answer generation in %s failed: %v", kl, err)
			failures++
			continue
		}

		if strings.Contains(text, HumanSupportMarker) {
			return &Answer{WantsHuman: true, SourceLanguage: kl}, nil
		}

		if !c.accept(text) {
			continue
		}

		// Step 4: back-translate when the user's language is not the pivot.
		if userLang != c.opts.PivotLanguage {
			translated, err := c.translate(ctx, text, userLang)
			if err != nil {
				log.Printf("warning: back-translation to %s failed, returning pivot-language answer: %v", userLang, err)
			} else {
				text = translated
			}
		}

		c.cache.Set(ctx, cacheKey, text)
		return &Answer{Text: text, Found: true, SourceLanguage: kl}, nil
	}

	// Step 5: nothing accepted anywhere.
	return &Answer{Found: false, GeneratorDown: attempts > 0 && failures == attempts}, nil
}

// searchOrder builds the language cascade: pivot, user language, then the
// configured fallback chain, de-duplicated preserving first occurrence.
func (c *Chain) searchOrder(userLang string) []string {
	var order []string
	seen := make(map[string]bool)
	add := func(l string) {
		if l != "" && !seen[l] {
			seen[l] = true
			order = append(order, l)
		}
	}
	add(c.opts.PivotLanguage)
	add(userLang)
	for _, l := range c.opts.FallbackChain {
		add(l)
	}
	return order
}

// accept screens generator output: long enough and not a "no information"
// phrasing in any configured language.
func (c *Chain) accept(text string) bool {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < c.opts.MinAnswerLength {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range c.opts.NoInfoPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return false
		}
	}
	return true
}

// generate asks the Answer Generator for a pivot-language answer grounded
// strictly in contextText.
func (c *Chain) generate(ctx context.Context, question, contextText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()

	system := fmt.Sprintf(`You are a hotel information assistant. Answer the guest's question using ONLY the hotel information below. Never use outside knowledge. If the information does not contain the answer, reply exactly: "I don't have that information." If the guest asks for a human or live support, reply exactly: %s

Hotel information:
%s`, HumanSupportMarker, contextText)

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: question},
		},
		MaxTokens:   512,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

func (c *Chain) translate(ctx context.Context, text, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()
	return c.translator.Translate(ctx, text, target)
}
