// Package resolver rewrites pronouns and referring phrases ("that one",
// "the one you mentioned") to the most recently mentioned venue name, so
// downstream entity and property detection sees the explicit name.
package resolver

import (
	"regexp"
	"sort"
	"strings"

	"github.com/guestdesk/concierge/internal/chat"
)

// entityPattern matches a proper-noun-like phrase ending in a venue-type
// word, e.g. "Pasha Restaurant" or "Gaia Spa & Wellness".
var entityPattern = regexp.MustCompile(
	`((?:[A-ZÀ-ÞĞİŞ][\p{L}'&-]*\s+)+(?:Restaurant|Bar|Spa|Cafe|Café|Lounge|Club|Pool|Beach))`)

// Resolver substitutes referring words with recently mentioned entities.
// It is a purely textual rewrite and runs before any detection.
type Resolver struct {
	referring []string
}

// New creates a Resolver from the configured referring words, longest first
// so "that one" wins over "that".
func New(referringWords []string) *Resolver {
	words := append([]string(nil), referringWords...)
	sort.Slice(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })
	return &Resolver{referring: words}
}

// Resolve returns message with every referring word replaced by the last
// entity name mentioned in history. It is a no-op when the message contains
// no referring word or history mentions no entity.
func (r *Resolver) Resolve(message string, history chat.History) string {
	if len(r.referring) == 0 || len(history) == 0 {
		return message
	}

	lower := strings.ToLower(message)
	found := false
	for _, w := range r.referring {
		if containsWord(lower, w) {
			found = true
			break
		}
	}
	if !found {
		return message
	}

	entity := lastMentionedEntity(history)
	if entity == "" {
		return message
	}

	out := message
	for _, w := range r.referring {
		out = replaceWord(out, w, entity)
	}
	return out
}

// lastMentionedEntity scans history newest-first for an entity-name match.
func lastMentionedEntity(history chat.History) string {
	for i := len(history) - 1; i >= 0; i-- {
		matches := entityPattern.FindAllString(history[i].Text, -1)
		if len(matches) > 0 {
			return strings.TrimSpace(matches[len(matches)-1])
		}
	}
	return ""
}

// containsWord reports whether phrase occurs in text on word boundaries.
func containsWord(text, phrase string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(phrase)) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// replaceWord substitutes every boundary-delimited, case-insensitive
// occurrence of phrase in text with repl.
func replaceWord(text, phrase, repl string) string {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, repl)
}
