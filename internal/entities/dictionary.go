// Package entities implements the static entity dictionary and the fuzzy
// property-name matcher. Venue names (restaurants, spas, bars) map to the
// properties that own them; property names tolerate typos via edit distance.
package entities

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Dictionary maps normalized venue names to their owning properties and
// knows the fixed set of property names. It is read-only after construction
// and safe for concurrent use.
type Dictionary struct {
	entities      map[string][]string // normalized entity -> property names
	properties    []string
	aliases       map[string]string // normalized alias -> property name
	maxDistance   int
	minSimilarity float64
}

// New builds a Dictionary. entityMap keys are venue names (any casing),
// values are owning property names. aliases maps alternate spellings to a
// property name. maxDistance is the absolute Levenshtein threshold for
// fuzzy property-name matching; minSimilarity (0 disables it) lets long
// names additionally match on relative similarity, so a ten-letter name
// tolerates more typos than the absolute cap allows.
func New(entityMap map[string][]string, properties []string, aliases map[string]string, maxDistance int, minSimilarity float64) *Dictionary {
	d := &Dictionary{
		entities:      make(map[string][]string, len(entityMap)),
		properties:    append([]string(nil), properties...),
		aliases:       make(map[string]string, len(aliases)),
		maxDistance:   maxDistance,
		minSimilarity: minSimilarity,
	}
	for name, props := range entityMap {
		d.entities[Normalize(name)] = append([]string(nil), props...)
	}
	for alias, prop := range aliases {
		d.aliases[Normalize(alias)] = prop
	}
	return d
}

// Properties returns the configured property names.
func (d *Dictionary) Properties() []string {
	return append([]string(nil), d.properties...)
}

// MatchEntities finds every dictionary venue mentioned in text and returns
// the distinct set of owning properties. An entity owned by several
// properties contributes all of them.
func (d *Dictionary) MatchEntities(text string) []string {
	norm := Normalize(text)
	seen := make(map[string]bool)
	var out []string
	for name, props := range d.entities {
		if !strings.Contains(norm, name) {
			continue
		}
		for _, p := range props {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out
}

// MatchEntityOwner resolves text to a single owning property via the venue
// dictionary. It returns "" when no venue matches or when the matches span
// more than one property.
func (d *Dictionary) MatchEntityOwner(text string) string {
	props := d.MatchEntities(text)
	if len(props) == 1 {
		return props[0]
	}
	return ""
}

// EntityNamed reports whether text names a specific dictionary venue, and
// returns the normalized venue name of the longest match. Used to restrict
// knowledge context to a single venue's slice.
func (d *Dictionary) EntityNamed(text string) (string, bool) {
	norm := Normalize(text)
	var best string
	for name := range d.entities {
		if strings.Contains(norm, name) && len(name) > len(best) {
			best = name
		}
	}
	return best, best != ""
}

// MatchPropertyName resolves text to a property name, tolerating typos.
// Tiers, first confident answer wins: exact alias/name containment, then
// per-token edit distance, then a word-boundary regex as a last resort.
func (d *Dictionary) MatchPropertyName(text string) string {
	norm := Normalize(text)
	if norm == "" {
		return ""
	}

	// Tier 1: exact containment of a property name or alias.
	for _, p := range d.properties {
		if strings.Contains(norm, Normalize(p)) {
			return p
		}
	}
	for alias, p := range d.aliases {
		if strings.Contains(norm, alias) {
			return p
		}
	}

	// Tier 2: per-token edit distance against each property name.
	for _, token := range strings.Fields(norm) {
		for _, p := range d.properties {
			name := Normalize(p)
			dist := levenshtein.ComputeDistance(token, name)
			if dist <= d.maxDistance {
				return p
			}
			if d.minSimilarity > 0 && similarity(dist, name) >= d.minSimilarity {
				return p
			}
		}
	}

	// Tier 3: word-boundary regex.
	for _, p := range d.properties {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(Normalize(p)) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(norm) {
			return p
		}
	}

	return ""
}

// IsPropertyNameOnly reports whether text is exactly one property name (or
// alias) and nothing else, after normalization.
func (d *Dictionary) IsPropertyNameOnly(text string) (string, bool) {
	norm := Normalize(text)
	for _, p := range d.properties {
		if norm == Normalize(p) {
			return p, true
		}
	}
	if p, ok := d.aliases[norm]; ok {
		return p, true
	}
	// Tolerate a typo in a bare property name.
	if len(strings.Fields(norm)) == 1 {
		for _, p := range d.properties {
			if levenshtein.ComputeDistance(norm, Normalize(p)) <= d.maxDistance {
				return p, true
			}
		}
	}
	return "", false
}

// similarity converts an edit distance against name into a 0..1 score
// relative to the name's rune length.
func similarity(dist int, name string) float64 {
	length := len([]rune(name))
	if length == 0 {
		return 0
	}
	return 1 - float64(dist)/float64(length)
}

// Normalize lowercases text, strips diacritics and punctuation, and
// collapses whitespace, so dictionary lookups are robust to casing and
// accents.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(stripDiacritic(r))
			prevSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// stripDiacritic folds common accented Latin letters to their base form.
// Cyrillic and other scripts pass through unchanged.
func stripDiacritic(r rune) rune {
	if d, ok := diacritics[r]; ok {
		return d
	}
	return r
}

var diacritics = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'ç': 'c', 'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i', 'ı': 'i',
	'ñ': 'n', 'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ý': 'y', 'ÿ': 'y', 'ş': 's', 'ğ': 'g',
}
