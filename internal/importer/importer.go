// Package importer loads a directory tree of markdown knowledge files into
// the knowledge store. The layout is property/language/category:
//
//	Belvil/en/general.md
//	Belvil/en/daily/2026-08-31.md
//	Belvil/en/amenity/pasha restaurant.md
//	Belvil/en/menu/pasha restaurant.md
//
// Markdown formatting is flattened to plain text before storage, so the
// answer generator sees clean prose instead of markup.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/guestdesk/concierge/internal/entities"
	"github.com/guestdesk/concierge/internal/knowledge"
	"github.com/guestdesk/concierge/internal/progress"
)

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Summary reports what one import run did.
type Summary struct {
	Imported int
	Skipped  []string // relative paths that did not match the layout
}

// Importer scans a filesystem for knowledge files and upserts them.
type Importer struct {
	store      *knowledge.Store
	properties map[string]string // normalized name -> canonical name
	languages  map[string]bool
	reporter   progress.Reporter
	md         goldmark.Markdown
}

// New creates an Importer restricted to the given properties and
// languages. reporter may be nil for silent operation.
func New(store *knowledge.Store, properties, languages []string, reporter progress.Reporter) *Importer {
	if reporter == nil {
		reporter = progress.SilentReporter{}
	}
	props := make(map[string]string, len(properties))
	for _, p := range properties {
		props[entities.Normalize(p)] = p
	}
	langs := make(map[string]bool, len(languages))
	for _, l := range languages {
		langs[strings.ToLower(l)] = true
	}
	return &Importer{
		store:      store,
		properties: props,
		languages:  langs,
		reporter:   reporter,
		md:         goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Run imports every matching markdown file under fsys. Files that do not
// fit the layout are skipped and reported, not fatal.
func (im *Importer) Run(ctx context.Context, fsys fs.FS) (*Summary, error) {
	files, err := doublestar.Glob(fsys, "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("scanning knowledge files: %w", err)
	}

	sum := &Summary{}
	im.reporter.Start(len(files))
	defer im.reporter.Finish()

	for i, file := range files {
		im.reporter.Update(i+1, file)

		property, language, category, name, day, ok := im.classify(file)
		if !ok {
			sum.Skipped = append(sum.Skipped, file)
			continue
		}

		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return sum, fmt.Errorf("reading %s: %w", file, err)
		}
		content := im.flatten(raw)
		if content == "" {
			sum.Skipped = append(sum.Skipped, file)
			continue
		}

		if err := im.store.Put(ctx, property, language, category, name, day, content); err != nil {
			return sum, fmt.Errorf("storing %s: %w", file, err)
		}
		sum.Imported++
	}

	return sum, nil
}

// classify maps a relative file path onto a knowledge row.
func (im *Importer) classify(file string) (property, language string, category knowledge.Category, name, day string, ok bool) {
	parts := strings.Split(path.Clean(file), "/")
	if len(parts) < 3 {
		return "", "", "", "", "", false
	}

	property, found := im.properties[entities.Normalize(parts[0])]
	if !found {
		return "", "", "", "", "", false
	}
	language = strings.ToLower(parts[1])
	if !im.languages[language] {
		return "", "", "", "", "", false
	}

	stem := strings.TrimSuffix(parts[len(parts)-1], ".md")
	switch {
	case len(parts) == 3 && stem == "general":
		return property, language, knowledge.CategoryGeneral, "", "", true
	case len(parts) == 4 && parts[2] == "daily" && dayPattern.MatchString(stem):
		return property, language, knowledge.CategoryDaily, "", stem, true
	case len(parts) == 4 && parts[2] == "amenity":
		return property, language, knowledge.CategoryAmenity, entities.Normalize(stem), "", true
	case len(parts) == 4 && parts[2] == "menu":
		return property, language, knowledge.CategoryMenu, entities.Normalize(stem), "", true
	}
	return "", "", "", "", "", false
}

// flatten converts markdown to plain text by walking the parsed AST and
// keeping only the text content, with blank lines between blocks.
func (im *Importer) flatten(src []byte) string {
	doc := im.md.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.Blockquote:
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}
