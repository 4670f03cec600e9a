// Package knowledge stores and retrieves the per-property, per-language
// information text the assistant grounds its answers in.
package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/guestdesk/concierge/internal/db"
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Category identifies a kind of knowledge record.
type Category string

const (
	CategoryGeneral Category = "general"
	CategoryDaily   Category = "daily"
	CategoryAmenity Category = "amenity"
	CategoryMenu    Category = "menu"
)

// DailyEntry is a time-scoped record: activity programs, daily schedules.
type DailyEntry struct {
	Day     string // YYYY-MM-DD, property-local calendar day
	Content string
}

// Record is the stored knowledge for one (property, language) pair. Any
// field may be empty; callers treat empty as "try another language", not
// as "no knowledge exists".
type Record struct {
	Property       string
	Language       string
	General        string
	Daily          []DailyEntry
	AmenityCatalog map[string]string // normalized venue name -> text
	Menu           map[string]string // normalized restaurant name -> text
}

// Empty reports whether the record holds no text in any category.
func (r *Record) Empty() bool {
	return r.General == "" && len(r.Daily) == 0 && len(r.AmenityCatalog) == 0 && len(r.Menu) == 0
}

// ContextText flattens the record into one grounding blob. Daily entries
// are filtered to today/yesterday in the given location; stale schedules
// are worse than none and are excluded even when nothing newer exists.
func (r *Record) ContextText(now time.Time, loc *time.Location) string {
	var b strings.Builder
	if r.General != "" {
		b.WriteString(r.General)
		b.WriteString("\n\n")
	}
	for _, d := range r.Daily {
		if !withinDailyWindow(d.Day, now, loc) {
			continue
		}
		fmt.Fprintf(&b, "Daily information for %s:\n%s\n\n", d.Day, d.Content)
	}
	for _, name := range sortedKeys(r.AmenityCatalog) {
		fmt.Fprintf(&b, "About %s:\n%s\n\n", name, r.AmenityCatalog[name])
	}
	for _, name := range sortedKeys(r.Menu) {
		fmt.Fprintf(&b, "Menu of %s:\n%s\n\n", name, r.Menu[name])
	}
	return strings.TrimSpace(b.String())
}

// VenueText returns only the named venue's amenity and menu slices,
// excluding general and daily text so venues sharing a property cannot
// cross-contaminate each other's answers.
func (r *Record) VenueText(venue string) string {
	var b strings.Builder
	if text, ok := r.AmenityCatalog[venue]; ok {
		fmt.Fprintf(&b, "About %s:\n%s\n\n", venue, text)
	}
	if text, ok := r.Menu[venue]; ok {
		fmt.Fprintf(&b, "Menu of %s:\n%s\n\n", venue, text)
	}
	return strings.TrimSpace(b.String())
}

// withinDailyWindow reports whether day (YYYY-MM-DD) is today or yesterday
// in loc at the query time.
func withinDailyWindow(day string, now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := local.Format("2006-01-02")
	yesterday := local.AddDate(0, 0, -1).Format("2006-01-02")
	return day == today || day == yesterday
}

// Store persists knowledge records in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a knowledge store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Get assembles the Record for (property, language). A pair with no rows
// yields an empty, non-nil Record.
func (s *Store) Get(ctx context.Context, property, language string) (*Record, error) {
	rec := &Record{
		Property:       property,
		Language:       language,
		AmenityCatalog: make(map[string]string),
		Menu:           make(map[string]string),
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, name, content, day FROM knowledge
		 WHERE property = ? AND language = ?`, property, language)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge for %s/%s: %w", property, language, err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, name, content, day string
		if err := rows.Scan(&category, &name, &content, &day); err != nil {
			return nil, fmt.Errorf("scanning knowledge row: %w", err)
		}
		switch Category(category) {
		case CategoryGeneral:
			if rec.General != "" {
				rec.General += "\n\n"
			}
			rec.General += content
		case CategoryDaily:
			rec.Daily = append(rec.Daily, DailyEntry{Day: day, Content: content})
		case CategoryAmenity:
			rec.AmenityCatalog[name] = content
		case CategoryMenu:
			rec.Menu[name] = content
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating knowledge rows: %w", err)
	}

	return rec, nil
}

// Put upserts one knowledge row. name is the venue for amenity/menu rows;
// day is the calendar day for daily rows. Both default to "".
func (s *Store) Put(ctx context.Context, property, language string, category Category, name, day, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge (property, language, category, name, content, day, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(property, language, category, name, day) DO UPDATE SET
		   content = excluded.content,
		   updated_at = excluded.updated_at`,
		property, language, string(category), name, content, day, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving knowledge %s/%s/%s: %w", property, language, category, err)
	}
	return nil
}

// Languages returns the languages that have any knowledge rows for a
// property, useful for admin diagnostics.
func (s *Store) Languages(ctx context.Context, property string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT language FROM knowledge WHERE property = ? ORDER BY language`, property)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge languages: %w", err)
	}
	defer rows.Close()

	var langs []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}
