// Package questionlog records one row per handled turn for the external
// analytics pipeline. This is a write-only path; grouping and embedding of
// logged questions happen elsewhere.
package questionlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guestdesk/concierge/internal/db"
)

// Entry is one logged turn.
type Entry struct {
	ID             string
	SessionID      string
	Message        string
	Property       string
	Language       string
	IsQuestion     bool
	Category       string // e.g. general, daily, amenity, menu, support
	Facility       string // sub-facility tag, e.g. a venue name
	Answered       bool
	AnswerLanguage string // language of the knowledge that answered
	CreatedAt      time.Time
}

// Store appends entries to the question log.
type Store struct {
	db *db.DB
}

// NewStore creates a question log store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Append writes one entry. An empty ID is assigned.
func (s *Store) Append(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO question_log (id, session_id, message, property, language, is_question, category, facility, answered, answer_language, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Message, e.Property, e.Language, e.IsQuestion, e.Category, e.Facility, e.Answered, e.AnswerLanguage, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending question log entry: %w", err)
	}
	return nil
}

// CountBySession returns how many entries a session has logged, used by
// admin diagnostics.
func (s *Store) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM question_log WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting question log entries: %w", err)
	}
	return n, nil
}
