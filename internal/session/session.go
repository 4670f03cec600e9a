// Package session persists per-session dialogue state: the pending
// obligation the assistant owes the user and the last-turn context used to
// reattach short follow-ups.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/guestdesk/concierge/internal/db"
)

// Pending is the session's outstanding clarifying question, if any.
// At most one obligation is pending at a time.
type Pending string

const (
	PendingNone                Pending = "none"
	PendingProperty            Pending = "awaiting_property"
	PendingSupportConfirmation Pending = "awaiting_support_confirmation"
)

// State is the durable per-session record.
type State struct {
	ID           string
	Pending      Pending
	LastIntent   string
	LastProperty string
	LastMessage  string
	LastAmenity  string
	LastLanguage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store reads and writes session state, one row per session id.
type Store struct {
	db *db.DB
}

// NewStore creates a session store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Get loads the state for a session id. Unknown ids return a fresh state
// with PendingNone; sessions are created lazily on first write.
func (s *Store) Get(ctx context.Context, sessionID string) (*State, error) {
	st := &State{ID: sessionID, Pending: PendingNone}
	err := s.db.QueryRowContext(ctx,
		`SELECT pending, last_intent, last_property, last_message, last_amenity, last_language, created_at, updated_at
		 FROM sessions WHERE id = ?`, sessionID,
	).Scan(&st.Pending, &st.LastIntent, &st.LastProperty, &st.LastMessage, &st.LastAmenity, &st.LastLanguage, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	return st, nil
}

// Put upserts the state for a session id.
func (s *Store) Put(ctx context.Context, st *State) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, pending, last_intent, last_property, last_message, last_amenity, last_language, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   pending = excluded.pending,
		   last_intent = excluded.last_intent,
		   last_property = excluded.last_property,
		   last_message = excluded.last_message,
		   last_amenity = excluded.last_amenity,
		   last_language = excluded.last_language,
		   updated_at = excluded.updated_at`,
		st.ID, st.Pending, st.LastIntent, st.LastProperty, st.LastMessage, st.LastAmenity, st.LastLanguage, now, now)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", st.ID, err)
	}
	return nil
}

// SetPending records a new pending obligation, overwriting any prior one.
func (st *State) SetPending(p Pending) {
	st.Pending = p
}

// ClearPending resolves the pending obligation and discards the stored
// question context.
func (st *State) ClearPending() {
	st.Pending = PendingNone
	st.LastMessage = ""
	st.LastAmenity = ""
}
