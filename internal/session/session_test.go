package session

import (
	"context"
	"testing"

	"github.com/guestdesk/concierge/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestGetUnknownSessionReturnsFreshState(t *testing.T) {
	store := setupStore(t)
	st, err := store.Get(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if st.ID != "s-1" {
		t.Errorf("id = %q, want s-1", st.ID)
	}
	if st.Pending != PendingNone {
		t.Errorf("pending = %q, want none", st.Pending)
	}
}

func TestPutAndGetRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	st := &State{
		ID:           "s-2",
		Pending:      PendingProperty,
		LastIntent:   "question",
		LastProperty: "Belvil",
		LastMessage:  "what time does the spa open?",
		LastAmenity:  "spa",
		LastLanguage: "en",
	}
	if err := store.Put(ctx, st); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "s-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Pending != PendingProperty {
		t.Errorf("pending = %q, want %q", got.Pending, PendingProperty)
	}
	if got.LastMessage != st.LastMessage {
		t.Errorf("last_message = %q, want %q", got.LastMessage, st.LastMessage)
	}
	if got.LastAmenity != "spa" {
		t.Errorf("last_amenity = %q, want spa", got.LastAmenity)
	}
}

func TestPutOverwrites(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	st := &State{ID: "s-3", Pending: PendingProperty, LastMessage: "spa hours?"}
	if err := store.Put(ctx, st); err != nil {
		t.Fatalf("Put: %v", err)
	}

	st.SetPending(PendingSupportConfirmation)
	st.LastIntent = "support_request"
	if err := store.Put(ctx, st); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := store.Get(ctx, "s-3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Pending != PendingSupportConfirmation {
		t.Errorf("pending = %q, want %q", got.Pending, PendingSupportConfirmation)
	}
	if got.LastIntent != "support_request" {
		t.Errorf("last_intent = %q", got.LastIntent)
	}
}

func TestClearPending(t *testing.T) {
	st := &State{ID: "s-4", Pending: PendingProperty, LastMessage: "spa?", LastAmenity: "spa"}
	st.ClearPending()
	if st.Pending != PendingNone || st.LastMessage != "" || st.LastAmenity != "" {
		t.Errorf("ClearPending left %+v", st)
	}
}
