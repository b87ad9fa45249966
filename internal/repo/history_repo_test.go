package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestOpenAndCloseHistory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	h, err := OpenHistory(ctx, db, "u1", "r1", now)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	active, err := ActiveHistoryForRoom(ctx, db, "r1")
	if err != nil || active == nil || active.ID != h.ID {
		t.Fatalf("active for room = %+v, err %v", active, err)
	}
	active, err = ActiveHistoryForUser(ctx, db, "u1", "r1")
	if err != nil || active == nil {
		t.Fatalf("active for user = %+v, err %v", active, err)
	}
	if other, _ := ActiveHistoryForUser(ctx, db, "u2", "r1"); other != nil {
		t.Fatalf("u2 should not hold r1: %+v", other)
	}

	if err := CloseHistory(ctx, db, h.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if active, _ = ActiveHistoryForRoom(ctx, db, "r1"); active != nil {
		t.Fatalf("room should have no active record: %+v", active)
	}

	// Closing twice fails: the conditional update matches no row.
	if err := CloseHistory(ctx, db, h.ID, now.Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double close, got %v", err)
	}
}

func TestListHistory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-3 * time.Hour)

	for i, u := range []string{"u1", "u2", "u1"} {
		h, err := OpenHistory(ctx, db, u, "r1", base.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		if i < 2 {
			if err := CloseHistory(ctx, db, h.ID, base.Add(time.Duration(i)*time.Hour+30*time.Minute)); err != nil {
				t.Fatalf("close: %v", err)
			}
		}
	}

	byRoom, err := ListHistoryByRoom(ctx, db, "r1")
	if err != nil || len(byRoom) != 3 {
		t.Fatalf("by room: %d err %v", len(byRoom), err)
	}
	if !byRoom[0].StartedAt.After(byRoom[2].StartedAt) {
		t.Fatal("expected newest-first ordering")
	}

	byUser, err := ListHistoryByUser(ctx, db, "u1")
	if err != nil || len(byUser) != 2 {
		t.Fatalf("by user: %d err %v", len(byUser), err)
	}
}
