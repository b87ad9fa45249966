package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lfarias/go-keys-backend/internal/domain"
)

func TestHistoryByRoom(t *testing.T) {
	db := newTestDB(t)
	svc := NewHistoryService(db)
	actions := NewActionService(db, nil, nil)
	ctx := context.Background()

	ana := seedUser(t, db, "Ana", domain.RoleStudent)
	admin := seedUser(t, db, "Admin", domain.RoleAdmin)
	room := seedRoom(t, db, "Lab 204")

	// One full occupancy cycle: reserve, approve, return, confirm.
	if _, err := actions.Reserve(ctx, ana, room.ID); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	req := pendingFor(t, db, admin.ID)[0]
	if _, err := actions.ResolveReservation(ctx, admin, req.ID, true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := actions.Return(ctx, ana, room.ID); err != nil {
		t.Fatalf("return: %v", err)
	}
	req = pendingFor(t, db, admin.ID)[0]
	if _, err := actions.ResolveDevolution(ctx, admin, req.ID, true); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	entries, err := svc.ByRoom(ctx, admin, room.ID)
	if err != nil {
		t.Fatalf("by room: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.UserName != "Ana" || e.RoomName != "Lab 204" {
		t.Fatalf("entry names = %q/%q", e.UserName, e.RoomName)
	}
	if e.ReturnedAt == nil {
		t.Fatal("closed occupancy missing ReturnedAt")
	}

	// Room history is admin-only.
	if _, err := svc.ByRoom(ctx, ana, room.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("student by-room err = %v", err)
	}
	if _, err := svc.ByRoom(ctx, admin, "missing"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing room err = %v", err)
	}
}

func TestHistoryByUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewHistoryService(db)
	ctx := context.Background()

	ana := seedUser(t, db, "Ana", domain.RoleStudent)
	bruno := seedUser(t, db, "Bruno", domain.RoleStudent)
	admin := seedUser(t, db, "Admin", domain.RoleAdmin)
	roomA := seedRoom(t, db, "Lab 204")
	roomB := seedRoom(t, db, "Aud 1")

	putInUse(t, db, roomA.ID, ana)
	putInUse(t, db, roomB.ID, ana)

	entries, err := svc.ByUser(ctx, ana, ana.ID)
	if err != nil || len(entries) != 2 {
		t.Fatalf("own history = %d, err %v", len(entries), err)
	}
	for _, e := range entries {
		if e.UserName != "Ana" || e.RoomName == "" {
			t.Fatalf("entry = %+v", e)
		}
	}

	// Admins may read anyone's; students only their own.
	if _, err := svc.ByUser(ctx, admin, ana.ID); err != nil {
		t.Fatalf("admin by-user: %v", err)
	}
	if _, err := svc.ByUser(ctx, bruno, ana.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign by-user err = %v", err)
	}
	if _, err := svc.ByUser(ctx, admin, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
}
