package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lfarias/go-keys-backend/internal/domain"
)

func TestRoomCreateListGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db, nil)
	ctx := context.Background()

	r, err := svc.Create(ctx, RoomInput{Name: "Lab 204", Description: "electronics lab", Capacity: 24})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.State != domain.StateAvailable || r.HolderName != domain.HolderAdministration {
		t.Fatalf("new room = %+v", r)
	}

	// Available rooms offer reserve and suspend.
	want := map[string]bool{domain.ActionReserve: true, domain.ActionSuspend: true}
	if len(r.AllowedActions) != len(want) {
		t.Fatalf("allowed = %v", r.AllowedActions)
	}
	for _, a := range r.AllowedActions {
		if !want[a] {
			t.Fatalf("unexpected allowed action %q", a)
		}
	}

	if _, err := svc.Create(ctx, RoomInput{Name: "Lab 204"}); !errors.Is(err, ErrRoomNameTaken) {
		t.Fatalf("duplicate name err = %v", err)
	}

	if _, err := svc.Create(ctx, RoomInput{Name: "Aud 1"}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	all, err := svc.List(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("list = %d rooms, err %v", len(all), err)
	}
	// Ordered by name.
	if all[0].Name != "Aud 1" {
		t.Fatalf("order = %q first", all[0].Name)
	}

	got, err := svc.Get(ctx, r.ID)
	if err != nil || got.Name != "Lab 204" {
		t.Fatalf("get = %+v, err %v", got, err)
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing get err = %v", err)
	}
}

func TestRoomUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db, nil)
	ctx := context.Background()

	a, _ := svc.Create(ctx, RoomInput{Name: "Lab 204"})
	b, _ := svc.Create(ctx, RoomInput{Name: "Aud 1"})

	got, err := svc.Update(ctx, a.ID, RoomInput{Name: "Lab 205", Capacity: 30})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Lab 205" || got.Capacity != 30 {
		t.Fatalf("updated = %+v", got)
	}

	// Renaming onto another room's name fails; keeping your own name is fine.
	if _, err := svc.Update(ctx, b.ID, RoomInput{Name: "Lab 205"}); !errors.Is(err, ErrRoomNameTaken) {
		t.Fatalf("rename collision err = %v", err)
	}
	if _, err := svc.Update(ctx, b.ID, RoomInput{Name: "Aud 1", Capacity: 80}); err != nil {
		t.Fatalf("self rename: %v", err)
	}

	if _, err := svc.Update(ctx, "missing", RoomInput{Name: "X"}); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing update err = %v", err)
	}
}

func TestRoomListPage(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db, nil)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		if _, err := svc.Create(ctx, RoomInput{Name: name}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	page, err := svc.ListPage(ctx, 2, 2)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Items[0].Name != "C" || page.Items[1].Name != "D" {
		t.Fatalf("page items = %q, %q", page.Items[0].Name, page.Items[1].Name)
	}

	// Out-of-range values are clamped to sane defaults.
	page, err = svc.ListPage(ctx, 0, -1)
	if err != nil || page.Page != 1 || page.PageSize != 20 {
		t.Fatalf("clamped page = %+v, err %v", page, err)
	}
}
