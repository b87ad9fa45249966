package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/lfarias/go-keys-backend/internal/domain"
)

func TestCreateAndLookupUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "Ana Souza", "ana@campus.edu", "hash", domain.RoleStudent, "Informatics", 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := GetUser(ctx, db, u.ID)
	if err != nil || got.Email != "ana@campus.edu" || got.Role != domain.RoleStudent {
		t.Fatalf("get: %+v err %v", got, err)
	}

	got, err = GetUserByEmail(ctx, db, "ana@campus.edu")
	if err != nil || got.ID != u.ID {
		t.Fatalf("by email: %+v err %v", got, err)
	}

	if _, err := GetUserByEmail(ctx, db, "nobody@campus.edu"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, db, "Ana", "ana@campus.edu", "h", domain.RoleStudent, "", 0); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := CreateUser(ctx, db, "Other Ana", "ana@campus.edu", "h", domain.RoleStudent, "", 0); err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestListAdmins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, db, "Ana", "ana@campus.edu", "h", domain.RoleStudent, "", 0); err != nil {
		t.Fatalf("seed student: %v", err)
	}
	for _, a := range []string{"sec1@campus.edu", "sec2@campus.edu"} {
		if _, err := CreateUser(ctx, db, "Sec", a, "h", domain.RoleAdmin, "", 0); err != nil {
			t.Fatalf("seed admin: %v", err)
		}
	}

	admins, err := ListAdmins(ctx, db)
	if err != nil || len(admins) != 2 {
		t.Fatalf("admins: %d err %v", len(admins), err)
	}
	for _, a := range admins {
		if a.Role != domain.RoleAdmin {
			t.Fatalf("non-admin in result: %+v", a)
		}
	}
}
