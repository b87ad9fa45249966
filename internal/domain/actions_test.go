package domain

import (
	"sort"
	"testing"
)

func TestRoleAllows(t *testing.T) {
	tests := []struct {
		role   string
		action string
		want   bool
	}{
		{RoleStudent, ActionReserve, true},
		{RoleStudent, ActionTrade, true},
		{RoleStudent, ActionReturn, true},
		{RoleStudent, ActionSuspend, false},
		{RoleStudent, ActionAssign, false},
		{RoleStudent, ActionRelease, false},
		{RoleAdmin, ActionAssign, true},
		{RoleAdmin, ActionSuspend, true},
		{RoleAdmin, ActionRelease, true},
		{RoleAdmin, ActionReserve, false},
		{RoleAdmin, ActionTrade, false},
		{"", ActionReserve, false},
		{"visitor", ActionReserve, false},
	}
	for _, tc := range tests {
		if got := RoleAllows(tc.role, tc.action); got != tc.want {
			t.Errorf("RoleAllows(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		action string
		from   string
		role   string
		want   bool
	}{
		{ActionReserve, StateAvailable, RoleStudent, true},
		{ActionReserve, StateInUse, RoleStudent, false},
		{ActionReserve, StateUnavailable, RoleStudent, false},
		{ActionReserve, StateAvailable, RoleAdmin, false},
		{ActionTrade, StateInUse, RoleStudent, true},
		{ActionTrade, StateAvailable, RoleStudent, false},
		{ActionReturn, StateInUse, RoleStudent, true},
		{ActionReturn, StateAvailable, RoleStudent, false},
		{ActionAssign, StateInUse, RoleAdmin, true},
		{ActionAssign, StateInUse, RoleStudent, false},
		{ActionAssign, StateAvailable, RoleAdmin, false},
		{ActionSuspend, StateAvailable, RoleAdmin, true},
		{ActionSuspend, StateInUse, RoleAdmin, true},
		{ActionSuspend, StateUnavailable, RoleAdmin, true},
		{ActionSuspend, StateAvailable, RoleStudent, false},
		{ActionRelease, StateUnavailable, RoleAdmin, true},
		{ActionRelease, StateAvailable, RoleAdmin, false},
	}
	for _, tc := range tests {
		if got := CanTransition(tc.action, tc.from, tc.role); got != tc.want {
			t.Errorf("CanTransition(%q, %q, %q) = %v, want %v", tc.action, tc.from, tc.role, got, tc.want)
		}
	}
}

func TestAllowedActions(t *testing.T) {
	tests := []struct {
		from string
		want []string
	}{
		{StateAvailable, []string{ActionReserve, ActionSuspend}},
		{StateInUse, []string{ActionAssign, ActionReturn, ActionSuspend, ActionTrade}},
		{StateUnavailable, []string{ActionRelease, ActionSuspend}},
		{"bogus", nil},
	}
	for _, tc := range tests {
		got := AllowedActions(tc.from)
		sort.Strings(got)
		if len(got) != len(tc.want) {
			t.Fatalf("AllowedActions(%q) = %v, want %v", tc.from, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("AllowedActions(%q) = %v, want %v", tc.from, got, tc.want)
				break
			}
		}
	}
}

func TestRoomHeldByUser(t *testing.T) {
	r := Room{State: StateAvailable, HolderName: HolderAdministration}
	if r.HeldByUser() {
		t.Fatal("room without holder should not be held by user")
	}
	uid := "u1"
	r = Room{State: StateInUse, HolderID: &uid, HolderName: "Ana"}
	if !r.HeldByUser() {
		t.Fatal("room with holder should be held by user")
	}
}

func TestNotificationIsRequest(t *testing.T) {
	for _, typ := range []string{TypeReservationRequest, TypeDevolutionRequest, TypeTradeRequest, TypeKeyRequest} {
		n := Notification{Type: typ}
		if !n.IsRequest() {
			t.Errorf("%s should be a request type", typ)
		}
	}
	for _, typ := range []string{TypeReservationApproved, TypeTradeRejected, TypeRequestExpired} {
		n := Notification{Type: typ}
		if n.IsRequest() {
			t.Errorf("%s should not be a request type", typ)
		}
	}
}
