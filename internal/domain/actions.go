// Static permission and state-transition tables for key workflows.
//
// Two questions are answered here, and only here:
//   - may this role ever perform this action? (permission table)
//   - is this action legal from the room's current state? (transition table)
//
// The workflow engine consults both before touching any state; violating the
// first is a permission failure, violating the second a business-rule failure.
package domain

// Actions a caller can invoke on a room.
const (
	ActionReserve = "reserve"
	ActionTrade   = "trade"
	ActionReturn  = "return"
	ActionAssign  = "assign"
	ActionSuspend = "suspend"
	ActionRelease = "release"
)

// User roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// TransitionRule describes one legal state transition: performing Action on a
// room in state From, by a caller holding one of AllowedRoles, moves the room
// toward state To once the workflow completes.
type TransitionRule struct {
	From         string
	To           string
	Action       string
	AllowedRoles []string
}

// permissions maps each role to the actions it may ever perform.
var permissions = map[string][]string{
	RoleStudent: {ActionReserve, ActionTrade, ActionReturn},
	RoleAdmin:   {ActionAssign, ActionSuspend, ActionRelease},
}

// transitions is the authoritative rule set. Assign is modeled from InUse:
// reclaiming a key only makes sense while a user holds it, and the confirmed
// outcome hands the room back to the administration.
var transitions = []TransitionRule{
	{From: StateAvailable, To: StateInUse, Action: ActionReserve, AllowedRoles: []string{RoleStudent}},
	{From: StateInUse, To: StateInUse, Action: ActionTrade, AllowedRoles: []string{RoleStudent}},
	{From: StateInUse, To: StateAvailable, Action: ActionReturn, AllowedRoles: []string{RoleStudent}},
	{From: StateInUse, To: StateAvailable, Action: ActionAssign, AllowedRoles: []string{RoleAdmin}},
	{From: StateAvailable, To: StateUnavailable, Action: ActionSuspend, AllowedRoles: []string{RoleAdmin}},
	{From: StateInUse, To: StateUnavailable, Action: ActionSuspend, AllowedRoles: []string{RoleAdmin}},
	{From: StateUnavailable, To: StateUnavailable, Action: ActionSuspend, AllowedRoles: []string{RoleAdmin}},
	{From: StateUnavailable, To: StateAvailable, Action: ActionRelease, AllowedRoles: []string{RoleAdmin}},
}

// RoleAllows reports whether role may ever perform action, regardless of any
// room state.
func RoleAllows(role, action string) bool {
	for _, a := range permissions[role] {
		if a == action {
			return true
		}
	}
	return false
}

// CanTransition reports whether some transition rule permits action from the
// given room state for the given role.
func CanTransition(action, from, role string) bool {
	for _, r := range transitions {
		if r.Action != action || r.From != from {
			continue
		}
		for _, allowed := range r.AllowedRoles {
			if allowed == role {
				return true
			}
		}
	}
	return false
}

// AllowedActions returns the set of actions with at least one rule matching
// the given room state, independent of role. Used for UI hinting.
func AllowedActions(from string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range transitions {
		if r.From == from && !seen[r.Action] {
			seen[r.Action] = true
			out = append(out, r.Action)
		}
	}
	return out
}
