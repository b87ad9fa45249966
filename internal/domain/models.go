// Package domain defines the persistence models for rooms, users,
// notifications, and occupancy history, plus the static permission and
// state-transition tables that govern key workflows. Types are mapped with
// GORM and form the core data layer of the key-management application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Room states. A room is either available at the administration desk, in use
// by a student who holds its key, or administratively suspended.
const (
	StateAvailable   = "Available"
	StateInUse       = "InUse"
	StateUnavailable = "Unavailable"
)

// HolderAdministration is the display name shown while no user holds the key.
const HolderAdministration = "Administration"

// Room represents a reservable physical resource (a classroom or locker key).
//
// Invariant: State == InUse iff HolderID is non-nil. In the Available and
// Unavailable states the key sits with the administration and HolderID is nil.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: unique human-readable identifier (e.g. "Lab 204").
//   - State: one of Available, InUse, Unavailable (enforced by DB constraint).
//   - HolderID / HolderName: current key holder; nil/"Administration" while
//     nobody holds it. HolderName is denormalized for display.
//   - Note: free-text administration note (e.g. suspension reason).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (rooms with history are never hard-deleted).
type Room struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name"        gorm:"type:varchar(120);not null;uniqueIndex:ux_room_name"`
	State       string         `json:"state"       gorm:"type:varchar(16);not null;default:'Available';check:state IN ('Available','InUse','Unavailable')"`
	HolderID    *string        `json:"holder_id"   gorm:"type:char(36);index"`
	HolderName  string         `json:"holder_name" gorm:"type:varchar(120);not null;default:'Administration'"`
	Description string         `json:"description" gorm:"type:text"`
	Capacity    int            `json:"capacity"`
	Equipment   string         `json:"equipment"   gorm:"type:text"`
	Note        string         `json:"note"        gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Room.
func (Room) TableName() string { return "rooms" }

// HeldByUser reports whether a real user currently holds the room key
// (as opposed to the administration sentinel).
func (r *Room) HeldByUser() bool { return r.HolderID != nil }

// User represents an actor with exactly one role from a closed set.
//
// The role is stored as an explicit enum rather than being derived from the
// presence of a sub-profile relation; Course and Period are only meaningful
// for students.
type User struct {
	ID           string         `json:"id"     gorm:"type:char(36);primaryKey"`
	Name         string         `json:"name"   gorm:"type:varchar(120);not null"`
	Email        string         `json:"email"  gorm:"type:varchar(190);not null;uniqueIndex:ux_user_email"`
	PasswordHash string         `json:"-"      gorm:"type:varchar(100);not null"`
	Role         string         `json:"role"   gorm:"type:varchar(16);not null;check:role IN ('student','admin')"`
	Course       string         `json:"course,omitempty" gorm:"type:varchar(120)"`
	Period       int            `json:"period,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"      gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Notification types. The four *_request types carry a pending decision
// addressed to a specific user; the remaining types are informational
// outcomes delivered back to the proposer (or requesting admin).
const (
	TypeReservationRequest = "reservation_request"
	TypeDevolutionRequest  = "devolution_request"
	TypeTradeRequest       = "trade_request"
	TypeKeyRequest         = "request_key"

	TypeReservationApproved = "reservation_approved"
	TypeReservationRejected = "reservation_rejected"
	TypeDevolutionConfirmed = "devolution_confirmed"
	TypeDevolutionRejected  = "devolution_rejected"
	TypeTradeAccepted       = "trade_accepted"
	TypeTradeRejected       = "trade_rejected"
	TypeKeyRequestConfirmed = "key_request_confirmed"
	TypeKeyRequestRejected  = "key_request_rejected"
	TypeRequestExpired      = "request_expired"
)

// Notification is a durable message addressed to one user. Decision-bearing
// notifications (the *_request types) double as pending requests: they stay
// open until ResolvedAt is set, and resolving one member of a decision group
// closes every sibling created by the same fan-out.
//
// GroupKey identifies the logical decision ("type:proposer:room") so that a
// request fanned out to N admins is settled exactly once.
type Notification struct {
	ID           string     `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string     `json:"user_id"       gorm:"type:char(36);not null;index:idx_notif_user"`
	Type         string     `json:"type"          gorm:"type:varchar(32);not null"`
	GroupKey     string     `json:"-"             gorm:"type:varchar(120);index:idx_notif_group"`
	ProposerID   string     `json:"proposer_id"   gorm:"type:char(36)"`
	ProposerName string     `json:"proposer_name" gorm:"type:varchar(120)"`
	RoomID       string     `json:"room_id"       gorm:"type:char(36);index"`
	RoomName     string     `json:"room_name"     gorm:"type:varchar(120)"`
	Message      string     `json:"message"       gorm:"type:text;not null"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }

// Pending reports whether the notification still awaits a decision or read.
func (n *Notification) Pending() bool { return n.ResolvedAt == nil }

// IsRequest reports whether the notification carries a pending decision
// (as opposed to an informational outcome notice).
func (n *Notification) IsRequest() bool {
	switch n.Type {
	case TypeReservationRequest, TypeDevolutionRequest, TypeTradeRequest, TypeKeyRequest:
		return true
	}
	return false
}

// History is an append-only audit record of who held which room and when.
//
// Invariant: for a given room at most one record has a nil ReturnedAt (the
// active occupancy). Records are closed when the holder relinquishes the key
// via return, trade-out, admin reclaim, or suspension.
type History struct {
	ID         string     `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID     string     `json:"user_id"     gorm:"type:char(36);not null;index:idx_history_user"`
	RoomID     string     `json:"room_id"     gorm:"type:char(36);not null;index:idx_history_room"`
	StartedAt  time.Time  `json:"started_at"  gorm:"not null"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// TableName returns the database table name for History.
func (History) TableName() string { return "histories" }
