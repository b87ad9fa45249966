// Package services defines the business logic for the key-reservation
// workflows: the action engine, the notification relay, authentication, and
// the read surfaces for rooms and history. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages and HTTP status codes is performed
// at the handler layer. Methods may wrap a sentinel with extra context via
// fmt.Errorf("%w: ..."), so callers must compare with errors.Is.
package services

import "errors"

var (
	// ErrRoomNotFound indicates that the requested room does not exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrUserNotFound indicates that a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRequestNotFound indicates that the referenced pending request does
	// not exist.
	ErrRequestNotFound = errors.New("pending request not found")

	// ErrForbidden is returned when the caller's role is never allowed to
	// perform the requested action.
	ErrForbidden = errors.New("role is not authorized for this action")

	// ErrRuleViolation is returned when an action is not legal from the
	// room's current state, or an action-specific precondition is unmet.
	ErrRuleViolation = errors.New("business rule violation")

	// ErrAlreadyResolved is returned when a pending request has already been
	// decided; duplicate resolution attempts must fail rather than silently
	// double-apply.
	ErrAlreadyResolved = errors.New("request already resolved")

	// ErrWrongRequestType is returned when a resolution endpoint is invoked
	// against a notification of a different type.
	ErrWrongRequestType = errors.New("notification is not of the expected request type")

	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password. Deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering a user with an email that
	// already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrRoomNameTaken is returned when creating a room whose name is
	// already in use.
	ErrRoomNameTaken = errors.New("room name already exists")
)
