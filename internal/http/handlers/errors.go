// HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants are mapped to HTTP responses via the fail()
// helper and give clients a stable, machine-readable taxonomy on top of the
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes (bad_request, unauthorized, conflict, ...) mirror common
//     HTTP status semantics.
//   - Domain-specific codes describe workflow failures that a status code
//     alone cannot convey: rule_violation means the room's current state
//     forbids the action, already_resolved means another copy of a fan-out
//     request won the race.

package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeRuleViolation      = "rule_violation"
	ErrCodeAlreadyResolved    = "already_resolved"
	ErrCodeWrongRequestType   = "wrong_request_type"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
)
