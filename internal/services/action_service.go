// Package services – ActionService
//
// This file implements the reservation workflow engine, the component that
// owns every room-state transition. Student actions (reserve, trade, return)
// and the admin key reclaim (assign) are two-phase: the engine records a
// pending request through the notification relay and returns immediately;
// state only changes when the addressed party resolves the request. Suspend
// and release are single-step and admin-authoritative.
//
// Resolution is first-wins. Every pending request carries a decision-group
// key (type:proposer:room); claiming the acted-on row is a conditional
// update, and the rest of the group is invalidated in the same transaction,
// so a request fanned out to N admins is settled exactly once. All state
// mutation plus history bookkeeping happens inside one transaction; live
// events are emitted only after commit and never gate the outcome.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lfarias/go-keys-backend/internal/domain"
	"github.com/lfarias/go-keys-backend/internal/events"
	"github.com/lfarias/go-keys-backend/internal/repo"
)

// Identity is the authenticated (userID, role) pair the engine trusts,
// plus the display name used in notification texts.
type Identity struct {
	ID   string
	Name string
	Role string
}

// ActionResult reports the outcome of an engine operation.
//
// Status is "pending" for two-phase actions awaiting the other party and
// "applied" for single-step actions; NewState is the room state after a
// direct mutation or a resolution.
type ActionResult struct {
	Status   string `json:"status"`
	NewState string `json:"new_state,omitempty"`
}

const (
	// StatusPending marks an action awaiting another party's decision.
	StatusPending = "pending"
	// StatusApplied marks a direct, committed state change.
	StatusApplied = "applied"
)

// ActionService is the reservation workflow engine.
type ActionService struct {
	DB       *gorm.DB
	Events   *events.Hub
	Messages *MessageCatalog
}

// NewActionService wires the engine to its collaborators. The events hub is
// an explicit handle; passing nil disables live pushes (useful in tests).
func NewActionService(db *gorm.DB, hub *events.Hub, catalog *MessageCatalog) *ActionService {
	if catalog == nil {
		catalog = NewMessageCatalog("en")
	}
	return &ActionService{DB: db, Events: hub, Messages: catalog}
}

// Reserve records a student's request for an available room's key and fans
// it out to every admin. The room is untouched until one admin resolves a
// copy via ResolveReservation.
func (s *ActionService) Reserve(ctx context.Context, actor Identity, roomID string) (*ActionResult, error) {
	tr := otel.Tracer("services/ActionService")
	ctx, span := tr.Start(ctx, "Reserve",
		trace.WithAttributes(
			attribute.String("room.id", roomID),
			attribute.String("user.id", actor.ID),
		),
	)
	defer span.End()

	room, err := s.loadRoom(ctx, s.DB, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(domain.ActionReserve, room.State, actor.Role); err != nil {
		return nil, err
	}

	active, err := repo.ActiveHistoryForUser(ctx, s.DB, actor.ID, roomID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, fmt.Errorf("%w: user already holds this room", ErrRuleViolation)
	}

	admins, err := repo.ListAdmins(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if len(admins) == 0 {
		return nil, fmt.Errorf("%w: no admin users registered", ErrUserNotFound)
	}

	var created []domain.Notification
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group := groupKey(domain.TypeReservationRequest, actor.ID, room.ID)
		for _, admin := range admins {
			n, err := s.createRequest(ctx, tx, admin.ID, domain.TypeReservationRequest, group, actor, room)
			if err != nil {
				return err
			}
			created = append(created, *n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pushNotifications(created)
	return &ActionResult{Status: StatusPending}, nil
}

// Trade records a student's request to take over a key currently held by
// another student. The request is addressed to the current holder only.
func (s *ActionService) Trade(ctx context.Context, actor Identity, roomID string) (*ActionResult, error) {
	room, err := s.loadRoom(ctx, s.DB, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(domain.ActionTrade, room.State, actor.Role); err != nil {
		return nil, err
	}
	if !room.HeldByUser() {
		return nil, fmt.Errorf("%w: no one currently holds this room's key", ErrRuleViolation)
	}
	if *room.HolderID == actor.ID {
		return nil, fmt.Errorf("%w: user already holds this room", ErrRuleViolation)
	}

	var created *domain.Notification
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group := groupKey(domain.TypeTradeRequest, actor.ID, room.ID)
		created, err = s.createRequest(ctx, tx, *room.HolderID, domain.TypeTradeRequest, group, actor, room)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.pushNotifications([]domain.Notification{*created})
	return &ActionResult{Status: StatusPending}, nil
}

// Return records a student's intent to hand the key back and fans the
// confirmation request out to every admin.
func (s *ActionService) Return(ctx context.Context, actor Identity, roomID string) (*ActionResult, error) {
	room, err := s.loadRoom(ctx, s.DB, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(domain.ActionReturn, room.State, actor.Role); err != nil {
		return nil, err
	}

	active, err := repo.ActiveHistoryForUser(ctx, s.DB, actor.ID, roomID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, fmt.Errorf("%w: user does not hold this room", ErrRuleViolation)
	}

	admins, err := repo.ListAdmins(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if len(admins) == 0 {
		return nil, fmt.Errorf("%w: no admin users registered", ErrUserNotFound)
	}

	var created []domain.Notification
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group := groupKey(domain.TypeDevolutionRequest, actor.ID, room.ID)
		for _, admin := range admins {
			n, err := s.createRequest(ctx, tx, admin.ID, domain.TypeDevolutionRequest, group, actor, room)
			if err != nil {
				return err
			}
			created = append(created, *n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pushNotifications(created)
	return &ActionResult{Status: StatusPending}, nil
}

// Assign records an admin's demand for the key of a room currently held by a
// student. The request is addressed to the current holder; targetUserID, when
// non-empty, must name that holder.
func (s *ActionService) Assign(ctx context.Context, actor Identity, roomID, targetUserID string) (*ActionResult, error) {
	room, err := s.loadRoom(ctx, s.DB, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(domain.ActionAssign, room.State, actor.Role); err != nil {
		return nil, err
	}
	if !room.HeldByUser() {
		return nil, fmt.Errorf("%w: no one currently holds this room's key", ErrRuleViolation)
	}
	if targetUserID != "" && targetUserID != *room.HolderID {
		return nil, fmt.Errorf("%w: target user does not hold this room", ErrRuleViolation)
	}

	var created *domain.Notification
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group := groupKey(domain.TypeKeyRequest, actor.ID, room.ID)
		created, err = s.createRequest(ctx, tx, *room.HolderID, domain.TypeKeyRequest, group, actor, room)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.pushNotifications([]domain.Notification{*created})
	return &ActionResult{Status: StatusPending}, nil
}

// Suspend immediately takes a room out of service, recording the
// admin-supplied reason. Any open occupancy record is closed (admin reclaim)
// so the one-open-record invariant holds while nobody can use the room.
func (s *ActionService) Suspend(ctx context.Context, actor Identity, roomID, reason string) (*ActionResult, error) {
	room, err := s.loadRoom(ctx, s.DB, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(domain.ActionSuspend, room.State, actor.Role); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		open, err := repo.ActiveHistoryForRoom(ctx, tx, room.ID)
		if err != nil {
			return err
		}
		if open != nil {
			if err := repo.CloseHistory(ctx, tx, open.ID, now); err != nil {
				return err
			}
		}
		return repo.SetRoomState(ctx, tx, room.ID, domain.StateUnavailable, nil, "", &reason)
	})
	if err != nil {
		return nil, err
	}

	s.roomsChanged()
	return &ActionResult{Status: StatusApplied, NewState: domain.StateUnavailable}, nil
}

// Release puts a suspended room back in service.
func (s *ActionService) Release(ctx context.Context, actor Identity, roomID string) (*ActionResult, error) {
	room, err := s.loadRoom(ctx, s.DB, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(domain.ActionRelease, room.State, actor.Role); err != nil {
		return nil, err
	}

	empty := ""
	if err := repo.SetRoomState(ctx, s.DB, room.ID, domain.StateAvailable, nil, "", &empty); err != nil {
		return nil, err
	}

	s.roomsChanged()
	return &ActionResult{Status: StatusApplied, NewState: domain.StateAvailable}, nil
}

// ResolveReservation settles a reservation_request addressed to the acting
// admin. Approval hands the key to the proposer, opens their occupancy
// record, and invalidates every sibling copy of the request; rejection only
// notifies the proposer. Duplicate resolution fails with ErrAlreadyResolved.
func (s *ActionService) ResolveReservation(ctx context.Context, actor Identity, requestID string, approved bool) (*ActionResult, error) {
	tr := otel.Tracer("services/ActionService")
	ctx, span := tr.Start(ctx, "ResolveReservation",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.Bool("approved", approved),
		),
	)
	defer span.End()

	var (
		outcome  *domain.Notification
		newState string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.claimRequest(ctx, tx, actor, requestID, domain.TypeReservationRequest)
		if err != nil {
			return err
		}

		room, err := s.loadRoom(ctx, tx, n.RoomID)
		if err != nil {
			return err
		}
		newState = room.State

		if approved {
			// Re-validate against current state: a concurrent suspension or
			// approval leaves this request unresolvable.
			if room.State != domain.StateAvailable {
				return fmt.Errorf("%w: room is no longer available", ErrRuleViolation)
			}
			proposer := n.ProposerID
			if err := repo.SetRoomState(ctx, tx, room.ID, domain.StateInUse, &proposer, n.ProposerName, nil); err != nil {
				return err
			}
			if _, err := repo.OpenHistory(ctx, tx, proposer, room.ID, time.Now().UTC()); err != nil {
				return err
			}
			newState = domain.StateInUse
			outcome, err = s.createOutcome(ctx, tx, n.ProposerID, domain.TypeReservationApproved, actor.Name, n)
			if err != nil {
				return err
			}
		} else {
			outcome, err = s.createOutcome(ctx, tx, n.ProposerID, domain.TypeReservationRejected, actor.Name, n)
			if err != nil {
				return err
			}
		}

		_, err = repo.ResolveGroup(ctx, tx, n.GroupKey, n.ID, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.pushNotifications([]domain.Notification{*outcome})
	if approved {
		s.roomsChanged()
	}
	return &ActionResult{Status: StatusApplied, NewState: newState}, nil
}

// ResolveTrade settles a trade_request addressed to the current key holder.
// Acceptance closes the holder's occupancy record, opens one for the
// proposer, and transfers the key without the room ever leaving InUse.
func (s *ActionService) ResolveTrade(ctx context.Context, actor Identity, requestID string, accepted bool) (*ActionResult, error) {
	var (
		outcome  *domain.Notification
		newState string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.claimRequest(ctx, tx, actor, requestID, domain.TypeTradeRequest)
		if err != nil {
			return err
		}

		room, err := s.loadRoom(ctx, tx, n.RoomID)
		if err != nil {
			return err
		}
		newState = room.State

		if accepted {
			if room.State != domain.StateInUse || room.HolderID == nil || *room.HolderID != actor.ID {
				return fmt.Errorf("%w: key is no longer held by the decider", ErrRuleViolation)
			}
			now := time.Now().UTC()
			open, err := repo.ActiveHistoryForRoom(ctx, tx, room.ID)
			if err != nil {
				return err
			}
			if open != nil {
				if err := repo.CloseHistory(ctx, tx, open.ID, now); err != nil {
					return err
				}
			}
			proposer := n.ProposerID
			if _, err := repo.OpenHistory(ctx, tx, proposer, room.ID, now); err != nil {
				return err
			}
			if err := repo.SetRoomState(ctx, tx, room.ID, domain.StateInUse, &proposer, n.ProposerName, nil); err != nil {
				return err
			}
			newState = domain.StateInUse
			outcome, err = s.createOutcome(ctx, tx, n.ProposerID, domain.TypeTradeAccepted, actor.Name, n)
			if err != nil {
				return err
			}
		} else {
			outcome, err = s.createOutcome(ctx, tx, n.ProposerID, domain.TypeTradeRejected, actor.Name, n)
			if err != nil {
				return err
			}
		}

		_, err = repo.ResolveGroup(ctx, tx, n.GroupKey, n.ID, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.pushNotifications([]domain.Notification{*outcome})
	if accepted {
		s.roomsChanged()
	}
	return &ActionResult{Status: StatusApplied, NewState: newState}, nil
}

// ResolveDevolution settles a devolution_request addressed to the acting
// admin. Confirmation closes the proposer's occupancy record and returns the
// key to the administration; rejection tells the proposer to hand the key
// over in person while the room stays InUse.
func (s *ActionService) ResolveDevolution(ctx context.Context, actor Identity, requestID string, confirmed bool) (*ActionResult, error) {
	var (
		outcome  *domain.Notification
		newState string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.claimRequest(ctx, tx, actor, requestID, domain.TypeDevolutionRequest)
		if err != nil {
			return err
		}

		room, err := s.loadRoom(ctx, tx, n.RoomID)
		if err != nil {
			return err
		}
		newState = room.State

		if confirmed {
			open, err := repo.ActiveHistoryForUser(ctx, tx, n.ProposerID, room.ID)
			if err != nil {
				return err
			}
			if open == nil {
				return fmt.Errorf("%w: proposer no longer holds this room", ErrRuleViolation)
			}
			if err := repo.CloseHistory(ctx, tx, open.ID, time.Now().UTC()); err != nil {
				return err
			}
			if err := repo.SetRoomState(ctx, tx, room.ID, domain.StateAvailable, nil, "", nil); err != nil {
				return err
			}
			newState = domain.StateAvailable
			outcome, err = s.createOutcome(ctx, tx, n.ProposerID, domain.TypeDevolutionConfirmed, actor.Name, n)
			if err != nil {
				return err
			}
		} else {
			outcome, err = s.createOutcome(ctx, tx, n.ProposerID, domain.TypeDevolutionRejected, actor.Name, n)
			if err != nil {
				return err
			}
		}

		_, err = repo.ResolveGroup(ctx, tx, n.GroupKey, n.ID, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.pushNotifications([]domain.Notification{*outcome})
	if confirmed {
		s.roomsChanged()
	}
	return &ActionResult{Status: StatusApplied, NewState: newState}, nil
}

// ResolveKeyRequest settles a request_key addressed to the current holder.
// Confirmation hands the key back to the administration and notifies the
// requesting admin; rejection only notifies the admin.
func (s *ActionService) ResolveKeyRequest(ctx context.Context, actor Identity, requestID string, confirmed bool) (*ActionResult, error) {
	var (
		outcome  *domain.Notification
		newState string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.claimRequest(ctx, tx, actor, requestID, domain.TypeKeyRequest)
		if err != nil {
			return err
		}

		room, err := s.loadRoom(ctx, tx, n.RoomID)
		if err != nil {
			return err
		}
		newState = room.State

		if confirmed {
			open, err := repo.ActiveHistoryForUser(ctx, tx, actor.ID, room.ID)
			if err != nil {
				return err
			}
			if open == nil {
				return fmt.Errorf("%w: decider no longer holds this room", ErrRuleViolation)
			}
			if err := repo.CloseHistory(ctx, tx, open.ID, time.Now().UTC()); err != nil {
				return err
			}
			if err := repo.SetRoomState(ctx, tx, room.ID, domain.StateAvailable, nil, "", nil); err != nil {
				return err
			}
			newState = domain.StateAvailable
			// The outcome goes to the requesting admin; the counterpart named
			// in the text is the student who decided.
			outcome, err = s.createOutcome(ctx, tx, n.ProposerID, domain.TypeKeyRequestConfirmed, actor.Name, n)
			if err != nil {
				return err
			}
		} else {
			outcome, err = s.createOutcome(ctx, tx, n.ProposerID, domain.TypeKeyRequestRejected, actor.Name, n)
			if err != nil {
				return err
			}
		}

		_, err = repo.ResolveGroup(ctx, tx, n.GroupKey, n.ID, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.pushNotifications([]domain.Notification{*outcome})
	if confirmed {
		s.roomsChanged()
	}
	return &ActionResult{Status: StatusApplied, NewState: newState}, nil
}

// ExpirePending resolves every decision-bearing request older than maxAge and
// notifies its proposer. Room state is never touched: an expired request
// simply stops waiting. Returns the number of requests expired.
func (s *ActionService) ExpirePending(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	stale, err := repo.ListExpiredRequests(ctx, s.DB, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	var outcomes []domain.Notification
	for _, n := range stale {
		n := n
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := time.Now().UTC()
			won, err := repo.ClaimNotification(ctx, tx, n.ID, now)
			if err != nil {
				return err
			}
			if !won {
				// Raced with a real resolution or a sibling's sweep.
				return nil
			}
			if _, err := repo.ResolveGroup(ctx, tx, n.GroupKey, n.ID, now); err != nil {
				return err
			}
			out, err := s.createOutcome(ctx, tx, n.ProposerID, domain.TypeRequestExpired, "", &n)
			if err != nil {
				return err
			}
			outcomes = append(outcomes, *out)
			expired++
			return nil
		})
		if err != nil {
			return expired, err
		}
	}

	s.pushNotifications(outcomes)
	return expired, nil
}

// ---- internals ----

// loadRoom fetches a room, mapping a missing row onto ErrRoomNotFound.
func (s *ActionService) loadRoom(ctx context.Context, db *gorm.DB, id string) (*domain.Room, error) {
	room, err := repo.GetRoom(ctx, db, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// authorize checks the permission table, then the transition table.
// A role that may never perform the action fails ErrForbidden; a legal role
// acting from the wrong state fails ErrRuleViolation.
func (s *ActionService) authorize(action, fromState, role string) error {
	if !domain.RoleAllows(role, action) {
		return fmt.Errorf("%w: role %q may not %s", ErrForbidden, role, action)
	}
	if !domain.CanTransition(action, fromState, role) {
		return fmt.Errorf("%w: cannot %s a room in state %q", ErrRuleViolation, action, fromState)
	}
	return nil
}

// claimRequest loads a request notification, checks addressee and type, and
// claims it with a conditional update. Exactly one caller wins a claim.
func (s *ActionService) claimRequest(ctx context.Context, tx *gorm.DB, actor Identity, requestID, expectType string) (*domain.Notification, error) {
	n, err := repo.GetNotification(ctx, tx, requestID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if n.Type != expectType {
		return nil, fmt.Errorf("%w: got %q", ErrWrongRequestType, n.Type)
	}
	if n.UserID != actor.ID {
		return nil, fmt.Errorf("%w: request is addressed to another user", ErrForbidden)
	}

	won, err := repo.ClaimNotification(ctx, tx, n.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrAlreadyResolved
	}
	return n, nil
}

// createRequest stores a decision-bearing notification addressed to
// recipientID, describing proposer's intent on room.
func (s *ActionService) createRequest(ctx context.Context, tx *gorm.DB, recipientID, typ, group string, proposer Identity, room *domain.Room) (*domain.Notification, error) {
	return repo.CreateNotification(ctx, tx, &domain.Notification{
		UserID:       recipientID,
		Type:         typ,
		GroupKey:     group,
		ProposerID:   proposer.ID,
		ProposerName: proposer.Name,
		RoomID:       room.ID,
		RoomName:     room.Name,
		Message:      s.Messages.Render(typ, proposer.Name, room.Name),
	})
}

// createOutcome stores an informational notice derived from a settled
// request. counterpart names the deciding party in the rendered text.
func (s *ActionService) createOutcome(ctx context.Context, tx *gorm.DB, recipientID, typ, counterpart string, req *domain.Notification) (*domain.Notification, error) {
	return repo.CreateNotification(ctx, tx, &domain.Notification{
		UserID:       recipientID,
		Type:         typ,
		ProposerID:   req.ProposerID,
		ProposerName: req.ProposerName,
		RoomID:       req.RoomID,
		RoomName:     req.RoomName,
		Message:      s.Messages.Render(typ, counterpart, req.RoomName),
	})
}

// pushNotifications delivers freshly committed notifications to their
// addressees' live channels. Best-effort and nil-safe.
func (s *ActionService) pushNotifications(ns []domain.Notification) {
	if s.Events == nil {
		return
	}
	for i := range ns {
		s.Events.NotifyUser(ns[i].UserID, events.Event{
			Name:    events.EventNotification,
			Payload: ns[i],
		})
	}
}

// roomsChanged broadcasts the global re-sync signal. Nil-safe.
func (s *ActionService) roomsChanged() {
	if s.Events != nil {
		s.Events.RoomsChanged()
	}
}

// groupKey builds the decision-group key identifying one logical decision.
func groupKey(typ, proposerID, roomID string) string {
	return fmt.Sprintf("%s:%s:%s", typ, proposerID, roomID)
}
