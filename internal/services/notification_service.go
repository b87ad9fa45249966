package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lfarias/go-keys-backend/internal/domain"
	"github.com/lfarias/go-keys-backend/internal/repo"
)

// NotificationService is the read surface of the notification relay. It
// lists a user's inbox and marks informational notices as read; pending
// requests are settled exclusively through ActionService.
type NotificationService struct {
	DB *gorm.DB
}

// NewNotificationService wires the notification service.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// List returns the actor's notifications, newest first. With unreadOnly set,
// only open rows are returned.
func (s *NotificationService) List(ctx context.Context, actor Identity, unreadOnly bool) ([]domain.Notification, error) {
	return repo.ListNotificationsByUser(ctx, s.DB, actor.ID, unreadOnly)
}

// MarkRead marks one informational notice as read. Only the addressee may
// mark it; decision-bearing requests must be decided, not dismissed, so they
// fail with ErrWrongRequestType. Marking an already-read notice is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, actor Identity, id string) error {
	n, err := repo.GetNotification(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	if n.UserID != actor.ID {
		return fmt.Errorf("%w: notification is addressed to another user", ErrForbidden)
	}
	if n.IsRequest() {
		return fmt.Errorf("%w: pending request must be decided, not dismissed", ErrWrongRequestType)
	}

	_, err = repo.ClaimNotification(ctx, s.DB, id, time.Now().UTC())
	return err
}

// MarkAllRead marks every open informational notice of the actor as read and
// returns the number of notices affected. Pending requests stay open.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor Identity) (int64, error) {
	return repo.ResolveAllForUser(ctx, s.DB, actor.ID, time.Now().UTC())
}
