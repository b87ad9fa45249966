// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Notification model, which doubles as the durable pending-request record.
//
// Resolution is deliberately a conditional single-statement update rather
// than a read-then-write sequence: under concurrent resolution attempts only
// one caller observes RowsAffected == 1, which is the mutual-exclusion point
// the workflow engine relies on. Fan-out siblings are invalidated in one
// multi-row update keyed by the decision group.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lfarias/go-keys-backend/internal/domain"
)

// CreateNotification persists a notification addressed to one user and
// returns the stored row. The caller fills Type, GroupKey, and the
// contextual fields; CreatedAt is set to UTC here.
func CreateNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) (*domain.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// GetNotification fetches a notification by ID, or ErrNotFound if missing.
func GetNotification(ctx context.Context, db *gorm.DB, id string) (*domain.Notification, error) {
	var n domain.Notification
	if err := db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotificationsByUser returns a user's notifications, newest first.
// With unreadOnly set, only unresolved rows are returned.
func ListNotificationsByUser(ctx context.Context, db *gorm.DB, userID string, unreadOnly bool) ([]domain.Notification, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("resolved_at IS NULL")
	}
	var out []domain.Notification
	err := q.Order("created_at desc").Find(&out).Error
	return out, err
}

// ClaimNotification marks a notification resolved iff it is still open.
// It reports whether this caller won the claim: false means the row exists
// but was already resolved by someone else (or concurrently).
//
// The WHERE clause carries the open-row predicate so that checking and
// marking happen in a single statement.
func ClaimNotification(ctx context.Context, db *gorm.DB, id string, at time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND resolved_at IS NULL", id).
		Update("resolved_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ResolveGroup marks every still-open notification in a decision group as
// resolved, excluding the row that was acted on. Used to invalidate fan-out
// siblings after a first-wins resolution. Returns the number of rows closed.
func ResolveGroup(ctx context.Context, db *gorm.DB, groupKey, exceptID string, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("group_key = ? AND id <> ? AND resolved_at IS NULL", groupKey, exceptID).
		Update("resolved_at", at)
	return res.RowsAffected, res.Error
}

// ResolveAllForUser marks every open informational notice addressed to
// userID as read and returns the number of rows affected. Decision-bearing
// requests are excluded: those are settled only through the workflow engine.
func ResolveAllForUser(ctx context.Context, db *gorm.DB, userID string, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND resolved_at IS NULL AND type NOT IN ?", userID, []string{
			domain.TypeReservationRequest,
			domain.TypeDevolutionRequest,
			domain.TypeTradeRequest,
			domain.TypeKeyRequest,
		}).
		Update("resolved_at", at)
	return res.RowsAffected, res.Error
}

// ListExpiredRequests returns open decision-bearing notifications created
// before the cutoff. Used by the pending-request sweeper.
func ListExpiredRequests(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]domain.Notification, error) {
	var out []domain.Notification
	err := db.WithContext(ctx).
		Where("resolved_at IS NULL AND created_at < ? AND type IN ?", cutoff, []string{
			domain.TypeReservationRequest,
			domain.TypeDevolutionRequest,
			domain.TypeTradeRequest,
			domain.TypeKeyRequest,
		}).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
