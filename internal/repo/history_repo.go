// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the History
// model, the append-only audit of room occupancy.
//
// The workflow engine opens a record when a room moves into use and closes it
// when the holder relinquishes the key; both always happen inside the
// engine's transaction together with the room-state update.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lfarias/go-keys-backend/internal/domain"
)

// OpenHistory starts a new occupancy record for (userID, roomID) at the given
// time.
func OpenHistory(ctx context.Context, db *gorm.DB, userID, roomID string, at time.Time) (*domain.History, error) {
	h := &domain.History{
		ID:        uuid.NewString(),
		UserID:    userID,
		RoomID:    roomID,
		StartedAt: at,
	}
	if err := db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

// ActiveHistoryForRoom returns the open occupancy record for a room, or nil
// when nobody holds it. At most one open record exists per room.
func ActiveHistoryForRoom(ctx context.Context, db *gorm.DB, roomID string) (*domain.History, error) {
	var h domain.History
	err := db.WithContext(ctx).
		Where("room_id = ? AND returned_at IS NULL", roomID).
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ActiveHistoryForUser returns the open occupancy record for (userID, roomID),
// or nil when the user does not hold that room.
func ActiveHistoryForUser(ctx context.Context, db *gorm.DB, userID, roomID string) (*domain.History, error) {
	var h domain.History
	err := db.WithContext(ctx).
		Where("user_id = ? AND room_id = ? AND returned_at IS NULL", userID, roomID).
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// CloseHistory sets the return timestamp on an open record. Closing an
// already-closed or missing record returns ErrNotFound; the conditional
// WHERE keeps the close idempotent under concurrency.
func CloseHistory(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.History{}).
		Where("id = ? AND returned_at IS NULL", id).
		Update("returned_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListHistoryByRoom returns a room's occupancy records, newest first.
func ListHistoryByRoom(ctx context.Context, db *gorm.DB, roomID string) ([]domain.History, error) {
	var out []domain.History
	err := db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("started_at desc").
		Find(&out).Error
	return out, err
}

// ListHistoryByUser returns a user's occupancy records, newest first.
func ListHistoryByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.History, error) {
	var out []domain.History
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at desc").
		Find(&out).Error
	return out, err
}
