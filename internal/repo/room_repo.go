// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Room model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Room state transitions are owned by the
// workflow engine (services.ActionService), which calls SetRoomState inside
// its transactions.
//
// Error semantics:
//   - When a room is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lfarias/go-keys-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRoom inserts a new available room with the administration as holder.
func CreateRoom(ctx context.Context, db *gorm.DB, name, description, equipment string, capacity int) (*domain.Room, error) {
	r := &domain.Room{
		ID:          uuid.NewString(),
		Name:        name,
		State:       domain.StateAvailable,
		HolderName:  domain.HolderAdministration,
		Description: description,
		Equipment:   equipment,
		Capacity:    capacity,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRoom fetches a single room by its ID, or ErrNotFound if missing.
func GetRoom(ctx context.Context, db *gorm.DB, id string) (*domain.Room, error) {
	var r domain.Room
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRooms returns all rooms ordered by name. It returns an empty slice if
// none exist. On DB error, it returns the error.
func ListRooms(ctx context.Context, db *gorm.DB) ([]domain.Room, error) {
	var out []domain.Room
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// RoomNameExists reports whether a room other than exceptID already uses the
// given name. Pass an empty exceptID when creating.
func RoomNameExists(ctx context.Context, db *gorm.DB, name, exceptID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&n).Error
	return n > 0, err
}

// CountRooms returns the total number of rooms.
func CountRooms(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Room{}).Count(&total).Error
	return total, err
}

// ListRoomsPage returns a paginated slice of rooms ordered by name.
// The caller computes offset and limit (e.g. (page-1)*pageSize).
func ListRoomsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Room, error) {
	var out []domain.Room
	err := db.WithContext(ctx).
		Order("name asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateRoomInfo updates the administrative fields of a room (name,
// description, equipment, capacity, note). State and holder are untouchable
// here. Returns ErrNotFound when no row matches.
func UpdateRoomInfo(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetRoomState moves a room to newState under the given holder. A nil
// holderID resets the holder to the administration sentinel. The note, when
// non-nil, replaces the room's administration note.
// Returns ErrNotFound when no row matches.
func SetRoomState(ctx context.Context, db *gorm.DB, id, newState string, holderID *string, holderName string, note *string) error {
	if holderName == "" {
		holderName = domain.HolderAdministration
	}
	fields := map[string]any{
		"state":       newState,
		"holder_id":   holderID,
		"holder_name": holderName,
	}
	if note != nil {
		fields["note"] = *note
	}
	res := db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
