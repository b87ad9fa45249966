package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lfarias/go-keys-backend/internal/domain"
	"github.com/lfarias/go-keys-backend/internal/repo"
)

// HistoryService serves the occupancy audit trail: per-room for admins and
// per-user for the user themselves.
type HistoryService struct {
	DB *gorm.DB
}

// NewHistoryService wires the history service.
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db}
}

// HistoryEntry is one occupancy record enriched with display names.
type HistoryEntry struct {
	domain.History
	UserName string `json:"user_name"`
	RoomName string `json:"room_name"`
}

// ByRoom returns a room's occupancy records, newest first. Admin only.
func (s *HistoryService) ByRoom(ctx context.Context, actor Identity, roomID string) ([]HistoryEntry, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: room history is admin-only", ErrForbidden)
	}

	room, err := repo.GetRoom(ctx, s.DB, roomID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	records, err := repo.ListHistoryByRoom(ctx, s.DB, roomID)
	if err != nil {
		return nil, err
	}

	names, err := s.userNames(ctx, records)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(records))
	for _, h := range records {
		out = append(out, HistoryEntry{History: h, UserName: names[h.UserID], RoomName: room.Name})
	}
	return out, nil
}

// ByUser returns a user's occupancy records, newest first. A student may only
// query their own history; admins may query anyone's.
func (s *HistoryService) ByUser(ctx context.Context, actor Identity, userID string) ([]HistoryEntry, error) {
	if actor.ID != userID && actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: cannot read another user's history", ErrForbidden)
	}

	u, err := repo.GetUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	records, err := repo.ListHistoryByUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	roomNames, err := s.roomNames(ctx, records)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(records))
	for _, h := range records {
		out = append(out, HistoryEntry{History: h, UserName: u.Name, RoomName: roomNames[h.RoomID]})
	}
	return out, nil
}

// userNames resolves the distinct user IDs of the records to display names.
func (s *HistoryService) userNames(ctx context.Context, records []domain.History) (map[string]string, error) {
	ids := make([]string, 0, len(records))
	seen := map[string]bool{}
	for _, h := range records {
		if !seen[h.UserID] {
			seen[h.UserID] = true
			ids = append(ids, h.UserID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	var users []domain.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// roomNames resolves the distinct room IDs of the records to display names.
func (s *HistoryService) roomNames(ctx context.Context, records []domain.History) (map[string]string, error) {
	ids := make([]string, 0, len(records))
	seen := map[string]bool{}
	for _, h := range records {
		if !seen[h.RoomID] {
			seen[h.RoomID] = true
			ids = append(ids, h.RoomID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	var rooms []domain.Room
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rooms).Error; err != nil {
		return nil, err
	}
	names := make(map[string]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.Name
	}
	return names, nil
}
