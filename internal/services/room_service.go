package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/lfarias/go-keys-backend/internal/domain"
	"github.com/lfarias/go-keys-backend/internal/events"
	"github.com/lfarias/go-keys-backend/internal/repo"
)

// RoomService is the read and administration surface for rooms. State
// transitions are owned by ActionService; this service only handles listing
// plus the admin-managed descriptive fields.
type RoomService struct {
	DB     *gorm.DB
	Events *events.Hub
}

// NewRoomService wires the room service. The hub may be nil in tests.
func NewRoomService(db *gorm.DB, hub *events.Hub) *RoomService {
	return &RoomService{DB: db, Events: hub}
}

// RoomView decorates a room with the actions legal from its current state,
// so clients can render buttons without re-encoding the transition table.
type RoomView struct {
	domain.Room
	AllowedActions []string `json:"allowed_actions"`
}

// RoomInput is the payload for creating or updating a room's descriptive
// fields.
type RoomInput struct {
	Name        string
	Description string
	Equipment   string
	Capacity    int
}

// RoomPage is one page of rooms plus the total count.
type RoomPage struct {
	Items    []RoomView `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

func viewOf(r domain.Room) RoomView {
	return RoomView{Room: r, AllowedActions: domain.AllowedActions(r.State)}
}

// List returns every room, ordered by name.
func (s *RoomService) List(ctx context.Context) ([]RoomView, error) {
	rooms, err := repo.ListRooms(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	out := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, viewOf(r))
	}
	return out, nil
}

// ListPage returns one page of rooms. Page numbers start at 1; out-of-range
// values are clamped.
func (s *RoomService) ListPage(ctx context.Context, page, pageSize int) (*RoomPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	total, err := repo.CountRooms(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	rooms, err := repo.ListRoomsPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		items = append(items, viewOf(r))
	}
	return &RoomPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get returns one room by ID.
func (s *RoomService) Get(ctx context.Context, id string) (*RoomView, error) {
	r, err := repo.GetRoom(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	v := viewOf(*r)
	return &v, nil
}

// Create registers a new room, available and held by the administration.
// Room names are unique.
func (s *RoomService) Create(ctx context.Context, in RoomInput) (*RoomView, error) {
	name := strings.TrimSpace(in.Name)
	taken, err := repo.RoomNameExists(ctx, s.DB, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrRoomNameTaken
	}

	r, err := repo.CreateRoom(ctx, s.DB, name, in.Description, in.Equipment, in.Capacity)
	if err != nil {
		return nil, err
	}

	if s.Events != nil {
		s.Events.RoomsChanged()
	}
	v := viewOf(*r)
	return &v, nil
}

// Update changes a room's descriptive fields. State and holder are never
// touched here.
func (s *RoomService) Update(ctx context.Context, id string, in RoomInput) (*RoomView, error) {
	name := strings.TrimSpace(in.Name)
	taken, err := repo.RoomNameExists(ctx, s.DB, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrRoomNameTaken
	}

	err = repo.UpdateRoomInfo(ctx, s.DB, id, map[string]any{
		"name":        name,
		"description": in.Description,
		"equipment":   in.Equipment,
		"capacity":    in.Capacity,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.Events != nil {
		s.Events.RoomsChanged()
	}
	return s.Get(ctx, id)
}
