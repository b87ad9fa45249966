package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lfarias/go-keys-backend/internal/domain"
	"github.com/lfarias/go-keys-backend/internal/services"
)

func TestListNotifications_UnreadFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotUnread bool
	notifs := stubNotifs{list: func(ctx context.Context, actor services.Identity, unreadOnly bool) ([]domain.Notification, error) {
		if actor.ID != "u-1" {
			t.Fatalf("actor = %+v", actor)
		}
		gotUnread = unreadOnly
		return []domain.Notification{{ID: "n-1", UserID: "u-1", Type: domain.TypeReservationApproved}}, nil
	}}
	h := New(stubAuth{}, stubRooms{}, stubActions{}, notifs, stubHist{}, nil)

	r := gin.New()
	r.GET("/notifications", asUser("u-1", "Ana", "student"), h.ListNotifications)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	if w.Code != http.StatusOK || gotUnread {
		t.Fatalf("default: status = %d, unread = %v", w.Code, gotUnread)
	}
	var res ListNotificationsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(res.Notifications) != 1 {
		t.Fatalf("notifications = %+v", res.Notifications)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications?unread=true", nil))
	if w.Code != http.StatusOK || !gotUnread {
		t.Fatalf("filtered: status = %d, unread = %v", w.Code, gotUnread)
	}
}

func TestMarkNotificationRead_Mappings(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ok", nil, http.StatusNoContent},
		{"not_found", services.ErrRequestNotFound, http.StatusNotFound},
		{"foreign", services.ErrForbidden, http.StatusForbidden},
		{"pending_request", services.ErrWrongRequestType, http.StatusConflict},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			notifs := stubNotifs{mark: func(ctx context.Context, actor services.Identity, id string) error {
				return tc.err
			}}
			h := New(stubAuth{}, stubRooms{}, stubActions{}, notifs, stubHist{}, nil)

			r := gin.New()
			r.POST("/notifications/:id/read", asUser("u-1", "Ana", "student"), h.MarkNotificationRead)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notifications/"+uuid.NewString()+"/read", nil))

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	gin.SetMode(gin.TestMode)

	notifs := stubNotifs{markAll: func(ctx context.Context, actor services.Identity) (int64, error) {
		return 4, nil
	}}
	h := New(stubAuth{}, stubRooms{}, stubActions{}, notifs, stubHist{}, nil)

	r := gin.New()
	r.POST("/notifications/read-all", asUser("u-1", "Ana", "student"), h.MarkAllNotificationsRead)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res MarkAllReadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if res.Marked != 4 {
		t.Fatalf("marked = %d", res.Marked)
	}
}
