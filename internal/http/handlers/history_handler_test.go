package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lfarias/go-keys-backend/internal/domain"
	"github.com/lfarias/go-keys-backend/internal/services"
)

func TestRoomHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	roomID := uuid.NewString()
	hist := stubHist{byRoom: func(ctx context.Context, actor services.Identity, id string) ([]services.HistoryEntry, error) {
		if actor.Role != "admin" {
			return nil, services.ErrForbidden
		}
		if id != roomID {
			return nil, services.ErrRoomNotFound
		}
		return []services.HistoryEntry{{
			History:  domain.History{ID: "h-1", RoomID: id, UserID: "u-1", StartedAt: time.Now()},
			UserName: "Ana",
			RoomName: "Lab 204",
		}}, nil
	}}

	adminH := New(stubAuth{}, stubRooms{}, stubActions{}, stubNotifs{}, hist, nil)

	r := gin.New()
	r.GET("/admin/rooms/:id/history", asUser("a-1", "Root", "admin"), adminH.RoomHistory)
	r.GET("/student/rooms/:id/history", asUser("u-1", "Ana", "student"), adminH.RoomHistory)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/rooms/"+roomID+"/history", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, body = %s", w.Code, w.Body.String())
	}
	var res HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(res.History) != 1 || res.History[0].UserName != "Ana" || res.History[0].RoomName != "Lab 204" {
		t.Fatalf("history = %+v", res.History)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/student/rooms/"+roomID+"/history", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("student: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/rooms/"+uuid.NewString()+"/history", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown room: status = %d", w.Code)
	}
}

func TestUserHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hist := stubHist{byUser: func(ctx context.Context, actor services.Identity, userID string) ([]services.HistoryEntry, error) {
		if actor.Role != "admin" && actor.ID != userID {
			return nil, services.ErrForbidden
		}
		return []services.HistoryEntry{}, nil
	}}
	h := New(stubAuth{}, stubRooms{}, stubActions{}, stubNotifs{}, hist, nil)

	self := uuid.NewString()
	other := uuid.NewString()

	r := gin.New()
	r.GET("/users/:id/history", asUser(self, "Ana", "student"), h.UserHistory)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+self+"/history", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("own history: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+other+"/history", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign history: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/nope/history", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status = %d", w.Code)
	}
}
