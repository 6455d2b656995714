package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	"spacebook/internal/bookings/repository"
	apperrors "spacebook/pkg/errors"
	"spacebook/pkg/logger"
	"spacebook/pkg/middleware"
	"spacebook/pkg/model"
)

type mockBookingService struct {
	createFn        func(ctx context.Context, booking *model.Booking) error
	getByIDFn       func(ctx context.Context, id, actorID string) (*model.Booking, error)
	listForOwnerFn  func(ctx context.Context, ownerID string, filter repository.ListFilter) ([]*model.Booking, int64, error)
	listForClientFn func(ctx context.Context, clientID string, filter repository.ListFilter) ([]*model.Booking, int64, error)
	updateStatusFn  func(ctx context.Context, id, target, actorID, reason string) (*model.Booking, error)
	ownerStatsFn    func(ctx context.Context, ownerID string) (*model.OwnerStats, error)
}

func (m *mockBookingService) Create(ctx context.Context, booking *model.Booking) error {
	return m.createFn(ctx, booking)
}

func (m *mockBookingService) GetByID(ctx context.Context, id, actorID string) (*model.Booking, error) {
	return m.getByIDFn(ctx, id, actorID)
}

func (m *mockBookingService) ListForOwner(ctx context.Context, ownerID string, filter repository.ListFilter) ([]*model.Booking, int64, error) {
	return m.listForOwnerFn(ctx, ownerID, filter)
}

func (m *mockBookingService) ListForClient(ctx context.Context, clientID string, filter repository.ListFilter) ([]*model.Booking, int64, error) {
	return m.listForClientFn(ctx, clientID, filter)
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, id, target, actorID, reason string) (*model.Booking, error) {
	return m.updateStatusFn(ctx, id, target, actorID, reason)
}

func (m *mockBookingService) OwnerStats(ctx context.Context, ownerID string) (*model.OwnerStats, error) {
	return m.ownerStatsFn(ctx, ownerID)
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	log := logger.New(logger.Config{Level: "error", Format: logger.FormatText, Output: io.Discard})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func authedRequest(method, target, body, actorID string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := context.WithValue(req.Context(), middleware.ActorKey, middleware.Actor{ID: actorID, Role: middleware.RoleOwner})
	return req.WithContext(ctx)
}

func TestCreateHandler(t *testing.T) {
	t.Run("sets client id from actor and returns 201", func(t *testing.T) {
		svc := &mockBookingService{
			createFn: func(_ context.Context, b *model.Booking) error {
				if b.ClientID != "actor-1" {
					t.Errorf("client_id = %s, want actor-1", b.ClientID)
				}
				b.ID = "665f1c0a9b3e2d0001a4f100"
				return nil
			},
		}
		router := newRouter(svc)

		w := httptest.NewRecorder()
		body := `{"space_id":"665f1c0a9b3e2d0001a4f001","kind":"single"}`
		router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/bookings", body, "actor-1"))

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
		}
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		router := newRouter(&mockBookingService{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/bookings", "{broken", "actor-1"))

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("missing actor is 401", func(t *testing.T) {
		router := newRouter(&mockBookingService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("service conflict maps to 409", func(t *testing.T) {
		svc := &mockBookingService{
			createFn: func(_ context.Context, _ *model.Booking) error {
				return apperrors.Conflict("the space is already booked for this time")
			},
		}
		router := newRouter(svc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/bookings", `{}`, "actor-1"))

		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})
}

func TestListOwnerHandler(t *testing.T) {
	var seen repository.ListFilter
	svc := &mockBookingService{
		listForOwnerFn: func(_ context.Context, ownerID string, filter repository.ListFilter) ([]*model.Booking, int64, error) {
			if ownerID != "actor-1" {
				t.Errorf("owner id = %s, want actor-1", ownerID)
			}
			seen = filter
			return []*model.Booking{{ID: "665f1c0a9b3e2d0001a4f100"}}, 1, nil
		},
	}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	target := "/api/v1/bookings/owner?status=pending&page=2&limit=5&sort=latest&startDate=2026-10-01T00:00:00Z"
	router.ServeHTTP(w, authedRequest(http.MethodGet, target, "", "actor-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if seen.Status != "pending" || seen.Page != 2 || seen.Limit != 5 || seen.Sort != "latest" {
		t.Errorf("filter = %+v", seen)
	}
	if seen.StartDate == nil {
		t.Error("startDate not parsed")
	}

	var resp struct {
		TotalCount int64 `json:"total_count"`
		TotalPages int64 `json:"total_pages"`
		Page       int   `json:"page"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalCount != 1 || resp.Page != 2 || resp.TotalPages != 1 {
		t.Errorf("pagination envelope = %+v", resp)
	}
}

func TestUpdateStatusHandler(t *testing.T) {
	t.Run("passes transition through", func(t *testing.T) {
		svc := &mockBookingService{
			updateStatusFn: func(_ context.Context, id, target, actorID, reason string) (*model.Booking, error) {
				if id != "665f1c0a9b3e2d0001a4f100" || target != "declined" || reason != "double booked" {
					t.Errorf("unexpected args: %s %s %s", id, target, reason)
				}
				return &model.Booking{ID: id, Status: target}, nil
			},
		}
		router := newRouter(svc)

		w := httptest.NewRecorder()
		body := `{"status":"declined","reason":"double booked"}`
		router.ServeHTTP(w, authedRequest(http.MethodPatch, "/api/v1/bookings/id/665f1c0a9b3e2d0001a4f100/status", body, "actor-1"))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing status is 400", func(t *testing.T) {
		router := newRouter(&mockBookingService{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodPatch, "/api/v1/bookings/id/665f1c0a9b3e2d0001a4f100/status", `{}`, "actor-1"))

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("invalid transition maps to 400", func(t *testing.T) {
		svc := &mockBookingService{
			updateStatusFn: func(_ context.Context, _, _, _, _ string) (*model.Booking, error) {
				return nil, apperrors.InvalidTransition("completed", "confirmed")
			},
		}
		router := newRouter(svc)

		w := httptest.NewRecorder()
		body := `{"status":"confirmed"}`
		router.ServeHTTP(w, authedRequest(http.MethodPatch, "/api/v1/bookings/id/665f1c0a9b3e2d0001a4f100/status", body, "actor-1"))

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestStatsHandler(t *testing.T) {
	svc := &mockBookingService{
		ownerStatsFn: func(_ context.Context, ownerID string) (*model.OwnerStats, error) {
			return &model.OwnerStats{TotalBookings: 7, TotalRevenue: 1250000}, nil
		},
	}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/bookings/stats", "", "actor-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data model.OwnerStats `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.TotalBookings != 7 {
		t.Errorf("total_bookings = %d, want 7", resp.Data.TotalBookings)
	}
}
