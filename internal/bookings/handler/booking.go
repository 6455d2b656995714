package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"spacebook/internal/bookings/repository"
	"spacebook/internal/bookings/service"
	apperrors "spacebook/pkg/errors"
	httputil "spacebook/pkg/http"
	"spacebook/pkg/logger"
	"spacebook/pkg/middleware"
	"spacebook/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// statusUpdateRequest is the PATCH body for a status transition.
type statusUpdateRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("authentication required"))
		return
	}

	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}
	booking.ClientID = actor.ID

	if err := h.service.Create(r.Context(), &booking); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "GetByID", apperrors.Unauthorized("authentication required"))
		return
	}

	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"), actor.ID)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

// ListMine returns the caller's bookings as a client.
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "ListMine", func(actorID string, filter repository.ListFilter) ([]*model.Booking, int64, error) {
		return h.service.ListForClient(r.Context(), actorID, filter)
	})
}

// ListOwner returns bookings across the caller's spaces.
func (h *BookingHandler) ListOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "ListOwner", func(actorID string, filter repository.ListFilter) ([]*model.Booking, int64, error) {
		return h.service.ListForOwner(r.Context(), actorID, filter)
	})
}

func (h *BookingHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	fetch func(actorID string, filter repository.ListFilter) ([]*model.Booking, int64, error),
) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, name, apperrors.Unauthorized("authentication required"))
		return
	}

	filter, err := h.parseListFilter(r)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	bookings, total, err := fetch(actor.ID, filter)
	if err != nil {
		h.writeError(w, name, err)
		return
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	if err := httputil.WritePaginated(w, bookings, total, filter.Page, filter.Limit); err != nil {
		h.log.Error("failed to write paginated response", "handler", name, "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "UpdateStatus", apperrors.Unauthorized("authentication required"))
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if req.Status == "" {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("status is required"))
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), req.Status, actor.ID, req.Reason)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "error", err)
	}
}

func (h *BookingHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Stats", apperrors.Unauthorized("authentication required"))
		return
	}

	stats, err := h.service.OwnerStats(r.Context(), actor.ID)
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "error", err)
	}
}

func (h *BookingHandler) parseListFilter(r *http.Request) (repository.ListFilter, error) {
	query := r.URL.Query()

	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		return repository.ListFilter{}, err
	}

	filter := repository.ListFilter{
		Status: query.Get("status"),
		Sort:   query.Get("sort"),
		Page:   page,
		Limit:  limit,
	}

	if s := query.Get("startDate"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return repository.ListFilter{}, apperrors.InvalidInput("invalid startDate format, must be RFC3339")
		}
		filter.StartDate = &parsed
	}
	if s := query.Get("endDate"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return repository.ListFilter{}, apperrors.InvalidInput("invalid endDate format, must be RFC3339")
		}
		filter.EndDate = &parsed
	}

	return filter, nil
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.ListMine)
	router.GET("/api/v1/bookings/owner", h.ListOwner)
	router.GET("/api/v1/bookings/stats", h.Stats)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id/status", h.UpdateStatus)
}
