package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"spacebook/internal/payments/service"
	apperrors "spacebook/pkg/errors"
	httputil "spacebook/pkg/http"
	"spacebook/pkg/logger"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

func (h *PaymentHandler) InitiateMobileMoney(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "InitiateMobileMoney", apperrors.InvalidInput("Invalid request body"))
		return
	}

	resp, err := h.service.InitiateMobileMoney(r.Context(), req)
	if err != nil {
		h.writeError(w, "InitiateMobileMoney", err)
		return
	}

	if err := httputil.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "InitiateMobileMoney", "error", err)
	}
}

func (h *PaymentHandler) CheckStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.service.CheckStatus(r.Context(), ps.ByName("bookingId"))
	if err != nil {
		h.writeError(w, "CheckStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckStatus", "error", err)
	}
}

func (h *PaymentHandler) Methods(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.Methods()); err != nil {
		h.log.Error("failed to write success response", "handler", "Methods", "error", err)
	}
}

type validatePhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}

func (h *PaymentHandler) ValidatePhone(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req validatePhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "ValidatePhone", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if req.PhoneNumber == "" {
		h.writeError(w, "ValidatePhone", apperrors.InvalidInput("phone_number is required"))
		return
	}

	if err := httputil.WriteSuccess(w, h.service.ValidatePhone(req.PhoneNumber)); err != nil {
		h.log.Error("failed to write success response", "handler", "ValidatePhone", "error", err)
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/mobile-money", h.InitiateMobileMoney)
	router.GET("/api/v1/payments/status/:bookingId", h.CheckStatus)
	router.GET("/api/v1/payments/methods", h.Methods)
	router.POST("/api/v1/payments/validate-phone", h.ValidatePhone)
}
