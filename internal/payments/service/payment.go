package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "spacebook/internal/bookings/errors"
	"spacebook/internal/bookings/repository"
	"spacebook/internal/bookings/status"
	"spacebook/internal/notifications"
	"spacebook/internal/payments/provider"
	"spacebook/pkg/config"
	apperrors "spacebook/pkg/errors"
	"spacebook/pkg/model"
	"spacebook/pkg/sanitizer"
)

type InitiateRequest struct {
	BookingID   string  `json:"booking_id"`
	PhoneNumber string  `json:"phone_number"`
	Provider    string  `json:"provider"`
	Amount      float64 `json:"amount"`
}

type InitiateResponse struct {
	BookingID        string  `json:"booking_id"`
	PaymentReference string  `json:"payment_reference"`
	TransactionID    string  `json:"transaction_id"`
	Provider         string  `json:"provider"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	PaymentStatus    string  `json:"payment_status"`
}

type StatusResult struct {
	BookingID      string `json:"booking_id"`
	PaymentStatus  string `json:"payment_status"`
	BookingStatus  string `json:"booking_status"`
	ProviderStatus string `json:"provider_status"`
}

type Method struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Provider string `json:"provider,omitempty"`
}

type PhoneValidation struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized,omitempty"`
	MSISDN     string `json:"msisdn,omitempty"`
	Valid      bool   `json:"valid"`
}

type PaymentService interface {
	InitiateMobileMoney(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	// CheckStatus polls the provider and reconciles the outcome into
	// the booking.
	CheckStatus(ctx context.Context, bookingID string) (*StatusResult, error)
	Methods() []Method
	ValidatePhone(phone string) PhoneValidation
}

type paymentService struct {
	bookings  repository.BookingRepository
	providers map[string]provider.Provider
	publisher notifications.Publisher
	cfg       *config.Config
}

func NewPaymentService(
	bookings repository.BookingRepository,
	providers map[string]provider.Provider,
	publisher notifications.Publisher,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		bookings:  bookings,
		providers: providers,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *paymentService) InitiateMobileMoney(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	if !s.cfg.MobileMoneyEnabled {
		return nil, apperrors.Unavailable("Mobile money payments")
	}

	booking, err := s.findBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == model.PaymentCompleted {
		return nil, apperrors.Conflict("This booking is already paid")
	}
	// The client echoes the amount it showed the payer; any drift from
	// the authoritative total aborts the collection.
	if req.Amount != booking.TotalPrice {
		return nil, apperrors.Validation("Payment amount does not match the booking total", map[string]any{
			"expected": booking.TotalPrice,
			"received": req.Amount,
		})
	}

	msisdn := sanitizer.NormalizeMSISDN(req.PhoneNumber)
	if msisdn == "" {
		return nil, apperrors.Validation("Phone number is not a valid Ugandan mobile number", map[string]any{
			"phone_number": req.PhoneNumber,
		})
	}

	prov, err := s.provider(req.Provider)
	if err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("BOOKING_%s_%d", booking.ID, time.Now().UnixMilli())
	resp, err := prov.RequestToPay(ctx, provider.PaymentRequest{
		Reference: reference,
		Amount:    booking.TotalPrice,
		Currency:  s.cfg.PaymentCurrency,
		Phone:     msisdn,
		Note:      "Space booking " + booking.ID,
	})
	if err != nil {
		s.cfg.Log.Error("Mobile money collection failed",
			"booking_id", booking.ID,
			"provider", prov.Name(),
			"error", err,
		)
		return nil, apperrors.Unavailable(prov.Name() + " mobile money")
	}

	if _, err := s.bookings.UpdatePayment(ctx, booking.ID, repository.PaymentFields{
		Status:        model.PaymentPending,
		Method:        "mobile_money",
		Reference:     reference,
		TransactionID: resp.TransactionID,
		Provider:      prov.Name(),
	}); err != nil {
		return nil, apperrors.Internal("Failed to record payment initiation", err)
	}

	s.cfg.Log.Info("Mobile money payment initiated",
		"booking_id", booking.ID,
		"provider", prov.Name(),
		"reference", reference,
	)

	return &InitiateResponse{
		BookingID:        booking.ID,
		PaymentReference: reference,
		TransactionID:    resp.TransactionID,
		Provider:         prov.Name(),
		Amount:           booking.TotalPrice,
		Currency:         s.cfg.PaymentCurrency,
		PaymentStatus:    model.PaymentPending,
	}, nil
}

func (s *paymentService) CheckStatus(ctx context.Context, bookingID string) (*StatusResult, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentTransactionID == "" || booking.PaymentProvider == "" {
		return nil, apperrors.Validation("No payment has been initiated for this booking", nil)
	}

	prov, err := s.provider(booking.PaymentProvider)
	if err != nil {
		return nil, err
	}

	providerStatus, err := prov.Status(ctx, booking.PaymentTransactionID)
	if err != nil {
		s.cfg.Log.Error("Payment status poll failed",
			"booking_id", booking.ID,
			"provider", prov.Name(),
			"error", err,
		)
		return nil, apperrors.Unavailable(prov.Name() + " mobile money")
	}

	switch providerStatus.Status {
	case provider.StatusSuccessful:
		if err := s.reconcileSuccess(ctx, booking); err != nil {
			return nil, err
		}
	case provider.StatusFailed:
		// A failed collection releases nothing: the booking stays in
		// its current state and only the payment axis moves.
		if _, err := s.bookings.UpdatePayment(ctx, booking.ID, repository.PaymentFields{Status: model.PaymentFailed}); err != nil {
			return nil, apperrors.Internal("Failed to record payment failure", err)
		}
		booking.PaymentStatus = model.PaymentFailed
	}

	return &StatusResult{
		BookingID:      booking.ID,
		PaymentStatus:  booking.PaymentStatus,
		BookingStatus:  booking.Status,
		ProviderStatus: providerStatus.Status,
	}, nil
}

// reconcileSuccess marks the payment completed and promotes the
// booking to confirmed through the system-driven edge.
func (s *paymentService) reconcileSuccess(ctx context.Context, booking *model.Booking) error {
	paidAt, err := s.bookings.UpdatePayment(ctx, booking.ID, repository.PaymentFields{Status: model.PaymentCompleted})
	if err != nil {
		return apperrors.Internal("Failed to record payment completion", err)
	}
	booking.PaymentStatus = model.PaymentCompleted
	// The payment write bumped updated_at; the promotion below must pin
	// the bumped token or its filter never matches.
	booking.UpdatedAt = paidAt

	prevStatus := booking.Status
	if err := status.ConfirmOnPayment(booking); err != nil {
		s.cfg.Log.Warn("Paid booking cannot be confirmed",
			"booking_id", booking.ID,
			"status", prevStatus,
		)
		return nil
	}
	if booking.Status == prevStatus {
		return nil
	}

	if err := s.bookings.UpdateStatus(ctx, booking, prevStatus, paidAt); err != nil {
		if errors.Is(err, bookingserrors.ErrStaleBooking) {
			return apperrors.Conflict("Booking was modified by another request. Please retry the status check.")
		}
		return apperrors.Internal("Failed to confirm paid booking", err)
	}

	s.cfg.Log.Info("Booking confirmed on successful payment", "booking_id", booking.ID)

	if s.publisher != nil {
		if err := s.publisher.BookingStatusChanged(ctx, booking, prevStatus); err != nil {
			s.cfg.Log.Warn("Failed to publish booking event", "booking_id", booking.ID, "error", err)
		}
	}
	return nil
}

func (s *paymentService) Methods() []Method {
	methods := []Method{
		{ID: "cash", Label: "Cash on arrival"},
	}
	if s.cfg.MobileMoneyEnabled {
		methods = append(methods,
			Method{ID: "mtn_mobile_money", Label: "MTN Mobile Money", Provider: provider.NameMTN},
			Method{ID: "airtel_money", Label: "Airtel Money", Provider: provider.NameAirtel},
		)
	}
	return methods
}

func (s *paymentService) ValidatePhone(phone string) PhoneValidation {
	normalized := sanitizer.NormalizePhone(phone)
	return PhoneValidation{
		Input:      phone,
		Normalized: normalized,
		MSISDN:     sanitizer.NormalizeMSISDN(phone),
		Valid:      normalized != "",
	}
}

// --- Helpers ---

func (s *paymentService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *paymentService) provider(name string) (provider.Provider, error) {
	prov, ok := s.providers[name]
	if !ok {
		return nil, apperrors.Validation("Unknown payment provider", map[string]any{"provider": name})
	}
	return prov, nil
}
