package service

import (
	"context"
	"io"
	"testing"
	"time"

	bookingserrors "spacebook/internal/bookings/errors"
	"spacebook/internal/bookings/repository"
	"spacebook/internal/payments/provider"
	"spacebook/pkg/config"
	mongotx "spacebook/pkg/db/mongo"
	apperrors "spacebook/pkg/errors"
	"spacebook/pkg/logger"
	"spacebook/pkg/model"
)

const bookingID = "665f1c0a9b3e2d0001a4f100"

// --- Mocks ---

type mockBookingRepo struct {
	findByIDFn      func(ctx context.Context, id string) (*model.Booking, error)
	updatePaymentFn func(ctx context.Context, id string, fields repository.PaymentFields) (time.Time, error)
	updateStatusFn  func(ctx context.Context, booking *model.Booking, prevStatus string, prevUpdatedAt time.Time) error
}

func (m *mockBookingRepo) Create(context.Context, *model.Booking) error { return nil }

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockBookingRepo) FindWithFilter(context.Context, repository.ListFilter) ([]*model.Booking, int64, error) {
	return nil, 0, nil
}

func (m *mockBookingRepo) FindOverlapping(context.Context, string, time.Time, time.Time, int) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, booking *model.Booking, prevStatus string, prevUpdatedAt time.Time) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, booking, prevStatus, prevUpdatedAt)
	}
	return nil
}

func (m *mockBookingRepo) UpdatePayment(ctx context.Context, id string, fields repository.PaymentFields) (time.Time, error) {
	if m.updatePaymentFn != nil {
		return m.updatePaymentFn(ctx, id, fields)
	}
	return time.Now().UTC().Truncate(time.Millisecond), nil
}

func (m *mockBookingRepo) OwnerStats(context.Context, []string, time.Time) (*model.OwnerStats, error) {
	return nil, nil
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockProvider struct {
	name           string
	requestToPayFn func(ctx context.Context, req provider.PaymentRequest) (*provider.PaymentResponse, error)
	statusFn       func(ctx context.Context, reference string) (*provider.StatusResponse, error)
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) RequestToPay(ctx context.Context, req provider.PaymentRequest) (*provider.PaymentResponse, error) {
	return m.requestToPayFn(ctx, req)
}

func (m *mockProvider) Status(ctx context.Context, reference string) (*provider.StatusResponse, error) {
	return m.statusFn(ctx, reference)
}

// --- Fixtures ---

func testConfig(mobileMoney bool) *config.Config {
	return &config.Config{
		MobileMoneyEnabled: mobileMoney,
		PaymentCurrency:    "UGX",
		Log:                logger.New(logger.Config{Level: "error", Format: logger.FormatText, Output: io.Discard}),
	}
}

func pendingBooking() *model.Booking {
	return &model.Booking{
		ID:            bookingID,
		OwnerID:       "665f1c0a9b3e2d0001a4f002",
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
		TotalPrice:    150000,
		UpdatedAt:     time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

func initiatedBooking() *model.Booking {
	b := pendingBooking()
	b.PaymentMethod = "mobile_money"
	b.PaymentReference = "BOOKING_" + bookingID + "_1756500000000"
	b.PaymentTransactionID = "9f3a7c1e-4b2d-4e8a-9c5f-d1e2f3a4b5c6"
	b.PaymentProvider = provider.NameMTN
	return b
}

func newService(repo *mockBookingRepo, prov *mockProvider, cfg *config.Config) PaymentService {
	providers := map[string]provider.Provider{}
	if prov != nil {
		providers[prov.name] = prov
	}
	return NewPaymentService(repo, providers, nil, cfg)
}

// --- Tests ---

func TestInitiateMobileMoney(t *testing.T) {
	t.Run("feature flag off", func(t *testing.T) {
		svc := newService(&mockBookingRepo{}, nil, testConfig(false))
		_, err := svc.InitiateMobileMoney(context.Background(), InitiateRequest{BookingID: bookingID})
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeUnavailable {
			t.Fatalf("expected UNAVAILABLE when mobile money is disabled, got %v", err)
		}
	})

	t.Run("amount mismatch", func(t *testing.T) {
		repo := &mockBookingRepo{
			findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
				return pendingBooking(), nil
			},
		}
		svc := newService(repo, nil, testConfig(true))

		_, err := svc.InitiateMobileMoney(context.Background(), InitiateRequest{
			BookingID:   bookingID,
			PhoneNumber: "0772123456",
			Provider:    provider.NameMTN,
			Amount:      100000,
		})
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeValidation {
			t.Fatalf("expected VALIDATION_ERROR for amount mismatch, got %v", err)
		}
	})

	t.Run("invalid phone", func(t *testing.T) {
		repo := &mockBookingRepo{
			findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
				return pendingBooking(), nil
			},
		}
		svc := newService(repo, nil, testConfig(true))

		_, err := svc.InitiateMobileMoney(context.Background(), InitiateRequest{
			BookingID:   bookingID,
			PhoneNumber: "12345",
			Provider:    provider.NameMTN,
			Amount:      150000,
		})
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeValidation {
			t.Fatalf("expected VALIDATION_ERROR for bad phone, got %v", err)
		}
	})

	t.Run("successful initiation records payment fields", func(t *testing.T) {
		var recorded repository.PaymentFields
		repo := &mockBookingRepo{
			findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
				return pendingBooking(), nil
			},
			updatePaymentFn: func(_ context.Context, _ string, fields repository.PaymentFields) (time.Time, error) {
				recorded = fields
				return time.Now().UTC(), nil
			},
		}
		var seenReq provider.PaymentRequest
		prov := &mockProvider{
			name: provider.NameMTN,
			requestToPayFn: func(_ context.Context, req provider.PaymentRequest) (*provider.PaymentResponse, error) {
				seenReq = req
				return &provider.PaymentResponse{TransactionID: "tx-1", Status: provider.StatusPending}, nil
			},
		}
		svc := newService(repo, prov, testConfig(true))

		resp, err := svc.InitiateMobileMoney(context.Background(), InitiateRequest{
			BookingID:   bookingID,
			PhoneNumber: "0772123456",
			Provider:    provider.NameMTN,
			Amount:      150000,
		})
		if err != nil {
			t.Fatalf("InitiateMobileMoney() = %v", err)
		}

		if seenReq.Phone != "256772123456" {
			t.Errorf("provider phone = %s, want MSISDN 256772123456", seenReq.Phone)
		}
		if seenReq.Currency != "UGX" {
			t.Errorf("currency = %s, want UGX", seenReq.Currency)
		}
		wantPrefix := "BOOKING_" + bookingID + "_"
		if len(resp.PaymentReference) <= len(wantPrefix) || resp.PaymentReference[:len(wantPrefix)] != wantPrefix {
			t.Errorf("reference = %s, want prefix %s", resp.PaymentReference, wantPrefix)
		}
		if recorded.Status != model.PaymentPending || recorded.Provider != provider.NameMTN || recorded.TransactionID != "tx-1" {
			t.Errorf("recorded payment fields = %+v", recorded)
		}
	})

	t.Run("already paid booking rejected", func(t *testing.T) {
		repo := &mockBookingRepo{
			findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
				b := pendingBooking()
				b.PaymentStatus = model.PaymentCompleted
				return b, nil
			},
		}
		svc := newService(repo, nil, testConfig(true))

		_, err := svc.InitiateMobileMoney(context.Background(), InitiateRequest{
			BookingID:   bookingID,
			PhoneNumber: "0772123456",
			Provider:    provider.NameMTN,
			Amount:      150000,
		})
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeConflict {
			t.Fatalf("expected CONFLICT for paid booking, got %v", err)
		}
	})
}

func TestCheckStatus(t *testing.T) {
	t.Run("successful payment confirms booking", func(t *testing.T) {
		var paymentUpdate repository.PaymentFields
		var statusPersisted bool
		repo := &mockBookingRepo{
			findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
				return initiatedBooking(), nil
			},
			updatePaymentFn: func(_ context.Context, _ string, fields repository.PaymentFields) (time.Time, error) {
				paymentUpdate = fields
				return time.Now().UTC(), nil
			},
			updateStatusFn: func(_ context.Context, b *model.Booking, prevStatus string, _ time.Time) error {
				statusPersisted = true
				if prevStatus != model.StatusPending || b.Status != model.StatusConfirmed {
					t.Errorf("transition %s -> %s, want pending -> confirmed", prevStatus, b.Status)
				}
				return nil
			},
		}
		prov := &mockProvider{
			name: provider.NameMTN,
			statusFn: func(_ context.Context, _ string) (*provider.StatusResponse, error) {
				return &provider.StatusResponse{Status: provider.StatusSuccessful}, nil
			},
		}
		svc := newService(repo, prov, testConfig(true))

		result, err := svc.CheckStatus(context.Background(), bookingID)
		if err != nil {
			t.Fatalf("CheckStatus() = %v", err)
		}
		if paymentUpdate.Status != model.PaymentCompleted {
			t.Errorf("payment_status update = %s, want completed", paymentUpdate.Status)
		}
		if !statusPersisted {
			t.Error("booking confirmation was not persisted")
		}
		if result.BookingStatus != model.StatusConfirmed || result.PaymentStatus != model.PaymentCompleted {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("promotion pins the updated_at bumped by the payment write", func(t *testing.T) {
		// Stateful fake with the real repository's semantics: every
		// payment write bumps updated_at, and the status update only
		// matches on the stored status plus updated_at pair.
		stored := initiatedBooking()
		repo := &mockBookingRepo{
			findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
				loaded := *stored
				return &loaded, nil
			},
			updatePaymentFn: func(_ context.Context, _ string, fields repository.PaymentFields) (time.Time, error) {
				if fields.Status != "" {
					stored.PaymentStatus = fields.Status
				}
				stored.UpdatedAt = stored.UpdatedAt.Add(250 * time.Millisecond)
				return stored.UpdatedAt, nil
			},
			updateStatusFn: func(_ context.Context, b *model.Booking, prevStatus string, prevUpdatedAt time.Time) error {
				if prevStatus != stored.Status || !prevUpdatedAt.Equal(stored.UpdatedAt) {
					return bookingserrors.ErrStaleBooking
				}
				stored.Status = b.Status
				stored.UpdatedAt = stored.UpdatedAt.Add(250 * time.Millisecond)
				return nil
			},
		}
		prov := &mockProvider{
			name: provider.NameMTN,
			statusFn: func(_ context.Context, _ string) (*provider.StatusResponse, error) {
				return &provider.StatusResponse{Status: provider.StatusSuccessful}, nil
			},
		}
		svc := newService(repo, prov, testConfig(true))

		result, err := svc.CheckStatus(context.Background(), bookingID)
		if err != nil {
			t.Fatalf("CheckStatus() = %v", err)
		}
		if stored.Status != model.StatusConfirmed {
			t.Errorf("stored booking status = %s, want confirmed", stored.Status)
		}
		if stored.PaymentStatus != model.PaymentCompleted {
			t.Errorf("stored payment status = %s, want completed", stored.PaymentStatus)
		}
		if result.BookingStatus != model.StatusConfirmed {
			t.Errorf("result booking status = %s, want confirmed", result.BookingStatus)
		}
	})

	t.Run("failed payment leaves booking status untouched", func(t *testing.T) {
		var paymentUpdate repository.PaymentFields
		repo := &mockBookingRepo{
			findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
				return initiatedBooking(), nil
			},
			updatePaymentFn: func(_ context.Context, _ string, fields repository.PaymentFields) (time.Time, error) {
				paymentUpdate = fields
				return time.Now().UTC(), nil
			},
			updateStatusFn: func(_ context.Context, _ *model.Booking, _ string, _ time.Time) error {
				t.Fatal("a failed payment must not touch the booking status")
				return nil
			},
		}
		prov := &mockProvider{
			name: provider.NameMTN,
			statusFn: func(_ context.Context, _ string) (*provider.StatusResponse, error) {
				return &provider.StatusResponse{Status: provider.StatusFailed}, nil
			},
		}
		svc := newService(repo, prov, testConfig(true))

		result, err := svc.CheckStatus(context.Background(), bookingID)
		if err != nil {
			t.Fatalf("CheckStatus() = %v", err)
		}
		if paymentUpdate.Status != model.PaymentFailed {
			t.Errorf("payment_status update = %s, want failed", paymentUpdate.Status)
		}
		if result.BookingStatus != model.StatusPending {
			t.Errorf("booking status = %s, want pending", result.BookingStatus)
		}
	})

	t.Run("no initiated payment", func(t *testing.T) {
		repo := &mockBookingRepo{
			findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
				return pendingBooking(), nil
			},
		}
		svc := newService(repo, nil, testConfig(true))

		_, err := svc.CheckStatus(context.Background(), bookingID)
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeValidation {
			t.Fatalf("expected VALIDATION_ERROR, got %v", err)
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		repo := &mockBookingRepo{
			findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
				return nil, bookingserrors.ErrNotFound
			},
		}
		svc := newService(repo, nil, testConfig(true))

		_, err := svc.CheckStatus(context.Background(), bookingID)
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeNotFound {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})
}

func TestMethods(t *testing.T) {
	svc := newService(&mockBookingRepo{}, nil, testConfig(false))
	methods := svc.Methods()
	if len(methods) != 1 || methods[0].ID != "cash" {
		t.Errorf("with mobile money off methods = %+v, want cash only", methods)
	}

	svc = newService(&mockBookingRepo{}, nil, testConfig(true))
	methods = svc.Methods()
	if len(methods) != 3 {
		t.Errorf("with mobile money on got %d methods, want 3", len(methods))
	}
}

func TestValidatePhone(t *testing.T) {
	svc := newService(&mockBookingRepo{}, nil, testConfig(true))

	valid := svc.ValidatePhone("0772123456")
	if !valid.Valid || valid.Normalized != "+256772123456" || valid.MSISDN != "256772123456" {
		t.Errorf("ValidatePhone(0772123456) = %+v", valid)
	}

	invalid := svc.ValidatePhone("12345")
	if invalid.Valid {
		t.Errorf("ValidatePhone(12345) reported valid")
	}
}
