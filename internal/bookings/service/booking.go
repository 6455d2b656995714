package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "spacebook/internal/bookings/errors"
	"spacebook/internal/bookings/pricing"
	"spacebook/internal/bookings/repository"
	"spacebook/internal/bookings/status"
	"spacebook/internal/bookings/validator"
	"spacebook/internal/notifications"
	spacerepo "spacebook/internal/spaces/repository"
	"spacebook/pkg/config"
	apperrors "spacebook/pkg/errors"
	"spacebook/pkg/model"
	"spacebook/pkg/sanitizer"
)

type BookingService interface {
	// Create books a space for the requesting client. The caller sets
	// ClientID on the booking from the authenticated actor.
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id, actorID string) (*model.Booking, error)
	ListForOwner(ctx context.Context, ownerID string, filter repository.ListFilter) ([]*model.Booking, int64, error)
	ListForClient(ctx context.Context, clientID string, filter repository.ListFilter) ([]*model.Booking, int64, error)
	UpdateStatus(ctx context.Context, id, target, actorID, reason string) (*model.Booking, error)
	OwnerStats(ctx context.Context, ownerID string) (*model.OwnerStats, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	spaceRepo spacerepo.SpaceRepository
	validator *validator.BookingValidator
	publisher notifications.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	spaceRepo spacerepo.SpaceRepository,
	bookingValidator *validator.BookingValidator,
	publisher notifications.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		spaceRepo: spaceRepo,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)
	s.sanitize(booking)

	// The catalog lookup cannot distinguish a blank ID from a missing
	// space, so reject it here as the validation error it is.
	if booking.SpaceID == "" {
		return apperrors.Validation("Booking validation failed", map[string]any{
			"SpaceID": "SpaceID is required",
		})
	}

	space, err := s.spaceRepo.FindBookable(ctx, booking.SpaceID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.Internal("Failed to resolve space", err)
	}

	booking.OwnerID = space.OwnerID
	deriveSlot(booking)
	// Price is computed server-side from the catalog policy; whatever
	// the client sent is discarded.
	booking.TotalPrice = pricing.ForBooking(space.Price, booking)

	if err := s.validate(booking); err != nil {
		return err
	}

	if booking.Kind == model.KindSingle {
		err = s.createWithConflictCheck(ctx, booking)
	} else {
		err = s.repo.Create(ctx, booking)
		if err != nil {
			err = apperrors.Internal("Failed to create booking", err)
		}
	}
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "space_id", booking.SpaceID, "error", err)
		return err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"space_id", booking.SpaceID,
		"kind", booking.Kind,
		"slot_start", booking.SlotStart,
		"total_price", booking.TotalPrice,
	)

	s.publish(ctx, func(ctx context.Context) error {
		return s.publisher.BookingCreated(ctx, booking)
	})
	return nil
}

// createWithConflictCheck serializes the check-then-insert sequence:
// an advisory per-space lock keeps concurrent creates out, and the
// overlap query plus insert run in one transaction.
func (s *bookingService) createWithConflictCheck(ctx context.Context, booking *model.Booking) error {
	lockID, err := s.acquireSpaceLock(ctx, booking.SpaceID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSpaceLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
}

func (s *bookingService) GetByID(ctx context.Context, id, actorID string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actorID {
		return nil, apperrors.Unauthorized("You do not have access to this booking")
	}

	return booking, nil
}

func (s *bookingService) ListForOwner(ctx context.Context, ownerID string, filter repository.ListFilter) ([]*model.Booking, int64, error) {
	filter.OwnerID = ownerID
	filter.ClientID = ""
	return s.list(ctx, filter)
}

func (s *bookingService) ListForClient(ctx context.Context, clientID string, filter repository.ListFilter) ([]*model.Booking, int64, error) {
	filter.ClientID = clientID
	filter.OwnerID = ""
	return s.list(ctx, filter)
}

func (s *bookingService) list(ctx context.Context, filter repository.ListFilter) ([]*model.Booking, int64, error) {
	// Unknown status values are dropped rather than rejected so stale
	// client filters degrade to an unfiltered listing.
	if filter.Status != "" && !model.IsValidStatus(filter.Status) {
		filter.Status = ""
	}

	bookings, total, err := s.repo.FindWithFilter(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, total, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id, target, actorID, reason string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	prevStatus := booking.Status
	prevUpdatedAt := booking.UpdatedAt

	if err := status.Transition(booking, target, actorID, reason); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, booking, prevStatus, prevUpdatedAt); err != nil {
		if errors.Is(err, bookingserrors.ErrStaleBooking) {
			return nil, apperrors.Conflict("Booking was modified by another request. Please reload and retry.")
		}
		s.cfg.Log.Error("Failed to update booking status", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	s.cfg.Log.Info("Booking status updated",
		"id", booking.ID,
		"from", prevStatus,
		"to", booking.Status,
	)

	s.publish(ctx, func(ctx context.Context) error {
		return s.publisher.BookingStatusChanged(ctx, booking, prevStatus)
	})
	return booking, nil
}

func (s *bookingService) OwnerStats(ctx context.Context, ownerID string) (*model.OwnerStats, error) {
	spaceIDs, err := s.spaceRepo.OwnedSpaceIDs(ctx, ownerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list owned spaces for stats", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking stats", err)
	}
	// An owner with no spaces has an empty dashboard, not an error.
	if len(spaceIDs) == 0 {
		return &model.OwnerStats{}, nil
	}

	stats, err := s.repo.OwnerStats(ctx, spaceIDs, time.Now().UTC())
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate booking stats", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking stats", err)
	}
	return stats, nil
}

// --- Helpers ---

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
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

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.StatusPending
	}
	b.PaymentStatus = model.PaymentPending
	if b.Attendees <= 0 {
		b.Attendees = 1
	}
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.Client.Name = sanitizer.NormalizeName(b.Client.Name)
	b.Client.Email = sanitizer.NormalizeEmail(b.Client.Email)
	b.Client.Phone = sanitizer.NormalizePhone(b.Client.Phone)
	b.EventType = sanitizer.TrimAndNormalize(b.EventType)
	b.SpecialRequests = sanitizer.TrimAndNormalize(b.SpecialRequests)
}

// deriveSlot projects the kind-specific interval onto the uniform
// slot_start/slot_end pair every query runs against.
func deriveSlot(b *model.Booking) {
	switch {
	case b.Kind == model.KindSingle && b.Single != nil:
		b.SlotStart = b.Single.StartTime
		b.SlotEnd = b.Single.EndTime
	case b.Kind == model.KindMultiNight && b.MultiNight != nil:
		b.SlotStart = b.MultiNight.CheckInDate
		b.SlotEnd = b.MultiNight.CheckOutDate
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return apperrors.Validation("Booking validation failed", validationErrs.Fields())
		}
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) verifyNoOverlap(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindOverlapping(ctx, booking.SpaceID, booking.SlotStart, booking.SlotEnd, s.cfg.MaxOverlapCheck)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if b.ID == booking.ID {
			continue
		}
		if !model.Overlaps(b.SlotStart, b.SlotEnd, booking.SlotStart, booking.SlotEnd) {
			continue
		}
		return apperrors.Conflict(fmt.Sprintf(
			"The space is already booked from %s to %s",
			b.SlotStart.Format(time.RFC3339),
			b.SlotEnd.Format(time.RFC3339),
		))
	}
	return nil
}

// acquireSpaceLock takes one lock per space, not per slot. Intervals
// are arbitrary, so two overlapping requests with different start
// times must still contend on the same key; the transaction alone
// cannot detect their write skew.
func (s *bookingService) acquireSpaceLock(ctx context.Context, spaceID string) (string, error) {
	lockID := "booking_lock_" + spaceID

	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	if err := s.lockRepo.Acquire(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This space is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSpaceLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Release(ctx, lockID)
}

// publish runs fn best-effort. Notification delivery never fails a
// booking operation.
func (s *bookingService) publish(ctx context.Context, fn func(context.Context) error) {
	if s.publisher == nil {
		return
	}
	if err := fn(ctx); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "error", err)
	}
}
