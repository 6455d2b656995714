// Package status owns the booking lifecycle graph. All transitions are
// decided here; the service layer only persists the outcome.
package status

import (
	apperrors "spacebook/pkg/errors"
	"spacebook/pkg/model"
)

// transitions maps each status to the set of statuses reachable from
// it by an owner-driven update. Terminal statuses map to nothing.
var transitions = map[string]map[string]bool{
	model.StatusPending: {
		model.StatusConfirmed: true,
		model.StatusDeclined:  true,
		model.StatusCancelled: true,
	},
	model.StatusConfirmed: {
		model.StatusCancelled: true,
		model.StatusCompleted: true,
	},
	model.StatusDeclined:  {},
	model.StatusCancelled: {},
	model.StatusCompleted: {},
}

// CanTransition reports whether target is reachable from current.
func CanTransition(current, target string) bool {
	return transitions[current][target]
}

// Transition applies an owner-driven status change to the booking.
// It mutates the booking in memory only; persisting the change (with
// the optimistic filter on the prior state) is the caller's job.
func Transition(b *model.Booking, target, actorID, reason string) error {
	if b.OwnerID != actorID {
		return apperrors.Unauthorized("only the space owner can update this booking")
	}
	if !model.IsValidStatus(target) {
		return apperrors.InvalidInput("unknown status " + target)
	}
	if target == model.StatusPending {
		return apperrors.InvalidTransition(b.Status, target)
	}
	if !CanTransition(b.Status, target) {
		return apperrors.InvalidTransition(b.Status, target)
	}

	b.Status = target
	if target == model.StatusDeclined || target == model.StatusCancelled {
		b.CancellationReason = reason
	}
	return nil
}

// ConfirmOnPayment promotes a booking to confirmed after a successful
// payment. This is the only system-driven edge; it bypasses the owner
// check but is constrained to pending and confirmed bookings.
func ConfirmOnPayment(b *model.Booking) error {
	switch b.Status {
	case model.StatusConfirmed:
		return nil
	case model.StatusPending:
		b.Status = model.StatusConfirmed
		return nil
	default:
		return apperrors.InvalidTransition(b.Status, model.StatusConfirmed)
	}
}
