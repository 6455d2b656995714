// Package notifications defines the booking event contracts shared by
// the publishing side (booking service) and the notifier worker.
package notifications

import (
	"time"

	"spacebook/pkg/model"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is the wire payload for both event types. For
// status_changed events PreviousStatus carries the state the booking
// left.
type BookingEvent struct {
	BookingID      string    `json:"booking_id"`
	SpaceID        string    `json:"space_id"`
	OwnerID        string    `json:"owner_id"`
	ClientName     string    `json:"client_name"`
	ClientEmail    string    `json:"client_email"`
	ClientPhone    string    `json:"client_phone"`
	Kind           string    `json:"kind"`
	SlotStart      time.Time `json:"slot_start"`
	SlotEnd        time.Time `json:"slot_end"`
	TotalPrice     float64   `json:"total_price"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func eventFromBooking(b *model.Booking) BookingEvent {
	return BookingEvent{
		BookingID:   b.ID,
		SpaceID:     b.SpaceID,
		OwnerID:     b.OwnerID,
		ClientName:  b.Client.Name,
		ClientEmail: b.Client.Email,
		ClientPhone: b.Client.Phone,
		Kind:        b.Kind,
		SlotStart:   b.SlotStart,
		SlotEnd:     b.SlotEnd,
		TotalPrice:  b.TotalPrice,
		Status:      b.Status,
		OccurredAt:  time.Now().UTC(),
	}
}
