package model

import (
	"time"
)

// Booking statuses. Pending is the only creation state; declined,
// cancelled and completed are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Payment statuses form an independent axis from booking status. The
// only coupling is that a completed payment may promote the booking to
// confirmed.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
)

// Booking kinds.
const (
	KindSingle     = "single"
	KindMultiNight = "multi_night"
)

// BookingStatuses lists every valid booking status.
var BookingStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusDeclined,
	StatusCancelled,
	StatusCompleted,
}

// IsValidStatus reports whether s is a known booking status.
func IsValidStatus(s string) bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ClientInfo is a snapshot of the requesting client's contact details
// taken at booking time. It is not a live reference to a user account.
type ClientInfo struct {
	Name  string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" bson:"email" validate:"required,email"`
	Phone string `json:"phone" bson:"phone" validate:"required"`
}

// SingleStay holds the interval fields of a single-day booking.
// StartTime and EndTime must fall on EventDate with StartTime before
// EndTime.
type SingleStay struct {
	EventDate time.Time `json:"event_date" bson:"event_date" validate:"required"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
}

// MultiNightStay holds the date range of a multi-night booking,
// half-open: the guest checks out on CheckOutDate.
type MultiNightStay struct {
	CheckInDate  time.Time `json:"check_in_date" bson:"check_in_date" validate:"required"`
	CheckOutDate time.Time `json:"check_out_date" bson:"check_out_date" validate:"required,gtfield=CheckInDate"`
}

// Booking is the core reservation entity. Exactly one of Single or
// MultiNight is populated, matching Kind. SlotStart/SlotEnd are the
// derived half-open interval used for conflict checks and sorting
// regardless of kind.
type Booking struct {
	ID      string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SpaceID string `json:"space_id" bson:"space_id" validate:"required,mongodb"`
	// OwnerID is denormalized from the space at creation time so that
	// authorization checks and owner stats never need a join.
	OwnerID  string `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	ClientID string `json:"client_id" bson:"client_id" validate:"required"`

	Client ClientInfo `json:"client" bson:"client"`

	Kind       string          `json:"kind" bson:"kind" validate:"required,oneof=single multi_night"`
	Single     *SingleStay     `json:"single,omitempty" bson:"single,omitempty"`
	MultiNight *MultiNightStay `json:"multi_night,omitempty" bson:"multi_night,omitempty"`

	SlotStart time.Time `json:"slot_start" bson:"slot_start"`
	SlotEnd   time.Time `json:"slot_end" bson:"slot_end"`

	Attendees       int    `json:"attendees" bson:"attendees" validate:"min=1"`
	EventType       string `json:"event_type,omitempty" bson:"event_type,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty" bson:"special_requests,omitempty" validate:"omitempty,max=1000"`

	TotalPrice float64 `json:"total_price" bson:"total_price" validate:"min=0"`

	Status             string `json:"status" bson:"status" validate:"required,oneof=pending confirmed declined cancelled completed"`
	CancellationReason string `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`

	PaymentStatus        string `json:"payment_status" bson:"payment_status" validate:"required,oneof=pending completed failed cancelled"`
	PaymentMethod        string `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	PaymentReference     string `json:"payment_reference,omitempty" bson:"payment_reference,omitempty"`
	PaymentTransactionID string `json:"payment_transaction_id,omitempty" bson:"payment_transaction_id,omitempty"`
	PaymentProvider      string `json:"payment_provider,omitempty" bson:"payment_provider,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	// UpdatedAt doubles as the optimistic concurrency token for status
	// transitions.
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// IsTerminal reports whether the booking sits in a state with no
// outgoing transitions.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case StatusDeclined, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Interval returns the comparable half-open [start, end) interval of
// the booking, valid for any kind.
func (b *Booking) Interval() (time.Time, time.Time) {
	return b.SlotStart, b.SlotEnd
}

// Nights returns the number of charged nights for a multi-night
// booking, rounding partial days up. Zero for other kinds.
func (b *Booking) Nights() int {
	if b.MultiNight == nil {
		return 0
	}
	return NightsBetween(b.MultiNight.CheckInDate, b.MultiNight.CheckOutDate)
}

// Overlaps reports whether the half-open intervals [s1, e1) and
// [s2, e2) intersect. Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// NightsBetween counts nights between two dates, rounding partial days
// up. An 18 hour stay is charged as one night.
func NightsBetween(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}
