package model

// OwnerStats aggregates bookings across all spaces of one owner.
// Revenue sums total_price over confirmed and completed bookings only;
// Upcoming counts confirmed bookings whose slot has not started yet.
type OwnerStats struct {
	TotalBookings     int64   `json:"total_bookings"`
	PendingBookings   int64   `json:"pending_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	DeclinedBookings  int64   `json:"declined_bookings"`
	CancelledBookings int64   `json:"cancelled_bookings"`
	CompletedBookings int64   `json:"completed_bookings"`
	UpcomingBookings  int64   `json:"upcoming_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
}
