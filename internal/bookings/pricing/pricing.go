// Package pricing computes booking totals from a space's price policy.
// It is pure: callers guarantee intervals are validated (positive
// duration) before anything reaches this package.
package pricing

import (
	"time"

	"spacebook/pkg/model"
)

// hourlyRateNightEquivalent is the documented policy for booking an
// hourly-priced space overnight: each night is charged as 24 hours.
const hourlyRateNightEquivalent = 24

// ForSingle prices a same-day booking over [start, end).
func ForSingle(policy model.PricePolicy, start, end time.Time) float64 {
	switch policy.Unit {
	case model.UnitHour:
		hours := end.Sub(start).Hours()
		return policy.Amount * hours
	case model.UnitDay:
		// One day charged regardless of sub-day duration.
		return policy.Amount
	default:
		// Event pricing is flat.
		return policy.Amount
	}
}

// ForMultiNight prices a stay between check-in and check-out. Partial
// days round up to a full night.
func ForMultiNight(policy model.PricePolicy, checkIn, checkOut time.Time) float64 {
	nights := model.NightsBetween(checkIn, checkOut)

	switch policy.Unit {
	case model.UnitHour:
		return policy.Amount * hourlyRateNightEquivalent * float64(nights)
	case model.UnitDay:
		return policy.Amount * float64(nights)
	default:
		return policy.Amount
	}
}

// ForBooking dispatches on the booking kind.
func ForBooking(policy model.PricePolicy, b *model.Booking) float64 {
	if b.Kind == model.KindMultiNight && b.MultiNight != nil {
		return ForMultiNight(policy, b.MultiNight.CheckInDate, b.MultiNight.CheckOutDate)
	}
	if b.Single != nil {
		return ForSingle(policy, b.Single.StartTime, b.Single.EndTime)
	}
	return 0
}
