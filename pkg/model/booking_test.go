package model

import (
	"testing"
	"time"
)

func at(h int) time.Time {
	return time.Date(2026, 10, 3, h, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical intervals", at(10), at(12), at(10), at(12), true},
		{"partial overlap", at(10), at(12), at(11), at(13), true},
		{"containment", at(10), at(14), at(11), at(12), true},
		{"touching endpoints do not overlap", at(10), at(12), at(12), at(14), false},
		{"disjoint", at(8), at(9), at(12), at(14), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// The predicate is symmetric in its two intervals.
			if got := Overlaps(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.want {
				t.Errorf("Overlaps() not symmetric for %s", tt.name)
			}
		})
	}
}

func TestNightsBetween(t *testing.T) {
	checkIn := time.Date(2026, 10, 3, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		checkOut time.Time
		want     int
	}{
		{"exact three days", checkIn.AddDate(0, 0, 3), 3},
		{"eighteen hour stay is one night", checkIn.Add(18 * time.Hour), 1},
		{"two and a half days round up", checkIn.Add(60 * time.Hour), 3},
		{"zero duration", checkIn, 0},
		{"negative range", checkIn.Add(-24 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NightsBetween(checkIn, tt.checkOut); got != tt.want {
				t.Errorf("NightsBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBookingIsTerminal(t *testing.T) {
	for status, want := range map[string]bool{
		StatusPending:   false,
		StatusConfirmed: false,
		StatusDeclined:  true,
		StatusCancelled: true,
		StatusCompleted: true,
	} {
		b := &Booking{Status: status}
		if got := b.IsTerminal(); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", status, got, want)
		}
	}
}
