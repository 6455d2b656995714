package model

import "time"

// BookingLock is an advisory lock keyed on the space. Inserting it
// guards the conflict-check-then-create sequence: concurrent create
// requests for the same space collide on the _id unique index and the
// loser is rejected before it can double-book.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
