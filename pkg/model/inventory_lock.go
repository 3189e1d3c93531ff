package model

import "time"

// InventoryLock is a per-room-type document bumped inside the booking
// transaction. Two transactions creating bookings for the same room type both
// write it, so one of them aborts with a write conflict and is retried.
type InventoryLock struct {
	ID        string    `bson:"_id" json:"id"`
	Version   int64     `bson:"version" json:"version"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
