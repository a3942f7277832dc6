package model

import "time"

// AllocationLock is an advisory lock serializing writes to one room's
// allocation timeline. Uniqueness is enforced by the _id; a TTL index on
// expires_at reaps locks orphaned by a crashed request.
type AllocationLock struct {
	ID        string    `bson:"_id" json:"id"`
	RoomID    string    `bson:"room_id" json:"room_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
