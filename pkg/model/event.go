package model

import (
	"encoding/json"
	"time"
)

// Event is a campus event as it appears in the live feed.
// Interested holds the user ids that toggled interest on.
type Event struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Location    string    `json:"location" bson:"location"`
	StartsAt    time.Time `json:"starts_at" bson:"starts_at"`
	CreatedBy   string    `json:"created_by" bson:"created_by"`
	Interested  []string  `json:"interested" bson:"interested"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

const (
	FeedUpdateCreated         = "created"
	FeedUpdateInterestUpdated = "interestUpdated"
)

// FeedUpdate is the room-scoped delta pushed to feed subscribers.
// Data is a full Event for "created", or an InterestUpdate for "interestUpdated".
type FeedUpdate struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type InterestUpdate struct {
	EventID string `json:"eventId"`
	Event   Event  `json:"event"`
}
