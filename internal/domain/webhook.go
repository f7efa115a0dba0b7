package domain

import "time"

// WebhookEvent is a verified inbound webhook delivery.
type WebhookEvent struct {
	Topic     string    `json:"topic" bson:"topic"`
	Shop      string    `json:"shop" bson:"shop"`
	Payload   []byte    `json:"payload" bson:"payload"`
	Verified  bool      `json:"verified" bson:"verified"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
