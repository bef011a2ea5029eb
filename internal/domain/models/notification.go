package models

import "time"

// Notification channels.
const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// Notification delivery states.
const (
	NotificationQueued = "queued"
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// Notification is one outbound message to one person, kept as a dispatch log.
type Notification struct {
	ID                string    `bson:"_id" json:"id"` // uuid
	ChurchID          int64     `bson:"church_id" json:"church_id"`
	Channel           string    `bson:"channel" json:"channel"`
	PersonID          int64     `bson:"person_id" json:"person_id"`
	Destination       string    `bson:"destination" json:"destination"`
	Subject           string    `bson:"subject,omitempty" json:"subject,omitempty"`
	Body              string    `bson:"body" json:"body"`
	Status            string    `bson:"status" json:"status"`
	ProviderMessageID string    `bson:"provider_message_id,omitempty" json:"provider_message_id,omitempty"`
	Error             string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}
