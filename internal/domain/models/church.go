package models

import "time"

// Church represents a top-level tenant (an "iglesia").
// Each church is isolated from others; every person, family, ministry,
// activity and notification belongs to exactly one church via church_id.
type Church struct {
	ID     int64  `bson:"_id" json:"id"`
	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"-"`

	// Slug is unique across churches and used by operators and the CLI.
	Slug     string `bson:"slug" json:"slug"`
	TimeZone string `bson:"time_zone,omitempty" json:"time_zone,omitempty"`

	// Status: "active" or "disabled". Only active churches are processed
	// by the periodic automation job.
	Status string `bson:"status" json:"status"`

	// Sender identities used for outbound notifications. Blank values fall
	// back to the service-wide defaults.
	SMSFrom      string `bson:"sms_from,omitempty" json:"sms_from,omitempty"`
	WhatsAppFrom string `bson:"whatsapp_from,omitempty" json:"whatsapp_from,omitempty"`
	EmailFrom    string `bson:"email_from,omitempty" json:"email_from,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
