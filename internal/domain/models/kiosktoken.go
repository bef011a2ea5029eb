package models

import "time"

// KioskToken authorizes an unattended visitor-registration device for one church.
// Only the bcrypt hash of the secret is stored.
type KioskToken struct {
	ID         string     `bson:"_id" json:"id"` // uuid, also the public half of the token
	ChurchID   int64      `bson:"church_id" json:"church_id"`
	Label      string     `bson:"label" json:"label"`
	SecretHash string     `bson:"secret_hash" json:"-"`
	Revoked    bool       `bson:"revoked" json:"revoked"`
	LastUsedAt *time.Time `bson:"last_used_at,omitempty" json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
}
