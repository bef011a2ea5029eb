package models

import "time"

// Family groups persons living together. Membership is stored on the
// person (family_id), not embedded here.
type Family struct {
	ID       int64  `bson:"_id" json:"id"`
	ChurchID int64  `bson:"church_id" json:"church_id"`
	Name     string `bson:"name" json:"name"`
	NameCI   string `bson:"name_ci" json:"-"`
	Address  string `bson:"address,omitempty" json:"address,omitempty"`
	Notes    string `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
