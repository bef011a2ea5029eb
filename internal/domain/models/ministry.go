package models

import "time"

// Ministry is a service team inside a church (worship, youth, ushers...).
type Ministry struct {
	ID          int64   `bson:"_id" json:"id"`
	ChurchID    int64   `bson:"church_id" json:"church_id"`
	Name        string  `bson:"name" json:"name"`
	NameCI      string  `bson:"name_ci" json:"-"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	LeaderID    *int64  `bson:"leader_id,omitempty" json:"leader_id,omitempty"`
	MemberIDs   []int64 `bson:"member_ids" json:"member_ids"`
	Status      string  `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
