package models

import "time"

// Activity is a scheduled event (service, meeting, outreach) with attendance.
type Activity struct {
	ID          int64      `bson:"_id" json:"id"`
	ChurchID    int64      `bson:"church_id" json:"church_id"`
	MinistryID  *int64     `bson:"ministry_id,omitempty" json:"ministry_id,omitempty"`
	Title       string     `bson:"title" json:"title"`
	TitleCI     string     `bson:"title_ci" json:"-"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Location    string     `bson:"location,omitempty" json:"location,omitempty"`
	StartsAt    time.Time  `bson:"starts_at" json:"starts_at"`
	EndsAt      *time.Time `bson:"ends_at,omitempty" json:"ends_at,omitempty"`
	AttendeeIDs []int64    `bson:"attendee_ids" json:"attendee_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
