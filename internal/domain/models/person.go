package models

import "time"

// PersonType is the age bucket derived from a person's birth date.
// It is recomputed by the automation rules and is never taken as authoritative input.
type PersonType string

const (
	TypeChild      PersonType = "CHILD"
	TypeAdolescent PersonType = "ADOLESCENT"
	TypeYoungAdult PersonType = "YOUNG_ADULT"
	TypeAdult      PersonType = "ADULT"
	TypeMiddleAged PersonType = "MIDDLE_AGED"
	TypeSenior     PersonType = "SENIOR"
)

// Role distinguishes members from visitors on the unified person record.
type Role string

const (
	RoleMember  Role = "MEMBER"
	RoleVisitor Role = "VISITOR"
)

// Status is the membership status of a person.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusNew       Status = "NEW"
	StatusRecurring Status = "RECURRING"
	StatusInactive  Status = "INACTIVE"
)

// Person is one real individual tracked by a church.
//
// NOTE:
//   - Members and visitors share this record; Role tells them apart.
//   - A converted visitor keeps its row (Status INACTIVE, ConvertedToID set)
//     and the member lives on as a new row with ConvertedFromID pointing back.
type Person struct {
	ID       int64 `bson:"_id" json:"id"`
	ChurchID int64 `bson:"church_id" json:"church_id"`

	FirstName     string     `bson:"first_name" json:"first_name"`
	LastName      string     `bson:"last_name" json:"last_name"`
	FullNameCI    string     `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email         string     `bson:"email,omitempty" json:"email,omitempty"`
	Phone         string     `bson:"phone,omitempty" json:"phone,omitempty"`
	WhatsApp      string     `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
	Address       string     `bson:"address,omitempty" json:"address,omitempty"`
	BirthDate     *time.Time `bson:"birth_date,omitempty" json:"birth_date,omitempty"`
	Sex           string     `bson:"sex,omitempty" json:"sex,omitempty"`
	MaritalStatus string     `bson:"marital_status,omitempty" json:"marital_status,omitempty"`
	Occupation    string     `bson:"occupation,omitempty" json:"occupation,omitempty"`
	PhotoURL      string     `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Notes         string     `bson:"notes,omitempty" json:"notes,omitempty"`

	Type   PersonType `bson:"type,omitempty" json:"type,omitempty"`
	Role   Role       `bson:"role" json:"role"`
	Status Status     `bson:"status" json:"status"`

	IntakeDate  *time.Time `bson:"intake_date,omitempty" json:"intake_date,omitempty"`
	BaptismDate *time.Time `bson:"baptism_date,omitempty" json:"baptism_date,omitempty"`
	ConvertedAt *time.Time `bson:"converted_at,omitempty" json:"converted_at,omitempty"`

	FamilyID           *int64 `bson:"family_id,omitempty" json:"family_id,omitempty"`
	FamilyRelationship string `bson:"family_relationship,omitempty" json:"family_relationship,omitempty"`
	ConvertedFromID    *int64 `bson:"converted_from_id,omitempty" json:"converted_from_id,omitempty"`
	ConvertedToID      *int64 `bson:"converted_to_id,omitempty" json:"converted_to_id,omitempty"`
	InvitedByID        *int64 `bson:"invited_by_id,omitempty" json:"invited_by_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (p Person) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// IsVisitor reports whether the person currently holds the visitor role.
func (p Person) IsVisitor() bool {
	return p.Role == RoleVisitor
}
