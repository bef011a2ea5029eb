// internal/app/features/persons/types.go
package persons

import (
	"strings"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/iglesiahub/internal/app/system/inputval"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
)

// personInput is the body of POST /api/persons and PUT /api/persons/{id}.
// Type, role and status are derived and not accepted from clients.
type personInput struct {
	FirstName          string         `json:"first_name" validate:"required,max=80" label:"First name"`
	LastName           string         `json:"last_name" validate:"required,max=80" label:"Last name"`
	Email              string         `json:"email" validate:"omitempty,email"`
	Phone              string         `json:"phone" validate:"omitempty,phone" label:"Phone"`
	WhatsApp           string         `json:"whatsapp" validate:"omitempty,phone" label:"WhatsApp"`
	Address            string         `json:"address" validate:"max=200" label:"Address"`
	BirthDate          *inputval.Date `json:"birth_date"`
	Sex                string         `json:"sex" validate:"omitempty,oneof=M F" label:"Sex"`
	MaritalStatus      string         `json:"marital_status" validate:"max=40" label:"Marital status"`
	Occupation         string         `json:"occupation" validate:"max=80" label:"Occupation"`
	Notes              string         `json:"notes" validate:"max=4000" label:"Notes"`
	IntakeDate         *inputval.Date `json:"intake_date"`
	BaptismDate        *inputval.Date `json:"baptism_date"`
	FamilyID           *int64         `json:"family_id" validate:"omitempty,gt=0" label:"Family"`
	FamilyRelationship string         `json:"family_relationship" validate:"max=40" label:"Family relationship"`
	InvitedByID        *int64         `json:"invited_by_id" validate:"omitempty,gt=0" label:"Invited by"`
}

func (in *personInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.WhatsApp = strings.TrimSpace(in.WhatsApp)
	in.Address = strings.TrimSpace(in.Address)
	in.Sex = strings.ToUpper(strings.TrimSpace(in.Sex))
	in.MaritalStatus = strings.TrimSpace(in.MaritalStatus)
	in.Occupation = strings.TrimSpace(in.Occupation)
	in.FamilyRelationship = strings.TrimSpace(in.FamilyRelationship)
}

func (in *personInput) validate() error {
	in.normalize()
	if res := inputval.Validate(in); res.HasErrors() {
		return apperr.Validation("%s", res.First())
	}
	if b := in.BirthDate.Ptr(); b != nil && in.IntakeDate.Ptr() != nil && in.IntakeDate.Time.Before(*b) {
		return apperr.Validation("intake_date cannot precede birth_date")
	}
	return nil
}

// applyTo copies the editable fields onto p.
func (in *personInput) applyTo(p *models.Person) {
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.Email = in.Email
	p.Phone = in.Phone
	p.WhatsApp = in.WhatsApp
	p.Address = in.Address
	p.BirthDate = in.BirthDate.Ptr()
	p.Sex = in.Sex
	p.MaritalStatus = in.MaritalStatus
	p.Occupation = in.Occupation
	p.Notes = htmlsanitize.Sanitize(in.Notes)
	p.IntakeDate = in.IntakeDate.Ptr()
	p.BaptismDate = in.BaptismDate.Ptr()
	p.FamilyID = in.FamilyID
	p.FamilyRelationship = in.FamilyRelationship
	p.InvitedByID = in.InvitedByID
}

// convertInput is the body of POST /api/persons/{id}/convert.
type convertInput struct {
	BaptismDate *inputval.Date `json:"baptism_date"`
	Notes       *string        `json:"notes"`
}

type listResponse struct {
	Persons []models.Person `json:"persons"`
	Total   int64           `json:"total"`
	Limit   int64           `json:"limit"`
	Offset  int64           `json:"offset"`
}

type photoResponse struct {
	PhotoURL string `json:"photo_url"`
}
