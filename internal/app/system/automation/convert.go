package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"go.uber.org/zap"
)

// ConvertInput carries the optional values supplied at conversion time.
type ConvertInput struct {
	BaptismDate *time.Time
	// Notes replaces the source's notes when non-nil.
	Notes *string
}

// Convert turns a visitor into a member. The visitor's row is kept as history
// (status INACTIVE, converted_to set) and a new member row is created that
// points back via converted_from. Both writes share one transaction when the
// store supports it. The new record then goes through Apply so its derived
// fields agree with the rules before it is returned.
func (s *Service) Convert(ctx context.Context, churchID, personID int64, in ConvertInput) (models.Person, error) {
	src, err := s.store.Get(ctx, churchID, personID)
	if err != nil {
		return models.Person{}, err
	}
	if !src.IsVisitor() {
		return models.Person{}, ErrNotVisitor
	}

	now := s.clock.Now()
	member := memberFrom(src, in, now)

	var created models.Person
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		c, err := s.store.Create(ctx, member)
		if err != nil {
			return fmt.Errorf("create member record: %w", err)
		}
		if err := s.store.MarkConverted(ctx, churchID, src.ID, c.ID, now); err != nil {
			return fmt.Errorf("mark visitor %d converted: %w", src.ID, err)
		}
		created = c
		return nil
	})
	if err != nil {
		return models.Person{}, err
	}

	s.log.Info("visitor converted to member",
		zap.Int64("church_id", churchID),
		zap.Int64("visitor_id", src.ID),
		zap.Int64("member_id", created.ID))

	if _, err := s.Apply(ctx, churchID, created.ID); err != nil {
		return models.Person{}, fmt.Errorf("apply rules to member %d: %w", created.ID, err)
	}
	return s.store.Get(ctx, churchID, created.ID)
}

func memberFrom(src models.Person, in ConvertInput, now time.Time) models.Person {
	status := models.StatusNew
	if in.BaptismDate != nil {
		status = models.StatusActive
	}
	notes := src.Notes
	if in.Notes != nil {
		notes = *in.Notes
	}
	intake := now
	srcID := src.ID

	return models.Person{
		ChurchID:           src.ChurchID,
		FirstName:          src.FirstName,
		LastName:           src.LastName,
		Email:              src.Email,
		Phone:              src.Phone,
		WhatsApp:           src.WhatsApp,
		Address:            src.Address,
		BirthDate:          src.BirthDate,
		Sex:                src.Sex,
		MaritalStatus:      src.MaritalStatus,
		Occupation:         src.Occupation,
		PhotoURL:           src.PhotoURL,
		Notes:              notes,
		Type:               src.Type,
		Role:               models.RoleMember,
		Status:             status,
		IntakeDate:         &intake,
		BaptismDate:        in.BaptismDate,
		FamilyID:           src.FamilyID,
		FamilyRelationship: src.FamilyRelationship,
		ConvertedFromID:    &srcID,
		InvitedByID:        src.InvitedByID,
	}
}
