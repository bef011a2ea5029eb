// internal/app/features/kiosk/visitors.go
package kiosk

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	kioskstore "github.com/dalemusser/iglesiahub/internal/app/store/kiosktokens"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/inputval"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/status"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"go.uber.org/zap"
)

var errChurchDisabled = fmt.Errorf("%w: church is not accepting registrations", apperr.ErrForbidden)

type visitorInput struct {
	FirstName   string         `json:"first_name" validate:"required,max=80" label:"First name"`
	LastName    string         `json:"last_name" validate:"required,max=80" label:"Last name"`
	Email       string         `json:"email" validate:"omitempty,email,max=254" label:"Email"`
	Phone       string         `json:"phone" validate:"omitempty,phone" label:"Phone"`
	WhatsApp    string         `json:"whatsapp" validate:"omitempty,phone" label:"WhatsApp"`
	BirthDate   *inputval.Date `json:"birth_date"`
	InvitedByID *int64         `json:"invited_by_id" validate:"omitempty,gt=0" label:"Invited by"`
}

func (in *visitorInput) validate() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.WhatsApp = strings.TrimSpace(in.WhatsApp)
	if res := inputval.Validate(in); res.HasErrors() {
		return apperr.Validation("%s", res.First())
	}
	return nil
}

// HandleRegister handles POST /kiosk/visitors. The kiosk token, not a
// session, decides which church the visitor joins.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	raw := r.Header.Get(TokenHeader)
	if strings.TrimSpace(raw) == "" {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "kiosk register")
	defer cancel()

	tok, err := h.Tokens.Verify(ctx, raw)
	if err != nil {
		if errors.Is(err, kioskstore.ErrInvalidToken) {
			h.Audit.KioskTokenRejected(ctx, r)
		}
		respond.Error(w, r, h.Log, err)
		return
	}
	church, err := h.Churches.GetByID(ctx, tok.ChurchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if church.Status != status.Active {
		respond.Error(w, r, h.Log, errChurchDisabled)
		return
	}

	var in visitorInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.validate(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if in.InvitedByID != nil {
		if err := h.Persons.RequireIDs(ctx, church.ID, []int64{*in.InvitedByID}); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
	}

	p, err := h.Persons.Create(ctx, models.Person{
		ChurchID:    church.ID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		WhatsApp:    in.WhatsApp,
		BirthDate:   in.BirthDate.Ptr(),
		InvitedByID: in.InvitedByID,
		Role:        models.RoleVisitor,
		Status:      models.StatusNew,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if _, err := h.Automation.Apply(ctx, church.ID, p.ID); err != nil {
		// The visitor is stored; the periodic run will classify it.
		h.Log.Warn("kiosk visitor classification failed",
			zap.Int64("church_id", church.ID),
			zap.Int64("person_id", p.ID),
			zap.Error(err))
	}
	if out, err := h.Persons.Get(ctx, church.ID, p.ID); err == nil {
		p = out
	}
	h.Audit.VisitorRegistered(ctx, r, church.ID, tok.ID, p.ID)
	respond.JSON(w, http.StatusCreated, p)
}
