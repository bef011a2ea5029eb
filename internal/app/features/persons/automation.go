// internal/app/features/persons/automation.go
package persons

import (
	"net/http"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"github.com/dalemusser/iglesiahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
)

// HandleApply handles POST /api/persons/{id}/automation.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	id, err := authz.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "person automation")
	defer cancel()

	res, err := h.Automation.Apply(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// HandleConvert handles POST /api/persons/{id}/convert. It answers 201 with
// the new member record; the visitor's row stays behind as history.
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	id, err := authz.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in convertInput
	if r.ContentLength != 0 {
		if err := respond.DecodeJSON(r, &in); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
	}
	var notes *string
	if in.Notes != nil {
		s := htmlsanitize.Sanitize(*in.Notes)
		notes = &s
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "person convert")
	defer cancel()

	member, err := h.Automation.Convert(ctx, churchID, id, automation.ConvertInput{
		BaptismDate: in.BaptismDate.Ptr(),
		Notes:       notes,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.PersonConverted(ctx, r, authz.Actor(r), id, member.ID)
	respond.JSON(w, http.StatusCreated, member)
}
