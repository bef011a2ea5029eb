// internal/app/features/persons/crud.go
package persons

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /api/persons. The record starts as a new
// visitor and immediately goes through the membership rules.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	var in personInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.validate(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "person create")
	defer cancel()

	if err := h.checkRefs(ctx, churchID, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	p := models.Person{ChurchID: churchID, Role: models.RoleVisitor, Status: models.StatusNew}
	in.applyTo(&p)
	created, err := h.Persons.Create(ctx, p)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	out, err := h.applyAndReload(ctx, churchID, created.ID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.PersonCreated(ctx, r, authz.Actor(r), out.ID, string(out.Role))
	respond.JSON(w, http.StatusCreated, out)
}

// ServeGet handles GET /api/persons/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "person get")
	defer cancel()

	p, err := h.Persons.Get(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

// HandleUpdate handles PUT /api/persons/{id}. The body replaces the whole
// editable profile; derived fields are then recomputed.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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
	var in personInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.validate(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "person update")
	defer cancel()

	p, err := h.Persons.Get(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.checkRefs(ctx, churchID, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.applyTo(&p)
	if err := h.Persons.UpdateProfile(ctx, p); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	out, err := h.applyAndReload(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.PersonUpdated(ctx, r, authz.Actor(r), id)
	respond.JSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /api/persons/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "person delete")
	defer cancel()

	if err := h.Persons.Delete(ctx, churchID, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.PersonDeleted(ctx, r, authz.Actor(r), id)
	w.WriteHeader(http.StatusNoContent)
}

// checkRefs requires the family and the inviter, when set, to belong to
// the caller's church.
func (h *Handler) checkRefs(ctx context.Context, churchID int64, in *personInput) error {
	if in.FamilyID != nil {
		if _, err := h.Families.Get(ctx, churchID, *in.FamilyID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Validation("family %d does not belong to this church", *in.FamilyID)
			}
			return err
		}
	}
	if in.InvitedByID != nil {
		return h.Persons.RequireIDs(ctx, churchID, []int64{*in.InvitedByID})
	}
	return nil
}

// applyAndReload runs the membership rules on one person and returns the
// stored record.
func (h *Handler) applyAndReload(ctx context.Context, churchID, id int64) (models.Person, error) {
	res, err := h.Automation.Apply(ctx, churchID, id)
	if err != nil {
		return models.Person{}, err
	}
	if res.Updated {
		h.Log.Debug("membership rules changed person",
			zap.Int64("church_id", churchID),
			zap.Int64("person_id", id),
			zap.String("role", string(res.Change.After.Role)),
			zap.String("status", string(res.Change.After.Status)))
	}
	return h.Persons.Get(ctx, churchID, id)
}
