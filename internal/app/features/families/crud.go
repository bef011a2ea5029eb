// internal/app/features/families/crud.go
package families

import (
	"context"
	"net/http"

	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
)

// ServeList handles GET /api/families.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "families list")
	defer cancel()

	list, err := h.Families.List(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/families.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	var in familyInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.validate(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "family create")
	defer cancel()

	f := models.Family{ChurchID: churchID}
	in.applyTo(&f)
	created, err := h.Families.Create(ctx, f)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// ServeGet handles GET /api/families/{id}, including the linked persons.
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "family get")
	defer cancel()

	out, err := h.withMembers(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleUpdate handles PUT /api/families/{id}.
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
	var in familyInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.validate(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "family update")
	defer cancel()

	f := models.Family{ID: id, ChurchID: churchID}
	in.applyTo(&f)
	if err := h.Families.Update(ctx, f); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	out, err := h.Families.Get(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /api/families/{id}. Linked persons are kept
// and simply lose their family.
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "family delete")
	defer cancel()

	err = h.Persons.WithTx(ctx, func(ctx context.Context) error {
		if err := h.Families.Delete(ctx, churchID, id); err != nil {
			return err
		}
		_, err := h.Persons.ClearFamily(ctx, churchID, id)
		return err
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) withMembers(ctx context.Context, churchID, id int64) (familyResponse, error) {
	f, err := h.Families.Get(ctx, churchID, id)
	if err != nil {
		return familyResponse{}, err
	}
	members, err := h.Persons.List(ctx, churchID, personstore.Filter{FamilyID: &id})
	if err != nil {
		return familyResponse{}, err
	}
	if members == nil {
		members = []models.Person{}
	}
	return familyResponse{Family: f, Members: members}, nil
}
