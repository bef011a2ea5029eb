// internal/app/features/activity/crud.go
package activity

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
)

func parseID(v string) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ErrValidation
	}
	return id, nil
}

func (h *Handler) checkMinistry(ctx context.Context, churchID int64, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := h.Ministries.Get(ctx, churchID, *id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("ministry %d does not belong to this church", *id)
		}
		return err
	}
	return nil
}

// ServeList handles GET /api/activities.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	rg, err := rangeFromQuery(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "activities list")
	defer cancel()

	list, err := h.Activities.List(ctx, churchID, rg)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/activities.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	var in activityInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.validate(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "activity create")
	defer cancel()

	if err := h.checkMinistry(ctx, churchID, in.MinistryID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	a, err := h.Activities.Create(ctx, in.toModel(churchID))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, a)
}

// ServeGet handles GET /api/activities/{id}.
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "activity get")
	defer cancel()

	a, err := h.Activities.Get(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, a)
}

// HandleUpdate handles PUT /api/activities/{id}.
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
	var in activityInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.validate(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "activity update")
	defer cancel()

	if err := h.checkMinistry(ctx, churchID, in.MinistryID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	a := in.toModel(churchID)
	a.ID = id
	if err := h.Activities.Update(ctx, a); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	updated, err := h.Activities.Get(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /api/activities/{id}.
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "activity delete")
	defer cancel()

	if err := h.Activities.Delete(ctx, churchID, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
