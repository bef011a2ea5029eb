// internal/app/features/families/members.go
package families

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/inputval"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleLinkMembers handles POST /api/families/{id}/members. Every person id
// must belong to the church; persons already in another family move here.
func (h *Handler) HandleLinkMembers(w http.ResponseWriter, r *http.Request) {
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
	var in membersInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ids, err := inputval.UniqueIDs(in.PersonIDs)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if len(ids) == 0 {
		respond.Error(w, r, h.Log, apperr.Validation("person_ids is required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "family link members")
	defer cancel()

	if _, err := h.Families.Get(ctx, churchID, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.Persons.RequireIDs(ctx, churchID, ids); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if _, err := h.Persons.SetFamily(ctx, churchID, id, ids, strings.TrimSpace(in.Relationship)); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	out, err := h.withMembers(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleConsolidate handles POST /api/families/consolidate: every person of
// merge_id moves to keep_id and merge_id is deleted, in one transaction when
// the deployment supports it.
func (h *Handler) HandleConsolidate(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	var in consolidateInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if in.KeepID <= 0 || in.MergeID <= 0 {
		respond.Error(w, r, h.Log, apperr.Validation("keep_id and merge_id are required"))
		return
	}
	if in.KeepID == in.MergeID {
		respond.Error(w, r, h.Log, apperr.Validation("cannot consolidate a family into itself"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "family consolidate")
	defer cancel()

	kept, err := h.Families.Get(ctx, churchID, in.KeepID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if _, err := h.Families.Get(ctx, churchID, in.MergeID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var relinked int64
	err = h.Persons.WithTx(ctx, func(ctx context.Context) error {
		n, err := h.Persons.RelinkFamily(ctx, churchID, in.MergeID, in.KeepID)
		if err != nil {
			return err
		}
		relinked = n
		return h.Families.Delete(ctx, churchID, in.MergeID)
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.Log.Info("families consolidated",
		zap.Int64("church_id", churchID),
		zap.Int64("kept", in.KeepID),
		zap.Int64("merged", in.MergeID),
		zap.Int64("relinked", relinked))
	h.Audit.FamilyConsolidated(ctx, r, authz.Actor(r), in.KeepID, in.MergeID, relinked)
	respond.JSON(w, http.StatusOK, consolidateResponse{Family: kept, Relinked: relinked})
}
