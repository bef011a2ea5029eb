// internal/app/features/persons/list.go
package persons

import (
	"net/http"
	"strconv"

	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/membership"
	"github.com/dalemusser/iglesiahub/internal/app/system/paging"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// filterFromQuery reads role, status, type, family_id and q.
func filterFromQuery(r *http.Request) (personstore.Filter, error) {
	var f personstore.Filter
	if v := query.Get(r, "role"); v != "" {
		f.Role = models.Role(v)
		if !membership.IsValidRole(f.Role) {
			return f, apperr.Validation("unknown role %q", v)
		}
	}
	if v := query.Get(r, "status"); v != "" {
		f.Status = models.Status(v)
		if !membership.IsValidStatus(f.Status) {
			return f, apperr.Validation("unknown status %q", v)
		}
	}
	if v := query.Get(r, "type"); v != "" {
		f.Type = models.PersonType(v)
		if !membership.IsValidType(f.Type) {
			return f, apperr.Validation("unknown type %q", v)
		}
	}
	if v := query.Get(r, "family_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, apperr.Validation("invalid family_id %q", v)
		}
		f.FamilyID = &id
	}
	f.Query = query.Get(r, "q")
	return f, nil
}

// ServeList handles GET /api/persons.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	page := paging.Parse(r)
	f.Limit, f.Offset = page.Limit, page.Offset

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "persons list")
	defer cancel()

	people, err := h.Persons.List(ctx, churchID, f)
	if err != nil {
		h.Log.Error("list persons failed", zap.Int64("church_id", churchID), zap.Error(err))
		respond.Error(w, r, h.Log, err)
		return
	}
	total, err := h.Persons.CountByChurch(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{
		Persons: people,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
}
