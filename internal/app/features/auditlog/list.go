// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/store/audit"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/paging"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	paging.Page
}

func validCategory(c string) bool {
	switch c {
	case audit.CategoryAuth, audit.CategoryAdmin, audit.CategoryAutomation:
		return true
	}
	return false
}

// filterFromQuery builds a church-scoped filter from category, event_type,
// person_id, start_date and end_date (YYYY-MM-DD, end inclusive).
func filterFromQuery(r *http.Request, churchID int64) (audit.QueryFilter, error) {
	f := audit.QueryFilter{
		ChurchID:  &churchID,
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
	}
	if f.Category != "" && !validCategory(f.Category) {
		return f, apperr.Validation("unknown category %q", f.Category)
	}
	if v := query.Get(r, "person_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, apperr.Validation("person_id must be a positive integer")
		}
		f.PersonID = &id
	}
	if v := query.Get(r, "start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, apperr.Validation("start_date must be YYYY-MM-DD")
		}
		f.StartTime = &t
	}
	if v := query.Get(r, "end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, apperr.Validation("end_date must be YYYY-MM-DD")
		}
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &endOfDay
	}
	return f, nil
}

// ServeList handles GET /api/audit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	filter, err := filterFromQuery(r, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	page := paging.Parse(r)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{Events: events, Total: total, Page: page})
}
