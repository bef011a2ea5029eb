// internal/app/features/activity/attendance.go
package activity

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/inputval"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleSetAttendance handles PUT /api/activities/{id}/attendance. The list
// replaces whatever attendance was recorded before.
func (h *Handler) HandleSetAttendance(w http.ResponseWriter, r *http.Request) {
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
	var in attendanceInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ids, err := inputval.UniqueIDs(in.PersonIDs)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activity attendance")
	defer cancel()

	if err := h.Persons.RequireIDs(ctx, churchID, ids); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.Activities.SetAttendance(ctx, churchID, id, ids); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	a, err := h.Activities.Get(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, a)
}

// ServeAttendanceCSV handles GET /api/activities/{id}/attendance.csv.
func (h *Handler) ServeAttendanceCSV(w http.ResponseWriter, r *http.Request) {
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "attendance CSV export")
	defer cancel()

	a, err := h.Activities.Get(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	people, err := h.Persons.ByIDs(ctx, churchID, a.AttendeeIDs)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	filename := fmt.Sprintf("asistencia_%d_%s.csv", a.ID, a.StartsAt.Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	// UTF-8 BOM for Excel
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		h.Log.Error("CSV write failed (BOM)", zap.Error(err))
		return
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	defer cw.Flush()

	if err := cw.Write([]string{"person_id", "name", "role", "type", "phone", "email"}); err != nil {
		h.Log.Error("CSV write failed (header)", zap.Error(err))
		return
	}
	for _, p := range people {
		if err := cw.Write([]string{
			fmt.Sprintf("%d", p.ID),
			sanitizeCSVField(p.FullName()),
			string(p.Role),
			string(p.Type),
			sanitizeCSVField(p.Phone),
			p.Email,
		}); err != nil {
			h.Log.Error("CSV write failed (row)", zap.Error(err))
			return
		}
	}

	h.Log.Info("attendance CSV exported", zap.Int64("activity_id", a.ID), zap.Int("rows", len(people)))
}

// sanitizeCSVField prefixes values spreadsheets would treat as formulas.
func sanitizeCSVField(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
