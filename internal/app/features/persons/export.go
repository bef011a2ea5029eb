// internal/app/features/persons/export.go
package persons

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/export"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ServeExport handles GET /api/persons/export.xlsx.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "persons export")
	defer cancel()

	people, err := h.Persons.ListByChurch(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	data, err := export.Persons(people)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	name := fmt.Sprintf("personas-%d-%s.xlsx", churchID, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
