// internal/app/features/automation/handler.go
package automation

import (
	"net/http"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	automationsvc "github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler runs the membership rules over a whole church on demand.
type Handler struct {
	Service *automationsvc.Service
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(svc *automationsvc.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Service: svc, Audit: audit, Log: logger}
}

// HandleRun handles POST /api/automation/run. A run already holding the
// church's lock answers 409.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "automation run")
	defer cancel()

	res, err := h.Service.ApplyChurch(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("church automation run",
		zap.Int64("church_id", churchID),
		zap.Int("total", res.Total),
		zap.Int("updated", res.Updated),
		zap.Int("errors", res.Errors))
	h.Audit.AutomationRun(ctx, authz.Actor(r), res.Total, res.Updated, res.Errors)
	respond.JSON(w, http.StatusOK, res)
}

// Routes mounts the endpoint (typically at /api/automation). Admins only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(auth.RoleAdmin))
	r.Post("/run", h.HandleRun)
	return r
}
