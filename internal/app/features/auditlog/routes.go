// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the audit log (typically /api/audit).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(auth.RoleAdmin))
		pr.Get("/", h.ServeList)
	})
	return r
}
