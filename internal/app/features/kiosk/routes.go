// internal/app/features/kiosk/routes.go
package kiosk

import (
	"net/http"

	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// AdminRoutes mounts token management (typically at /api/kiosk).
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(auth.RoleAdmin))
		pr.Get("/tokens", h.ServeTokens)
		pr.Post("/tokens", h.HandleIssue)
		pr.Delete("/tokens/{id}", h.HandleRevoke)
	})
	return r
}

// PublicRoutes mounts visitor self-registration (typically at /kiosk).
// limit, when non-nil, wraps the registration endpoint.
func PublicRoutes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	if limit != nil {
		r.Use(limit)
	}
	r.Post("/visitors", h.HandleRegister)
	return r
}
