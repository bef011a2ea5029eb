// internal/app/features/church/routes.go
package church

import (
	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the church settings endpoints (typically at /api/church).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeGet)
		pr.Get("/timezones", h.ServeTimeZones)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(auth.RoleAdmin))
		pr.Put("/", h.HandleUpdate)
		pr.Post("/defaults", h.HandleDefaults)
	})

	return r
}
