// internal/app/features/families/routes.go
package families

import (
	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the family endpoints (typically at /api/families).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Post("/consolidate", h.HandleConsolidate)

		pr.Get("/{id}", h.ServeGet)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/members", h.HandleLinkMembers)
	})

	return r
}
