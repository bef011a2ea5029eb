// internal/app/features/persons/routes.go
package persons

import (
	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the person endpoints (typically at /api/persons).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/export.xlsx", h.ServeExport)

		pr.Get("/{id}", h.ServeGet)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Post("/{id}/automation", h.HandleApply)
		pr.Post("/{id}/convert", h.HandleConvert)
		pr.Post("/{id}/photo", h.HandlePhoto)
	})

	// Deleting a person removes history; admins only.
	r.With(auth.RequireRole(auth.RoleAdmin)).Delete("/{id}", h.HandleDelete)

	return r
}
