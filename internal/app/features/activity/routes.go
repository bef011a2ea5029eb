// internal/app/features/activity/routes.go
package activity

import (
	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the activity calendar (typically /api/activities).
// Staff record attendance; only admins schedule or remove activities.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeGet)
		pr.Put("/{id}/attendance", h.HandleSetAttendance)
		pr.Get("/{id}/attendance.csv", h.ServeAttendanceCSV)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(auth.RoleAdmin))

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
