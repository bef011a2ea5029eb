// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the notification endpoints (typically at /api/notifications).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeRecent)
		pr.Post("/", h.HandleSend)
	})
	return r
}
