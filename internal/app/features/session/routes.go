// internal/app/features/session/routes.go
package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the session endpoints (typically at /api/session).
// limit, when non-nil, wraps the token exchange only.
func Routes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	if limit != nil {
		r.With(limit).Post("/", h.HandleLogin)
	} else {
		r.Post("/", h.HandleLogin)
	}
	r.Get("/", h.ServeCurrent)
	r.Delete("/", h.HandleLogout)
	return r
}
