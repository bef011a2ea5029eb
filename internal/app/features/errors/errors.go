// internal/app/features/errors/errors.go
package errors

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler answers requests the router could not match.
// No DB needed; it only writes JSON error bodies.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs an errors Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// NotFound answers unknown paths with a JSON 404.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, h.Log, fmt.Errorf("%w: no route for %s %s", apperr.ErrNotFound, r.Method, r.URL.Path))
}

// MethodNotAllowed answers a known path used with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
	})
}
