// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// UserCtx returns the signed-in user and the church every query of the
// request must be scoped to. ok is false when there is no user or the user
// carries no church.
func UserCtx(r *http.Request) (u *auth.SessionUser, churchID int64, ok bool) {
	u, ok = auth.CurrentUser(r)
	if !ok || u.ChurchID <= 0 {
		return nil, 0, false
	}
	return u, u.ChurchID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.IsAdmin()
}

// Actor converts the request's user into an audit actor.
func Actor(r *http.Request) auditlog.Actor {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return auditlog.Actor{}
	}
	return auditlog.Actor{ID: u.ID, ChurchID: u.ChurchID}
}

// PathID parses the chi URL parameter name as a positive int64.
func PathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return id, nil
}
