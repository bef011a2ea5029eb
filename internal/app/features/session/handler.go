// internal/app/features/session/handler.go
package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler exchanges provider tokens for session cookies.
type Handler struct {
	Sessions *auth.SessionManager
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Sessions: sm, Audit: audit, Log: logger}
}

type loginInput struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	ChurchID int64  `json:"church_id"`
}

func toResponse(u *auth.SessionUser) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, ChurchID: u.ChurchID}
}

// HandleLogin handles POST /api/session.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.Token = strings.TrimSpace(in.Token)
	if in.Token == "" {
		respond.Error(w, r, h.Log, apperr.Validation("token is required"))
		return
	}

	u, err := h.Sessions.Login(w, r, in.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			h.Audit.SessionRejected(r.Context(), r, err.Error())
		}
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.SessionStarted(r.Context(), r, auditlog.Actor{ID: u.ID, ChurchID: u.ChurchID}, u.Role)
	respond.JSON(w, http.StatusOK, toResponse(u))
}

// ServeCurrent handles GET /api/session.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	u, _, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(u))
}

// HandleLogout handles DELETE /api/session.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(w, r); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if u, _, ok := authz.UserCtx(r); ok {
		h.Audit.SessionEnded(r.Context(), r, authz.Actor(r))
		h.Log.Info("session ended", zap.String("user_id", u.ID))
	}
	w.WriteHeader(http.StatusNoContent)
}
