// internal/app/features/kiosk/tokens.go
package kiosk

import (
	"net/http"
	"strings"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/inputval"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type tokenInput struct {
	Label string `json:"label" validate:"required,max=80" label:"Label"`
}

// issuedToken is returned once; the raw token is never retrievable again.
type issuedToken struct {
	models.KioskToken
	Token string `json:"token"`
}

// ServeTokens handles GET /api/kiosk/tokens.
func (h *Handler) ServeTokens(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "kiosk tokens list")
	defer cancel()

	list, err := h.Tokens.List(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// HandleIssue handles POST /api/kiosk/tokens.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	var in tokenInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.Label = strings.TrimSpace(in.Label)
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Error(w, r, h.Log, apperr.Validation("%s", res.First()))
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "kiosk token issue")
	defer cancel()

	tok, raw, err := h.Tokens.Create(ctx, churchID, in.Label)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.KioskTokenIssued(ctx, r, authz.Actor(r), tok.ID, tok.Label)
	respond.JSON(w, http.StatusCreated, issuedToken{KioskToken: tok, Token: raw})
}

// HandleRevoke handles DELETE /api/kiosk/tokens/{id}.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respond.Error(w, r, h.Log, apperr.Validation("token id is required"))
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "kiosk token revoke")
	defer cancel()

	if err := h.Tokens.Revoke(ctx, churchID, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.KioskTokenRevoked(ctx, r, authz.Actor(r), id)
	w.WriteHeader(http.StatusNoContent)
}
