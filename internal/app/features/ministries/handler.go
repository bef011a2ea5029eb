// internal/app/features/ministries/handler.go
package ministries

import (
	"context"
	"net/http"
	"strings"

	ministrystore "github.com/dalemusser/iglesiahub/internal/app/store/ministries"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/inputval"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/status"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves ministries and their rosters.
type Handler struct {
	Ministries *ministrystore.Store
	Persons    *personstore.Store
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(ministries *ministrystore.Store, persons *personstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Ministries: ministries, Persons: persons, Audit: audit, Log: logger}
}

type ministryInput struct {
	Name        string `json:"name" validate:"required,max=120" label:"Name"`
	Description string `json:"description" validate:"max=1000" label:"Description"`
	LeaderID    *int64 `json:"leader_id" validate:"omitempty,gt=0" label:"Leader"`
	Status      string `json:"status"`
}

func (in *ministryInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Status = strings.TrimSpace(in.Status)
	if res := inputval.Validate(in); res.HasErrors() {
		return apperr.Validation("%s", res.First())
	}
	if in.Status != "" && !status.Valid(in.Status) {
		return apperr.Validation("unknown status %q", in.Status)
	}
	return nil
}

type membersInput struct {
	PersonIDs []int64 `json:"person_ids"`
}

// checkLeader requires the leader, when set, to be a person of the church.
func (h *Handler) checkLeader(ctx context.Context, churchID int64, leader *int64) error {
	if leader == nil {
		return nil
	}
	return h.Persons.RequireIDs(ctx, churchID, []int64{*leader})
}

// ServeList handles GET /api/ministries.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "ministries list")
	defer cancel()

	list, err := h.Ministries.List(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/ministries.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	var in ministryInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.validate(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "ministry create")
	defer cancel()

	if err := h.checkLeader(ctx, churchID, in.LeaderID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	m, err := h.Ministries.Create(ctx, models.Ministry{
		ChurchID:    churchID,
		Name:        in.Name,
		Description: in.Description,
		LeaderID:    in.LeaderID,
		Status:      in.Status,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, m)
}

// ServeGet handles GET /api/ministries/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	id, err := authz.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "ministry get")
	defer cancel()

	m, err := h.Ministries.Get(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, m)
}

// HandleUpdate handles PUT /api/ministries/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	id, err := authz.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in ministryInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.validate(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "ministry update")
	defer cancel()

	if err := h.checkLeader(ctx, churchID, in.LeaderID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	err = h.Ministries.Update(ctx, models.Ministry{
		ID:          id,
		ChurchID:    churchID,
		Name:        in.Name,
		Description: in.Description,
		LeaderID:    in.LeaderID,
		Status:      in.Status,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	m, err := h.Ministries.Get(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, m)
}

// HandleDelete handles DELETE /api/ministries/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	id, err := authz.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "ministry delete")
	defer cancel()

	if err := h.Ministries.Delete(ctx, churchID, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetMembers handles PUT /api/ministries/{id}/members. The list
// replaces the current roster.
func (h *Handler) HandleSetMembers(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	id, err := authz.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in membersInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ids, err := inputval.UniqueIDs(in.PersonIDs)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "ministry members")
	defer cancel()

	if err := h.Persons.RequireIDs(ctx, churchID, ids); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.Ministries.SetMembers(ctx, churchID, id, ids); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	m, err := h.Ministries.Get(ctx, churchID, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.MinistryMembersSet(ctx, r, authz.Actor(r), id, len(ids))
	respond.JSON(w, http.StatusOK, m)
}
