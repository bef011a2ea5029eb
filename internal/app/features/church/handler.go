// internal/app/features/church/handler.go
package church

import (
	"net/http"
	"strings"

	churchstore "github.com/dalemusser/iglesiahub/internal/app/store/churches"
	ministrystore "github.com/dalemusser/iglesiahub/internal/app/store/ministries"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/inputval"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/dalemusser/iglesiahub/internal/app/system/timezones"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own church record.
type Handler struct {
	Churches   *churchstore.Store
	Ministries *ministrystore.Store
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(churches *churchstore.Store, ministries *ministrystore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Churches: churches, Ministries: ministries, Audit: audit, Log: logger}
}

type settingsInput struct {
	Name         string `json:"name" validate:"required,max=120" label:"Name"`
	TimeZone     string `json:"time_zone" validate:"required" label:"Time zone"`
	SMSFrom      string `json:"sms_from" validate:"omitempty,phone" label:"SMS sender"`
	WhatsAppFrom string `json:"whatsapp_from" validate:"omitempty,phone" label:"WhatsApp sender"`
	EmailFrom    string `json:"email_from" validate:"omitempty,email"`
}

type defaultsResponse struct {
	Created int `json:"created"`
}

// ServeGet handles GET /api/church.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "church get")
	defer cancel()

	c, err := h.Churches.GetByID(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

// ServeTimeZones handles GET /api/church/timezones.
func (h *Handler) ServeTimeZones(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, timezones.All())
}

// HandleUpdate handles PUT /api/church. Slug and status are operator-managed
// and not editable here.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	var in settingsInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.TimeZone = strings.TrimSpace(in.TimeZone)
	in.EmailFrom = strings.ToLower(strings.TrimSpace(in.EmailFrom))
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Error(w, r, h.Log, apperr.Validation("%s", res.First()))
		return
	}
	if !timezones.Valid(in.TimeZone) {
		respond.Error(w, r, h.Log, apperr.Validation("unknown time zone %q", in.TimeZone))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "church update")
	defer cancel()

	c, err := h.Churches.GetByID(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	c.Name = in.Name
	c.TimeZone = in.TimeZone
	c.SMSFrom = in.SMSFrom
	c.WhatsAppFrom = in.WhatsAppFrom
	c.EmailFrom = in.EmailFrom
	c.Status = ""
	if err := h.Churches.Update(ctx, c); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	out, err := h.Churches.GetByID(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.ChurchSettingsUpdated(ctx, r, authz.Actor(r))
	respond.JSON(w, http.StatusOK, out)
}

// HandleDefaults handles POST /api/church/defaults. It creates whichever
// default ministries are missing; repeating it creates nothing.
func (h *Handler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "church defaults")
	defer cancel()

	n, err := h.Ministries.UpsertDefaults(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if n > 0 {
		h.Log.Info("default ministries created", zap.Int64("church_id", churchID), zap.Int("created", n))
	}
	respond.JSON(w, http.StatusOK, defaultsResponse{Created: n})
}
