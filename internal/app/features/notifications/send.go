// internal/app/features/notifications/send.go
package notifications

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/inputval"
	"github.com/dalemusser/iglesiahub/internal/app/system/notify"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

const defaultRecent = 100

type sendInput struct {
	Channel    string  `json:"channel" validate:"required" label:"Channel"`
	Subject    string  `json:"subject" validate:"max=200" label:"Subject"`
	Body       string  `json:"body" validate:"required,max=4000" label:"Message"`
	PersonIDs  []int64 `json:"person_ids"`
	FamilyID   *int64  `json:"family_id" validate:"omitempty,gt=0" label:"Family"`
	MinistryID *int64  `json:"ministry_id" validate:"omitempty,gt=0" label:"Ministry"`
}

func (in *sendInput) validate() error {
	in.Channel = strings.ToLower(strings.TrimSpace(in.Channel))
	in.Subject = strings.TrimSpace(in.Subject)
	in.Body = strings.TrimSpace(in.Body)
	if res := inputval.Validate(in); res.HasErrors() {
		return apperr.Validation("%s", res.First())
	}
	if !notify.ValidChannel(in.Channel) {
		return apperr.Validation("channel must be one of: sms, whatsapp, email")
	}
	if in.Channel == models.ChannelEmail && in.Subject == "" {
		return apperr.Validation("Subject is required for email.")
	}
	if len(in.PersonIDs) == 0 && in.FamilyID == nil && in.MinistryID == nil {
		return apperr.Validation("at least one of person_ids, family_id or ministry_id is required")
	}
	return nil
}

// recipients resolves every target to church persons, deduplicated by id.
func (h *Handler) recipients(ctx context.Context, churchID int64, in sendInput) ([]models.Person, error) {
	ids, err := inputval.UniqueIDs(in.PersonIDs)
	if err != nil {
		return nil, err
	}
	if err := h.Persons.RequireIDs(ctx, churchID, ids); err != nil {
		return nil, err
	}
	if in.MinistryID != nil {
		m, err := h.Ministries.Get(ctx, churchID, *in.MinistryID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, m.MemberIDs...)
	}
	out, err := h.Persons.ByIDs(ctx, churchID, ids)
	if err != nil {
		return nil, err
	}
	if in.FamilyID != nil {
		if _, err := h.Families.Get(ctx, churchID, *in.FamilyID); err != nil {
			return nil, err
		}
		fam, err := h.Persons.List(ctx, churchID, personstore.Filter{FamilyID: in.FamilyID})
		if err != nil {
			return nil, err
		}
		out = append(out, fam...)
	}

	seen := make(map[int64]struct{}, len(out))
	uniq := out[:0]
	for _, p := range out {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		uniq = append(uniq, p)
	}
	return uniq, nil
}

// HandleSend handles POST /api/notifications.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	var in sendInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.validate(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "notifications send")
	defer cancel()

	church, err := h.Churches.GetByID(ctx, churchID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	people, err := h.recipients(ctx, churchID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	sum, err := h.Dispatcher.Send(ctx, notify.Request{
		Church:     church,
		Channel:    in.Channel,
		Subject:    in.Subject,
		Body:       in.Body,
		Recipients: people,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.NotificationsSent(ctx, r, authz.Actor(r), in.Channel, sum.Sent, sum.Failed)
	respond.JSON(w, http.StatusOK, sum)
}

// ServeRecent handles GET /api/notifications?limit=N.
func (h *Handler) ServeRecent(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	limit := int64(defaultRecent)
	if v := query.Get(r, "limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 || n > 500 {
			respond.Error(w, r, h.Log, apperr.Validation("limit must be between 1 and 500"))
			return
		}
		limit = n
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "notifications recent")
	defer cancel()

	list, err := h.Notifications.ListRecent(ctx, churchID, limit)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}
