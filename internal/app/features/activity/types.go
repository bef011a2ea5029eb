// internal/app/features/activity/types.go
package activity

import (
	"net/http"
	"strings"
	"time"

	activitystore "github.com/dalemusser/iglesiahub/internal/app/store/activity"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/iglesiahub/internal/app/system/inputval"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type activityInput struct {
	Title       string     `json:"title" validate:"required,max=160" label:"Title"`
	Description string     `json:"description" validate:"max=4000" label:"Description"`
	Location    string     `json:"location" validate:"max=200" label:"Location"`
	MinistryID  *int64     `json:"ministry_id" validate:"omitempty,gt=0" label:"Ministry"`
	StartsAt    time.Time  `json:"starts_at" validate:"required" label:"Start"`
	EndsAt      *time.Time `json:"ends_at"`
}

func (in *activityInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	if res := inputval.Validate(in); res.HasErrors() {
		return apperr.Validation("%s", res.First())
	}
	if in.EndsAt != nil && in.EndsAt.Before(in.StartsAt) {
		return apperr.Validation("End cannot be before start.")
	}
	return nil
}

func (in activityInput) toModel(churchID int64) models.Activity {
	a := models.Activity{
		ChurchID:    churchID,
		MinistryID:  in.MinistryID,
		Title:       in.Title,
		Description: htmlsanitize.Sanitize(in.Description),
		Location:    in.Location,
		StartsAt:    in.StartsAt.UTC(),
	}
	if in.EndsAt != nil {
		end := in.EndsAt.UTC()
		a.EndsAt = &end
	}
	return a
}

type attendanceInput struct {
	PersonIDs []int64 `json:"person_ids"`
}

// rangeFromQuery reads from/to (YYYY-MM-DD, to is inclusive) and ministry_id.
func rangeFromQuery(r *http.Request) (activitystore.Range, error) {
	var rg activitystore.Range
	if v := query.Get(r, "from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return rg, apperr.Validation("from must be YYYY-MM-DD")
		}
		rg.From = &t
	}
	if v := query.Get(r, "to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return rg, apperr.Validation("to must be YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		rg.To = &t
	}
	if rg.From != nil && rg.To != nil && !rg.From.Before(*rg.To) {
		return rg, apperr.Validation("from must not be after to")
	}
	if v := query.Get(r, "ministry_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			return rg, apperr.Validation("ministry_id must be a positive integer")
		}
		rg.MinistryID = &id
	}
	return rg, nil
}
