// internal/app/features/families/handler.go
package families

import (
	"strings"

	familystore "github.com/dalemusser/iglesiahub/internal/app/store/families"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/iglesiahub/internal/app/system/inputval"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves families and their person links.
type Handler struct {
	Families *familystore.Store
	Persons  *personstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(families *familystore.Store, persons *personstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Families: families, Persons: persons, Audit: audit, Log: logger}
}

type familyInput struct {
	Name    string `json:"name" validate:"required,max=120" label:"Name"`
	Address string `json:"address" validate:"max=200" label:"Address"`
	Notes   string `json:"notes" validate:"max=4000" label:"Notes"`
}

func (in *familyInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	if res := inputval.Validate(in); res.HasErrors() {
		return apperr.Validation("%s", res.First())
	}
	return nil
}

func (in *familyInput) applyTo(f *models.Family) {
	f.Name = in.Name
	f.Address = in.Address
	f.Notes = htmlsanitize.Sanitize(in.Notes)
}

type membersInput struct {
	PersonIDs    []int64 `json:"person_ids"`
	Relationship string  `json:"relationship"`
}

type consolidateInput struct {
	KeepID  int64 `json:"keep_id"`
	MergeID int64 `json:"merge_id"`
}

type familyResponse struct {
	models.Family
	Members []models.Person `json:"members"`
}

type consolidateResponse struct {
	Family   models.Family `json:"family"`
	Relinked int64         `json:"relinked"`
}
