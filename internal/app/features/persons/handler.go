// internal/app/features/persons/handler.go
package persons

import (
	familystore "github.com/dalemusser/iglesiahub/internal/app/store/families"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"github.com/dalemusser/iglesiahub/internal/app/system/photostore"
	"go.uber.org/zap"
)

// Handler serves the person roll of the signed-in user's church.
type Handler struct {
	Persons    *personstore.Store
	Families   *familystore.Store
	Automation *automation.Service
	Photos     photostore.Store
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

// NewHandler constructs a persons Handler. photos may be nil, in which case
// photo uploads answer 409.
func NewHandler(persons *personstore.Store, families *familystore.Store, svc *automation.Service, photos photostore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Persons:    persons,
		Families:   families,
		Automation: svc,
		Photos:     photos,
		Audit:      audit,
		Log:        logger,
	}
}
