// internal/app/features/kiosk/handler.go
package kiosk

import (
	churchstore "github.com/dalemusser/iglesiahub/internal/app/store/churches"
	kioskstore "github.com/dalemusser/iglesiahub/internal/app/store/kiosktokens"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"go.uber.org/zap"
)

// TokenHeader carries the raw kiosk token on visitor registrations.
const TokenHeader = "X-Kiosk-Token"

// Handler issues kiosk tokens and accepts visitor self-registration.
type Handler struct {
	Tokens     *kioskstore.Store
	Churches   *churchstore.Store
	Persons    *personstore.Store
	Automation *automation.Service
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(tokens *kioskstore.Store, churches *churchstore.Store, persons *personstore.Store, svc *automation.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Tokens:     tokens,
		Churches:   churches,
		Persons:    persons,
		Automation: svc,
		Audit:      audit,
		Log:        logger,
	}
}
