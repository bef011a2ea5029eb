// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/iglesiahub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Handler serves the church's audit trail to admins.
type Handler struct {
	Events *audit.Store
	Log    *zap.Logger
}

func NewHandler(events *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Log: logger}
}
