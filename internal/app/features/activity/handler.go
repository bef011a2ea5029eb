// internal/app/features/activity/handler.go
package activity

import (
	activitystore "github.com/dalemusser/iglesiahub/internal/app/store/activity"
	ministrystore "github.com/dalemusser/iglesiahub/internal/app/store/ministries"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"go.uber.org/zap"
)

// Handler owns the activity calendar and attendance handlers.
type Handler struct {
	Activities *activitystore.Store
	Ministries *ministrystore.Store
	Persons    *personstore.Store
	Log        *zap.Logger
}

// NewHandler creates a new activity Handler.
func NewHandler(activities *activitystore.Store, ministries *ministrystore.Store, persons *personstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Activities: activities,
		Ministries: ministries,
		Persons:    persons,
		Log:        logger,
	}
}
