// internal/app/features/notifications/handler.go
package notifications

import (
	"context"

	churchstore "github.com/dalemusser/iglesiahub/internal/app/store/churches"
	familystore "github.com/dalemusser/iglesiahub/internal/app/store/families"
	ministrystore "github.com/dalemusser/iglesiahub/internal/app/store/ministries"
	notificationstore "github.com/dalemusser/iglesiahub/internal/app/store/notifications"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/notify"
	"go.uber.org/zap"
)

// Dispatcher fans a message out to its recipients.
type Dispatcher interface {
	Send(ctx context.Context, req notify.Request) (notify.Summary, error)
}

// Handler sends notifications and lists the dispatch log.
type Handler struct {
	Churches      *churchstore.Store
	Persons       *personstore.Store
	Families      *familystore.Store
	Ministries    *ministrystore.Store
	Notifications *notificationstore.Store
	Dispatcher    Dispatcher
	Audit         *auditlog.Logger
	Log           *zap.Logger
}

// Stores groups the collections the handler reads recipients from.
type Stores struct {
	Churches      *churchstore.Store
	Persons       *personstore.Store
	Families      *familystore.Store
	Ministries    *ministrystore.Store
	Notifications *notificationstore.Store
}

func NewHandler(st Stores, d Dispatcher, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Churches:      st.Churches,
		Persons:       st.Persons,
		Families:      st.Families,
		Ministries:    st.Ministries,
		Notifications: st.Notifications,
		Dispatcher:    d,
		Audit:         audit,
		Log:           logger,
	}
}
