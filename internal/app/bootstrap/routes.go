// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"

	activityfeature "github.com/dalemusser/iglesiahub/internal/app/features/activity"
	auditlogfeature "github.com/dalemusser/iglesiahub/internal/app/features/auditlog"
	automationfeature "github.com/dalemusser/iglesiahub/internal/app/features/automation"
	churchfeature "github.com/dalemusser/iglesiahub/internal/app/features/church"
	dashboardfeature "github.com/dalemusser/iglesiahub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/iglesiahub/internal/app/features/errors"
	familiesfeature "github.com/dalemusser/iglesiahub/internal/app/features/families"
	healthfeature "github.com/dalemusser/iglesiahub/internal/app/features/health"
	kioskfeature "github.com/dalemusser/iglesiahub/internal/app/features/kiosk"
	ministriesfeature "github.com/dalemusser/iglesiahub/internal/app/features/ministries"
	notificationsfeature "github.com/dalemusser/iglesiahub/internal/app/features/notifications"
	personsfeature "github.com/dalemusser/iglesiahub/internal/app/features/persons"
	sessionfeature "github.com/dalemusser/iglesiahub/internal/app/features/session"
	activitystore "github.com/dalemusser/iglesiahub/internal/app/store/activity"
	auditstore "github.com/dalemusser/iglesiahub/internal/app/store/audit"
	churchstore "github.com/dalemusser/iglesiahub/internal/app/store/churches"
	familystore "github.com/dalemusser/iglesiahub/internal/app/store/families"
	kioskstore "github.com/dalemusser/iglesiahub/internal/app/store/kiosktokens"
	ministrystore "github.com/dalemusser/iglesiahub/internal/app/store/ministries"
	notificationstore "github.com/dalemusser/iglesiahub/internal/app/store/notifications"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Every /api route is scoped to the church
// carried by the caller's token or session; /kiosk is authenticated by
// kiosk token instead.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("BuildHandler called before Startup")
	}
	db := deps.IglesiaHubMongoDatabase

	persons := personstore.New(db)
	churches := churchstore.New(db)
	families := familystore.New(db)
	ministries := ministrystore.New(db)
	notifications := notificationstore.New(db)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context from the bearer
	// token or the session cookie.
	r.Use(svc.sessions.LoadUser)

	// JSON bodies for unmatched routes; mounted routers inherit these.
	errHandler := errorsfeature.NewHandler(logger)
	r.NotFound(errHandler.NotFound)
	r.MethodNotAllowed(errHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	var redisPing healthfeature.Pinger
	if deps.Redis != nil {
		redisPing = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.IglesiaHubMongoClient, redisPing, logger)))

	// Locally stored person photos
	if appCfg.StorageType == "local" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// Session exchange (token → cookie), rate limited per client IP
	sessionHandler := sessionfeature.NewHandler(svc.sessions, svc.audit, logger)
	r.Mount("/api/session", sessionfeature.Routes(sessionHandler, svc.sessionLimit.Middleware))

	churchHandler := churchfeature.NewHandler(churches, ministries, svc.audit, logger)
	r.Mount("/api/church", churchfeature.Routes(churchHandler))

	// Persons and membership automation
	personsHandler := personsfeature.NewHandler(persons, families, svc.automation, svc.photos, svc.audit, logger)
	r.Mount("/api/persons", personsfeature.Routes(personsHandler))

	automationHandler := automationfeature.NewHandler(svc.automation, svc.audit, logger)
	r.Mount("/api/automation", automationfeature.Routes(automationHandler))

	r.Mount("/api/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(db, logger)))

	// Church life
	familiesHandler := familiesfeature.NewHandler(families, persons, svc.audit, logger)
	r.Mount("/api/families", familiesfeature.Routes(familiesHandler))

	ministriesHandler := ministriesfeature.NewHandler(ministries, persons, svc.audit, logger)
	r.Mount("/api/ministries", ministriesfeature.Routes(ministriesHandler))

	activityHandler := activityfeature.NewHandler(activitystore.New(db), ministries, persons, logger)
	r.Mount("/api/activities", activityfeature.Routes(activityHandler))

	notificationsHandler := notificationsfeature.NewHandler(notificationsfeature.Stores{
		Churches:      churches,
		Persons:       persons,
		Families:      families,
		Ministries:    ministries,
		Notifications: notifications,
	}, svc.dispatcher, svc.audit, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notificationsHandler))

	// Kiosk token management (admin) and public visitor registration
	kioskHandler := kioskfeature.NewHandler(kioskstore.New(db), churches, persons, svc.automation, svc.audit, logger)
	r.Mount("/api/kiosk", kioskfeature.AdminRoutes(kioskHandler))
	r.Mount("/kiosk", kioskfeature.PublicRoutes(kioskHandler, svc.kioskLimit.Middleware))

	// Audit trail
	auditHandler := auditlogfeature.NewHandler(auditstore.New(db), logger)
	r.Mount("/api/audit", auditlogfeature.Routes(auditHandler))

	return r, nil
}
