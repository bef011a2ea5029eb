// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	auditstore "github.com/dalemusser/iglesiahub/internal/app/store/audit"
	churchstore "github.com/dalemusser/iglesiahub/internal/app/store/churches"
	notificationstore "github.com/dalemusser/iglesiahub/internal/app/store/notifications"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"github.com/dalemusser/iglesiahub/internal/app/system/notify"
	"github.com/dalemusser/iglesiahub/internal/app/system/photostore"
	"github.com/dalemusser/iglesiahub/internal/app/system/ratelimit"
	"github.com/dalemusser/iglesiahub/internal/app/system/runlock"
	"github.com/dalemusser/iglesiahub/internal/app/system/tasks"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"github.com/dalemusser/iglesiahub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// services holds the long-lived objects built once in Startup and shared by
// BuildHandler and Shutdown.
type services struct {
	sessions     *auth.SessionManager
	audit        *auditlog.Logger
	automation   *automation.Service
	dispatcher   *notify.Dispatcher
	photos       photostore.Store
	kioskLimit   *ratelimit.Limiter
	sessionLimit *ratelimit.Limiter
	worker       *workers.Periodic
}

var svc *services

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	s, err := buildServices(ctx, coreCfg, appCfg, deps, logger)
	if err != nil {
		return err
	}
	if appCfg.AutomationEnabled {
		runner := automation.NewRunner(s.automation, churchstore.New(deps.IglesiaHubMongoDatabase), logger)
		job := tasks.AutomationJob(runner, s.audit, logger, appCfg.AutomationInterval)
		s.worker = workers.NewPeriodic(job, logger, timeouts.Batch())
		s.worker.Start()
	} else {
		logger.Info("membership automation job disabled")
	}
	svc = s
	return nil
}

func buildServices(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*services, error) {
	db := deps.IglesiaHubMongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	verifier := auth.NewVerifier(appCfg.AuthJWTSecret, appCfg.AuthJWTIssuer)
	sm, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, verifier, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:       appCfg.AuditLogAuth,
		Admin:      appCfg.AuditLogAdmin,
		Automation: appCfg.AuditLogAutomation,
	})

	var lock automation.Locker
	if deps.Redis != nil {
		lock = runlock.NewRedis(deps.Redis, "iglesiahub:automation:", 0, logger)
	} else {
		logger.Warn("redis_addr not set; automation lock is per-process")
		lock = runlock.NewLocal()
	}
	automationSvc := automation.New(personstore.New(db), nil, lock, logger)

	// Nil senders leave a channel unconfigured; sends on it are logged as failed.
	var sms, whatsapp, email notify.Sender
	if appCfg.NotifyProviderURL != "" {
		provider := notify.NewProviderClient(notify.ProviderConfig{
			BaseURL:      appCfg.NotifyProviderURL,
			AccountSID:   appCfg.NotifyAccountSID,
			AuthToken:    appCfg.NotifyAuthToken,
			SMSFrom:      appCfg.NotifySMSFrom,
			WhatsAppFrom: appCfg.NotifyWhatsAppFrom,
			Timeout:      timeouts.Medium(),
			RetryCount:   appCfg.NotifyProviderRetry,
		}, logger)
		sms, whatsapp = provider, provider
	}
	if appCfg.MailSMTPHost != "" {
		email = notify.NewMailer(notify.SMTPConfig{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			Username: appCfg.MailSMTPUser,
			Password: appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
			StartTLS: appCfg.MailSMTPStartTLS,
		}, logger)
	}
	dispatcher := notify.NewDispatcher(sms, whatsapp, email, notificationstore.New(db), logger)

	var photos photostore.Store
	switch appCfg.StorageType {
	case "local":
		photos = photostore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
	case "s3":
		s3, err := photostore.NewS3(ctx, appCfg.StorageS3Region, appCfg.StorageS3Bucket, appCfg.StorageS3Prefix)
		if err != nil {
			logger.Error("S3 photo storage init failed", zap.Error(err))
			return nil, fmt.Errorf("photo storage: %w", err)
		}
		photos = s3
	}

	kioskPerMinute := appCfg.KioskRateLimit
	if kioskPerMinute <= 0 {
		kioskPerMinute = 30
	}

	proxies, err := ratelimit.ParseProxies(appCfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	kioskLimit := ratelimit.New(kioskPerMinute, time.Minute)
	kioskLimit.TrustProxies(proxies)
	sessionLimit := ratelimit.New(20, time.Minute)
	sessionLimit.TrustProxies(proxies)

	return &services{
		sessions:     sm,
		audit:        audit,
		automation:   automationSvc,
		dispatcher:   dispatcher,
		photos:       photos,
		kioskLimit:   kioskLimit,
		sessionLimit: sessionLimit,
	}, nil
}
