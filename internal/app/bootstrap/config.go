// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for IglesiaHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: IGLESIAHUB_MONGO_URI, IGLESIAHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "iglesia_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "iglesiahub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session cookie lifetime (e.g., 12h, 30m)"},

	// Hosted identity provider
	{Name: "auth_jwt_secret", Default: "", Desc: "HS256 secret shared with the identity provider (required outside dev)"},
	{Name: "auth_jwt_issuer", Default: "", Desc: "Expected token issuer (blank accepts any)"},

	// Redis run lock
	{Name: "redis_addr", Default: "", Desc: "Redis address for the automation lock (blank uses an in-process lock)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Membership automation
	{Name: "automation_enabled", Default: true, Desc: "Run the periodic membership automation job"},
	{Name: "automation_interval", Default: "24h", Desc: "Interval between automation runs (e.g., 24h, 6h)"},

	// SMS / WhatsApp provider
	{Name: "notify_provider_url", Default: "", Desc: "Messaging provider base URL (blank disables sms/whatsapp)"},
	{Name: "notify_account_sid", Default: "", Desc: "Messaging provider account SID"},
	{Name: "notify_auth_token", Default: "", Desc: "Messaging provider auth token"},
	{Name: "notify_sms_from", Default: "", Desc: "Default SMS sender number"},
	{Name: "notify_whatsapp_from", Default: "", Desc: "Default WhatsApp sender number"},
	{Name: "notify_provider_retry", Default: 2, Desc: "Retries for failed provider calls"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables email)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_smtp_starttls", Default: true, Desc: "Require STARTTLS (disable for local relays)"},
	{Name: "mail_from", Default: "avisos@iglesiahub.org", Desc: "From email address"},
	{Name: "mail_from_name", Default: "IglesiaHub", Desc: "From display name"},

	// Photo storage
	{Name: "storage_type", Default: "local", Desc: "Photo storage backend: 'local', 's3' or 'none'"},
	{Name: "storage_local_path", Default: "./uploads/photos", Desc: "Local storage path for person photos"},
	{Name: "storage_local_url", Default: "/photos", Desc: "URL prefix for serving local photos"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "photos/", Desc: "S3 key prefix"},

	// Kiosk
	{Name: "kiosk_rate_limit", Default: 30, Desc: "Kiosk registrations per client IP per minute"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated CIDRs of reverse proxies whose X-Forwarded-For is honored"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_automation", Default: "db", Desc: "Automation run logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, IGLESIAHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "IGLESIAHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 12*time.Hour),

		AuthJWTSecret: appValues.String("auth_jwt_secret"),
		AuthJWTIssuer: appValues.String("auth_jwt_issuer"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		AutomationEnabled:  appValues.Bool("automation_enabled"),
		AutomationInterval: appValues.Duration("automation_interval", 24*time.Hour),

		NotifyProviderURL:   appValues.String("notify_provider_url"),
		NotifyAccountSID:    appValues.String("notify_account_sid"),
		NotifyAuthToken:     appValues.String("notify_auth_token"),
		NotifySMSFrom:       appValues.String("notify_sms_from"),
		NotifyWhatsAppFrom:  appValues.String("notify_whatsapp_from"),
		NotifyProviderRetry: appValues.Int("notify_provider_retry"),

		MailSMTPHost:     appValues.String("mail_smtp_host"),
		MailSMTPPort:     appValues.Int("mail_smtp_port"),
		MailSMTPUser:     appValues.String("mail_smtp_user"),
		MailSMTPPass:     appValues.String("mail_smtp_pass"),
		MailSMTPStartTLS: appValues.Bool("mail_smtp_starttls"),
		MailFrom:         appValues.String("mail_from"),
		MailFromName:     appValues.String("mail_from_name"),

		StorageType:      strings.ToLower(appValues.String("storage_type")),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),
		StorageS3Region:  appValues.String("storage_s3_region"),
		StorageS3Bucket:  appValues.String("storage_s3_bucket"),
		StorageS3Prefix:  appValues.String("storage_s3_prefix"),

		KioskRateLimit: appValues.Int("kiosk_rate_limit"),
		TrustedProxies: appValues.String("trusted_proxies"),

		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditLogAdmin:      appValues.String("audit_log_admin"),
		AuditLogAutomation: appValues.String("audit_log_automation"),
	}

	return coreCfg, appCfg, nil
}

func validAuditDestination(v string) bool {
	switch v {
	case auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		return true
	}
	return false
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked here to catch configuration errors early,
// before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env != "dev" && appCfg.AuthJWTSecret == "" {
		return fmt.Errorf("auth_jwt_secret is required outside dev")
	}

	switch appCfg.StorageType {
	case "local", "none":
	case "s3":
		if appCfg.StorageS3Region == "" || appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("storage_type 's3' requires storage_s3_region and storage_s3_bucket")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want local, s3 or none)", appCfg.StorageType)
	}

	if appCfg.AutomationEnabled && appCfg.AutomationInterval < time.Minute {
		return fmt.Errorf("automation_interval must be at least 1m, got %s", appCfg.AutomationInterval)
	}

	if _, err := ratelimit.ParseProxies(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted_proxies: %w", err)
	}

	for key, v := range map[string]string{
		"audit_log_auth":       appCfg.AuditLogAuth,
		"audit_log_admin":      appCfg.AuditLogAdmin,
		"audit_log_automation": appCfg.AuditLogAutomation,
	} {
		if !validAuditDestination(v) {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}

	return nil
}
