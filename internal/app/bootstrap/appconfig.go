// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries everything specific to IglesiaHub: the document store,
// the hosted identity provider, the notification transports, photo storage
// and the membership automation schedule.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: iglesiahub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Hosted identity provider (HS256 shared secret)
	AuthJWTSecret string
	AuthJWTIssuer string

	// Redis backs the per-church automation lock. Blank address means an
	// in-process lock (single instance only).
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Membership automation
	AutomationEnabled  bool
	AutomationInterval time.Duration

	// SMS / WhatsApp provider
	NotifyProviderURL   string
	NotifyAccountSID    string
	NotifyAuthToken     string
	NotifySMSFrom       string
	NotifyWhatsAppFrom  string
	NotifyProviderRetry int

	// Email/SMTP configuration
	MailSMTPHost     string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort     int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser     string
	MailSMTPPass     string
	MailSMTPStartTLS bool
	MailFrom         string // From email address (e.g., avisos@iglesiahub.org)
	MailFromName     string // From display name

	// Photo storage configuration
	StorageType      string // Storage backend: "local", "s3" or "none"
	StorageLocalPath string // Local storage path (e.g., "./uploads/photos")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/photos")
	StorageS3Region  string
	StorageS3Bucket  string
	StorageS3Prefix  string

	// Kiosk registrations allowed per client IP per minute
	KioskRateLimit int

	// Reverse proxy networks trusted to set X-Forwarded-For (comma-separated CIDRs)
	TrustedProxies string

	// Audit logging destinations per category: all, db, log, off
	AuditLogAuth       string
	AuditLogAdmin      string
	AuditLogAutomation string
}
