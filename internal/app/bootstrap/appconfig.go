// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging level, CORS); AppConfig
// is everything specific to TeamSpace.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: teamspace-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // How long a session cookie stays valid

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (localhost for Mailpit, a relay in production)
	MailSMTPPort int    // SMTP server port (1025 for Mailpit, 587 for a relay)
	MailSMTPUser string // SMTP username (empty disables authentication)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address
	MailFromName string // From display name

	// Base URL for links in emails (password reset, invitations)
	BaseURL  string // e.g., "https://teamspace.example" or "http://localhost:3000"
	SiteName string // Display name used in email copy

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Password reset settings
	PasswordResetExpiry time.Duration // How long a reset link stays redeemable

	// Background maintenance settings
	NotificationRetention time.Duration // How long read notifications are kept
}
