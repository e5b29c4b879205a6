// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/teamspace/internal/app/cells"
	authfeature "github.com/dalemusser/teamspace/internal/app/features/auth"
	contextsfeature "github.com/dalemusser/teamspace/internal/app/features/contexts"
	documentsfeature "github.com/dalemusser/teamspace/internal/app/features/documents"
	healthfeature "github.com/dalemusser/teamspace/internal/app/features/health"
	membersfeature "github.com/dalemusser/teamspace/internal/app/features/members"
	modulesfeature "github.com/dalemusser/teamspace/internal/app/features/modules"
	notificationsfeature "github.com/dalemusser/teamspace/internal/app/features/notifications"
	workspacesfeature "github.com/dalemusser/teamspace/internal/app/features/workspaces"
	"github.com/dalemusser/teamspace/internal/app/identity"
	documentstore "github.com/dalemusser/teamspace/internal/app/store/documents"
	identitystore "github.com/dalemusser/teamspace/internal/app/store/identities"
	memberstore "github.com/dalemusser/teamspace/internal/app/store/members"
	modulestore "github.com/dalemusser/teamspace/internal/app/store/modules"
	notificationstore "github.com/dalemusser/teamspace/internal/app/store/notifications"
	"github.com/dalemusser/teamspace/internal/app/store/oauthstate"
	organizationstore "github.com/dalemusser/teamspace/internal/app/store/organizations"
	partnerstore "github.com/dalemusser/teamspace/internal/app/store/partners"
	"github.com/dalemusser/teamspace/internal/app/store/passwordreset"
	teamstore "github.com/dalemusser/teamspace/internal/app/store/teams"
	workspacestore "github.com/dalemusser/teamspace/internal/app/store/workspaces"
	"github.com/dalemusser/teamspace/internal/app/system/auth"
	"github.com/dalemusser/teamspace/internal/app/system/mailer"
	"github.com/dalemusser/teamspace/internal/app/system/tasks"
	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
	"github.com/dalemusser/teamspace/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// running holds what BuildHandler starts and Shutdown must stop. It is
// written once during startup, before the server accepts traffic.
var running struct {
	engine *cells.Engine
	jobs   *workers.Runner
}

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connection, and schema setup
// have completed. TeamSpace wires one engine instance over the Mongo
// stores and mounts thin JSON feature routers around it; every handler
// drives the engine, none bypasses it.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Store-call deadlines, overridable via TEAMSPACE_TIMEOUT_* before
	// anything that uses them is built.
	timeouts.FromEnv()

	// Stores.
	idents := identitystore.New(db)
	orgs := organizationstore.New(db)
	teams := teamstore.New(db)
	partners := partnerstore.New(db)
	wss := workspacestore.New(db)
	mods := modulestore.New(db)
	docs := documentstore.New(db)
	mems := memberstore.New(db)
	notifs := notificationstore.New(db)
	states := oauthstate.New(db)
	resets := passwordreset.New(db, appCfg.PasswordResetExpiry)

	// Outbound mail. An empty host disables delivery; the provider and
	// handlers then log links instead of sending them.
	var mail *mailer.Mailer
	if appCfg.MailSMTPHost != "" {
		mail = mailer.New(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			User:     appCfg.MailSMTPUser,
			Pass:     appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		}, logger)
	}

	// Identity provider and its Google variant.
	provider := identity.NewProvider(idents, resets, identity.Config{
		SiteName: appCfg.SiteName,
		BaseURL:  appCfg.BaseURL,
		Mail:     mail,
	}, logger)

	var google *identity.Google
	if appCfg.GoogleClientID != "" {
		google = identity.NewGoogle(provider, idents, identity.GoogleConfig{
			ClientID:     appCfg.GoogleClientID,
			ClientSecret: appCfg.GoogleClientSecret,
			RedirectURL:  appCfg.BaseURL + "/auth/google/callback",
		}, logger)
	}

	// The engine: every cell, wired over the stores. One engine per
	// process: cell state follows the provider's single active session,
	// so each operator runs their own instance (or their own session
	// partition), the same way a desktop client owns its state tree.
	// Requests for a signed-out session are rejected by the session
	// middleware before they can read another session's engine state.
	engine := cells.New(provider, cells.Repos{
		Organizations: orgs,
		Teams:         teams,
		Partners:      partners,
		Workspaces:    wss,
		Modules:       mods,
		Documents:     docs,
		Members:       mems,
		Notifications: notifs,
	}, logger)

	// Cookie sessions. Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: re-validates the session user against the
	// identity store on each request, so disabled accounts take effect
	// immediately.
	r.Use(sessionMgr.LoadSessionUser(identitystore.NewFetcher(idents)))

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication, including the browser-facing Google redirect pair.
	authHandler := authfeature.NewHandler(engine, provider, google, sessionMgr, states, logger)
	r.Mount("/api/auth", authfeature.Routes(authHandler))
	r.Mount("/auth/google", authfeature.GoogleRoutes(authHandler))

	// Engine-driven feature routers.
	r.Mount("/api/context", contextsfeature.Routes(contextsfeature.NewHandler(engine, logger), sessionMgr))
	r.Mount("/api/workspaces", workspacesfeature.Routes(workspacesfeature.NewHandler(engine, logger), sessionMgr))
	r.Mount("/api/modules", modulesfeature.Routes(modulesfeature.NewHandler(engine, logger), sessionMgr))
	r.Mount("/api/documents", documentsfeature.Routes(documentsfeature.NewHandler(engine, logger), sessionMgr))
	r.Mount("/api/members", membersfeature.Routes(
		membersfeature.NewHandler(engine, mail, appCfg.SiteName, appCfg.BaseURL, logger), sessionMgr))
	r.Mount("/api/notifications", notificationsfeature.Routes(notificationsfeature.NewHandler(engine, logger), sessionMgr))

	// Background maintenance.
	runner := workers.NewRunner(logger,
		tasks.NotificationPruneJob(notifs, logger, appCfg.NotificationRetention),
		tasks.InvitationExpiryJob(mems, logger),
		tasks.OAuthStateCleanupJob(states, logger),
	)
	runner.Start()

	running.engine = engine
	running.jobs = runner

	return r, nil
}
