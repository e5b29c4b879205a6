// Package identity implements the session collaborator behind the
// identity cell: local email/password authentication, Google OAuth,
// and the password reset flow. Session transitions fan out to
// subscribers registered with OnSessionChanged.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	identitystore "github.com/dalemusser/teamspace/internal/app/store/identities"
	"github.com/dalemusser/teamspace/internal/app/store/passwordreset"
	"github.com/dalemusser/teamspace/internal/app/system/mailer"
	"github.com/dalemusser/teamspace/internal/app/system/normalize"
	"github.com/dalemusser/teamspace/internal/app/system/status"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLen)
	ErrDuplicateEmail     = identitystore.ErrDuplicateEmail
)

// Provider owns the current session and the credential flows that
// change it.
type Provider struct {
	idents   *identitystore.Store
	resets   *passwordreset.Store
	mail     *mailer.Mailer
	siteName string
	baseURL  string
	log      *zap.Logger

	mu      sync.Mutex
	current *models.Identity
	subs    map[int]func(*models.Identity)
	nextSub int
}

// Config carries the non-store collaborators for a Provider. Mail may
// be nil, in which case reset emails are logged instead of sent.
type Config struct {
	SiteName string
	BaseURL  string
	Mail     *mailer.Mailer
}

func NewProvider(idents *identitystore.Store, resets *passwordreset.Store, cfg Config, logger *zap.Logger) *Provider {
	return &Provider{
		idents:   idents,
		resets:   resets,
		mail:     cfg.Mail,
		siteName: cfg.SiteName,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		log:      logger.Named("identity_provider"),
		subs:     map[int]func(*models.Identity){},
	}
}

// OnSessionChanged registers cb for session transitions (nil identity
// on logout or expiry) and returns an unsubscribe function.
func (p *Provider) OnSessionChanged(cb func(*models.Identity)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = cb
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Current returns the signed-in identity, or nil.
func (p *Provider) Current() *models.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// setSession records the new session and notifies subscribers outside
// the lock.
func (p *Provider) setSession(ident *models.Identity) {
	p.mu.Lock()
	p.current = ident
	cbs := make([]func(*models.Identity), 0, len(p.subs))
	for _, cb := range p.subs {
		cbs = append(cbs, cb)
	}
	p.mu.Unlock()

	for _, cb := range cbs {
		cb(ident)
	}
}

// Login authenticates an email/password pair. Lookup misses and hash
// mismatches both surface as ErrInvalidCredentials so callers cannot
// probe which emails exist.
func (p *Provider) Login(ctx context.Context, email, password string) (models.Identity, error) {
	ident, err := p.idents.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identitystore.ErrNotFound) {
			return models.Identity{}, ErrInvalidCredentials
		}
		return models.Identity{}, err
	}

	if ident.Status != status.Active {
		return models.Identity{}, ErrAccountDisabled
	}
	if ident.PasswordHash == "" {
		return models.Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(password)); err != nil {
		return models.Identity{}, ErrInvalidCredentials
	}

	p.log.Info("login succeeded", zap.String("identity_id", ident.ID.Hex()))
	p.setSession(&ident)
	return ident, nil
}

// Register creates a user identity with a bcrypt-hashed password and
// signs it in.
func (p *Provider) Register(ctx context.Context, email, password, displayName string) (models.Identity, error) {
	if len(password) < minPasswordLen {
		return models.Identity{}, ErrWeakPassword
	}
	email = normalize.Email(email)
	if email == "" || !strings.Contains(email, "@") {
		return models.Identity{}, errors.New("a valid email is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Identity{}, err
	}

	ident, err := p.idents.Create(ctx, models.Identity{
		Type:         models.IdentityUser,
		Email:        email,
		DisplayName:  displayName,
		AuthMethod:   "password",
		PasswordHash: string(hash),
	})
	if err != nil {
		return models.Identity{}, err
	}

	p.log.Info("identity registered", zap.String("identity_id", ident.ID.Hex()))
	p.setSession(&ident)
	return ident, nil
}

// ResetPassword starts a reset flow. Unknown emails succeed silently
// so the endpoint cannot be used to probe accounts.
func (p *Provider) ResetPassword(ctx context.Context, email string) error {
	ident, err := p.idents.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identitystore.ErrNotFound) {
			p.log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	reset, err := p.resets.Create(ctx, ident.ID, ident.Email)
	if err != nil {
		if errors.Is(err, passwordreset.ErrTooManyRequests) {
			p.log.Warn("password reset rate limited", zap.String("identity_id", ident.ID.Hex()))
			return nil
		}
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", p.baseURL, reset.Token)
	if p.mail == nil {
		p.log.Info("password reset link (no mailer configured)",
			zap.String("identity_id", ident.ID.Hex()),
			zap.String("link", link))
		return nil
	}

	msg := mailer.BuildResetEmail(mailer.ResetEmailData{
		SiteName:  p.siteName,
		ResetLink: link,
		ExpiresIn: formatDuration(p.resets.Expiry()),
	})
	msg.To = ident.Email
	if err := p.mail.Send(msg); err != nil {
		p.log.Error("failed to send reset email", zap.Error(err))
		return err
	}

	p.log.Info("password reset email sent", zap.String("identity_id", ident.ID.Hex()))
	return nil
}

// CompleteReset redeems a token and stores the new password hash. The
// token is single use.
func (p *Provider) CompleteReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}

	reset, err := p.resets.Redeem(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := p.idents.UpdatePasswordHash(ctx, reset.IdentityID, string(hash)); err != nil {
		return err
	}

	// Invalidate any other outstanding tokens for this identity.
	if err := p.resets.DeleteForIdentity(ctx, reset.IdentityID); err != nil {
		p.log.Warn("failed to clear remaining reset tokens", zap.Error(err))
	}

	p.log.Info("password reset completed", zap.String("identity_id", reset.IdentityID.Hex()))
	return nil
}

// Logout ends the session and notifies subscribers.
func (p *Provider) Logout(ctx context.Context) error {
	p.setSession(nil)
	return nil
}

// Restore re-establishes a session from a stored identity ID, used
// when a returning client presents a valid session cookie.
func (p *Provider) Restore(ctx context.Context, ident models.Identity) {
	p.setSession(&ident)
}

func formatDuration(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
