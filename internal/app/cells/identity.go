// internal/app/cells/identity.go
package cells

import (
	"context"
	"sync"

	"github.com/dalemusser/teamspace/internal/app/system/signal"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.uber.org/zap"
)

// AuthStatus is the identity cell's state machine:
// idle → loading → {authenticated, unauthenticated}.
type AuthStatus string

const (
	AuthIdle            AuthStatus = "idle"
	AuthLoading         AuthStatus = "loading"
	AuthAuthenticated   AuthStatus = "authenticated"
	AuthUnauthenticated AuthStatus = "unauthenticated"
)

// IdentityState is the identity cell's published slice of state.
type IdentityState struct {
	Status   AuthStatus
	Identity *models.Identity
	Error    string
}

// IdentityCell owns the session slice: who, if anyone, is signed in. It
// has no upstream cells; the identity provider pushes session changes in
// through SetUser, which is the only command the provider subscription is
// allowed to call.
type IdentityCell struct {
	provider IdentityProvider
	log      *zap.Logger

	state *signal.Source[IdentityState]

	mu          sync.Mutex
	logoutHooks []func()
	unsubscribe func()
}

// NewIdentityCell builds the cell and attaches it to the provider's
// session stream.
func NewIdentityCell(provider IdentityProvider, log *zap.Logger) *IdentityCell {
	c := &IdentityCell{
		provider: provider,
		log:      log.Named("identity_cell"),
		state:    signal.New(IdentityState{Status: AuthIdle}),
	}
	c.unsubscribe = provider.OnSessionChanged(c.SetUser)
	return c
}

// State returns the current identity state.
func (c *IdentityCell) State() IdentityState { return c.state.Get() }

// Subscribe registers fn for state changes and returns an unsubscribe
// function.
func (c *IdentityCell) Subscribe(fn func(IdentityState)) func() {
	return c.state.Subscribe(fn)
}

// OnLogout registers a downstream obligation to run when Logout
// completes. The engine wires the context cell's ClearContext here; the
// cascade is an explicit contract, not an implicit subscription effect.
func (c *IdentityCell) OnLogout(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logoutHooks = append(c.logoutHooks, fn)
}

// Login authenticates against the provider. Failure transitions to
// unauthenticated and records a human-readable error; it never panics
// past the cell boundary.
func (c *IdentityCell) Login(ctx context.Context, email, password string) error {
	c.state.Set(IdentityState{Status: AuthLoading})

	id, err := c.provider.Login(ctx, email, password)
	if err != nil {
		c.log.Info("login failed", zap.String("email", email), zap.Error(err))
		c.state.Set(IdentityState{Status: AuthUnauthenticated, Error: "login failed: " + err.Error()})
		return err
	}

	c.state.Set(IdentityState{Status: AuthAuthenticated, Identity: &id})
	return nil
}

// Register creates an account and signs it in, with the same failure
// semantics as Login.
func (c *IdentityCell) Register(ctx context.Context, email, password, displayName string) error {
	c.state.Set(IdentityState{Status: AuthLoading})

	id, err := c.provider.Register(ctx, email, password, displayName)
	if err != nil {
		c.log.Info("registration failed", zap.String("email", email), zap.Error(err))
		c.state.Set(IdentityState{Status: AuthUnauthenticated, Error: "registration failed: " + err.Error()})
		return err
	}

	c.state.Set(IdentityState{Status: AuthAuthenticated, Identity: &id})
	return nil
}

// ResetPassword asks the provider to start a reset flow. It does not
// change the session state.
func (c *IdentityCell) ResetPassword(ctx context.Context, email string) error {
	if err := c.provider.ResetPassword(ctx, email); err != nil {
		c.log.Warn("password reset failed", zap.String("email", email), zap.Error(err))
		return err
	}
	return nil
}

// Logout ends the session, then runs the registered downstream
// obligations (clearing the context cell and, through it, everything
// below). The provider call is best effort: local state clears even if
// the provider errors.
func (c *IdentityCell) Logout(ctx context.Context) error {
	err := c.provider.Logout(ctx)
	if err != nil {
		c.log.Warn("provider logout failed", zap.Error(err))
	}

	c.state.Set(IdentityState{Status: AuthUnauthenticated})

	c.mu.Lock()
	hooks := make([]func(), len(c.logoutHooks))
	copy(hooks, c.logoutHooks)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return err
}

// SetUser is the provider subscription's entry point: a non-nil identity
// means a (possibly restored) session, nil means the session ended
// outside our control.
func (c *IdentityCell) SetUser(id *models.Identity) {
	if id == nil {
		c.state.Set(IdentityState{Status: AuthUnauthenticated})
		return
	}
	c.state.Set(IdentityState{Status: AuthAuthenticated, Identity: id})
}

// Close detaches the cell from the provider stream.
func (c *IdentityCell) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}
