// internal/app/identity/google.go
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	identitystore "github.com/dalemusser/teamspace/internal/app/store/identities"
	"github.com/dalemusser/teamspace/internal/app/system/status"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleConfig holds the OAuth client settings. Empty ClientID
// disables the flow.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://teamspace.example/auth/google/callback"
}

// Google runs the Google OAuth sign-in flow against the same identity
// store and session stream as the password flow.
type Google struct {
	provider *Provider
	idents   *identitystore.Store
	cfg      GoogleConfig
	log      *zap.Logger
}

func NewGoogle(provider *Provider, idents *identitystore.Store, cfg GoogleConfig, logger *zap.Logger) *Google {
	return &Google{
		provider: provider,
		idents:   idents,
		cfg:      cfg,
		log:      logger.Named("google_auth"),
	}
}

// IsConfigured reports whether client credentials are present.
func (g *Google) IsConfigured() bool {
	return g.cfg.ClientID != "" && g.cfg.ClientSecret != ""
}

func (g *Google) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		RedirectURL:  g.cfg.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// AuthCodeURL builds the consent screen URL carrying the CSRF state.
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// googleUserInfo is the shape returned by Google's userinfo endpoint.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// HandleCallback exchanges the authorization code, fetches the Google
// profile, and signs in the matching identity, creating one on first
// sign-in. The resulting session flows to subscribers like any other.
func (g *Google) HandleCallback(ctx context.Context, code string) (models.Identity, error) {
	token, err := g.oauth2Config().Exchange(ctx, code)
	if err != nil {
		return models.Identity{}, fmt.Errorf("token exchange: %w", err)
	}

	info, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		return models.Identity{}, err
	}
	if !info.EmailVerified {
		return models.Identity{}, errors.New("google account email is not verified")
	}

	ident, err := g.idents.GetByEmail(ctx, info.Email)
	switch {
	case err == nil:
		if ident.Status != status.Active {
			return models.Identity{}, ErrAccountDisabled
		}
	case errors.Is(err, identitystore.ErrNotFound):
		ident, err = g.idents.Create(ctx, models.Identity{
			Type:        models.IdentityUser,
			Email:       info.Email,
			DisplayName: info.Name,
			AuthMethod:  "google",
		})
		if err != nil {
			return models.Identity{}, err
		}
		g.log.Info("identity created from google sign-in",
			zap.String("identity_id", ident.ID.Hex()))
	default:
		return models.Identity{}, err
	}

	g.provider.setSession(&ident)
	return ident, nil
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}
