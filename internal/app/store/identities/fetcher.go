// internal/app/store/identities/fetcher.go
package identitystore

import (
	"context"

	"github.com/dalemusser/teamspace/internal/app/system/auth"
	"github.com/dalemusser/teamspace/internal/app/system/status"
	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fetcher implements auth.UserFetcher so sessions are re-validated
// against the identities collection on each request.
type Fetcher struct {
	store *Store
}

func NewFetcher(s *Store) *Fetcher {
	return &Fetcher{store: s}
}

// FetchUser loads an identity by ID and returns nil if it does not
// exist, is disabled, or any error occurs. A nil return signs the
// session out.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	ident, err := f.store.GetByID(ctx, oid)
	if err != nil {
		return nil
	}
	if ident.Status != status.Active {
		return nil
	}

	return &auth.SessionUser{
		ID:    ident.ID.Hex(),
		Name:  ident.DisplayName,
		Email: ident.Email,
		Type:  string(ident.Type),
	}
}
