// internal/app/store/passwordreset/store.go
package passwordreset

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultExpiry is how long a reset token stays redeemable.
	DefaultExpiry = 30 * time.Minute
	// MaxActive caps outstanding tokens per identity within the expiry
	// window, limiting reset-email spam.
	MaxActive = 3
)

var (
	// ErrNotFound is returned when a reset record is missing or expired.
	ErrNotFound = errors.New("reset token not found or expired")
	// ErrTooManyRequests is returned when an identity already has the
	// maximum number of outstanding tokens.
	ErrTooManyRequests = errors.New("too many reset requests")
)

// Reset is a pending password reset, redeemable once by token.
type Reset struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	IdentityID primitive.ObjectID `bson:"identity_id"`
	Email      string             `bson:"email"`
	Token      string             `bson:"token"`
	ExpiresAt  time.Time          `bson:"expires_at"` // TTL index field
	CreatedAt  time.Time          `bson:"created_at"`
}

// Store manages password reset records.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store with the given token expiry. Zero or negative
// uses DefaultExpiry.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{
		c:      db.Collection("password_resets"),
		expiry: expiry,
	}
}

func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// EnsureIndexes creates the token lookup index and a TTL index so
// expired records clean themselves up.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_pwreset_expires_ttl").SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("idx_pwreset_token").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "identity_id", Value: 1}},
			Options: options.Index().SetName("idx_pwreset_identity"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create issues a new reset token for the identity, rate-limited by
// MaxActive outstanding tokens.
func (s *Store) Create(ctx context.Context, identityID primitive.ObjectID, email string) (Reset, error) {
	now := time.Now().UTC()

	active, err := s.c.CountDocuments(ctx, bson.M{
		"identity_id": identityID,
		"expires_at":  bson.M{"$gt": now},
	})
	if err != nil {
		return Reset{}, err
	}
	if active >= MaxActive {
		return Reset{}, ErrTooManyRequests
	}

	r := Reset{
		ID:         primitive.NewObjectID(),
		IdentityID: identityID,
		Email:      email,
		Token:      uuid.NewString(),
		ExpiresAt:  now.Add(s.expiry),
		CreatedAt:  now,
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return Reset{}, err
	}
	return r, nil
}

// Redeem looks up an unexpired token and deletes it so it cannot be
// used twice.
func (s *Store) Redeem(ctx context.Context, token string) (Reset, error) {
	var r Reset
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return Reset{}, ErrNotFound
	}
	if err != nil {
		return Reset{}, err
	}
	return r, nil
}

// DeleteForIdentity removes all outstanding tokens for an identity,
// used after a successful reset or account deletion.
func (s *Store) DeleteForIdentity(ctx context.Context, identityID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"identity_id": identityID})
	return err
}
