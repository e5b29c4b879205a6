// internal/app/store/identities/identitystore.go
package identitystore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/teamspace/internal/app/store/storeerr"
	"github.com/dalemusser/teamspace/internal/app/system/normalize"
	"github.com/dalemusser/teamspace/internal/app/system/status"
	"github.com/dalemusser/teamspace/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists identities: the accounts that can authenticate and,
// for user and organization types, own workspaces.
type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound       = fmt.Errorf("identity %w", storeerr.ErrNotFound)
	ErrDuplicateEmail = errors.New("an identity with this email already exists")
	errBadType        = errors.New(`type must be "user"|"organization"|"bot"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("identities")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Identity, error) {
	var ident models.Identity
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ident)
	if err == mongo.ErrNoDocuments {
		return models.Identity{}, ErrNotFound
	}
	if err != nil {
		return models.Identity{}, err
	}
	return ident, nil
}

// GetByEmail looks up an identity by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Identity, error) {
	var ident models.Identity
	err := s.c.FindOne(ctx, bson.M{"email_ci": normalize.Email(email)}).Decode(&ident)
	if err == mongo.ErrNoDocuments {
		return models.Identity{}, ErrNotFound
	}
	if err != nil {
		return models.Identity{}, err
	}
	return ident, nil
}

// Create inserts a new identity after normalizing and validating
// fields. Email uniqueness is enforced by index; duplicates surface as
// ErrDuplicateEmail.
func (s *Store) Create(ctx context.Context, ident models.Identity) (models.Identity, error) {
	ident.ID = primitive.NewObjectID()
	ident.DisplayName = normalize.Name(ident.DisplayName)
	ident.Email = normalize.Email(ident.Email)
	ident.EmailCI = ident.Email
	ident.AuthMethod = normalize.AuthMethod(ident.AuthMethod)
	if ident.Status == "" {
		ident.Status = status.Active
	}

	if ident.Type == "" {
		ident.Type = models.IdentityUser
	}
	if !ident.Type.Valid() {
		return models.Identity{}, errBadType
	}
	if ident.Status != status.Active && ident.Status != status.Disabled {
		return models.Identity{}, errBadStatus
	}

	now := time.Now().UTC()
	ident.CreatedAt = now
	ident.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ident); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Identity{}, ErrDuplicateEmail
		}
		return models.Identity{}, err
	}
	return ident, nil
}

// UpdatePasswordHash stores a new bcrypt hash for the identity.
func (s *Store) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateDisplayName(ctx context.Context, id primitive.ObjectID, name string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"display_name": normalize.Name(name),
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, st string) error {
	st = normalize.Status(st)
	if st != status.Active && st != status.Disabled {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     st,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	return err
}
