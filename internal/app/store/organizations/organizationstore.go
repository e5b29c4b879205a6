// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/teamspace/internal/app/store/storeerr"
	"github.com/dalemusser/teamspace/internal/app/system/status"
	"github.com/dalemusser/teamspace/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c     *mongo.Collection
	roles *mongo.Collection
}

var (
	ErrDuplicateOrganization = errors.New("an organization with this name already exists")
	ErrNotFound              = fmt.Errorf("organization %w", storeerr.ErrNotFound)
)

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("organizations"),
		roles: db.Collection("organization_roles"),
	}
}

func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.NameCI = text.Fold(org.Name)
	if org.Status == "" {
		org.Status = status.Active
	}
	org.CreatedAt = now
	org.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Organization{}, ErrNotFound
		}
		return models.Organization{}, err
	}
	return org, nil
}

// ListForUser returns the organizations the user holds a role in,
// sorted by name. This is the "available contexts" source for the
// organization lens.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Organization, error) {
	cur, err := s.roles.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	var roles []models.OrganizationRole
	if err := cur.All(ctx, &roles); err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return []models.Organization{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.OrganizationID)
	}

	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	orgCur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "status": status.Active}, opts)
	if err != nil {
		return nil, err
	}
	defer orgCur.Close(ctx)

	orgs := []models.Organization{}
	if err := orgCur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// AddRole grants a user a role in an organization.
func (s *Store) AddRole(ctx context.Context, role models.OrganizationRole) error {
	role.JoinedAt = time.Now().UTC()
	_, err := s.roles.InsertOne(ctx, role)
	if wafflemongo.IsDup(err) {
		return storeerr.ErrDuplicate
	}
	return err
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes for organizations and their roles.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name_ci", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_org_name_ci"),
	}); err != nil {
		return err
	}
	_, err := s.roles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organization_id", Value: 1},
			{Key: "user_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("idx_org_role_unique"),
	})
	return err
}
