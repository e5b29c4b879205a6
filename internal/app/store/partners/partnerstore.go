// internal/app/store/partners/partnerstore.go
package partnerstore

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
	c *mongo.Collection
}

var (
	ErrDuplicatePartner = errors.New("a partner with this name already exists in this organization")
	ErrNotFound         = fmt.Errorf("partner %w", storeerr.ErrNotFound)
	errNoOrg            = errors.New("partner requires an organization id")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("partners")}
}

// Create inserts a partner, enforcing the membership invariant: the
// organization id is required.
func (s *Store) Create(ctx context.Context, p models.Partner) (models.Partner, error) {
	if p.OrganizationID.IsZero() {
		return models.Partner{}, errNoOrg
	}

	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	if p.Status == "" {
		p.Status = status.Active
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Partner{}, ErrDuplicatePartner
		}
		return models.Partner{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Partner, error) {
	var p models.Partner
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Partner{}, ErrNotFound
		}
		return models.Partner{}, err
	}
	return p, nil
}

// ListForOrganization returns the organization's active partners.
func (s *Store) ListForOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Partner, error) {
	return s.list(ctx, bson.M{"organization_id": orgID, "status": status.Active})
}

// ListForUser returns the partner relationships the user participates
// in — the partner lenses available in the context switcher.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Partner, error) {
	return s.list(ctx, bson.M{"member_ids": userID.Hex(), "status": status.Active})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Partner, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	partners := []models.Partner{}
	if err := cur.All(ctx, &partners); err != nil {
		return nil, err
	}
	return partners, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes for the partners collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "name_ci", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_partner_org_name"),
		},
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("idx_partner_members"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
