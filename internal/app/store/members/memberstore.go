// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/teamspace/internal/app/store/livequery"
	"github.com/dalemusser/teamspace/internal/app/store/storeerr"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists workspace seats and the invitations that create them.
type Store struct {
	c    *mongo.Collection // members
	invs *mongo.Collection // invitations
}

var (
	ErrNotFound           = fmt.Errorf("member %w", storeerr.ErrNotFound)
	ErrInvitationNotFound = fmt.Errorf("invitation %w", storeerr.ErrNotFound)
)

func New(db *mongo.Database) *Store {
	return &Store{
		c:    db.Collection("members"),
		invs: db.Collection("invitations"),
	}
}

func (s *Store) Add(ctx context.Context, m models.Member) (models.Member, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.JoinedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

func (s *Store) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": workspaceID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	members := []models.Member{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"role":       role,
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

func (s *Store) Remove(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Watch streams whole-list snapshots of a workspace's roster.
func (s *Store) Watch(ctx context.Context, workspaceID primitive.ObjectID) (<-chan []models.Member, error) {
	return livequery.Snapshots(ctx, s.c, func(ctx context.Context) ([]models.Member, error) {
		return s.ListByWorkspace(ctx, workspaceID)
	})
}

func (s *Store) CreateInvitation(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	now := time.Now().UTC()
	inv.ID = primitive.NewObjectID()
	inv.Status = models.InvitationPending
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if _, err := s.invs.InsertOne(ctx, inv); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

func (s *Store) GetInvitationByToken(ctx context.Context, token string) (models.Invitation, error) {
	var inv models.Invitation
	err := s.invs.FindOne(ctx, bson.M{"token": token}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return models.Invitation{}, ErrInvitationNotFound
	}
	if err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

func (s *Store) UpdateInvitationStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.invs.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

// ExpireStale flips pending invitations past their deadline to
// expired. The invitation sweeper runs this on a schedule.
func (s *Store) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.invs.UpdateMany(ctx,
		bson.M{"status": models.InvitationPending, "expires_at": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.InvitationExpired, "updated_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return err
	}
	_, err = s.invs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
		},
	})
	return err
}
