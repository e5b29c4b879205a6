// internal/app/store/teams/teamstore.go
package teamstore

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
	ErrDuplicateTeam = errors.New("a team with this name already exists in this organization")
	ErrNotFound      = fmt.Errorf("team %w", storeerr.ErrNotFound)
	errNoOrg         = errors.New("team requires an organization id")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teams")}
}

// Create inserts a team, enforcing the membership invariant: the
// organization id is required.
func (s *Store) Create(ctx context.Context, team models.Team) (models.Team, error) {
	if team.OrganizationID.IsZero() {
		return models.Team{}, errNoOrg
	}

	now := time.Now().UTC()
	team.ID = primitive.NewObjectID()
	team.NameCI = text.Fold(team.Name)
	if team.Status == "" {
		team.Status = status.Active
	}
	team.CreatedAt = now
	team.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, team); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, ErrDuplicateTeam
		}
		return models.Team{}, err
	}
	return team, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error) {
	var team models.Team
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Team{}, ErrNotFound
		}
		return models.Team{}, err
	}
	return team, nil
}

// ListForOrganization returns the organization's active teams.
func (s *Store) ListForOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Team, error) {
	return s.list(ctx, bson.M{"organization_id": orgID, "status": status.Active})
}

// ListForUser returns the teams the user belongs to, across
// organizations — the team lenses available in the context switcher.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Team, error) {
	return s.list(ctx, bson.M{"member_ids": userID.Hex(), "status": status.Active})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	teams := []models.Team{}
	if err := cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember appends a user to the team roster.
func (s *Store) AddMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, teamID, bson.M{
		"$addToSet": bson.M{"member_ids": userID.Hex()},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes for the teams collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "name_ci", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_team_org_name"),
		},
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("idx_team_members"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
