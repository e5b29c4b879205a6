// internal/app/store/workspaces/workspacestore.go
package workspacestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/teamspace/internal/app/store/livequery"
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
	c      *mongo.Collection
	access *mongo.Collection
	member *mongo.Collection
}

var (
	ErrDuplicateName = errors.New("a workspace with this name already exists for this owner")
	ErrNotFound      = fmt.Errorf("workspace %w", storeerr.ErrNotFound)
	ErrInvalidOwner  = errors.New("workspace owner must be a user or an organization")
)

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("workspaces"),
		access: db.Collection("workspace_access"),
		member: db.Collection("members"),
	}
}

// Create inserts a new workspace. The ownership union is re-checked at
// the storage boundary: the owner type must be one of the two legal
// values and an organization owner must scope the workspace to itself.
func (s *Store) Create(ctx context.Context, ws models.Workspace) (models.Workspace, error) {
	switch ws.OwnerType {
	case models.OwnerUser:
		if ws.OrganizationID != nil {
			return models.Workspace{}, ErrInvalidOwner
		}
	case models.OwnerOrganization:
		if ws.OrganizationID == nil || *ws.OrganizationID != ws.OwnerID {
			return models.Workspace{}, ErrInvalidOwner
		}
	default:
		return models.Workspace{}, ErrInvalidOwner
	}

	now := time.Now().UTC()
	ws.ID = primitive.NewObjectID()
	ws.NameCI = text.Fold(ws.Name)
	if ws.Status == "" {
		ws.Status = status.Active
	}
	if ws.Visibility == "" {
		ws.Visibility = "private"
	}
	ws.CreatedAt = now
	ws.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ws); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Workspace{}, ErrDuplicateName
		}
		return models.Workspace{}, err
	}
	return ws, nil
}

// GetByID retrieves a workspace by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Workspace, error) {
	var ws models.Workspace
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ws)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Workspace{}, ErrNotFound
		}
		return models.Workspace{}, err
	}
	return ws, nil
}

// GetUserWorkspaces returns the workspaces a user can select: those the
// user owns personally plus those where the user holds a member seat.
func (s *Store) GetUserWorkspaces(ctx context.Context, userID primitive.ObjectID) ([]models.Workspace, error) {
	cur, err := s.member.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	var seats []models.Member
	if err := cur.All(ctx, &seats); err != nil {
		return nil, err
	}
	memberOf := make([]primitive.ObjectID, 0, len(seats))
	for _, m := range seats {
		memberOf = append(memberOf, m.WorkspaceID)
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"owner_type": models.OwnerUser, "owner_id": userID},
		bson.M{"_id": bson.M{"$in": memberOf}},
	}}
	return s.find(ctx, filter)
}

// GetOrganizationWorkspaces returns the workspaces owned by an
// organization.
func (s *Store) GetOrganizationWorkspaces(ctx context.Context, orgID primitive.ObjectID) ([]models.Workspace, error) {
	return s.find(ctx, bson.M{"owner_type": models.OwnerOrganization, "owner_id": orgID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Workspace, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	workspaces := []models.Workspace{}
	if err := cur.All(ctx, &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// UpdateStatus moves a workspace between active, archived, and
// suspended.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, next string) error {
	if !status.Valid(next) {
		return fmt.Errorf("invalid workspace status %q", next)
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     next,
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

// Rename changes a workspace's display name.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a workspace by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// accessMarks is the per-user recent/favorite record.
type accessMarks struct {
	UserID    primitive.ObjectID   `bson:"_id"`
	Recent    []primitive.ObjectID `bson:"recent"`
	Favorites []primitive.ObjectID `bson:"favorites"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

// SaveAccessMarks upserts the user's recent and favorite workspace ids.
// Callers treat this as best effort; the cell state is already updated.
func (s *Store) SaveAccessMarks(ctx context.Context, userID primitive.ObjectID, recent, favorites []primitive.ObjectID) error {
	_, err := s.access.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"recent":     recent,
		"favorites":  favorites,
		"updated_at": time.Now().UTC(),
	}}, options.Update().SetUpsert(true))
	return err
}

// LoadAccessMarks returns the user's recent and favorite workspace ids,
// empty slices when none are stored yet.
func (s *Store) LoadAccessMarks(ctx context.Context, userID primitive.ObjectID) (recent, favorites []primitive.ObjectID, err error) {
	var marks accessMarks
	err = s.access.FindOne(ctx, bson.M{"_id": userID}).Decode(&marks)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return []primitive.ObjectID{}, []primitive.ObjectID{}, nil
		}
		return nil, nil, err
	}
	return marks.Recent, marks.Favorites, nil
}

// Watch streams fresh snapshots of an organization's workspaces.
func (s *Store) Watch(ctx context.Context, orgID primitive.ObjectID) (<-chan []models.Workspace, error) {
	return livequery.Snapshots(ctx, s.c, func(ctx context.Context) ([]models.Workspace, error) {
		return s.GetOrganizationWorkspaces(ctx, orgID)
	})
}

// EnsureIndexes creates indexes for the workspaces collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// One name per owner
		{
			Keys: bson.D{
				{Key: "owner_type", Value: 1},
				{Key: "owner_id", Value: 1},
				{Key: "name_ci", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_workspace_owner_name"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}},
			Options: options.Index().SetName("idx_workspace_org"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_workspace_status"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
