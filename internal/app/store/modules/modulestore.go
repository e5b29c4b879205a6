// internal/app/store/modules/modulestore.go
package modulestore

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

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = fmt.Errorf("module %w", storeerr.ErrNotFound)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("modules")}
}

// Create inserts a module. A zero Order places it after the current
// tail.
func (s *Store) Create(ctx context.Context, m models.Module) (models.Module, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = now
	m.UpdatedAt = now

	if m.Order == 0 {
		count, err := s.c.CountDocuments(ctx, bson.M{"workspace_id": m.WorkspaceID})
		if err != nil {
			return models.Module{}, err
		}
		m.Order = int(count) + 1
	}

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Module{}, err
	}
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Module, error) {
	var m models.Module
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Module{}, ErrNotFound
		}
		return models.Module{}, err
	}
	return m, nil
}

// ListByWorkspace returns the workspace's modules ordered by their
// explicit order field.
func (s *Store) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Module, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": workspaceID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	modules := []models.Module{}
	if err := cur.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// Reorder writes a full {id, order} batch in one bulk operation. Ids
// outside the workspace are ignored by the filter rather than failing
// the batch.
func (s *Store) Reorder(ctx context.Context, workspaceID primitive.ObjectID, orders []models.ModuleOrder) error {
	if len(orders) == 0 {
		return nil
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(orders))
	for _, o := range orders {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": o.ID, "workspace_id": workspaceID}).
			SetUpdate(bson.M{"$set": bson.M{"order": o.Order, "updated_at": now}}))
	}

	_, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// SetEnabled flips a module's enabled flag.
func (s *Store) SetEnabled(ctx context.Context, id primitive.ObjectID, enabled bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"enabled":    enabled,
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

// Watch streams fresh snapshots of a workspace's modules.
func (s *Store) Watch(ctx context.Context, workspaceID primitive.ObjectID) (<-chan []models.Module, error) {
	return livequery.Snapshots(ctx, s.c, func(ctx context.Context) ([]models.Module, error) {
		return s.ListByWorkspace(ctx, workspaceID)
	})
}

// EnsureIndexes creates indexes for the modules collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "workspace_id", Value: 1},
			{Key: "order", Value: 1},
		},
		Options: options.Index().SetName("idx_module_workspace_order"),
	})
	return err
}
