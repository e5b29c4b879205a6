// internal/app/store/documents/documentstore.go
package documentstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/teamspace/internal/app/store/livequery"
	"github.com/dalemusser/teamspace/internal/app/store/storeerr"
	"github.com/dalemusser/teamspace/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = fmt.Errorf("document %w", storeerr.ErrNotFound)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("documents")}
}

// Create inserts a document. Title and body are sanitized here so
// nothing unsafe ever reaches the collection, regardless of caller.
func (s *Store) Create(ctx context.Context, d models.Document) (models.Document, error) {
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.Title = htmlsanitize.Sanitize(d.Title)
	d.TitleCI = text.Fold(d.Title)
	d.Body = htmlsanitize.Sanitize(d.Body)
	d.CreatedAt = now
	d.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Document{}, err
	}
	return d, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	var d models.Document
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		return models.Document{}, err
	}
	return d, nil
}

func (s *Store) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": workspaceID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := []models.Document{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateBody replaces a document's body, sanitizing on the way in.
func (s *Store) UpdateBody(ctx context.Context, id primitive.ObjectID, body string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"body":       htmlsanitize.Sanitize(body),
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

// Watch streams whole-list snapshots of a workspace's documents.
func (s *Store) Watch(ctx context.Context, workspaceID primitive.ObjectID) (<-chan []models.Document, error) {
	return livequery.Snapshots(ctx, s.c, func(ctx context.Context) ([]models.Document, error) {
		return s.ListByWorkspace(ctx, workspaceID)
	})
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "workspace_id", Value: 1}, {Key: "title_ci", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_by", Value: 1}},
		},
	})
	return err
}
