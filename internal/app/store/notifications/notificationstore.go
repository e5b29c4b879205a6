// internal/app/store/notifications/notificationstore.go
package notificationstore

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
	c        *mongo.Collection // notifications
	settings *mongo.Collection // notification_settings
}

var ErrNotFound = fmt.Errorf("notification %w", storeerr.ErrNotFound)

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("notifications"),
		settings: db.Collection("notification_settings"),
	}
}

func (s *Store) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []models.Notification{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"read":    true,
		"read_at": now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllAsRead flips every unread notification for userID. The update
// is not atomic across documents; notifications created concurrently
// stay unread, which is the intended behavior.
func (s *Store) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// GetSettings returns the user's delivery preferences, falling back to
// defaults when no record exists yet.
func (s *Store) GetSettings(ctx context.Context, userID primitive.ObjectID) (models.NotificationSettings, error) {
	var prefs models.NotificationSettings
	err := s.settings.FindOne(ctx, bson.M{"_id": userID}).Decode(&prefs)
	if err == mongo.ErrNoDocuments {
		return models.NotificationSettings{
			UserID:       userID,
			EmailEnabled: true,
			InAppEnabled: true,
		}, nil
	}
	if err != nil {
		return models.NotificationSettings{}, err
	}
	return prefs, nil
}

func (s *Store) UpdateSettings(ctx context.Context, prefs models.NotificationSettings) error {
	prefs.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := s.settings.ReplaceOne(ctx, bson.M{"_id": prefs.UserID}, prefs, opts)
	return err
}

// PruneRead deletes read notifications older than cutoff. The pruning
// worker runs this on a schedule.
func (s *Store) PruneRead(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"read":    true,
		"read_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Watch streams whole-list snapshots of a user's notifications.
func (s *Store) Watch(ctx context.Context, userID primitive.ObjectID) (<-chan []models.Notification, error) {
	return livequery.Snapshots(ctx, s.c, func(ctx context.Context) ([]models.Notification, error) {
		return s.ListForUser(ctx, userID)
	})
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "read", Value: 1}, {Key: "read_at", Value: 1}},
		},
	})
	return err
}
