// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is addressed to one user and optionally scoped to the
// workspace that produced it.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	WorkspaceID *primitive.ObjectID `bson:"workspace_id,omitempty" json:"workspace_id,omitempty"`
	Kind        string              `bson:"kind" json:"kind"`
	Title       string              `bson:"title" json:"title"`
	Body        string              `bson:"body,omitempty" json:"body,omitempty"`
	Read        bool                `bson:"read" json:"read"`
	ReadAt      *time.Time          `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}

// NotificationSettings is the per-user delivery preference record.
type NotificationSettings struct {
	UserID        primitive.ObjectID `bson:"_id" json:"user_id"`
	EmailEnabled  bool               `bson:"email_enabled" json:"email_enabled"`
	InAppEnabled  bool               `bson:"in_app_enabled" json:"in_app_enabled"`
	DigestEnabled bool               `bson:"digest_enabled" json:"digest_enabled"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
