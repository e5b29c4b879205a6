// internal/domain/models/module.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Module is an installable feature unit inside one workspace (a board, a
// wiki, a calendar, ...). Modules carry an explicit order; lists are
// stable-sorted by Order ascending so reordering is a pure data change.
type Module struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	Kind        string             `bson:"kind" json:"kind"`
	Name        string             `bson:"name" json:"name"`
	Order       int                `bson:"order" json:"order"`
	Enabled     bool               `bson:"enabled" json:"enabled"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ModuleOrder is one entry of a reorder batch write.
type ModuleOrder struct {
	ID    primitive.ObjectID `bson:"id" json:"id"`
	Order int                `bson:"order" json:"order"`
}
