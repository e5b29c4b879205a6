// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is an identity-backed tenant grouping. The identity id
// links back to the organization's authenticate-capable account; the
// organization record itself carries roster-facing detail.
type Organization struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IdentityID primitive.ObjectID `bson:"identity_id" json:"identity_id"`
	Name       string             `bson:"name" json:"name"`
	NameCI     string             `bson:"name_ci" json:"-"`
	Plan       string             `bson:"plan,omitempty" json:"plan,omitempty"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// OrganizationRole is a user's standing inside an organization roster.
type OrganizationRole struct {
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role           string             `bson:"role" json:"role"` // owner | admin | member
	JoinedAt       time.Time          `bson:"joined_at" json:"joined_at"`
}
