// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MembershipType enumerates the relationship constructs that grant
// workspace access. Memberships never authenticate and never own a
// workspace; they always belong to exactly one organization.
type MembershipType string

const (
	MembershipTeam    MembershipType = "team"
	MembershipPartner MembershipType = "partner"
)

// Team is a group of users inside one organization. The organization id
// is required; a team without an organization is invalid by construction
// (NewTeam is the only way stores build one).
type Team struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"-"`
	MemberIDs      []string           `bson:"member_ids,omitempty" json:"member_ids,omitempty"`
	Status         string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Partner is an external collaborator relationship scoped to one
// organization. Like Team it is a membership: access, never ownership.
type Partner struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"-"`
	ContactEmail   string             `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	MemberIDs      []string           `bson:"member_ids,omitempty" json:"member_ids,omitempty"`
	Status         string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
