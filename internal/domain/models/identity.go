// internal/domain/models/identity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdentityType enumerates the account kinds that can authenticate.
// Only IdentityUser and IdentityOrganization may own a workspace;
// IdentityBot authenticates but never owns anything.
type IdentityType string

const (
	IdentityUser         IdentityType = "user"
	IdentityOrganization IdentityType = "organization"
	IdentityBot          IdentityType = "bot"
)

// Valid reports whether t is one of the known identity types.
func (t IdentityType) Valid() bool {
	switch t {
	case IdentityUser, IdentityOrganization, IdentityBot:
		return true
	}
	return false
}

// Identity represents an authenticate-capable account.
//
// Identities are disjoint from memberships (teams, partners): an identity
// holds credentials and may own workspaces; a membership never does either.
type Identity struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type         IdentityType       `bson:"type" json:"type"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"` // lowercase for unique index
	DisplayName  string             `bson:"display_name" json:"display_name"`
	AuthMethod   string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CanOwnWorkspace reports whether this identity kind is allowed to hold
// workspace ownership. Bots authenticate for automation but never own.
func (i Identity) CanOwnWorkspace() bool {
	return i.Type == IdentityUser || i.Type == IdentityOrganization
}
