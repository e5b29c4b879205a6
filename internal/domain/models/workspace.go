// internal/domain/models/workspace.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OwnerType is the closed, two-member set of workspace owner kinds.
// Memberships (teams, partners) are deliberately absent: they can be
// granted access to a workspace but can never appear as its owner.
type OwnerType string

const (
	OwnerUser         OwnerType = "user"
	OwnerOrganization OwnerType = "organization"
)

// WorkspaceOwner is the sealed ownership variant. The two structs below
// are the only implementations; code that needs ownership data switches
// on the concrete type, so a team or partner owner cannot be expressed
// at all.
type WorkspaceOwner interface {
	OwnerType() OwnerType
	OwnerID() primitive.ObjectID

	// sealed keeps implementations inside this package.
	sealed()
}

// UserOwner marks a workspace as personally owned by one user identity.
type UserOwner struct {
	UserID primitive.ObjectID
}

func (o UserOwner) OwnerType() OwnerType        { return OwnerUser }
func (o UserOwner) OwnerID() primitive.ObjectID { return o.UserID }
func (UserOwner) sealed()                       {}

// OrganizationOwner marks a workspace as owned by an organization
// identity. The workspace's organization scope is the owner itself.
type OrganizationOwner struct {
	OrganizationID primitive.ObjectID
}

func (o OrganizationOwner) OwnerType() OwnerType        { return OwnerOrganization }
func (o OrganizationOwner) OwnerID() primitive.ObjectID { return o.OrganizationID }
func (OrganizationOwner) sealed()                       {}

// ModuleFlags records which optional modules are enabled for a workspace.
type ModuleFlags struct {
	Documents     bool `bson:"documents" json:"documents"`
	Tasks         bool `bson:"tasks" json:"tasks"`
	Calendar      bool `bson:"calendar" json:"calendar"`
	Notifications bool `bson:"notifications" json:"notifications"`
}

// Workspace is the tenant container. The ownership fields form a tagged
// union: OrganizationID is present iff OwnerType is OwnerOrganization, and
// then it always equals OwnerID. NewWorkspace is the only way the rest of
// the codebase builds one, which keeps that coupling out of callers'
// hands.
type Workspace struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"-"`

	OwnerType      OwnerType           `bson:"owner_type" json:"owner_type"`
	OwnerID        primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`

	Modules    ModuleFlags `bson:"modules" json:"modules"`
	Status     string      `bson:"status" json:"status"` // active | archived | suspended
	Visibility string      `bson:"visibility" json:"visibility"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewWorkspace constructs a workspace from a sealed owner variant,
// deriving the organization scope from the owner kind.
func NewWorkspace(name string, owner WorkspaceOwner) Workspace {
	ws := Workspace{
		Name:      name,
		OwnerType: owner.OwnerType(),
		OwnerID:   owner.OwnerID(),
	}
	if org, ok := owner.(OrganizationOwner); ok {
		id := org.OrganizationID
		ws.OrganizationID = &id
	}
	return ws
}

// Owner reconstructs the sealed owner variant from the persisted fields.
func (w Workspace) Owner() WorkspaceOwner {
	if w.OwnerType == OwnerOrganization {
		return OrganizationOwner{OrganizationID: w.OwnerID}
	}
	return UserOwner{UserID: w.OwnerID}
}
