// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is one user's seat in a workspace. Access comes either directly
// or via a membership (team/partner); Via records which, for audit only —
// permissions are uniform within a role.
type Member struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID  `bson:"workspace_id" json:"workspace_id"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Role        string              `bson:"role" json:"role"` // admin | editor | viewer
	Via         MembershipType      `bson:"via,omitempty" json:"via,omitempty"`
	ViaID       *primitive.ObjectID `bson:"via_id,omitempty" json:"via_id,omitempty"`
	JoinedAt    time.Time           `bson:"joined_at" json:"joined_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

// Invitation statuses.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
	InvitationExpired  = "expired"
)

// Invitation is a pending offer of a workspace seat, addressed by email
// and redeemed by token.
type Invitation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	Email       string             `bson:"email" json:"email"`
	Role        string             `bson:"role" json:"role"`
	Token       string             `bson:"token" json:"-"`
	Status      string             `bson:"status" json:"status"`
	InvitedBy   primitive.ObjectID `bson:"invited_by" json:"invited_by"`
	ExpiresAt   time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
