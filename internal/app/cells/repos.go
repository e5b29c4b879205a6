// internal/app/cells/repos.go
package cells

import (
	"context"

	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collaborator interfaces. Cells declare only the slice of each
// repository they consume; the Mongo stores under internal/app/store
// satisfy these, and internal/testutil carries in-memory fakes. Loads
// that return a missing id report cells.ErrNotFound (stores translate
// their own sentinel).

// IdentityProvider is the external identity collaborator. Implementations
// live in internal/app/identity.
type IdentityProvider interface {
	// OnSessionChanged registers cb for session transitions (nil identity
	// on logout/expiry) and returns an unsubscribe function.
	OnSessionChanged(cb func(*models.Identity)) func()

	Login(ctx context.Context, email, password string) (models.Identity, error)
	Register(ctx context.Context, email, password, displayName string) (models.Identity, error)
	ResetPassword(ctx context.Context, email string) error
	Logout(ctx context.Context) error
}

// OrganizationRepo lists the organizations an identity can act as.
type OrganizationRepo interface {
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Organization, error)
}

// TeamRepo lists teams by organization (roster) and by user (available
// acting contexts).
type TeamRepo interface {
	ListForOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Team, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Team, error)
}

// PartnerRepo lists the partner memberships available to an identity.
type PartnerRepo interface {
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Partner, error)
}

// WorkspaceRepo is the workspace slice of the persistence collaborator.
type WorkspaceRepo interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Workspace, error)
	GetUserWorkspaces(ctx context.Context, userID primitive.ObjectID) ([]models.Workspace, error)
	GetOrganizationWorkspaces(ctx context.Context, orgID primitive.ObjectID) ([]models.Workspace, error)
	Create(ctx context.Context, ws models.Workspace) (models.Workspace, error)

	// SaveAccessMarks persists recent/favorite workspace ids for a user.
	// Best effort: the cell applies the local change first and does not
	// roll it back if this write fails.
	SaveAccessMarks(ctx context.Context, userID primitive.ObjectID, recent, favorites []primitive.ObjectID) error

	// LoadAccessMarks returns the user's persisted recent/favorite ids,
	// empty slices when the user has none yet.
	LoadAccessMarks(ctx context.Context, userID primitive.ObjectID) (recent, favorites []primitive.ObjectID, err error)
}

// ModuleRepo is the module slice of the persistence collaborator.
type ModuleRepo interface {
	ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Module, error)
	Create(ctx context.Context, m models.Module) (models.Module, error)
	Reorder(ctx context.Context, workspaceID primitive.ObjectID, orders []models.ModuleOrder) error
	Watch(ctx context.Context, workspaceID primitive.ObjectID) (<-chan []models.Module, error)
}

// DocumentRepo is the document slice of the persistence collaborator.
type DocumentRepo interface {
	ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Document, error)
	Create(ctx context.Context, d models.Document) (models.Document, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Watch(ctx context.Context, workspaceID primitive.ObjectID) (<-chan []models.Document, error)
}

// MemberRepo is the member slice of the persistence collaborator,
// including the invitation sub-operations.
type MemberRepo interface {
	ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Member, error)
	Watch(ctx context.Context, workspaceID primitive.ObjectID) (<-chan []models.Member, error)

	CreateInvitation(ctx context.Context, inv models.Invitation) (models.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (models.Invitation, error)
	UpdateInvitationStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

// NotificationRepo is the notification slice of the persistence
// collaborator. Notifications are user-scoped, not workspace-scoped.
type NotificationRepo interface {
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	Watch(ctx context.Context, userID primitive.ObjectID) (<-chan []models.Notification, error)

	MarkAsRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	GetSettings(ctx context.Context, userID primitive.ObjectID) (models.NotificationSettings, error)
	UpdateSettings(ctx context.Context, s models.NotificationSettings) error
}

// Repos bundles the persistence collaborators for engine wiring.
type Repos struct {
	Organizations OrganizationRepo
	Teams         TeamRepo
	Partners      PartnerRepo
	Workspaces    WorkspaceRepo
	Modules       ModuleRepo
	Documents     DocumentRepo
	Members       MemberRepo
	Notifications NotificationRepo
}
