// Package cells implements the reactive context/ownership
// synchronization engine: a directed graph of state cells, each owning
// one slice of application state, wired together by explicit
// subscriptions. Upstream cells are constructed first and passed to
// their dependents; there is no ambient registry.
package cells

import "go.uber.org/zap"

// Engine bundles the nine cells in dependency order. Construction order
// matters: an upstream cell must exist (and have attached its own
// effects) before a downstream cell subscribes to it.
type Engine struct {
	Identity      *IdentityCell
	Context       *ContextCell
	Organizations *OrganizationCell
	Teams         *TeamCell
	Workspaces    *WorkspaceCell
	Modules       *ModuleCell
	Documents     *DocumentCell
	Members       *MemberCell
	Notifications *NotificationCell
}

// New wires the full cell graph against the given collaborators. The
// logout cascade is registered here as an explicit obligation: the
// identity cell calls the context cell's ClearContext, which in turn
// empties the workspace selection and, through it, every scoped cell.
func New(provider IdentityProvider, repos Repos, log *zap.Logger) *Engine {
	identity := NewIdentityCell(provider, log)
	contextCell := NewContextCell(identity, repos.Organizations, repos.Teams, repos.Partners, log)
	organizations := NewOrganizationCell(identity, contextCell, repos.Organizations, log)
	teams := NewTeamCell(organizations, repos.Teams, log)
	workspaces := NewWorkspaceCell(identity, contextCell, repos.Workspaces, log)
	modules := NewModuleCell(workspaces, repos.Modules, log)
	documents := NewDocumentCell(identity, workspaces, repos.Documents, log)
	members := NewMemberCell(identity, workspaces, repos.Members, log)
	notifications := NewNotificationCell(identity, repos.Notifications, log)

	identity.OnLogout(contextCell.ClearContext)

	return &Engine{
		Identity:      identity,
		Context:       contextCell,
		Organizations: organizations,
		Teams:         teams,
		Workspaces:    workspaces,
		Modules:       modules,
		Documents:     documents,
		Members:       members,
		Notifications: notifications,
	}
}

// Close tears the graph down leaves-first so no cell reacts to a
// publish from an already-closed upstream.
func (e *Engine) Close() {
	e.Notifications.Close()
	e.Members.Close()
	e.Documents.Close()
	e.Modules.Close()
	e.Workspaces.Close()
	e.Teams.Close()
	e.Organizations.Close()
	e.Context.Close()
	e.Identity.Close()
}
