package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/app/store/storeerr"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrFakeNotFound wraps the stores' shared not-found sentinel so
// errors.Is checks behave the same against fakes and real stores.
var ErrFakeNotFound = fmt.Errorf("not found: %w", storeerr.ErrNotFound)

// Hold lets a test hold a fake call open to force interleavings. A nil
// Hold is a no-op; otherwise the call blocks until the channel is
// closed or the context ends.
type Hold struct {
	ch chan struct{}
}

func (g *Hold) wait(ctx context.Context) error {
	if g == nil || g.ch == nil {
		return nil
	}
	select {
	case <-g.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Gate returns a hold point and its release function. Assign the hold
// to a fake's Gate field, start the call under test, then release.
func Gate() (*Hold, func()) {
	g := &Hold{ch: make(chan struct{})}
	var once sync.Once
	return g, func() { once.Do(func() { close(g.ch) }) }
}

// FakeIdentityProvider implements cells.IdentityProvider in memory.
type FakeIdentityProvider struct {
	mu      sync.Mutex
	subs    map[int]func(*models.Identity)
	nextSub int

	Identities map[string]models.Identity // keyed by email; password checks are by convention "password"
	LoginErr   error
	Calls      struct {
		Login, Register, Reset, Logout int
	}
}

func NewFakeIdentityProvider() *FakeIdentityProvider {
	return &FakeIdentityProvider{
		subs:       map[int]func(*models.Identity){},
		Identities: map[string]models.Identity{},
	}
}

func (f *FakeIdentityProvider) OnSessionChanged(cb func(*models.Identity)) func() {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = cb
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// EmitSession pushes a session transition to subscribers, standing in
// for cookie restore or external expiry.
func (f *FakeIdentityProvider) EmitSession(ident *models.Identity) {
	f.mu.Lock()
	cbs := make([]func(*models.Identity), 0, len(f.subs))
	for _, cb := range f.subs {
		cbs = append(cbs, cb)
	}
	f.mu.Unlock()
	for _, cb := range cbs {
		cb(ident)
	}
}

func (f *FakeIdentityProvider) Login(ctx context.Context, email, password string) (models.Identity, error) {
	f.mu.Lock()
	f.Calls.Login++
	ident, ok := f.Identities[email]
	err := f.LoginErr
	f.mu.Unlock()

	if err != nil {
		return models.Identity{}, err
	}
	if !ok || password != "password" {
		return models.Identity{}, errors.New("invalid email or password")
	}
	return ident, nil
}

func (f *FakeIdentityProvider) Register(ctx context.Context, email, password, displayName string) (models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Register++
	if _, exists := f.Identities[email]; exists {
		return models.Identity{}, errors.New("an identity with this email already exists")
	}
	ident := models.Identity{
		ID:          primitive.NewObjectID(),
		Type:        models.IdentityUser,
		Email:       email,
		DisplayName: displayName,
		Status:      "active",
	}
	f.Identities[email] = ident
	return ident, nil
}

func (f *FakeIdentityProvider) ResetPassword(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Reset++
	return nil
}

func (f *FakeIdentityProvider) Logout(ctx context.Context) error {
	f.mu.Lock()
	f.Calls.Logout++
	f.mu.Unlock()
	return nil
}

// FakeOrganizationRepo implements cells.OrganizationRepo.
type FakeOrganizationRepo struct {
	mu    sync.Mutex
	Orgs  []models.Organization
	Err   error
	Gate  *Hold
	Calls int
}

func (f *FakeOrganizationRepo) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Organization, error) {
	if err := f.Gate.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]models.Organization(nil), f.Orgs...), nil
}

// FakeTeamRepo implements cells.TeamRepo.
type FakeTeamRepo struct {
	mu    sync.Mutex
	Teams []models.Team
	Err   error
	Gate  *Hold
	Calls int
}

func (f *FakeTeamRepo) list(ctx context.Context) ([]models.Team, error) {
	if err := f.Gate.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]models.Team(nil), f.Teams...), nil
}

func (f *FakeTeamRepo) ListForOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Team, error) {
	return f.list(ctx)
}

func (f *FakeTeamRepo) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Team, error) {
	return f.list(ctx)
}

// FakePartnerRepo implements cells.PartnerRepo.
type FakePartnerRepo struct {
	mu       sync.Mutex
	Partners []models.Partner
	Err      error
}

func (f *FakePartnerRepo) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Partner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]models.Partner(nil), f.Partners...), nil
}

// FakeWorkspaceRepo implements cells.WorkspaceRepo.
type FakeWorkspaceRepo struct {
	mu         sync.Mutex
	Workspaces []models.Workspace
	GetErr     error
	ListErr    error
	CreateErr  error
	MarksErr   error
	ListGate   *Hold
	GetGate    *Hold
	MarksGate  *Hold

	Calls struct {
		Get, ListUser, ListOrg, Create, SaveMarks, LoadMarks int
	}
	LastMarks   AccessMarks
	StoredMarks AccessMarks
}

// AccessMarks is an access-mark record as the fake sees it: LastMarks
// captures the most recent SaveAccessMarks write, StoredMarks seeds
// what LoadAccessMarks returns.
type AccessMarks struct {
	UserID    primitive.ObjectID
	Recent    []primitive.ObjectID
	Favorites []primitive.ObjectID
}

// MarksSnapshot returns a copy of the last access-mark write. Safe to
// call while the cell's write-back goroutine is still running.
func (f *FakeWorkspaceRepo) MarksSnapshot() AccessMarks {
	f.mu.Lock()
	defer f.mu.Unlock()
	return AccessMarks{
		UserID:    f.LastMarks.UserID,
		Recent:    append([]primitive.ObjectID(nil), f.LastMarks.Recent...),
		Favorites: append([]primitive.ObjectID(nil), f.LastMarks.Favorites...),
	}
}

// CallCounts returns the call counters under the lock.
func (f *FakeWorkspaceRepo) CallCounts() struct {
	Get, ListUser, ListOrg, Create, SaveMarks, LoadMarks int
} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

func (f *FakeWorkspaceRepo) GetByID(ctx context.Context, id primitive.ObjectID) (models.Workspace, error) {
	if err := f.GetGate.wait(ctx); err != nil {
		return models.Workspace{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Get++
	if f.GetErr != nil {
		return models.Workspace{}, f.GetErr
	}
	for _, ws := range f.Workspaces {
		if ws.ID == id {
			return ws, nil
		}
	}
	return models.Workspace{}, ErrFakeNotFound
}

func (f *FakeWorkspaceRepo) GetUserWorkspaces(ctx context.Context, userID primitive.ObjectID) ([]models.Workspace, error) {
	if err := f.ListGate.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.ListUser++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Workspace(nil), f.Workspaces...), nil
}

func (f *FakeWorkspaceRepo) GetOrganizationWorkspaces(ctx context.Context, orgID primitive.ObjectID) ([]models.Workspace, error) {
	if err := f.ListGate.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.ListOrg++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := []models.Workspace{}
	for _, ws := range f.Workspaces {
		if ws.OrganizationID != nil && *ws.OrganizationID == orgID {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (f *FakeWorkspaceRepo) Create(ctx context.Context, ws models.Workspace) (models.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Create++
	if f.CreateErr != nil {
		return models.Workspace{}, f.CreateErr
	}
	if ws.ID.IsZero() {
		ws.ID = primitive.NewObjectID()
	}
	f.Workspaces = append(f.Workspaces, ws)
	return ws, nil
}

func (f *FakeWorkspaceRepo) SaveAccessMarks(ctx context.Context, userID primitive.ObjectID, recent, favorites []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.SaveMarks++
	if f.MarksErr != nil {
		return f.MarksErr
	}
	f.LastMarks.UserID = userID
	f.LastMarks.Recent = append([]primitive.ObjectID(nil), recent...)
	f.LastMarks.Favorites = append([]primitive.ObjectID(nil), favorites...)
	return nil
}

func (f *FakeWorkspaceRepo) LoadAccessMarks(ctx context.Context, userID primitive.ObjectID) (recent, favorites []primitive.ObjectID, err error) {
	if err := f.MarksGate.wait(ctx); err != nil {
		return nil, nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.LoadMarks++
	if f.MarksErr != nil {
		return nil, nil, f.MarksErr
	}
	if f.StoredMarks.UserID != userID {
		return []primitive.ObjectID{}, []primitive.ObjectID{}, nil
	}
	return append([]primitive.ObjectID(nil), f.StoredMarks.Recent...),
		append([]primitive.ObjectID(nil), f.StoredMarks.Favorites...), nil
}

// watchable provides the shared Watch plumbing for workspace-scoped
// fakes: tests push snapshots, cells receive them.
type watchable[T any] struct {
	mu      sync.Mutex
	watches []chan []T
}

func (w *watchable[T]) open() <-chan []T {
	ch := make(chan []T, 8)
	w.mu.Lock()
	w.watches = append(w.watches, ch)
	w.mu.Unlock()
	return ch
}

// Push delivers a snapshot to every open watch.
func (w *watchable[T]) Push(items []T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.watches {
		ch <- append([]T(nil), items...)
	}
}

// FakeModuleRepo implements cells.ModuleRepo.
type FakeModuleRepo struct {
	watchable[models.Module]

	mu         sync.Mutex
	Modules    []models.Module
	ListErr    error
	ReorderErr error
	WatchErr   error
	Calls      struct {
		List, Create, Reorder, Watch int
	}
	LastReorder []models.ModuleOrder
}

func (f *FakeModuleRepo) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Module, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.List++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Module(nil), f.Modules...), nil
}

func (f *FakeModuleRepo) Create(ctx context.Context, m models.Module) (models.Module, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Create++
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	f.Modules = append(f.Modules, m)
	return m, nil
}

func (f *FakeModuleRepo) Reorder(ctx context.Context, workspaceID primitive.ObjectID, orders []models.ModuleOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Reorder++
	if f.ReorderErr != nil {
		return f.ReorderErr
	}
	f.LastReorder = append([]models.ModuleOrder(nil), orders...)
	return nil
}

// ReorderBatch returns the last persisted reorder batch.
func (f *FakeModuleRepo) ReorderBatch() []models.ModuleOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ModuleOrder(nil), f.LastReorder...)
}

func (f *FakeModuleRepo) Watch(ctx context.Context, workspaceID primitive.ObjectID) (<-chan []models.Module, error) {
	f.mu.Lock()
	f.Calls.Watch++
	err := f.WatchErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.open(), nil
}

// FakeDocumentRepo implements cells.DocumentRepo.
type FakeDocumentRepo struct {
	watchable[models.Document]

	mu        sync.Mutex
	Documents []models.Document
	ListErr   error
	DeleteErr error
	WatchErr  error
	Calls     struct {
		List, Create, Delete, Watch int
	}
}

func (f *FakeDocumentRepo) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.List++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Document(nil), f.Documents...), nil
}

func (f *FakeDocumentRepo) Create(ctx context.Context, d models.Document) (models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Create++
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	f.Documents = append(f.Documents, d)
	return d, nil
}

func (f *FakeDocumentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Delete++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, d := range f.Documents {
		if d.ID == id {
			f.Documents = append(f.Documents[:i], f.Documents[i+1:]...)
			return nil
		}
	}
	return ErrFakeNotFound
}

func (f *FakeDocumentRepo) Watch(ctx context.Context, workspaceID primitive.ObjectID) (<-chan []models.Document, error) {
	f.mu.Lock()
	f.Calls.Watch++
	err := f.WatchErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.open(), nil
}

// FakeMemberRepo implements cells.MemberRepo.
type FakeMemberRepo struct {
	watchable[models.Member]

	mu          sync.Mutex
	Members     []models.Member
	Invitations []models.Invitation
	ListErr     error
	WatchErr    error
	Calls       struct {
		List, Watch, CreateInv, GetInv, UpdateInv int
	}
}

func (f *FakeMemberRepo) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.List++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Member(nil), f.Members...), nil
}

func (f *FakeMemberRepo) Watch(ctx context.Context, workspaceID primitive.ObjectID) (<-chan []models.Member, error) {
	f.mu.Lock()
	f.Calls.Watch++
	err := f.WatchErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.open(), nil
}

func (f *FakeMemberRepo) CreateInvitation(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.CreateInv++
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	inv.Status = models.InvitationPending
	f.Invitations = append(f.Invitations, inv)
	return inv, nil
}

func (f *FakeMemberRepo) GetInvitationByToken(ctx context.Context, token string) (models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.GetInv++
	for _, inv := range f.Invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return models.Invitation{}, ErrFakeNotFound
}

func (f *FakeMemberRepo) UpdateInvitationStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.UpdateInv++
	for i, inv := range f.Invitations {
		if inv.ID == id {
			f.Invitations[i].Status = status
			return nil
		}
	}
	return ErrFakeNotFound
}

// FakeNotificationRepo implements cells.NotificationRepo.
type FakeNotificationRepo struct {
	watchable[models.Notification]

	mu            sync.Mutex
	Notifications []models.Notification
	Settings      models.NotificationSettings
	ListErr       error
	MarkErr       error
	MarkAllErr    error
	WatchErr      error
	Calls         struct {
		List, Watch, Mark, MarkAll, GetSettings, UpdateSettings int
	}
}

func (f *FakeNotificationRepo) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.List++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Notification(nil), f.Notifications...), nil
}

func (f *FakeNotificationRepo) Watch(ctx context.Context, userID primitive.ObjectID) (<-chan []models.Notification, error) {
	f.mu.Lock()
	f.Calls.Watch++
	err := f.WatchErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.open(), nil
}

func (f *FakeNotificationRepo) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Mark++
	if f.MarkErr != nil {
		return f.MarkErr
	}
	for i, n := range f.Notifications {
		if n.ID == id {
			f.Notifications[i].Read = true
			return nil
		}
	}
	return ErrFakeNotFound
}

func (f *FakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.MarkAll++
	if f.MarkAllErr != nil {
		return 0, f.MarkAllErr
	}
	var n int64
	for i := range f.Notifications {
		if !f.Notifications[i].Read {
			f.Notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

func (f *FakeNotificationRepo) GetSettings(ctx context.Context, userID primitive.ObjectID) (models.NotificationSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.GetSettings++
	s := f.Settings
	s.UserID = userID
	return s, nil
}

func (f *FakeNotificationRepo) UpdateSettings(ctx context.Context, s models.NotificationSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.UpdateSettings++
	f.Settings = s
	return nil
}

// FakeRepos bundles one of every fake repo so a test can stand up a
// full engine without Mongo.
type FakeRepos struct {
	Organizations *FakeOrganizationRepo
	Teams         *FakeTeamRepo
	Partners      *FakePartnerRepo
	Workspaces    *FakeWorkspaceRepo
	Modules       *FakeModuleRepo
	Documents     *FakeDocumentRepo
	Members       *FakeMemberRepo
	Notifications *FakeNotificationRepo
}

func NewFakeRepos() *FakeRepos {
	return &FakeRepos{
		Organizations: &FakeOrganizationRepo{},
		Teams:         &FakeTeamRepo{},
		Partners:      &FakePartnerRepo{},
		Workspaces:    &FakeWorkspaceRepo{},
		Modules:       &FakeModuleRepo{},
		Documents:     &FakeDocumentRepo{},
		Members:       &FakeMemberRepo{},
		Notifications: &FakeNotificationRepo{},
	}
}

// Bundle adapts the fakes to the engine's repo contract.
func (f *FakeRepos) Bundle() cells.Repos {
	return cells.Repos{
		Organizations: f.Organizations,
		Teams:         f.Teams,
		Partners:      f.Partners,
		Workspaces:    f.Workspaces,
		Modules:       f.Modules,
		Documents:     f.Documents,
		Members:       f.Members,
		Notifications: f.Notifications,
	}
}
