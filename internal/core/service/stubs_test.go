package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store shared by the repository stubs. WithinTx snapshots the maps
// and restores them when fn fails, which is the atomicity the real stores give.
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	users    map[string]domain.User
	clients  map[string]domain.Client
	projects map[string]domain.Project
	// fail injects an error for an operation name such as "clients.Delete".
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]domain.User),
		clients:  make(map[string]domain.Client),
		projects: make(map[string]domain.Project),
		fail:     make(map[string]error),
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	users, clients, projects := cloneMap(s.users), cloneMap(s.clients), cloneMap(s.projects)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.users, s.clients, s.projects = users, clients, projects
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) injected(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail[op]
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func newestFirst(aCreated, bCreated time.Time, aID, bID string) bool {
	if !aCreated.Equal(bCreated) {
		return aCreated.After(bCreated)
	}
	return aID > bID
}

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) List(_ context.Context) ([]domain.User, error) {
	if err := r.s.injected("users.List"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (r memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if err := r.s.injected("users.FindByEmail"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) Create(_ context.Context, u *domain.User) error {
	if err := r.s.injected("users.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) SetExternalID(_ context.Context, id, externalID string) error {
	if err := r.s.injected("users.SetExternalID"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ExternalID = externalID
	r.s.users[id] = u
	return nil
}

func (r memUsers) Update(_ context.Context, id string, patch domain.UserPatch, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	patch.Apply(&u)
	u.UpdatedAt = at
	r.s.users[id] = u
	return nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	if err := r.s.injected("users.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

// --- clients ---

type memClients struct{ s *memStore }

func (r memClients) List(_ context.Context, limit int) ([]domain.ClientSummary, error) {
	if err := r.s.injected("clients.List"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.ClientSummary, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		var n int64
		for _, p := range r.s.projects {
			if p.ClientID == c.ID {
				n++
			}
		}
		out = append(out, domain.ClientSummary{Client: c, ProjectCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memClients) FindByID(_ context.Context, id string) (*domain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return &c, nil
}

func (r memClients) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.clients[id]
	return ok, nil
}

func (r memClients) Count(_ context.Context, f ports.ClientFilter) (int64, error) {
	if err := r.s.injected("clients.Count"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.clients {
		if !f.CreatedSince.IsZero() && c.CreatedAt.Before(f.CreatedSince) {
			continue
		}
		n++
	}
	return n, nil
}

func (r memClients) Create(_ context.Context, c *domain.Client) error {
	if err := r.s.injected("clients.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.clients[c.ID] = *c
	return nil
}

func (r memClients) Update(_ context.Context, id string, patch domain.ClientPatch, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return domain.ErrClientNotFound
	}
	patch.Apply(&c)
	c.UpdatedAt = at
	r.s.clients[id] = c
	return nil
}

func (r memClients) Delete(_ context.Context, id string) error {
	if err := r.s.injected("clients.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.s.clients, id)
	return nil
}

// --- projects ---

type memProjects struct{ s *memStore }

func (r memProjects) matches(p domain.Project, f ports.ProjectFilter) bool {
	if f.ClientID != "" && p.ClientID != f.ClientID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	return true
}

func (r memProjects) withClient(p domain.Project) domain.Project {
	if c, ok := r.s.clients[p.ClientID]; ok {
		p.Client = &c
	}
	return p
}

func (r memProjects) List(_ context.Context, f ports.ProjectFilter) ([]domain.Project, error) {
	if err := r.s.injected("projects.List"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		if r.matches(p, f) {
			out = append(out, r.withClient(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r memProjects) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	p = r.withClient(p)
	return &p, nil
}

func (r memProjects) Count(_ context.Context, f ports.ProjectFilter) (int64, error) {
	if err := r.s.injected("projects.Count"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.projects {
		if r.matches(p, f) {
			n++
		}
	}
	return n, nil
}

func (r memProjects) Create(_ context.Context, p *domain.Project) error {
	if err := r.s.injected("projects.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *p
	stored.Client = nil
	r.s.projects[p.ID] = stored
	return nil
}

func (r memProjects) Update(_ context.Context, id string, patch domain.ProjectPatch, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return domain.ErrProjectNotFound
	}
	patch.Apply(&p)
	p.UpdatedAt = at
	r.s.projects[id] = p
	return nil
}

func (r memProjects) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.s.projects, id)
	return nil
}

func (r memProjects) DeleteByClient(_ context.Context, clientID string) (int64, error) {
	if err := r.s.injected("projects.DeleteByClient"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.projects {
		if p.ClientID == clientID {
			delete(r.s.projects, id)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Identity provider stub
// ---------------------------------------------------------------------------

type stubIDP struct {
	signInFn func(ctx context.Context, email, password string) (*domain.Session, error)
	verifyFn func(ctx context.Context, token string) (*domain.Identity, error)

	signOutErr error
	createErr  error
	deleteErr  error

	signedOut []string
	created   []string
	deleted   []string
}

func (p *stubIDP) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return p.signInFn(ctx, email, password)
}

func (p *stubIDP) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	return p.verifyFn(ctx, token)
}

func (p *stubIDP) SignOut(_ context.Context, token string) error {
	if p.signOutErr != nil {
		return p.signOutErr
	}
	p.signedOut = append(p.signedOut, token)
	return nil
}

func (p *stubIDP) CreateAccount(_ context.Context, email, _ string) (*domain.Identity, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.created = append(p.created, email)
	return &domain.Identity{Subject: "ext-" + email, Email: email}, nil
}

func (p *stubIDP) DeleteAccount(_ context.Context, subject string) error {
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deleted = append(p.deleted, subject)
	return nil
}

// seedClient stores a client created at the given time.
func seedClient(s *memStore, id, name string, created time.Time) domain.Client {
	c := domain.Client{ID: id, Name: name, Email: id + "@example.com", Status: domain.ClientLead, CreatedAt: created, UpdatedAt: created}
	s.clients[id] = c
	return c
}

func seedProject(s *memStore, id, clientID string, status domain.ProjectStatus, created time.Time) domain.Project {
	p := domain.Project{ID: id, Name: "project " + id, ClientID: clientID, Status: status, CreatedAt: created, UpdatedAt: created}
	s.projects[id] = p
	return p
}

func seedUser(s *memStore, id, email string, role domain.Role, status domain.UserStatus) domain.User {
	now := time.Now().UTC()
	u := domain.User{ID: id, Email: email, Name: id, Role: role, Status: status, ExternalID: "ext-" + id, CreatedAt: now, UpdatedAt: now}
	s.users[id] = u
	return u
}
