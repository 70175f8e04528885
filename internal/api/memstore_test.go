package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

// memUsers is an in-memory UserRepository with the same uniqueness rules as
// the Mongo store.
type memUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]domain.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]domain.User{}} }

func (m *memUsers) conflict(u *domain.User) error {
	for _, o := range m.users {
		if o.ID == u.ID {
			continue
		}
		if o.Username == u.Username {
			return domain.UserConflict("username")
		}
		if o.Email == u.Email {
			return domain.UserConflict("email")
		}
	}
	return nil
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(u); err != nil {
		return nil, err
	}
	m.seq++
	cp := *u
	cp.ID = fmt.Sprintf("u-%d", m.seq)
	m.users[cp.ID] = cp
	return &cp, nil
}

func (m *memUsers) find(match func(domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID == id })
}

func (m *memUsers) FindByUsername(_ context.Context, name string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.Username == name })
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.Email == email })
}

func (m *memUsers) ExistsByUsername(ctx context.Context, name string) (bool, error) {
	_, err := m.FindByUsername(ctx, name)
	return err == nil, nil
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) Update(_ context.Context, id string, ch domain.UserChanges) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if !ch.Matches(stored) {
		return nil, domain.ErrConcurrentUpdate
	}
	next := ch.Apply(stored)
	if err := m.conflict(&next); err != nil {
		return nil, err
	}
	m.users[id] = next
	return &next, nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) List(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type memTasks struct {
	mu    sync.Mutex
	seq   int
	tasks map[string]domain.Task
}

func newMemTasks() *memTasks { return &memTasks{tasks: map[string]domain.Task{}} }

func (m *memTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	cp := *t
	cp.ID = fmt.Sprintf("t-%d", m.seq)
	m.tasks[cp.ID] = cp
	return &cp, nil
}

func (m *memTasks) FindByID(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (m *memTasks) List(_ context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Task{}
	for _, t := range m.tasks {
		if (f.OwnerID == "" || t.OwnerID == f.OwnerID) && (f.Status == "" || t.Status == f.Status) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasks) Update(_ context.Context, t *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	m.tasks[t.ID] = *t
	cp := *t
	return &cp, nil
}

func (m *memTasks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memTasks) DeleteByOwner(_ context.Context, owner string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.tasks {
		if t.OwnerID == owner {
			delete(m.tasks, id)
			n++
		}
	}
	return n, nil
}

// memRevoker mirrors the Redis revocation store: a jti deny-list plus a
// per-user minimum token version.
type memRevoker struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	floors map[string]int
}

func newMemRevoker() *memRevoker {
	return &memRevoker{tokens: map[string]time.Time{}, floors: map[string]int{}}
}

func (r *memRevoker) RevokeToken(_ context.Context, id string, exp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[id] = exp
	return nil
}

func (r *memRevoker) RevokeUserBefore(_ context.Context, userID string, minVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if minVersion > r.floors[userID] {
		r.floors[userID] = minVersion
	}
	return nil
}

func (r *memRevoker) IsRevoked(_ context.Context, c domain.Claims) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[c.TokenID]; ok {
		return true, nil
	}
	return c.Version < r.floors[c.UserID], nil
}

type discardQueue struct{ n int }

func (q *discardQueue) Enqueue(domain.Reminder) error {
	q.n++
	return nil
}
