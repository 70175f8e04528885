package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int

	// beforeUpdate, when set, runs ahead of every Update to simulate a
	// concurrent writer.
	beforeUpdate func(r *stubUserRepo, id string)
}

// mutate edits a stored user in place.
func (r *stubUserRepo) mutate(id string, fn func(u *domain.User)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		fn(u)
	}
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.UserConflict("username")
		}
		if u.Email == user.Email {
			return nil, domain.UserConflict("email")
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("u-%d", r.nextID)
	r.users[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, ch domain.UserChanges) (*domain.User, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate(r, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if !ch.Matches(*stored) {
		return nil, domain.ErrConcurrentUpdate
	}
	next := ch.Apply(*stored)
	for _, u := range r.users {
		if u.ID == id {
			continue
		}
		if u.Username == next.Username {
			return nil, domain.UserConflict("username")
		}
		if u.Email == next.Email {
			return nil, domain.UserConflict("email")
		}
	}
	r.users[id] = &next
	return cloneUser(&next), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type stubTaskRepo struct {
	mu     sync.Mutex
	tasks  map[string]*domain.Task
	nextID int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	copy := *task
	copy.ID = fmt.Sprintf("t-%d", r.nextID)
	r.tasks[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	out := *t
	return &out, nil
}

func (r *stubTaskRepo) List(_ context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Task{}
	for _, t := range r.tasks {
		if f.OwnerID != "" && t.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	copy := *task
	r.tasks[task.ID] = &copy
	out := copy
	return &out, nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tasks {
		if t.OwnerID == ownerID {
			delete(r.tasks, id)
			n++
		}
	}
	return n, nil
}

// plainHasher is a fast stand-in for bcrypt that counts verifications.
type plainHasher struct {
	mu       sync.Mutex
	verifies int
}

func (h *plainHasher) Hash(_ context.Context, plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (h *plainHasher) Verify(_ context.Context, plaintext, digest string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	if !strings.HasPrefix(digest, "hashed:") {
		return false, errors.New("malformed digest")
	}
	return digest == "hashed:"+plaintext, nil
}

type stubRevoker struct {
	tokens map[string]time.Time
	users  map[string]int
	// userErr, when set, fails RevokeUserBefore.
	userErr error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{tokens: map[string]time.Time{}, users: map[string]int{}}
}

func (r *stubRevoker) RevokeToken(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.tokens[tokenID] = expiresAt
	return nil
}

func (r *stubRevoker) RevokeUserBefore(_ context.Context, userID string, minVersion int) error {
	if r.userErr != nil {
		return r.userErr
	}
	if minVersion <= r.users[userID] {
		return nil
	}
	r.users[userID] = minVersion
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, c domain.Claims) (bool, error) {
	if _, ok := r.tokens[c.TokenID]; ok {
		return true, nil
	}
	floor, ok := r.users[c.UserID]
	return ok && c.Version < floor, nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	err    error
}

func (a *recordingAudit) Publish(_ context.Context, ev domain.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return a.err
}

func (a *recordingAudit) types() []domain.AuditType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditType, len(a.events))
	for i, ev := range a.events {
		out[i] = ev.Type
	}
	return out
}
