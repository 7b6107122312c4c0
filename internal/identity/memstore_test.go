package identity

import (
	"context"
	"sync"
	"time"

	"github.com/accountforge/service-identity-go/internal/apperror"
	"github.com/accountforge/service-identity-go/internal/identity/entity"
)

// memStore is an in-memory Store used by service and handler tests. It
// mirrors the Postgres adapter's contract: soft-deleted rows are invisible,
// and the live-email uniqueness constraint is the sole duplicate arbiter.
type memStore struct {
	mu    sync.Mutex
	users map[string]*entity.User
	now   func() time.Time
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*entity.User), now: time.Now}
}

func (m *memStore) Insert(_ context.Context, u *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email && !existing.Deleted() {
			return nil, apperror.New(apperror.KindConstraintViolation, "email already in use")
		}
	}
	now := m.now()
	stored := *u
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.users[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email && !u.Deleted() {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok && !u.Deleted() {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) UpdateByID(_ context.Context, id string, upd entity.UserUpdate) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Deleted() {
		return nil, apperror.New(apperror.KindNotFound, "unknown or deleted user")
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	u.UpdatedAt = m.now()
	copied := *u
	return &copied, nil
}

func (m *memStore) SoftDeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok && !u.Deleted() {
		now := m.now()
		u.DeletedAt = &now
		u.UpdatedAt = now
	}
	return nil
}
