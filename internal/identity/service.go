// Package identity implements the account lifecycle: creation, credential
// authentication, profile updates, and soft deletion.
package identity

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/accountforge/service-identity-go/internal/apperror"
	"github.com/accountforge/service-identity-go/internal/identity/entity"
	"github.com/accountforge/service-identity-go/pkg/utilities"
)

// PasswordHasher defines the minimal credential codec (abstract so we can
// swap to argon2 later without touching the service).
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", apperror.New(apperror.KindInvalidInput, "password must not be empty")
	}
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", apperror.Newf(apperror.KindInternal, "hash password: %v", err)
	}
	return string(h), nil
}

// Verify compares against the stored digest in constant content time; bcrypt
// never compares the plaintext byte-for-byte.
func (b BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Store is the persistence boundary for account records. Implementations own
// soft-delete visibility: every lookup excludes deleted rows, and concurrent
// inserts racing on one email are arbitrated by the store's uniqueness
// constraint alone.
type Store interface {
	Insert(ctx context.Context, u *entity.User) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	UpdateByID(ctx context.Context, id string, upd entity.UserUpdate) (*entity.User, error)
	SoftDeleteByID(ctx context.Context, id string) error
}

// unified login failure: unknown account and wrong password must be
// indistinguishable to the caller
func errUnknownOrDeleted() error {
	return apperror.New(apperror.KindUnauthorized, "unknown or deleted user")
}

// Service orchestrates account lifecycle flows on top of a Store and a
// PasswordHasher.
type Service struct {
	store  Store
	hasher PasswordHasher
	newID  func() string
}

// NewService constructs a Service. A nil hasher defaults to bcrypt.
func NewService(store Store, hasher PasswordHasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: bcrypt.DefaultCost}
	}
	return &Service{store: store, hasher: hasher, newID: utilities.NewKSUID}
}

// CreateAccountInput carries signup fields; FirstName and LastName are
// optional and default to the empty string.
type CreateAccountInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CreateAccount hashes the password and persists a new account, returning its
// public profile. Token issuance is the caller's separate step.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (entity.PublicProfile, error) {
	if in.Email == "" || in.Password == "" {
		return entity.PublicProfile{}, apperror.New(apperror.KindInvalidInput, "email and password are required")
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return entity.PublicProfile{}, err
	}
	u := &entity.User{
		ID:           s.newID(),
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	created, err := s.store.Insert(ctx, u)
	if err != nil {
		return entity.PublicProfile{}, err
	}
	return created.Profile(), nil
}

// Authenticate checks credentials against the stored hash. Unknown emails,
// deleted accounts, and wrong passwords all fail with the same error so the
// response carries no enumeration signal.
func (s *Service) Authenticate(ctx context.Context, email, password string) (entity.PublicProfile, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return entity.PublicProfile{}, err
	}
	if u == nil {
		return entity.PublicProfile{}, errUnknownOrDeleted()
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return entity.PublicProfile{}, errUnknownOrDeleted()
	}
	return u.Profile(), nil
}

// UpdateAccountInput carries update fields. Password is mandatory even for
// name-only changes; absent names reset to the empty string.
type UpdateAccountInput struct {
	Password  string
	FirstName string
	LastName  string
}

// UpdateAccount re-hashes the supplied password and applies the update to a
// live record, returning the post-update profile.
func (s *Service) UpdateAccount(ctx context.Context, id string, in UpdateAccountInput) (entity.PublicProfile, error) {
	if in.Password == "" {
		return entity.PublicProfile{}, apperror.New(apperror.KindInvalidInput, "password is required")
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return entity.PublicProfile{}, err
	}
	upd := entity.UserUpdate{
		PasswordHash: &hash,
		FirstName:    &in.FirstName,
		LastName:     &in.LastName,
	}
	updated, err := s.store.UpdateByID(ctx, id, upd)
	if err != nil {
		return entity.PublicProfile{}, err
	}
	return updated.Profile(), nil
}

// DeleteAccount soft-deletes the account. Deleting an already-deleted id is a
// silent no-op.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.store.SoftDeleteByID(ctx, id)
}
