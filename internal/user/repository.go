package user

import (
	"sync"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
)

var (
	ErrNotFound           = apperr.NotFound("user not found")
	ErrEmailExists        = apperr.Conflict("email already registered")
	ErrInvalidCredentials = apperr.Validation("invalid email or password")
)

// Repository provides access to user records.
type Repository interface {
	GetByID(id string) (User, error)
	GetByEmail(email string) (User, error)
	Create(u User) (User, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users []User
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	r := &InMemoryRepository{users: make([]User, 0, len(seed))}
	r.users = append(r.users, seed...)
	return r
}

func (r *InMemoryRepository) GetByID(id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Create(u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
	return u, nil
}
