package address

import (
	"sync"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
)

var (
	ErrNotFound = apperr.NotFound("address not found")
	// ErrInUse guards deletion of addresses referenced by orders.
	ErrInUse = apperr.Conflict("address is referenced by an order and cannot be deleted")
)

type Repository interface {
	ListByUser(userID string) ([]Address, error)
	// GetOwned returns the address only when it belongs to userID.
	GetOwned(id, userID string) (Address, error)
	Create(a Address) (Address, error)
	Update(a Address) (Address, error)
	Delete(id string) error
	// ResetDefaults clears IsDefault on every address of the user.
	ResetDefaults(userID string, updatedAt string) error
	// ReferencedByOrder reports whether any order points at the address.
	ReferencedByOrder(id string) (bool, error)
	// PromoteAnyDefault makes some remaining address of the user the
	// default, if one exists.
	PromoteAnyDefault(userID string) error
}

// InMemoryRepository is used for tests and local scenarios. Order references
// are seeded through MarkReferenced.
type InMemoryRepository struct {
	mu         sync.RWMutex
	storage    []Address
	referenced map[string]bool
}

func NewInMemoryRepository(seed []Address) *InMemoryRepository {
	r := &InMemoryRepository{
		storage:    make([]Address, 0, len(seed)),
		referenced: make(map[string]bool),
	}
	r.storage = append(r.storage, seed...)
	return r
}

// MarkReferenced simulates an order row pointing at the address.
func (r *InMemoryRepository) MarkReferenced(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.referenced[id] = true
}

func (r *InMemoryRepository) ListByUser(userID string) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Address, 0)
	for _, a := range r.storage {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) GetOwned(id, userID string) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.storage {
		if a.ID == id && a.UserID == userID {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Create(a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = append(r.storage, a)
	return a, nil
}

func (r *InMemoryRepository) Update(a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == a.ID {
			r.storage[i] = a
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) ResetDefaults(userID string, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].UserID == userID && r.storage[i].IsDefault {
			r.storage[i].IsDefault = false
			if updatedAt != "" {
				r.storage[i].UpdatedAt = updatedAt
			}
		}
	}
	return nil
}

func (r *InMemoryRepository) ReferencedByOrder(id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.referenced[id], nil
}

func (r *InMemoryRepository) PromoteAnyDefault(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].UserID == userID {
			r.storage[i].IsDefault = true
			return nil
		}
	}
	return nil
}
