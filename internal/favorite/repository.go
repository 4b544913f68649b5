package favorite

import (
	"sync"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
)

var (
	ErrNotFound      = apperr.NotFound("favorite not found")
	ErrAlreadyExists = apperr.Conflict("product already favorited")
)

type Repository interface {
	ListByUser(userID string) ([]Favorite, error)
	Create(f Favorite) error
	Delete(userID, productID string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu        sync.RWMutex
	favorites []Favorite
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) ListByUser(userID string) ([]Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Favorite, 0)
	for _, f := range r.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(f Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.favorites {
		if existing.UserID == f.UserID && existing.ProductID == f.ProductID {
			return ErrAlreadyExists
		}
	}
	r.favorites = append(r.favorites, f)
	return nil
}

func (r *InMemoryRepository) Delete(userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.favorites {
		if f.UserID == userID && f.ProductID == productID {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
