package category

import "sync"

// Category is a storefront navigation entry. Products reference categories
// by name, not id, so deleting a category never breaks the catalog.
type Category struct {
	ID    string `json:"categoryId"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Order int    `json:"order"`
}

type Repository interface {
	List() ([]Category, error)
	Create(c Category) (Category, error)
	Delete(id string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu         sync.RWMutex
	categories []Category
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{categories: make([]Category, 0, len(seed))}
	r.categories = append(r.categories, seed...)
	return r
}

func (r *InMemoryRepository) List() ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

func (r *InMemoryRepository) Create(c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append(r.categories, c)
	return c, nil
}

func (r *InMemoryRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.categories {
		if c.ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return nil
}
