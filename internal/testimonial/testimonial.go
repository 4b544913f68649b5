package testimonial

import "sync"

// Testimonial is a customer quote shown on the storefront home page.
type Testimonial struct {
	ID     string `json:"testimonialId"`
	Author string `json:"author"`
	Quote  string `json:"quote"`
	Avatar string `json:"avatar,omitempty"`
	Order  int    `json:"order"`
}

type Repository interface {
	List() ([]Testimonial, error)
	Create(t Testimonial) (Testimonial, error)
	Delete(id string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu           sync.RWMutex
	testimonials []Testimonial
}

func NewInMemoryRepository(seed []Testimonial) *InMemoryRepository {
	r := &InMemoryRepository{testimonials: make([]Testimonial, 0, len(seed))}
	r.testimonials = append(r.testimonials, seed...)
	return r
}

func (r *InMemoryRepository) List() ([]Testimonial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Testimonial, len(r.testimonials))
	copy(out, r.testimonials)
	return out, nil
}

func (r *InMemoryRepository) Create(t Testimonial) (Testimonial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.testimonials = append(r.testimonials, t)
	return t, nil
}

func (r *InMemoryRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.testimonials {
		if t.ID == id {
			r.testimonials = append(r.testimonials[:i], r.testimonials[i+1:]...)
			return nil
		}
	}
	return nil
}
