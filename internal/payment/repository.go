package payment

import (
	"sync"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
)

var (
	ErrNotFound = apperr.NotFound("payment not found")

	// ErrOrderAlreadyPaid guards the one-payment-per-order rule.
	ErrOrderAlreadyPaid = apperr.Conflict("order already has a payment")
)

type Repository interface {
	Create(p Payment) (Payment, error)
	GetByID(id string) (Payment, error)
	GetByOrderID(orderID string) (Payment, error)
	// GetByIntentID resolves the payment a gateway notification refers to.
	GetByIntentID(intentID string) (Payment, error)
	Update(p Payment) (Payment, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.RWMutex
	payments []Payment
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Create(p Payment) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.OrderID == p.OrderID {
			return Payment{}, ErrOrderAlreadyPaid
		}
	}
	r.payments = append(r.payments, p)
	return p, nil
}

func (r *InMemoryRepository) GetByID(id string) (Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (r *InMemoryRepository) GetByOrderID(orderID string) (Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (r *InMemoryRepository) GetByIntentID(intentID string) (Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if intentID == "" {
		return Payment{}, ErrNotFound
	}
	for _, p := range r.payments {
		if p.IntentID == intentID {
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (r *InMemoryRepository) Update(p Payment) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.payments {
		if r.payments[i].ID == p.ID {
			r.payments[i] = p
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}
