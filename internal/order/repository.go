package order

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/cart"
	"github.com/marcosvbento/storefront-backend/internal/product"
)

var ErrNotFound = apperr.NotFound("order not found")

type Repository interface {
	// CreateFromCart persists the order, decrements stock for every item
	// and clears the source cart. Implementations must make the three
	// effects atomic: a stock failure leaves the cart and catalog
	// untouched.
	CreateFromCart(o Order, cartID string) (Order, error)
	GetByID(id string) (Order, error)
	// List filters drop empty values: a zero status matches every order.
	ListByUser(userID string, status Status, limit, offset int) ([]Order, int, error)
	ListAll(status Status, limit, offset int) ([]Order, int, error)
	UpdateStatus(id string, status Status, updatedAt string) error
	// Cancel marks the order CANCELED and re-credits product stock for
	// every item in one atomic step. Orders already in a terminal state
	// are left untouched, so repeated or racing cancels restore the
	// ordered quantities exactly once.
	Cancel(o Order, updatedAt string) error
}

// InMemoryRepository is used for tests and local scenarios. It leans on the
// in-memory product and cart repositories for the cross-aggregate effects a
// SQL implementation folds into one transaction.
type InMemoryRepository struct {
	mu       sync.RWMutex
	orders   []Order
	products product.Repository
	carts    cart.Repository
}

func NewInMemoryRepository(products product.Repository, carts cart.Repository) *InMemoryRepository {
	return &InMemoryRepository{products: products, carts: carts}
}

func (r *InMemoryRepository) CreateFromCart(o Order, cartID string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	taken := make([]Item, 0, len(o.Items))
	for _, it := range o.Items {
		if err := r.products.AdjustStock(it.ProductID, -it.Quantity); err != nil {
			for _, t := range taken {
				_ = r.products.AdjustStock(t.ProductID, t.Quantity)
			}
			if errors.Is(err, product.ErrStockExhausted) {
				err = apperr.Wrap(apperr.KindConflict,
					fmt.Sprintf("insufficient stock for product %s", it.ProductID), err)
			}
			return Order{}, err
		}
		taken = append(taken, it)
	}

	if err := r.carts.ClearItems(cartID); err != nil {
		for _, t := range taken {
			_ = r.products.AdjustStock(t.ProductID, t.Quantity)
		}
		return Order{}, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if err := r.carts.SetTotal(cartID, decimal.Zero, now); err != nil {
		return Order{}, err
	}

	r.orders = append(r.orders, o)
	return o, nil
}

func (r *InMemoryRepository) GetByID(id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(userID string, status Status, limit, offset int) ([]Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID && (status == "" || o.Status == status) {
			matched = append(matched, o)
		}
	}
	return page(matched, limit, offset)
}

func (r *InMemoryRepository) ListAll(status Status, limit, offset int) ([]Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		if status == "" || o.Status == status {
			matched = append(matched, o)
		}
	}
	return page(matched, limit, offset)
}

func page(orders []Order, limit, offset int) ([]Order, int, error) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt > orders[j].CreatedAt
	})

	total := len(orders)
	if offset >= total {
		return []Order{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return orders[offset:end], total, nil
}

func (r *InMemoryRepository) UpdateStatus(id string, status Status, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].Status = status
			r.orders[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Cancel(o Order, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID != o.ID {
			continue
		}
		if r.orders[i].Status.Terminal() {
			return nil
		}
		for _, it := range o.Items {
			if err := r.products.AdjustStock(it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		r.orders[i].Status = StatusCanceled
		r.orders[i].UpdatedAt = updatedAt
		return nil
	}
	return ErrNotFound
}
