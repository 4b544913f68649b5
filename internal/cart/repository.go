package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
)

var (
	ErrCartNotFound = apperr.NotFound("cart not found")
	ErrItemNotFound = apperr.NotFound("item not found in cart")
)

// Repository persists carts and their lines. The running total is stored
// write-through so readers never recompute it.
type Repository interface {
	// GetByUser returns the user's cart with its items, or ErrCartNotFound.
	GetByUser(userID string) (Cart, error)
	Create(c Cart) (Cart, error)
	GetItem(cartID, itemID string) (Item, error)
	GetItemByProduct(cartID, productID string) (Item, error)
	InsertItem(it Item) error
	UpdateItemQuantity(itemID string, qty int) error
	UpdateItemPrice(itemID string, price decimal.Decimal) error
	DeleteItem(itemID string) error
	ClearItems(cartID string) error
	SetTotal(cartID string, total decimal.Decimal, updatedAt string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts []Cart
	items []Item
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) GetByUser(userID string) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.carts {
		if c.UserID == userID {
			c.Items = r.itemsOf(c.ID)
			return c, nil
		}
	}
	return Cart{}, ErrCartNotFound
}

func (r *InMemoryRepository) Create(c Cart) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Total = decimal.Zero
	r.carts = append(r.carts, c)
	return c, nil
}

func (r *InMemoryRepository) GetItem(cartID, itemID string) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items {
		if it.ID == itemID && it.CartID == cartID {
			return it, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (r *InMemoryRepository) GetItemByProduct(cartID, productID string) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items {
		if it.CartID == cartID && it.ProductID == productID {
			return it, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (r *InMemoryRepository) InsertItem(it Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, it)
	return nil
}

func (r *InMemoryRepository) UpdateItemQuantity(itemID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items[i].Quantity = qty
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) UpdateItemPrice(itemID string, price decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items[i].Price = price
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) DeleteItem(itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) ClearItems(cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, it := range r.items {
		if it.CartID != cartID {
			kept = append(kept, it)
		}
	}
	r.items = kept
	return nil
}

func (r *InMemoryRepository) SetTotal(cartID string, total decimal.Decimal, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.carts {
		if r.carts[i].ID == cartID {
			r.carts[i].Total = total
			if updatedAt != "" {
				r.carts[i].UpdatedAt = updatedAt
			}
			return nil
		}
	}
	return ErrCartNotFound
}

func (r *InMemoryRepository) itemsOf(cartID string) []Item {
	out := make([]Item, 0)
	for _, it := range r.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	return out
}
