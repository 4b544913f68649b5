package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/product"
)

// Service implements the cart aggregator: a per-user mutable collection of
// (product, quantity, price snapshot) lines with a write-through total.
type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

// Get returns the user's cart, creating an empty one on first access.
func (s *Service) Get(userID string) (Cart, error) {
	c, err := s.getOrCreate(userID)
	if err != nil {
		return Cart{}, err
	}
	return s.recalculate(c)
}

// AddItem appends a product line or, when the product is already present,
// increments its quantity.
func (s *Service) AddItem(userID, productID string, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, apperr.Validation("quantity must be at least 1")
	}

	p, err := s.products.GetByID(productID)
	if err != nil {
		return Cart{}, err
	}
	if p.Stock < qty {
		return Cart{}, insufficientStock(p)
	}

	c, err := s.getOrCreate(userID)
	if err != nil {
		return Cart{}, err
	}

	existing, err := s.repo.GetItemByProduct(c.ID, productID)
	switch err {
	case nil:
		newQty := existing.Quantity + qty
		if p.Stock < newQty {
			return Cart{}, insufficientStock(p)
		}
		if err := s.repo.UpdateItemQuantity(existing.ID, newQty); err != nil {
			return Cart{}, err
		}
	case ErrItemNotFound:
		it := Item{
			ID:        uuid.NewString(),
			CartID:    c.ID,
			ProductID: productID,
			Quantity:  qty,
			Price:     p.EffectivePrice(),
		}
		if err := s.repo.InsertItem(it); err != nil {
			return Cart{}, err
		}
	default:
		return Cart{}, err
	}

	return s.reload(userID)
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the line.
func (s *Service) UpdateQuantity(userID, itemID string, qty int) (Cart, error) {
	c, err := s.repo.GetByUser(userID)
	if err != nil {
		return Cart{}, err
	}

	it, err := s.repo.GetItem(c.ID, itemID)
	if err != nil {
		return Cart{}, err
	}

	if qty <= 0 {
		if err := s.repo.DeleteItem(it.ID); err != nil {
			return Cart{}, err
		}
		return s.reload(userID)
	}

	p, err := s.products.GetByID(it.ProductID)
	if err != nil {
		return Cart{}, err
	}
	if p.Stock < qty {
		return Cart{}, insufficientStock(p)
	}

	if err := s.repo.UpdateItemQuantity(it.ID, qty); err != nil {
		return Cart{}, err
	}
	return s.reload(userID)
}

// RemoveItem deletes a line from the user's cart.
func (s *Service) RemoveItem(userID, itemID string) (Cart, error) {
	c, err := s.repo.GetByUser(userID)
	if err != nil {
		return Cart{}, err
	}

	it, err := s.repo.GetItem(c.ID, itemID)
	if err != nil {
		return Cart{}, err
	}

	if err := s.repo.DeleteItem(it.ID); err != nil {
		return Cart{}, err
	}
	return s.reload(userID)
}

// Clear deletes every line and resets the total to zero.
func (s *Service) Clear(userID string) (Cart, error) {
	c, err := s.repo.GetByUser(userID)
	if err != nil {
		return Cart{}, err
	}

	if err := s.repo.ClearItems(c.ID); err != nil {
		return Cart{}, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.repo.SetTotal(c.ID, decimal.Zero, now); err != nil {
		return Cart{}, err
	}
	return s.repo.GetByUser(userID)
}

func (s *Service) getOrCreate(userID string) (Cart, error) {
	c, err := s.repo.GetByUser(userID)
	if err == ErrCartNotFound {
		now := time.Now().UTC().Format(time.RFC3339)
		return s.repo.Create(Cart{
			ID:        uuid.NewString(),
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return c, err
}

func (s *Service) reload(userID string) (Cart, error) {
	c, err := s.repo.GetByUser(userID)
	if err != nil {
		return Cart{}, err
	}
	return s.recalculate(c)
}

// recalculate enriches lines with product details, refreshes any price
// snapshot that drifted from the displayed price, recomputes subtotals and
// persists the new total.
func (s *Service) recalculate(c Cart) (Cart, error) {
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}

	products, err := s.products.ListByIDs(ids)
	if err != nil {
		return Cart{}, err
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	for i := range c.Items {
		it := &c.Items[i]
		if p, ok := byID[it.ProductID]; ok {
			price := p.EffectivePrice()
			if !it.Price.Equal(price) {
				if err := s.repo.UpdateItemPrice(it.ID, price); err != nil {
					return Cart{}, err
				}
				it.Price = price
			}
			prod := p
			it.Product = &prod
		}
		it.Subtotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(it.Subtotal)
	}

	if !c.Total.Equal(total) {
		now := time.Now().UTC().Format(time.RFC3339)
		if err := s.repo.SetTotal(c.ID, total, now); err != nil {
			return Cart{}, err
		}
		c.Total = total
	}
	return c, nil
}

func insufficientStock(p product.Product) error {
	return apperr.Conflictf("product %s has insufficient stock", p.Title)
}
