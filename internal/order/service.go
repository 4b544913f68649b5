package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/address"
	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/cart"
)

// CartService is the slice of the cart service the checkout needs.
type CartService interface {
	Get(userID string) (cart.Cart, error)
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Service owns the order lifecycle: checkout, reads and status transitions.
type Service struct {
	repo      Repository
	carts     CartService
	addresses address.ServiceInterface
}

func NewService(repo Repository, carts CartService, addresses address.ServiceInterface) *Service {
	return &Service{repo: repo, carts: carts, addresses: addresses}
}

// Create converts the user's cart into a PENDING order. The cart must be
// non-empty and the address must belong to the user.
func (s *Service) Create(userID, addressID, paymentMethod string, shippingCost decimal.Decimal) (Order, error) {
	if addressID == "" {
		return Order{}, apperr.Validation("addressId is required")
	}
	if shippingCost.IsNegative() {
		return Order{}, apperr.Validation("shippingCost cannot be negative")
	}
	if paymentMethod == "" {
		paymentMethod = "CARD"
	}

	if _, err := s.addresses.GetOwned(addressID, userID); err != nil {
		return Order{}, err
	}

	c, err := s.carts.Get(userID)
	if err != nil {
		return Order{}, err
	}
	if len(c.Items) == 0 {
		return Order{}, apperr.Validation("cart is empty")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	o := Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		AddressID:     addressID,
		PaymentMethod: paymentMethod,
		Status:        StatusPending,
		ShippingCost:  shippingCost,
		Total:         c.Total.Add(shippingCost),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, it := range c.Items {
		item := Item{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal,
		}
		if it.Product != nil {
			item.Title = it.Product.Title
		}
		o.Items = append(o.Items, item)
	}

	return s.repo.CreateFromCart(o, c.ID)
}

// Get returns an order. Non-admin callers only see their own orders.
func (s *Service) Get(id, userID string, isAdmin bool) (Order, error) {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return Order{}, err
	}
	if !isAdmin && o.UserID != userID {
		return Order{}, apperr.Forbidden("order belongs to another user")
	}
	return o, nil
}

// List returns a page of orders, newest first, optionally filtered by
// status. Admins see every order, everyone else only their own.
func (s *Service) List(userID string, isAdmin bool, statusFilter string, page, limit int) ([]Order, ListMeta, error) {
	var status Status
	if statusFilter != "" {
		parsed, err := ParseStatus(statusFilter)
		if err != nil {
			return nil, ListMeta{}, err
		}
		status = parsed
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := (page - 1) * limit

	var (
		orders []Order
		total  int
		err    error
	)
	if isAdmin {
		orders, total, err = s.repo.ListAll(status, limit, offset)
	} else {
		orders, total, err = s.repo.ListByUser(userID, status, limit, offset)
	}
	if err != nil {
		return nil, ListMeta{}, err
	}

	meta := ListMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
	return orders, meta, nil
}

// UpdateStatus moves an order along its lifecycle. Admins may perform any
// allowed transition; other users may only cancel their own PENDING orders.
// Canceling restores the reserved stock.
func (s *Service) UpdateStatus(id string, next Status, userID string, isAdmin bool) (Order, error) {
	o, err := s.Get(id, userID, isAdmin)
	if err != nil {
		return Order{}, err
	}

	if o.Status == next {
		return o, nil
	}
	if !isAdmin {
		if next != StatusCanceled {
			return Order{}, apperr.Forbidden("only admins can update order status")
		}
		if o.Status != StatusPending {
			return Order{}, apperr.Forbidden("only pending orders can be canceled")
		}
	}
	if !o.Status.CanTransitionTo(next) {
		return Order{}, apperr.Conflictf("cannot transition order from %s to %s", o.Status, next)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if next == StatusCanceled {
		if err := s.repo.Cancel(o, now); err != nil {
			return Order{}, err
		}
	} else if err := s.repo.UpdateStatus(o.ID, next, now); err != nil {
		return Order{}, err
	}
	o.Status = next
	o.UpdatedAt = now
	return o, nil
}

// Confirm moves a PENDING order to CONFIRMED. Orders that already advanced
// are left alone, so a replayed payment notification has no effect.
func (s *Service) Confirm(id string) error {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if o.Status != StatusPending {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return s.repo.UpdateStatus(o.ID, StatusConfirmed, now)
}

// Cancel cancels an order regardless of its owner, restoring stock. Terminal
// orders are left alone.
func (s *Service) Cancel(id string) error {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if o.Status.Terminal() {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return s.repo.Cancel(o, now)
}
