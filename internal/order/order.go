package order

import "github.com/shopspring/decimal"

// Item is an immutable snapshot of a cart line taken at checkout.
type Item struct {
	ID        string          `json:"itemId"`
	OrderID   string          `json:"-"`
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Order is a completed checkout. Its items and total are frozen; only the
// status moves after creation.
type Order struct {
	ID            string          `json:"orderId"`
	UserID        string          `json:"userId"`
	AddressID     string          `json:"addressId"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        Status          `json:"status"`
	Items         []Item          `json:"items"`
	ShippingCost  decimal.Decimal `json:"shippingCost"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

// ListMeta carries pagination counters alongside an order page.
type ListMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}
