package cart

import (
	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/product"
)

// Item is one cart line: a product reference, a quantity and the price
// snapshot taken when the line was added.
type Item struct {
	ID        string           `json:"itemId"`
	CartID    string           `json:"-"`
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	Product   *product.Product `json:"product,omitempty"`
}

// Cart is the per-user singleton holding the item collection and the running
// total. Total always equals the sum of line subtotals.
type Cart struct {
	ID        string          `json:"cartId"`
	UserID    string          `json:"userId"`
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt string          `json:"createdAt,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
}
