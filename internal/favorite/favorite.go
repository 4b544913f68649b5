package favorite

import "github.com/marcosvbento/storefront-backend/internal/product"

// Favorite marks a product saved by a user.
type Favorite struct {
	UserID    string           `json:"-"`
	ProductID string           `json:"productId"`
	Product   *product.Product `json:"product,omitempty"`
}
