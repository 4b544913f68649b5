package product

import "github.com/shopspring/decimal"

// Image is one entry of a product's ordered image list.
type Image struct {
	ID       string `json:"imageId"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// Product represents a catalog entry. Prices are decimal so stored totals
// never accumulate floating-point drift.
type Product struct {
	ID              string           `json:"productId"`
	Title           string           `json:"title"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice,omitempty"`
	Stock           int              `json:"stock"`
	Category        string           `json:"category,omitempty"`
	Featured        bool             `json:"featured"`
	Images          []Image          `json:"images,omitempty"`
	CreatedAt       string           `json:"createdAt,omitempty"`
	UpdatedAt       string           `json:"updatedAt,omitempty"`
}

// EffectivePrice is the displayed price: the discounted price when present
// and lower than the list price, otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice != nil && p.DiscountedPrice.LessThan(p.Price) {
		return *p.DiscountedPrice
	}
	return p.Price
}
