package shipping

import "github.com/shopspring/decimal"

// ServiceType identifies a carrier service tier.
type ServiceType string

const (
	ServicePAC     ServiceType = "PAC"
	ServiceSEDEX   ServiceType = "SEDEX"
	ServiceSEDEX10 ServiceType = "SEDEX_10"
	ServicePickUp  ServiceType = "PICK_UP"
)

// ValidServiceType reports whether t is a known service tier.
func ValidServiceType(t ServiceType) bool {
	switch t {
	case ServicePAC, ServiceSEDEX, ServiceSEDEX10, ServicePickUp:
		return true
	}
	return false
}

// unitWeightKg is the assumed weight per product unit. Products carry no
// weight field yet, so the calculator uses this constant.
const unitWeightKg = 0.5

// ItemInput is one (product, quantity) pair in a calculation request.
type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ServiceOption is one priced carrier tier in a calculation result.
type ServiceOption struct {
	ServiceType        ServiceType      `json:"serviceType"`
	Price              decimal.Decimal  `json:"price"`
	OriginalPrice      *decimal.Decimal `json:"originalPrice,omitempty"`
	DeliveryTimeInDays int              `json:"deliveryTimeInDays"`
	IsFree             bool             `json:"isFree"`
	DiscountApplied    bool             `json:"discountApplied"`
}

// Destination describes the resolved delivery target.
type Destination struct {
	ZipCode string `json:"zipCode"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
}

// CalculationResult aggregates the shipping options for a destination.
type CalculationResult struct {
	Destination          Destination     `json:"destination"`
	AvailableServices    []ServiceOption `json:"availableServices"`
	TotalWeight          float64         `json:"totalWeight"`
	TotalItems           int             `json:"totalItems"`
	FreeShippingEligible bool            `json:"freeShippingEligible"`
}

// FreeShippingRule zeroes matching service prices when an order satisfies its
// conditions. Empty Regions/ProductCategories/ServiceTypes lists mean "no
// restriction" for that dimension.
type FreeShippingRule struct {
	ID                string          `json:"ruleId"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	MinOrderValue     decimal.Decimal `json:"minOrderValue"`
	Regions           []string        `json:"regions"`
	ProductCategories []string        `json:"productCategories"`
	ServiceTypes      []ServiceType   `json:"serviceTypes"`
	Active            bool            `json:"active"`
	CreatedAt         string          `json:"createdAt,omitempty"`
	UpdatedAt         string          `json:"updatedAt,omitempty"`
}

// AppliesTo reports whether the rule grants free shipping for the given tier.
// A rule with no service-type restriction applies to every tier.
func (r FreeShippingRule) AppliesTo(t ServiceType) bool {
	if len(r.ServiceTypes) == 0 {
		return true
	}
	for _, st := range r.ServiceTypes {
		if st == t {
			return true
		}
	}
	return false
}
