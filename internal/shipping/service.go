package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/product"
)

var ErrInvalidZipCode = apperr.Validation("invalid zip code")

// Service computes shipping options and manages free-shipping rules.
type Service struct {
	rules    RulesRepository
	products product.ServiceInterface
	zipcodes ZipCodeClient
	carrier  CarrierClient
}

func NewService(rules RulesRepository, products product.ServiceInterface, zipcodes ZipCodeClient, carrier CarrierClient) *Service {
	return &Service{rules: rules, products: products, zipcodes: zipcodes, carrier: carrier}
}

// ValidateZipCode resolves a postal code through the address-lookup
// collaborator.
func (s *Service) ValidateZipCode(ctx context.Context, zipCode string) (ZipCodeInfo, error) {
	if CleanZipCode(zipCode) == "" {
		return ZipCodeInfo{}, apperr.Validation("zipCode is required")
	}
	return s.zipcodes.Lookup(ctx, zipCode)
}

// Calculate returns the carrier options for a destination and item list,
// with free-shipping rules applied.
func (s *Service) Calculate(ctx context.Context, zipCode string, items []ItemInput) (CalculationResult, error) {
	if len(items) == 0 {
		return CalculationResult{}, apperr.Validation("at least one item is required")
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return CalculationResult{}, apperr.Validation("quantity must be at least 1")
		}
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; !ok {
			seen[it.ProductID] = struct{}{}
			ids = append(ids, it.ProductID)
		}
	}

	products, err := s.products.ListByIDs(ids)
	if err != nil {
		return CalculationResult{}, err
	}
	if len(products) != len(ids) {
		return CalculationResult{}, apperr.NotFound("some products were not found")
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var (
		totalWeight float64
		totalItems  int
		orderValue  = decimal.Zero
		categories  []string
		catSeen     = make(map[string]struct{})
	)
	for _, it := range items {
		p := byID[it.ProductID]
		totalWeight += unitWeightKg * float64(it.Quantity)
		totalItems += it.Quantity
		orderValue = orderValue.Add(p.EffectivePrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
		if p.Category != "" {
			if _, ok := catSeen[p.Category]; !ok {
				catSeen[p.Category] = struct{}{}
				categories = append(categories, p.Category)
			}
		}
	}

	zipInfo, err := s.zipcodes.Lookup(ctx, zipCode)
	if err != nil {
		return CalculationResult{}, err
	}
	if !zipInfo.Valid {
		return CalculationResult{}, ErrInvalidZipCode
	}

	quotes, err := s.carrier.Quote(ctx, zipCode, totalWeight, totalItems)
	if err != nil {
		return CalculationResult{}, apperr.Upstream("carrier quote failed", err)
	}

	rules, err := s.rules.ListApplicable(orderValue, zipInfo.State, categories)
	if err != nil {
		return CalculationResult{}, err
	}

	services := applyRules(quotes, rules)

	eligible := false
	for _, svc := range services {
		if svc.IsFree {
			eligible = true
			break
		}
	}

	return CalculationResult{
		Destination: Destination{
			ZipCode: zipCode,
			City:    zipInfo.City,
			State:   zipInfo.State,
		},
		AvailableServices:    services,
		TotalWeight:          totalWeight,
		TotalItems:           totalItems,
		FreeShippingEligible: eligible,
	}, nil
}

// applyRules zeroes the price of every tier covered by a matching rule. The
// first matching rule wins; rules do not stack.
func applyRules(quotes []Quote, rules []FreeShippingRule) []ServiceOption {
	out := make([]ServiceOption, 0, len(quotes))
	for _, q := range quotes {
		opt := ServiceOption{
			ServiceType:        q.ServiceType,
			Price:              q.Price,
			DeliveryTimeInDays: q.DeliveryTimeInDays,
			IsFree:             q.IsFree,
		}
		for _, rule := range rules {
			if rule.AppliesTo(q.ServiceType) {
				original := q.Price
				opt.OriginalPrice = &original
				opt.Price = decimal.Zero
				opt.IsFree = true
				opt.DiscountApplied = true
				break
			}
		}
		out = append(out, opt)
	}
	return out
}

// Free-shipping rule management (admin surface).

func (s *Service) ListRules() ([]FreeShippingRule, error) {
	return s.rules.List()
}

func (s *Service) GetRule(id string) (FreeShippingRule, error) {
	if id == "" {
		return FreeShippingRule{}, ErrRuleNotFound
	}
	return s.rules.GetByID(id)
}

func (s *Service) CreateRule(rule FreeShippingRule) (FreeShippingRule, error) {
	if err := validateRule(rule); err != nil {
		return FreeShippingRule{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	rule.ID = uuid.NewString()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	normalizeRule(&rule)
	return s.rules.Create(rule)
}

func (s *Service) UpdateRule(id string, rule FreeShippingRule) (FreeShippingRule, error) {
	current, err := s.rules.GetByID(id)
	if err != nil {
		return FreeShippingRule{}, err
	}
	if err := validateRule(rule); err != nil {
		return FreeShippingRule{}, err
	}

	rule.ID = id
	rule.CreatedAt = current.CreatedAt
	rule.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	normalizeRule(&rule)
	return s.rules.Update(rule)
}

func (s *Service) DeleteRule(id string) error {
	if id == "" {
		return ErrRuleNotFound
	}
	return s.rules.Delete(id)
}

func validateRule(rule FreeShippingRule) error {
	if rule.Name == "" {
		return apperr.Validation("name is required")
	}
	if rule.MinOrderValue.IsNegative() {
		return apperr.Validation("minOrderValue cannot be negative")
	}
	for _, t := range rule.ServiceTypes {
		if !ValidServiceType(t) {
			return apperr.Validationf("unknown service type %q", t)
		}
	}
	return nil
}

func normalizeRule(rule *FreeShippingRule) {
	if rule.Regions == nil {
		rule.Regions = []string{}
	}
	if rule.ProductCategories == nil {
		rule.ProductCategories = []string{}
	}
	if rule.ServiceTypes == nil {
		rule.ServiceTypes = []ServiceType{}
	}
}
