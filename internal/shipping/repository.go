package shipping

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
)

var ErrRuleNotFound = apperr.NotFound("free shipping rule not found")

// RulesRepository persists free-shipping rules.
type RulesRepository interface {
	List() ([]FreeShippingRule, error)
	// ListApplicable returns the active rules matched by an order context:
	// minOrderValue <= orderValue AND (state in regions OR regions empty
	// OR any category overlaps). The region/category conditions are an OR,
	// matching the observed product behavior.
	ListApplicable(orderValue decimal.Decimal, state string, categories []string) ([]FreeShippingRule, error)
	GetByID(id string) (FreeShippingRule, error)
	Create(r FreeShippingRule) (FreeShippingRule, error)
	Update(r FreeShippingRule) (FreeShippingRule, error)
	Delete(id string) error
}

// InMemoryRulesRepository is used for tests and local scenarios.
type InMemoryRulesRepository struct {
	mu    sync.RWMutex
	rules []FreeShippingRule
}

func NewInMemoryRulesRepository(seed []FreeShippingRule) *InMemoryRulesRepository {
	r := &InMemoryRulesRepository{rules: make([]FreeShippingRule, 0, len(seed))}
	r.rules = append(r.rules, seed...)
	return r
}

func (r *InMemoryRulesRepository) List() ([]FreeShippingRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FreeShippingRule, len(r.rules))
	copy(out, r.rules)
	return out, nil
}

func (r *InMemoryRulesRepository) ListApplicable(orderValue decimal.Decimal, state string, categories []string) ([]FreeShippingRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catSet := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		catSet[c] = struct{}{}
	}

	out := make([]FreeShippingRule, 0)
	for _, rule := range r.rules {
		if !rule.Active || rule.MinOrderValue.GreaterThan(orderValue) {
			continue
		}
		if matchesRegionOrCategory(rule, state, catSet) {
			out = append(out, rule)
		}
	}
	return out, nil
}

func matchesRegionOrCategory(rule FreeShippingRule, state string, categories map[string]struct{}) bool {
	if len(rule.Regions) == 0 {
		return true
	}
	for _, region := range rule.Regions {
		if region == state {
			return true
		}
	}
	for _, cat := range rule.ProductCategories {
		if _, ok := categories[cat]; ok {
			return true
		}
	}
	return false
}

func (r *InMemoryRulesRepository) GetByID(id string) (FreeShippingRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return FreeShippingRule{}, ErrRuleNotFound
}

func (r *InMemoryRulesRepository) Create(rule FreeShippingRule) (FreeShippingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
	return rule, nil
}

func (r *InMemoryRulesRepository) Update(rule FreeShippingRule) (FreeShippingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rules {
		if r.rules[i].ID == rule.ID {
			r.rules[i] = rule
			return rule, nil
		}
	}
	return FreeShippingRule{}, ErrRuleNotFound
}

func (r *InMemoryRulesRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return ErrRuleNotFound
}
