package shipping

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/product"
)

type stubZipClient struct {
	info ZipCodeInfo
	err  error
}

func (s stubZipClient) Lookup(_ context.Context, _ string) (ZipCodeInfo, error) {
	return s.info, s.err
}

func saoPauloZip() stubZipClient {
	return stubZipClient{info: ZipCodeInfo{
		Valid:   true,
		ZipCode: "01310-100",
		City:    "São Paulo",
		State:   "SP",
	}}
}

func newTestService(zip ZipCodeClient, rules ...FreeShippingRule) *Service {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: "prod-1", Title: "Ceramic Mug", Price: decimal.NewFromInt(40), Stock: 10, Category: "kitchen"},
		{ID: "prod-2", Title: "Linen Apron", Price: decimal.NewFromInt(90), Stock: 10, Category: "apparel"},
	})
	repo := NewInMemoryRulesRepository(rules)
	return NewService(repo, product.NewService(products), zip, NewSimulatedCarrier())
}

func findService(t *testing.T, result CalculationResult, st ServiceType) ServiceOption {
	t.Helper()
	for _, svc := range result.AvailableServices {
		if svc.ServiceType == st {
			return svc
		}
	}
	t.Fatalf("service %s not offered: %+v", st, result.AvailableServices)
	return ServiceOption{}
}

func TestCalculateTierPricing(t *testing.T) {
	s := newTestService(saoPauloZip())

	// 4 units at 0.5 kg each weigh 2 kg; below the R$15 minimum fare
	result, err := s.Calculate(context.Background(), "01310-100", []ItemInput{
		{ProductID: "prod-1", Quantity: 4},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if result.TotalWeight != 2.0 {
		t.Errorf("totalWeight = %v, want 2.0", result.TotalWeight)
	}
	if result.TotalItems != 4 {
		t.Errorf("totalItems = %d, want 4", result.TotalItems)
	}
	if result.Destination.State != "SP" || result.Destination.City != "São Paulo" {
		t.Errorf("unexpected destination: %+v", result.Destination)
	}

	pac := findService(t, result, ServicePAC)
	if !pac.Price.Equal(decimal.NewFromInt(15)) {
		t.Errorf("PAC price = %s, want minimum fare 15", pac.Price)
	}
	sedex := findService(t, result, ServiceSEDEX)
	if !sedex.Price.Equal(decimal.NewFromFloat(22.5)) {
		t.Errorf("SEDEX price = %s, want 22.5", sedex.Price)
	}
	sedex10 := findService(t, result, ServiceSEDEX10)
	if !sedex10.Price.Equal(decimal.NewFromFloat(37.5)) {
		t.Errorf("SEDEX_10 price = %s, want 37.5", sedex10.Price)
	}
}

func TestCalculateWeightAboveMinimum(t *testing.T) {
	s := newTestService(saoPauloZip())

	// 8 units weigh 4 kg, so the base fare is 4 * 5 = 20
	result, err := s.Calculate(context.Background(), "01310-100", []ItemInput{
		{ProductID: "prod-1", Quantity: 8},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	pac := findService(t, result, ServicePAC)
	if !pac.Price.Equal(decimal.NewFromInt(20)) {
		t.Errorf("PAC price = %s, want 20", pac.Price)
	}
}

func TestCalculatePickUpOnlyDowntown(t *testing.T) {
	s := newTestService(saoPauloZip())
	result, err := s.Calculate(context.Background(), "01310-100", []ItemInput{
		{ProductID: "prod-1", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	pickUp := findService(t, result, ServicePickUp)
	if !pickUp.Price.IsZero() || !pickUp.IsFree {
		t.Errorf("pick-up should be free: %+v", pickUp)
	}

	remote := stubZipClient{info: ZipCodeInfo{Valid: true, ZipCode: "99999-999", City: "Elsewhere", State: "RS"}}
	s = newTestService(remote)
	result, err = s.Calculate(context.Background(), "99999-999", []ItemInput{
		{ProductID: "prod-1", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	for _, svc := range result.AvailableServices {
		if svc.ServiceType == ServicePickUp {
			t.Errorf("pick-up should not be offered outside town: %+v", svc)
		}
	}
}

func TestCalculateFreeShippingByOrderValue(t *testing.T) {
	rule := FreeShippingRule{
		Name:          "over 100",
		MinOrderValue: decimal.NewFromInt(100),
		Active:        true,
		ServiceTypes:  []ServiceType{ServicePAC},
	}
	s := newTestService(saoPauloZip(), rule)

	// 40 * 3 = 120, above the threshold
	result, err := s.Calculate(context.Background(), "01310-100", []ItemInput{
		{ProductID: "prod-1", Quantity: 3},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	pac := findService(t, result, ServicePAC)
	if !pac.Price.IsZero() || !pac.IsFree || !pac.DiscountApplied {
		t.Errorf("PAC should be free under the rule: %+v", pac)
	}
	if pac.OriginalPrice == nil || !pac.OriginalPrice.Equal(decimal.NewFromInt(15)) {
		t.Errorf("originalPrice should keep the undiscounted fare: %v", pac.OriginalPrice)
	}
	sedex := findService(t, result, ServiceSEDEX)
	if sedex.IsFree || sedex.DiscountApplied {
		t.Errorf("rule restricted to PAC must not touch SEDEX: %+v", sedex)
	}
	if !result.FreeShippingEligible {
		t.Error("freeShippingEligible should be true")
	}
}

func TestCalculateRuleBelowThreshold(t *testing.T) {
	rule := FreeShippingRule{
		Name:          "over 100",
		MinOrderValue: decimal.NewFromInt(100),
		Active:        true,
	}
	s := newTestService(saoPauloZip(), rule)

	// 40 * 2 = 80, under the threshold
	result, err := s.Calculate(context.Background(), "01310-100", []ItemInput{
		{ProductID: "prod-1", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	pac := findService(t, result, ServicePAC)
	if pac.DiscountApplied {
		t.Errorf("rule must not apply below threshold: %+v", pac)
	}
}

func TestCalculateRuleRegionOrCategory(t *testing.T) {
	rule := FreeShippingRule{
		Name:              "apparel in the south",
		MinOrderValue:     decimal.NewFromInt(50),
		Regions:           []string{"RS"},
		ProductCategories: []string{"apparel"},
		Active:            true,
	}

	// destination SP is outside the rule's regions, but the cart carries an
	// apparel product, and either condition suffices
	s := newTestService(saoPauloZip(), rule)
	result, err := s.Calculate(context.Background(), "01310-100", []ItemInput{
		{ProductID: "prod-2", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	pac := findService(t, result, ServicePAC)
	if !pac.IsFree {
		t.Errorf("category overlap should satisfy the rule: %+v", pac)
	}

	// neither region nor category matches
	result, err = s.Calculate(context.Background(), "01310-100", []ItemInput{
		{ProductID: "prod-1", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	pac = findService(t, result, ServicePAC)
	if pac.IsFree {
		t.Errorf("rule must not apply without region or category match: %+v", pac)
	}
}

func TestCalculateInactiveRuleIgnored(t *testing.T) {
	rule := FreeShippingRule{
		Name:          "disabled",
		MinOrderValue: decimal.Zero,
		Active:        false,
	}
	s := newTestService(saoPauloZip(), rule)
	result, err := s.Calculate(context.Background(), "01310-100", []ItemInput{
		{ProductID: "prod-1", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	pac := findService(t, result, ServicePAC)
	if pac.DiscountApplied {
		t.Errorf("inactive rule applied: %+v", pac)
	}
}

func TestCalculateInvalidZip(t *testing.T) {
	s := newTestService(stubZipClient{info: ZipCodeInfo{Valid: false}})
	_, err := s.Calculate(context.Background(), "00000-000", []ItemInput{
		{ProductID: "prod-1", Quantity: 1},
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCalculateUnknownProduct(t *testing.T) {
	s := newTestService(saoPauloZip())
	_, err := s.Calculate(context.Background(), "01310-100", []ItemInput{
		{ProductID: "ghost", Quantity: 1},
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCalculateRejectsBadQuantity(t *testing.T) {
	s := newTestService(saoPauloZip())
	if _, err := s.Calculate(context.Background(), "01310-100", nil); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}
	_, err := s.Calculate(context.Background(), "01310-100", []ItemInput{{ProductID: "prod-1", Quantity: 0}})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
}

func TestRuleValidation(t *testing.T) {
	s := newTestService(saoPauloZip())

	if _, err := s.CreateRule(FreeShippingRule{MinOrderValue: decimal.NewFromInt(10)}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
	if _, err := s.CreateRule(FreeShippingRule{Name: "x", MinOrderValue: decimal.NewFromInt(-5)}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for negative threshold, got %v", err)
	}
	if _, err := s.CreateRule(FreeShippingRule{Name: "x", ServiceTypes: []ServiceType{"DRONE"}}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for unknown service type, got %v", err)
	}

	created, err := s.CreateRule(FreeShippingRule{Name: "valid", MinOrderValue: decimal.NewFromInt(10), Active: true})
	if err != nil {
		t.Fatalf("create rule: %v", err)
	}
	if created.ID == "" || created.CreatedAt == "" {
		t.Errorf("rule should get id and timestamps: %+v", created)
	}
	if created.Regions == nil || created.ProductCategories == nil || created.ServiceTypes == nil {
		t.Errorf("list fields should be normalized to empty slices: %+v", created)
	}
}
