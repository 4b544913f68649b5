package favorite

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/product"
)

func newTestService() (*Service, *product.InMemoryRepository) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: "prod-1", Title: "Ceramic Mug", Price: decimal.NewFromInt(40), Stock: 5},
	})
	return NewService(NewInMemoryRepository(), product.NewService(products)), products
}

func TestAddAndListFavorites(t *testing.T) {
	s, _ := newTestService()

	f, err := s.Add("user-1", "prod-1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if f.Product == nil || f.Product.Title != "Ceramic Mug" {
		t.Fatalf("favorite should carry the product: %+v", f)
	}

	if _, err := s.Add("user-1", "prod-1"); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on duplicate favorite, got %v", err)
	}
	if _, err := s.Add("user-1", "ghost"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}

	list, err := s.List("user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list length = %d, want 1", len(list))
	}
}

func TestListSkipsDeletedProducts(t *testing.T) {
	s, products := newTestService()
	if _, err := s.Add("user-1", "prod-1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := products.Delete("prod-1"); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	list, err := s.List("user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("favorites of deleted products should be hidden: %+v", list)
	}
}

func TestRemoveFavorite(t *testing.T) {
	s, _ := newTestService()
	if _, err := s.Add("user-1", "prod-1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Remove("user-1", "prod-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove("user-1", "prod-1"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found on second remove, got %v", err)
	}
}
