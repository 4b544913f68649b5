package favorite

import (
	"github.com/marcosvbento/storefront-backend/internal/product"
)

type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

// List returns the user's favorites enriched with product details. Favorites
// whose product has since been deleted are skipped.
func (s *Service) List(userID string) ([]Favorite, error) {
	favorites, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ProductID)
	}
	products, err := s.products.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]Favorite, 0, len(favorites))
	for _, f := range favorites {
		if p, ok := byID[f.ProductID]; ok {
			prod := p
			f.Product = &prod
			out = append(out, f)
		}
	}
	return out, nil
}

// Add favorites a product for the user.
func (s *Service) Add(userID, productID string) (Favorite, error) {
	p, err := s.products.GetByID(productID)
	if err != nil {
		return Favorite{}, err
	}

	f := Favorite{UserID: userID, ProductID: p.ID}
	if err := s.repo.Create(f); err != nil {
		return Favorite{}, err
	}
	f.Product = &p
	return f, nil
}

// Remove unfavorites a product.
func (s *Service) Remove(userID, productID string) error {
	return s.repo.Delete(userID, productID)
}
