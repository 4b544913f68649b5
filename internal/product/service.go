package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
)

// ServiceInterface is the subset of the product service other packages
// depend on.
type ServiceInterface interface {
	GetByID(id string) (Product, error)
	ListByIDs(ids []string) ([]Product, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() ([]Product, error)         { return s.repo.List() }
func (s *Service) ListFeatured() ([]Product, error) { return s.repo.ListFeatured() }

func (s *Service) GetByID(id string) (Product, error) {
	if id == "" {
		return Product{}, ErrNotFound
	}
	return s.repo.GetByID(id)
}

func (s *Service) ListByIDs(ids []string) ([]Product, error) {
	return s.repo.ListByIDs(ids)
}

func (s *Service) Create(p Product) (Product, error) {
	if err := validate(p); err != nil {
		return Product{}, err
	}
	if len(p.Images) == 0 {
		return Product{}, apperr.Validation("product requires at least one image")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	for i := range p.Images {
		p.Images[i].ID = uuid.NewString()
		p.Images[i].Position = i
	}
	return s.repo.Create(p)
}

func (s *Service) Update(id string, p Product) (Product, error) {
	if id == "" {
		return Product{}, ErrNotFound
	}
	if err := validate(p); err != nil {
		return Product{}, err
	}

	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	for i := range p.Images {
		if p.Images[i].ID == "" {
			p.Images[i].ID = uuid.NewString()
		}
		p.Images[i].Position = i
	}
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id string) error {
	if id == "" {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

func validate(p Product) error {
	if p.Title == "" {
		return apperr.Validation("title is required")
	}
	if p.Price.LessThanOrEqual(decimal.Zero) {
		return apperr.Validation("price must be positive")
	}
	if p.DiscountedPrice != nil && p.DiscountedPrice.GreaterThanOrEqual(p.Price) {
		return apperr.Validation("discountedPrice must be lower than price")
	}
	if p.Stock < 0 {
		return apperr.Validation("stock cannot be negative")
	}
	return nil
}
