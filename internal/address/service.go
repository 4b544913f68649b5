package address

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
)

// ServiceInterface is the subset of the address service the order
// orchestrator depends on.
type ServiceInterface interface {
	GetOwned(id, userID string) (Address, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(userID string) ([]Address, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) GetOwned(id, userID string) (Address, error) {
	if id == "" {
		return Address{}, ErrNotFound
	}
	return s.repo.GetOwned(id, userID)
}

func (s *Service) Create(a Address) (Address, error) {
	if err := validate(a); err != nil {
		return Address{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if a.IsDefault {
		if err := s.repo.ResetDefaults(a.UserID, now); err != nil {
			return Address{}, err
		}
	}

	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	return s.repo.Create(a)
}

func (s *Service) Update(id, userID string, a Address) (Address, error) {
	current, err := s.repo.GetOwned(id, userID)
	if err != nil {
		return Address{}, err
	}
	if err := validate(a); err != nil {
		return Address{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if a.IsDefault && !current.IsDefault {
		if err := s.repo.ResetDefaults(userID, now); err != nil {
			return Address{}, err
		}
	}

	a.ID = id
	a.UserID = userID
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = now
	return s.repo.Update(a)
}

// Delete removes the address unless an order references it. When the deleted
// address was the default, another address of the user is promoted.
func (s *Service) Delete(id, userID string) error {
	current, err := s.repo.GetOwned(id, userID)
	if err != nil {
		return err
	}

	used, err := s.repo.ReferencedByOrder(id)
	if err != nil {
		return err
	}
	if used {
		return ErrInUse
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if current.IsDefault {
		return s.repo.PromoteAnyDefault(userID)
	}
	return nil
}

func validate(a Address) error {
	if a.Street == "" || a.Number == "" || a.City == "" || a.State == "" || a.ZipCode == "" {
		return apperr.Validation("street, number, city, state and zipCode are required")
	}
	return nil
}
