package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/ports"
)

type CustomerService struct {
	repo     ports.CustomerRepository
	recorder *AuditRecorder
}

func NewCustomerService(repo ports.CustomerRepository, recorder *AuditRecorder) *CustomerService {
	return &CustomerService{repo: repo, recorder: recorder}
}

func (s *CustomerService) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	if err := customer.Validate(); err != nil {
		return domain.Customer{}, err
	}
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	entry := s.recorder.Created(ctx, domain.EntityTypeCustomer, customer.ID, customer.AuditValues())
	if err := s.repo.Create(ctx, customer, entry); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	before, err := s.repo.Get(ctx, customer.ID)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := customer.Validate(); err != nil {
		return domain.Customer{}, err
	}
	customer.CreatedAt = before.CreatedAt
	customer.UpdatedAt = time.Now().UTC()

	entry := s.recorder.Updated(ctx, domain.EntityTypeCustomer, customer.ID, before.AuditValues(), customer.AuditValues())
	if err := s.repo.Update(ctx, customer, entry); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) (bool, error) {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	entry := s.recorder.Deleted(ctx, domain.EntityTypeCustomer, id, before.AuditValues())
	return s.repo.Delete(ctx, id, entry)
}

func (s *CustomerService) Get(ctx context.Context, id string) (domain.Customer, error) {
	if id == "" {
		return domain.Customer{}, domain.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, afterID string, limit int) ([]domain.Customer, error) {
	return s.repo.List(ctx, afterID, clampLimit(limit))
}
