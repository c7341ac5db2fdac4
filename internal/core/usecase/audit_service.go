package usecase

import (
	"context"
	"fmt"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/ports"
)

// AuditService is the read side of the audit trail: exact-match
// filters, newest first, keyset pagination.
type AuditService struct {
	repo ports.AuditLogRepository
}

func NewAuditService(repo ports.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	if filter.Operation != "" && !filter.Operation.Valid() {
		return nil, fmt.Errorf("%w: unknown operation %q", domain.ErrInvalidInput, filter.Operation)
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.repo.List(ctx, filter)
}

func (s *AuditService) Get(ctx context.Context, id int64) (domain.AuditEntry, error) {
	if id <= 0 {
		return domain.AuditEntry{}, domain.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}
