package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/ports"
)

type InvoiceService struct {
	repo     ports.InvoiceRepository
	sequence *SequenceService
	recorder *AuditRecorder
	schemas  *FormSchemas
}

func NewInvoiceService(repo ports.InvoiceRepository, sequence *SequenceService, recorder *AuditRecorder, schemas *FormSchemas) *InvoiceService {
	return &InvoiceService{repo: repo, sequence: sequence, recorder: recorder, schemas: schemas}
}

// Create mints the next invoice number for the current year and
// persists the invoice together with its audit entry in one
// transaction. Losing the counter race is retried a few times here,
// because retrying is a business decision: a failed attempt issued no
// number, so trying again cannot waste one. If the counter still
// conflicts after the retries the caller sees the retriable error.
func (s *InvoiceService) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = domain.InvoiceStatusIssued
	}
	now := time.Now().UTC()
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = now
	}
	if err := inv.Validate(); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.schemas.Validate(domain.EntityTypeInvoice, inv.Lines); err != nil {
		return domain.Invoice{}, err
	}

	year := inv.IssuedAt.Year()
	number, err := s.mintNumber(ctx, year)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.Number = number
	inv.CreatedAt = now
	inv.UpdatedAt = now

	entry := s.recorder.Created(ctx, domain.EntityTypeInvoice, inv.ID, inv.AuditValues())
	if err := s.repo.Create(ctx, inv, entry); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (s *InvoiceService) mintNumber(ctx context.Context, year int) (string, error) {
	var number string
	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		value, err := s.sequence.NextValue(ctx, domain.InvoiceCounterName(year), "1")
		if err != nil {
			if errors.Is(err, domain.ErrCounterConflict) {
				return retry.RetryableError(err)
			}
			return err
		}
		ordinal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("counter returned non-numeric value %q: %w", value, err)
		}
		number = domain.FormatInvoiceNumber(year, ordinal)
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

func (s *InvoiceService) Update(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	before, err := s.repo.Get(ctx, inv.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	// The number is assigned once and never rewritten.
	inv.Number = before.Number
	if inv.Status == "" {
		inv.Status = before.Status
	}
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = before.IssuedAt
	}
	if err := inv.Validate(); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.schemas.Validate(domain.EntityTypeInvoice, inv.Lines); err != nil {
		return domain.Invoice{}, err
	}
	inv.CreatedAt = before.CreatedAt
	inv.UpdatedAt = time.Now().UTC()

	entry := s.recorder.Updated(ctx, domain.EntityTypeInvoice, inv.ID, before.AuditValues(), inv.AuditValues())
	if err := s.repo.Update(ctx, inv, entry); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

// Void marks an invoice void. The row stays, the number stays issued;
// the status flip is what the audit trail records.
func (s *InvoiceService) Void(ctx context.Context, id string) (domain.Invoice, error) {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if before.Status == domain.InvoiceStatusVoid {
		return before, nil
	}

	inv := before
	inv.Status = domain.InvoiceStatusVoid
	inv.UpdatedAt = time.Now().UTC()

	entry := s.recorder.Updated(ctx, domain.EntityTypeInvoice, inv.ID, before.AuditValues(), inv.AuditValues())
	if err := s.repo.Update(ctx, inv, entry); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (s *InvoiceService) Delete(ctx context.Context, id string) (bool, error) {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	entry := s.recorder.Deleted(ctx, domain.EntityTypeInvoice, id, before.AuditValues())
	return s.repo.Delete(ctx, id, entry)
}

func (s *InvoiceService) Get(ctx context.Context, id string) (domain.Invoice, error) {
	if id == "" {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *InvoiceService) List(ctx context.Context, afterID string, limit int) ([]domain.Invoice, error) {
	return s.repo.List(ctx, afterID, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
