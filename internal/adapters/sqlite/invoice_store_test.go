package sqlite

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

func invoiceFixture(id, number string) domain.Invoice {
	now := time.Now().UTC()
	return domain.Invoice{
		ID:          id,
		Number:      number,
		CustomerID:  "c-1",
		AmountCents: 100,
		Currency:    "EUR",
		Status:      domain.InvoiceStatusIssued,
		IssuedAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestInvoiceRepositoryNumberIsImmutable(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t))

	if err := repo.Create(ctx, invoiceFixture("inv-1", "20260001"), nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	changed := invoiceFixture("inv-1", "20269999")
	changed.AmountCents = 250
	if err := repo.Update(ctx, changed, nil); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := repo.Get(ctx, "inv-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Number != "20260001" {
		t.Fatalf("number was rewritten: %s", stored.Number)
	}
	if stored.AmountCents != 250 {
		t.Fatalf("amount not updated: %d", stored.AmountCents)
	}
}

func TestInvoiceRepositoryNumberUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t))

	if err := repo.Create(ctx, invoiceFixture("inv-1", "20260001"), nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, invoiceFixture("inv-2", "20260001"), nil); err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestInvoiceRepositoryNumbersByYear(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t))

	seed := map[string]string{
		"inv-1": "20260002",
		"inv-2": "20260001",
		"inv-3": "20250001",
	}
	for id, number := range seed {
		if err := repo.Create(ctx, invoiceFixture(id, number), nil); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	numbers, err := repo.NumbersByYear(ctx, 2026)
	if err != nil {
		t.Fatalf("numbers by year: %v", err)
	}
	if !reflect.DeepEqual(numbers, []string{"20260001", "20260002"}) {
		t.Fatalf("unexpected numbers: %v", numbers)
	}

	empty, err := repo.NumbersByYear(ctx, 2024)
	if err != nil {
		t.Fatalf("numbers by year: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no numbers for 2024, got %v", empty)
	}
}
