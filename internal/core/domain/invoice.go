package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusVoid   InvoiceStatus = "void"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusVoid:
		return true
	}
	return false
}

// Invoice carries a unique, gapless sequence number minted at creation
// time. Number is immutable once assigned.
type Invoice struct {
	ID          string
	Number      string
	CustomerID  string
	AmountCents int64
	Currency    string
	Status      InvoiceStatus
	Lines       json.RawMessage
	IssuedAt    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (i Invoice) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: invoice id required", ErrInvalidInput)
	}
	if i.CustomerID == "" {
		return fmt.Errorf("%w: customer id required", ErrInvalidInput)
	}
	if i.AmountCents < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if i.Currency == "" {
		return fmt.Errorf("%w: currency required", ErrInvalidInput)
	}
	if !i.Status.Valid() {
		return fmt.Errorf("%w: unknown invoice status %q", ErrInvalidInput, i.Status)
	}
	if len(i.Lines) > 0 && !json.Valid(i.Lines) {
		return fmt.Errorf("%w: lines must be valid json", ErrInvalidInput)
	}
	return nil
}

func (i Invoice) AuditValues() map[string]any {
	values := map[string]any{
		"number":      i.Number,
		"customer":    EntityRef{ID: i.CustomerID, Type: EntityTypeCustomer},
		"amountCents": i.AmountCents,
		"currency":    i.Currency,
		"status":      string(i.Status),
		"lines":       nil,
		"issuedAt":    nil,
	}
	if len(i.Lines) > 0 {
		values["lines"] = string(i.Lines)
	}
	if !i.IssuedAt.IsZero() {
		values["issuedAt"] = i.IssuedAt
	}
	return values
}
