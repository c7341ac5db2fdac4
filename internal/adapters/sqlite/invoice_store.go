package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/atvirokodosprendimai/cliniccore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

type invoiceModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Number      string    `gorm:"column:number;not null;uniqueIndex"`
	CustomerID  string    `gorm:"column:customer_id;not null"`
	AmountCents int64     `gorm:"column:amount_cents;not null"`
	Currency    string    `gorm:"column:currency;not null"`
	Status      string    `gorm:"column:status;not null"`
	Lines       string    `gorm:"column:lines"`
	IssuedAt    time.Time `gorm:"column:issued_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (invoiceModel) TableName() string {
	return "invoices"
}

type InvoiceRepository struct {
	db *gormsqlite.DB
}

func NewInvoiceRepository(db *gormsqlite.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice domain.Invoice, entry *domain.AuditEntry) error {
	model := invoiceToModel(invoice)
	return r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		return insertAuditEntry(tx.DB, entry)
	})
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice domain.Invoice, entry *domain.AuditEntry) error {
	model := invoiceToModel(invoice)
	return r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		// Number is deliberately absent: once issued it never changes.
		res := tx.Model(&invoiceModel{}).Where("id = ?", model.ID).Updates(map[string]any{
			"customer_id":  model.CustomerID,
			"amount_cents": model.AmountCents,
			"currency":     model.Currency,
			"status":       model.Status,
			"lines":        model.Lines,
			"issued_at":    model.IssuedAt,
			"updated_at":   model.UpdatedAt,
		})
		if res.Error != nil {
			return fmt.Errorf("update invoice: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return insertAuditEntry(tx.DB, entry)
	})
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string, entry *domain.AuditEntry) (bool, error) {
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&invoiceModel{})
		if res.Error != nil {
			return fmt.Errorf("delete invoice: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return insertAuditEntry(tx.DB, entry)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id string) (domain.Invoice, error) {
	var model invoiceModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Invoice{}, domain.ErrNotFound
		}
		return domain.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	return invoiceToDomain(model), nil
}

func (r *InvoiceRepository) List(ctx context.Context, afterID string, limit int) ([]domain.Invoice, error) {
	var models []invoiceModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&invoiceModel{})
		if afterID != "" {
			query = query.Where("id > ?", afterID)
		}
		return query.Order("id ASC").Limit(limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	invoices := make([]domain.Invoice, 0, len(models))
	for _, model := range models {
		invoices = append(invoices, invoiceToDomain(model))
	}
	return invoices, nil
}

// NumbersByYear reads the committed numbers carrying the year prefix.
// It runs in a read transaction, sees committed rows only, and takes
// no part in the counter's write path.
func (r *InvoiceRepository) NumbersByYear(ctx context.Context, year int) ([]string, error) {
	var numbers []string
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		prefix := fmt.Sprintf("%d", year)
		return tx.Model(&invoiceModel{}).
			Where("number >= ? AND number < ?", prefix, prefix+"\uffff").
			Order("number ASC").
			Pluck("number", &numbers).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list invoice numbers: %w", err)
	}
	return numbers, nil
}

func invoiceToModel(i domain.Invoice) invoiceModel {
	return invoiceModel{
		ID:          i.ID,
		Number:      i.Number,
		CustomerID:  i.CustomerID,
		AmountCents: i.AmountCents,
		Currency:    i.Currency,
		Status:      string(i.Status),
		Lines:       string(i.Lines),
		IssuedAt:    i.IssuedAt,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func invoiceToDomain(model invoiceModel) domain.Invoice {
	inv := domain.Invoice{
		ID:          model.ID,
		Number:      model.Number,
		CustomerID:  model.CustomerID,
		AmountCents: model.AmountCents,
		Currency:    model.Currency,
		Status:      domain.InvoiceStatus(model.Status),
		IssuedAt:    model.IssuedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.Lines != "" {
		inv.Lines = json.RawMessage(model.Lines)
	}
	return inv
}
