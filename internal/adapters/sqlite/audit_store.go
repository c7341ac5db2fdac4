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

type auditEntryModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	EntityType string    `gorm:"column:entity_type;not null"`
	EntityID   string    `gorm:"column:entity_id;not null"`
	Operation  string    `gorm:"column:operation;not null"`
	Changes    string    `gorm:"column:changes;not null"`
	ChangedAt  time.Time `gorm:"column:changed_at;not null"`
	ChangedBy  string    `gorm:"column:changed_by"`
	IPAddress  string    `gorm:"column:ip_address"`
	UserAgent  string    `gorm:"column:user_agent"`
}

func (auditEntryModel) TableName() string {
	return "audit_trail"
}

// insertAuditEntry appends one entry inside an already-open write
// transaction. Aggregate repositories call it so the business row and
// its audit row commit or roll back together. This is the only code
// path that touches audit_trail for writing; the table has no update
// or delete anywhere.
func insertAuditEntry(tx *gorm.DB, entry *domain.AuditEntry) error {
	if entry == nil {
		return nil
	}
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("encode audit changes: %w", err)
	}
	model := auditEntryModel{
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Operation:  string(entry.Operation),
		Changes:    string(changes),
		ChangedAt:  entry.ChangedAt,
		ChangedBy:  entry.ChangedBy,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}
	if model.ChangedAt.IsZero() {
		model.ChangedAt = time.Now().UTC()
	}
	if err := tx.Create(&model).Error; err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

type AuditLogRepository struct {
	db *gormsqlite.DB
}

func NewAuditLogRepository(db *gormsqlite.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	var rows []auditEntryModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&auditEntryModel{})
		if filter.EntityType != "" {
			query = query.Where("entity_type = ?", filter.EntityType)
		}
		if filter.EntityID != "" {
			query = query.Where("entity_id = ?", filter.EntityID)
		}
		if filter.Operation != "" {
			query = query.Where("operation = ?", string(filter.Operation))
		}
		if filter.AfterID > 0 {
			query = query.Where("id < ?", filter.AfterID)
		}
		return query.Order("id DESC").Limit(filter.Limit).Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	result := make([]domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := auditEntryToDomain(row)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, nil
}

func (r *AuditLogRepository) Get(ctx context.Context, id int64) (domain.AuditEntry, error) {
	var row auditEntryModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AuditEntry{}, domain.ErrNotFound
		}
		return domain.AuditEntry{}, fmt.Errorf("get audit entry: %w", err)
	}
	return auditEntryToDomain(row)
}

func auditEntryToDomain(row auditEntryModel) (domain.AuditEntry, error) {
	var changes map[string]domain.FieldChange
	if row.Changes != "" {
		if err := json.Unmarshal([]byte(row.Changes), &changes); err != nil {
			return domain.AuditEntry{}, fmt.Errorf("decode audit changes: %w", err)
		}
	}
	return domain.AuditEntry{
		ID:         row.ID,
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
		Operation:  domain.Operation(row.Operation),
		Changes:    changes,
		ChangedAt:  row.ChangedAt,
		ChangedBy:  row.ChangedBy,
		IPAddress:  row.IPAddress,
		UserAgent:  row.UserAgent,
	}, nil
}
