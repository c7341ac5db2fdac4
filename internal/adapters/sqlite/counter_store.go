package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atvirokodosprendimai/cliniccore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

type counterModel struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (counterModel) TableName() string {
	return "counters"
}

// CounterStore implements the sequence counter over the counters table.
// One write transaction covers create-if-absent, read, and the
// conditional increment, so a failed call leaves the counter untouched
// and issues nothing.
type CounterStore struct {
	db *gormsqlite.DB
}

func NewCounterStore(db *gormsqlite.DB) *CounterStore {
	return &CounterStore{db: db}
}

// NextValue returns the next value of the named counter. The first call
// for a name creates the row seeded with initialValue and issues the
// seed itself; later calls read the current value and apply a
// conditional update guarded by the value just read. Zero rows affected
// means another transaction moved the counter first: the increment is
// abandoned and domain.ErrCounterConflict surfaces, retriable, with
// nothing applied. On this backend the single-writer connection
// serializes write transactions, so the guard is the portable
// optimistic form of a row lock rather than a hot path.
func (s *CounterStore) NextValue(ctx context.Context, name, initialValue string) (string, error) {
	var issued string

	err := s.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		now := time.Now().UTC()
		seed := counterModel{Name: name, Value: initialValue, CreatedAt: now, UpdatedAt: now}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&seed)
		if res.Error != nil {
			return fmt.Errorf("create counter %s: %w", name, res.Error)
		}
		if res.RowsAffected == 1 {
			issued = initialValue
			return nil
		}

		var row counterModel
		if err := tx.Where("name = ?", name).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCounterConflict
			}
			return fmt.Errorf("read counter %s: %w", name, err)
		}

		current, err := strconv.ParseInt(row.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("counter %s holds non-numeric value %q: %w", name, row.Value, err)
		}
		next := strconv.FormatInt(current+1, 10)

		update := tx.Model(&counterModel{}).
			Where("name = ? AND value = ?", name, row.Value).
			Updates(map[string]any{"value": next, "updated_at": now})
		if update.Error != nil {
			return fmt.Errorf("increment counter %s: %w", name, update.Error)
		}
		if update.RowsAffected == 0 {
			return domain.ErrCounterConflict
		}

		issued = next
		return nil
	})
	if err != nil {
		return "", err
	}

	return issued, nil
}
