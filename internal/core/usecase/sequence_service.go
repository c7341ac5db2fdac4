package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/ports"
)

// SequenceService issues the next value of a named counter. It never
// retries: a conflict means no value was issued, and whether to try
// again belongs to the caller, since a retry changes which business
// entity ends up with which number.
type SequenceService struct {
	store ports.CounterStore
}

func NewSequenceService(store ports.CounterStore) *SequenceService {
	return &SequenceService{store: store}
}

func (s *SequenceService) NextValue(ctx context.Context, name, initialValue string) (string, error) {
	if err := domain.ValidateCounterName(name); err != nil {
		return "", err
	}
	if initialValue == "" {
		initialValue = "1"
	}
	if _, err := strconv.ParseUint(initialValue, 10, 63); err != nil {
		return "", fmt.Errorf("%w: initial value must be a non-negative integer", domain.ErrInvalidInput)
	}
	return s.store.NextValue(ctx, name, initialValue)
}
