package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks lookups for rows that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput wraps validation failures on inbound aggregates.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCounterConflict is returned when a sequence increment lost the
	// race for its counter row. The increment was not applied and no
	// value was issued; callers may retry as a fresh attempt.
	ErrCounterConflict = errors.New("counter conflict")

	// ErrInvalidCounterName rejects empty or malformed counter names.
	ErrInvalidCounterName = errors.New("invalid counter name")
)

// ErrSchemaViolation is returned when a form payload does not conform
// to its embedded JSON schema. Errors contains machine-readable details.
type ErrSchemaViolation struct {
	Errors []string
}

func (e *ErrSchemaViolation) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Errors, "; "))
}
