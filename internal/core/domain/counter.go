package domain

import (
	"regexp"
	"time"
)

var counterNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)

// Counter is a named, durable integer cursor. The stored value is the
// last issued one; it only ever grows, and only the sequence store
// mutates it.
type Counter struct {
	Name      string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidateCounterName(name string) error {
	if name == "" || !counterNamePattern.MatchString(name) {
		return ErrInvalidCounterName
	}
	return nil
}
