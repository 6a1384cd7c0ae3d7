package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound        = errors.New("resource not found")
	ErrNoDataset       = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrFilterNotFound  = fmt.Errorf("%w: filter", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)
	ErrUnknownOperator = errors.New("unknown filter operator")
)

// NewFilterNotFoundError reports a rule id absent from the filter set
func NewFilterNotFoundError(id RuleID) error {
	return fmt.Errorf("%w with id %s", ErrFilterNotFound, id)
}

// NewColumnNotFoundError reports a column name absent from the header
func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, name)
}

// IsNotFoundError checks for any not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
