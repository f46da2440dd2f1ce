package partners

import (
	"fmt"
	"strings"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	ErrCodeValidation  = "VALIDATION"
	ErrCodeDuplicate   = "DUPLICATE"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodePersistence = "PERSISTENCE"
	ErrCodeCascade     = "CASCADE"
)

func NewValidationError(msg string) error {
	return &DomainError{Code: ErrCodeValidation, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &DomainError{Code: ErrCodeNotFound, Message: msg}
}

func NewPersistenceError(msg string) error {
	return &DomainError{Code: ErrCodePersistence, Message: msg}
}

// CascadeError reports pairs whose cleared slots could not be persisted after
// an attendance removal. The removal itself has already succeeded; the listed
// pairs need manual reconciliation.
type CascadeError struct {
	Failed []Pair
}

func (e *CascadeError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for _, p := range e.Failed {
		ids = append(ids, p.ID)
	}
	return fmt.Sprintf("%s: failed to persist cleared slots for pairs [%s]", ErrCodeCascade, strings.Join(ids, ", "))
}
