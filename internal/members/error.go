package members

import "fmt"

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	ErrCodeValidation  = "VALIDATION"
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

func NewCascadeError(msg string) error {
	return &DomainError{Code: ErrCodeCascade, Message: msg}
}
