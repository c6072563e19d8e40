package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrEmptyDedupKey        = NewDomainError(ErrCodeValidation, "dedup key must not be empty")
	ErrInvalidAlertType     = NewDomainError(ErrCodeValidation, "invalid alert type")
	ErrInvalidAlertSeverity = NewDomainError(ErrCodeValidation, "invalid alert severity")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrAgentNotFound    = NewDomainError(ErrCodeNotFound, "agent not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrAlertNotFound    = NewDomainError(ErrCodeNotFound, "alert not found")
)

// Already exists errors
var (
	ErrAgentAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "agent already exists")
)

// Generation errors. Both tiers exhausting is a distinct terminal outcome:
// callers see a single generic failure, partial state is never persisted.
var (
	ErrGenerationFailed = NewDomainError(ErrCodeUnavailable, "all generation tiers failed")
)
