// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Ingestion errors
	ErrFetch                  = errors.New("page fetch failed")
	ErrParse                  = errors.New("page parse failed")
	ErrReconciliationConflict = errors.New("reconciliation conflict")
	ErrDivideByZero           = errors.New("aggregation divide by zero")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "ledger", "curriculum", "portal"
	Op      string // Operation that failed, e.g., "Fetch", "Parse"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Ledger domain errors
var (
	ErrLedgerNotFound  = NewDomainError("ledger", "Find", ErrNotFound, "academic ledger not found")
	ErrInvalidMSSV     = NewDomainError("ledger", "Validate", ErrInvalidID, "invalid student number")
	ErrSyncInProgress  = NewDomainError("ledger", "Sync", ErrConcurrentModification, "another sync is running for this student")
	ErrMissingSession  = NewDomainError("ledger", "Sync", ErrInvalidInput, "session cookie is required")
	ErrTranscriptEmpty = NewDomainError("ledger", "ParseTranscript", ErrParse, "transcript contains no course table")
)

// Curriculum domain errors
var (
	ErrCurriculumNotFound = NewDomainError("curriculum", "Find", ErrNotFound, "curriculum not found")
	ErrInvalidMajor       = NewDomainError("curriculum", "Validate", ErrInvalidInput, "major is required")
	ErrInvalidSubject     = NewDomainError("curriculum", "Validate", ErrInvalidInput, "invalid curriculum subject")
)

// Profile errors
var (
	ErrProfileNotFound = NewDomainError("profile", "Find", ErrNotFound, "student profile not found")
)

// Portal errors
var (
	ErrPortalUnavailable = NewDomainError("portal", "Fetch", ErrServiceUnavailable, "student portal is unavailable")
	ErrPortalTimeout     = NewDomainError("portal", "Fetch", ErrTimeout, "student portal request timeout")
	ErrPortalNotLoggedIn = NewDomainError("portal", "Fetch", ErrFetch, "portal page is not the expected transcript, session may be expired")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsFetch checks if the error came from fetching an external page.
func IsFetch(err error) bool {
	return errors.Is(err, ErrFetch)
}

// IsParse checks if the error came from parsing a page.
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrFetch)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
