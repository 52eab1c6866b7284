package contract

import (
	"errors"
	"fmt"
)

// StoreErrorCode categorizes record store failures.
type StoreErrorCode string

const (
	// ErrCodeNotFound indicates no row matched. This is absence, not an outage.
	ErrCodeNotFound StoreErrorCode = "NOT_FOUND"

	// ErrCodeConflict indicates a uniqueness constraint rejected a write.
	ErrCodeConflict StoreErrorCode = "CONFLICT"

	// ErrCodeInvalid indicates the request itself was malformed (unknown table or column).
	ErrCodeInvalid StoreErrorCode = "INVALID"

	// ErrCodeUnavailable covers connection, driver and server failures.
	ErrCodeUnavailable StoreErrorCode = "UNAVAILABLE"
)

// StoreError is returned by every RecordStore implementation.
type StoreError struct {
	Code  StoreErrorCode
	Table string
	Op    string
	Err   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Table, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Table, e.Code)
}

// Unwrap returns the underlying driver error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError.
func NewStoreError(code StoreErrorCode, op, table string, err error) *StoreError {
	return &StoreError{Code: code, Op: op, Table: table, Err: err}
}

// IsNotFound returns true if err is a not-found StoreError.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsConflict returns true if err is a uniqueness conflict StoreError.
func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

func hasCode(err error, code StoreErrorCode) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
