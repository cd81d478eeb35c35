package types

import (
	"errors"
	"fmt"
)

// CustomError carries an HTTP status and error type to the Fiber error handler
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Domain errors. Handlers map these to fixed user-facing messages.
var (
	ErrPreferenceNotConfigured = errors.New("preferences not set")
	ErrInvalidBudgetBand       = errors.New("invalid budget band")
	ErrInvalidStatus           = errors.New("invalid listing status")
	ErrInvalidTransition       = errors.New("invalid listing status transition")
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidRating           = errors.New("rating must be between 1 and 5")
	ErrInvalidInput            = errors.New("invalid input")
	ErrConflict                = errors.New("already exists")
)

// StoreError wraps a persistence failure. The wrapped error is for logs only.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store wraps err as a StoreError unless it is nil or already a domain error.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) || isDomain(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err is (or wraps) a persistence failure
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func isDomain(err error) bool {
	for _, d := range []error{
		ErrPreferenceNotConfigured,
		ErrInvalidBudgetBand,
		ErrInvalidStatus,
		ErrInvalidTransition,
		ErrNotFound,
		ErrForbidden,
		ErrInvalidRating,
		ErrInvalidInput,
		ErrConflict,
	} {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}
