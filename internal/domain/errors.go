package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed or missing input. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when a booking or flight does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when the requested lifecycle step is not
	// allowed from the booking's current status. The booking is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrLockBusy is returned when the resource lock could not be acquired.
	// Callers may retry with backoff.
	ErrLockBusy = errors.New("resource is busy")

	// ErrStore wraps failures of the underlying persistence layer.
	ErrStore = errors.New("store error")
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

func (v ValidationError) Unwrap() error { return ErrValidation }

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

func (v ValidationErrors) Unwrap() error { return ErrValidation }

// NewValidationError builds a single-field validation failure.
func NewValidationError(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

type TransitionError struct {
	From       BookingStatus
	Transition Transition
	Reason     string
}

func (e *TransitionError) Error() string {
	return e.Reason
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// StoreError wraps err so that errors.Is(err, ErrStore) holds while keeping the cause.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
