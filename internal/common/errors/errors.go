// Package errors provides standardized error handling for the gateway pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Startup-time catalog/config errors.
	ErrCodeCatalogInvalid ErrorCode = "CATALOG_INVALID"

	// Classification errors.
	ErrCodeClassifierUnavailable ErrorCode = "CLASSIFIER_UNAVAILABLE"
	ErrCodeClassificationFailed  ErrorCode = "CLASSIFICATION_FAILED"

	// Slot validation errors.
	ErrCodeMissingSlot      ErrorCode = "MISSING_SLOT"
	ErrCodeSlotTypeMismatch ErrorCode = "SLOT_TYPE_MISMATCH"

	// Dispatch errors.
	ErrCodeNoHandlerRegistered ErrorCode = "NO_HANDLER_REGISTERED"

	// Backend errors.
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBackendError       ErrorCode = "BACKEND_ERROR"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Slot returns the offending slot name for validation errors, if any.
func (e *StandardError) Slot() string {
	if e.Metadata == nil {
		return ""
	}
	if s, ok := e.Metadata["slot"].(string); ok {
		return s
	}
	return ""
}

// ==========================
// 2. Error Constructors
// ==========================

// NewCatalogInvalidError creates a fatal startup-time catalog error.
func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Intent catalog configuration is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassifierUnavailableError creates a retryable understanding-service infra error.
func NewClassifierUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassifierUnavailable,
		Message:   "Language understanding service is unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationFailedError creates a non-retryable malformed-classification error.
func NewClassificationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Understanding service returned an unusable classification",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingSlotError creates a non-retryable validation error naming the slot.
func NewMissingSlotError(intent, slot string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingSlot,
		Message:   fmt.Sprintf("Required slot '%s' is missing", slot),
		Details:   fmt.Sprintf("intent: %s, slot: %s", intent, slot),
		Retryable: false,
		Metadata:  map[string]interface{}{"intent": intent, "slot": slot},
		Timestamp: time.Now().UTC(),
	}
}

// NewSlotTypeMismatchError creates a non-retryable coercion error naming the slot.
func NewSlotTypeMismatchError(intent, slot, expectedType, value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSlotTypeMismatch,
		Message:   fmt.Sprintf("Slot '%s' must be of type %s", slot, expectedType),
		Details:   fmt.Sprintf("intent: %s, slot: %s, expected: %s, got: %q", intent, slot, expectedType, value),
		Retryable: false,
		Metadata:  map[string]interface{}{"intent": intent, "slot": slot, "expectedType": expectedType},
		Timestamp: time.Now().UTC(),
	}
}

// NewNoHandlerRegisteredError creates a non-retryable registry consistency error.
func NewNoHandlerRegisteredError(intent string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoHandlerRegistered,
		Message:   "No handler registered for intent",
		Details:   fmt.Sprintf("intent: %s", intent),
		Retryable: false,
		Metadata:  map[string]interface{}{"intent": intent},
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendUnavailableError creates a retryable backend connectivity error.
func NewBackendUnavailableError(intent string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnavailable,
		Message:   "Backend data system is unreachable",
		Details:   fmt.Sprintf("intent: %s, error: %s", intent, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"intent": intent},
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendError forwards a backend-specific failure, tagged with the intent.
func NewBackendError(intent string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendError,
		Message:   "Backend request failed",
		Details:   fmt.Sprintf("intent: %s, error: %s", intent, err.Error()),
		Retryable: false,
		Metadata:  map[string]interface{}{"intent": intent},
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Error Inspection
// ==========================

// AsStandard extracts a StandardError from err, normalizing unknown errors
// to INTERNAL_ERROR so callers always have a code to act on.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// CodeOf returns the error code of err, or INTERNAL_ERROR for unknown errors.
func CodeOf(err error) ErrorCode {
	return AsStandard(err).Code
}

// IsValidation reports whether err is a user-input slot validation failure.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case ErrCodeMissingSlot, ErrCodeSlotTypeMismatch:
		return true
	}
	return false
}

// HTTPStatus maps an error code to the HTTP status the gateway responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeMissingSlot, ErrCodeSlotTypeMismatch:
		return http.StatusUnprocessableEntity
	case ErrCodeClassifierUnavailable, ErrCodeBackendUnavailable:
		return http.StatusBadGateway
	case ErrCodeNoHandlerRegistered:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
