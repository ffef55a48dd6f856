package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Authentication & Authorization Errors (AUTH_*)
	ErrorCodeAuthMissing          ErrorCode = "AUTH_MISSING"
	ErrorCodeAuthInvalid          ErrorCode = "AUTH_INVALID"
	ErrorCodeAuthInsufficientCaps ErrorCode = "AUTH_INSUFFICIENT_CAPABILITIES"

	// Validation Errors (VALIDATION_*)
	ErrorCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationMissingField  ErrorCode = "VALIDATION_MISSING_FIELD"

	// Not Found Errors (*_NOT_FOUND)
	ErrorCodeProfileNotFound    ErrorCode = "PROFILE_NOT_FOUND"
	ErrorCodeSaleNotFound       ErrorCode = "SALE_NOT_FOUND"
	ErrorCodeLineNotFound       ErrorCode = "LEDGER_LINE_NOT_FOUND"
	ErrorCodeAdjustmentNotFound ErrorCode = "ADJUSTMENT_NOT_FOUND"
	ErrorCodeStatementNotFound  ErrorCode = "STATEMENT_NOT_FOUND"
	ErrorCodeRelationNotFound   ErrorCode = "RELATION_NOT_FOUND"

	// Rate Table Errors (RATE_*)
	ErrorCodeRateNotConfigured ErrorCode = "RATE_NOT_CONFIGURED"
	ErrorCodeRateLookupTimeout ErrorCode = "RATE_LOOKUP_TIMEOUT"

	// Adjustment Workflow Errors (ADJ_*)
	ErrorCodeAlreadyDecided        ErrorCode = "ADJ_ALREADY_DECIDED"
	ErrorCodeSelfApprovalForbidden ErrorCode = "ADJ_SELF_APPROVAL_FORBIDDEN"
	ErrorCodeLineSettled           ErrorCode = "ADJ_LINE_SETTLED"

	// Concurrency Errors
	ErrorCodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"

	// Settlement Errors (SETTLEMENT_*)
	ErrorCodeAggregationPartial  ErrorCode = "SETTLEMENT_PARTIAL_FAILURE"
	ErrorCodeStatementNotPending ErrorCode = "SETTLEMENT_STATEMENT_NOT_PENDING"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy of the error with the detail field added. The
// receiver is never mutated: the shared sentinel instances are attached to
// concurrent requests, and a write to a sentinel's map would race.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{
		Err:     e.Err,
		Details: details,
		Code:    e.Code,
		Message: e.Message,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeProfileNotFound ||
		code == ErrorCodeSaleNotFound ||
		code == ErrorCodeLineNotFound ||
		code == ErrorCodeAdjustmentNotFound ||
		code == ErrorCodeStatementNotFound ||
		code == ErrorCodeRelationNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationAmountInvalid ||
		code == ErrorCodeValidationMissingField
}

// IsRetryable reports whether the caller may safely retry the operation.
// Lost unique-constraint races are retryable no-ops: the winner's row is
// already in place and a re-read will observe it.
func IsRetryable(err error) bool {
	return GetErrorCode(err) == ErrorCodeConcurrentModification
}

// Structured error instances
var (
	ErrAuthMissing          = NewDomainError(ErrorCodeAuthMissing, "authentication required")
	ErrAuthInvalid          = NewDomainError(ErrorCodeAuthInvalid, "invalid authentication")
	ErrAuthInsufficientCaps = NewDomainError(ErrorCodeAuthInsufficientCaps, "caller lacks required capability")

	ErrValidationFailed        = NewDomainError(ErrorCodeValidationFailed, "validation failed")
	ErrValidationAmountInvalid = NewDomainError(ErrorCodeValidationAmountInvalid, "invalid amount")
	ErrValidationMissingField  = NewDomainError(ErrorCodeValidationMissingField, "required field missing")

	ErrProfileNotFound    = NewDomainError(ErrorCodeProfileNotFound, "affiliate profile not found")
	ErrSaleNotFound       = NewDomainError(ErrorCodeSaleNotFound, "sale not found")
	ErrLineNotFound       = NewDomainError(ErrorCodeLineNotFound, "ledger line not found")
	ErrAdjustmentNotFound = NewDomainError(ErrorCodeAdjustmentNotFound, "adjustment not found")
	ErrStatementNotFound  = NewDomainError(ErrorCodeStatementNotFound, "settlement statement not found")
	ErrRelationNotFound   = NewDomainError(ErrorCodeRelationNotFound, "affiliate relation not found")

	ErrRateNotConfigured = NewDomainError(ErrorCodeRateNotConfigured, "commission rate not configured for product category")
	ErrRateLookupTimeout = NewDomainError(ErrorCodeRateLookupTimeout, "rate table lookup timed out")

	ErrAlreadyDecided        = NewDomainError(ErrorCodeAlreadyDecided, "adjustment has already been decided")
	ErrSelfApprovalForbidden = NewDomainError(ErrorCodeSelfApprovalForbidden, "requester may not decide their own adjustment")
	ErrLineSettled           = NewDomainError(ErrorCodeLineSettled, "ledger line is settled and frozen for adjustment")

	ErrConcurrentModification = NewDomainError(ErrorCodeConcurrentModification, "concurrent modification detected")

	ErrStatementNotPending = NewDomainError(ErrorCodeStatementNotPending, "statement is not in pending status")

	ErrInternalError = NewDomainError(ErrorCodeInternalError, "internal server error")
	ErrDatabaseError = NewDomainError(ErrorCodeDatabaseError, "database error")
)
