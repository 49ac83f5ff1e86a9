package dto

import (
	"net/http"
	"strings"
)

// Error codes shared between the domain layer and the HTTP surface.
// Domain errors carry these codes verbatim; the tables below decide
// the HTTP status they map to.

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeInvalidAmount is used when a monetary amount is malformed
	ErrCodeInvalidAmount = "INVALID_AMOUNT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConcurrentModification is used when optimistic locking fails
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	// ErrCodeDuplicateRequest is used when an idempotency key was already seen
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "INVALID_STATE"
	// ErrCodeDocumentNotOpen is used when allocating against a closed document
	ErrCodeDocumentNotOpen = "DOCUMENT_NOT_OPEN"
	// ErrCodeAllocationExceedsBalance is used when an allocation overshoots a balance
	ErrCodeAllocationExceedsBalance = "ALLOCATION_EXCEEDS_BALANCE"
	// ErrCodeAllocationExceedsPayment is used when allocations overshoot the payment
	ErrCodeAllocationExceedsPayment = "ALLOCATION_EXCEEDS_PAYMENT"
	// ErrCodePaymentAlreadyDeposited is used when a payment already sits in a deposit
	ErrCodePaymentAlreadyDeposited = "PAYMENT_ALREADY_DEPOSITED"
	// ErrCodePaymentNotEligible is used when a payment cannot join a deposit
	ErrCodePaymentNotEligible = "PAYMENT_NOT_ELIGIBLE"
	// ErrCodeDepositTotalMismatch is used when the client total disagrees with members
	ErrCodeDepositTotalMismatch = "DEPOSIT_TOTAL_MISMATCH"
	// ErrCodeCurrencyMismatch is used when amounts carry different currencies
	ErrCodeCurrencyMismatch = "CURRENCY_MISMATCH"
	// ErrCodeItemInUse is used when deleting an item that is referenced elsewhere
	ErrCodeItemInUse = "ITEM_IN_USE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeInvalidAmount: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeAlreadyExists:          http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,
	ErrCodeDuplicateRequest:       http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:             http.StatusUnprocessableEntity,
	ErrCodeDocumentNotOpen:          http.StatusUnprocessableEntity,
	ErrCodeAllocationExceedsBalance: http.StatusUnprocessableEntity,
	ErrCodeAllocationExceedsPayment: http.StatusUnprocessableEntity,
	ErrCodePaymentAlreadyDeposited:  http.StatusUnprocessableEntity,
	ErrCodePaymentNotEligible:       http.StatusUnprocessableEntity,
	ErrCodeDepositTotalMismatch:     http.StatusUnprocessableEntity,
	ErrCodeCurrencyMismatch:         http.StatusUnprocessableEntity,
	ErrCodeItemInUse:                http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Field-level codes from value object validation (INVALID_CODE,
// INVALID_QUANTITY, INVALID_DUE_DATE and so on) all map to 400.
// Anything else is treated as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
