// Package apperrors defines the typed error taxonomy surfaced to API
// clients. Every business-rule rejection carries a stable string code;
// storage-level failures are wrapped so raw driver errors never reach
// a response body.
package apperrors

import "net/http"

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but
// wrapping an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization.
var (
	ErrUnauthorized            = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials      = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrAccessDenied            = &AppError{Code: "ACCESS_DENIED", Message: "You do not have access to this resource", StatusCode: http.StatusForbidden}
	ErrInsufficientPermissions = &AppError{Code: "INSUFFICIENT_PERMISSIONS", Message: "Admin privileges required", StatusCode: http.StatusForbidden}
	ErrKYCRequired             = &AppError{Code: "KYC_REQUIRED", Message: "KYC verification is required before applying", StatusCode: http.StatusForbidden}
	ErrEmailVerification       = &AppError{Code: "EMAIL_VERIFICATION_REQUIRED", Message: "Email verification is required before applying", StatusCode: http.StatusForbidden}
)

// Not-found.
var (
	ErrUserNotFound        = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrIPONotFound         = &AppError{Code: "IPO_NOT_FOUND", Message: "IPO not found", StatusCode: http.StatusNotFound}
	ErrApplicationNotFound = &AppError{Code: "APPLICATION_NOT_FOUND", Message: "Application not found", StatusCode: http.StatusNotFound}
)

// State-conflict.
var (
	ErrIPONotOpen     = &AppError{Code: "IPO_NOT_OPEN", Message: "IPO is not open for applications", StatusCode: http.StatusBadRequest}
	ErrAlreadyApplied = &AppError{Code: "ALREADY_APPLIED", Message: "You have already applied for this IPO", StatusCode: http.StatusBadRequest}
	ErrCannotUpdate   = &AppError{Code: "CANNOT_UPDATE", Message: "Application can only be updated while pending", StatusCode: http.StatusBadRequest}
	ErrCannotCancel   = &AppError{Code: "CANNOT_CANCEL", Message: "Allocated or refunded applications cannot be cancelled", StatusCode: http.StatusBadRequest}
)

// Validation.
var (
	ErrValidation        = &AppError{Code: "VALIDATION_ERROR", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInvalidPriceRange = &AppError{Code: "INVALID_PRICE_RANGE", Message: "Price must be within the IPO price band", StatusCode: http.StatusBadRequest}
	ErrInvalidQuantity   = &AppError{Code: "INVALID_QUANTITY", Message: "Quantity must be a positive multiple of the lot size", StatusCode: http.StatusBadRequest}
)

// Integrity & internal.
var (
	ErrDuplicateField = &AppError{Code: "DUPLICATE_FIELD", Message: "A record with this value already exists", StatusCode: http.StatusConflict}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)
