package errors

import "fmt"

// Error codes
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodePrecondition    = "PRECONDITION_FAILED"
	ErrCodeNoEligibleWords = "NO_ELIGIBLE_WORDS"
	ErrCodeImportInvalid   = "IMPORT_INVALID"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewPreconditionError creates a new PRECONDITION_FAILED error. Used when a
// session command arrives in a state that cannot accept it (finished session,
// duplicate in-flight rating). Nothing is mutated.
func NewPreconditionError(message string) *AppError {
	return &AppError{
		Code:    ErrCodePrecondition,
		Message: message,
		Status:  409,
	}
}

// NewNoEligibleWordsError is returned when session composition selects
// nothing. No session is started in that case.
func NewNoEligibleWordsError() *AppError {
	return &AppError{
		Code:    ErrCodeNoEligibleWords,
		Message: "no eligible words for review",
		Status:  409,
	}
}

// NewImportError creates a new IMPORT_INVALID error carrying the specific
// reason the snapshot was rejected.
func NewImportError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeImportInvalid,
		Message: fmt.Sprintf("import rejected: %s", reason),
		Status:  400,
	}
}
