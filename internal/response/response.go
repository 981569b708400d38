package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"collab-board/internal/domain"
)

// Error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// SuccessResponse wraps successful payloads
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse wraps error payloads
type ErrorResponse struct {
	Error interface{} `json:"error"`
}

// ErrorBody is the error object inside ErrorResponse
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AppError is a service-layer error carrying an error code
type AppError struct {
	Code    string
	Message string
	Details string
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Code + ": " + e.Message + " (" + e.Details + ")"
	}
	return e.Code + ": " + e.Message
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// NewNotFoundError creates a NOT_FOUND AppError
func NewNotFoundError(message, details string) *AppError {
	return NewAppError(ErrCodeNotFound, message, details)
}

// NewForbiddenError creates a FORBIDDEN AppError
func NewForbiddenError(message, details string) *AppError {
	return NewAppError(ErrCodeForbidden, message, details)
}

// NewValidationError creates a VALIDATION_ERROR AppError
func NewValidationError(message, details string) *AppError {
	return NewAppError(ErrCodeValidation, message, details)
}

// FromDomain converts a domain sentinel error into an AppError. Errors that
// are already AppErrors pass through; anything else becomes INTERNAL_ERROR.
func FromDomain(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(message, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		return NewForbiddenError(message, err.Error())
	case errors.Is(err, domain.ErrValidation):
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return NewValidationError(verr.Error(), message)
		}
		return NewValidationError(message, err.Error())
	}
	return NewAppError(ErrCodeInternal, message, err.Error())
}

// SendSuccess writes a success payload
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{Data: data})
}

// SendError writes an error payload
func SendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}
