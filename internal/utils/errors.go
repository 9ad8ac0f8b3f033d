package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Custom error types for the application
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation error")
	ErrDuplicate      = errors.New("duplicate resource")
	ErrPersistence    = errors.New("persistence error")
	ErrUnsupported    = errors.New("operation not supported")
)

// MySQL server error numbers
const (
	mysqlDuplicateEntry     uint16 = 1062
	mysqlNoReferencedRow    uint16 = 1452
	mysqlColumnCannotBeNull uint16 = 1048
)

// AppError represents an application error with additional context
type AppError struct {
	Err        error  // The underlying error
	StatusCode int    // HTTP-style status code, used by callers to classify the failure
	Message    string // User-friendly error message
	DevInfo    string // Additional information for developers
	Field      string // Field related to the error (for validation errors)
	Details    map[string]any
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the given error and status code
func New(err error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewValidationError creates a new validation error for a specific field
func NewValidationError(field, message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Field:      field,
	}
}

// NewValidationErrorWithDetails creates a validation error with multiple field details
func NewValidationErrorWithDetails(message string, details map[string]string) *AppError {
	detailsMap := make(map[string]interface{}, len(details))
	for k, v := range details {
		detailsMap[k] = v
	}

	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Details:    detailsMap,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		StatusCode: http.StatusBadRequest,
		Message:    message,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resourceType string, identifier interface{}) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier),
	}
}

// NewInternalServerError creates a new internal server error
func NewInternalServerError(err error) *AppError {
	devInfo := ""
	if err != nil {
		devInfo = err.Error()
	}
	return &AppError{
		Err:        ErrInternalServer,
		StatusCode: http.StatusInternalServerError,
		Message:    "An internal server error occurred",
		DevInfo:    devInfo,
	}
}

// NewDuplicateError creates a new duplicate resource error
func NewDuplicateError(resourceType, field string, value interface{}) *AppError {
	return &AppError{
		Err:        ErrDuplicate,
		StatusCode: http.StatusConflict,
		Message:    fmt.Sprintf("%s with %s '%v' already exists", resourceType, field, value),
		Field:      field,
	}
}

// NewPersistenceError wraps a failed statement. Known constraint violations are
// reported as their specific error instead.
func NewPersistenceError(operation string, err error) *AppError {
	if parsed := parseDriverError(err); parsed != nil {
		return parsed
	}
	devInfo := ""
	if err != nil {
		devInfo = err.Error()
	}
	return &AppError{
		Err:        fmt.Errorf("%w: %s: %w", ErrPersistence, operation, err),
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("Failed to %s", operation),
		DevInfo:    devInfo,
	}
}

// NewUnsupportedError reports an operation the entity does not support
func NewUnsupportedError(resourceType, operation string) *AppError {
	return &AppError{
		Err:        ErrUnsupported,
		StatusCode: http.StatusMethodNotAllowed,
		Message:    fmt.Sprintf("%s does not support %s", resourceType, operation),
	}
}

// ParseError attempts to parse various types of errors into an AppError
func ParseError(err error) *AppError {
	// If it's already an AppError, return it
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	// Check for specific error types
	switch {
	case errors.Is(err, ErrNotFound):
		return NewNotFoundError("Resource", "")
	case errors.Is(err, ErrBadRequest):
		return NewBadRequestError(err.Error())
	case errors.Is(err, ErrValidation):
		return NewValidationError("", err.Error())
	case errors.Is(err, ErrDuplicate):
		return NewDuplicateError("Resource", "", "")
	case errors.Is(err, ErrUnsupported):
		return New(ErrUnsupported, http.StatusMethodNotAllowed, err.Error())
	}

	if parsed := parseDriverError(err); parsed != nil {
		return parsed
	}

	// Check for general database-specific error patterns
	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "not found") || strings.Contains(errMsg, "no rows"):
		return &AppError{
			Err:        ErrNotFound,
			StatusCode: http.StatusNotFound,
			Message:    "The requested resource could not be found",
			DevInfo:    err.Error(),
		}
	}

	// Default to internal server error
	return NewInternalServerError(err)
}

// parseDriverError recognises constraint violations reported by the supported
// drivers. It returns nil for anything else.
func parseDriverError(err error) *AppError {
	if err == nil {
		return nil
	}

	// PostgreSQL
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			// Try to extract the constraint name for more specific error messages
			constraint := pqErr.Constraint
			field := ""
			if strings.Contains(constraint, "idx_") {
				parts := strings.Split(constraint, "idx_")
				if len(parts) > 1 {
					field = parts[1]
				}
			}
			return duplicateFromDriver(pqErr, field)
		case "23503": // foreign_key_violation
			return foreignKeyFromDriver(pqErr)
		case "23502": // not_null_violation
			return notNullFromDriver(pqErr, pqErr.Column)
		}
		return nil
	}

	// MySQL
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return duplicateFromDriver(myErr, "")
		case mysqlNoReferencedRow:
			return foreignKeyFromDriver(myErr)
		case mysqlColumnCannotBeNull:
			return notNullFromDriver(myErr, "")
		}
		return nil
	}

	// SQLite reports constraint failures only through the message text
	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "unique constraint failed"):
		field := ""
		if idx := strings.LastIndex(errMsg, "."); idx >= 0 {
			field = strings.TrimSpace(strings.TrimRight(errMsg[idx+1:], ")"))
		}
		return duplicateFromDriver(err, field)
	case strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint"):
		return duplicateFromDriver(err, "")
	case strings.Contains(errMsg, "not null constraint failed"):
		return notNullFromDriver(err, "")
	}
	return nil
}

func duplicateFromDriver(err error, field string) *AppError {
	return &AppError{
		Err:        ErrDuplicate,
		StatusCode: http.StatusConflict,
		Message:    "A resource with the same unique identifier already exists",
		DevInfo:    err.Error(),
		Field:      field,
	}
}

func foreignKeyFromDriver(err error) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		StatusCode: http.StatusBadRequest,
		Message:    "This operation violates a foreign key constraint",
		DevInfo:    err.Error(),
	}
}

func notNullFromDriver(err error, field string) *AppError {
	message := "A required field cannot be empty"
	if field != "" {
		message = fmt.Sprintf("The %s field cannot be empty", field)
	}
	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		DevInfo:    err.Error(),
		Field:      field,
	}
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if an error is a duplicate resource error
func IsDuplicateError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode == http.StatusConflict
	}
	return errors.Is(err, ErrDuplicate)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return errors.Is(appErr.Err, ErrValidation)
	}
	return errors.Is(err, ErrValidation)
}

// IsPersistenceError checks if an error is an unclassified statement failure
func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsUnsupportedError checks if an error reports an unsupported operation
func IsUnsupportedError(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// StatusCode returns the HTTP-style status code for an error
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
