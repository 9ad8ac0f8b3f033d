package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/featherpanel/panelstore/internal/constants"
)

// Response represents a standardized command response.
type Response struct {
	Success bool        `json:"success"`         // Whether the command was successful
	Data    interface{} `json:"data,omitempty"`  // The response data (omitted for error responses)
	Error   *ErrorInfo  `json:"error,omitempty"` // Error information (omitted for successful responses)
	Meta    *MetaInfo   `json:"meta,omitempty"`  // Metadata such as pagination information
}

// ErrorInfo represents error information in the response.
type ErrorInfo struct {
	Code    string                 `json:"code"`              // A machine-readable error code
	Message string                 `json:"message"`           // A human-readable error message
	Details map[string]interface{} `json:"details,omitempty"` // Additional details about the error (e.g., validation errors)
}

// MetaInfo represents pagination metadata in the response.
type MetaInfo struct {
	Limit      int   `json:"limit,omitempty"`  // The requested page size
	Offset     int   `json:"offset,omitempty"` // The number of skipped records
	TotalItems int64 `json:"total_items"`      // The total number of matching records
}

// WriteJSON writes a successful response carrying data.
//
// Parameters:
//   - w: The destination writer
//   - data: The data to include in the response
//
// Returns:
//   - An error if encoding or writing fails
func WriteJSON(w io.Writer, data interface{}) error {
	return writeResponse(w, Response{Success: true, Data: data})
}

// WritePaginated writes a successful response with pagination metadata.
//
// Parameters:
//   - w: The destination writer
//   - data: The page of records
//   - limit: The requested page size
//   - offset: The number of skipped records
//   - totalItems: The total number of matching records
//
// Returns:
//   - An error if encoding or writing fails
func WritePaginated(w io.Writer, data interface{}, limit, offset int, totalItems int64) error {
	return writeResponse(w, Response{
		Success: true,
		Data:    data,
		Meta: &MetaInfo{
			Limit:      limit,
			Offset:     offset,
			TotalItems: totalItems,
		},
	})
}

// WriteError writes an error response derived from err.
//
// Parameters:
//   - w: The destination writer
//   - err: The error to report; it is parsed into an AppError first
//
// Returns:
//   - An error if encoding or writing fails
func WriteError(w io.Writer, err error) error {
	appErr := ParseError(err)

	details := appErr.Details
	if details == nil && appErr.Field != "" {
		details = map[string]interface{}{appErr.Field: appErr.Message}
	}

	return writeResponse(w, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    ErrorCode(err),
			Message: appErr.Message,
			Details: details,
		},
	})
}

// ErrorCode returns the machine-readable code for an error.
func ErrorCode(err error) string {
	switch {
	case IsNotFoundError(err):
		return constants.CodeNotFound
	case IsValidationError(err):
		return constants.CodeValidationError
	case IsDuplicateError(err):
		return constants.CodeDuplicateResource
	case IsUnsupportedError(err):
		return constants.CodeUnsupported
	case IsPersistenceError(err):
		return constants.CodePersistenceError
	case errors.Is(err, ErrBadRequest):
		return constants.CodeBadRequest
	}
	return constants.CodeInternalError
}

// ExitCode maps an error to the process exit code of the command line tool.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return constants.ExitOK
	case IsNotFoundError(err):
		return constants.ExitNotFound
	case IsValidationError(err), IsDuplicateError(err):
		return constants.ExitInvalidData
	case errors.Is(err, ErrBadRequest):
		return constants.ExitUsage
	}
	return constants.ExitFailure
}

func writeResponse(w io.Writer, response Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(response); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
