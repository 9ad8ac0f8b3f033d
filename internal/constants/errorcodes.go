// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines the machine-readable error codes written by the
// command line tool and the process exit codes they map to.
package constants

// Machine-readable error codes included in JSON error output.
const (
	// CodeNotFound indicates that the requested record does not exist.
	CodeNotFound = "not_found"

	// CodeBadRequest indicates malformed input.
	CodeBadRequest = "bad_request"

	// CodeValidationError indicates that field validation failed.
	CodeValidationError = "validation_error"

	// CodeDuplicateResource indicates that a unique key is already taken.
	CodeDuplicateResource = "duplicate_resource"

	// CodeUnsupported indicates that the entity does not support the operation.
	CodeUnsupported = "unsupported_operation"

	// CodePersistenceError indicates that a statement failed to execute.
	CodePersistenceError = "persistence_error"

	// CodeInternalError indicates an unexpected failure.
	CodeInternalError = "internal_error"
)

// Process exit codes returned by the command line tool.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitNotFound    = 3
	ExitInvalidData = 4
)

// MsgResourceNotFound is the default message for an absent record.
const MsgResourceNotFound = "The requested resource could not be found"
