// Package errors provides error types and handling for gcpsetup.
// It includes custom error types with error codes for the provisioning
// and teardown lifecycle.
package errors

import (
	"fmt"
)

// AppError represents an application error with an associated error code.
type AppError struct {
	// Code is an error code string for programmatic handling
	Code string
	// Message is a user-friendly error message
	Message string
	// Cause is the underlying error (for error wrapping)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is to work with AppError.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code != "" && e.Code == t.Code
	}
	return false
}

// Predefined error codes.
const (
	// Fatal precondition errors: the invoking command exits immediately.
	ErrCodeCredentialNotFound = "CREDENTIAL_NOT_FOUND"
	ErrCodeCredentialInvalid  = "CREDENTIAL_INVALID"
	ErrCodeProjectNotFound    = "PROJECT_NOT_FOUND"

	// Lifecycle errors: converted into reported outcomes at the
	// operation boundary, never unhandled crashes.
	ErrCodeBucketCreateFailed = "BUCKET_CREATE_FAILED"
	ErrCodeDeployFailed       = "DEPLOY_FAILED"
	ErrCodeDeleteFailed       = "DELETE_FAILED"
	ErrCodeLedgerCorrupt      = "LEDGER_CORRUPT"
)

// New creates a new AppError with the given code, message, and cause.
func New(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Convenience constructors for common errors

// ErrCredentialNotFound indicates the service-account key file is missing.
func ErrCredentialNotFound(path string, cause error) *AppError {
	return New(ErrCodeCredentialNotFound, fmt.Sprintf("service account key not found: %s", path), cause)
}

// ErrCredentialInvalid indicates the key file exists but cannot be parsed.
func ErrCredentialInvalid(path string, cause error) *AppError {
	return New(ErrCodeCredentialInvalid, fmt.Sprintf("service account key is not a valid credential: %s", path), cause)
}

// ErrProjectNotFound indicates the target project does not exist or is not
// accessible with the loaded credentials.
func ErrProjectNotFound(projectID string, cause error) *AppError {
	return New(ErrCodeProjectNotFound, fmt.Sprintf("project not found or not accessible: %s", projectID), cause)
}

// ErrBucketCreateFailed indicates the demo bucket could not be created.
func ErrBucketCreateFailed(bucket string, cause error) *AppError {
	return New(ErrCodeBucketCreateFailed, fmt.Sprintf("failed to create bucket %s", bucket), cause)
}

// ErrDeployFailed indicates the build-and-deploy step did not end with a
// resolvable service URL.
func ErrDeployFailed(service string, cause error) *AppError {
	return New(ErrCodeDeployFailed, fmt.Sprintf("failed to deploy service %s", service), cause)
}

// ErrDeleteFailed indicates a single resource could not be deleted during
// teardown.
func ErrDeleteFailed(resource string, cause error) *AppError {
	return New(ErrCodeDeleteFailed, fmt.Sprintf("failed to delete %s", resource), cause)
}

// ErrLedgerCorrupt indicates the ledger file exists but cannot be parsed.
func ErrLedgerCorrupt(path string, cause error) *AppError {
	return New(ErrCodeLedgerCorrupt, fmt.Sprintf("resource ledger is unreadable: %s", path), cause)
}
