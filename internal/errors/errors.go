package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound               = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists          = new(ErrCodeAlreadyExists, "resource already exists")
	ErrDuplicateInvoiceNumber = new(ErrCodeDuplicateInvoiceNumber, "invoice number already in use")
	ErrValidation             = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation       = new(ErrCodeInvalidOperation, "invalid operation")
	ErrHTTPClient             = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase               = new(ErrCodeDatabase, "database error")
	ErrExport                 = new(ErrCodeExport, "export failed")
	ErrQuotaExceeded          = new(ErrCodeQuotaExceeded, "local storage quota exceeded")
	ErrSystem                 = new(ErrCodeSystemError, "system error")
	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrHTTPClient:             http.StatusInternalServerError,
		ErrDatabase:               http.StatusInternalServerError,
		ErrNotFound:               http.StatusNotFound,
		ErrAlreadyExists:          http.StatusConflict,
		ErrDuplicateInvoiceNumber: http.StatusConflict,
		ErrValidation:             http.StatusBadRequest,
		ErrInvalidOperation:       http.StatusBadRequest,
		ErrExport:                 http.StatusInternalServerError,
		ErrQuotaExceeded:          http.StatusInsufficientStorage,
		ErrSystem:                 http.StatusInternalServerError,
	}
)

const (
	ErrCodeHTTPClient             = "http_client_error"
	ErrCodeSystemError            = "system_error"
	ErrCodeNotFound               = "not_found"
	ErrCodeAlreadyExists          = "already_exists"
	ErrCodeDuplicateInvoiceNumber = "duplicate_invoice_number"
	ErrCodeValidation             = "validation_error"
	ErrCodeInvalidOperation       = "invalid_operation"
	ErrCodeDatabase               = "database_error"
	ErrCodeExport                 = "export_failure"
	ErrCodeQuotaExceeded          = "quota_exceeded"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsDuplicateInvoiceNumber reports whether the store rejected an invoice
// because its number is already taken.
func IsDuplicateInvoiceNumber(err error) bool {
	return errors.Is(err, ErrDuplicateInvoiceNumber)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsDatabase checks if an error is a storage/transport failure
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsExport checks if an error is a rasterization or encoding failure
func IsExport(err error) bool {
	return errors.Is(err, ErrExport)
}

// IsQuotaExceeded checks if a local cache write ran out of space
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// DisplayHint returns the first non-empty user facing hint attached to err.
// GetAllHints walks the chain post-order, so the innermost hint wins.
func DisplayHint(err error) string {
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return ""
}
