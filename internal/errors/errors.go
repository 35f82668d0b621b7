package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error produced by the core wraps exactly one of these,
// so callers branch with errors.Is(err, ErrValidation) and friends.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrStorage        = errors.New("storage error")
	ErrDerivation     = errors.New("derivation error")
)

// Error codes
const (
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeEmptyField        = "EMPTY_FIELD"
	CodeInvalidHardwareID = "INVALID_HARDWARE_ID"
	CodeInvalidAccessCode = "INVALID_ACCESS_CODE"
	CodeEmptyPassword     = "EMPTY_PASSWORD"
	CodePasswordMismatch  = "PASSWORD_MISMATCH"
	CodeRecordNotFound    = "RECORD_NOT_FOUND"
	CodeInvalidPassword   = "INVALID_PASSWORD"
	CodeLoginThrottled    = "LOGIN_THROTTLED"
	CodeStorageRead       = "STORAGE_READ_FAILED"
	CodeStorageWrite      = "STORAGE_WRITE_FAILED"
	CodeStoreCorrupt      = "STORE_CORRUPT"
	CodeCredentialMissing = "CREDENTIAL_MISSING"
	CodeDerivationFailed  = "DERIVATION_FAILED"
)

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents a classified error raised by the core
type AppError struct {
	Kind    error        `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
	Err     error        `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		parts := make([]string, 0, len(e.Details))
		for _, d := range e.Details {
			parts = append(parts, d.Field+": "+d.Message)
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error
func (e *AppError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// New creates a new AppError of the given kind
func New(kind error, code, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Validation creates a validation error with optional field details
func Validation(code, message string, details ...FieldError) *AppError {
	return &AppError{
		Kind:    ErrValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Authentication creates an authentication error
func Authentication(code, message string) *AppError {
	return New(ErrAuthentication, code, message)
}

// Storage creates a storage error wrapping the I/O cause
func Storage(code, message string, err error) *AppError {
	return &AppError{
		Kind:    ErrStorage,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Derivation creates a derivation error. These are fatal for the current operation.
func Derivation(message string, err error) *AppError {
	return &AppError{
		Kind:    ErrDerivation,
		Code:    CodeDerivationFailed,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind sentinel carried by err, or nil for unclassified errors
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrAuthentication, ErrStorage, ErrDerivation} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// CodeOf returns the code of the outermost AppError in the chain
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ExitCode maps an error to a process exit status for command line front ends
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case ErrValidation:
		return 2
	case ErrAuthentication:
		return 3
	case ErrStorage:
		return 4
	case ErrDerivation:
		return 5
	default:
		return 1
	}
}
