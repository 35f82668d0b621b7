package errors

// License and credential errors shared across packages. They are values, so
// callers match them with errors.Is either directly or through their kind.
var (
	ErrInvalidHardwareID = Validation(CodeInvalidHardwareID,
		"hardware id must be 16 characters and contain only digits and letters A-F")
	ErrInvalidAccessCode = Validation(CodeInvalidAccessCode,
		"access code must be 8-15 characters of uppercase hexadecimal groups separated by '-'")
	ErrEmptyPassword    = Validation(CodeEmptyPassword, "password must not be empty")
	ErrPasswordMismatch = Validation(CodePasswordMismatch, "new password and confirmation do not match")
	ErrRecordNotFound   = Validation(CodeRecordNotFound, "no customer record at that position")

	ErrInvalidPassword = Authentication(CodeInvalidPassword, "invalid password")
	ErrLoginThrottled  = Authentication(CodeLoginThrottled, "too many login attempts, try again later")
)
