package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "licmgr/internal/errors"
	"licmgr/internal/license"
)

// RecordValidator checks operator input and customer records using struct tags
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator creates a validator with the license specific tags registered
func NewRecordValidator() *RecordValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("hardwareid", isHardwareID)
	v.RegisterValidation("accesscode", isAccessCode)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RecordValidator{validate: v}
}

// Struct validates s. Empty required fields yield an EMPTY_FIELD error listing
// every such field; a malformed hardware id or access code yields the
// corresponding shared error.
func (rv *RecordValidator) Struct(s any) error {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation(apperrors.CodeValidationFailed, err.Error())
	}

	var empty, other []apperrors.FieldError
	var firstTag string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			empty = append(empty, apperrors.FieldError{Field: fe.Field(), Message: "is required"})
			continue
		}
		if firstTag == "" {
			firstTag = fe.Tag()
		}
		other = append(other, apperrors.FieldError{Field: fe.Field(), Message: formatFieldError(fe)})
	}

	switch {
	case len(empty) > 0:
		return apperrors.Validation(apperrors.CodeEmptyField, "required fields are empty", append(empty, other...)...)
	case firstTag == "hardwareid":
		return apperrors.ErrInvalidHardwareID
	case firstTag == "accesscode":
		return apperrors.ErrInvalidAccessCode
	default:
		return apperrors.Validation(apperrors.CodeValidationFailed, "validation failed", other...)
	}
}

func isHardwareID(fl validator.FieldLevel) bool {
	return license.ValidateHardwareID(fl.Field().String())
}

func isAccessCode(fl validator.FieldLevel) bool {
	return license.ValidateAccessCode(fl.Field().String())
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "hardwareid":
		return "must be 16 hexadecimal characters"
	case "accesscode":
		return "is not a well-formed access code"
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return "failed " + fe.Tag()
}
