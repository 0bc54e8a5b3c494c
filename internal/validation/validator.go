// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Field names in errors are the
// JSON names of the struct fields so they can be reported back to clients.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError is a single field validation failure.
type ValidationError struct {
	field   string
	tag     string
	param   string
	message string
}

// NewValidationError creates a ValidationError for failures detected outside
// the validator, such as an undecodable body.
func NewValidationError(field, tag, message string) ValidationError {
	return ValidationError{field: field, tag: tag, message: message}
}

// Field returns the JSON name of the field that failed.
func (e ValidationError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e ValidationError) Tag() string { return e.tag }

// Param returns the tag parameter (e.g. "100" for "max=100").
func (e ValidationError) Param() string { return e.param }

// Type returns a short machine-readable error category.
func (e ValidationError) Type() string {
	switch e.tag {
	case "required":
		return "missing"
	case "json":
		return "json_invalid"
	default:
		return "value_error"
	}
}

// Error returns a human-readable message.
func (e ValidationError) Error() string { return e.message }

// RequestValidationError is a collection of field failures.
type RequestValidationError struct {
	errors []ValidationError
}

// NewRequestValidationError wraps field failures.
func NewRequestValidationError(errs ...ValidationError) *RequestValidationError {
	return &RequestValidationError{errors: errs}
}

// Errors returns the individual field failures.
func (ve *RequestValidationError) Errors() []ValidationError {
	out := make([]ValidationError, len(ve.errors))
	copy(out, ve.errors)
	return out
}

// Error joins the individual messages.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		// Registration only fails for an empty tag or nil func.
		_ = validate.RegisterValidation("notblank", notBlank)
	})
	return validate
}

// ValidateStruct validates s. It returns nil on success.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return NewRequestValidationError(ValidationError{
			field:   "unknown",
			tag:     "unknown",
			message: err.Error(),
		})
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			message: translateError(fieldErr),
		}
	}
	return NewRequestValidationError(fieldErrors...)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"notblank": "%s must not be blank",
}

// errorMessageWithParam maps validation tags to templates that include the param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"max":   "%s must be at most %s characters",
	"min":   "%s must be at least %s characters",
}

func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field())
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
