package yext

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports one structurally or semantically invalid field.
// It surfaces to partners as a REJECTED issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// NewValidationError constructs a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report field paths using json tag names so wire-facing issues match
	// what the partner actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validator exposes the shared instance so the HTTP layer can install it as
// the echo binder validator.
func Validator() *validator.Validate {
	return validate
}

// Validate checks the payload's structural rules and returns a
// ValidationError describing the first violation.
func (d Data) Validate() error {
	return translate(validate.Struct(d))
}

// ValidateCreate applies the create-specific rule on top of Validate: the
// payload must carry a phone entry of type MAIN.
func (d Data) ValidateCreate() error {
	if err := d.Validate(); err != nil {
		return err
	}
	for _, p := range d.Phones {
		if p.Type == "MAIN" {
			return nil
		}
	}
	return NewValidationError("phones", "phone of type MAIN is required")
}

// CheckStruct validates any tagged struct (request DTOs included) and maps
// the failure into the partner ValidationError shape.
func CheckStruct(v any) error {
	return translate(validate.Struct(v))
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	return NewValidationError(fieldPath(fe.Namespace()), message(fe))
}

// fieldPath turns a validator namespace like "Data.phones[0].number.number"
// into the dotted wire path "phones.0.number.number".
func fieldPath(namespace string) string {
	parts := strings.SplitN(namespace, ".", 2)
	path := namespace
	if len(parts) == 2 {
		path = parts[1]
	}
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")
	return path
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain only digits"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
