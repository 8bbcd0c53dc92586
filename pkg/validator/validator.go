// Package validator wires go-playground/validator into echo and turns its
// errors into InvalidInput.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Eursukkul/group-events/internal/apperror"
)

const (
	msgFieldRequired      = "field is required"
	msgFieldExceedsMaxLen = "field exceeds maximum length"
	msgFieldBelowMinLen   = "field is below minimum length"
	msgFieldNotOneOf      = "field has an unsupported value"
	msgUnknownValidation  = "field is invalid"
)

// Validator satisfies echo.Validator.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	return parseValidationErrors(cv.v.Struct(i))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return apperror.Wrap(apperror.InvalidInput, "invalid request", err)
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = msgFieldRequired
	case "max":
		msg = msgFieldExceedsMaxLen
	case "min":
		msg = msgFieldBelowMinLen
	case "oneof":
		msg = msgFieldNotOneOf
	default:
		msg = msgUnknownValidation
	}
	field := ve.Field()
	return apperror.WithMetadata(apperror.InvalidInput, field+": "+msg, map[string]string{"field": field})
}
