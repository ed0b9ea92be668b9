package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"smartmeeting/apperrors"
	"smartmeeting/auth"
	"smartmeeting/publisher"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		_, ok := publisher.NormalizePhone(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return auth.CheckPasswordPolicy(fl.Field().String()) == nil
	})
	return v
}

// validationError turns validator output into a 400 with one message per field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError(err.Error())
	}
	fields := make(map[string]any, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fieldMessage(e)
	}
	first := verrs[0]
	return apperrors.NewValidationError(fmt.Sprintf("Invalid %s: %s", first.Field(), fieldMessage(first))).
		WithDetails(map[string]any{"fields": fields})
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "http_url":
		return "must be an absolute http(s) URL"
	case "phone":
		return "must be a phone number with 7 to 15 digits"
	case "password":
		return fmt.Sprintf("must be at least %d characters and at most %d bytes", auth.MinPasswordLength, auth.MaxPasswordBytes)
	case "datetime":
		return fmt.Sprintf("must match the layout %s", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s long", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s long", e.Param())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
