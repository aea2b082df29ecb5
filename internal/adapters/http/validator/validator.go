// Package validator turns go-playground validation errors into field/message
// pairs suitable for a client.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator interface {
	Validate(payload any) map[string]string
}

type structValidator struct {
	validate *validator.Validate
}

func New() Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &structValidator{validate: v}
}

func (v *structValidator) Validate(payload any) map[string]string {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["_"] = err.Error()
		return errs
	}

	for _, fe := range validationErrors {
		fieldName := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required", "required_if":
			errs[fieldName] = fmt.Sprintf("The %s field is required.", fe.Field())
		case "oneof":
			errs[fieldName] = fmt.Sprintf("The %s must be one of: %s.", fe.Field(), fe.Param())
		case "email":
			errs[fieldName] = fmt.Sprintf("The %s must be a valid email address.", fe.Field())
		case "min":
			errs[fieldName] = fmt.Sprintf("The %s must be at least %s characters.", fe.Field(), fe.Param())
		default:
			errs[fieldName] = fmt.Sprintf("The %s field is invalid.", fe.Field())
		}
	}

	return errs
}
