package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	nonstandard "github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", nonstandard.NotBlank)

	// report fields by their JSON name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s and returns every violation keyed by JSON field name.
// A nil map means s is valid.
func Struct(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"body": err.Error()}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, exists := out[fe.Field()]; exists {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address!", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL!", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s!", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s!", field, fe.Param())
	case "alpha":
		return fmt.Sprintf("%s must contain letters only!", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank!", field)
	}
	return fmt.Sprintf("%s is invalid!", field)
}
