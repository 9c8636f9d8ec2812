package apperr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON names so messages match the request.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("component", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s != "" && len(s) <= 64 && !strings.ContainsFunc(s, unicode.IsControl)
		})

		validateInst = v
	})
	return validateInst
}

// Validate checks v against its validate struct tags and returns the first
// failure as a *ValidationError.
func Validate(v any) error {
	return convertValidationError(validatorInstance().Struct(v))
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return NewValidationError(fe.Field(), fieldMessage(fe), err)
	}
	return NewValidationError("request", err.Error(), err)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "uuid", "uuid4":
		return field + " must be a valid id"
	case "component":
		return field + " must be a component name"
	default:
		return fmt.Sprintf("%s failed validation for tag '%s'", field, fe.Tag())
	}
}
