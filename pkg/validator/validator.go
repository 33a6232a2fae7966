package validator

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"anoa.com/alumnihub/pkg/apperror"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

// Register wires the custom rules into gin's binding validator. Field errors
// report the json (or form) name of the field instead of the Go name.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

// Translate turns a gin binding error into the application error taxonomy.
// Missing fields win over format errors so the client sees the full list first.
func Translate(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperror.New(http.StatusBadRequest, "Invalid request body", err)
	}

	var missing []string
	invalidEmail := false
	var others []string
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required", "notblank":
			missing = append(missing, fe.Field())
		case "email":
			invalidEmail = true
		default:
			others = append(others, getFieldErrorMessage(fe))
		}
	}

	if len(missing) > 0 {
		return &apperror.MissingFieldError{Fields: missing}
	}
	if invalidEmail {
		return apperror.ErrInvalidEmail
	}
	return apperror.New(http.StatusBadRequest, strings.Join(others, "; "), apperror.ErrBadRequest)
}

func FormatValidationError(err error) string {
	return Translate(err).Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	default:
		return fmt.Sprintf("%s is not valid", field)
	}
}
