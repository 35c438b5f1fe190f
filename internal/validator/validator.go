// Package validator wraps go-playground/validator and translates its errors
// into domain.ValidationErrors keyed by JSON field name.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/go-playground/validator/v10"
)

var iataRegex = regexp.MustCompile(`^[A-Z]{3}$`)

type Validator struct {
	validate *validator.Validate
}

func New(log *logger.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("iata", validateIATA); err != nil {
		log.Fatal("Failed to register 'iata' validator", "error", err)
	}

	return &Validator{validate: v}
}

// validateIATA accepts three upper-case letters. Callers upper-case codes before validating.
func validateIATA(fl validator.FieldLevel) bool {
	return iataRegex.MatchString(fl.Field().String())
}

func (v *Validator) Validate(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) domain.ValidationErrors {
	out := make(domain.ValidationErrors, 0, len(errs))
	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "gte", "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "lte", "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "iata":
			message = fmt.Sprintf("%s must be a 3-letter IATA airport code", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "nefield":
			message = fmt.Sprintf("%s must differ from %s", err.Field(), strings.ToLower(err.Param()))
		case "unique":
			message = fmt.Sprintf("%s must not contain duplicates", err.Field())
		}

		out = append(out, domain.ValidationError{Field: err.Field(), Message: message})
	}
	return out
}
