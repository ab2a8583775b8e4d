package validator

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailShapeRegex is the minimal shape accepted for customer emails: something
// without spaces, an @, something without spaces, a dot and something without
// spaces. Deliverability is the payment provider's concern.
var emailShapeRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validator is a wrapper around the go-playground/validator package.
type Validator struct {
	validator *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New()
	// report json names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("emailshape", validateEmailShape)
	return &Validator{validator: v}
}

// ValidEmail reports whether email has the minimal accepted shape.
func ValidEmail(email string) bool {
	return emailShapeRegex.MatchString(email)
}

// Validate validates a struct. The returned error, if any, is a
// ValidationErrors value with localized messages.
func (v *Validator) Validate(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}
	var validationErrors ValidationErrors
	for _, fieldErr := range fieldErrs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldErr.Field(),
			Message: errorMessage(fieldErr),
		})
	}
	return validationErrors
}

func validateEmailShape(fl validator.FieldLevel) bool {
	if fl.Field().String() == "" {
		return true
	}
	return ValidEmail(fl.Field().String())
}

// errorMessage returns a human-readable (French) message for a validation error.
func errorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		if err.Field() == "email" {
			return "L'adresse e-mail est requise."
		}
		return fmt.Sprintf("Le champ %s est requis.", err.Field())
	case "emailshape":
		return "Adresse e-mail invalide."
	case "max":
		return fmt.Sprintf("Le champ %s doit contenir au plus %s caractères.", err.Field(), err.Param())
	default:
		return fmt.Sprintf("Valeur invalide pour %s.", err.Field())
	}
}
