package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one failed field rule
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

// ValidationErrors keeps failures in the order they were detected
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	return strings.Join(ve.Messages(), "; ")
}

// Messages returns the human-readable messages in order.
func (ve ValidationErrors) Messages() []string {
	messages := make([]string, 0, len(ve))
	for _, e := range ve {
		messages = append(messages, e.Message)
	}
	return messages
}

// HasErrors is a nil-safe emptiness check
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Validator wraps go-playground/validator with the service's custom rules
type Validator struct {
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

// Validate runs struct tag validation and returns nil when the value is valid.
func (v *Validator) Validate(s interface{}) error {
	if errs := v.business.Validate(s); errs.HasErrors() {
		return errs
	}
	return nil
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// ToValidationErrors converts go-playground errors, preserving field order.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "_", Message: err.Error(), Rule: "invalid"}}
	}

	result := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		result = append(result, ValidationError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Value:   redact(fe),
			Rule:    fe.Tag(),
		})
	}
	return result
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "bcrypt_len":
		return fmt.Sprintf("%s is too long", fe.Field())
	case "user_role":
		return "Invalid role"
	case "application_decision":
		return "Invalid decision"
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// Passwords never travel back in error values.
func redact(fe validator.FieldError) interface{} {
	if strings.Contains(strings.ToLower(fe.Field()), "password") {
		return nil
	}
	return fe.Value()
}
