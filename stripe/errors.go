package stripe

import (
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v82"
)

// StripeError represents a Stripe-specific error
type StripeError struct {
	Code    string
	Message string
	Err     error
}

func (e *StripeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stripe error [%s]: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("stripe error [%s]: %s", e.Code, e.Message)
}

func (e *StripeError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	CodeWebhookValidation = "webhook_validation"
	CodeInvalidEvent      = "invalid_event"
	CodeAPICallFailed     = "api_call_failed"
)

// NewStripeError creates a new StripeError with the given code, message, and underlying error
func NewStripeError(code, message string, err error) *StripeError {
	return &StripeError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// HasCode reports whether err is a StripeError with the given code.
func HasCode(err error, code string) bool {
	var stripeErr *StripeError
	return errors.As(err, &stripeErr) && stripeErr.Code == code
}

// ProviderMessage returns the message reported by the Stripe API or by the
// webhook verification for err, falling back to err.Error().
func ProviderMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *stripeapi.Error
	if errors.As(err, &apiErr) && apiErr.Msg != "" {
		return apiErr.Msg
	}
	var stripeErr *StripeError
	if errors.As(err, &stripeErr) && stripeErr.Err != nil {
		return stripeErr.Err.Error()
	}
	return err.Error()
}
