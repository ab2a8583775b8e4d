package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/vocdoni/checkout-sync/errors"
	"go.vocdoni.io/dvote/log"
)

// MaxBodyBytes caps the JSON bodies decoded by the middleware.
const MaxBodyBytes = int64(65536)

// validatedModelKey is the context key of the decoded and validated model.
type validatedModelKey struct{}

// ValidationError represents an individual validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a slice of ValidationError.
type ValidationErrors []ValidationError

// Error returns the messages of the validation errors joined by a space, so a
// single failure reads as a plain sentence for the client.
func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, err := range ve {
		msgs = append(msgs, err.Message)
	}
	return strings.Join(msgs, " ")
}

// Normalizer is implemented by models that need their fields cleaned up
// (trimmed, lower-cased...) before validation.
type Normalizer interface {
	Normalize()
}

// Body returns a middleware that decodes the JSON request body into a new
// instance of the model type, normalizes and validates it, and stores it in
// the request context for the handler (see Model). An empty body decodes to
// the zero model so required-field rules report it. On validation failure
// onInvalid is written with the localized messages.
func (v *Validator) Body(model any, onInvalid errors.Error) func(next http.Handler) http.Handler {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			instance := reflect.New(modelType).Interface()

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
			if err != nil {
				errors.ErrMalformedBody.WithErr(err).Write(w)
				return
			}
			if len(strings.TrimSpace(string(body))) > 0 {
				if err := json.Unmarshal(body, instance); err != nil {
					errors.ErrMalformedBody.Write(w)
					return
				}
			}
			if n, ok := instance.(Normalizer); ok {
				n.Normalize()
			}
			if err := v.Validate(instance); err != nil {
				log.Debugw("validation errors", "path", r.URL.Path, "errors", err.Error())
				onInvalid.WithMessage(err.Error()).Write(w)
				return
			}

			ctx := context.WithValue(r.Context(), validatedModelKey{}, instance)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Model retrieves the validated model stored by Body from the context.
func Model[T any](ctx context.Context) (*T, error) {
	model, ok := ctx.Value(validatedModelKey{}).(*T)
	if !ok {
		return nil, fmt.Errorf("no validated %T in context", model)
	}
	return model, nil
}
