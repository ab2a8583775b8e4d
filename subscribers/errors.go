package subscribers

import (
	"errors"
	"fmt"
	"strings"
)

// APIError is a non-2xx answer of the subscriber platform.
type APIError struct {
	Backend    string
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Backend, e.Operation, e.StatusCode, e.Body)
}

// alreadyExistsMarkers are matched case-insensitively against error bodies.
// The platforms answer a duplicate create with a 4XX mentioning one of them.
var alreadyExistsMarkers = []string{
	"already exists",
	"has already been taken",
	"email_address",
}

// IsAlreadyExists reports whether err is a platform answer saying the
// subscriber exists. Callers treat it as success.
func IsAlreadyExists(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	body := strings.ToLower(apiErr.Body)
	for _, marker := range alreadyExistsMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}
