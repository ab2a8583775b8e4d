package subscribers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.vocdoni.io/dvote/log"
)

// maxErrorBody caps how much of an error answer is kept for matching and logs.
const maxErrorBody = 4096

// jsonCaller sends JSON requests to one platform API.
type jsonCaller struct {
	backend string
	baseURL string
	headers map[string]string
	client  *http.Client
}

// post sends body as JSON to baseURL+path. Any non-2xx answer is returned as
// an *APIError carrying the (truncated) response body.
func (j *jsonCaller) post(ctx context.Context, operation, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("could not encode %s request: %w", operation, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("could not build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range j.headers {
		req.Header.Set(k, v)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s request failed: %w", j.backend, operation, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnw("failed to close response body", "backend", j.backend, "error", err)
		}
	}()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s %s could not read response: %w", j.backend, operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Backend:    j.backend,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}
	log.Debugw("subscriber api call", "backend", j.backend, "operation", operation, "status", resp.StatusCode)
	return nil
}
