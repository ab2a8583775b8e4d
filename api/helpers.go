package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vocdoni/checkout-sync/errors"
	"go.vocdoni.io/dvote/log"
)

// httpWriteJSON helper function allows to write a JSON response with the
// given status.
func httpWriteJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		errors.ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// preflightHandler acknowledges OPTIONS requests that were not answered by
// the CORS middleware.
func preflightHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// headerValue returns the first value of the header name, matching the key
// case-insensitively. Handlers behind proxies or function runtimes may get
// headers whose keys were never canonicalized.
func headerValue(header http.Header, name string) string {
	if v := header.Get(name); v != "" {
		return v
	}
	for key, values := range header {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// transportPayload returns the bytes to verify. Bodies announced as base64
// (Content-Transfer-Encoding or X-Body-Encoding) are decoded, any other body
// is used as received.
func transportPayload(header http.Header, body []byte) ([]byte, error) {
	encoding := headerValue(header, "Content-Transfer-Encoding")
	if encoding == "" {
		encoding = headerValue(header, "X-Body-Encoding")
	}
	if !strings.EqualFold(strings.TrimSpace(encoding), "base64") {
		return body, nil
	}
	trimmed := bytes.TrimSpace(body)
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(trimmed)))
	n, err := base64.StdEncoding.Decode(decoded, trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 body: %w", err)
	}
	return decoded[:n], nil
}
