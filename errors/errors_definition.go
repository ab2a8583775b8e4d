// Package errors provides the coded API errors returned by the checkout,
// webhook and session status endpoints.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the caller's fault and return a 4XX
// HTTP status. Error codes 50001-59999 are the server's fault and return a 5XX
// HTTP status.
//
// NEVER change any of the current error codes, only append new errors after the
// current last 4XXXX or 5XXXX.
var (
	// Request errors (4XX)
	ErrMethodNotAllowed     = Error{Code: 40001, HTTPstatus: http.StatusMethodNotAllowed, Err: fmt.Errorf("method not allowed")}
	ErrEmailMalformed       = Error{Code: 40002, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid email format")}
	ErrMalformedBody        = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON request body")}
	ErrMissingSessionID     = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("session_id is required")}
	ErrMissingSignature     = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("missing Stripe-Signature header"), LogLevel: "warn"}
	ErrWebhookVerification  = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("webhook signature verification failed"), LogLevel: "warn"}
	ErrSessionLookup        = Error{Code: 40007, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("checkout session lookup failed")}
	ErrSessionNotPaid       = Error{Code: 40008, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("payment not completed"), LogLevel: "info"}
	ErrMalformedWebhookBody = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("could not read webhook body")}

	// Server errors (5XX)
	ErrMissingConfiguration       = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server misconfigured: missing"), LogLevel: "error"}
	ErrStripeError                = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: payment processing failed"), LogLevel: "error"}
	ErrMarshalingServerJSONFailed = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: failed to process response"), LogLevel: "error"}
)
