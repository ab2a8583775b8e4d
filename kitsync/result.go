package kitsync

// Result is the acknowledgement body returned to Stripe once an event has
// been verified.
type Result struct {
	Received   bool   `json:"received"`
	Ignored    bool   `json:"ignored,omitempty"`
	Processed  *bool  `json:"processed,omitempty"`
	Idempotent bool   `json:"idempotent,omitempty"`
	Type       string `json:"type,omitempty"`
	Error      string `json:"error,omitempty"`
}

// IsProcessed reports whether the result says the customer was forwarded.
func (r *Result) IsProcessed() bool {
	return r.Processed != nil && *r.Processed
}

// Ignored acknowledges an event type the webhook does not act upon.
func Ignored(eventType string) *Result {
	return &Result{Received: true, Ignored: true, Type: eventType}
}

// Processed acknowledges a forwarded customer.
func Processed() *Result {
	processed := true
	return &Result{Received: true, Processed: &processed}
}

// AlreadySynced acknowledges a replay of an already forwarded payment.
func AlreadySynced() *Result {
	r := Processed()
	r.Idempotent = true
	return r
}

// NotProcessed acknowledges an event that could not be forwarded.
func NotProcessed(reason string) *Result {
	processed := false
	return &Result{Received: true, Processed: &processed, Error: reason}
}
