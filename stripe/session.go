package stripe

import (
	"encoding/json"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v82"
)

// DefaultCurrency is reported when a session carries no currency.
const DefaultCurrency = "EUR"

// CustomerInfo is the customer identity carried by a completed checkout
// session, as forwarded to the subscriber platform.
type CustomerInfo struct {
	SessionID       string
	PaymentIntentID string
	Email           string
	FullName        string
	FirstName       string
	Objective       string
}

// SessionSummary is the sanitized projection of a paid checkout session
// returned to the client polling the session status.
type SessionSummary struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name"`
	AmountTotal float64 `json:"amount_total"`
	Currency    string  `json:"currency"`
}

// ParseCheckoutSession extracts the checkout session of a
// checkout.session.completed event.
func ParseCheckoutSession(event *stripeapi.Event) (*stripeapi.CheckoutSession, error) {
	if event == nil || event.Data == nil {
		return nil, NewStripeError(CodeInvalidEvent, "event has no data", nil)
	}
	var session stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, NewStripeError(CodeInvalidEvent, "failed to parse checkout session from event", err)
	}
	return &session, nil
}

// Customer returns the customer identity of a checkout session. The email
// captured on the hosted page wins over the one the session was created with.
func Customer(session *stripeapi.CheckoutSession) *CustomerInfo {
	info := &CustomerInfo{
		SessionID: session.ID,
		Email:     SessionEmail(session),
		FullName:  strings.TrimSpace(session.Metadata[MetadataFullName]),
		Objective: strings.TrimSpace(session.Metadata[MetadataObjective]),
	}
	if info.FullName == "" && session.CustomerDetails != nil {
		info.FullName = strings.TrimSpace(session.CustomerDetails.Name)
	}
	info.FirstName = SessionFirstName(session)
	if info.FirstName == "" {
		info.FirstName = FirstName(info.FullName)
	}
	if session.PaymentIntent != nil {
		info.PaymentIntentID = session.PaymentIntent.ID
	}
	return info
}

// SessionEmail returns the best known email of the session customer.
func SessionEmail(session *stripeapi.CheckoutSession) string {
	if session.CustomerDetails != nil && strings.TrimSpace(session.CustomerDetails.Email) != "" {
		return strings.TrimSpace(session.CustomerDetails.Email)
	}
	return strings.TrimSpace(session.CustomerEmail)
}

// SessionFirstName returns the first name stored in the session metadata,
// either explicitly or as the first word of the full name.
func SessionFirstName(session *stripeapi.CheckoutSession) string {
	if name := strings.TrimSpace(session.Metadata[MetadataFirstName]); name != "" {
		return name
	}
	return FirstName(session.Metadata[MetadataFullName])
}

// IsPaid reports whether the session payment went through.
func IsPaid(session *stripeapi.CheckoutSession) bool {
	return session.PaymentStatus == stripeapi.CheckoutSessionPaymentStatusPaid
}

// Summarize builds the client facing projection of a session. Amounts are
// converted from minor units.
func Summarize(session *stripeapi.CheckoutSession) *SessionSummary {
	currency := strings.ToUpper(strings.TrimSpace(string(session.Currency)))
	if currency == "" {
		currency = DefaultCurrency
	}
	return &SessionSummary{
		ID:          session.ID,
		Email:       SessionEmail(session),
		FirstName:   SessionFirstName(session),
		AmountTotal: float64(session.AmountTotal) / 100,
		Currency:    currency,
	}
}
