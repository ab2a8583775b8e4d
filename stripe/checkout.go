package stripe

import (
	"strings"

	stripeapi "github.com/stripe/stripe-go/v82"
)

// Metadata keys written on checkout sessions and payment intents.
const (
	MetadataFullName      = "full_name"
	MetadataFirstName     = "first_name"
	MetadataSource        = "source"
	MetadataObjective     = "objective"
	MetadataSyncCompleted = "kit_sync_completed"
	MetadataSequenceID    = "kit_sequence_id"
	MetadataTagID         = "kit_tag_id"
)

// successPath is appended to the site URL, Stripe replaces the placeholder
// with the session id so the landing page can poll the session status.
const successPath = "/merci?session_id={CHECKOUT_SESSION_ID}"

// CheckoutSessionParams holds parameters for creating a checkout session
type CheckoutSessionParams struct {
	CustomerEmail string
	FullName      string
	Objective     string
}

// SuccessURL returns the URL Stripe redirects to after a successful payment.
func (c *Config) SuccessURL() string {
	return c.SiteBaseURL() + successPath
}

// CancelURL returns the URL Stripe redirects to when the customer leaves the
// hosted page.
func (c *Config) CancelURL() string {
	return c.SiteBaseURL() + "/"
}

// checkoutSessionParams builds the one-off payment session: the configured
// price with quantity 1, the customer email, the redirect URLs and the
// metadata read back by the webhook. The same metadata is copied to the
// payment intent, which is where the sync flag lives.
func (c *Client) checkoutSessionParams(params *CheckoutSessionParams) *stripeapi.CheckoutSessionParams {
	source := c.config.Source
	if source == "" {
		source = DefaultSource
	}
	metadata := map[string]string{
		MetadataFullName: params.FullName,
		MetadataSource:   source,
	}
	if params.Objective != "" {
		metadata[MetadataObjective] = params.Objective
	}
	intentMetadata := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		intentMetadata[k] = v
	}
	if c.config.TrackSync {
		intentMetadata[MetadataSyncCompleted] = "false"
	}

	return &stripeapi.CheckoutSessionParams{
		Mode: stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				Price:    stripeapi.String(c.config.PriceID),
				Quantity: stripeapi.Int64(1),
			},
		},
		CustomerEmail: stripeapi.String(params.CustomerEmail),
		SuccessURL:    stripeapi.String(c.config.SuccessURL()),
		CancelURL:     stripeapi.String(c.config.CancelURL()),
		Metadata:      metadata,
		PaymentIntentData: &stripeapi.CheckoutSessionPaymentIntentDataParams{
			Metadata: intentMetadata,
		},
	}
}

// FirstName returns the first word of a full name.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
