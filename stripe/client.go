// Package stripe wraps the Stripe API calls used by the checkout flow:
// hosted checkout sessions, webhook event verification and the payment intent
// metadata used to remember that a payment was already forwarded to the
// subscriber platform.
package stripe

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	stripeapi "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
	"go.vocdoni.io/dvote/log"
)

// Client wraps the Stripe API client with additional functionality
type Client struct {
	config *Config
	api    *stripeclient.API
}

// NewClient creates a new Stripe client with the given configuration. Network
// retries are disabled: webhook redelivery is Stripe's job.
func NewClient(config *Config) *Client {
	backendConfig := &stripeapi.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		MaxNetworkRetries: stripeapi.Int64(0),
		LeveledLogger:     &stripeapi.LeveledLogger{Level: stripeapi.LevelError},
	}
	if config.APIURL != "" {
		backendConfig.URL = stripeapi.String(config.APIURL)
	}
	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, backendConfig)
	backends := &stripeapi.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	}
	return &Client{
		config: config,
		api:    stripeclient.New(config.SecretKey, backends),
	}
}

// Config returns the configuration the client was created with.
func (c *Client) Config() *Config {
	return c.config
}

// ValidateWebhookEvent validates and parses a webhook event. The payload must
// be the exact bytes Stripe signed.
func (c *Client) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	event, err := stripewebhook.ConstructEventWithOptions(payload, signatureHeader, c.config.WebhookSecret,
		stripewebhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, NewStripeError(CodeWebhookValidation, "webhook signature validation failed", err)
	}
	return &event, nil
}

// CreateCheckoutSession creates a hosted checkout session for the configured
// price and the given customer.
// API description https://docs.stripe.com/api/checkout/sessions/create
func (c *Client) CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams,
) (*stripeapi.CheckoutSession, error) {
	checkoutParams := c.checkoutSessionParams(params)
	checkoutParams.Context = ctx
	session, err := c.api.CheckoutSessions.New(checkoutParams)
	if err != nil {
		return nil, NewStripeError(CodeAPICallFailed, "failed to create checkout session", err)
	}
	log.Debugw("checkout session created", "session", session.ID, "email", params.CustomerEmail)
	return session, nil
}

// CheckoutSession retrieves a checkout session by ID
func (c *Client) CheckoutSession(ctx context.Context, sessionID string) (*stripeapi.CheckoutSession, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx
	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, NewStripeError(CodeAPICallFailed, "failed to get checkout session", err)
	}
	return session, nil
}

// SyncState reports whether the payment intent is already flagged as
// forwarded to the subscriber platform.
func (c *Client) SyncState(ctx context.Context, paymentIntentID string) (bool, error) {
	params := &stripeapi.PaymentIntentParams{}
	params.Context = ctx
	pi, err := c.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return false, NewStripeError(CodeAPICallFailed, "failed to get payment intent", err)
	}
	return pi.Metadata[MetadataSyncCompleted] == "true", nil
}

// MarkSynced merges the given metadata into the payment intent, together with
// kit_sync_completed=true. The request carries an idempotency key derived from
// the payment intent so a repeated mark is deduplicated by Stripe.
func (c *Client) MarkSynced(ctx context.Context, paymentIntentID string, metadata map[string]string) error {
	params := &stripeapi.PaymentIntentParams{Metadata: map[string]string{}}
	for k, v := range metadata {
		params.Metadata[k] = v
	}
	params.Metadata[MetadataSyncCompleted] = "true"
	params.Context = ctx
	params.SetIdempotencyKey(SyncIdempotencyKey(paymentIntentID))
	if _, err := c.api.PaymentIntents.Update(paymentIntentID, params); err != nil {
		return NewStripeError(CodeAPICallFailed, "failed to update payment intent metadata", err)
	}
	return nil
}

// SyncIdempotencyKey is the idempotency key of the metadata update that marks
// a payment intent as synced. It is stable for a given payment intent.
func SyncIdempotencyKey(paymentIntentID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("kit-sync:"+paymentIntentID)).String()
}
