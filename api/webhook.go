package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vocdoni/checkout-sync/errors"
	"github.com/vocdoni/checkout-sync/kitsync"
	"github.com/vocdoni/checkout-sync/stripe"
	"go.vocdoni.io/dvote/log"
)

// maxWebhookBodyBytes caps the webhook payload read before verification.
const maxWebhookBodyBytes = int64(65536)

// webhookHandler godoc
//
//	@Summary		Receive Stripe events
//	@Description	Verify the Stripe-Signature of the raw body and forward the customer of every
//	@Description	checkout.session.completed event to the subscriber platform. Verified events
//	@Description	are always acknowledged with 200 so Stripe does not retry them.
//	@Tags			webhook
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	kitsync.Result
//	@Failure		400	{object}	errors.Error	"Missing or invalid signature"
//	@Failure		405	{object}	errors.Error	"Method not allowed"
//	@Failure		500	{object}	errors.Error	"Missing configuration"
//	@Router			/webhook [post]
func (a *API) webhookHandler(w http.ResponseWriter, r *http.Request) {
	missing := append(a.stripeConf.MissingForWebhook(), a.subConf.Missing()...)
	if len(missing) > 0 {
		errors.ErrMissingConfiguration.With(strings.Join(missing, ", ")).Write(w)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		errors.ErrMalformedWebhookBody.WithErr(err).Write(w)
		return
	}
	signature := headerValue(r.Header, "Stripe-Signature")
	if signature == "" {
		errors.ErrMissingSignature.Write(w)
		return
	}
	payload, err := transportPayload(r.Header, body)
	if err != nil {
		errors.ErrMalformedWebhookBody.WithErr(err).Write(w)
		return
	}
	event, err := a.provider.ValidateWebhookEvent(payload, signature)
	if err != nil {
		errors.ErrWebhookVerification.With(stripe.ProviderMessage(err)).Write(w)
		return
	}
	log.Debugw("stripe webhook: event verified", "event", event.ID, "type", event.Type)

	// forwarding is not interrupted if Stripe drops the delivery connection
	result := a.handleVerifiedEvent(context.WithoutCancel(r.Context()), event.ID, func(ctx context.Context) *kitsync.Result {
		return a.syncer.HandleEvent(ctx, event)
	})
	httpWriteJSON(w, http.StatusOK, result)
}

// handleVerifiedEvent runs fn turning any panic into a not processed result,
// a verified event must never be answered with a server error.
func (*API) handleVerifiedEvent(ctx context.Context, eventID string,
	fn func(context.Context) *kitsync.Result,
) (result *kitsync.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorw(fmt.Errorf("%v", rec), fmt.Sprintf("stripe webhook: panic handling event %s", eventID))
			result = kitsync.NotProcessed("internal error")
		}
	}()
	return fn(ctx)
}
