// Package kitsync turns completed checkout sessions into subscribers of the
// email-marketing platform. It runs after the webhook signature has been
// verified, so every failure here is reported in the Result instead of an
// error: Stripe retrying the delivery would not fix it.
package kitsync

import (
	"context"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/vocdoni/checkout-sync/stripe"
	"github.com/vocdoni/checkout-sync/subscribers"
	"go.vocdoni.io/dvote/log"
)

// Strategy selects how replays of the same completed session are detected.
type Strategy string

const (
	// StrategyPaymentIntent reads and writes the kit_sync_completed flag on
	// the session payment intent, forwarding at most once per payment.
	StrategyPaymentIntent Strategy = "payment-intent"
	// StrategyNone forwards every delivery and relies on the platform upsert
	// being idempotent by email.
	StrategyNone Strategy = "none"
)

// ParseStrategy validates a strategy name, empty selects StrategyPaymentIntent.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", StrategyPaymentIntent:
		return StrategyPaymentIntent, nil
	case StrategyNone:
		return StrategyNone, nil
	default:
		return "", fmt.Errorf("unknown sync strategy %q", name)
	}
}

// PaymentIntents reads and writes the sync flag of a payment intent.
type PaymentIntents interface {
	SyncState(ctx context.Context, paymentIntentID string) (bool, error)
	MarkSynced(ctx context.Context, paymentIntentID string, metadata map[string]string) error
}

// Config holds the forwarding settings. At least one of TagID and SequenceID
// is expected.
type Config struct {
	Strategy   Strategy
	TagID      string
	SequenceID string
}

// Syncer forwards customers of completed sessions to a subscriber Backend.
type Syncer struct {
	backend subscribers.Backend
	intents PaymentIntents
	conf    Config
}

// New creates a Syncer. intents may be nil when the strategy is StrategyNone.
func New(backend subscribers.Backend, intents PaymentIntents, conf Config) *Syncer {
	if conf.Strategy == "" {
		conf.Strategy = StrategyPaymentIntent
	}
	return &Syncer{backend: backend, intents: intents, conf: conf}
}

// HandleEvent acknowledges every verified event. Only
// checkout.session.completed is acted upon, other types are ignored.
func (s *Syncer) HandleEvent(ctx context.Context, event *stripeapi.Event) *Result {
	if event.Type != stripeapi.EventTypeCheckoutSessionCompleted {
		log.Debugw("stripe webhook: ignoring event", "event", event.ID, "type", event.Type)
		return Ignored(string(event.Type))
	}
	session, err := stripe.ParseCheckoutSession(event)
	if err != nil {
		log.Errorw(err, fmt.Sprintf("stripe webhook: event %s carries no valid checkout session", event.ID))
		return NotProcessed("invalid checkout session")
	}
	customer := stripe.Customer(session)
	if customer.Email == "" {
		log.Warnw("stripe webhook: completed session without customer email",
			"event", event.ID, "session", customer.SessionID)
		return NotProcessed("missing customer email")
	}
	return s.Sync(ctx, customer)
}

// Sync forwards one customer: upsert, then tag, then sequence enrollment.
// With StrategyPaymentIntent a payment intent already flagged is skipped, and
// the flag is set once every call succeeded.
func (s *Syncer) Sync(ctx context.Context, customer *stripe.CustomerInfo) *Result {
	logger := []any{
		"session", customer.SessionID,
		"paymentIntent", customer.PaymentIntentID,
		"backend", s.backend.Name(),
	}
	guarded := s.conf.Strategy == StrategyPaymentIntent && s.intents != nil && customer.PaymentIntentID != ""
	if guarded {
		synced, err := s.intents.SyncState(ctx, customer.PaymentIntentID)
		switch {
		case err != nil:
			// upserts are idempotent remotely, a missed check costs at most a duplicate tag
			log.Warnw("stripe webhook: could not read sync flag, forwarding unguarded",
				append(logger, "error", err.Error())...)
		case synced:
			log.Infow("stripe webhook: payment already forwarded, skipping", logger...)
			return AlreadySynced()
		}
	}

	sub := &subscribers.Subscriber{
		Email:     customer.Email,
		FirstName: customer.FirstName,
	}
	if customer.Objective != "" {
		sub.Fields = map[string]string{stripe.MetadataObjective: customer.Objective}
	}

	if err := tolerateExisting(s.backend.Upsert(ctx, sub)); err != nil {
		log.Errorw(err, fmt.Sprintf("stripe webhook: subscriber upsert failed for session %s", customer.SessionID))
		return NotProcessed("subscriber upsert failed")
	}
	if s.conf.TagID != "" {
		if err := tolerateExisting(s.backend.Tag(ctx, s.conf.TagID, sub)); err != nil {
			log.Errorw(err, fmt.Sprintf("stripe webhook: tagging %s failed for session %s", s.conf.TagID, customer.SessionID))
			return NotProcessed("subscriber tagging failed")
		}
	}
	if s.conf.SequenceID != "" {
		if err := tolerateExisting(s.backend.EnrollSequence(ctx, s.conf.SequenceID, sub)); err != nil {
			log.Errorw(err, fmt.Sprintf("stripe webhook: sequence %s enrollment failed for session %s",
				s.conf.SequenceID, customer.SessionID))
			return NotProcessed("subscriber sequence enrollment failed")
		}
	}
	log.Infow("stripe webhook: customer forwarded", logger...)

	if guarded {
		if err := s.intents.MarkSynced(ctx, customer.PaymentIntentID, s.syncMetadata()); err != nil {
			log.Errorw(err, fmt.Sprintf("stripe webhook: could not flag payment intent %s as synced",
				customer.PaymentIntentID))
		}
	}
	return Processed()
}

func (s *Syncer) syncMetadata() map[string]string {
	metadata := map[string]string{}
	if s.conf.SequenceID != "" {
		metadata[stripe.MetadataSequenceID] = s.conf.SequenceID
	}
	if s.conf.TagID != "" {
		metadata[stripe.MetadataTagID] = s.conf.TagID
	}
	return metadata
}

// tolerateExisting turns "subscriber already exists" answers into success.
func tolerateExisting(err error) error {
	if err != nil && subscribers.IsAlreadyExists(err) {
		log.Infow("stripe webhook: subscriber already exists, continuing", "error", err.Error())
		return nil
	}
	return err
}
