package stripe

import (
	"testing"

	qt "github.com/frankban/quicktest"
	stripeapi "github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_test_secret"

const completedEvent = `{
  "id": "evt_1",
  "object": "event",
  "api_version": "2020-08-27",
  "type": "checkout.session.completed",
  "data": {
    "object": {
      "id": "cs_1",
      "object": "checkout.session",
      "customer_email": "fallback@example.org",
      "customer_details": {"email": "ada@example.org", "name": "Ada King"},
      "payment_intent": "pi_1",
      "payment_status": "paid",
      "metadata": {"full_name": "Ada Lovelace", "objective": "learn"}
    }
  }
}`

func signedHeader(payload []byte, secret string) string {
	return stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload: payload,
		Secret:  secret,
	}).Header
}

func TestValidateWebhookEvent(t *testing.T) {
	c := qt.New(t)
	client := NewClient(&Config{SecretKey: "sk_test_123", WebhookSecret: testWebhookSecret})
	payload := []byte(completedEvent)

	event, err := client.ValidateWebhookEvent(payload, signedHeader(payload, testWebhookSecret))
	c.Assert(err, qt.IsNil)
	c.Assert(event.Type, qt.Equals, stripeapi.EventTypeCheckoutSessionCompleted)

	c.Run("wrong secret", func(c *qt.C) {
		_, err := client.ValidateWebhookEvent(payload, signedHeader(payload, "whsec_other"))
		c.Assert(err, qt.Not(qt.IsNil))
		c.Assert(HasCode(err, CodeWebhookValidation), qt.IsTrue)
	})

	c.Run("tampered payload", func(c *qt.C) {
		header := signedHeader(payload, testWebhookSecret)
		tampered := []byte(completedEvent + " ")
		_, err := client.ValidateWebhookEvent(tampered, header)
		c.Assert(err, qt.Not(qt.IsNil))
		c.Assert(ProviderMessage(err), qt.Not(qt.Equals), "")
	})
}

func TestCustomerFromCompletedSession(t *testing.T) {
	c := qt.New(t)
	client := NewClient(&Config{SecretKey: "sk_test_123", WebhookSecret: testWebhookSecret})
	payload := []byte(completedEvent)
	event, err := client.ValidateWebhookEvent(payload, signedHeader(payload, testWebhookSecret))
	c.Assert(err, qt.IsNil)

	session, err := ParseCheckoutSession(event)
	c.Assert(err, qt.IsNil)
	c.Assert(Customer(session), qt.DeepEquals, &CustomerInfo{
		SessionID:       "cs_1",
		PaymentIntentID: "pi_1",
		Email:           "ada@example.org",
		FullName:        "Ada Lovelace",
		FirstName:       "Ada",
		Objective:       "learn",
	})

	c.Run("falls back to customer_email", func(c *qt.C) {
		session := &stripeapi.CheckoutSession{
			ID:              "cs_2",
			CustomerEmail:   " fallback@example.org ",
			CustomerDetails: &stripeapi.CheckoutSessionCustomerDetails{},
		}
		info := Customer(session)
		c.Assert(info.Email, qt.Equals, "fallback@example.org")
		c.Assert(info.PaymentIntentID, qt.Equals, "")
	})

	c.Run("name from customer details", func(c *qt.C) {
		session := &stripeapi.CheckoutSession{
			ID:              "cs_3",
			CustomerDetails: &stripeapi.CheckoutSessionCustomerDetails{Email: "g@h.io", Name: "Grace Hopper"},
		}
		info := Customer(session)
		c.Assert(info.FullName, qt.Equals, "Grace Hopper")
		c.Assert(info.FirstName, qt.Equals, "Grace")
	})
}

func TestConfig(t *testing.T) {
	c := qt.New(t)

	conf := &Config{SiteURL: "https://example.org//"}
	c.Assert(conf.SiteBaseURL(), qt.Equals, "https://example.org/")
	c.Assert(conf.CancelURL(), qt.Equals, "https://example.org//")
	c.Assert(conf.MissingForCheckout(), qt.DeepEquals, []string{EnvSecretKey, EnvPriceID})
	c.Assert(conf.MissingForWebhook(), qt.DeepEquals, []string{EnvSecretKey, EnvWebhookSecret})

	conf = &Config{SecretKey: "sk", PriceID: "price", SiteURL: "https://example.org"}
	c.Assert(conf.MissingForCheckout(), qt.IsNil)
	c.Assert(conf.SuccessURL(), qt.Equals, "https://example.org/merci?session_id={CHECKOUT_SESSION_ID}")
}

func TestSummarizeDefaults(t *testing.T) {
	c := qt.New(t)

	summary := Summarize(&stripeapi.CheckoutSession{
		ID:            "cs_1",
		CustomerEmail: "a@b.co",
		AmountTotal:   1999,
		Metadata:      map[string]string{"first_name": "Marie", "full_name": "Marie Curie"},
	})
	c.Assert(summary.Currency, qt.Equals, "EUR")
	c.Assert(summary.AmountTotal, qt.Equals, 19.99)
	c.Assert(summary.FirstName, qt.Equals, "Marie")
	c.Assert(summary.Email, qt.Equals, "a@b.co")
}
