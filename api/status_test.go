package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	stripeapi "github.com/stripe/stripe-go/v82"
)

func TestSessionStatus(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c, testStripeConfig(), nil)
	ta.provider.sessions["cs_paid"] = &stripeapi.CheckoutSession{
		ID:              "cs_paid",
		PaymentStatus:   stripeapi.CheckoutSessionPaymentStatusPaid,
		AmountTotal:     4900,
		Currency:        "eur",
		CustomerDetails: &stripeapi.CheckoutSessionCustomerDetails{Email: "ada@example.org"},
		Metadata:        map[string]string{"full_name": "Ada Lovelace"},
	}
	ta.provider.sessions["cs_open"] = &stripeapi.CheckoutSession{
		ID:            "cs_open",
		PaymentStatus: stripeapi.CheckoutSessionPaymentStatusUnpaid,
	}

	c.Run("paid", func(c *qt.C) {
		status, body := ta.request(c, httptest.NewRequest(http.MethodGet, sessionStatusEndpoint+"?session_id=cs_paid", nil))
		c.Assert(status, qt.Equals, http.StatusOK)
		c.Assert(body, qt.DeepEquals, map[string]any{
			"ok":           true,
			"id":           "cs_paid",
			"email":        "ada@example.org",
			"first_name":   "Ada",
			"amount_total": 49.0,
			"currency":     "EUR",
		})
	})

	c.Run("unpaid", func(c *qt.C) {
		status, body := ta.request(c, httptest.NewRequest(http.MethodGet, sessionStatusEndpoint+"?session_id=cs_open", nil))
		c.Assert(status, qt.Equals, http.StatusForbidden)
		c.Assert(body, qt.DeepEquals, map[string]any{"ok": false, "error": "payment not completed"})
	})

	c.Run("missing session_id", func(c *qt.C) {
		status, body := ta.request(c, httptest.NewRequest(http.MethodGet, sessionStatusEndpoint+"?session_id=%20", nil))
		c.Assert(status, qt.Equals, http.StatusBadRequest)
		c.Assert(body["code"], qt.Equals, float64(40004))
	})

	c.Run("unknown session", func(c *qt.C) {
		status, body := ta.request(c, httptest.NewRequest(http.MethodGet, sessionStatusEndpoint+"?session_id=cs_nope", nil))
		c.Assert(status, qt.Equals, http.StatusBadRequest)
		c.Assert(body["error"], qt.Equals, "No such checkout.session: cs_nope")
	})
}

func TestSessionStatusMissingConfig(t *testing.T) {
	c := qt.New(t)
	conf := testStripeConfig()
	conf.SecretKey = ""
	ta := newTestAPI(c, conf, nil)

	status, body := ta.request(c, httptest.NewRequest(http.MethodGet, sessionStatusEndpoint+"?session_id=cs_paid", nil))
	c.Assert(status, qt.Equals, http.StatusInternalServerError)
	c.Assert(body["error"], qt.Equals, "server misconfigured: missing: STRIPE_SECRET_KEY")
}
