package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
)

// fakeStripe is a minimal Stripe API double recording the requests it serves.
type fakeStripe struct {
	mu       sync.Mutex
	requests []*recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
}

type recordedRequest struct {
	Method         string
	Path           string
	Form           map[string]string
	IdempotencyKey string
}

func newFakeStripe(c *qt.C, handler func(w http.ResponseWriter, r *http.Request)) (*fakeStripe, *Client) {
	fake := &fakeStripe{handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.ParseForm(), qt.IsNil)
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		fake.mu.Lock()
		fake.requests = append(fake.requests, &recordedRequest{
			Method:         r.Method,
			Path:           r.URL.Path,
			Form:           form,
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
		})
		fake.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fake.handler(w, r)
	}))
	c.Cleanup(srv.Close)
	return fake, NewClient(&Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		PriceID:       "price_123",
		SiteURL:       "https://example.org/",
		Source:        "landing",
		APIURL:        srv.URL,
		TrackSync:     true,
	})
}

func writeStripeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":{"message":%q,"type":"invalid_request_error"}}`, msg)
}

func TestCreateCheckoutSession(t *testing.T) {
	c := qt.New(t)

	fake, client := newFakeStripe(c, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	session, err := client.CreateCheckoutSession(context.Background(), &CheckoutSessionParams{
		CustomerEmail: "a@b.co",
		FullName:      "Ada Lovelace",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(session.ID, qt.Equals, "cs_test_1")
	c.Assert(session.URL, qt.Equals, "https://checkout.stripe.com/c/pay/cs_test_1")

	c.Assert(fake.requests, qt.HasLen, 1)
	req := fake.requests[0]
	c.Assert(req.Method, qt.Equals, http.MethodPost)
	c.Assert(req.Path, qt.Equals, "/v1/checkout/sessions")
	c.Assert(req.Form["mode"], qt.Equals, "payment")
	c.Assert(req.Form["line_items[0][price]"], qt.Equals, "price_123")
	c.Assert(req.Form["line_items[0][quantity]"], qt.Equals, "1")
	c.Assert(req.Form["customer_email"], qt.Equals, "a@b.co")
	c.Assert(req.Form["success_url"], qt.Equals, "https://example.org/merci?session_id={CHECKOUT_SESSION_ID}")
	c.Assert(req.Form["cancel_url"], qt.Equals, "https://example.org/")
	c.Assert(req.Form["metadata[full_name]"], qt.Equals, "Ada Lovelace")
	c.Assert(req.Form["metadata[source]"], qt.Equals, "landing")
	c.Assert(req.Form["payment_intent_data[metadata][kit_sync_completed]"], qt.Equals, "false")
	c.Assert(req.Form["payment_intent_data[metadata][full_name]"], qt.Equals, "Ada Lovelace")
}

func TestCreateCheckoutSessionProviderError(t *testing.T) {
	c := qt.New(t)

	_, client := newFakeStripe(c, func(w http.ResponseWriter, _ *http.Request) {
		writeStripeError(w, http.StatusBadRequest, "No such price: 'price_123'")
	})

	_, err := client.CreateCheckoutSession(context.Background(), &CheckoutSessionParams{CustomerEmail: "a@b.co"})
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(HasCode(err, CodeAPICallFailed), qt.IsTrue)
	c.Assert(ProviderMessage(err), qt.Equals, "No such price: 'price_123'")
}

func TestCheckoutSession(t *testing.T) {
	c := qt.New(t)

	_, client := newFakeStripe(c, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions/cs_paid" {
			writeStripeError(w, http.StatusNotFound, "No such checkout.session: 'cs_unknown'")
			return
		}
		_, _ = w.Write([]byte(`{
			"id":"cs_paid","object":"checkout.session","payment_status":"paid",
			"amount_total":4900,"currency":"eur",
			"customer_details":{"email":"a@b.co","name":"Ada Lovelace"},
			"metadata":{"full_name":"Ada Lovelace"}
		}`))
	})

	session, err := client.CheckoutSession(context.Background(), "cs_paid")
	c.Assert(err, qt.IsNil)
	c.Assert(IsPaid(session), qt.IsTrue)
	c.Assert(Summarize(session), qt.DeepEquals, &SessionSummary{
		ID:          "cs_paid",
		Email:       "a@b.co",
		FirstName:   "Ada",
		AmountTotal: 49,
		Currency:    "EUR",
	})

	_, err = client.CheckoutSession(context.Background(), "cs_unknown")
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(ProviderMessage(err), qt.Equals, "No such checkout.session: 'cs_unknown'")
}

func TestPaymentIntentSyncFlag(t *testing.T) {
	c := qt.New(t)

	metadata := map[string]string{"kit_sync_completed": "false"}
	var mu sync.Mutex
	fake, client := newFakeStripe(c, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method == http.MethodPost {
			for k := range r.PostForm {
				if key, ok := strings.CutPrefix(k, "metadata["); ok {
					metadata[strings.TrimSuffix(key, "]")] = r.PostForm.Get(k)
				}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "pi_1",
			"object":   "payment_intent",
			"metadata": metadata,
		})
	})
	ctx := context.Background()

	synced, err := client.SyncState(ctx, "pi_1")
	c.Assert(err, qt.IsNil)
	c.Assert(synced, qt.IsFalse)

	c.Assert(client.MarkSynced(ctx, "pi_1", map[string]string{MetadataSequenceID: "seq_9"}), qt.IsNil)

	synced, err = client.SyncState(ctx, "pi_1")
	c.Assert(err, qt.IsNil)
	c.Assert(synced, qt.IsTrue)

	c.Assert(fake.requests, qt.HasLen, 3)
	update := fake.requests[1]
	c.Assert(update.Method, qt.Equals, http.MethodPost)
	c.Assert(update.Path, qt.Equals, "/v1/payment_intents/pi_1")
	c.Assert(update.Form["metadata[kit_sync_completed]"], qt.Equals, "true")
	c.Assert(update.Form["metadata[kit_sequence_id]"], qt.Equals, "seq_9")
	c.Assert(update.IdempotencyKey, qt.Equals, SyncIdempotencyKey("pi_1"))
	c.Assert(SyncIdempotencyKey("pi_1"), qt.Not(qt.Equals), SyncIdempotencyKey("pi_2"))
}
