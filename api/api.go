// Package api provides the HTTP endpoints of the checkout bridge: hosted
// checkout creation, the Stripe webhook receiver and the session status poll.
//
//	@title			Checkout Sync API
//	@version		1.0
//	@description	Bridges Stripe checkout payments to the email-marketing platform
//	@BasePath		/
//	@schemes		http https
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/vocdoni/checkout-sync/errors"
	"github.com/vocdoni/checkout-sync/kitsync"
	"github.com/vocdoni/checkout-sync/stripe"
	"github.com/vocdoni/checkout-sync/subscribers"
	"github.com/vocdoni/checkout-sync/validator"
	"go.vocdoni.io/dvote/log"
)

// PaymentProvider is the subset of the Stripe client used by the handlers.
type PaymentProvider interface {
	kitsync.PaymentIntents
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
	CheckoutSession(ctx context.Context, sessionID string) (*stripeapi.CheckoutSession, error)
	ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error)
}

// Config holds the API settings. Provider and Backend are built from Stripe
// and Subscribers when nil.
type Config struct {
	Host        string
	Port        int
	Stripe      *stripe.Config
	Subscribers *subscribers.Config
	Strategy    kitsync.Strategy
	Provider    PaymentProvider
	Backend     subscribers.Backend
}

// API type represents the API HTTP server.
type API struct {
	host        string
	port        int
	stripeConf  *stripe.Config
	subConf     *subscribers.Config
	provider    PaymentProvider
	syncer      *kitsync.Syncer
	validator   *validator.Validator
	router      *chi.Mux
	backendName string
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) (*API, error) {
	if conf == nil || conf.Stripe == nil || conf.Subscribers == nil {
		return nil, fmt.Errorf("stripe and subscribers configuration are required")
	}
	provider := conf.Provider
	if provider == nil {
		provider = stripe.NewClient(conf.Stripe)
	}
	backend := conf.Backend
	if backend == nil {
		var err error
		if backend, err = subscribers.New(conf.Subscribers); err != nil {
			return nil, err
		}
	}
	a := &API{
		host:       conf.Host,
		port:       conf.Port,
		stripeConf: conf.Stripe,
		subConf:    conf.Subscribers,
		provider:   provider,
		syncer: kitsync.New(backend, provider, kitsync.Config{
			Strategy:   conf.Strategy,
			TagID:      conf.Subscribers.TagID,
			SequenceID: conf.Subscribers.SequenceID,
		}),
		validator:   validator.New(),
		backendName: backend.Name(),
	}
	a.router = a.initRouter()
	return a, nil
}

// Router returns the HTTP handler serving every endpoint.
func (a *API) Router() http.Handler {
	return a.router
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.ErrMethodNotAllowed.Write(w)
	})

	r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(".")); err != nil {
			log.Warnw("failed to write ping response", "error", err)
		}
	})

	// checkout creation is called from the browser
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		log.Infow("new route", "method", "POST", "path", checkoutEndpoint)
		r.With(a.validator.Body(CheckoutRequest{}, errors.ErrEmailMalformed)).
			Post(checkoutEndpoint, a.createCheckoutHandler)
		r.Options(checkoutEndpoint, preflightHandler)
	})

	log.Infow("new route", "method", "POST", "path", webhookEndpoint, "backend", a.backendName)
	r.Post(webhookEndpoint, a.webhookHandler)
	log.Infow("new route", "method", "GET", "path", sessionStatusEndpoint)
	r.Get(sessionStatusEndpoint, a.sessionStatusHandler)
	return r
}
