package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/checkout-sync/api"
	"github.com/vocdoni/checkout-sync/kitsync"
	"github.com/vocdoni/checkout-sync/stripe"
	"github.com/vocdoni/checkout-sync/subscribers"
	"go.vocdoni.io/dvote/log"
)

func main() {
	// a local .env file is optional, the deployment environment wins
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		panic(err)
	}
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.String("stripe-secret-key", "", "Stripe API secret key")
	flag.String("stripe-webhook-secret", "", "Stripe webhook signing secret")
	flag.String("stripe-price-id", "", "Stripe price charged by the checkout sessions")
	flag.String("stripe-api-url", "", "Stripe API base URL override")
	flag.String("site-url", "", "public site URL used to build the success and cancel URLs")
	flag.String("checkout-source", stripe.DefaultSource, "source tag stored in the session metadata")
	flag.String("sync-strategy", string(kitsync.StrategyPaymentIntent), "replay detection: payment-intent or none")
	flag.String("subscriber-backend", subscribers.BackendKitV4, "subscriber platform: kit-v4, kit-v3 or sendgrid")
	flag.String("subscriber-api-url", "", "subscriber platform API base URL override")
	flag.String("kit-api-key", "", "subscriber platform API key")
	flag.String("kit-api-secret", "", "subscriber platform API secret (kit-v3 only)")
	flag.String("kit-tag-id", "", "tag applied to every paying customer")
	flag.String("kit-sequence-id", "", "sequence every paying customer is enrolled in")
	// parse flags
	flag.Parse()
	// initialize Viper, flag names map to env vars such as STRIPE_SECRET_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	log.Init(viper.GetString("log-level"), "stdout", nil)
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	strategy, err := kitsync.ParseStrategy(viper.GetString("sync-strategy"))
	if err != nil {
		log.Fatal(err)
	}
	stripeConf := &stripe.Config{
		SecretKey:     viper.GetString("stripe-secret-key"),
		WebhookSecret: viper.GetString("stripe-webhook-secret"),
		PriceID:       viper.GetString("stripe-price-id"),
		SiteURL:       viper.GetString("site-url"),
		Source:        viper.GetString("checkout-source"),
		APIURL:        viper.GetString("stripe-api-url"),
		TrackSync:     strategy == kitsync.StrategyPaymentIntent,
	}
	subConf := &subscribers.Config{
		Backend:    viper.GetString("subscriber-backend"),
		APIKey:     viper.GetString("kit-api-key"),
		APISecret:  viper.GetString("kit-api-secret"),
		BaseURL:    viper.GetString("subscriber-api-url"),
		TagID:      viper.GetString("kit-tag-id"),
		SequenceID: viper.GetString("kit-sequence-id"),
	}
	// missing settings are reported per request, the server still starts
	for _, missing := range [][]string{stripeConf.MissingForCheckout(), stripeConf.MissingForWebhook(), subConf.Missing()} {
		if len(missing) > 0 {
			log.Warnw("incomplete configuration", "missing", strings.Join(missing, ", "))
		}
	}
	// create the local API server
	server, err := api.New(&api.Config{
		Host:        host,
		Port:        port,
		Stripe:      stripeConf,
		Subscribers: subConf,
		Strategy:    strategy,
	})
	if err != nil {
		log.Fatalf("could not create the API server: %v", err)
	}
	server.Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port,
		"backend", subConf.Backend, "strategy", strategy)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
