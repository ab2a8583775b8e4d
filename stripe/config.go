package stripe

import "strings"

// Environment names of the payment provider settings. They are also the names
// reported back when a handler refuses to run because one of them is missing.
const (
	EnvSecretKey     = "STRIPE_SECRET_KEY"
	EnvWebhookSecret = "STRIPE_WEBHOOK_SECRET"
	EnvPriceID       = "STRIPE_PRICE_ID"
	EnvSiteURL       = "SITE_URL"
)

// DefaultSource is the static tag stored in the session metadata when no other
// source is configured.
const DefaultSource = "website"

// Config holds the Stripe configuration
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	SiteURL       string
	Source        string
	// APIURL overrides the Stripe API base URL, empty means the default.
	APIURL string
	// TrackSync stores the kit_sync_completed=false flag on the payment
	// intent of every new session so the webhook can detect replays.
	TrackSync bool
}

// MissingForCheckout returns the names of the settings required to create
// checkout sessions that are not set.
func (c *Config) MissingForCheckout() []string {
	return missing(map[string]string{
		EnvSecretKey: c.SecretKey,
		EnvPriceID:   c.PriceID,
		EnvSiteURL:   c.SiteURL,
	}, EnvSecretKey, EnvPriceID, EnvSiteURL)
}

// MissingForWebhook returns the names of the settings required to verify
// webhook events that are not set.
func (c *Config) MissingForWebhook() []string {
	return missing(map[string]string{
		EnvSecretKey:     c.SecretKey,
		EnvWebhookSecret: c.WebhookSecret,
	}, EnvSecretKey, EnvWebhookSecret)
}

// MissingForStatus returns the names of the settings required to look up
// checkout sessions that are not set.
func (c *Config) MissingForStatus() []string {
	return missing(map[string]string{EnvSecretKey: c.SecretKey}, EnvSecretKey)
}

// SiteBaseURL returns the configured site URL without its trailing slash.
// Only one slash is removed.
func (c *Config) SiteBaseURL() string {
	return strings.TrimSuffix(strings.TrimSpace(c.SiteURL), "/")
}

// missing keeps the order given by names.
func missing(values map[string]string, names ...string) []string {
	var out []string
	for _, name := range names {
		if strings.TrimSpace(values[name]) == "" {
			out = append(out, name)
		}
	}
	return out
}
