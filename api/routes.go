package api

const (
	// GET /ping liveness probe
	pingEndpoint = "/ping"
	// POST /checkout to create a hosted checkout session
	checkoutEndpoint = "/checkout"
	// POST /webhook to receive Stripe events
	webhookEndpoint = "/webhook"
	// GET /session-status?session_id=... to poll a checkout session
	sessionStatusEndpoint = "/session-status"
)
