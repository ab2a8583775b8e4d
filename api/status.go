package api

import (
	"net/http"
	"strings"

	"github.com/vocdoni/checkout-sync/errors"
	"github.com/vocdoni/checkout-sync/stripe"
	"go.vocdoni.io/dvote/log"
)

// SessionStatusResponse is the body returned to the thank-you page. The
// session fields are only present when OK is true.
type SessionStatusResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	*stripe.SessionSummary
}

// sessionStatusHandler godoc
//
//	@Summary		Checkout session status
//	@Description	Return a sanitized summary of a paid checkout session.
//	@Tags			checkout
//	@Produce		json
//	@Param			session_id	query		string	true	"Checkout session ID"
//	@Success		200			{object}	SessionStatusResponse
//	@Failure		400			{object}	errors.Error	"Missing session_id or unknown session"
//	@Failure		403			{object}	SessionStatusResponse	"Payment not completed"
//	@Failure		405			{object}	errors.Error	"Method not allowed"
//	@Failure		500			{object}	errors.Error	"Missing configuration"
//	@Router			/session-status [get]
func (a *API) sessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	if missing := a.stripeConf.MissingForStatus(); len(missing) > 0 {
		errors.ErrMissingConfiguration.With(strings.Join(missing, ", ")).Write(w)
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		errors.ErrMissingSessionID.Write(w)
		return
	}

	session, err := a.provider.CheckoutSession(r.Context(), sessionID)
	if err != nil {
		errors.ErrSessionLookup.WithMessage(stripe.ProviderMessage(err)).Write(w)
		return
	}
	if !stripe.IsPaid(session) {
		log.Infow("session status: payment not completed", "session", session.ID, "status", session.PaymentStatus)
		httpWriteJSON(w, errors.ErrSessionNotPaid.HTTPstatus, &SessionStatusResponse{
			Error: errors.ErrSessionNotPaid.Error(),
		})
		return
	}
	httpWriteJSON(w, http.StatusOK, &SessionStatusResponse{OK: true, SessionSummary: stripe.Summarize(session)})
}
