package api

import (
	"net/http"
	"strings"

	"github.com/vocdoni/checkout-sync/errors"
	"github.com/vocdoni/checkout-sync/stripe"
	"github.com/vocdoni/checkout-sync/validator"
	"go.vocdoni.io/dvote/log"
)

// CheckoutRequest is the body of the checkout creation request. Both the
// snake_case and camelCase spellings of the name fields are accepted.
type CheckoutRequest struct {
	Email        string `json:"email" validate:"required,emailshape"`
	FullName     string `json:"full_name" validate:"max=200"`
	FullNameAlt  string `json:"fullName" validate:"max=200"`
	FirstName    string `json:"first_name" validate:"max=200"`
	FirstNameAlt string `json:"firstName" validate:"max=200"`
	Objective    string `json:"objective" validate:"max=500"`
}

// Normalize trims every field and lower-cases the email.
func (r *CheckoutRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
	r.FullNameAlt = strings.TrimSpace(r.FullNameAlt)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.FirstNameAlt = strings.TrimSpace(r.FirstNameAlt)
	r.Objective = strings.TrimSpace(r.Objective)
}

// Name returns the first non-empty name alias.
func (r *CheckoutRequest) Name() string {
	for _, name := range []string{r.FullName, r.FullNameAlt, r.FirstName, r.FirstNameAlt} {
		if name != "" {
			return name
		}
	}
	return ""
}

// CheckoutResponse carries the hosted checkout page the client redirects to.
type CheckoutResponse struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// createCheckoutHandler godoc
//
//	@Summary		Create a checkout session
//	@Description	Create a one-time payment hosted checkout session for the configured price.
//	@Description	The customer name and objective are stored as session metadata.
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CheckoutRequest	true	"Customer email and name"
//	@Success		200		{object}	CheckoutResponse
//	@Failure		400		{object}	errors.Error	"Invalid email or body"
//	@Failure		405		{object}	errors.Error	"Method not allowed"
//	@Failure		500		{object}	errors.Error	"Missing configuration or payment provider error"
//	@Router			/checkout [post]
func (a *API) createCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	if missing := a.stripeConf.MissingForCheckout(); len(missing) > 0 {
		errors.ErrMissingConfiguration.With(strings.Join(missing, ", ")).Write(w)
		return
	}
	req, err := validator.Model[CheckoutRequest](r.Context())
	if err != nil {
		errors.ErrMalformedBody.WithErr(err).Write(w)
		return
	}

	session, err := a.provider.CreateCheckoutSession(r.Context(), &stripe.CheckoutSessionParams{
		CustomerEmail: req.Email,
		FullName:      req.Name(),
		Objective:     req.Objective,
	})
	if err != nil {
		errors.ErrStripeError.WithMessage(stripe.ProviderMessage(err)).Write(w)
		return
	}
	log.Infow("checkout session created", "session", session.ID)
	httpWriteJSON(w, http.StatusOK, &CheckoutResponse{URL: session.URL, ID: session.ID})
}
