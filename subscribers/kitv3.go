package subscribers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.vocdoni.io/dvote/log"
)

// KitV3DefaultURL is the base URL of the legacy ConvertKit v3 API.
const KitV3DefaultURL = "https://api.convertkit.com/v3"

// KitV3 talks to the legacy ConvertKit v3 API. The key travels in the body and
// the tag or sequence in the path; subscribing to either creates the
// subscriber, so there is no separate create call.
type KitV3 struct {
	apiKey    string
	apiSecret string
	caller    *jsonCaller
}

// NewKitV3 returns a Kit v3 backend. An empty baseURL selects KitV3DefaultURL.
func NewKitV3(baseURL, apiKey, apiSecret string, client *http.Client) *KitV3 {
	if baseURL == "" {
		baseURL = KitV3DefaultURL
	}
	return &KitV3{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		caller: &jsonCaller{
			backend: BackendKitV3,
			baseURL: strings.TrimSuffix(baseURL, "/"),
			client:  client,
		},
	}
}

type kitV3Subscribe struct {
	APIKey    string            `json:"api_key"`
	APISecret string            `json:"api_secret,omitempty"`
	Email     string            `json:"email"`
	FirstName string            `json:"first_name,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Name implements Backend.
func (*KitV3) Name() string { return BackendKitV3 }

// Upsert implements Backend. It sends nothing: the subscribe calls that
// follow create or update the subscriber.
func (*KitV3) Upsert(_ context.Context, sub *Subscriber) error {
	log.Debugw("kit v3 creates subscribers on subscribe, skipping upsert", "email", sub.Email)
	return nil
}

// Tag implements Backend with POST /tags/{id}/subscribe.
func (k *KitV3) Tag(ctx context.Context, tagID string, sub *Subscriber) error {
	return k.caller.post(ctx, "tag", "/tags/"+url.PathEscape(tagID)+"/subscribe", k.subscribe(sub))
}

// EnrollSequence implements Backend with POST /sequences/{id}/subscribe.
func (k *KitV3) EnrollSequence(ctx context.Context, sequenceID string, sub *Subscriber) error {
	return k.caller.post(ctx, "sequence", "/sequences/"+url.PathEscape(sequenceID)+"/subscribe", k.subscribe(sub))
}

func (k *KitV3) subscribe(sub *Subscriber) *kitV3Subscribe {
	return &kitV3Subscribe{
		APIKey:    k.apiKey,
		APISecret: k.apiSecret,
		Email:     sub.Email,
		FirstName: sub.FirstName,
		Fields:    sub.Fields,
	}
}
