package subscribers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// KitV4DefaultURL is the base URL of the Kit v4 API.
const KitV4DefaultURL = "https://api.kit.com/v4"

// KitV4 talks to the Kit v4 API, authenticated with the X-Kit-Api-Key header.
// Subscribers are created (or updated, keyed by email) before being tagged or
// added to a sequence.
type KitV4 struct {
	caller *jsonCaller
}

// NewKitV4 returns a Kit v4 backend. An empty baseURL selects KitV4DefaultURL.
func NewKitV4(baseURL, apiKey string, client *http.Client) *KitV4 {
	if baseURL == "" {
		baseURL = KitV4DefaultURL
	}
	return &KitV4{caller: &jsonCaller{
		backend: BackendKitV4,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		headers: map[string]string{"X-Kit-Api-Key": apiKey},
		client:  client,
	}}
}

type kitV4Subscriber struct {
	EmailAddress string            `json:"email_address"`
	FirstName    string            `json:"first_name,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

// Name implements Backend.
func (*KitV4) Name() string { return BackendKitV4 }

// Upsert implements Backend with POST /subscribers.
func (k *KitV4) Upsert(ctx context.Context, sub *Subscriber) error {
	return k.caller.post(ctx, "upsert", "/subscribers", &kitV4Subscriber{
		EmailAddress: sub.Email,
		FirstName:    sub.FirstName,
		Fields:       sub.Fields,
	})
}

// Tag implements Backend with POST /tags/{id}/subscribers.
func (k *KitV4) Tag(ctx context.Context, tagID string, sub *Subscriber) error {
	return k.caller.post(ctx, "tag", "/tags/"+url.PathEscape(tagID)+"/subscribers",
		&kitV4Subscriber{EmailAddress: sub.Email})
}

// EnrollSequence implements Backend with POST /sequences/{id}/subscribers.
func (k *KitV4) EnrollSequence(ctx context.Context, sequenceID string, sub *Subscriber) error {
	return k.caller.post(ctx, "sequence", "/sequences/"+url.PathEscape(sequenceID)+"/subscribers",
		&kitV4Subscriber{EmailAddress: sub.Email, FirstName: sub.FirstName})
}
