package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"go.vocdoni.io/dvote/log"
)

const sendGridContactsEndpoint = "/v3/marketing/contacts"

// SendGrid keeps subscribers as SendGrid Marketing contacts. Tags map to
// contact lists; sequences have no equivalent.
type SendGrid struct {
	apiKey string
	host   string
}

// NewSendGrid returns a SendGrid backend. An empty host selects the public
// SendGrid API.
func NewSendGrid(host, apiKey string) *SendGrid {
	return &SendGrid{apiKey: apiKey, host: strings.TrimSuffix(host, "/")}
}

type sendGridContact struct {
	Email        string            `json:"email"`
	FirstName    string            `json:"first_name,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

type sendGridUpsert struct {
	ListIDs  []string           `json:"list_ids,omitempty"`
	Contacts []*sendGridContact `json:"contacts"`
}

// Name implements Backend.
func (*SendGrid) Name() string { return BackendSendGrid }

// Upsert implements Backend with PUT /v3/marketing/contacts. Field keys must
// be SendGrid custom field ids.
func (s *SendGrid) Upsert(ctx context.Context, sub *Subscriber) error {
	return s.put(ctx, "upsert", nil, sub)
}

// Tag implements Backend by upserting the contact into the list tagID.
func (s *SendGrid) Tag(ctx context.Context, tagID string, sub *Subscriber) error {
	return s.put(ctx, "tag", []string{tagID}, sub)
}

// EnrollSequence implements Backend, it always fails with ErrUnsupported.
func (*SendGrid) EnrollSequence(_ context.Context, sequenceID string, _ *Subscriber) error {
	return fmt.Errorf("sequence %s: %w", sequenceID, ErrUnsupported)
}

func (s *SendGrid) put(ctx context.Context, operation string, listIDs []string, sub *Subscriber) error {
	body, err := json.Marshal(&sendGridUpsert{
		ListIDs: listIDs,
		Contacts: []*sendGridContact{{
			Email:        sub.Email,
			FirstName:    sub.FirstName,
			CustomFields: sub.Fields,
		}},
	})
	if err != nil {
		return fmt.Errorf("could not encode %s request: %w", operation, err)
	}
	request := sendgrid.GetRequest(s.apiKey, sendGridContactsEndpoint, s.host)
	request.Method = http.MethodPut
	request.Body = body
	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("%s %s request failed: %w", BackendSendGrid, operation, err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &APIError{
			Backend:    BackendSendGrid,
			Operation:  operation,
			StatusCode: response.StatusCode,
			Body:       response.Body,
		}
	}
	log.Debugw("subscriber api call", "backend", BackendSendGrid, "operation", operation, "status", response.StatusCode)
	return nil
}
