// Package subscribers forwards paying customers to an email-marketing
// platform. Each supported API version is a Backend implementation; the
// webhook only depends on the interface.
package subscribers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Backend names accepted in the configuration.
const (
	BackendKitV4    = "kit-v4"
	BackendKitV3    = "kit-v3"
	BackendSendGrid = "sendgrid"
)

// Environment names of the subscriber settings, reported when missing.
const (
	EnvAPIKey     = "KIT_API_KEY"
	EnvTagID      = "KIT_TAG_ID"
	EnvSequenceID = "KIT_SEQUENCE_ID"
)

// DefaultTimeout bounds every outbound call to the subscriber platform.
const DefaultTimeout = 10 * time.Second

// ErrUnsupported is returned by backends that cannot perform an operation.
var ErrUnsupported = errors.New("operation not supported by subscriber backend")

// Subscriber is the identity forwarded to the platform. Email is the key of
// the remote record.
type Subscriber struct {
	Email     string
	FirstName string
	Fields    map[string]string
}

// Backend is one version of the subscriber platform API. Calls are made in
// order by the caller: Upsert first, then Tag and/or EnrollSequence.
type Backend interface {
	Name() string
	Upsert(ctx context.Context, sub *Subscriber) error
	Tag(ctx context.Context, tagID string, sub *Subscriber) error
	EnrollSequence(ctx context.Context, sequenceID string, sub *Subscriber) error
}

// Config selects and configures a Backend.
type Config struct {
	Backend    string
	APIKey     string
	APISecret  string
	BaseURL    string
	TagID      string
	SequenceID string
	HTTPClient *http.Client
}

// Missing returns the names of the required settings that are not set: the
// API key and at least one of the tag and the sequence.
func (c *Config) Missing() []string {
	var out []string
	if strings.TrimSpace(c.APIKey) == "" {
		out = append(out, EnvAPIKey)
	}
	if strings.TrimSpace(c.TagID) == "" && strings.TrimSpace(c.SequenceID) == "" {
		out = append(out, EnvTagID+" or "+EnvSequenceID)
	}
	return out
}

// New returns the Backend named in the configuration, kit-v4 when empty.
func New(conf *Config) (Backend, error) {
	client := conf.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	switch conf.Backend {
	case "", BackendKitV4:
		return NewKitV4(conf.BaseURL, conf.APIKey, client), nil
	case BackendKitV3:
		return NewKitV3(conf.BaseURL, conf.APIKey, conf.APISecret, client), nil
	case BackendSendGrid:
		if conf.SequenceID != "" {
			return nil, fmt.Errorf("%s backend cannot enroll sequences, unset %s", BackendSendGrid, EnvSequenceID)
		}
		return NewSendGrid(conf.BaseURL, conf.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown subscriber backend %q", conf.Backend)
	}
}
