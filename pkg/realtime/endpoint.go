package realtime

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultAPIVersion is the Azure OpenAI realtime API version used for direct
// connections.
const DefaultAPIVersion = "2024-10-01-preview"

// Endpoint describes where the realtime socket connects.
//
// By default the client talks to the middle tier at <BaseURL>/realtime,
// which holds the model credentials and injects tool responses. With Direct
// set, the client bypasses the middle tier and connects to Azure OpenAI.
type Endpoint struct {
	// BaseURL is the middle tier base URL (http, https, ws or wss).
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// Direct bypasses the middle tier.
	Direct bool `yaml:"direct,omitempty" json:"direct,omitempty"`

	// AzureEndpoint is the Azure OpenAI resource endpoint (Direct only).
	AzureEndpoint string `yaml:"azure_endpoint,omitempty" json:"azure_endpoint,omitempty"`

	// APIKey is the Azure OpenAI key (Direct only).
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty"`

	// Deployment is the realtime model deployment name (Direct only).
	Deployment string `yaml:"deployment,omitempty" json:"deployment,omitempty"`

	// APIVersion defaults to DefaultAPIVersion.
	APIVersion string `yaml:"api_version,omitempty" json:"api_version,omitempty"`
}

// URL returns the websocket URL for the endpoint.
func (e Endpoint) URL() (string, error) {
	if !e.Direct {
		if e.BaseURL == "" {
			return "", errors.New("realtime: base URL is required")
		}
		u, err := wsURL(e.BaseURL)
		if err != nil {
			return "", err
		}
		u.Path = strings.TrimSuffix(u.Path, "/") + "/realtime"
		return u.String(), nil
	}

	switch {
	case e.AzureEndpoint == "":
		return "", errors.New("realtime: azure endpoint is required for direct mode")
	case e.APIKey == "":
		return "", errors.New("realtime: api key is required for direct mode")
	case e.Deployment == "":
		return "", errors.New("realtime: deployment is required for direct mode")
	}
	u, err := wsURL(e.AzureEndpoint)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/openai/realtime"

	version := e.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	q := u.Query()
	q.Set("api-key", e.APIKey)
	q.Set("deployment", e.Deployment)
	q.Set("api-version", version)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// wsURL parses raw and maps http(s) schemes to ws(s).
func wsURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("realtime: invalid url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("realtime: unsupported url scheme %q", u.Scheme)
	}
	return u, nil
}
