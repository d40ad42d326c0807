package funcapp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Endpoint names one operation of the service.
type Endpoint string

const (
	EndpointGetHist        Endpoint = "get_hist"
	EndpointSetHist        Endpoint = "set_hist"
	EndpointHandleSchedule Endpoint = "handle_schedule_with_gpt"
	EndpointSetSchedule    Endpoint = "set_schedule"
	EndpointGetTodo        Endpoint = "get_todo"
	EndpointInit           Endpoint = "init"
	EndpointSetMessage     Endpoint = "set_message"
	EndpointCreateImage    Endpoint = "create_image"
	EndpointSignUp         Endpoint = "sign_up"
	EndpointGetAudioFile   Endpoint = "get_audiofile"
)

// AllEndpoints lists every known endpoint.
var AllEndpoints = []Endpoint{
	EndpointGetHist,
	EndpointSetHist,
	EndpointHandleSchedule,
	EndpointSetSchedule,
	EndpointGetTodo,
	EndpointInit,
	EndpointSetMessage,
	EndpointCreateImage,
	EndpointSignUp,
	EndpointGetAudioFile,
}

// Config configures a Client.
type Config struct {
	// MasterKey is sent as the "code" query parameter. Required.
	MasterKey string `yaml:"master_key" json:"master_key"`

	// BaseURL, when set, serves every endpoint not listed in Endpoints at
	// <BaseURL>/api/<endpoint>.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// Endpoints maps an endpoint to its full URL.
	Endpoints map[Endpoint]string `yaml:"endpoints,omitempty" json:"endpoints,omitempty"`

	// UserID is sent as the "user_id" query parameter when set.
	UserID string `yaml:"user_id,omitempty" json:"user_id,omitempty"`
}

// Validate reports missing or malformed settings.
func (c *Config) Validate() error {
	var errs []error
	if c.MasterKey == "" {
		errs = append(errs, errors.New("funcapp: master_key is required"))
	}
	if c.BaseURL != "" {
		if err := checkURL(c.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("funcapp: base_url: %w", err))
		}
	}
	for ep, u := range c.Endpoints {
		if u == "" {
			continue
		}
		if err := checkURL(u); err != nil {
			errs = append(errs, fmt.Errorf("funcapp: %s url: %w", ep, err))
		}
	}
	return errors.Join(errs...)
}

// URL returns the URL of ep without query parameters.
func (c *Config) URL(ep Endpoint) (string, error) {
	if u := c.Endpoints[ep]; u != "" {
		return u, nil
	}
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/") + "/api/" + string(ep), nil
	}
	return "", fmt.Errorf("funcapp: %s URL is not configured", ep)
}

func checkURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
