package realtime

import (
	"net/url"
	"testing"
)

func TestEndpoint_MiddleTier(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8765", "ws://localhost:8765/realtime"},
		{"https://dream.example.com/", "wss://dream.example.com/realtime"},
		{"wss://dream.example.com/api", "wss://dream.example.com/api/realtime"},
	}
	for _, tt := range tests {
		got, err := Endpoint{BaseURL: tt.base}.URL()
		if err != nil {
			t.Fatalf("URL(%q): %v", tt.base, err)
		}
		if got != tt.want {
			t.Errorf("URL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestEndpoint_Direct(t *testing.T) {
	got, err := Endpoint{
		Direct:        true,
		AzureEndpoint: "https://my-aoai.openai.azure.com",
		APIKey:        "secret",
		Deployment:    "gpt-4o-realtime-preview",
	}.URL()
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse %q: %v", got, err)
	}
	if u.Scheme != "wss" || u.Host != "my-aoai.openai.azure.com" || u.Path != "/openai/realtime" {
		t.Errorf("URL = %q", got)
	}
	q := u.Query()
	if q.Get("api-key") != "secret" {
		t.Errorf("api-key = %q", q.Get("api-key"))
	}
	if q.Get("deployment") != "gpt-4o-realtime-preview" {
		t.Errorf("deployment = %q", q.Get("deployment"))
	}
	if q.Get("api-version") != DefaultAPIVersion {
		t.Errorf("api-version = %q", q.Get("api-version"))
	}
}

func TestEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name string
		e    Endpoint
	}{
		{"empty base", Endpoint{}},
		{"bad scheme", Endpoint{BaseURL: "ftp://x"}},
		{"direct no endpoint", Endpoint{Direct: true, APIKey: "k", Deployment: "d"}},
		{"direct no key", Endpoint{Direct: true, AzureEndpoint: "https://x", Deployment: "d"}},
		{"direct no deployment", Endpoint{Direct: true, AzureEndpoint: "https://x", APIKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.e.URL(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
