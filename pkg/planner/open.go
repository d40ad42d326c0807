package planner

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

// Providers accepted by Config.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
)

// DefaultAzureAPIVersion is the Azure OpenAI API version used when none is
// configured.
const DefaultAzureAPIVersion = "2024-02-15-preview"

// Config selects a model backend.
type Config struct {
	// Provider is "openai", "azure" or "gemini".
	Provider string `yaml:"provider" json:"provider"`

	APIKey string `yaml:"api_key" json:"api_key"`

	// BaseURL overrides the API endpoint. For azure it is the resource
	// endpoint and is required.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// APIVersion is the Azure OpenAI API version.
	APIVersion string `yaml:"api_version,omitempty" json:"api_version,omitempty"`

	// Model is the model name, or the deployment name for azure.
	Model string `yaml:"model" json:"model"`
}

// Validate reports missing settings.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	case ProviderAzure:
		if c.BaseURL == "" {
			return fmt.Errorf("planner: base_url is required for %s", ProviderAzure)
		}
	default:
		return fmt.Errorf("planner: unknown provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("planner: api_key is required")
	}
	if c.Model == "" {
		return fmt.Errorf("planner: model is required")
	}
	return nil
}

// Open builds the configured Planner.
func Open(ctx context.Context, cfg Config) (Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		client := openai.NewClient(opts...)
		return &OpenAI{Client: &client, Model: cfg.Model}, nil
	case ProviderAzure:
		version := cfg.APIVersion
		if version == "" {
			version = DefaultAzureAPIVersion
		}
		client := openai.NewClient(
			azure.WithEndpoint(cfg.BaseURL, version),
			azure.WithAPIKey(cfg.APIKey),
		)
		return &OpenAI{Client: &client, Model: cfg.Model}, nil
	default:
		cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
		if cfg.BaseURL != "" {
			cc.HTTPOptions.BaseURL = cfg.BaseURL
		}
		client, err := genai.NewClient(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("planner: genai client: %w", err)
		}
		return &Gemini{Client: client, Model: cfg.Model}, nil
	}
}
