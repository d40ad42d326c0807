package media

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

// Providers accepted by Config.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

// DefaultAzureAPIVersion is the Azure OpenAI API version used when none is
// configured.
const DefaultAzureAPIVersion = "2024-02-15-preview"

// Config selects the media backend.
type Config struct {
	// Provider is "openai" or "azure".
	Provider string `yaml:"provider" json:"provider"`

	APIKey string `yaml:"api_key" json:"api_key"`

	// BaseURL overrides the API endpoint. For azure it is the resource
	// endpoint and is required.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// APIVersion is the Azure OpenAI API version.
	APIVersion string `yaml:"api_version,omitempty" json:"api_version,omitempty"`

	ImageModel  string `yaml:"image_model,omitempty" json:"image_model,omitempty"`
	SpeechModel string `yaml:"speech_model,omitempty" json:"speech_model,omitempty"`
	Voice       string `yaml:"voice,omitempty" json:"voice,omitempty"`
}

// Validate reports missing settings.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
	case ProviderAzure:
		if c.BaseURL == "" {
			return fmt.Errorf("media: base_url is required for %s", ProviderAzure)
		}
	default:
		return fmt.Errorf("media: unknown provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("media: api_key is required")
	}
	return nil
}

// Open builds the configured backend.
func Open(cfg Config) (*OpenAI, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var opts []option.RequestOption
	if cfg.Provider == ProviderAzure {
		version := cfg.APIVersion
		if version == "" {
			version = DefaultAzureAPIVersion
		}
		opts = append(opts, azure.WithEndpoint(cfg.BaseURL, version), azure.WithAPIKey(cfg.APIKey))
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
	}
	client := openai.NewClient(opts...)
	return &OpenAI{
		Client:      &client,
		ImageModel:  cfg.ImageModel,
		SpeechModel: cfg.SpeechModel,
		Voice:       cfg.Voice,
	}, nil
}
