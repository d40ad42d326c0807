package cli

import (
	"errors"
	"fmt"

	"github.com/salpyeo/dream/pkg/docstore"
	"github.com/salpyeo/dream/pkg/funcserver"
	"github.com/salpyeo/dream/pkg/media"
	"github.com/salpyeo/dream/pkg/planner"
)

// DefaultServerAddr is the listen address of serve.
const DefaultServerAddr = ":7071"

// ServerConfig is the file read by serve.
//
//	addr: ":7071"
//	server:
//	  master_key: secret
//	  timezone: Asia/Seoul
//	store:
//	  kind: badger
//	  dir: /var/lib/dream
//	planner:
//	  provider: openai
//	  api_key: sk-...
//	  model: gpt-4o
//	media:
//	  provider: azure
//	  api_key: ...
//	  base_url: https://example.openai.azure.com
//	  image_model: dall-e-3
//	  speech_model: tts
type ServerConfig struct {
	Addr    string            `yaml:"addr,omitempty"`
	Server  funcserver.Config `yaml:"server"`
	Store   docstore.Config   `yaml:"store"`
	Planner *planner.Config   `yaml:"planner,omitempty"`
	Media   *media.Config     `yaml:"media,omitempty"`
}

// LoadServerConfig reads a YAML or JSON server config.
func LoadServerConfig(path string) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := LoadRequest(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultServerAddr
	}
	return &cfg, nil
}

// Validate fails fast on missing keys.
func (c *ServerConfig) Validate() error {
	var errs []error
	if c.Server.MasterKey == "" {
		errs = append(errs, errors.New("server.master_key is required"))
	}
	if c.Planner != nil {
		if err := c.Planner.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Media != nil {
		if err := c.Media.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	return nil
}
