package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/salpyeo/dream/pkg/audio"
	"github.com/salpyeo/dream/pkg/funcapp"
	"github.com/salpyeo/dream/pkg/realtime"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".dream"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config holds the named contexts of a CLI app
type Config struct {
	// AppName is the application name, e.g. "dream"
	AppName string `yaml:"-"`

	// CurrentContext is the name of the active context
	CurrentContext string `yaml:"current_context,omitempty"`

	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context is one deployment of the assistant: where the realtime middle
// tier lives and how to reach the function app.
type Context struct {
	Name string `yaml:"name"`

	// Realtime locates the realtime socket.
	Realtime realtime.Endpoint `yaml:"realtime,omitempty"`

	// Transcription enables transcription of the user's audio.
	Transcription *Transcription `yaml:"transcription,omitempty"`

	// FuncApp configures the function-app client. Optional for talk.
	FuncApp funcapp.Config `yaml:"funcapp,omitempty"`

	// InputFormat is the PCM format of recorded input. Default 24 kHz mono.
	InputFormat audio.Format `yaml:"input_format,omitempty"`

	// Timeout is the function-app request timeout in seconds (optional)
	Timeout int `yaml:"timeout,omitempty"`

	// MaxRetries is the number of retries of failed function-app calls
	MaxRetries int `yaml:"max_retries,omitempty"`
}

// Transcription configures input audio transcription.
type Transcription struct {
	Enabled  bool   `yaml:"enabled"`
	Model    string `yaml:"model,omitempty"`
	Language string `yaml:"language,omitempty"`
}

// LoadConfig loads or creates configuration for the specified app
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		paths, err := NewPaths(appName)
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = paths.ConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		ctx.Name = name
	}
	cfg.AppName = appName
	cfg.configPath = configPath
	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	// Contexts carry keys.
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// AddContext adds or replaces a context
func (c *Config) AddContext(name string, ctx *Context) error {
	if name == "" {
		return errors.New("context name is required")
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context, or the current one if name is
// empty
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return nil, errors.New("no current context set")
	}
	return c.GetContext(c.CurrentContext)
}

// ListContexts returns all context names, sorted
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate fails when the realtime endpoint is incomplete, or when a
// function app is configured but incomplete.
func (ctx *Context) Validate() error {
	var errs []error
	if _, err := ctx.Realtime.URL(); err != nil {
		errs = append(errs, err)
	}
	if ctx.HasFuncApp() {
		if err := ctx.FuncApp.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if ctx.InputFormat.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("input_format: invalid sample rate %d", ctx.InputFormat.SampleRate))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("context %q: %w", ctx.Name, err)
	}
	return nil
}

// HasFuncApp reports whether any function-app setting is present.
func (ctx *Context) HasFuncApp() bool {
	f := ctx.FuncApp
	return f.MasterKey != "" || f.BaseURL != "" || len(f.Endpoints) > 0
}

// FuncAppClient builds a function-app client from the context.
func (ctx *Context) FuncAppClient() (*funcapp.Client, error) {
	var opts []funcapp.Option
	if ctx.MaxRetries > 0 {
		opts = append(opts, funcapp.WithRetry(ctx.MaxRetries))
	}
	if ctx.Timeout > 0 {
		opts = append(opts, funcapp.WithHTTPClient(&http.Client{Timeout: time.Duration(ctx.Timeout) * time.Second}))
	}
	c, err := funcapp.NewClient(ctx.FuncApp, opts...)
	if err != nil {
		return nil, fmt.Errorf("context %q: %w", ctx.Name, err)
	}
	return c, nil
}

// RealtimeOptions returns the controller options implied by the context.
func (ctx *Context) RealtimeOptions() []realtime.Option {
	t := ctx.Transcription
	if t == nil || !t.Enabled {
		return nil
	}
	return []realtime.Option{
		realtime.WithInputAudioTranscription(true),
		realtime.WithTranscription(t.Model, t.Language),
	}
}

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// Masked returns a copy of the context with secrets masked for display.
func (ctx *Context) Masked() *Context {
	m := *ctx
	m.Realtime.APIKey = MaskAPIKey(m.Realtime.APIKey)
	m.FuncApp.MasterKey = MaskAPIKey(m.FuncApp.MasterKey)
	return &m
}
