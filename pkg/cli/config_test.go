package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/salpyeo/dream/pkg/funcapp"
	"github.com/salpyeo/dream/pkg/realtime"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"1234", "****"},
		{"12345678", "********"},
		{"123456789", "1234*6789"},
		{"sk-1234567890abcdef", "sk-1***********cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := MaskAPIKey(tt.key)
			if got != tt.want {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfigWithPath("dream", filepath.Join(t.TempDir(), "dream", "config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	return cfg
}

func TestLoadConfigWithPath_NewConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "dream", "config.yaml")

	cfg, err := LoadConfigWithPath("dream", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	if cfg.AppName != "dream" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "dream")
	}
	if cfg.Contexts == nil {
		t.Error("Contexts should be initialized")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file should be created")
	}
}

func TestConfig_RoundTrip(t *testing.T) {
	cfg := newTestConfig(t)

	ctx := &Context{
		Realtime:      realtime.Endpoint{BaseURL: "https://assistant.example.com"},
		Transcription: &Transcription{Enabled: true, Language: "en-US"},
		FuncApp: funcapp.Config{
			MasterKey: "secret",
			BaseURL:   "https://funcapp.example.com",
			Endpoints: map[funcapp.Endpoint]string{
				funcapp.EndpointGetTodo: "https://todo.example.com/api/get_todo",
			},
		},
		MaxRetries: 2,
	}
	if err := cfg.AddContext("home", ctx); err != nil {
		t.Fatalf("AddContext error: %v", err)
	}
	if err := cfg.UseContext("home"); err != nil {
		t.Fatalf("UseContext error: %v", err)
	}

	loaded, err := LoadConfigWithPath("dream", cfg.Path())
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	got, err := loaded.ResolveContext("")
	if err != nil {
		t.Fatalf("ResolveContext error: %v", err)
	}
	if got.Name != "home" {
		t.Errorf("Name = %q, want home", got.Name)
	}
	if got.Realtime.BaseURL != "https://assistant.example.com" {
		t.Errorf("Realtime.BaseURL = %q", got.Realtime.BaseURL)
	}
	if got.Transcription == nil || !got.Transcription.Enabled || got.Transcription.Language != "en-US" {
		t.Errorf("Transcription = %+v", got.Transcription)
	}
	if got.FuncApp.Endpoints[funcapp.EndpointGetTodo] != "https://todo.example.com/api/get_todo" {
		t.Errorf("Endpoints = %v", got.FuncApp.Endpoints)
	}
	if got.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", got.MaxRetries)
	}
}

func TestConfig_RoundTrip_FileMode(t *testing.T) {
	cfg := newTestConfig(t)
	info, err := os.Stat(cfg.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestConfig_DeleteContext(t *testing.T) {
	cfg := newTestConfig(t)

	cfg.AddContext("ctx1", &Context{})
	cfg.AddContext("ctx2", &Context{})
	cfg.UseContext("ctx1")

	if err := cfg.DeleteContext("ctx2"); err != nil {
		t.Fatalf("DeleteContext error: %v", err)
	}
	if _, ok := cfg.Contexts["ctx2"]; ok {
		t.Error("Context should be deleted")
	}

	if err := cfg.DeleteContext("ctx1"); err != nil {
		t.Fatalf("DeleteContext error: %v", err)
	}
	if cfg.CurrentContext != "" {
		t.Errorf("CurrentContext should be cleared, got %q", cfg.CurrentContext)
	}

	if err := cfg.DeleteContext("nonexistent"); err == nil {
		t.Error("DeleteContext should fail for a missing context")
	}
}

func TestConfig_AddContext_NoName(t *testing.T) {
	cfg := newTestConfig(t)
	if err := cfg.AddContext("", &Context{}); err == nil {
		t.Error("AddContext should fail without a name")
	}
}

func TestConfig_ResolveContext(t *testing.T) {
	cfg := newTestConfig(t)

	if _, err := cfg.ResolveContext(""); err == nil {
		t.Error("ResolveContext should fail without a current context")
	}
	cfg.AddContext("a", &Context{})
	cfg.AddContext("b", &Context{})
	if err := cfg.UseContext("b"); err != nil {
		t.Fatalf("UseContext error: %v", err)
	}
	if err := cfg.UseContext("zzz"); err == nil {
		t.Error("UseContext should fail for a missing context")
	}

	ctx, err := cfg.ResolveContext("")
	if err != nil || ctx.Name != "b" {
		t.Errorf("ResolveContext(\"\") = %v, %v", ctx, err)
	}
	ctx, err = cfg.ResolveContext("a")
	if err != nil || ctx.Name != "a" {
		t.Errorf("ResolveContext(a) = %v, %v", ctx, err)
	}
}

func TestConfig_ListContexts(t *testing.T) {
	cfg := newTestConfig(t)
	for _, name := range []string{"prod", "dev", "staging"} {
		cfg.AddContext(name, &Context{})
	}
	got := cfg.ListContexts()
	want := []string{"dev", "prod", "staging"}
	if !slices.Equal(got, want) {
		t.Errorf("ListContexts() = %v, want %v", got, want)
	}
}

func TestContext_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ctx     Context
		wantErr string
	}{
		{
			name: "middle tier only",
			ctx:  Context{Name: "a", Realtime: realtime.Endpoint{BaseURL: "https://x.example.com"}},
		},
		{
			name:    "missing realtime",
			ctx:     Context{Name: "a"},
			wantErr: "base URL is required",
		},
		{
			name: "funcapp without key",
			ctx: Context{
				Name:     "a",
				Realtime: realtime.Endpoint{BaseURL: "https://x.example.com"},
				FuncApp:  funcapp.Config{BaseURL: "https://f.example.com"},
			},
			wantErr: "master_key is required",
		},
		{
			name: "complete",
			ctx: Context{
				Name:     "a",
				Realtime: realtime.Endpoint{BaseURL: "https://x.example.com"},
				FuncApp:  funcapp.Config{MasterKey: "k", BaseURL: "https://f.example.com"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ctx.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestContext_FuncAppClient(t *testing.T) {
	ctx := &Context{Name: "a", Timeout: 5, MaxRetries: 1}
	if _, err := ctx.FuncAppClient(); err == nil {
		t.Error("FuncAppClient should fail without a master key")
	}
	ctx.FuncApp = funcapp.Config{MasterKey: "k", BaseURL: "https://f.example.com"}
	if _, err := ctx.FuncAppClient(); err != nil {
		t.Errorf("FuncAppClient error: %v", err)
	}
}

func TestContext_RealtimeOptions(t *testing.T) {
	ctx := &Context{}
	if opts := ctx.RealtimeOptions(); len(opts) != 0 {
		t.Errorf("options without transcription = %d", len(opts))
	}
	ctx.Transcription = &Transcription{Enabled: true}
	if opts := ctx.RealtimeOptions(); len(opts) != 2 {
		t.Errorf("options with transcription = %d, want 2", len(opts))
	}
}

func TestContext_Masked(t *testing.T) {
	ctx := &Context{
		Realtime: realtime.Endpoint{APIKey: "azure-key-123456"},
		FuncApp:  funcapp.Config{MasterKey: "master-key-123456"},
	}
	m := ctx.Masked()
	if strings.Contains(m.Realtime.APIKey, "key-12") || strings.Contains(m.FuncApp.MasterKey, "key-12") {
		t.Errorf("secrets not masked: %+v", m)
	}
	if ctx.FuncApp.MasterKey != "master-key-123456" {
		t.Error("Masked modified the original")
	}
}
