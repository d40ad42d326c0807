package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/salpyeo/dream/pkg/docstore"
	"github.com/salpyeo/dream/pkg/media"
)

func TestLoadServerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.yaml")
	data := `server:
  master_key: secret
  timezone: Asia/Seoul
store:
  kind: badger
  dir: /tmp/dream
planner:
  provider: gemini
  api_key: key
  model: gemini-2.0-flash
media:
  provider: openai
  api_key: key
  voice: nova
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig error: %v", err)
	}
	if cfg.Addr != DefaultServerAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultServerAddr)
	}
	if cfg.Server.MasterKey != "secret" || cfg.Server.Timezone != "Asia/Seoul" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Store.Kind != docstore.KindBadger || cfg.Store.Dir != "/tmp/dream" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Planner == nil || cfg.Planner.Provider != "gemini" {
		t.Errorf("Planner = %+v", cfg.Planner)
	}
	if cfg.Media == nil || cfg.Media.Provider != "openai" || cfg.Media.Voice != "nova" {
		t.Errorf("Media = %+v", cfg.Media)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate error: %v", err)
	}
}

func TestServerConfig_Validate(t *testing.T) {
	cfg := &ServerConfig{}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail without a master key")
	}
	cfg.Server.MasterKey = "secret"
	cfg.Media = &media.Config{Provider: "azure", APIKey: "k"}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail for azure media without base_url")
	}
}

func TestLoadServerConfig_Missing(t *testing.T) {
	if _, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}
