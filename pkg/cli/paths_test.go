package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewPaths(t *testing.T) {
	paths, err := NewPaths("dream")
	if err != nil {
		t.Fatalf("NewPaths error: %v", err)
	}
	if paths.AppName != "dream" {
		t.Errorf("AppName = %q, want %q", paths.AppName, "dream")
	}
	if paths.HomeDir == "" {
		t.Error("HomeDir should not be empty")
	}
}

func TestPaths_Layout(t *testing.T) {
	home := t.TempDir()
	paths := &Paths{AppName: "dream", HomeDir: home}
	app := filepath.Join(home, ".dream", "dream")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"BaseDir", paths.BaseDir(), filepath.Join(home, ".dream")},
		{"AppDir", paths.AppDir(), app},
		{"ConfigFile", paths.ConfigFile(), filepath.Join(app, "config.yaml")},
		{"DataDir", paths.DataDir(), filepath.Join(app, "data")},
		{"RecordingDir", paths.RecordingDir(), filepath.Join(app, "recordings")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	got, err := EnsureDir(dir)
	if err != nil {
		t.Fatalf("EnsureDir error: %v", err)
	}
	if got != dir {
		t.Errorf("EnsureDir = %q, want %q", got, dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}
