package cli

import (
	"os"
	"path/filepath"
)

// Paths locates an app's files under ~/.dream/<app>
type Paths struct {
	AppName string
	HomeDir string
}

// NewPaths creates a new Paths instance for the given app
func NewPaths(appName string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{AppName: appName, HomeDir: home}, nil
}

// BaseDir returns ~/.dream
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// AppDir returns ~/.dream/<app>
func (p *Paths) AppDir() string {
	return filepath.Join(p.BaseDir(), p.AppName)
}

// ConfigFile returns ~/.dream/<app>/config.yaml
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// DataDir returns ~/.dream/<app>/data, the default document store of serve
func (p *Paths) DataDir() string {
	return filepath.Join(p.AppDir(), "data")
}

// RecordingDir returns ~/.dream/<app>/recordings, where talk keeps replies
func (p *Paths) RecordingDir() string {
	return filepath.Join(p.AppDir(), "recordings")
}

// EnsureDir creates dir if it doesn't exist and returns it
func EnsureDir(dir string) (string, error) {
	return dir, os.MkdirAll(dir, 0755)
}
