package cli

import (
	"os"
	"path/filepath"
)

// Paths locates voicematch's per-user files.
type Paths struct {
	// Base is <user config dir>/voicematch.
	Base string
}

// NewPaths resolves the per-user directory with os.UserConfigDir.
func NewPaths() (*Paths, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Paths{Base: filepath.Join(dir, AppName)}, nil
}

// ConfigFile returns the default config file path.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.Base, DefaultConfigFile)
}

// RegistryDir returns the default enrollment registry directory.
func (p *Paths) RegistryDir() string {
	return filepath.Join(p.Base, "registry")
}
