package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	// AppName names the per-user configuration directory.
	AppName = "voicematch"
	// DefaultConfigFile is the default configuration filename.
	DefaultConfigFile = "config.yaml"
)

// Config is the voicematch configuration file.
type Config struct {
	// SampleRate is the pipeline sample rate in Hz.
	SampleRate int `json:"sample_rate" yaml:"sample_rate,omitempty"`

	// Duration is the segment length in seconds taken from each clip.
	Duration float64 `json:"duration" yaml:"duration,omitempty"`

	// Method is the feature method: melspectrogram or spectrogram.
	Method string `json:"method" yaml:"method,omitempty"`

	// Threshold is the similarity above which two clips match.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Model configures the embedding model.
	Model ModelConfig `json:"model" yaml:"model,omitempty"`

	// Stats is the path of a global normalization statistics file.
	Stats string `json:"stats" yaml:"stats,omitempty"`

	// RegistryDir is the badger directory of the enrollment registry.
	RegistryDir string `json:"registry_dir" yaml:"registry_dir,omitempty"`

	// HashBits is the length of enrollment voice hashes (0 disables).
	HashBits int `json:"hash_bits" yaml:"hash_bits,omitempty"`

	// S3 configures access to s3:// paths.
	S3 S3Config `json:"s3" yaml:"s3,omitempty"`

	// path is the file the config was loaded from.
	path string
}

// ModelConfig configures the ONNX embedding model.
type ModelConfig struct {
	// Path is the .onnx file.
	Path string `json:"path" yaml:"path,omitempty"`

	// Library is the ONNX Runtime shared library path.
	Library string `json:"library" yaml:"library,omitempty"`

	// Input and Output name the model's tensors (default: first of each).
	Input  string `json:"input" yaml:"input,omitempty"`
	Output string `json:"output" yaml:"output,omitempty"`

	// Layout is bins-first ([1, bins, frames]) or frames-first.
	Layout string `json:"layout" yaml:"layout,omitempty"`

	// Dim overrides the embedding dimension.
	Dim int `json:"dim" yaml:"dim,omitempty"`
}

// S3Config configures the S3 client.
type S3Config struct {
	Region string `json:"region" yaml:"region,omitempty"`

	// Endpoint overrides the service endpoint (e.g. MinIO).
	Endpoint string `json:"endpoint" yaml:"endpoint,omitempty"`

	// PathStyle forces path-style addressing.
	PathStyle bool `json:"path_style" yaml:"path_style,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		SampleRate: 16000,
		Duration:   3,
		Method:     "melspectrogram",
		Threshold:  0.7,
		Model:      ModelConfig{Layout: "bins-first"},
		HashBits:   16,
	}
}

// LoadConfig reads the configuration at path, or at the default location
// when path is empty. Values missing from the file keep their defaults; a
// missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := NewPaths()
		if err != nil {
			return nil, err
		}
		path = p.ConfigFile()
	}

	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no path")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}

// SetPath sets the file Save writes to.
func (c *Config) SetPath(path string) {
	c.path = path
}

// ResolveRegistryDir returns RegistryDir, defaulting to the per-user data
// directory.
func (c *Config) ResolveRegistryDir() (string, error) {
	if c.RegistryDir != "" {
		return c.RegistryDir, nil
	}
	p, err := NewPaths()
	if err != nil {
		return "", err
	}
	return p.RegistryDir(), nil
}
