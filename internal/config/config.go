package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds deployment settings shared by a fleet of provisioned machines.
// An operator ships one settings file alongside the provisioner so that
// individual invocations only need flags for per-machine overrides.
type Config struct {
	// MetadataURL is the release-metadata endpoint queried for the latest
	// published version. Empty means the public endpoint.
	MetadataURL string `yaml:"metadata_url"`
	// DownloadBase is the base URL installer artifacts are downloaded from.
	// Empty means the public release channel.
	DownloadBase string `yaml:"download_base"`
	// ConfigFile overrides the client configuration file path.
	// Empty means the platform default location.
	ConfigFile string `yaml:"config_file"`
	// RelayServer is the self-hosted relay endpoint written into the
	// client configuration.
	RelayServer string `yaml:"relay_server"`
	// APIServer is the self-hosted API endpoint written into the
	// client configuration.
	APIServer string `yaml:"api_server"`
	// Key is the relay's public key written into the client configuration.
	Key string `yaml:"key"`
}

const (
	// DefaultConfigFilename is the default filename for deployment settings.
	DefaultConfigFilename = "rustdesk-provisioner.yaml"

	// DefaultFilePermissions is the file permission for written settings files.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Load reads deployment settings from the provided path and validates them.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes deployment settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions: the settings may carry a relay key.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks URL fields for well-formedness. All fields are optional;
// an empty Config is a valid one that leaves every default in place.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.MetadataURL != "" {
		if _, err := url.ParseRequestURI(cfg.MetadataURL); err != nil {
			return fmt.Errorf("invalid metadata URL: %w", err)
		}
	}

	if cfg.DownloadBase != "" {
		if _, err := url.ParseRequestURI(cfg.DownloadBase); err != nil {
			return fmt.Errorf("invalid download base URL: %w", err)
		}
	}

	return nil
}
