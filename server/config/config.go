package config

import (
	"errors"
	"os"
	"regexp"
	"time"

	"github.com/pelletier/go-toml"
)

const (
	DefaultListenAddress = "0.0.0.0:8545"
	DefaultLookupTimeout = "30s"
	DefaultLookupModel   = "gemini-2.0-flash"
)

var (
	ErrInvalidListenAddress = errors.New("invalid listen address")
	ErrInvalidLookupTimeout = errors.New("invalid lookup timeout")
)

var listenAddressRegex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}:\d+$`)

// Config defines the base-level server configuration
type Config struct {
	// The associated CORS config, if any
	CORSConfig *CORS `toml:"cors_config"`

	// The official rate lookup config
	LookupConfig *Lookup `toml:"lookup_config"`

	// The address at which the server will be served.
	// Format should be: <IP>:<PORT>
	ListenAddress string `toml:"listen_address"`
}

// Lookup defines the official rate lookup configuration
type Lookup struct {
	// The generative model queried for the official rate
	Model string `toml:"model"`

	// The per-query timeout, as a Go duration string ("30s").
	// "0s" leaves the query unbounded
	Timeout string `toml:"timeout"`
}

// DefaultLookupConfig returns the default lookup configuration
func DefaultLookupConfig() *Lookup {
	return &Lookup{
		Model:   DefaultLookupModel,
		Timeout: DefaultLookupTimeout,
	}
}

// TimeoutDuration parses the configured timeout
func (l *Lookup) TimeoutDuration() (time.Duration, error) {
	if l.Timeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(l.Timeout)
	if err != nil || d < 0 {
		return 0, ErrInvalidLookupTimeout
	}

	return d, nil
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		CORSConfig:    DefaultCORSConfig(),
		LookupConfig:  DefaultLookupConfig(),
	}
}

// ValidateConfig validates the server configuration
func ValidateConfig(config *Config) error {
	// Validate the listen address
	if !listenAddressRegex.MatchString(config.ListenAddress) {
		return ErrInvalidListenAddress
	}

	// Validate the lookup timeout, if any
	if config.LookupConfig != nil {
		if _, err := config.LookupConfig.TimeoutDuration(); err != nil {
			return err
		}
	}

	return nil
}

// Read reads the configuration from the given path.
// Sections missing from the file keep their defaults
func Read(path string) (*Config, error) {
	// Read the config file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse it
	var cfg Config

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	// Fill in the missing sections
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if cfg.CORSConfig == nil {
		cfg.CORSConfig = DefaultCORSConfig()
	}

	if cfg.LookupConfig == nil {
		cfg.LookupConfig = DefaultLookupConfig()
	}

	return &cfg, nil
}
