// Package config loads the deploy configuration and credentials.
package config

import (
	"path/filepath"
	"time"

	"github.com/sdejongh/ftpdeploy/internal/platform"
	"github.com/sdejongh/ftpdeploy/pkg/hashstore"
	"github.com/sdejongh/ftpdeploy/pkg/models"
	"github.com/sdejongh/ftpdeploy/pkg/ratelimit"
	"github.com/sdejongh/ftpdeploy/pkg/remote"
)

// Config represents the deploy configuration
type Config struct {
	// Src is the local directory to upload, relative to the project root
	Src string `yaml:"src"`
	// Dest is the remote directory files are uploaded to
	Dest string     `yaml:"dest"`
	Auth AuthConfig `yaml:"auth"`

	HashAlgorithm models.HashAlgorithm `yaml:"hash_algorithm"`
	Exclude       []string             `yaml:"exclude"`
	Performance   PerformanceConfig    `yaml:"performance"`
	Output        OutputConfig         `yaml:"output"`
	Logging       LoggingConfig        `yaml:"logging"`

	// ProjectRoot is the directory containing the config file
	ProjectRoot string `yaml:"-"`
}

// AuthConfig describes the FTP server and which credentials to use
type AuthConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AuthKey selects the entry in the credentials file
	AuthKey            string        `yaml:"auth_key"`
	TLS                bool          `yaml:"tls"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Timeout            time.Duration `yaml:"timeout"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	BufferSize int `yaml:"buffer_size"`
	// BandwidthLimit is a byte rate such as "512K" or "10M"; empty = unlimited
	BandwidthLimit string `yaml:"bandwidth_limit"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bar
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format     string `yaml:"format"`      // "json" or "text"
	Level      string `yaml:"level"`       // "debug", "info", "warn", "error"
	File       string `yaml:"file"`        // Log file path (empty = console only)
	MaxSize    int64  `yaml:"max_size"`    // Bytes before rotation, 0 = never
	MaxBackups int    `yaml:"max_backups"` // Rotated files to keep
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Auth: AuthConfig{
			Port:    21,
			Timeout: remote.DefaultTimeout,
		},
		HashAlgorithm: models.HashSHA1,
		Performance: PerformanceConfig{
			BufferSize: 65536,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Format:     "text",
			Level:      "info",
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 3,
		},
	}
}

// Template returns a filled-in example written by "config init"
func Template() *Config {
	cfg := Default()
	cfg.Src = "dist"
	cfg.Dest = "/"
	cfg.Auth.Host = "ftp.example.com"
	cfg.Auth.AuthKey = "default"
	cfg.Exclude = []string{".git/", "*.map"}
	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Src == "" {
		return &models.ConfigError{Field: "src", Message: "is required"}
	}
	if err := platform.ValidatePath(c.Src); err != nil {
		return &models.ConfigError{Field: "src", Err: err}
	}
	if c.Dest == "" {
		return &models.ConfigError{Field: "dest", Message: "is required"}
	}
	if c.Auth.Host == "" {
		return &models.ConfigError{Field: "auth.host", Message: "is required"}
	}
	if c.Auth.Port < 1 || c.Auth.Port > 65535 {
		return &models.ConfigError{Field: "auth.port", Message: "must be between 1 and 65535"}
	}
	if c.Auth.AuthKey == "" {
		return &models.ConfigError{Field: "auth.auth_key", Message: "is required"}
	}
	if c.Auth.Timeout < 0 {
		return &models.ConfigError{Field: "auth.timeout", Message: "must not be negative"}
	}

	if !c.HashAlgorithm.Valid() {
		return &models.ConfigError{
			Field:   "hash_algorithm",
			Message: "must be 'sha1', 'sha256', or 'md5'",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ConfigError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}
	if _, err := ratelimit.ParseBandwidth(c.Performance.BandwidthLimit); err != nil {
		return &models.ConfigError{Field: "performance.bandwidth_limit", Err: err}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ConfigError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ConfigError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ConfigError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// LocalRoot returns the absolute local directory to upload
func (c *Config) LocalRoot() string {
	return platform.ResolveLocal(c.ProjectRoot, c.Src)
}

// RemoteRoot returns the cleaned absolute remote directory
func (c *Config) RemoteRoot() string {
	return platform.CleanRemote(c.Dest)
}

// CachePath returns the hash cache file path
func (c *Config) CachePath() string {
	return filepath.Join(c.ProjectRoot, hashstore.FileName)
}

// CredentialsPath returns the credentials file path
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.ProjectRoot, CredentialsFileName)
}

// BandwidthLimit returns the configured limit in bytes per second
func (c *Config) BandwidthLimit() (int64, error) {
	return ratelimit.ParseBandwidth(c.Performance.BandwidthLimit)
}

// RemoteOptions returns the connection settings for the FTP client
func (c *Config) RemoteOptions() remote.Options {
	return remote.Options{
		Host:               c.Auth.Host,
		Port:               c.Auth.Port,
		TLS:                c.Auth.TLS,
		InsecureSkipVerify: c.Auth.InsecureSkipVerify,
		Timeout:            c.Auth.Timeout,
	}
}
