package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sdejongh/ftpdeploy/pkg/models"
	"gopkg.in/yaml.v3"
)

// FileNames are the config file names searched for, in order
var FileNames = []string{"deploy.yaml", ".deploy.yaml"}

// LoadFromFile loads configuration from a YAML file. The project root is
// the directory containing the file.
func LoadFromFile(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &models.ConfigError{Field: "file", Message: absPath, Err: err}
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &models.ConfigError{Field: "file", Message: absPath, Err: err}
	}
	cfg.ProjectRoot = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Discover looks for a config file in startDir and each of its parents
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", &models.ConfigError{
		Field:   "file",
		Message: fmt.Sprintf("no %s found in %s or any parent directory", FileNames[0], startDir),
		Err:     os.ErrNotExist,
	}
}

// Load reads the config at path, or discovers one from startDir when path is empty
func Load(path, startDir string) (*Config, error) {
	if path == "" {
		found, err := Discover(startDir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	return LoadFromFile(path)
}
