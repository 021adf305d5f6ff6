package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/sdejongh/ftpdeploy/pkg/models"
)

// CredentialsFileName is the credentials file inside the project root
const CredentialsFileName = ".ftppass"

// Credential is one entry of the credentials file
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoadCredentials reads the credentials file at path and returns the entry for key
func LoadCredentials(path, key string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.ConfigError{Field: "credentials", Message: path, Err: err}
	}

	var entries map[string]Credential
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &models.ConfigError{Field: "credentials", Message: path, Err: err}
	}

	cred, ok := entries[key]
	if !ok {
		return nil, &models.ConfigError{
			Field:   "credentials",
			Message: fmt.Sprintf("no entry %q in %s", key, path),
		}
	}
	if cred.Username == "" {
		return nil, &models.ConfigError{
			Field:   "credentials",
			Message: fmt.Sprintf("entry %q has no username", key),
		}
	}
	return &cred, nil
}
