// Package keys loads the partner API keys used to authenticate against
// the Report API. These are the lowest-privilege partner keys and only
// grant access to accounting reports.
package keys

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

var (
	// ErrEmptyFile indicates the key file decoded to null or nothing.
	ErrEmptyFile = errors.New("key file is empty")
	// ErrMissingClientID indicates client_id is not present in the key file.
	ErrMissingClientID = errors.New("client_id missing from key file")
	// ErrMissingClientSecret indicates client_secret is not present in the key file.
	ErrMissingClientSecret = errors.New("client_secret missing from key file")
)

// APIKeys are the partner keys for the accounting Report API.
type APIKeys struct {
	ClientID     string
	ClientSecret string
}

// LoadFromFile reads partner keys from a JSON file of the form
// {"client_id": "...", "client_secret": "..."}.
func LoadFromFile(path string) (APIKeys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return APIKeys{}, fmt.Errorf("failed to read key file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return APIKeys{}, fmt.Errorf("failed to parse key file %s: %w", path, err)
	}

	if raw == nil {
		return APIKeys{}, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	clientID, ok := raw["client_id"]
	if !ok {
		return APIKeys{}, fmt.Errorf("%s: %w", path, ErrMissingClientID)
	}

	clientSecret, ok := raw["client_secret"]
	if !ok {
		return APIKeys{}, fmt.Errorf("%s: %w", path, ErrMissingClientSecret)
	}

	return APIKeys{ClientID: clientID, ClientSecret: clientSecret}, nil
}

// LoadWithFallback reads keys from path, falling back to backupPath if
// the primary file is missing or malformed.
func LoadWithFallback(path, backupPath string) (APIKeys, error) {
	apiKeys, err := LoadFromFile(path)
	if err == nil {
		return apiKeys, nil
	}

	slog.Error("Key file not usable, reverting to backup", "path", path, "error", err)
	return LoadFromFile(backupPath)
}
