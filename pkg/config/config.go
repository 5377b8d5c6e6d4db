// Package config provides configuration management for the Vipps
// accounting sync tool. It loads configuration from environment
// variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Vipps  VippsConfig
	Ledger LedgerConfig
	Debug  bool
}

// VippsConfig represents Vipps-MobilePay Report API configuration.
type VippsConfig struct {
	ClientID       string
	ClientSecret   string
	MyshopNumber   int64
	Country        string
	APIURL         string
	KeysFile       string
	KeysBackupFile string
}

// LedgerConfig represents ledger output configuration.
type LedgerConfig struct {
	Root   string
	DBPath string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	// Load .env file
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	myshopNumber, err := parseInt64Env("VIPPS_MSN", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid VIPPS_MSN: %w", err)
	}

	config := &Config{
		Vipps: VippsConfig{
			ClientID:       os.Getenv("VIPPS_CLIENT_ID"),
			ClientSecret:   os.Getenv("VIPPS_CLIENT_SECRET"),
			MyshopNumber:   myshopNumber,
			Country:        getEnvOrDefault("VIPPS_COUNTRY", "DK"),
			APIURL:         getEnvOrDefault("VIPPS_API_URL", "https://api.vipps.no"),
			KeysFile:       os.Getenv("VIPPS_KEYS_FILE"),
			KeysBackupFile: os.Getenv("VIPPS_KEYS_BACKUP_FILE"),
		},
		Ledger: LedgerConfig{
			Root:   getEnvOrDefault("LEDGER_ROOT", "./ledger"),
			DBPath: os.Getenv("LEDGER_DB_PATH"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "vipps":
			switch path[1] {
			case "clientId":
				value = c.Vipps.ClientID
			case "clientSecret":
				value = c.Vipps.ClientSecret
			case "myshopNumber":
				if c.Vipps.MyshopNumber != 0 {
					value = "set"
				}
			case "country":
				value = c.Vipps.Country
			case "apiUrl":
				value = c.Vipps.APIURL
			case "keysFile":
				value = c.Vipps.KeysFile
			}
		case "ledger":
			switch path[1] {
			case "root":
				value = c.Ledger.Root
			case "dbPath":
				value = c.Ledger.DBPath
			}
		}

		if value == "" {
			missing = append(missing, joinPath(path))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// HasKeyFile reports whether partner keys should be read from a JSON
// key file instead of plain environment variables.
func (c *Config) HasKeyFile() bool {
	return c.Vipps.KeysFile != ""
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseInt64Env parses an int64 from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseInt64Env(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}

// joinPath joins a path slice into a dot-separated string.
func joinPath(path []string) string {
	result := ""
	for i, p := range path {
		if i > 0 {
			result += "."
		}
		result += p
	}
	return result
}
