package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VIPPS_CLIENT_ID", "client-id")
	t.Setenv("VIPPS_CLIENT_SECRET", "client-secret")
	t.Setenv("VIPPS_MSN", "90601")
	t.Setenv("LEDGER_ROOT", "/tmp/ledger")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Vipps.ClientID != "client-id" {
		t.Errorf("ClientID = %q", cfg.Vipps.ClientID)
	}
	if cfg.Vipps.MyshopNumber != 90601 {
		t.Errorf("MyshopNumber = %d, expected 90601", cfg.Vipps.MyshopNumber)
	}
	if cfg.Vipps.Country != "DK" {
		t.Errorf("Country = %q, expected default DK", cfg.Vipps.Country)
	}
	if cfg.Vipps.APIURL != "https://api.vipps.no" {
		t.Errorf("APIURL = %q, expected production default", cfg.Vipps.APIURL)
	}
	if cfg.Ledger.Root != "/tmp/ledger" {
		t.Errorf("Ledger.Root = %q", cfg.Ledger.Root)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	content := "VIPPS_CLIENT_ID=file-id\nVIPPS_MSN=12345\nVIPPS_COUNTRY=NO\n"
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	// godotenv does not override existing env vars
	t.Setenv("VIPPS_CLIENT_ID", "")
	os.Unsetenv("VIPPS_CLIENT_ID")
	t.Setenv("VIPPS_MSN", "")
	os.Unsetenv("VIPPS_MSN")
	t.Setenv("VIPPS_COUNTRY", "")
	os.Unsetenv("VIPPS_COUNTRY")

	cfg, err := Load(envPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Vipps.ClientID != "file-id" {
		t.Errorf("ClientID = %q, expected value from .env file", cfg.Vipps.ClientID)
	}
	if cfg.Vipps.MyshopNumber != 12345 {
		t.Errorf("MyshopNumber = %d, expected 12345", cfg.Vipps.MyshopNumber)
	}
	if cfg.Vipps.Country != "NO" {
		t.Errorf("Country = %q, expected NO", cfg.Vipps.Country)
	}
}

func TestLoadInvalidMyshopNumber(t *testing.T) {
	t.Setenv("VIPPS_MSN", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid VIPPS_MSN")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Vipps: VippsConfig{
			ClientID:     "id",
			MyshopNumber: 90601,
			APIURL:       "https://api.vipps.no",
		},
	}

	if err := cfg.Validate(
		[]string{"vipps", "clientId"},
		[]string{"vipps", "myshopNumber"},
		[]string{"vipps", "apiUrl"},
	); err != nil {
		t.Errorf("Validate() error = %v, expected nil", err)
	}
}

func TestValidateMissing(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate(
		[]string{"vipps", "clientSecret"},
		[]string{"ledger", "root"},
	)
	if err == nil {
		t.Fatal("Validate() expected error for missing fields")
	}

	if !strings.Contains(err.Error(), "vipps.clientSecret") {
		t.Errorf("error %q should name vipps.clientSecret", err)
	}
	if !strings.Contains(err.Error(), "ledger.root") {
		t.Errorf("error %q should name ledger.root", err)
	}
}

func TestHasKeyFile(t *testing.T) {
	cfg := &Config{}
	if cfg.HasKeyFile() {
		t.Error("HasKeyFile() = true for empty config")
	}

	cfg.Vipps.KeysFile = "/etc/vipps/tokens.json"
	if !cfg.HasKeyFile() {
		t.Error("HasKeyFile() = false with KeysFile set")
	}
}
