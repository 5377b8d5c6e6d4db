// Package report converts Report API fund entries into plain-text
// ledger transactions and writes them to monthly ledger files.
package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EntryTypeMapping maps a Report API entry type to a ledger account.
type EntryTypeMapping struct {
	Type        string `yaml:"type"`
	Account     string `yaml:"account"`
	Description string `yaml:"description,omitempty"`
}

// MappingConfig represents the complete account mapping configuration.
type MappingConfig struct {
	// SettlementAccount is the Vipps settlement balance account every
	// fund entry moves money through.
	SettlementAccount string `yaml:"settlement_account"`
	// FeeAccount receives transaction fees withheld by Vipps.
	FeeAccount string `yaml:"fee_account"`
	// FallbackAccount is used for entry types without a mapping.
	FallbackAccount string             `yaml:"fallback_account"`
	EntryTypes      []EntryTypeMapping `yaml:"entry_types"`
}

// Mapper maps Report API entry types to ledger account names.
type Mapper struct {
	config      MappingConfig
	typeToAccnt map[string]string
}

// NewMapper creates a new Mapper from a YAML configuration file.
func NewMapper(configPath string) (*Mapper, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MappingConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return NewMapperFromConfig(config)
}

// NewMapperFromConfig creates a Mapper from an in-memory configuration.
func NewMapperFromConfig(config MappingConfig) (*Mapper, error) {
	if config.SettlementAccount == "" {
		return nil, fmt.Errorf("settlement_account is required in the account mapping")
	}
	if config.FallbackAccount == "" {
		return nil, fmt.Errorf("fallback_account is required in the account mapping")
	}

	mapper := &Mapper{
		config:      config,
		typeToAccnt: make(map[string]string),
	}

	for _, mapping := range config.EntryTypes {
		mapper.typeToAccnt[mapping.Type] = mapping.Account
	}

	return mapper, nil
}

// AccountFor returns the ledger account for an entry type, falling back
// to the configured fallback account when no mapping exists.
func (m *Mapper) AccountFor(entryType string) string {
	if account := m.typeToAccnt[entryType]; account != "" {
		return account
	}
	return m.config.FallbackAccount
}

// HasMapping checks if a mapping exists for an entry type.
func (m *Mapper) HasMapping(entryType string) bool {
	_, ok := m.typeToAccnt[entryType]
	return ok
}

// SettlementAccount returns the settlement balance account.
func (m *Mapper) SettlementAccount() string {
	return m.config.SettlementAccount
}

// FeeAccount returns the fee expense account.
func (m *Mapper) FeeAccount() string {
	return m.config.FeeAccount
}
