package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dvloznov/cashew-autofill/internal/domain"
	"gopkg.in/yaml.v3"
)

// Validation failures abort the run before any network activity.
var (
	ErrMissingPhone  = errors.New("missing phone number")
	ErrMissingAPIKey = errors.New("missing Gemini API key")
)

// DefaultCategories is the category vocabulary offered to the classifier.
// TODO: pull the list from the Cashew app instead of keeping it in sync by hand.
var DefaultCategories = []string{
	"Dining",
	"Groceries",
	"Transit",
	"Entertainment",
	"Bills & Fees",
	"Beauty",
	"Travel",
	"Tech",
	"Health",
	"Shopping",
	"Utility",
}

const defaultStatePath = "cache.json"

// Config carries everything the pipeline and its collaborators need. It is
// built once at startup and passed around explicitly; nothing reads it
// through package globals.
type Config struct {
	// Phone is the iMessage destination the deep link is sent to.
	Phone string

	// GeminiAPIKey authenticates the categorization calls.
	GeminiAPIKey string

	// StatePath is where the last-seen marker and category cache live.
	StatePath string

	// Categories is the closed list of valid category labels.
	Categories []string

	// Accounts maps a masked statement account number to a Cashew account name.
	Accounts map[string]string

	// Banks maps each known bank to its alert sender address. Banks with an
	// empty address are recognized but never searched for or matched.
	Banks map[domain.Bank]string
}

type fileConfig struct {
	Phone        string            `yaml:"phone"`
	GeminiAPIKey string            `yaml:"gemini_api_key"`
	StatePath    string            `yaml:"state_path"`
	Categories   []string          `yaml:"categories"`
	Accounts     map[string]string `yaml:"accounts"`
}

// Load reads the YAML config file at path and applies defaults. Only phone
// and gemini_api_key are required; everything else falls back.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg := &Config{
		Phone:        fc.Phone,
		GeminiAPIKey: fc.GeminiAPIKey,
		StatePath:    fc.StatePath,
		Categories:   fc.Categories,
		Accounts:     fc.Accounts,
		Banks:        DefaultBanks(),
	}
	if cfg.StatePath == "" {
		cfg.StatePath = defaultStatePath
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories
	}
	if cfg.Accounts == nil {
		cfg.Accounts = map[string]string{}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Phone == "" {
		return fmt.Errorf("config: %w", ErrMissingPhone)
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config: %w", ErrMissingAPIKey)
	}
	return nil
}

// DefaultBanks returns the built-in bank to alert-address table. Only
// Scotiabank has an address today; the other variants are placeholders.
func DefaultBanks() map[domain.Bank]string {
	return map[domain.Bank]string{
		domain.BankScotiabank: "infoalerts@scotiabank.com",
		domain.BankAmex:       "",
		domain.BankCIBC:       "",
		domain.BankRBC:        "",
	}
}

// SenderAddresses lists the configured non-empty alert addresses in the
// fixed bank order, for building the mailbox search query.
func (c *Config) SenderAddresses() []string {
	addrs := make([]string, 0, len(c.Banks))
	for _, b := range domain.Banks {
		if addr := c.Banks[b]; addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
