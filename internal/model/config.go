package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// AccountConfig holds the IMAP mailbox connection settings.
type AccountConfig struct {
	// Host is the IMAP server hostname.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the IMAP server port.
	Port string `mapstructure:"port" yaml:"port"`

	// Username is the mailbox login, usually the email address.
	Username string `mapstructure:"username" yaml:"username"`

	// TLS selects implicit TLS; when false the client uses STARTTLS.
	TLS bool `mapstructure:"tls" yaml:"tls"`

	// Mailbox is the folder to scan.
	Mailbox string `mapstructure:"mailbox" yaml:"mailbox"`
}

// Configured reports whether the account has enough settings to connect.
// The password lives in the system keyring, not in the config file.
func (c AccountConfig) Configured() bool {
	return c.Host != "" && c.Username != ""
}

// ScanConfig bounds a mailbox scan.
type ScanConfig struct {
	// LookbackDays is the maximum age of messages considered.
	LookbackDays int `mapstructure:"lookback_days" yaml:"lookback_days"`

	// BatchSize is how many messages are fetched per IMAP round trip.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// MaxMessages stops the scan after this many processed messages.
	// Zero means no cap.
	MaxMessages int `mapstructure:"max_messages" yaml:"max_messages"`
}

// FilterConfig holds the irrelevance filter applied before aggregation.
type FilterConfig struct {
	// ExcludedKeywords drops any message whose subject contains one of
	// these substrings (case-insensitive).
	ExcludedKeywords []string `mapstructure:"excluded_keywords" yaml:"excluded_keywords"`

	// ExcludedCompanies drops any message whose derived company matches
	// one of these names (case-insensitive).
	ExcludedCompanies []string `mapstructure:"excluded_companies" yaml:"excluded_companies"`
}

// ExportConfig holds CSV export preferences.
type ExportConfig struct {
	// Path is where the CSV export is written.
	Path string `mapstructure:"path" yaml:"path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Account AccountConfig `mapstructure:"account" yaml:"account"`
	Scan    ScanConfig    `mapstructure:"scan" yaml:"scan"`
	Filter  FilterConfig  `mapstructure:"filter" yaml:"filter"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/jobtrail/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "jobtrail", "config.yaml")
}

// DefaultDataPath returns the default path for the local database.
func DefaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "jobtrail.db")
	}
	return filepath.Join(home, ".config", "jobtrail", "jobtrail.db")
}

// defaultAppConfig returns a sensible default configuration for a Gmail
// mailbox with the stock exclusion lists.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Account: AccountConfig{
			Host:    "imap.gmail.com",
			Port:    "993",
			TLS:     true,
			Mailbox: "[Gmail]/All Mail",
		},
		Scan: ScanConfig{
			LookbackDays: 90,
			BatchSize:    50,
			MaxMessages:  1500,
		},
		Filter: FilterConfig{
			ExcludedKeywords:  DefaultExcludedKeywords(),
			ExcludedCompanies: DefaultExcludedCompanies(),
		},
		Export: ExportConfig{
			Path: "job_applications.csv",
		},
	}
}

// DefaultExcludedKeywords returns the stock subject keywords that mark a
// message as unrelated to job applications (newsletters, receipts,
// personal correspondence) even when a status pattern matches.
func DefaultExcludedKeywords() []string {
	return []string{
		"practice starts", "lyrics", "trees in trust", "league registration",
		"burnout prevention", "unable to cancel", "spotlight on", "serenade",
		"rear of the property", "order confirmation", "unsubscribe",
	}
}

// DefaultExcludedCompanies returns the stock sender domains that never
// correspond to an employer.
func DefaultExcludedCompanies() []string {
	return []string{
		"gmail", "chapelridge", "prayvine", "squaretrade", "amazon", "ottawa",
		"substack", "rallyandtap", "79246730",
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("account.host", "imap.gmail.com")
	v.SetDefault("account.port", "993")
	v.SetDefault("account.tls", true)
	v.SetDefault("account.mailbox", "[Gmail]/All Mail")
	v.SetDefault("scan.lookback_days", 90)
	v.SetDefault("scan.batch_size", 50)
	v.SetDefault("scan.max_messages", 1500)
	v.SetDefault("export.path", "job_applications.csv")
	v.SetDefault("filter.excluded_keywords", DefaultExcludedKeywords())
	v.SetDefault("filter.excluded_companies", DefaultExcludedCompanies())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Scan.LookbackDays <= 0 {
		cfg.Scan.LookbackDays = 90
	}
	if cfg.Scan.BatchSize <= 0 {
		cfg.Scan.BatchSize = 50
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("account", cfg.Account)
	v.Set("scan", cfg.Scan)
	v.Set("filter", cfg.Filter)
	v.Set("export", cfg.Export)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
