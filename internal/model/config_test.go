package model_test

import (
	"path/filepath"
	"testing"

	"github.com/tkiley/jobtrail/internal/model"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := model.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Account.Host != "imap.gmail.com" {
		t.Errorf("expected default host, got %q", cfg.Account.Host)
	}
	if cfg.Account.Port != "993" || !cfg.Account.TLS {
		t.Errorf("expected default port 993 with TLS, got %q tls=%v", cfg.Account.Port, cfg.Account.TLS)
	}
	if cfg.Scan.LookbackDays != 90 {
		t.Errorf("expected 90 lookback days, got %d", cfg.Scan.LookbackDays)
	}
	if cfg.Scan.BatchSize != 50 {
		t.Errorf("expected batch size 50, got %d", cfg.Scan.BatchSize)
	}
	if len(cfg.Filter.ExcludedKeywords) == 0 || len(cfg.Filter.ExcludedCompanies) == 0 {
		t.Error("expected stock exclusion lists to be populated")
	}
	if cfg.Export.Path != "job_applications.csv" {
		t.Errorf("expected default export path, got %q", cfg.Export.Path)
	}

	// A default config has no username, so it is not ready to connect.
	if cfg.Account.Configured() {
		t.Error("default config should not report as configured")
	}
}

func TestLoadConfig_ClampsInvalidScanSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &model.AppConfig{
		Account: model.AccountConfig{
			Host:     "mail.example.com",
			Port:     "993",
			Username: "user@example.com",
			TLS:      true,
			Mailbox:  "INBOX",
		},
		Scan: model.ScanConfig{LookbackDays: -5, BatchSize: 0},
	}
	if err := model.SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := model.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if loaded.Scan.LookbackDays != 90 {
		t.Errorf("expected lookback clamped to 90, got %d", loaded.Scan.LookbackDays)
	}
	if loaded.Scan.BatchSize != 50 {
		t.Errorf("expected batch size clamped to 50, got %d", loaded.Scan.BatchSize)
	}
	if !loaded.Account.Configured() {
		t.Error("saved account should report as configured")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &model.AppConfig{
		Account: model.AccountConfig{
			Host:     "mail.example.com",
			Port:     "143",
			Username: "user@example.com",
			TLS:      false,
			Mailbox:  "INBOX",
		},
		Scan:   model.ScanConfig{LookbackDays: 30, BatchSize: 25, MaxMessages: 500},
		Export: model.ExportConfig{Path: "out.csv"},
	}
	if err := model.SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := model.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if loaded.Account.Host != "mail.example.com" || loaded.Account.Port != "143" {
		t.Errorf("account did not round-trip: %+v", loaded.Account)
	}
	if loaded.Account.TLS {
		t.Error("expected TLS false to round-trip")
	}
	if loaded.Scan.LookbackDays != 30 || loaded.Scan.MaxMessages != 500 {
		t.Errorf("scan settings did not round-trip: %+v", loaded.Scan)
	}
	if loaded.Export.Path != "out.csv" {
		t.Errorf("export path did not round-trip: %q", loaded.Export.Path)
	}
}
