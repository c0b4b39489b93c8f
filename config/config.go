package config

import (
	"encoding/json"
	"os"
)

// Config holds the application configuration. It is created once at process
// start and passed explicitly to the components that need it; there are no
// package-level settings.
type Config struct {
	SpreadsheetID   string `json:"spreadsheet_id"`
	SheetRange      string `json:"sheet_range"`      // named range or sheet title to append to
	CredentialsFile string `json:"credentials_file"` // OAuth client secret (provider-issued)
	GmailTokenFile  string `json:"gmail_token_file"`
	SheetsTokenFile string `json:"sheets_token_file"`
	LedgerPath      string `json:"ledger_path"`
	DatabasePath    string `json:"database_path"` // run-history DB
	APIPort         string `json:"api_port"`
	Interactive     bool   `json:"interactive"` // allow the console consent flow
}

// Default configuration values
const (
	DefaultSheetRange      = "Sheet1"
	DefaultCredentialsFile = "credentials.json"
	DefaultGmailTokenFile  = "token_gmail.json"
	DefaultSheetsTokenFile = "token_sheets.json"
	DefaultLedgerPath      = "processed_emails.json"
	DefaultDatabasePath    = "data/inboxrow.db"
	DefaultAPIPort         = "8080"
)

// Load loads configuration from environment variables and an optional config
// file. Priority: environment variables > config file > default values.
// The config file path is taken from INBOXROW_CONFIG (default "config.json");
// a missing file is not an error.
func Load() (*Config, error) {
	cfg := &Config{
		SheetRange:      DefaultSheetRange,
		CredentialsFile: DefaultCredentialsFile,
		GmailTokenFile:  DefaultGmailTokenFile,
		SheetsTokenFile: DefaultSheetsTokenFile,
		LedgerPath:      DefaultLedgerPath,
		DatabasePath:    DefaultDatabasePath,
		APIPort:         DefaultAPIPort,
		Interactive:     true,
	}

	path := os.Getenv("INBOXROW_CONFIG")
	if path == "" {
		path = "config.json"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("INBOXROW_SPREADSHEET_ID"); v != "" {
		cfg.SpreadsheetID = v
	}
	if v := os.Getenv("INBOXROW_SHEET_RANGE"); v != "" {
		cfg.SheetRange = v
	}
	if v := os.Getenv("INBOXROW_CREDENTIALS_FILE"); v != "" {
		cfg.CredentialsFile = v
	}
	if v := os.Getenv("INBOXROW_GMAIL_TOKEN_FILE"); v != "" {
		cfg.GmailTokenFile = v
	}
	if v := os.Getenv("INBOXROW_SHEETS_TOKEN_FILE"); v != "" {
		cfg.SheetsTokenFile = v
	}
	if v := os.Getenv("INBOXROW_LEDGER_PATH"); v != "" {
		cfg.LedgerPath = v
	}
	if v := os.Getenv("INBOXROW_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("INBOXROW_API_PORT"); v != "" {
		cfg.APIPort = v
	}
	if v := os.Getenv("INBOXROW_NO_BROWSER"); v == "1" || v == "true" {
		cfg.Interactive = false
	}
}
