package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// CurrentSchemaVersion is the current config schema version.
const CurrentSchemaVersion = 1

// DefaultSheetID identifies the public party-listing spreadsheet.
const DefaultSheetID = "1LAfG4Nt2g_P12HMCx-wEmWpXoX3yp1qAKdw89eLbeWU"

// Environment variable names for config overrides.
// Priority: Environment > Config File > Default
const (
	EnvPort        = "PLANILHA_PORT"
	EnvSheetID     = "PLANILHA_SHEET_ID"
	EnvSheetURL    = "PLANILHA_SHEET_URL"
	EnvRefreshCron = "PLANILHA_REFRESH_CRON"
	EnvTimezone    = "PLANILHA_TIMEZONE"
	EnvCORSOrigins = "PLANILHA_CORS_ORIGINS"
	EnvTheme       = "PLANILHA_THEME"
)

// Config holds application configuration.
type Config struct {
	SchemaVersion int    `json:"schema_version"`
	Port          int    `json:"port"`
	SheetID       string `json:"sheet_id"`
	// SheetURL, when set, wins over the URL derived from SheetID.
	// Useful for pointing at a mirror or a test fixture.
	SheetURL      string   `json:"sheet_url,omitempty"`
	RefreshCron   string   `json:"refresh_cron"`
	Timezone      string   `json:"timezone"`
	CORSOrigins   []string `json:"cors_origins,omitempty"`
	OverridesFile string   `json:"overrides_file,omitempty"`
	Theme         string   `json:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SchemaVersion: CurrentSchemaVersion,
		Port:          8080,
		SheetID:       DefaultSheetID,
		RefreshCron:   "*/10 * * * *",
		Timezone:      "America/Sao_Paulo",
		Theme:         "dark",
	}
}

// CSVURL returns the sheet export URL the fetcher should hit.
func (c Config) CSVURL() string {
	if c.SheetURL != "" {
		return c.SheetURL
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv", c.SheetID)
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadConfig reads config from disk. If the file doesn't exist or is corrupt,
// it returns DefaultConfig with a warning logged (non-fatal).
func LoadConfig() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	return LoadConfigFrom(path)
}

// LoadConfigFrom reads config from the specified path.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, use defaults (not an error)
			return cfg, nil
		}
		log.Printf("Warning: failed to read config file: %v, using defaults", err)
		return cfg, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		log.Printf("Warning: config file is corrupt: %v, using defaults", err)
		return DefaultConfig(), nil
	}

	if cfg.SchemaVersion != CurrentSchemaVersion {
		log.Printf("Warning: config schema version mismatch (got %d, expected %d), using defaults",
			cfg.SchemaVersion, CurrentSchemaVersion)
		return DefaultConfig(), nil
	}

	return normalizeConfig(cfg), nil
}

// normalizeConfig validates and normalizes config values.
func normalizeConfig(cfg Config) Config {
	defaults := DefaultConfig()

	cfg.SchemaVersion = CurrentSchemaVersion

	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = defaults.Port
	}
	if strings.TrimSpace(cfg.SheetID) == "" {
		cfg.SheetID = defaults.SheetID
	}
	if strings.TrimSpace(cfg.RefreshCron) == "" {
		cfg.RefreshCron = defaults.RefreshCron
	}
	if strings.TrimSpace(cfg.Timezone) == "" {
		cfg.Timezone = defaults.Timezone
	}
	switch cfg.Theme {
	case "dark", "light":
	default:
		cfg.Theme = defaults.Theme
	}

	return cfg
}

// SaveConfig writes config to disk atomically.
func SaveConfig(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	return SaveConfigTo(cfg, path)
}

// SaveConfigTo writes config to the specified path atomically.
func SaveConfigTo(cfg Config, path string) error {
	cfg.SchemaVersion = CurrentSchemaVersion

	return writeJSONAtomic(path, cfg)
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables take highest priority over config file values.
func ApplyEnvOverrides(cfg Config) Config {
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			cfg.Port = port
		}
	}

	if v := os.Getenv(EnvSheetID); v != "" {
		cfg.SheetID = v
	}

	if v := os.Getenv(EnvSheetURL); v != "" {
		cfg.SheetURL = v
	}

	if v := os.Getenv(EnvRefreshCron); v != "" {
		cfg.RefreshCron = v
	}

	if v := os.Getenv(EnvTimezone); v != "" {
		cfg.Timezone = v
	}

	if v := os.Getenv(EnvCORSOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}

	if v := os.Getenv(EnvTheme); v == "dark" || v == "light" {
		cfg.Theme = v
	}

	return cfg
}
