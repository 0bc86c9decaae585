package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"runlog/internal/analysis"
)

// Config represents the application configuration
type Config struct {
	Athlete AthleteConfig `json:"athlete"`
	Zones   ZonesConfig   `json:"zones"`
	Strava  StravaConfig  `json:"strava"`
	Storage StorageConfig `json:"storage"`
	Log     LogConfig     `json:"log"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	UserID      int64   `json:"user_id"`
	ThresholdHR float64 `json:"threshold_hr"`
}

// ZonesConfig controls how zone percentages are computed
type ZonesConfig struct {
	Denominator string `json:"denominator"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// StorageConfig holds the database location
type StorageConfig struct {
	DBPath string `json:"db_path"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level string `json:"level"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			UserID:      1,
			ThresholdHR: 171,
		},
		Zones: ZonesConfig{
			Denominator: analysis.DenominatorClassified.String(),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads the configuration from ~/.runlog/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Athlete.UserID == 0 {
		cfg.Athlete.UserID = defaults.Athlete.UserID
	}
	if cfg.Athlete.ThresholdHR == 0 {
		cfg.Athlete.ThresholdHR = defaults.Athlete.ThresholdHR
	}
	if cfg.Zones.Denominator == "" {
		cfg.Zones.Denominator = defaults.Zones.Denominator
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	return &cfg, nil
}

// LoadOrDefault returns the stored config, or the defaults when none exists
// yet. In that case an example file is written for the user to edit.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, ErrNoConfig) {
		if err := CreateExample(); err != nil {
			return nil, err
		}
		d := DefaultConfig()
		return &d, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to ~/.runlog/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}

	return Save(&example)
}

// Validate checks the analysis settings
func (c *Config) Validate() error {
	if c.Athlete.UserID <= 0 {
		return fmt.Errorf("athlete.user_id must be positive, got %d", c.Athlete.UserID)
	}
	if c.Athlete.ThresholdHR <= 0 {
		return fmt.Errorf("athlete.threshold_hr must be positive, got %v", c.Athlete.ThresholdHR)
	}
	if _, err := c.Denominator(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// ValidateStrava checks that Strava credentials are present
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// Denominator returns the configured zone percentage denominator
func (c *Config) Denominator() (analysis.Denominator, error) {
	d, err := analysis.ParseDenominator(c.Zones.Denominator)
	if err != nil {
		return 0, fmt.Errorf("zones.denominator: %w", err)
	}
	return d, nil
}

// LogLevel maps log.level to a slog level
func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return 0, fmt.Errorf("log.level must be one of error, warn, info, debug, got %q", c.Log.Level)
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".runlog"), nil
}
