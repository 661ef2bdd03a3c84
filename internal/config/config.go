package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tally-dev/tally/internal/period"
)

// FileName is the config file at the root of a tally directory.
const FileName = "tally.yaml"

// Environment variables holding secrets. They are never written to tally.yaml.
const (
	EnvSMTPPassword = "TALLY_SMTP_PASSWORD"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Profile    ProfileConfig    `yaml:"profile"`
	Budgets    []Budget         `yaml:"budgets,omitempty"`
	Recurrence RecurrenceConfig `yaml:"recurrence"`
	Reminders  ReminderConfig   `yaml:"reminders"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Advisor    AdvisorConfig    `yaml:"advisor"`
	Log        LogConfig        `yaml:"log"`
}

// ProfileConfig identifies the owner of the data.
type ProfileConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email,omitempty"` // default reminder recipient
}

// Budget is a spending limit for one category in one month.
type Budget struct {
	Month    string          `yaml:"month"` // "YYYY-MM"
	Category string          `yaml:"category"`
	Limit    decimal.Decimal `yaml:"limit"`
}

// RecurrenceConfig tunes recurring-payment detection.
type RecurrenceConfig struct {
	MinObservations int `yaml:"min_observations"`
	MinMonths       int `yaml:"min_months"`
	ToleranceDays   int `yaml:"tolerance_days"`
}

// ReminderConfig controls the bill reminder window.
type ReminderConfig struct {
	HorizonDays int `yaml:"horizon_days"`
}

// SMTPConfig describes the outgoing mail relay. The password comes from
// TALLY_SMTP_PASSWORD.
type SMTPConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	From     string `yaml:"from,omitempty"`
}

// AdvisorConfig controls the important-bill filter. The API key comes from
// GEMINI_API_KEY.
type AdvisorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model,omitempty"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Secrets holds credentials read from the environment.
type Secrets struct {
	SMTPPassword string
	GeminiAPIKey string
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new profile.
func Default(name string) *Config {
	return &Config{
		Profile: ProfileConfig{Name: name},
		Recurrence: RecurrenceConfig{
			MinObservations: 3,
			MinMonths:       3,
			ToleranceDays:   3,
		},
		Reminders: ReminderConfig{HorizonDays: 5},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Advisor: AdvisorConfig{Model: "gemini-1.5-flash"},
		Log:     LogConfig{Level: "info"},
	}
}

// Validate checks the config and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	for i, b := range c.Budgets {
		if _, err := period.Parse(b.Month); err != nil {
			errs = append(errs, fmt.Errorf("budgets[%d]: %w", i, err))
		}
		if b.Category == "" {
			errs = append(errs, fmt.Errorf("budgets[%d]: empty category", i))
		}
		if b.Limit.IsNegative() {
			errs = append(errs, fmt.Errorf("budgets[%d]: negative limit %s", i, b.Limit))
		}
	}
	if c.Recurrence.MinObservations < 1 {
		errs = append(errs, fmt.Errorf("recurrence.min_observations must be at least 1"))
	}
	if c.Recurrence.MinMonths < 1 {
		errs = append(errs, fmt.Errorf("recurrence.min_months must be at least 1"))
	}
	if c.Recurrence.ToleranceDays < 0 {
		errs = append(errs, fmt.Errorf("recurrence.tolerance_days must not be negative"))
	}
	if c.Reminders.HorizonDays < 1 {
		errs = append(errs, fmt.Errorf("reminders.horizon_days must be at least 1"))
	}
	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("smtp.port %d out of range", c.SMTP.Port))
	}

	return errors.Join(errs...)
}

// SetBudget adds or replaces the limit for category in month.
func (c *Config) SetBudget(month period.YearMonth, category string, limit decimal.Decimal) {
	key := month.String()
	for i, b := range c.Budgets {
		if b.Month == key && b.Category == category {
			c.Budgets[i].Limit = limit
			return
		}
	}
	c.Budgets = append(c.Budgets, Budget{Month: key, Category: category, Limit: limit})
}

// LoadSecrets reads credentials from the environment, first loading
// <dir>/.env if present. Variables already set in the environment win.
func LoadSecrets(dir string) (Secrets, error) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return Secrets{}, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return Secrets{
		SMTPPassword: os.Getenv(EnvSMTPPassword),
		GeminiAPIKey: os.Getenv(EnvGeminiAPIKey),
	}, nil
}
