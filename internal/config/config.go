package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// ShiftTemplate is a named recurrence preset for bulk-adding shifts,
// e.g. "every other weekend" mapped to a night shift symbol.
type ShiftTemplate struct {
	Name        string `yaml:"name" validate:"required"`
	RRule       string `yaml:"rrule" validate:"required"`
	ShiftSymbol string `yaml:"shiftSymbol" validate:"required"`
}

// Retention configures how long change-log entries are kept.
type Retention struct {
	Policy string `yaml:"policy" validate:"omitempty,oneof=forever days weeks"`
	N      int    `yaml:"n,omitempty" validate:"omitempty,min=1"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL    string          `yaml:"databaseURL" validate:"required"`
	CalendarID     string          `yaml:"calendarID,omitempty"`
	CalendarSync   *bool           `yaml:"calendarSync,omitempty"`
	ActorName      string          `yaml:"actorName,omitempty"`
	Retention      Retention       `yaml:"retention,omitempty"`
	ShiftTemplates []ShiftTemplate `yaml:"shiftTemplates,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// SyncEnabled reports whether calendar mirroring is on. Unset means on.
func (c *Config) SyncEnabled() bool {
	return c.CalendarSync == nil || *c.CalendarSync
}

// Load loads and validates the configuration from shiftbook_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix
// For example, env="test" will look for "shiftbook_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the retention policy and
// the rrule syntax of every shift template
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch cfg.Retention.Policy {
	case "days", "weeks":
		if cfg.Retention.N < 1 {
			return fmt.Errorf("config validation failed: retention policy %q requires n >= 1", cfg.Retention.Policy)
		}
	}

	for i, tmpl := range cfg.ShiftTemplates {
		if _, err := rrule.StrToRRule(tmpl.RRule); err != nil {
			return fmt.Errorf("invalid rrule in shiftTemplates[%d]: %w", i, err)
		}
	}

	return nil
}

// Template returns the shift template with the given name.
func (c *Config) Template(name string) (ShiftTemplate, bool) {
	for _, tmpl := range c.ShiftTemplates {
		if tmpl.Name == name {
			return tmpl, true
		}
	}
	return ShiftTemplate{}, false
}

// findConfigFile searches for the config file in current directory and home directory
// If env is provided, it adds it as an extension (e.g., "shiftbook_config.test.yaml")
func findConfigFile(env string) (string, error) {
	configFileName := "shiftbook_config.yaml"
	if env != "" {
		configFileName = "shiftbook_config." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
