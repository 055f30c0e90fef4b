package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"countdown-cli/internal/model"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// GlobalConfig holds user preferences. The file is optional; every key can also be set
// through its environment variable, which wins over the file.
type GlobalConfig struct {
	// Dir overrides the data directory (default: <config dir>/data).
	Dir string `json:"dir" yaml:"dir,omitempty" env:"COUNTDOWN_DIR"`

	// SeedSamples fills an empty or unreadable store with two sample events.
	SeedSamples bool `json:"seedSamples" yaml:"seedSamples,omitempty" env:"COUNTDOWN_SEED_SAMPLES"`

	// DefaultColor is the accent for new events: a palette name or #RRGGBB.
	DefaultColor string `json:"defaultColor" yaml:"defaultColor,omitempty" env:"COUNTDOWN_DEFAULT_COLOR" env-default:"blue"`

	// Theme is auto|light|dark.
	Theme string `json:"theme" yaml:"theme,omitempty" env:"COUNTDOWN_TUI_THEME" env-default:"auto"`

	LogLevel string `json:"logLevel" yaml:"logLevel,omitempty" env:"COUNTDOWN_LOG_LEVEL" env-default:"info"`

	// Format is the default CLI output format (json|edn|yaml).
	Format string `json:"format" yaml:"format,omitempty" env:"COUNTDOWN_FORMAT" env-default:"json"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.countdown).
	if v := strings.TrimSpace(os.Getenv("COUNTDOWN_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".countdown"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadConfig reads the config file (when present) and applies env overrides and defaults.
func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	var cfg GlobalConfig
	if _, statErr := os.Stat(path); statErr == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config env: %w", err)
	}
	return &cfg, nil
}

// LoadConfigFile reads only the file, without env overrides or defaults. Used when
// editing the file so env values are not written back.
func LoadConfigFile() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func SaveConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ConfigKeys lists the keys accepted by Set.
func ConfigKeys() []string {
	keys := []string{"dir", "seedSamples", "defaultColor", "theme", "logLevel", "format"}
	sort.Strings(keys)
	return keys
}

// Set assigns one key from its string form, validating the value.
func (c *GlobalConfig) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "dir":
		c.Dir = value
	case "seedSamples":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("seedSamples: %w", err)
		}
		c.SeedSamples = b
	case "defaultColor":
		if _, err := model.ResolveColor(value); err != nil {
			return fmt.Errorf("defaultColor: %w", err)
		}
		c.DefaultColor = value
	case "theme":
		switch strings.ToLower(value) {
		case "auto", "light", "dark":
			c.Theme = strings.ToLower(value)
		default:
			return fmt.Errorf("theme: %q (expected auto|light|dark)", value)
		}
	case "logLevel":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("logLevel: %q (expected debug|info|warn|error)", value)
		}
	case "format":
		switch value {
		case "json", "edn", "yaml":
			c.Format = value
		default:
			return fmt.Errorf("format: %q (expected json|edn|yaml)", value)
		}
	default:
		return fmt.Errorf("unknown config key %q (expected one of: %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	return nil
}

// DefaultColorHex resolves DefaultColor, falling back to the built-in accent.
func (c *GlobalConfig) DefaultColorHex() string {
	if c == nil {
		return model.DefaultColorHex
	}
	hex, err := model.ResolveColor(c.DefaultColor)
	if err != nil {
		return model.DefaultColorHex
	}
	return hex
}
