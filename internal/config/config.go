package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/payday-dev/payday/internal/income"
	"github.com/payday-dev/payday/internal/matcher"
	"github.com/payday-dev/payday/internal/schedule"
)

// FileName is the config file looked up in the workspace root.
const FileName = "payday.yaml"

// Config represents the top-level payday.yaml configuration.
type Config struct {
	Matching MatchingConfig `yaml:"matching"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Income   IncomeConfig   `yaml:"income"`
	Sources  SourcesConfig  `yaml:"sources"`
}

// MatchingConfig controls how statement entries are paired with occurrences.
// AmountTolerancePct is kept as written and parsed as a decimal, the same
// way item amounts are.
type MatchingConfig struct {
	AmountTolerancePct string `yaml:"amount_tolerance_pct"`
	DateWindowDays     int    `yaml:"date_window_days"`
	RespectAccountHint bool   `yaml:"respect_account_hint"`
}

// ScheduleConfig controls projection.
type ScheduleConfig struct {
	SemimonthlyOffset int `yaml:"semimonthly_offset"`
}

// IncomeConfig controls the generic paycheck classifier.
type IncomeConfig struct {
	GenericKeywords []string `yaml:"generic_keywords,flow"`
}

// SourcesConfig locates the items file and statement exports. Relative
// paths are resolved against the workspace root.
type SourcesConfig struct {
	ItemsFile       string `yaml:"items_file"`
	StatementsDir   string `yaml:"statements_dir"`
	StatementFormat string `yaml:"statement_format"`
	Account         string `yaml:"account,omitempty"`
}

// Load reads a payday.yaml file from disk. Keys the file omits keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
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

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Matching: MatchingConfig{
			AmountTolerancePct: "10",
			DateWindowDays:     3,
		},
		Schedule: ScheduleConfig{
			SemimonthlyOffset: schedule.DefaultSemimonthlyOffset,
		},
		Income: IncomeConfig{
			GenericKeywords: append([]string(nil), income.DefaultKeywords...),
		},
		Sources: SourcesConfig{
			ItemsFile:       "items.yaml",
			StatementsDir:   "statements",
			StatementFormat: "generic",
		},
	}
}

// ApplyEnv overrides settings from PAYDAY_* environment variables.
// Unparseable numbers are ignored.
func (c *Config) ApplyEnv() {
	c.Matching.AmountTolerancePct = getEnvDecimal("PAYDAY_AMOUNT_TOLERANCE_PCT", c.Matching.AmountTolerancePct)
	c.Matching.DateWindowDays = getEnvInt("PAYDAY_DATE_WINDOW_DAYS", c.Matching.DateWindowDays)
	c.Schedule.SemimonthlyOffset = getEnvInt("PAYDAY_SEMIMONTHLY_OFFSET", c.Schedule.SemimonthlyOffset)
	c.Sources.ItemsFile = getEnv("PAYDAY_ITEMS_FILE", c.Sources.ItemsFile)
	c.Sources.StatementsDir = getEnv("PAYDAY_STATEMENTS_DIR", c.Sources.StatementsDir)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	if pct, err := decimal.NewFromString(c.Matching.AmountTolerancePct); err != nil {
		errs = append(errs, fmt.Sprintf("amount_tolerance_pct %q: not a number", c.Matching.AmountTolerancePct))
	} else if pct.IsNegative() {
		errs = append(errs, fmt.Sprintf("amount_tolerance_pct %s: must not be negative", c.Matching.AmountTolerancePct))
	}
	if c.Matching.DateWindowDays < 0 {
		errs = append(errs, fmt.Sprintf("date_window_days %d: must not be negative", c.Matching.DateWindowDays))
	}
	if o := c.Schedule.SemimonthlyOffset; o < 1 || o > 27 {
		errs = append(errs, fmt.Sprintf("semimonthly_offset %d: must be between 1 and 27", o))
	}
	if strings.TrimSpace(c.Sources.ItemsFile) == "" {
		errs = append(errs, "items_file cannot be empty")
	}
	if strings.TrimSpace(c.Sources.StatementFormat) == "" {
		errs = append(errs, "statement_format cannot be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// MatcherOptions converts the matching section. Call Validate first; an
// unparseable tolerance becomes zero.
func (c *Config) MatcherOptions() matcher.Options {
	pct, _ := decimal.NewFromString(c.Matching.AmountTolerancePct)
	return matcher.Options{
		AmountTolerancePct: pct,
		DateWindowDays:     c.Matching.DateWindowDays,
		RespectAccountHint: c.Matching.RespectAccountHint,
	}
}

// Pairing returns the semimonthly pairing for items without fixed days.
func (c *Config) Pairing() schedule.Pairing {
	return schedule.OffsetPairing{Offset: c.Schedule.SemimonthlyOffset}
}

// ItemsPath resolves the items file against root.
func (c *Config) ItemsPath(root string) string {
	return resolve(root, c.Sources.ItemsFile)
}

// StatementsPath resolves the statements directory against root.
func (c *Config) StatementsPath(root string) string {
	return resolve(root, c.Sources.StatementsDir)
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		if _, err := decimal.NewFromString(value); err == nil {
			return value
		}
	}
	return defaultValue
}
