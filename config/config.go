// Package config loads the application configuration. Sources are applied
// in order, later ones winning:
//
//	defaults -> TOML file -> .env file -> XBRL_* environment variables
//
// A .env file never overrides a variable that is already set in the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/xbrl/logging"
	"github.com/robinvdvleuten/xbrl/validation"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "XBRL_"

// Config is the application configuration.
type Config struct {
	LogLevel  string `toml:"log_level" validate:"omitempty,oneofci=trace debug info warn warning error"`
	LogFormat string `toml:"log_format" validate:"omitempty,oneof=console json"`
	Telemetry bool   `toml:"telemetry"`

	// StrictFields turns on the strict required-field check.
	StrictFields bool `toml:"strict_fields"`
	// Currencies extends the currency allow-list.
	Currencies []string `toml:"currencies" validate:"dive,len=3,alpha"`
	// TaxonomyVersions extends the accepted taxonomy versions.
	TaxonomyVersions []string `toml:"taxonomy_versions" validate:"dive,required"`
	// Tolerances overrides the tolerance per rounding level.
	Tolerances map[string]string `toml:"tolerances" validate:"dive,keys,oneofci=units thousands millions billions,endkeys,tolerance"`

	// TagCache shares one tag cache across all sections of a run.
	TagCache bool `toml:"tag_cache"`
	// Lenient lets the loader repair malformed JSON input.
	Lenient bool `toml:"lenient"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: logging.FormatConsole,
		TagCache:  true,
		Lenient:   true,
	}
}

// Load builds the configuration from path (optional) and envFiles. Missing
// env files are ignored; a missing config file is an error.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", name, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies XBRL_* overrides read through lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	boolean := func(name string, dst *bool) error {
		v, ok := get(name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}

	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	if v, ok := get("CURRENCIES"); ok {
		c.Currencies = splitList(v)
	}
	if v, ok := get("TAXONOMY_VERSIONS"); ok {
		c.TaxonomyVersions = splitList(v)
	}
	for _, b := range []struct {
		name string
		dst  *bool
	}{
		{"TELEMETRY", &c.Telemetry},
		{"STRICT_FIELDS", &c.StrictFields},
		{"TAG_CACHE", &c.TagCache},
		{"LENIENT", &c.Lenient},
	} {
		if err := boolean(b.name, b.dst); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// tolerance accepts a non-negative decimal.
	_ = v.RegisterValidation("tolerance", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && !d.IsNegative()
	})
	return v
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Logging returns the logger options for this configuration.
func (c *Config) Logging() logging.Options {
	return logging.Options{Level: c.LogLevel, Format: c.LogFormat}
}

// Validation returns the validator configuration with the overrides applied
// on top of the defaults.
func (c *Config) Validation() *validation.Config {
	cfg := validation.NewConfig()
	cfg.StrictFields = c.StrictFields

	for _, code := range c.Currencies {
		code = strings.ToUpper(strings.TrimSpace(code))
		if !cfg.AllowsCurrency(code) {
			cfg.Currencies = append(cfg.Currencies, code)
		}
	}
	for _, version := range c.TaxonomyVersions {
		if !cfg.SupportsTaxonomy(version) {
			cfg.TaxonomyVersions = append(cfg.TaxonomyVersions, version)
		}
	}
	for level, value := range c.Tolerances {
		canonical, ok := validation.ParseRounding(level)
		if !ok {
			continue
		}
		if tol, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil && !tol.IsNegative() {
			cfg.Tolerances[canonical] = tol
		}
	}
	return cfg
}
