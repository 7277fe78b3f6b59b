package validation

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Rounding levels a filing may declare.
const (
	RoundingUnits     = "Units"
	RoundingThousands = "Thousands"
	RoundingMillions  = "Millions"
	RoundingBillions  = "Billions"
)

// DefaultTaxonomyVersion is used when a filing names no supported version.
const DefaultTaxonomyVersion = "2022.2"

var defaultCurrencies = []string{
	"SGD", "USD", "EUR", "GBP", "JPY", "CNY", "HKD", "AUD", "MYR", "IDR",
	"THB", "INR", "CHF", "CAD", "NZD", "KRW", "TWD", "PHP", "VND",
}

// Config controls the validator. It is attached to a context so the CLI and
// the pipeline can adjust it without threading it through every call.
type Config struct {
	// Tolerances holds the accepted difference per rounding level.
	Tolerances map[string]decimal.Decimal
	// Currencies is the allow-list of ISO currency codes.
	Currencies []string
	// StrictFields requires every non-optional mapped field of a present section.
	StrictFields bool
	// TaxonomyVersions lists the accepted taxonomy versions.
	TaxonomyVersions []string
}

// NewConfig creates a Config with the ACRA defaults.
func NewConfig() *Config {
	return &Config{
		Tolerances: map[string]decimal.Decimal{
			RoundingUnits:     decimal.RequireFromString("0.1"),
			RoundingThousands: decimal.NewFromInt(1),
			RoundingMillions:  decimal.NewFromInt(100),
			RoundingBillions:  decimal.NewFromInt(100000),
		},
		Currencies:       append([]string(nil), defaultCurrencies...),
		TaxonomyVersions: []string{"2022", DefaultTaxonomyVersion},
	}
}

// ParseRounding returns the canonical spelling of a rounding level, matching
// case-insensitively.
func ParseRounding(s string) (string, bool) {
	for _, level := range []string{RoundingUnits, RoundingThousands, RoundingMillions, RoundingBillions} {
		if strings.EqualFold(strings.TrimSpace(s), level) {
			return level, true
		}
	}
	return "", false
}

// Tolerance returns the tolerance for a rounding level. Unknown or empty
// levels use the Units tolerance.
func (c *Config) Tolerance(rounding string) decimal.Decimal {
	if level, ok := ParseRounding(rounding); ok {
		if tol, ok := c.Tolerances[level]; ok {
			return tol
		}
	}
	if tol, ok := c.Tolerances[RoundingUnits]; ok {
		return tol
	}
	return decimal.RequireFromString("0.1")
}

// AllowsCurrency reports whether code is on the allow-list.
func (c *Config) AllowsCurrency(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, allowed := range c.Currencies {
		if allowed == code {
			return true
		}
	}
	return false
}

// SupportsTaxonomy reports whether version is accepted.
func (c *Config) SupportsTaxonomy(version string) bool {
	for _, v := range c.TaxonomyVersions {
		if v == version {
			return true
		}
	}
	return false
}

type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ConfigFromContext retrieves the Config from context.
// Returns a default Config if not found.
func ConfigFromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return NewConfig()
}
