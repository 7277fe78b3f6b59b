package validation

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
)

// Key preference lists. Documents may use canonical or storage names, so
// every lookup tries each spelling in order and takes the first present key.
var (
	filingKeys    = []string{"FilingInformation", "filing_information"}
	positionKeys  = []string{"StatementOfFinancialPosition", "statement_of_financial_position"}
	incomeKeys    = []string{"IncomeStatement", "income_statement"}
	auditKeys     = []string{"AuditReport", "audit_report"}
	notesKeys     = []string{"Notes", "notes"}
	cashFlowKeys  = []string{"StatementOfCashFlows", "statement_of_cash_flows"}
	changesKeys   = []string{"StatementOfChangesInEquity", "statement_of_changes_in_equity"}
	roundingKeys  = []string{"LevelOfRoundingUsedInFinancialStatements", "level_of_rounding_used_in_financial_statements", "rounding_level"}
	taxonomyKeys  = []string{"TaxonomyVersion", "taxonomy_version"}
	assetsKeys    = []string{"Assets", "assets", "total_assets"}
	liabilityKeys = []string{"Liabilities", "liabilities", "total_liabilities"}

	currentAssetsKeys          = []string{"CurrentAssets", "current_assets"}
	currentAssetsTotalKeys     = []string{"CurrentAssets", "current_assets", "total_current_assets"}
	nonCurrentAssetsKeys       = []string{"NonCurrentAssets", "NoncurrentAssets", "non_current_assets", "noncurrent_assets"}
	nonCurrentAssetsTotalKeys  = []string{"NonCurrentAssets", "NoncurrentAssets", "non_current_assets", "noncurrent_assets", "total_non_current_assets", "total_noncurrent_assets"}
	currentLiabilitiesKeys     = []string{"CurrentLiabilities", "current_liabilities"}
	currentLiabilitiesTotal    = []string{"CurrentLiabilities", "current_liabilities", "total_current_liabilities"}
	nonCurrentLiabilitiesKeys  = []string{"NonCurrentLiabilities", "NoncurrentLiabilities", "non_current_liabilities", "noncurrent_liabilities"}
	nonCurrentLiabilitiesTotal = []string{"NonCurrentLiabilities", "NoncurrentLiabilities", "non_current_liabilities", "noncurrent_liabilities", "total_non_current_liabilities", "total_noncurrent_liabilities"}
	equityKeys                 = []string{"Equity", "equity"}
	equityTotalKeys            = []string{"Equity", "equity", "total_equity"}
)

// firstKey returns the first of keys present in obj.
func firstKey(obj *jsonvalue.Object, keys []string) (string, bool) {
	for _, k := range keys {
		if obj.Has(k) {
			return k, true
		}
	}
	return "", false
}

// lookup returns the value under the first present key. A null value is
// reported as absent.
func lookup(obj *jsonvalue.Object, keys []string) (jsonvalue.Value, string, bool) {
	k, ok := firstKey(obj, keys)
	if !ok {
		return nil, "", false
	}
	v, _ := obj.Get(k)
	if jsonvalue.IsNull(v) {
		return nil, k, false
	}
	return v, k, true
}

// section returns the nested object under the first present key. The
// second result reports presence; a present value that is not an object
// yields an empty section.
func section(obj *jsonvalue.Object, keys []string) (*jsonvalue.Object, bool) {
	v, _, ok := lookup(obj, keys)
	if !ok {
		return nil, false
	}
	if sub, isObject := v.(*jsonvalue.Object); isObject {
		return sub, true
	}
	return jsonvalue.NewObject(0), true
}

// text returns a scalar as a trimmed string. Absent and null values are "".
func text(obj *jsonvalue.Object, keys []string) string {
	v, _, ok := lookup(obj, keys)
	if !ok {
		return ""
	}
	return scalarString(v)
}

func scalarString(v jsonvalue.Value) string {
	switch v := v.(type) {
	case jsonvalue.String:
		return strings.TrimSpace(string(v))
	case jsonvalue.Number:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case jsonvalue.Bool:
		return strconv.FormatBool(bool(v))
	}
	return ""
}

// toDecimal converts a number or numeric string.
func toDecimal(v jsonvalue.Value) (decimal.Decimal, bool) {
	switch v := v.(type) {
	case jsonvalue.Number:
		return decimal.NewFromFloat(float64(v)), true
	case jsonvalue.String:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(string(v)), ",", ""))
		return d, err == nil
	}
	return decimal.Zero, false
}

// reader collects amounts for one rule. Values that are present but not
// numeric are reported once each and mark the reader invalid, so the rule
// can skip arithmetic on garbage.
type reader struct {
	report  *Report
	section string
	rule    string
	invalid bool
}

// amount returns the value under the first present key and whether it was
// present. Absent and null values are zero.
func (r *reader) amount(obj *jsonvalue.Object, keys []string) (decimal.Decimal, bool) {
	v, key, ok := lookup(obj, keys)
	if !ok {
		return decimal.Zero, false
	}
	d, numeric := toDecimal(v)
	if !numeric {
		r.report.add(r.section, r.rule, SeverityError, "Field '%s' must be a number", key)
		r.invalid = true
		return decimal.Zero, false
	}
	return d, true
}

// pascal derives the canonical spelling of a snake_case field name.
func pascal(snake string) string {
	var sb strings.Builder
	for _, part := range strings.Split(snake, "_") {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}
	return sb.String()
}

// dual returns the keys for a snake_case field in both conventions,
// canonical first.
func dual(snake string) []string {
	return []string{pascal(snake), snake}
}
