package translate

import (
	"strings"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
)

type field struct {
	name  string
	value jsonvalue.Value
}

// Filing information defaults, applied per field when missing or null.
var filingDefaults = []field{
	{"current_period_start", jsonvalue.String("2023-01-01")},
	{"current_period_end", jsonvalue.String("2023-12-31")},
	{"xbrl_filing_type", jsonvalue.String("PARTIAL")},
	{"financial_statement_type", jsonvalue.String("COMPANY_LEVEL")},
	{"accounting_standard", jsonvalue.String("SFRS")},
	{"authorisation_date", jsonvalue.String("2024-01-15")},
	{"financial_position_type", jsonvalue.String("CURRENT_NONCURRENT")},
	{"is_going_concern", jsonvalue.Bool(true)},
	{"has_comparative_changes", jsonvalue.Bool(false)},
	{"presentation_currency", jsonvalue.String("SGD")},
	{"functional_currency", jsonvalue.String("SGD")},
	{"rounding_level", jsonvalue.String("UNIT")},
	{"entity_operations_description", jsonvalue.String("Business operations and activities in Singapore.")},
	{"principal_place_of_business", jsonvalue.String("Singapore")},
	{"has_more_than_50_employees", jsonvalue.Bool(false)},
	{"taxonomy_version", jsonvalue.String("2022.2")},
	{"xbrl_software", jsonvalue.String("AI XBRL Assistant")},
	{"xbrl_preparation_method", jsonvalue.String("AUTOMATED")},
}

// Whole-section defaults, used only when a section is missing or empty.
var (
	directorsDefaults = []field{
		{"directors_opinion_true_fair_view", jsonvalue.Bool(true)},
		{"reasonable_grounds_company_debts", jsonvalue.Bool(true)},
	}
	auditDefaults = []field{
		{"audit_opinion", jsonvalue.String("Unqualified")},
		{"proper_accounting_records", jsonvalue.Bool(true)},
	}
	equityDefaults = []field{
		{"share_capital", jsonvalue.Number(1)},
		{"accumulated_profits_losses", jsonvalue.Number(0)},
		{"total_equity", jsonvalue.Number(1)},
	}
)

// Totals zeroed when absent, keyed by their section's storage path.
var (
	positionTotals = []struct{ section, field string }{
		{"current_assets", "total_current_assets"},
		{"noncurrent_assets", "total_noncurrent_assets"},
		{"current_liabilities", "total_current_liabilities"},
		{"noncurrent_liabilities", "total_noncurrent_liabilities"},
	}
	notesTotals = []struct{ section, field string }{
		{"revenue", "total_revenue"},
		{"trade_and_other_receivables", "total_trade_and_other_receivables"},
		{"trade_and_other_payables", "total_trade_and_other_payables"},
	}
	incomeTotals = []string{
		"profit_loss_before_taxation",
		"tax_expense_benefit_continuing_operations",
		"profit_loss",
		"profit_loss_attributable_to_owners_of_company",
		"revenue",
	}
)

// ApplyStorageDefaults returns a copy of a storage-named document with the
// defaults the storage layer requires filled in. Existing values are kept.
// Missing asset and liability totals are derived from their sub-section totals.
func ApplyStorageDefaults(doc *jsonvalue.Object) *jsonvalue.Object {
	out := doc.Clone()
	if out == nil {
		out = jsonvalue.NewObject(6)
	}

	filing := ensureObject(out, "filing_information")
	for _, f := range filingDefaults {
		if v, ok := filing.Get(f.name); !ok || jsonvalue.IsNull(v) {
			filing.Set(f.name, f.value)
		}
	}

	fillEmpty(ensureObject(out, "directors_statement"), directorsDefaults)
	fillEmpty(ensureObject(out, "audit_report"), auditDefaults)

	position := ensureObject(out, "statement_of_financial_position")
	for _, t := range positionTotals {
		sec := ensureObject(position, t.section)
		if !sec.Has(t.field) {
			sec.Set(t.field, jsonvalue.Number(0))
		}
	}
	fillEmpty(ensureObject(position, "equity"), equityDefaults)

	deriveTotal(position, "total_assets",
		"current_assets.total_current_assets", "noncurrent_assets.total_noncurrent_assets")
	deriveTotal(position, "total_liabilities",
		"current_liabilities.total_current_liabilities", "noncurrent_liabilities.total_noncurrent_liabilities")

	income := ensureObject(out, "income_statement")
	for _, name := range incomeTotals {
		if !income.Has(name) {
			income.Set(name, jsonvalue.Number(0))
		}
	}

	notes := ensureObject(out, "notes")
	for _, t := range notesTotals {
		sec := ensureObject(notes, t.section)
		if !sec.Has(t.field) {
			sec.Set(t.field, jsonvalue.Number(0))
		}
	}

	return out
}

// ensureObject returns parent[key], replacing anything that is not an object.
func ensureObject(parent *jsonvalue.Object, key string) *jsonvalue.Object {
	if obj, ok := parent.Object(key); ok {
		return obj
	}
	obj := jsonvalue.NewObject(4)
	parent.Set(key, obj)
	return obj
}

func fillEmpty(obj *jsonvalue.Object, defaults []field) {
	if obj.Len() > 0 {
		return
	}
	for _, f := range defaults {
		obj.Set(f.name, f.value)
	}
}

func deriveTotal(position *jsonvalue.Object, total string, parts ...string) {
	if position.Has(total) {
		return
	}
	sum := 0.0
	for _, p := range parts {
		sum += nestedNumber(position, p)
	}
	position.Set(total, jsonvalue.Number(sum))
}

func nestedNumber(obj *jsonvalue.Object, path string) float64 {
	head, rest, nested := strings.Cut(path, ".")
	if nested {
		sub, ok := obj.Object(head)
		if !ok {
			return 0
		}
		return nestedNumber(sub, rest)
	}
	v, _ := obj.Get(path)
	n, _ := jsonvalue.AsNumber(v)
	return n
}
