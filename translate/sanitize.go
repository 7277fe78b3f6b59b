package translate

import (
	"github.com/robinvdvleuten/xbrl/jsonvalue"
)

// Payable fields that callers are known to send as null. Each entry is a
// path of keys, canonical names first, then storage names.
var nullablePayables = [][]string{
	{"StatementOfFinancialPosition", "CurrentLiabilities", "TradeAndOtherPayablesCurrent"},
	{"StatementOfFinancialPosition", "NonCurrentLiabilities", "TradeAndOtherPayablesNoncurrent"},
	{"statement_of_financial_position", "current_liabilities", "trade_and_other_payables"},
	{"statement_of_financial_position", "noncurrent_liabilities", "trade_and_other_payables"},
}

// SanitizeInput returns a copy of doc with null trade payables replaced by 0.
// Other nulls are left for the validator to report.
func SanitizeInput(doc *jsonvalue.Object) *jsonvalue.Object {
	out := doc.Clone()
	if out == nil {
		return jsonvalue.NewObject(0)
	}
	for _, path := range nullablePayables {
		parent := out
		for _, key := range path[:len(path)-1] {
			next, ok := parent.Object(key)
			if !ok {
				parent = nil
				break
			}
			parent = next
		}
		if parent == nil {
			continue
		}
		leaf := path[len(path)-1]
		if v, ok := parent.Get(leaf); ok && jsonvalue.IsNull(v) {
			parent.Set(leaf, jsonvalue.Number(0))
		}
	}
	return out
}

// Unwrap returns the filing inside a request envelope. Filings may arrive
// bare, as {"mapped_data": ...} or as {"data": {"mapped_data": ...}}.
func Unwrap(doc *jsonvalue.Object) *jsonvalue.Object {
	if inner, ok := doc.Object("mapped_data"); ok {
		return inner
	}
	if data, ok := doc.Object("data"); ok {
		if inner, ok := data.Object("mapped_data"); ok {
			return inner
		}
	}
	return doc
}
