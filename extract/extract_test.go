package extract

import (
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/matcher"
	"github.com/robinvdvleuten/xbrl/reference"
)

func newExtractor() *Extractor {
	return New(matcher.New(reference.MustDefault()))
}

func decode(t *testing.T, data string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Decode([]byte(data))
	assert.NoError(t, err)
	return v
}

func TestExtractPositionContainer(t *testing.T) {
	e := newExtractor()
	res := e.Extract(decode(t, `{
		"statementOfFinancialPosition": {
			"Assets": 1000,
			"Liabilities": 600,
			"currentAssets": {"CashAndBankBalances": 1000}
		}
	}`))

	assert.Zero(t, res.IncomeStatement)
	assert.Zero(t, res.Unknown)
	assert.Equal(t, []string{"Assets", "Liabilities", "currentAssets.CashAndBankBalances"}, res.FinancialPosition.Keys())

	v, ok := res.FinancialPosition.Get("currentAssets.CashAndBankBalances")
	assert.True(t, ok)
	assert.Equal(t, 1000.0, v)

	_, ok = res.FinancialPosition.Get("equity")
	assert.False(t, ok)

	data, err := json.Marshal(res)
	assert.NoError(t, err)
	assert.Equal(t, `{"financial_position":{"Assets":1000,"Liabilities":600,"currentAssets.CashAndBankBalances":1000}}`, string(data))
}

func TestExtractIncomeContainerCopiesNumericLeaves(t *testing.T) {
	e := newExtractor()
	res := e.Extract(decode(t, `{"incomeStatement": {"Revenue": 50, "Currency": "SGD", "Audited": true, "ProfitLoss": -3.5}}`))

	assert.Equal(t, []string{"Revenue", "ProfitLoss"}, res.IncomeStatement.Keys())
	v, _ := res.IncomeStatement.Get("ProfitLoss")
	assert.Equal(t, -3.5, v)
}

func TestExtractClassifiesLooseValues(t *testing.T) {
	e := newExtractor()
	res := e.Extract(decode(t, `{
		"company": {"revenue": 5, "name": "Acme"},
		"bank": 42,
		"widgets": 3,
		"items": [{"revenue": 10}, {"wages": 4}]
	}`))

	revenue, ok := res.IncomeStatement.Get("Revenue")
	assert.True(t, ok)
	// items[0] is walked after company and overwrites it.
	assert.Equal(t, 10.0, revenue)

	wages, _ := res.IncomeStatement.Get("EmployeeBenefitsExpense")
	assert.Equal(t, 4.0, wages)

	cash, _ := res.FinancialPosition.Get("currentAssets.CashAndBankBalances")
	assert.Equal(t, 42.0, cash)

	assert.Equal(t, []string{"widgets"}, res.Unknown.Keys())
}

func TestExtractSingleEntryWrapper(t *testing.T) {
	e := newExtractor()
	res := e.Extract(decode(t, `{"revenue": {"amount": 50}, "Headcount": {"value": 12}}`))

	revenue, _ := res.IncomeStatement.Get("Revenue")
	assert.Equal(t, 50.0, revenue)

	headcount, ok := res.Unknown.Get("Headcount")
	assert.True(t, ok)
	assert.Equal(t, 12.0, headcount)
}

func TestExtractNumericListUsesFirstElementOnly(t *testing.T) {
	e := newExtractor()
	res := e.Extract(decode(t, `{"revenue": [100, 200, 300], "notes": [7, 8]}`))

	revenue, _ := res.IncomeStatement.Get("Revenue")
	assert.Equal(t, 100.0, revenue)
	assert.Equal(t, 1, res.IncomeStatement.Len())

	assert.Equal(t, []string{"notes"}, res.Unknown.Keys())
	v, _ := res.Unknown.Get("notes")
	assert.Equal(t, 7.0, v)
}

func TestExtractPrefixJoinsPath(t *testing.T) {
	e := newExtractor()
	res := e.ExtractPath(decode(t, `{"headcount": 9}`), "notes")
	assert.Equal(t, []string{"notes_headcount"}, res.Unknown.Keys())
}

func TestExtractNeverFails(t *testing.T) {
	e := newExtractor()
	inputs := []string{
		`{}`,
		`[]`,
		`null`,
		`"text"`,
		`42`,
		`[[["a", true, null]]]`,
		`{"a": [[["x"]], [null, {"b": [[]]}]]}`,
		`{"a": 1, "a": 2}`,
		`{"incomeStatement": 5, "statementOfFinancialPosition": [1, 2]}`,
		`{"statementOfFinancialPosition": {"equity": "none", "currentAssets": null}}`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			res := e.Extract(decode(t, input))
			assert.NotZero(t, res)
		})
	}

	res := e.Extract(decode(t, `[[["a", true, null]]]`))
	assert.True(t, res.Empty())
	data, err := json.Marshal(res)
	assert.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestExtractLastWriteWins(t *testing.T) {
	e := newExtractor()
	res := e.Extract(decode(t, `{"a": {"bank": 1, "x": "y"}, "b": {"bank": 2, "x": "y"}}`))
	cash, _ := res.FinancialPosition.Get("currentAssets.CashAndBankBalances")
	assert.Equal(t, 2.0, cash)
	assert.Equal(t, 1, res.FinancialPosition.Len())
}
