package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/pipeline"
	"github.com/robinvdvleuten/xbrl/reference"
)

const filing = `{
	"FilingInformation": {
		"NameOfCompany": "Acme Pte Ltd",
		"UniqueEntityNumber": "201912345D",
		"CurrentPeriodStartDate": "2023-01-01",
		"CurrentPeriodEndDate": "2023-12-31",
		"TypeOfXBRLFiling": "Full",
		"NatureOfFinancialStatementsCompanyLevelOrConsolidated": "Company",
		"Nickname": "a|b"
	},
	"StatementOfFinancialPosition": {
		"Assets": ASSETS,
		"Liabilities": 500,
		"CurrentAssets": {"CurrentAssets": 500},
		"NonCurrentAssets": {"NonCurrentAssets": 500},
		"Equity": {"Equity": 500}
	},
	"IncomeStatement": {"Revenue": 200, "ProfitLoss": 20}
}`

func run(t *testing.T, assets string) *pipeline.Result {
	t.Helper()
	doc, err := jsonvalue.DecodeObject([]byte(strings.Replace(filing, "ASSETS", assets, 1)))
	assert.NoError(t, err)
	return pipeline.New(reference.MustDefault()).Run(context.Background(), doc)
}

func TestMarkdownValid(t *testing.T) {
	result := run(t, "1000")
	md := Markdown(result)

	assert.True(t, strings.HasPrefix(md, "# XBRL filing report\n"))
	assert.Contains(t, md, "| `"+result.TaskID+"` | completed |")
	assert.Contains(t, md, "## Validation\n\nNo issues found.\n")
	assert.Contains(t, md, "| FilingInformation | 6 | Nickname |")
	assert.Contains(t, md, "## Tagging")
	assert.Contains(t, md, "| IncomeStatement | income_statement |")
}

func TestMarkdownInvalid(t *testing.T) {
	md := Markdown(run(t, "900"))

	assert.Contains(t, md, "| invalid |")
	assert.Contains(t, md, "### Errors\n\n- **StatementOfFinancialPosition**: ")
}

func TestMarkdownEscapesCells(t *testing.T) {
	assert.Equal(t, `a\|b`, cell("a|b"))
}

func TestHTML(t *testing.T) {
	result := run(t, "900")

	var buf bytes.Buffer
	assert.NoError(t, HTML(&buf, result))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>XBRL filing report "+result.TaskID+"</title>")
	assert.Contains(t, out, "<h1>XBRL filing report</h1>")
	assert.Contains(t, out, "<h2>Validation</h2>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<strong>StatementOfFinancialPosition</strong>")
}

func TestText(t *testing.T) {
	result := run(t, "900")

	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, result, FormatText, nil))
	out := buf.String()
	assert.Contains(t, out, "Task "+result.TaskID+"\n")
	assert.Contains(t, out, "Status invalid\n")
	assert.Contains(t, out, "error: StatementOfFinancialPosition: ")
	assert.Contains(t, out, "SECTION")
	assert.Contains(t, out, "StatementOfFinancialPosition.CurrentAssets")
}

func TestRenderJSON(t *testing.T) {
	result := run(t, "1000")

	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, result, FormatJSON, nil))

	var out map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal[any](t, result.TaskID, out["task_id"])
	assert.Equal(t, "completed", out["status"])
}

func TestRenderUnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, &pipeline.Result{}, "pdf", nil)
	assert.EqualError(t, err, `unknown report format "pdf"`)
}
