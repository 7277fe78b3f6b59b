package validation

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
)

func TestCheckShapeAcceptsCompleteInput(t *testing.T) {
	report := CheckShape(decode(t, `{
		"filingInformation": {
			"NameOfCompany": "Acme Pte Ltd",
			"UniqueEntityNumber": "201912345D",
			"CurrentPeriodStartDate": "2023-01-01",
			"CurrentPeriodEndDate": "2023-12-31"
		},
		"statementOfFinancialPosition": {
			"currentAssets": {}, "nonCurrentAssets": {}, "currentLiabilities": {},
			"nonCurrentLiabilities": {}, "equity": {},
			"Assets": 1000, "Liabilities": "600"
		},
		"incomeStatement": {"Revenue": 10, "ProfitLoss": 0, "ProfitLossBeforeTaxation": 1.5}
	}`))

	assert.True(t, report.Valid(), "%v", report.Issues)
}

func TestCheckShapeEmpty(t *testing.T) {
	for _, doc := range []*jsonvalue.Object{nil, jsonvalue.NewObject(0)} {
		report := CheckShape(doc)
		assert.Equal(t, []FlatIssue{{Section: "root", Message: "Data must be a non-empty dictionary"}}, Flatten(report))
	}
}

func TestCheckShapeReportsProblems(t *testing.T) {
	report := CheckShape(decode(t, `{
		"filingInformation": {
			"NameOfCompany": "",
			"UniqueEntityNumber": "201912345D",
			"CurrentPeriodStartDate": "1 Jan 2023",
			"CurrentPeriodEndDate": "2023-12-31"
		},
		"statementOfFinancialPosition": {"currentAssets": {}, "equity": {}, "Assets": "lots"},
		"incomeStatement": ["Revenue"]
	}`))

	assert.Equal(t, []FlatIssue{
		{Section: "filingInformation", Message: "Missing required field: NameOfCompany"},
		{Section: "filingInformation", Message: "Field CurrentPeriodStartDate must be a valid date in YYYY-MM-DD format"},
		{Section: "statementOfFinancialPosition", Message: "Missing required component: nonCurrentAssets"},
		{Section: "statementOfFinancialPosition", Message: "Missing required component: currentLiabilities"},
		{Section: "statementOfFinancialPosition", Message: "Missing required component: nonCurrentLiabilities"},
		{Section: "statementOfFinancialPosition", Message: "Field Assets must be a number"},
		{Section: "incomeStatement", Message: "Income statement must be an object"},
	}, Flatten(report))
}

func TestCheckShapeMissingSections(t *testing.T) {
	report := CheckShape(decode(t, `{"incomeStatement": {"Revenue": true}}`))

	assert.Equal(t, []FlatIssue{
		{Section: "structure", Message: "Missing required section: filingInformation"},
		{Section: "structure", Message: "Missing required section: statementOfFinancialPosition"},
		{Section: "incomeStatement", Message: "Missing required field: ProfitLoss"},
		{Section: "incomeStatement", Message: "Field Revenue must be a number"},
	}, Flatten(report))
}
