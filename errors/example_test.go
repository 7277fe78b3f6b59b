package errors_test

import (
	"fmt"

	"github.com/robinvdvleuten/xbrl/errors"
	"github.com/robinvdvleuten/xbrl/validation"
)

// Example showing how to use TextFormatter for CLI output
func ExampleTextFormatter() {
	report := &validation.Report{Issues: []validation.Issue{{
		Section:  "StatementOfFinancialPosition",
		Message:  "Assets (900.00) must equal Liabilities (500.00) plus Equity (500.00)",
		Severity: validation.SeverityError,
	}}}

	formatter := errors.NewTextFormatter()
	fmt.Println(formatter.Format(report.Issues[0]))
	// Output: error: StatementOfFinancialPosition: Assets (900.00) must equal Liabilities (500.00) plus Equity (500.00)
}

// Example showing how to use JSONFormatter for API output
func ExampleJSONFormatter() {
	errs := []error{validation.Issue{
		Section:  "AuditReport",
		Message:  "Invalid audit opinion",
		Severity: validation.SeverityError,
	}}

	formatter := errors.NewJSONFormatter()
	fmt.Println(formatter.FormatAll(errs))
	// Output:
	// [
	//   {
	//     "type": "validation",
	//     "message": "AuditReport: Invalid audit opinion",
	//     "section": "AuditReport",
	//     "severity": "error"
	//   }
	// ]
}
