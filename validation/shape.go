package validation

import (
	"github.com/robinvdvleuten/xbrl/jsonvalue"
)

// CheckShape checks the raw camelCase output of the mapping agent before
// any other stage sees it: required sections exist, required fields are
// filled and totals are numeric. It does not apply business rules.
func CheckShape(doc *jsonvalue.Object) *Report {
	report := &Report{}
	if doc.Len() == 0 {
		report.add("root", "shape", SeverityError, "Data must be a non-empty dictionary")
		return report
	}

	for _, name := range []string{"filingInformation", "statementOfFinancialPosition", "incomeStatement"} {
		if !doc.Has(name) {
			report.add(SectionStructure, "shape", SeverityError, "Missing required section: %s", name)
		}
	}

	if filing, ok := shapeSection(report, doc, "filingInformation", "Filing information"); ok {
		for _, field := range []string{"NameOfCompany", "UniqueEntityNumber", "CurrentPeriodStartDate", "CurrentPeriodEndDate"} {
			if v, _ := filing.Get(field); !truthy(v) {
				report.add("filingInformation", "shape", SeverityError, "Missing required field: %s", field)
			}
		}
		for _, field := range []string{"CurrentPeriodStartDate", "CurrentPeriodEndDate"} {
			v, _ := filing.Get(field)
			if !truthy(v) {
				continue
			}
			if s, isString := jsonvalue.AsString(v); !isString || !datePattern.MatchString(s) {
				report.add("filingInformation", "shape", SeverityError, "Field %s must be a valid date in YYYY-MM-DD format", field)
			}
		}
	}

	if position, ok := shapeSection(report, doc, "statementOfFinancialPosition", "Statement of financial position"); ok {
		for _, component := range []string{"currentAssets", "nonCurrentAssets", "currentLiabilities", "nonCurrentLiabilities", "equity"} {
			if !position.Has(component) {
				report.add("statementOfFinancialPosition", "shape", SeverityError, "Missing required component: %s", component)
			}
		}
		requireNumeric(report, position, "statementOfFinancialPosition", "Assets", "Liabilities")
	}

	if income, ok := shapeSection(report, doc, "incomeStatement", "Income statement"); ok {
		for _, field := range []string{"Revenue", "ProfitLoss"} {
			if !income.Has(field) {
				report.add("incomeStatement", "shape", SeverityError, "Missing required field: %s", field)
			}
		}
		requireNumeric(report, income, "incomeStatement", "Revenue", "ProfitLoss", "ProfitLossBeforeTaxation")
	}

	return report
}

// shapeSection returns doc[name] when it is an object, reporting other kinds.
func shapeSection(report *Report, doc *jsonvalue.Object, name, label string) (*jsonvalue.Object, bool) {
	v, ok := doc.Get(name)
	if !ok {
		return nil, false
	}
	obj, isObject := v.(*jsonvalue.Object)
	if !isObject {
		report.add(name, "shape", SeverityError, "%s must be an object", label)
		return nil, false
	}
	return obj, true
}

func requireNumeric(report *Report, obj *jsonvalue.Object, section string, fields ...string) {
	for _, field := range fields {
		v, ok := obj.Get(field)
		if !ok {
			continue
		}
		if _, numeric := toDecimal(v); !numeric {
			report.add(section, "shape", SeverityError, "Field %s must be a number", field)
		}
	}
}

// truthy mirrors what callers treat as "filled in": not null, not an empty
// string, not false and not zero.
func truthy(v jsonvalue.Value) bool {
	switch v := v.(type) {
	case nil, jsonvalue.Null:
		return false
	case jsonvalue.String:
		return v != ""
	case jsonvalue.Bool:
		return bool(v)
	case jsonvalue.Number:
		return v != 0
	case jsonvalue.Array:
		return len(v) > 0
	case *jsonvalue.Object:
		return v.Len() > 0
	}
	return true
}
