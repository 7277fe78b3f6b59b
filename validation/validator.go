// Package validation checks a filing against the ACRA business rules:
// required sections and fields, field formats, and the accounting
// identities between statements.
//
// Documents may mix canonical (PascalCase) and storage (snake_case) names
// per section; every lookup consults both. Every rule runs, and findings are
// returned as a Report rather than as Go errors:
//
//	v := validation.New(reference.MustDefault())
//	report := v.Validate(ctx, doc)
//	if !report.Valid() {
//	    for section, messages := range report.Errors() {
//	        ...
//	    }
//	}
package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/logging"
	"github.com/robinvdvleuten/xbrl/reference"
	"github.com/robinvdvleuten/xbrl/telemetry"
)

// Section names used for issues that do not belong to a document section.
const (
	SectionStructure = "structure"
	SectionCross     = "cross_section"
	SectionGeneral   = "general"
)

var (
	// UEN shapes: businesses (53333444A), local companies (201912345D) and
	// other ACRA entities (T08LL1234A).
	uenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{8}[A-Z]$`),
		regexp.MustCompile(`^(19|20)\d{2}\d{5}[A-Z]$`),
		regexp.MustCompile(`^[TSR]\d{2}[A-Z]{2}\d{4}[A-Z]$`),
	}
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	filingTypes    = []string{"Full", "Partial"}
	statementTypes = []string{"Company", "Consolidated"}
	auditOpinions  = []string{"Unqualified", "Qualified", "Adverse", "Disclaimer"}
)

// Validator applies the rule set to documents. It is safe for concurrent use.
type Validator struct {
	tables *reference.Tables
	rules  []rule
}

type rule struct {
	id  string
	run func(*check)
}

// New creates a validator backed by tables.
func New(tables *reference.Tables) *Validator {
	return &Validator{tables: tables, rules: defaultRules}
}

// check is the state of one Validate call.
type check struct {
	ctx       context.Context
	cfg       *Config
	tables    *reference.Tables
	doc       *jsonvalue.Object
	report    *Report
	tolerance decimal.Decimal
}

func (c *check) add(section, rule string, severity Severity, format string, args ...any) {
	c.report.add(section, rule, severity, format, args...)
	logging.FromContext(c.ctx).Debug().Str("section", section).Str("rule", rule).Msg("validation issue")
}

func (c *check) reader(section, rule string) *reader {
	return &reader{report: c.report, section: section, rule: rule}
}

// exceeds reports whether a and b differ by more than tol.
func exceeds(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().GreaterThan(tol)
}

// Validate runs every rule against doc. It never returns a nil report and
// never panics; a failing rule is reported under the general section.
func (v *Validator) Validate(ctx context.Context, doc *jsonvalue.Object) *Report {
	timer := telemetry.StartTimer(ctx, "validation.validate")
	defer timer.End()

	if doc == nil {
		doc = jsonvalue.NewObject(0)
	}
	c := &check{
		ctx:    ctx,
		cfg:    ConfigFromContext(ctx),
		tables: v.tables,
		doc:    doc,
		report: &Report{TaxonomyVersion: DefaultTaxonomyVersion},
	}
	filing, _ := section(doc, filingKeys)
	c.tolerance = c.cfg.Tolerance(text(filing, roundingKeys))

	for _, r := range v.rules {
		v.apply(c, r)
	}
	return c.report
}

func (v *Validator) apply(c *check, r rule) {
	defer func() {
		if p := recover(); p != nil {
			logging.FromContext(c.ctx).Error().Str("rule", r.id).Str("panic", fmt.Sprint(p)).Msg("validation rule failed")
			c.report.add(SectionGeneral, "general", SeverityError, "Validation error: %v", p)
		}
	}()
	r.run(c)
}

var defaultRules = []rule{
	{"structure", checkStructure},
	{"filing.required_fields", checkFilingFields},
	{"audit.opinion", checkAuditOpinion},
	{"format.currency", checkCurrency},
	{"format.rounding", checkRounding},
	{"taxonomy.version", checkTaxonomyVersion},
	{"position.assets", checkAssets},
	{"position.liabilities", checkLiabilities},
	{"position.balance", checkBalance},
	{"payables.null", checkNullPayables},
	{"income.revenue", checkRevenue},
	{"notes.receivables", checkReceivables},
	{"cashflow.closing", checkCashClosing},
	{"cashflow.activities", checkCashActivities},
	{"equity.closing", checkEquityClosing},
	{"equity.profit", checkEquityProfit},
	{"cross.equity", checkCrossEquity},
	{"cross.cash", checkCrossCash},
	{"strict.required", checkStrictFields},
}

func checkStructure(c *check) {
	required := []struct {
		name string
		keys []string
	}{
		{"FilingInformation", filingKeys},
		{"StatementOfFinancialPosition", positionKeys},
		{"IncomeStatement", incomeKeys},
	}

	var missing []string
	for _, r := range required {
		if _, ok := firstKey(c.doc, r.keys); !ok {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		c.add(SectionStructure, "structure", SeverityError, "Missing required section(s): %s", strings.Join(missing, ", "))
	}

	for _, r := range required {
		if v, _, ok := lookup(c.doc, r.keys); ok && v.Kind() != jsonvalue.KindObject {
			c.add(SectionStructure, "structure", SeverityError, "Section %s must be an object", r.name)
		}
	}
}

type filingField struct {
	canonical string
	storage   string
	rule      string
	check     func(string) string
}

var filingFields = []filingField{
	{"NameOfCompany", "company_name", "filing.company_name", nonEmpty},
	{"UniqueEntityNumber", "unique_entity_number", "filing.uen", validUEN},
	{"CurrentPeriodStartDate", "current_period_start", "filing.dates", validDate},
	{"CurrentPeriodEndDate", "current_period_end", "filing.dates", validDate},
	{"TypeOfXBRLFiling", "xbrl_filing_type", "filing.type", validFilingType},
	{"NatureOfFinancialStatementsCompanyLevelOrConsolidated", "financial_statement_type", "filing.statement_type", validStatementType},
}

func checkFilingFields(c *check) {
	filing, ok := section(c.doc, filingKeys)
	if !ok {
		return
	}
	for _, f := range filingFields {
		keys := []string{f.canonical, f.storage}
		if _, present := firstKey(filing, keys); !present {
			c.add("FilingInformation", "filing.required_fields", SeverityError, "Missing required field: %s", f.canonical)
			continue
		}
		if msg := f.check(text(filing, keys)); msg != "" {
			c.add("FilingInformation", f.rule, SeverityError, "%s: %s", f.canonical, msg)
		}
	}
}

func nonEmpty(s string) string {
	if s == "" {
		return "Value cannot be empty"
	}
	return ""
}

func validUEN(s string) string {
	if s == "" {
		return "UEN is required"
	}
	for _, p := range uenPatterns {
		if p.MatchString(s) {
			return ""
		}
	}
	return "Invalid UEN format"
}

func validDate(s string) string {
	if s == "" {
		return "Date is required"
	}
	if !datePattern.MatchString(s) {
		return "Invalid date format (should be YYYY-MM-DD)"
	}
	return ""
}

func validFilingType(s string) string {
	if !oneOf(titleCase(s), filingTypes) {
		return fmt.Sprintf("Invalid filing type (should be one of: %s)", strings.Join(filingTypes, ", "))
	}
	return ""
}

func validStatementType(s string) string {
	if !oneOf(s, statementTypes) {
		return fmt.Sprintf("Invalid statement type (should be one of: %s)", strings.Join(statementTypes, ", "))
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func oneOf(s string, values []string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}

func checkAuditOpinion(c *check) {
	audit, ok := section(c.doc, auditKeys)
	if !ok {
		return
	}
	opinion := text(audit, []string{"TypeOfAuditOpinionInIndependentAuditorsReport", "audit_opinion"})
	if opinion != "" && !oneOf(opinion, auditOpinions) {
		c.add("AuditReport", "audit.opinion", SeverityError,
			"Invalid audit opinion '%s' (should be one of: %s)", opinion, strings.Join(auditOpinions, ", "))
	}
}

func checkCurrency(c *check) {
	filing, ok := section(c.doc, filingKeys)
	if !ok {
		return
	}
	currencies := []struct {
		label string
		keys  []string
	}{
		{"presentation", []string{"DescriptionOfPresentationCurrency", "presentation_currency"}},
		{"functional", []string{"DescriptionOfFunctionalCurrency", "functional_currency"}},
	}
	for _, cur := range currencies {
		if code := text(filing, cur.keys); code != "" && !c.cfg.AllowsCurrency(code) {
			c.add("FilingInformation", "format.currency", SeverityError, "Unsupported %s currency '%s'", cur.label, code)
		}
	}
}

func checkRounding(c *check) {
	filing, ok := section(c.doc, filingKeys)
	if !ok {
		return
	}
	level := text(filing, roundingKeys)
	if level == "" {
		return
	}
	if _, known := ParseRounding(level); !known {
		c.add("FilingInformation", "format.rounding", SeverityError,
			"Invalid rounding level '%s' (should be one of: Units, Thousands, Millions, Billions)", level)
	}
}

func checkTaxonomyVersion(c *check) {
	filing, _ := section(c.doc, filingKeys)
	version := text(filing, taxonomyKeys)
	switch {
	case version == "":
	case c.cfg.SupportsTaxonomy(version):
		c.report.TaxonomyVersion = version
	default:
		c.add("FilingInformation", "taxonomy.version", SeverityWarning,
			"Unsupported taxonomy version '%s', using %s", version, DefaultTaxonomyVersion)
	}
}

func checkAssets(c *check) {
	position, ok := section(c.doc, positionKeys)
	if !ok {
		return
	}
	r := c.reader("StatementOfFinancialPosition", "position.assets")
	total, _ := r.amount(position, assetsKeys)
	current, _ := r.amount(subsection(position, currentAssetsKeys), currentAssetsTotalKeys)
	nonCurrent, _ := r.amount(subsection(position, nonCurrentAssetsKeys), nonCurrentAssetsTotalKeys)
	if r.invalid {
		return
	}
	if exceeds(current.Add(nonCurrent), total, c.tolerance) {
		c.add(r.section, r.rule, SeverityError,
			"Total assets (%s) does not equal the sum of current assets (%s) and non-current assets (%s)",
			total, current, nonCurrent)
	}
}

// checkLiabilities only runs when the filing breaks liabilities down.
func checkLiabilities(c *check) {
	position, ok := section(c.doc, positionKeys)
	if !ok {
		return
	}
	currentSec, hasCurrent := section(position, currentLiabilitiesKeys)
	nonCurrentSec, hasNonCurrent := section(position, nonCurrentLiabilitiesKeys)
	if !hasCurrent && !hasNonCurrent {
		return
	}
	r := c.reader("StatementOfFinancialPosition", "position.liabilities")
	total, _ := r.amount(position, liabilityKeys)
	current, _ := r.amount(currentSec, currentLiabilitiesTotal)
	nonCurrent, _ := r.amount(nonCurrentSec, nonCurrentLiabilitiesTotal)
	if r.invalid {
		return
	}
	if exceeds(current.Add(nonCurrent), total, c.tolerance) {
		c.add(r.section, r.rule, SeverityError,
			"Total liabilities (%s) does not equal the sum of current liabilities (%s) and non-current liabilities (%s)",
			total, current, nonCurrent)
	}
}

func checkBalance(c *check) {
	position, ok := section(c.doc, positionKeys)
	if !ok {
		return
	}
	r := c.reader("StatementOfFinancialPosition", "position.balance")
	assets, _ := r.amount(position, assetsKeys)
	liabilities, _ := r.amount(position, liabilityKeys)
	equity, _ := r.amount(subsection(position, equityKeys), equityTotalKeys)
	if r.invalid {
		return
	}
	if exceeds(liabilities.Add(equity), assets, c.tolerance) {
		c.add(r.section, r.rule, SeverityError,
			"Assets (%s) must equal Liabilities (%s) plus Equity (%s)", assets, liabilities, equity)
	}
}

// subsection is section without the presence flag.
func subsection(obj *jsonvalue.Object, keys []string) *jsonvalue.Object {
	sub, _ := section(obj, keys)
	return sub
}

func checkNullPayables(c *check) {
	position, ok := section(c.doc, positionKeys)
	if !ok {
		return
	}
	payables := []struct {
		name    string
		section []string
	}{
		{"TradeAndOtherPayablesCurrent", currentLiabilitiesKeys},
		{"TradeAndOtherPayablesNoncurrent", nonCurrentLiabilitiesKeys},
	}
	for _, p := range payables {
		sub, ok := section(position, p.section)
		if !ok {
			continue
		}
		key, present := firstKey(sub, []string{p.name, "trade_and_other_payables"})
		if !present {
			continue
		}
		if v, _ := sub.Get(key); jsonvalue.IsNull(v) {
			c.add("StatementOfFinancialPosition", "payables.null", SeverityError, "%s must not be null", p.name)
		}
	}
}

func checkRevenue(c *check) {
	income, ok := section(c.doc, incomeKeys)
	if !ok {
		return
	}
	r := c.reader("IncomeStatement", "income.revenue")
	profit, _ := r.amount(income, []string{"ProfitLoss", "profit_loss"})
	revenue, _ := r.amount(income, []string{"Revenue", "revenue"})
	if r.invalid {
		return
	}
	if !profit.IsZero() && revenue.IsZero() {
		c.add(r.section, r.rule, SeverityWarning, "Revenue should be reported when profit exists")
	}
}

func checkReceivables(c *check) {
	notes, ok := section(c.doc, notesKeys)
	if !ok {
		return
	}
	receivables, ok := section(notes, []string{"TradeAndOtherReceivables", "trade_and_other_receivables"})
	if !ok {
		return
	}
	position, _ := section(c.doc, positionKeys)
	r := c.reader("Notes", "notes.receivables")
	inNotes, hasNotes := r.amount(receivables, []string{"TradeAndOtherReceivables", "total_trade_and_other_receivables"})
	inPosition, hasPosition := r.amount(subsection(position, currentAssetsKeys),
		[]string{"TradeAndOtherReceivablesCurrent", "trade_and_other_receivables"})
	if r.invalid || !hasNotes || !hasPosition {
		return
	}
	if exceeds(inNotes, inPosition, c.tolerance) {
		c.add(r.section, r.rule, SeverityError,
			"Trade and other receivables in notes (%s) does not match the value in statement of financial position (%s)",
			inNotes, inPosition)
	}
}

func checkCashClosing(c *check) {
	flows, ok := section(c.doc, cashFlowKeys)
	if !ok {
		return
	}
	r := c.reader("StatementOfCashFlows", "cashflow.closing")
	opening, _ := r.amount(flows, dual("cash_and_cash_equivalents_beginning_period"))
	change, _ := r.amount(flows, dual("net_increase_decrease_in_cash_and_cash_equivalents"))
	closing, _ := r.amount(flows, dual("cash_and_cash_equivalents_end_period"))
	if r.invalid {
		return
	}
	if exceeds(opening.Add(change), closing, c.tolerance) {
		c.add(r.section, r.rule, SeverityError,
			"Closing cash (%s) does not equal opening cash (%s) plus net change (%s)", closing, opening, change)
	}
}

// checkCashActivities accepts a gap of up to 0.5 (or the rounding tolerance,
// if larger) outright, and otherwise requires the exchange-rate effect to
// explain it.
func checkCashActivities(c *check) {
	flows, ok := section(c.doc, cashFlowKeys)
	if !ok {
		return
	}
	r := c.reader("StatementOfCashFlows", "cashflow.activities")
	change, _ := r.amount(flows, dual("net_increase_decrease_in_cash_and_cash_equivalents"))
	operating, _ := r.amount(flows, dual("net_cash_flows_from_used_in_operating_activities"))
	investing, _ := r.amount(flows, dual("net_cash_flows_from_used_in_investing_activities"))
	financing, _ := r.amount(flows, dual("net_cash_flows_from_used_in_financing_activities"))
	exchange, _ := r.amount(flows, dual("effect_of_exchange_rate_changes_on_cash_and_cash_equivalents"))
	if r.invalid {
		return
	}
	sum := operating.Add(investing).Add(financing)
	if !exceeds(sum, change, decimal.Max(decimal.RequireFromString("0.5"), c.tolerance)) {
		return
	}
	if exceeds(sum.Add(exchange), change, c.tolerance) {
		c.add(r.section, r.rule, SeverityError,
			"Net increase in cash (%s) does not equal sum of operating (%s), investing (%s), and financing (%s) activities",
			change, operating, investing, financing)
	}
}

func checkEquityClosing(c *check) {
	changes, ok := section(c.doc, changesKeys)
	if !ok {
		return
	}
	r := c.reader("StatementOfChangesInEquity", "equity.closing")
	opening, _ := r.amount(changes, dual("total_equity_beginning_period"))
	total, _ := r.amount(changes, dual("total_changes_in_equity"))
	closing, _ := r.amount(changes, dual("total_equity_end_period"))
	if r.invalid {
		return
	}
	if exceeds(opening.Add(total), closing, c.tolerance) {
		c.add(r.section, r.rule, SeverityError,
			"Closing equity (%s) does not equal opening equity (%s) plus total changes (%s)", closing, opening, total)
	}
}

func checkEquityProfit(c *check) {
	changes, ok := section(c.doc, changesKeys)
	if !ok {
		return
	}
	income, ok := section(c.doc, incomeKeys)
	if !ok {
		return
	}
	r := c.reader("StatementOfChangesInEquity", "equity.profit")
	inEquity, _ := r.amount(changes, dual("profit_loss_attributable_to_owners"))
	inIncome, _ := r.amount(income, []string{"ProfitLoss", "profit_loss"})
	if r.invalid || inEquity.IsZero() || inIncome.IsZero() {
		return
	}
	if exceeds(inEquity, inIncome, c.tolerance) {
		c.add(r.section, r.rule, SeverityError,
			"Profit/loss in statement of changes in equity (%s) does not match profit/loss in income statement (%s)",
			inEquity, inIncome)
	}
}

func checkCrossEquity(c *check) {
	position, ok := section(c.doc, positionKeys)
	if !ok {
		return
	}
	changes, ok := section(c.doc, changesKeys)
	if !ok {
		return
	}
	r := c.reader(SectionCross, "cross.equity")
	inPosition, _ := r.amount(subsection(position, equityKeys), equityTotalKeys)
	closing, _ := r.amount(changes, dual("total_equity_end_period"))
	if r.invalid {
		return
	}
	if exceeds(inPosition, closing, c.tolerance) {
		c.add(r.section, r.rule, SeverityError,
			"Equity in statement of financial position (%s) does not match ending equity in statement of changes in equity (%s)",
			inPosition, closing)
	}
}

func checkCrossCash(c *check) {
	position, ok := section(c.doc, positionKeys)
	if !ok {
		return
	}
	flows, ok := section(c.doc, cashFlowKeys)
	if !ok {
		return
	}
	r := c.reader(SectionCross, "cross.cash")
	cash, hasCash := r.amount(subsection(position, currentAssetsKeys),
		[]string{"CashAndBankBalances", "cash_and_bank_balances", "cash_and_cash_equivalents"})
	closing, hasClosing := r.amount(flows, dual("cash_and_cash_equivalents_end_period"))
	if r.invalid || !hasCash || !hasClosing {
		return
	}
	if exceeds(cash, closing, c.tolerance) {
		c.add(r.section, r.rule, SeverityError,
			"Cash and cash equivalents in statement of financial position (%s) does not match ending cash in statement of cash flows (%s)",
			cash, closing)
	}
}
