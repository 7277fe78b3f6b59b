package validation

// Storage fields a filing may leave out even in strict mode.
var optionalFields = map[string]bool{
	"prior_period_start":       true,
	"parent_entity_name":       true,
	"ultimate_parent_name":     true,
	"treasury_shares":          true,
	"other_reserves":           true,
	"noncontrolling_interests": true,
}

// strictSections are the sections whose mapped fields strict mode requires.
// Each path step lists the canonical key first and its storage key second.
var strictSections = []struct {
	label string
	path  [][]string
	table string
}{
	{"FilingInformation", [][]string{filingKeys}, "FilingInformation"},
	{"CurrentAssets", [][]string{positionKeys, currentAssetsKeys}, "CurrentAssets"},
	{"NonCurrentAssets", [][]string{positionKeys, nonCurrentAssetsKeys}, "NonCurrentAssets"},
	{"IncomeStatement", [][]string{incomeKeys}, "IncomeStatement"},
	{"Notes.TradeAndOtherReceivables", [][]string{notesKeys, {"TradeAndOtherReceivables", "trade_and_other_receivables"}}, "TradeAndOtherReceivables"},
	{"Notes.TradeAndOtherPayables", [][]string{notesKeys, {"TradeAndOtherPayables", "trade_and_other_payables"}}, "TradeAndOtherPayables"},
}

func checkStrictFields(c *check) {
	if !c.cfg.StrictFields || c.tables == nil {
		return
	}
	for _, s := range strictSections {
		data := c.doc
		for _, keys := range s.path {
			next, ok := section(data, keys)
			if !ok {
				data = nil
				break
			}
			data = next
		}
		if data.Len() == 0 {
			continue
		}
		table, ok := c.tables.Section(s.table)
		if !ok {
			continue
		}
		for _, f := range table.Fields {
			if optionalFields[f.Storage] {
				continue
			}
			if _, _, present := lookup(data, []string{f.Canonical, f.Storage}); !present {
				c.add(s.label, "strict.required", SeverityError, "Required field '%s' is missing", f.Canonical)
			}
		}
	}
}
