package reference

import (
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/alecthomas/assert/v2"
)

func TestLoadEmbeddedTables(t *testing.T) {
	tables, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 17, len(tables.Terms.Income))
	assert.Equal(t, "Revenue", tables.Terms.Income[0].Field)
	assert.Equal(t, "currentAssets.CashAndBankBalances", tables.Terms.Position[0].Field)
	assert.Equal(t, 12, len(tables.Sections))

	assert.Equal(t, "sg-as-2022-02", tables.Taxonomy.Name)
	assert.Equal(t, 140, len(tables.Taxonomy.Fields()))
}

func TestDefaultIsMemoised(t *testing.T) {
	a, err := Default()
	assert.NoError(t, err)
	b, err := Default()
	assert.NoError(t, err)
	assert.True(t, a == b, "Default should return the same instance")
}

func TestSectionStorageNames(t *testing.T) {
	tables := MustDefault()

	tests := []struct {
		section   string
		canonical string
		storage   string
	}{
		{"FilingInformation", "NameOfCompany", "company_name"},
		{"CurrentAssets", "TradeAndOtherReceivablesCurrent", "trade_and_other_receivables"},
		{"NonCurrentAssets", "NoncurrentAssets", "total_noncurrent_assets"},
		{"Equity", "Equity", "total_equity"},
		{"Revenue", "Revenue", "total_revenue"},
		{"IncomeStatement", "ProfitLoss", "profit_loss"},
	}

	for _, tt := range tests {
		t.Run(tt.section+"."+tt.canonical, func(t *testing.T) {
			section, ok := tables.Section(tt.section)
			assert.True(t, ok)
			name, ok := section.StorageName(tt.canonical)
			assert.True(t, ok)
			assert.Equal(t, tt.storage, name)
		})
	}
}

func TestTaxonomyMergeKeepsFirstPositionLastValue(t *testing.T) {
	first := FinancialTag{ElementName: "First"}
	second := FinancialTag{ElementName: "Second"}

	tax := NewTaxonomy("test", "2022",
		Group{Name: "a", Elements: []ElementTags{
			{Field: "Revenue", Tags: []FinancialTag{first}},
			{Field: "OtherIncome"},
		}, Mandatory: map[string]bool{"Revenue": false}},
		Group{Name: "b", Elements: []ElementTags{
			{Field: "Revenue", Tags: []FinancialTag{second}},
		}, Mandatory: map[string]bool{"Revenue": true}},
	)

	assert.Equal(t, []string{"Revenue", "OtherIncome"}, tax.Fields())
	tags, ok := tax.Lookup("Revenue")
	assert.True(t, ok)
	assert.Equal(t, "Second", tags[0].ElementName)
	assert.True(t, tax.IsMandatory("Revenue"))
	assert.Equal(t, []string{"Revenue"}, tax.MandatoryFields())
}

func TestEmbeddedMandatoryFields(t *testing.T) {
	tax := MustDefault().Taxonomy
	assert.True(t, tax.IsMandatory("NameOfCompany"))
	assert.True(t, tax.IsMandatory("TypeOfAuditOpinionInIndependentAuditorsReport"))
	assert.True(t, tax.IsMandatory("Equity"))
	assert.True(t, tax.IsMandatory("WhetherTheFinancialStatementsArePreparedOnGoingConcernBasis"))
	assert.False(t, tax.IsMandatory("Goodwill"))
}

func TestEmbeddedTaxonomyFieldsHaveStorageNames(t *testing.T) {
	tables := MustDefault()
	assert.NoError(t, tables.Check())

	filing, ok := tables.Section("FilingInformation")
	assert.True(t, ok)
	audit, ok := tables.Section("AuditReport")
	assert.True(t, ok)

	tests := []struct {
		section *SectionMap
		field   string
		element string
	}{
		{filing, "WhetherTheFinancialStatementsArePreparedOnGoingConcernBasis", "WhetherFinancialStatementsArePreparedOnGoingConcernBasis"},
		{filing, "WhetherThereAreAnyChangesToComparativeAmounts", "WhetherThereAreChangesToComparativeAmountsDueToRestatementsReclassificationOrOtherReasons"},
		{filing, "NameAndVersionOfSoftwareUsedToGenerateXBRLFile", "NameAndVersionOfSoftwareUsedToGenerateInstanceDocument"},
		{filing, "HowWasXBRLFilePrepared", "HowWasXBRLInstanceDocumentPrepared"},
		{audit, "AuditingStandardsUsedToConductTheAudit", "AuditingStandardsUsedToConductAudit"},
		{audit, "WhetherInAuditorsOpinionAccountingAndOtherRecordsRequiredAreProperlyKept", "WhetherInAuditorsOpinionAccountingAndOtherRecordsRequiredAreProperlyKeptInAccordanceWithCompaniesAct"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, ok := tt.section.StorageName(tt.field)
			assert.True(t, ok)
			tags, ok := tables.Taxonomy.Lookup(tt.field)
			assert.True(t, ok)
			assert.Equal(t, tt.element, tags[0].ElementName)
		})
	}
}

func TestCheckReportsTaxonomyFieldsWithoutStorageNames(t *testing.T) {
	tables := &Tables{
		Sections: []*SectionMap{
			NewSectionMap("FilingInformation", "filing_information", FieldPair{"NameOfCompany", "company_name"}),
		},
		Taxonomy: NewTaxonomy("test", "",
			Group{Name: "filing", Elements: []ElementTags{
				{Field: "DisclosureOfFilingInformationAbstract", Tags: []FinancialTag{{ElementName: "DisclosureOfFilingInformationAbstract", Abstract: true}}},
				{Field: "NameOfCompany", Tags: []FinancialTag{{ElementName: "NameOfCompany"}}},
				{Field: "HowWasXBRLInstanceDocumentPrepared", Tags: []FinancialTag{{ElementName: "HowWasXBRLInstanceDocumentPrepared"}}},
				{Field: "Assets", Tags: []FinancialTag{{ElementName: "Assets"}}},
			}},
		),
	}

	err := tables.Check()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "taxonomy field HowWasXBRLInstanceDocumentPrepared has no storage name")
	assert.NotContains(t, err.Error(), "DisclosureOfFilingInformationAbstract")
	assert.NotContains(t, err.Error(), "NameOfCompany")
	assert.NotContains(t, err.Error(), "Assets")
}

func TestBalanceTypeMarshalsNoneAsNull(t *testing.T) {
	data, err := json.Marshal(FinancialTag{ElementName: "X"})
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"balance_type":null`)

	data, err = json.Marshal(FinancialTag{ElementName: "X", BalanceType: BalanceDebit})
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"balance_type":"debit"`)
}

func TestCheckReportsMissingStorageNames(t *testing.T) {
	tables := &Tables{
		Terms: Terms{
			Income:   []TermEntry{{Field: "Revenue", Keywords: []string{"revenue"}}},
			Position: []TermEntry{{Field: "currentAssets.Mystery", Keywords: []string{"mystery"}}},
		},
		Sections: []*SectionMap{
			NewSectionMap("IncomeStatement", "income_statement", FieldPair{"Revenue", "revenue"}),
			NewSectionMap("CurrentAssets", "current_assets",
				FieldPair{"CashAndBankBalances", "cash"},
				FieldPair{"Cash", "cash"},
			),
		},
		Taxonomy: NewTaxonomy("test", ""),
	}

	err := tables.Check()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "currentAssets.Mystery has no storage name")
	assert.Contains(t, err.Error(), "both map to cash")
}

func TestLoadFSRejectsInvalidTags(t *testing.T) {
	fsys := fstest.MapFS{
		"terms.yaml":  {Data: []byte("income: []\nposition: []\n")},
		"fields.yaml": {Data: []byte("sections:\n  - name: IncomeStatement\n    storage: income_statement\n    fields: []\n")},
		"taxonomy.yaml": {Data: []byte(`name: t
groups:
  - name: g
    elements:
      - field: Revenue
        tags:
          - prefix: sg-as
            element_name: Revenue
            element_id: sg-as_Revenue
            data_type: xbrli:monetaryItemType
            period_type: sometimes
            substitution_group: xbrli:item
`)},
	}

	_, err := LoadFS(fsys)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "taxonomy.yaml")
}
