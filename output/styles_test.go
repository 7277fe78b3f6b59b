package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestStylesKeepText(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	tests := []struct {
		name  string
		style func(string) string
		text  string
	}{
		{"Success", styles.Success, "all good"},
		{"Error", styles.Error, "error message"},
		{"FilePath", styles.FilePath, "/path/to/filing.json"},
		{"Section", styles.Section, "StatementOfFinancialPosition"},
		{"Field", styles.Field, "TradeAndOtherReceivables"},
		{"Amount", styles.Amount, "1,000.00"},
		{"Keyword", styles.Keyword, "Total"},
		{"Dim", styles.Dim, "dimmed text"},
		{"Warning", styles.Warning, "warning message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.style(tt.text), tt.text)
		})
	}
}

func TestStylesPlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	assert.Equal(t, "Revenue", styles.Field("Revenue"))
	assert.Equal(t, "5ms", styles.Timing("5ms", false))
	assert.Equal(t, "500ms", styles.Timing("500ms", true))
	assert.NotZero(t, styles.Renderer())
}

func TestTableAlignsColumns(t *testing.T) {
	table := NewTable("SECTION", "FIELD", "VALUE")
	table.Append("IncomeStatement", "Revenue", "1000")
	table.Append("Notes", "TradeAndOtherReceivables")
	table.Append("FilingInformation", "NameOfCompany", "新加坡公司", "ignored")

	var buf bytes.Buffer
	assert.NoError(t, table.Render(&buf, nil))
	assert.Equal(t, 3, table.Len())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"SECTION            FIELD                     VALUE",
		"IncomeStatement    Revenue                   1000",
		"Notes              TradeAndOtherReceivables",
		"FilingInformation  NameOfCompany             新加坡公司",
	}, lines)
}
