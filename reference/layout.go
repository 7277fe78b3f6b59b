package reference

// Node is one top-level entry of a filing document. A node either is a
// section itself (Children empty) or groups sections one level deeper.
type Node struct {
	Name    string
	Storage string
	// Totals are fields held directly on a grouping node.
	Totals   []FieldPair
	Children []string
}

// Leaf reports whether the node is a section rather than a container.
func (n Node) Leaf() bool {
	return len(n.Children) == 0
}

var layout = []Node{
	{Name: "FilingInformation", Storage: "filing_information"},
	{Name: "DirectorsStatement", Storage: "directors_statement"},
	{Name: "AuditReport", Storage: "audit_report"},
	{
		Name:    "StatementOfFinancialPosition",
		Storage: "statement_of_financial_position",
		Totals: []FieldPair{
			{Canonical: "Assets", Storage: "total_assets"},
			{Canonical: "Liabilities", Storage: "total_liabilities"},
		},
		Children: []string{"CurrentAssets", "NonCurrentAssets", "CurrentLiabilities", "NonCurrentLiabilities", "Equity"},
	},
	{Name: "IncomeStatement", Storage: "income_statement"},
	{
		Name:     "Notes",
		Storage:  "notes",
		Children: []string{"TradeAndOtherReceivables", "TradeAndOtherPayables", "Revenue"},
	},
}

// Layout returns the document structure in canonical order.
func Layout() []Node {
	out := make([]Node, len(layout))
	copy(out, layout)
	return out
}

// ParentOf returns the container a section lives under, or "" for a
// top-level section.
func ParentOf(section string) string {
	for _, n := range layout {
		for _, c := range n.Children {
			if c == section {
				return n.Name
			}
		}
	}
	return ""
}
