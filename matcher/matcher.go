// Package matcher classifies free-form financial line item labels onto
// canonical statement fields using the keyword tables from package reference.
package matcher

import (
	"strings"

	"github.com/robinvdvleuten/xbrl/reference"
)

// Statement types returned by Match.
const (
	IncomeStatement   = "income_statement"
	FinancialPosition = "financial_position"
	Unknown           = "unknown"
)

// Filter restricts which term table Match consults.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterIncome   Filter = "income"
	FilterPosition Filter = "position"
)

const (
	exactBonus = 5
	longBonus  = 2
	// Keywords of this length or shorter only earn the base point.
	longKeyword = 5
)

var (
	incomeHints   = []string{"revenue", "income", "sale", "expense", "cost", "profit", "loss", "tax"}
	positionHints = []string{"asset", "liability", "equity", "cash", "receivable", "payable", "property", "equipment"}
)

// Match is the outcome of classifying a term.
type Match struct {
	StatementType string `json:"statement_type"`
	Field         string `json:"field"`
	Score         int    `json:"match_score"`
	MatchedTerm   string `json:"matched_term"`
}

// Known reports whether the term was classified into a statement.
func (m Match) Known() bool {
	return m.StatementType != Unknown
}

type candidate struct {
	statementType string
	field         string
	keywords      []string
}

// Matcher scores terms against the income and position keyword tables.
// It is safe for concurrent use.
type Matcher struct {
	income   []candidate
	position []candidate
}

// New builds a matcher over tables.Terms. Keywords are lowercased.
func New(tables *reference.Tables) *Matcher {
	return &Matcher{
		income:   candidates(IncomeStatement, tables.Terms.Income),
		position: candidates(FinancialPosition, tables.Terms.Position),
	}
}

func candidates(statementType string, entries []reference.TermEntry) []candidate {
	out := make([]candidate, 0, len(entries))
	for _, e := range entries {
		keywords := make([]string, len(e.Keywords))
		for i, k := range e.Keywords {
			keywords[i] = strings.ToLower(k)
		}
		out = append(out, candidate{statementType: statementType, field: e.Field, keywords: keywords})
	}
	return out
}

// ParseFilter maps user-supplied statement names onto a Filter. Anything
// unrecognised, including the empty string, yields FilterAll.
func ParseFilter(s string) Filter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "profit", "loss":
		return FilterIncome
	case "position", "balance", "financial_position":
		return FilterPosition
	}
	return FilterAll
}

// Match classifies term. Candidates are scored as follows, per keyword:
//
//   - 1 point if the keyword occurs in the term
//   - 5 more if the keyword equals the term
//   - otherwise 2 more if it occurs and is longer than five characters
//
// The highest score wins; on a tie the candidate seen first wins, income
// table before position table. With no scoring candidate the term is sorted
// by coarse hint words, and failing that reported as unknown. Match never
// fails.
func (m *Matcher) Match(term string, filter Filter) Match {
	normalized := strings.ToLower(strings.TrimSpace(term))

	var best *candidate
	bestScore := 0
	for _, set := range m.sets(filter) {
		for i := range set {
			c := &set[i]
			if score := scoreCandidate(c.keywords, normalized); score > bestScore {
				best, bestScore = c, score
			}
		}
	}

	if best != nil {
		return Match{StatementType: best.statementType, Field: best.field, Score: bestScore, MatchedTerm: term}
	}

	switch {
	case containsAny(normalized, incomeHints):
		return Match{StatementType: IncomeStatement, Field: term, MatchedTerm: term}
	case containsAny(normalized, positionHints):
		return Match{StatementType: FinancialPosition, Field: term, MatchedTerm: term}
	}
	return Match{StatementType: Unknown, Field: Unknown, MatchedTerm: term}
}

func (m *Matcher) sets(filter Filter) [][]candidate {
	switch filter {
	case FilterIncome:
		return [][]candidate{m.income}
	case FilterPosition:
		return [][]candidate{m.position}
	}
	return [][]candidate{m.income, m.position}
}

func scoreCandidate(keywords []string, term string) int {
	score := 0
	for _, k := range keywords {
		contained := strings.Contains(term, k)
		if contained {
			score++
		}
		switch {
		case k == term:
			score += exactBonus
		case contained && len(k) > longKeyword:
			score += longBonus
		}
	}
	return score
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
