// Package tagging attaches XBRL taxonomy tags to the values of a canonical
// filing.
//
// Tags are looked up by canonical field name. A field without an exact entry
// borrows the tags of the first taxonomy field that contains it (or is
// contained by it), ignoring case. Lookups are cached per field and
// statement type; values never are.
//
//	tagger := tagging.New(tables.Taxonomy, tagging.NewCache())
//	element := tagger.TagElement(ctx, "Revenue", jsonvalue.Number(100), tagging.IncomeStatement, false)
package tagging

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/reference"
)

// Statement types a section is classified into.
const (
	Filing          = "filing"
	BalanceSheet    = "balance_sheet"
	IncomeStatement = "income_statement"
	CashFlow        = "cash_flow"
	Equity          = "equity"
	Directors       = "directors"
	Audit           = "audit"
)

// Taxonomy is the lookup surface the tagger needs. *reference.Taxonomy
// implements it.
type Taxonomy interface {
	Lookup(field string) ([]reference.FinancialTag, bool)
	Fields() []string
	StatementTags() []reference.FinancialTag
	IsMandatory(field string) bool
	MandatoryFields() []string
}

// Tagger tags elements, sections and documents.
type Tagger struct {
	taxonomy Taxonomy
	cache    *Cache
}

// New creates a tagger. cache may be nil to disable caching.
func New(taxonomy Taxonomy, cache *Cache) *Tagger {
	return &Tagger{taxonomy: taxonomy, cache: cache}
}

// Cache returns the tagger's cache, which may be nil.
func (t *Tagger) Cache() *Cache {
	return t.cache
}

// Element is the result of tagging one value.
type Element struct {
	Field      string                   `json:"element_name"`
	Value      jsonvalue.Value          `json:"value"`
	Tags       []reference.FinancialTag `json:"tags"`
	Mandatory  bool                     `json:"is_mandatory"`
	PeriodType string                   `json:"period_type"`
	Messages   []string                 `json:"messages"`
}

// TagElement tags a single value. instant selects the period type recorded
// on the result.
func (t *Tagger) TagElement(ctx context.Context, field string, value jsonvalue.Value, statementType string, instant bool) Element {
	entry := t.resolve(field, statementType)

	period := "duration"
	if instant {
		period = "instant"
	}
	if value == nil {
		value = jsonvalue.Null{}
	}
	return Element{
		Field:      field,
		Value:      value,
		Tags:       slices.Clone(entry.tags),
		Mandatory:  entry.mandatory,
		PeriodType: period,
		Messages:   slices.Clone(entry.messages),
	}
}

// resolve returns the cached lookup for field or computes and caches it.
func (t *Tagger) resolve(field, statementType string) cacheEntry {
	key := cacheKey{field: field, statementType: statementType}
	if entry, ok := t.cache.get(key); ok {
		return entry
	}

	entry := cacheEntry{tags: []reference.FinancialTag{}}
	if tags, ok := t.taxonomy.Lookup(field); ok {
		entry.tags = append(entry.tags, tags...)
		entry.messages = append(entry.messages, fmt.Sprintf("Found exact tag match for %s", field))
	} else {
		entry.messages = append(entry.messages, fmt.Sprintf("No exact tag match found for %s", field))
		if similar, tags, found := t.similar(field); found {
			entry.tags = append(entry.tags, tags...)
			entry.messages = append(entry.messages, fmt.Sprintf("Using similar tag: %s", similar))
		}
	}
	if t.taxonomy.IsMandatory(field) {
		entry.mandatory = true
		entry.messages = append(entry.messages, fmt.Sprintf("Note: %s is a mandatory field", field))
	}

	t.cache.put(key, entry)
	return entry
}

// similar returns the first taxonomy field, in taxonomy order, that contains
// field or is contained in it. The first hit wins even when a closer one
// follows.
func (t *Tagger) similar(field string) (string, []reference.FinancialTag, bool) {
	lower := strings.ToLower(field)
	for _, candidate := range t.taxonomy.Fields() {
		c := strings.ToLower(candidate)
		if strings.Contains(c, lower) || strings.Contains(lower, c) {
			tags, _ := t.taxonomy.Lookup(candidate)
			return candidate, tags, true
		}
	}
	return "", nil, false
}

// StatementType classifies a section by its name.
func StatementType(section string) string {
	s := strings.ToLower(section)
	switch {
	case containsAny(s, "financial", "position", "balance"):
		return BalanceSheet
	case containsAny(s, "income", "profit", "loss"):
		return IncomeStatement
	case strings.Contains(s, "cash"):
		return CashFlow
	case containsAny(s, "equity", "changes"):
		return Equity
	case strings.Contains(s, "director"):
		return Directors
	case strings.Contains(s, "audit"):
		return Audit
	}
	return Filing
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
