package reference

import (
	"encoding/json"
	"sort"
)

// BalanceType is the debit/credit nature of a monetary element.
// The zero value means the element has no balance.
type BalanceType string

const (
	BalanceNone   BalanceType = ""
	BalanceDebit  BalanceType = "debit"
	BalanceCredit BalanceType = "credit"
)

// MarshalJSON renders BalanceNone as null.
func (b BalanceType) MarshalJSON() ([]byte, error) {
	if b == BalanceNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(b))
}

// FinancialTag is a single taxonomy element.
type FinancialTag struct {
	Prefix            string      `yaml:"prefix" json:"prefix" validate:"required"`
	ElementName       string      `yaml:"element_name" json:"element_name" validate:"required"`
	ElementID         string      `yaml:"element_id" json:"element_id" validate:"required"`
	Abstract          bool        `yaml:"abstract" json:"abstract"`
	DataType          string      `yaml:"data_type" json:"data_type" validate:"required"`
	BalanceType       BalanceType `yaml:"balance_type" json:"balance_type" validate:"omitempty,oneof=debit credit"`
	PeriodType        string      `yaml:"period_type" json:"period_type" validate:"required,oneof=instant duration"`
	SubstitutionGroup string      `yaml:"substitution_group" json:"substitution_group" validate:"required"`
	Description       string      `yaml:"description" json:"description,omitempty"`
}

// ElementTags is the tag list registered for one canonical field.
type ElementTags struct {
	Field string         `yaml:"field" validate:"required"`
	Tags  []FinancialTag `yaml:"tags" validate:"dive"`
}

// Group is one statement's slice of the taxonomy.
type Group struct {
	Name          string          `yaml:"name" validate:"required"`
	StatementTags []FinancialTag  `yaml:"statement_tags" validate:"dive"`
	Mandatory     map[string]bool `yaml:"mandatory"`
	Elements      []ElementTags   `yaml:"elements" validate:"dive"`
}

// Taxonomy is the merged, ordered view over all groups.
type Taxonomy struct {
	Name          string
	ReportingYear string

	fields        []string
	tags          map[string][]FinancialTag
	statementTags []FinancialTag
	mandatory     map[string]bool
}

// NewTaxonomy merges groups in order. A field registered by more than one
// group keeps its first position and takes the tags of the last group.
func NewTaxonomy(name, reportingYear string, groups ...Group) *Taxonomy {
	t := &Taxonomy{
		Name:          name,
		ReportingYear: reportingYear,
		tags:          make(map[string][]FinancialTag),
		mandatory:     make(map[string]bool),
	}
	for _, g := range groups {
		t.statementTags = append(t.statementTags, g.StatementTags...)
		for field, required := range g.Mandatory {
			t.mandatory[field] = required
		}
		for _, e := range g.Elements {
			if _, exists := t.tags[e.Field]; !exists {
				t.fields = append(t.fields, e.Field)
			}
			t.tags[e.Field] = e.Tags
		}
	}
	return t
}

// Lookup returns the tags registered for field.
func (t *Taxonomy) Lookup(field string) ([]FinancialTag, bool) {
	tags, ok := t.tags[field]
	return tags, ok
}

// Fields returns the registered field names in merge order.
func (t *Taxonomy) Fields() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// IsAbstract reports whether every tag registered for field is abstract.
// Abstract elements group other elements and never carry a value.
func (t *Taxonomy) IsAbstract(field string) bool {
	tags := t.tags[field]
	if len(tags) == 0 {
		return false
	}
	for _, tag := range tags {
		if !tag.Abstract {
			return false
		}
	}
	return true
}

// StatementTags returns the section-level grouping tags.
func (t *Taxonomy) StatementTags() []FinancialTag {
	return t.statementTags
}

// IsMandatory reports whether field must be present in a filing.
func (t *Taxonomy) IsMandatory(field string) bool {
	return t.mandatory[field]
}

// MandatoryFields returns every mandatory field, sorted.
func (t *Taxonomy) MandatoryFields() []string {
	var out []string
	for field, required := range t.mandatory {
		if required {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}
