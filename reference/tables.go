// Package reference holds the static tables the pipeline is driven by: the
// keyword lists used to classify free-form labels, the per-section maps
// between canonical and storage field names, and the XBRL taxonomy tags.
//
// Tables are immutable once built. They are loaded from embedded YAML by
// Load (or the memoised Default) and passed explicitly to the matcher,
// translator, validator and tagger, so tests can swap in fixture tables.
package reference

import (
	"fmt"
	"strings"
)

// Statement families used by the term tables.
const (
	StatementIncome   = "income"
	StatementPosition = "position"
)

// TermEntry is one canonical field and the lowercase keywords that identify it.
// Position fields may be qualified with their sub-section ("currentAssets.Inventories").
type TermEntry struct {
	Field    string   `yaml:"field" validate:"required"`
	Keywords []string `yaml:"keywords" validate:"required,min=1,dive,required"`
}

// Terms holds the ordered keyword tables. Order is significant: on equal
// scores the earlier entry wins.
type Terms struct {
	Income   []TermEntry `yaml:"income" validate:"dive"`
	Position []TermEntry `yaml:"position" validate:"dive"`
}

// FieldPair links a canonical field name to its storage name.
type FieldPair struct {
	Canonical string
	Storage   string
}

// SectionMap is the 1:1 name map for one section of a filing.
type SectionMap struct {
	Name    string
	Storage string
	Fields  []FieldPair

	byCanonical map[string]string
}

// NewSectionMap builds a section map from ordered pairs.
func NewSectionMap(name, storage string, pairs ...FieldPair) *SectionMap {
	s := &SectionMap{
		Name:        name,
		Storage:     storage,
		Fields:      pairs,
		byCanonical: make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		s.byCanonical[p.Canonical] = p.Storage
	}
	return s
}

// StorageName returns the storage counterpart of a canonical field.
func (s *SectionMap) StorageName(canonical string) (string, bool) {
	name, ok := s.byCanonical[canonical]
	return name, ok
}

// Tables bundles every static reference table.
type Tables struct {
	Terms    Terms
	Sections []*SectionMap
	Taxonomy *Taxonomy
}

// Section returns the map for a canonical section name such as "CurrentAssets".
func (t *Tables) Section(name string) (*SectionMap, bool) {
	for _, s := range t.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// positionSubsections maps the camelCase qualifiers used by the position
// term table to canonical section names.
var positionSubsections = map[string]string{
	"currentAssets":         "CurrentAssets",
	"nonCurrentAssets":      "NonCurrentAssets",
	"currentLiabilities":    "CurrentLiabilities",
	"nonCurrentLiabilities": "NonCurrentLiabilities",
	"equity":                "Equity",
}

// PositionSubsection resolves a camelCase position qualifier.
func PositionSubsection(qualifier string) (string, bool) {
	name, ok := positionSubsections[qualifier]
	return name, ok
}

// Parent-level position totals are derived by the translator rather than
// listed in a section map.
var positionTotals = map[string]string{
	"Assets":      "total_assets",
	"Liabilities": "total_liabilities",
}

func (t *Tables) hasCanonical(field string) bool {
	for _, s := range t.Sections {
		if _, ok := s.StorageName(field); ok {
			return true
		}
	}
	return false
}

// Check verifies that the tables agree with each other: every field the term
// tables or the taxonomy can produce has a storage counterpart, and no
// section maps two canonical names onto the same storage name.
func (t *Tables) Check() error {
	var problems []string

	for _, s := range t.Sections {
		seen := make(map[string]string, len(s.Fields))
		for _, p := range s.Fields {
			if prev, dup := seen[p.Storage]; dup {
				problems = append(problems, fmt.Sprintf("%s: %s and %s both map to %s", s.Name, prev, p.Canonical, p.Storage))
			}
			seen[p.Storage] = p.Canonical
		}
	}

	income, ok := t.Section("IncomeStatement")
	for _, e := range t.Terms.Income {
		if !ok {
			problems = append(problems, "IncomeStatement section map is missing")
			break
		}
		if _, found := income.StorageName(e.Field); !found {
			problems = append(problems, fmt.Sprintf("income term %s has no storage name", e.Field))
		}
	}

	for _, e := range t.Terms.Position {
		qualifier, field, nested := strings.Cut(e.Field, ".")
		if !nested {
			if _, total := positionTotals[e.Field]; !total {
				problems = append(problems, fmt.Sprintf("position term %s is not qualified", e.Field))
			}
			continue
		}
		name, known := PositionSubsection(qualifier)
		if !known {
			problems = append(problems, fmt.Sprintf("position term %s uses unknown section %s", e.Field, qualifier))
			continue
		}
		section, found := t.Section(name)
		if !found {
			problems = append(problems, fmt.Sprintf("%s section map is missing", name))
			continue
		}
		if _, found := section.StorageName(field); !found {
			problems = append(problems, fmt.Sprintf("position term %s has no storage name", e.Field))
		}
	}

	if t.Taxonomy != nil {
		for _, field := range t.Taxonomy.Fields() {
			if t.Taxonomy.IsAbstract(field) {
				continue
			}
			if _, total := positionTotals[field]; total {
				continue
			}
			if !t.hasCanonical(field) {
				problems = append(problems, fmt.Sprintf("taxonomy field %s has no storage name", field))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("inconsistent reference tables:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}
