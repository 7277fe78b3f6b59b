// Package translate converts canonical filing documents, keyed by the
// PascalCase names used in the XBRL taxonomy, into the snake_case shape the
// storage layer persists.
package translate

import (
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/reference"
)

// Top-level fields that are copied into filing_information when the
// FilingInformation section did not already provide them.
var backfill = []reference.FieldPair{
	{Canonical: "NameOfCompany", Storage: "company_name"},
	{Canonical: "UniqueEntityNumber", Storage: "unique_entity_number"},
}

const filingStorage = "filing_information"

// Translator applies the per-section name maps from the reference tables.
type Translator struct {
	tables *reference.Tables
}

// New creates a translator over tables.
func New(tables *reference.Tables) *Translator {
	return &Translator{tables: tables}
}

// ToStorageNames returns a storage-named copy of doc. Only keys known to a
// section map are copied; everything else is dropped. A section that is
// present but not an object is emitted empty. The input is never modified.
func (t *Translator) ToStorageNames(doc *jsonvalue.Object) *jsonvalue.Object {
	out := jsonvalue.NewObject(8)

	for _, node := range reference.Layout() {
		v, ok := doc.Get(node.Name)
		if !ok {
			continue
		}
		src, _ := v.(*jsonvalue.Object)

		if node.Leaf() {
			out.Set(node.Storage, t.section(node.Name, src))
			continue
		}

		dst := jsonvalue.NewObject(len(node.Totals) + len(node.Children))
		for _, p := range node.Totals {
			if tv, ok := src.Get(p.Canonical); ok {
				dst.Set(p.Storage, jsonvalue.Clone(tv))
			}
		}
		for _, child := range node.Children {
			cv, ok := src.Get(child)
			if !ok {
				continue
			}
			sm, ok := t.tables.Section(child)
			if !ok {
				continue
			}
			csrc, _ := cv.(*jsonvalue.Object)
			dst.Set(sm.Storage, t.section(child, csrc))
		}
		out.Set(node.Storage, dst)
	}

	for _, p := range backfill {
		v, ok := doc.Get(p.Canonical)
		if !ok {
			continue
		}
		filing, ok := out.Object(filingStorage)
		if !ok {
			filing = jsonvalue.NewObject(len(backfill))
			out.Set(filingStorage, filing)
		}
		if !filing.Has(p.Storage) {
			filing.Set(p.Storage, jsonvalue.Clone(v))
		}
	}

	return out
}

func (t *Translator) section(name string, src *jsonvalue.Object) *jsonvalue.Object {
	sm, ok := t.tables.Section(name)
	if !ok {
		return jsonvalue.NewObject(0)
	}
	dst := jsonvalue.NewObject(len(sm.Fields))
	for _, p := range sm.Fields {
		if v, ok := src.Get(p.Canonical); ok {
			dst.Set(p.Storage, jsonvalue.Clone(v))
		}
	}
	return dst
}

// SectionReport counts what happened to one section during translation.
type SectionReport struct {
	Section string   `json:"section"`
	Mapped  int      `json:"mapped"`
	Dropped []string `json:"dropped,omitempty"`
}

// MappingReport summarises a translation.
type MappingReport struct {
	Sections []SectionReport `json:"sections"`
	// Top-level keys that are neither a known section nor a backfilled field.
	Ignored []string `json:"ignored,omitempty"`
}

// Dropped returns the total number of dropped keys.
func (r MappingReport) Dropped() int {
	n := len(r.Ignored)
	for _, s := range r.Sections {
		n += len(s.Dropped)
	}
	return n
}

// ReportMapping describes which keys of doc ToStorageNames would keep and
// which it would drop, per section.
func (t *Translator) ReportMapping(doc *jsonvalue.Object) MappingReport {
	var report MappingReport
	known := make(map[string]bool)
	for _, p := range backfill {
		known[p.Canonical] = true
	}

	for _, node := range reference.Layout() {
		known[node.Name] = true
		v, ok := doc.Get(node.Name)
		if !ok {
			continue
		}
		src, _ := v.(*jsonvalue.Object)

		if node.Leaf() {
			report.Sections = append(report.Sections, t.reportSection(node.Name, src))
			continue
		}

		totals := make(map[string]bool, len(node.Totals)+len(node.Children))
		for _, p := range node.Totals {
			totals[p.Canonical] = true
		}
		for _, c := range node.Children {
			totals[c] = true
		}
		parent := SectionReport{Section: node.Name}
		for k := range src.All() {
			switch {
			case !totals[k]:
				parent.Dropped = append(parent.Dropped, k)
			case !slices.Contains(node.Children, k):
				parent.Mapped++
			}
		}
		report.Sections = append(report.Sections, parent)

		for _, child := range node.Children {
			cv, ok := src.Get(child)
			if !ok {
				continue
			}
			csrc, _ := cv.(*jsonvalue.Object)
			report.Sections = append(report.Sections, t.reportSection(child, csrc))
		}
	}

	for k := range doc.All() {
		if !known[k] {
			report.Ignored = append(report.Ignored, k)
		}
	}
	return report
}

func (t *Translator) reportSection(name string, src *jsonvalue.Object) SectionReport {
	r := SectionReport{Section: name}
	sm, ok := t.tables.Section(name)
	for k := range src.All() {
		if ok {
			if _, mapped := sm.StorageName(k); mapped {
				r.Mapped++
				continue
			}
		}
		r.Dropped = append(r.Dropped, k)
	}
	return r
}
