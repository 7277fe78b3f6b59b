// Package extract walks arbitrary nested JSON produced by an upstream agent
// (or a user) and sorts every numeric leaf into an income-statement,
// financial-position or unknown bucket.
package extract

import (
	"encoding/json"
	"fmt"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/matcher"
)

// Conventional top-level statement containers, copied without matching.
const (
	incomeStatementKey   = "incomeStatement"
	financialPositionKey = "statementOfFinancialPosition"
)

// Position sub-sections flattened to "section.key".
var positionSections = []string{
	"currentAssets",
	"nonCurrentAssets",
	"currentLiabilities",
	"nonCurrentLiabilities",
	"equity",
}

// Bucket is an insertion-ordered field → value map. Writing an existing
// field replaces its value in place.
type Bucket struct {
	keys   []string
	values map[string]float64
}

func newBucket() *Bucket {
	return &Bucket{values: make(map[string]float64)}
}

// Set stores value under field.
func (b *Bucket) Set(field string, value float64) {
	if _, ok := b.values[field]; !ok {
		b.keys = append(b.keys, field)
	}
	b.values[field] = value
}

// Get returns the value stored under field.
func (b *Bucket) Get(field string) (float64, bool) {
	if b == nil {
		return 0, false
	}
	v, ok := b.values[field]
	return v, ok
}

// Len returns the number of fields.
func (b *Bucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Keys returns the fields in insertion order.
func (b *Bucket) Keys() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.keys...)
}

// MarshalJSON writes the bucket in insertion order.
func (b *Bucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Object())
}

// Object converts the bucket into a JSON object.
func (b *Bucket) Object() *jsonvalue.Object {
	obj := jsonvalue.NewObject(b.Len())
	for _, k := range b.Keys() {
		obj.Set(k, jsonvalue.Number(b.values[k]))
	}
	return obj
}

func (b *Bucket) merge(other *Bucket) {
	for _, k := range other.keys {
		b.Set(k, other.values[k])
	}
}

// Result holds the extracted buckets. Buckets that received no values are nil.
type Result struct {
	IncomeStatement   *Bucket
	FinancialPosition *Bucket
	Unknown           *Bucket
}

// Bucket returns the bucket for a statement type name as produced by the
// matcher ("income_statement", "financial_position" or "unknown").
func (r *Result) Bucket(statementType string) *Bucket {
	switch statementType {
	case matcher.IncomeStatement:
		return r.IncomeStatement
	case matcher.FinancialPosition:
		return r.FinancialPosition
	case matcher.Unknown:
		return r.Unknown
	}
	return nil
}

// Empty reports whether nothing was extracted.
func (r *Result) Empty() bool {
	return r.IncomeStatement.Len() == 0 && r.FinancialPosition.Len() == 0 && r.Unknown.Len() == 0
}

// Object renders the result as {income_statement, financial_position, unknown},
// omitting empty buckets.
func (r *Result) Object() *jsonvalue.Object {
	obj := jsonvalue.NewObject(3)
	for _, entry := range []struct {
		name   string
		bucket *Bucket
	}{
		{matcher.IncomeStatement, r.IncomeStatement},
		{matcher.FinancialPosition, r.FinancialPosition},
		{matcher.Unknown, r.Unknown},
	} {
		if entry.bucket.Len() > 0 {
			obj.Set(entry.name, entry.bucket.Object())
		}
	}
	return obj
}

// MarshalJSON implements json.Marshaler.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Object())
}

// Extractor sorts numeric leaves using a term matcher.
type Extractor struct {
	matcher *matcher.Matcher
}

// New creates an extractor backed by m.
func New(m *matcher.Matcher) *Extractor {
	return &Extractor{matcher: m}
}

// Extract walks data from the root.
func (e *Extractor) Extract(data jsonvalue.Value) *Result {
	return e.ExtractPath(data, "")
}

// ExtractPath walks data, building field paths below prefix. It never fails:
// values of unexpected shape are skipped. Only the first element of a list of
// numbers is classified; the rest are ignored.
func (e *Extractor) ExtractPath(data jsonvalue.Value, prefix string) *Result {
	acc := accumulator{
		income:   newBucket(),
		position: newBucket(),
		unknown:  newBucket(),
	}
	e.walk(&acc, data, prefix)
	return acc.result()
}

type accumulator struct {
	income, position, unknown *Bucket
}

func (a *accumulator) bucket(statementType string) *Bucket {
	switch statementType {
	case matcher.IncomeStatement:
		return a.income
	case matcher.FinancialPosition:
		return a.position
	}
	return a.unknown
}

func (a *accumulator) result() *Result {
	r := &Result{}
	if a.income.Len() > 0 {
		r.IncomeStatement = a.income
	}
	if a.position.Len() > 0 {
		r.FinancialPosition = a.position
	}
	if a.unknown.Len() > 0 {
		r.Unknown = a.unknown
	}
	return r
}

func (e *Extractor) walk(acc *accumulator, data jsonvalue.Value, prefix string) {
	items, ok := data.(*jsonvalue.Object)
	if !ok {
		return
	}

	if income, ok := items.Object(incomeStatementKey); ok {
		for key, v := range income.All() {
			if n, ok := jsonvalue.AsNumber(v); ok {
				acc.income.Set(key, n)
			}
		}
	}

	if position, ok := items.Object(financialPositionKey); ok {
		for key, v := range position.All() {
			if n, ok := jsonvalue.AsNumber(v); ok {
				acc.position.Set(key, n)
			}
		}
		for _, section := range positionSections {
			sub, ok := position.Object(section)
			if !ok {
				continue
			}
			for key, v := range sub.All() {
				if n, ok := jsonvalue.AsNumber(v); ok {
					acc.position.Set(section+"."+key, n)
				}
			}
		}
	}

	for key, value := range items.All() {
		if key == incomeStatementKey || key == financialPositionKey {
			continue
		}

		path := key
		if prefix != "" {
			path = prefix + "_" + key
		}

		switch v := value.(type) {
		case jsonvalue.Number:
			e.placeWithRetry(acc, path, key, float64(v))

		case *jsonvalue.Object:
			if n, ok := singleNumber(v); ok {
				e.place(acc, path, float64(n))
				continue
			}
			e.mergeNested(acc, v, path)

		case jsonvalue.Array:
			for i, item := range v {
				switch item := item.(type) {
				case *jsonvalue.Object:
					e.mergeNested(acc, item, fmt.Sprintf("%s[%d]", path, i))
				case jsonvalue.Number:
					if i == 0 {
						e.place(acc, path, float64(item))
					}
				}
			}
		}
	}
}

// mergeNested extracts a sub-tree on its own and folds it in. Later values
// for a field overwrite earlier ones.
func (e *Extractor) mergeNested(acc *accumulator, data jsonvalue.Value, prefix string) {
	nested := e.ExtractPath(data, prefix)
	if nested.IncomeStatement != nil {
		acc.income.merge(nested.IncomeStatement)
	}
	if nested.FinancialPosition != nil {
		acc.position.merge(nested.FinancialPosition)
	}
	if nested.Unknown != nil {
		acc.unknown.merge(nested.Unknown)
	}
}

func (e *Extractor) place(acc *accumulator, path string, value float64) {
	m := e.matcher.Match(path, matcher.FilterAll)
	if m.Known() {
		acc.bucket(m.StatementType).Set(m.Field, value)
		return
	}
	acc.unknown.Set(path, value)
}

func (e *Extractor) placeWithRetry(acc *accumulator, path, key string, value float64) {
	if m := e.matcher.Match(path, matcher.FilterAll); m.Known() {
		acc.bucket(m.StatementType).Set(m.Field, value)
		return
	}
	if path != key {
		if m := e.matcher.Match(key, matcher.FilterAll); m.Known() {
			acc.bucket(m.StatementType).Set(m.Field, value)
			return
		}
	}
	acc.unknown.Set(path, value)
}

func singleNumber(obj *jsonvalue.Object) (jsonvalue.Number, bool) {
	if obj.Len() != 1 {
		return 0, false
	}
	for _, v := range obj.All() {
		n, ok := v.(jsonvalue.Number)
		return n, ok
	}
	return 0, false
}
