package tagging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/logging"
	"github.com/robinvdvleuten/xbrl/reference"
	"github.com/robinvdvleuten/xbrl/telemetry"
)

// ElementStatus is the outcome of tagging one section entry.
type ElementStatus string

const (
	StatusTagged   ElementStatus = "tagged"
	StatusUntagged ElementStatus = "untagged"
	StatusSkipped  ElementStatus = "skipped"
	StatusFailed   ElementStatus = "failed"
)

// SectionStatus summarises a whole section.
type SectionStatus string

const (
	Success         SectionStatus = "success"
	PartialFailure  SectionStatus = "partial_failure"
	CriticalFailure SectionStatus = "critical_failure"
)

// ElementResult is one entry of a tagged section.
type ElementResult struct {
	Field   string
	Status  ElementStatus
	Element Element
	// Reason is set for skipped and failed entries.
	Reason string
}

// Performance is the section's processing summary.
type Performance struct {
	SectionName       string        `json:"section_name"`
	StatementType     string        `json:"statement_type"`
	ElementsProcessed int           `json:"elements_processed"`
	ProcessingTimeMS  float64       `json:"processing_time_ms"`
	Status            SectionStatus `json:"status"`
}

// SectionResult is the result of TagSection.
type SectionResult struct {
	Name          string
	StatementType string
	MetaTags      []reference.FinancialTag
	Elements      []ElementResult
	Performance   Performance
	// Error describes a critical failure.
	Error string
}

// Element returns the result for field.
func (r *SectionResult) Element(field string) (ElementResult, bool) {
	for _, e := range r.Elements {
		if e.Field == field {
			return e, true
		}
	}
	return ElementResult{}, false
}

// Count returns how many entries ended with status.
func (r *SectionResult) Count(status ElementStatus) int {
	n := 0
	for _, e := range r.Elements {
		if e.Status == status {
			n++
		}
	}
	return n
}

// MarshalJSON writes meta_tags, then every tagged or untagged field in
// input order, then _performance. Skipped entries are left out.
func (r *SectionResult) MarshalJSON() ([]byte, error) {
	obj := jsonvalue.NewObject(len(r.Elements) + 3)
	obj.Set("meta_tags", toValue(nonNilTags(r.MetaTags)))
	for _, e := range r.Elements {
		switch e.Status {
		case StatusTagged, StatusUntagged:
			entry := jsonvalue.NewObject(3)
			entry.Set("value", e.Element.Value)
			entry.Set("tags", toValue(nonNilTags(e.Element.Tags)))
			entry.Set("is_mandatory", jsonvalue.Bool(e.Element.Mandatory))
			obj.Set(e.Field, entry)
		case StatusFailed:
			entry := jsonvalue.NewObject(4)
			entry.Set("value", e.Element.Value)
			entry.Set("tags", jsonvalue.Array{})
			entry.Set("is_mandatory", jsonvalue.Bool(false))
			entry.Set("processing_error", jsonvalue.String(e.Reason))
			obj.Set(e.Field, entry)
		}
	}
	obj.Set("_performance", toValue(r.Performance))
	if r.Error != "" {
		obj.Set("error", jsonvalue.String(r.Error))
	}
	return obj.MarshalJSON()
}

// TagSection tags every scalar entry of a section. Nested objects and arrays
// are skipped, never recursed into; nested sections need their own call.
// A failure on one entry marks it failed and the rest of the section is
// still tagged.
func (t *Tagger) TagSection(ctx context.Context, name string, data jsonvalue.Value) *SectionResult {
	return t.tagSection(ctx, name, StatementType(name), data)
}

func (t *Tagger) tagSection(ctx context.Context, name, statementType string, data jsonvalue.Value) *SectionResult {
	timer := telemetry.StartTimer(ctx, "tagging.section."+name)
	defer timer.End()

	start := time.Now()
	result := &SectionResult{
		Name:          name,
		StatementType: statementType,
		MetaTags:      []reference.FinancialTag{},
	}
	finish := func(status SectionStatus) *SectionResult {
		result.Performance.SectionName = name
		result.Performance.StatementType = statementType
		result.Performance.ProcessingTimeMS = float64(time.Since(start).Microseconds()) / 1000
		result.Performance.Status = status
		return result
	}

	obj, ok := data.(*jsonvalue.Object)
	if !ok || obj.Len() == 0 {
		result.Error = "Invalid or empty section data"
		return finish(CriticalFailure)
	}
	result.Performance.ElementsProcessed = obj.Len()

	meta, err := t.metaTags(name)
	if err != nil {
		logging.FromContext(ctx).Error().Str("section", name).Err(err).Msg("collecting section tags failed")
		result.Error = err.Error()
		return finish(CriticalFailure)
	}
	result.MetaTags = meta

	status := Success
	for field, value := range obj.All() {
		element := t.tagEntry(ctx, field, value, statementType)
		if element.Status == StatusFailed {
			status = PartialFailure
			logging.FromContext(ctx).Warn().
				Str("section", name).
				Str("field", field).
				Str("reason", element.Reason).
				Msg("element tagging failed")
		}
		result.Elements = append(result.Elements, element)
	}
	return finish(status)
}

// tagEntry tags one section entry and turns a panic into a failed result.
func (t *Tagger) tagEntry(ctx context.Context, field string, value jsonvalue.Value, statementType string) (result ElementResult) {
	result = ElementResult{Field: field}

	switch value.(type) {
	case nil, jsonvalue.Null:
		result.Status = StatusSkipped
		result.Reason = "null value"
		return result
	case *jsonvalue.Object, jsonvalue.Array:
		result.Status = StatusSkipped
		result.Reason = "complex value"
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusFailed
			result.Reason = fmt.Sprint(r)
			result.Element = Element{Field: field, Value: value, Tags: []reference.FinancialTag{}}
		}
	}()

	result.Element = t.TagElement(ctx, field, value, statementType, statementType == BalanceSheet)
	if len(result.Element.Tags) == 0 {
		result.Status = StatusUntagged
	} else {
		result.Status = StatusTagged
	}
	return result
}

// metaTags returns the statement tags whose element name contains the
// section name.
func (t *Tagger) metaTags(name string) (tags []reference.FinancialTag, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collecting section tags: %v", r)
		}
	}()

	lower := strings.ToLower(name)
	tags = []reference.FinancialTag{}
	for _, tag := range t.taxonomy.StatementTags() {
		if strings.Contains(strings.ToLower(tag.ElementName), lower) {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// BatchResult is the result of BatchTag.
type BatchResult struct {
	Elements          []Element `json:"tagged_elements"`
	ElementsProcessed int       `json:"elements_processed"`
	ProcessingTimeMS  float64   `json:"processing_time_ms"`
	ElementsPerSecond float64   `json:"elements_per_second"`
}

// BatchTag tags every non-null, non-object entry of elements against one
// statement type. ElementsProcessed counts every entry, skipped ones
// included.
func (t *Tagger) BatchTag(ctx context.Context, elements *jsonvalue.Object, statementType string) BatchResult {
	timer := telemetry.StartTimer(ctx, "tagging.batch")
	defer timer.End()

	start := time.Now()
	result := BatchResult{Elements: []Element{}}
	for field, value := range elements.All() {
		switch value.(type) {
		case nil, jsonvalue.Null, *jsonvalue.Object:
			continue
		}
		result.Elements = append(result.Elements, t.TagElement(ctx, field, value, statementType, statementType == BalanceSheet))
	}

	elapsed := time.Since(start)
	result.ElementsProcessed = elements.Len()
	result.ProcessingTimeMS = float64(elapsed.Microseconds()) / 1000
	if elapsed > 0 {
		result.ElementsPerSecond = float64(result.ElementsProcessed) / elapsed.Seconds()
	}
	return result
}

func nonNilTags(tags []reference.FinancialTag) []reference.FinancialTag {
	if tags == nil {
		return []reference.FinancialTag{}
	}
	return tags
}

// toValue converts a plain Go value into a jsonvalue through its JSON
// encoding.
func toValue(v any) jsonvalue.Value {
	data, err := json.Marshal(v)
	if err != nil {
		return jsonvalue.Null{}
	}
	out, err := jsonvalue.Decode(data)
	if err != nil {
		return jsonvalue.Null{}
	}
	return out
}
