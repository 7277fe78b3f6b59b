package tagging

import (
	"context"
	"fmt"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/logging"
	"github.com/robinvdvleuten/xbrl/reference"
	"github.com/robinvdvleuten/xbrl/telemetry"
)

// Document is a tagged canonical document, one section result per path.
// Nested sections use dotted paths such as
// "StatementOfFinancialPosition.CurrentAssets".
type Document struct {
	paths    []string
	sections map[string]*SectionResult
}

func newDocument() *Document {
	return &Document{sections: make(map[string]*SectionResult)}
}

func (d *Document) add(path string, result *SectionResult) {
	if _, ok := d.sections[path]; !ok {
		d.paths = append(d.paths, path)
	}
	d.sections[path] = result
}

// Paths returns the tagged section paths in document order.
func (d *Document) Paths() []string {
	out := make([]string, len(d.paths))
	copy(out, d.paths)
	return out
}

// Section returns the result for path.
func (d *Document) Section(path string) (*SectionResult, bool) {
	r, ok := d.sections[path]
	return r, ok
}

// Status is the worst status of any section.
func (d *Document) Status() SectionStatus {
	status := Success
	for _, p := range d.paths {
		switch d.sections[p].Performance.Status {
		case CriticalFailure:
			return CriticalFailure
		case PartialFailure:
			status = PartialFailure
		}
	}
	return status
}

// MarshalJSON writes the sections keyed by path.
func (d *Document) MarshalJSON() ([]byte, error) {
	obj := jsonvalue.NewObject(len(d.paths))
	for _, p := range d.paths {
		data, err := d.sections[p].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", p, err)
		}
		v, err := jsonvalue.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", p, err)
		}
		obj.Set(p, v)
	}
	return obj.MarshalJSON()
}

// TagDocument tags every section of a canonical document. Containers such as
// StatementOfFinancialPosition are tagged for their own scalar totals and
// each of their sub-sections gets a separate pass. A sub-section whose name
// says nothing about its statement inherits the container's statement type.
func (t *Tagger) TagDocument(ctx context.Context, doc *jsonvalue.Object) *Document {
	timer := telemetry.StartTimer(ctx, "tagging.document")
	defer timer.End()

	out := newDocument()
	for _, node := range reference.Layout() {
		value, ok := doc.Get(node.Name)
		if !ok || jsonvalue.IsNull(value) {
			continue
		}
		if node.Leaf() {
			out.add(node.Name, t.TagSection(ctx, node.Name, value))
			continue
		}

		container, ok := value.(*jsonvalue.Object)
		if !ok {
			out.add(node.Name, t.TagSection(ctx, node.Name, value))
			continue
		}
		if hasScalars(container) {
			out.add(node.Name, t.TagSection(ctx, node.Name, container))
		}
		parentType := StatementType(node.Name)
		for _, child := range node.Children {
			childValue, ok := container.Get(child)
			if !ok || jsonvalue.IsNull(childValue) {
				continue
			}
			statementType := StatementType(child)
			if statementType == Filing {
				statementType = parentType
			}
			out.add(node.Name+"."+child, t.tagSection(ctx, child, statementType, childValue))
		}
	}

	logging.FromContext(ctx).Debug().
		Int("sections", len(out.paths)).
		Str("status", string(out.Status())).
		Msg("document tagged")
	return out
}

func hasScalars(obj *jsonvalue.Object) bool {
	for _, v := range obj.All() {
		if jsonvalue.IsScalar(v) && !jsonvalue.IsNull(v) {
			return true
		}
	}
	return false
}

// Issue severities and types reported by CheckTagged.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"

	IssueMissingMandatory = "missing_mandatory_field"
	IssueMissingTags      = "missing_tags"
)

// TagIssue is a completeness problem in a tagged document.
type TagIssue struct {
	Severity string `json:"severity"`
	Type     string `json:"type"`
	Section  string `json:"section,omitempty"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// CheckTagged reports mandatory fields absent from every section and fields
// that were tagged without any tag.
func (t *Tagger) CheckTagged(doc *Document) []TagIssue {
	issues := []TagIssue{}

	present := make(map[string]bool)
	for _, p := range doc.paths {
		for _, e := range doc.sections[p].Elements {
			present[e.Field] = true
		}
	}
	for _, field := range t.taxonomy.MandatoryFields() {
		if present[field] {
			continue
		}
		issues = append(issues, TagIssue{
			Severity: SeverityError,
			Type:     IssueMissingMandatory,
			Field:    field,
			Message:  fmt.Sprintf("Mandatory field '%s' is missing from the tagged data", field),
		})
	}

	for _, p := range doc.paths {
		for _, e := range doc.sections[p].Elements {
			if e.Status != StatusUntagged && e.Status != StatusFailed {
				continue
			}
			issues = append(issues, TagIssue{
				Severity: SeverityWarning,
				Type:     IssueMissingTags,
				Section:  p,
				Field:    e.Field,
				Message:  fmt.Sprintf("No tags applied to field '%s' in section '%s'", e.Field, p),
			})
		}
	}
	return issues
}
