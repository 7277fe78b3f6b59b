package validation

import (
	"fmt"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
)

// Severity grades an issue. Only errors make a filing invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding of the validator.
type Issue struct {
	Section  string   `json:"section"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Section, i.Message)
}

func (i Issue) GetSection() string  { return i.Section }
func (i Issue) GetSeverity() string { return string(i.Severity) }
func (i Issue) GetRule() string     { return i.Rule }

// Report is the outcome of validating one document. Issues keep the order in
// which the rules found them.
type Report struct {
	Issues          []Issue
	TaxonomyVersion string
}

func (r *Report) add(section, rule string, severity Severity, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Section:  section,
		Message:  fmt.Sprintf(format, args...),
		Severity: severity,
		Rule:     rule,
	})
}

// Valid reports whether the document has no error-severity issues.
func (r *Report) Valid() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors groups error messages by section.
func (r *Report) Errors() map[string][]string {
	return r.grouped(SeverityError)
}

// Warnings groups warning messages by section.
func (r *Report) Warnings() map[string][]string {
	return r.grouped(SeverityWarning)
}

func (r *Report) grouped(severity Severity) map[string][]string {
	out := make(map[string][]string)
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out[issue.Section] = append(out[issue.Section], issue.Message)
		}
	}
	return out
}

// Sections returns the sections that have issues, in first-seen order.
func (r *Report) Sections() []string {
	var sections []string
	seen := make(map[string]bool)
	for _, issue := range r.Issues {
		if !seen[issue.Section] {
			seen[issue.Section] = true
			sections = append(sections, issue.Section)
		}
	}
	return sections
}

// Err returns the error issues as an error, or nil when the document is valid.
func (r *Report) Err() error {
	var errs []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &Errors{Issues: errs}
}

// MarshalJSON writes {is_valid, errors, warnings, taxonomy_version} with
// sections in first-seen order.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := jsonvalue.NewObject(4)
	out.Set("is_valid", jsonvalue.Bool(r.Valid()))
	out.Set("errors", r.groupedObject(SeverityError))
	out.Set("warnings", r.groupedObject(SeverityWarning))
	if r.TaxonomyVersion != "" {
		out.Set("taxonomy_version", jsonvalue.String(r.TaxonomyVersion))
	}
	return out.MarshalJSON()
}

func (r *Report) groupedObject(severity Severity) *jsonvalue.Object {
	obj := jsonvalue.NewObject(0)
	for _, issue := range r.Issues {
		if issue.Severity != severity {
			continue
		}
		v, _ := obj.Get(issue.Section)
		msgs, _ := v.(jsonvalue.Array)
		obj.Set(issue.Section, append(msgs, jsonvalue.String(issue.Message)))
	}
	return obj
}

// Errors wraps the error issues of a failed validation.
type Errors struct {
	Issues []Issue
}

func (e *Errors) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Issues))
}

// Unwrap returns the underlying issues for error unwrapping.
func (e *Errors) Unwrap() []error {
	errs := make([]error, len(e.Issues))
	for i, issue := range e.Issues {
		errs[i] = issue
	}
	return errs
}

// FlatIssue is the list form of an error issue used by API responses.
type FlatIssue struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

// Flatten lists the error issues of a report as section/message pairs.
func Flatten(r *Report) []FlatIssue {
	var out []FlatIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, FlatIssue{Section: issue.Section, Message: issue.Message})
		}
	}
	return out
}
