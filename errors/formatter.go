// Package errors renders pipeline errors for different consumers. Domain
// error types stay in their own packages (validation issues, loader decode
// errors); this package only handles presentation.
//
// Two formatters are provided:
//   - TextFormatter: one line per issue for the command line, with source
//     context for decode errors
//   - JSONFormatter: structured JSON for API consumers
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/xbrl/output"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// Position locates a decode error in its input.
type Position struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func (p Position) String() string {
	name := p.Filename
	if name == "" {
		name = "<stdin>"
	}
	if p.Line == 0 {
		return name
	}
	return fmt.Sprintf("%s:%d:%d", name, p.Line, p.Column)
}

type positional interface {
	error
	GetPosition() Position
}

type sectioned interface {
	error
	GetSection() string
	GetSeverity() string
	GetRule() string
}

// TextFormatter formats errors for command-line output.
type TextFormatter struct {
	styles *output.Styles
	source []byte
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the input a decode error points into.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.source = source
	}
}

// WithStyles colours severities and carets.
func WithStyles(styles *output.Styles) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.styles = styles
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error.
func (tf *TextFormatter) Format(err error) string {
	if e, ok := err.(sectioned); ok {
		return fmt.Sprintf("%s %s", tf.severity(e.GetSeverity()), e.Error())
	}

	if e, ok := err.(positional); ok {
		pos := e.GetPosition()
		message := fmt.Sprintf("%s: %s", pos, e.Error())
		if tf.source != nil && pos.Line > 0 {
			return tf.formatWithSourceContext(pos, message)
		}
		return message
	}

	return err.Error()
}

// FormatAll formats multiple errors one per line. Errors that carry source
// context are separated by a blank line.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	parts := make([]string, len(errs))
	sep := "\n"
	for i, err := range errs {
		parts[i] = strings.TrimRight(tf.Format(err), "\n")
		if strings.Contains(parts[i], "\n") {
			sep = "\n\n"
		}
	}
	return strings.Join(parts, sep)
}

func (tf *TextFormatter) severity(severity string) string {
	label := severity + ":"
	if tf.styles == nil {
		return label
	}
	if severity == "warning" {
		return tf.styles.Warning(label)
	}
	return tf.styles.Error(label)
}

// formatWithSourceContext shows the message followed by the input lines
// around the error, with a caret under the column.
func (tf *TextFormatter) formatWithSourceContext(pos Position, message string) string {
	var buf strings.Builder

	buf.WriteString(message)
	buf.WriteString("\n\n")

	lines := strings.Split(string(tf.source), "\n")

	// Two lines before the error line and one after.
	start := pos.Line - 3
	end := pos.Line
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}

	for i := start; i <= end; i++ {
		buf.WriteString("   ")
		buf.WriteString(tf.dim(lines[i]))
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString(tf.caret())
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

func (tf *TextFormatter) dim(s string) string {
	if tf.styles == nil {
		return s
	}
	return tf.styles.Dim(s)
}

func (tf *TextFormatter) caret() string {
	if tf.styles == nil {
		return "^"
	}
	return tf.styles.Error("^")
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Section  string         `json:"section,omitempty"`
	Severity string         `json:"severity,omitempty"`
	Rule     string         `json:"rule,omitempty"`
	Position *Position      `json:"position,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	out := ErrorJSON{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
	}

	switch e := err.(type) {
	case sectioned:
		out.Type = "validation"
		out.Section = e.GetSection()
		out.Severity = e.GetSeverity()
		out.Rule = e.GetRule()
	case positional:
		out.Type = "decode"
		out.Severity = "error"
		pos := e.GetPosition()
		out.Position = &pos
		if unwrapped := stderrors.Unwrap(err); unwrapped != nil {
			out.Details = map[string]any{"cause": unwrapped.Error()}
		}
	}
	return out
}
