// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles provides styled output helpers for the CLI. Colour is dropped
// automatically when the writer is not a terminal.
type Styles struct {
	renderer *lipgloss.Renderer

	success lipgloss.Style
	err     lipgloss.Style
	path    lipgloss.Style
	section lipgloss.Style
	field   lipgloss.Style
	amount  lipgloss.Style
	keyword lipgloss.Style
	dim     lipgloss.Style
	warning lipgloss.Style
	slow    lipgloss.Style
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	return &Styles{
		renderer: r,
		success:  r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		err:      r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		path:     r.NewStyle().Foreground(lipgloss.Color("6")),
		section:  r.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		field:    r.NewStyle().Foreground(lipgloss.Color("3")),
		amount:   r.NewStyle().Foreground(lipgloss.Color("5")),
		keyword:  r.NewStyle().Bold(true),
		dim:      r.NewStyle().Faint(true),
		warning:  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		slow:     r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string { return s.success.Render(text) }

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string { return s.err.Render(text) }

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string { return s.path.Render(text) }

// Section returns a styled statement section name (blue + bold).
func (s *Styles) Section(text string) string { return s.section.Render(text) }

// Field returns a styled field name (yellow).
func (s *Styles) Field(text string) string { return s.field.Render(text) }

// Amount returns a styled monetary value (magenta).
func (s *Styles) Amount(text string) string { return s.amount.Render(text) }

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string { return s.keyword.Render(text) }

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string { return s.dim.Render(text) }

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string { return s.warning.Render(text) }

// Timing returns a styled timing string. Slow operations are red, the rest
// dimmed.
func (s *Styles) Timing(text string, isSlowOperation bool) string {
	if isSlowOperation {
		return s.slow.Render(text)
	}
	return s.Dim(text)
}

// Renderer returns the underlying lipgloss renderer for advanced usage.
func (s *Styles) Renderer() *lipgloss.Renderer {
	return s.renderer
}
