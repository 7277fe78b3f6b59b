// Package report renders a pipeline result for people: a terminal summary,
// Markdown, or HTML converted from the Markdown. JSON is the raw result.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	xerrors "github.com/robinvdvleuten/xbrl/errors"
	"github.com/robinvdvleuten/xbrl/output"
	"github.com/robinvdvleuten/xbrl/pipeline"
	"github.com/robinvdvleuten/xbrl/tagging"
	"github.com/robinvdvleuten/xbrl/validation"
)

// Output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Formats lists every supported format.
var Formats = []string{FormatText, FormatJSON, FormatMarkdown, FormatHTML}

// Render writes result to w in format. styles only affects the text format
// and may be nil.
func Render(w io.Writer, result *pipeline.Result, format string, styles *output.Styles) error {
	switch format {
	case FormatText, "":
		return Text(w, result, styles)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(result))
		return err
	case FormatHTML:
		return HTML(w, result)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// Text writes a terminal summary.
func Text(w io.Writer, result *pipeline.Result, styles *output.Styles) error {
	if styles == nil {
		styles = output.NewStyles(io.Discard)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s\n", styles.Keyword("Task"), result.TaskID)
	fmt.Fprintf(&buf, "%s %s\n", styles.Keyword("Status"), status(result.Status, styles))
	fmt.Fprintf(&buf, "%s %s\n", styles.Keyword("Duration"), styles.Dim(duration(result.Duration)))

	formatter := xerrors.NewTextFormatter(xerrors.WithStyles(styles))
	for _, r := range []struct {
		title  string
		report *validation.Report
	}{
		{"Input shape", result.Shape},
		{"Validation", result.Validation},
	} {
		if r.report == nil {
			continue
		}
		fmt.Fprintf(&buf, "\n%s\n", styles.Section(r.title))
		if len(r.report.Issues) == 0 {
			fmt.Fprintf(&buf, "%s no issues\n", styles.Success("✓"))
			continue
		}
		errs := make([]error, len(r.report.Issues))
		for i, issue := range r.report.Issues {
			errs[i] = issue
		}
		buf.WriteString(formatter.FormatAll(errs))
		buf.WriteByte('\n')
	}

	if result.Tagged != nil {
		fmt.Fprintf(&buf, "\n%s\n", styles.Section("Tagging"))
		table := output.NewTable("SECTION", "TAGGED", "UNTAGGED", "SKIPPED", "FAILED", "STATUS")
		for _, path := range result.Tagged.Paths() {
			s, _ := result.Tagged.Section(path)
			table.Append(
				path,
				strconv.Itoa(s.Count(tagging.StatusTagged)),
				strconv.Itoa(s.Count(tagging.StatusUntagged)),
				strconv.Itoa(s.Count(tagging.StatusSkipped)),
				strconv.Itoa(s.Count(tagging.StatusFailed)),
				string(s.Performance.Status),
			)
		}
		if err := table.Render(&buf, styles); err != nil {
			return err
		}
		for _, issue := range result.TagIssues {
			label := styles.Warning(issue.Severity + ":")
			if issue.Severity == tagging.SeverityError {
				label = styles.Error(issue.Severity + ":")
			}
			fmt.Fprintf(&buf, "%s %s\n", label, issue.Message)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func status(s pipeline.Status, styles *output.Styles) string {
	switch s {
	case pipeline.StatusCompleted:
		return styles.Success(string(s))
	case pipeline.StatusCancelled:
		return styles.Warning(string(s))
	}
	return styles.Error(string(s))
}

func duration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

// Markdown renders the result as a Markdown document.
func Markdown(result *pipeline.Result) string {
	var b strings.Builder

	b.WriteString("# XBRL filing report\n\n")
	b.WriteString("| Task | Status | Duration |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| `%s` | %s | %s |\n", result.TaskID, result.Status, duration(result.Duration))

	if result.Shape != nil {
		writeIssues(&b, "Input shape", result.Shape)
	}
	if result.Validation != nil {
		writeIssues(&b, "Validation", result.Validation)
	}

	if result.Mapping != nil && len(result.Mapping.Sections) > 0 {
		b.WriteString("\n## Mapping\n\n")
		b.WriteString("| Section | Mapped | Dropped |\n|---|---:|---|\n")
		for _, s := range result.Mapping.Sections {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", cell(s.Section), s.Mapped, cell(strings.Join(s.Dropped, ", ")))
		}
		if len(result.Mapping.Ignored) > 0 {
			fmt.Fprintf(&b, "\nIgnored top-level keys: %s\n", strings.Join(result.Mapping.Ignored, ", "))
		}
	}

	if result.Tagged != nil {
		b.WriteString("\n## Tagging\n\n")
		b.WriteString("| Section | Statement | Tagged | Untagged | Skipped | Failed | Status |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---|\n")
		for _, path := range result.Tagged.Paths() {
			s, _ := result.Tagged.Section(path)
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d | %s |\n",
				cell(path), s.StatementType,
				s.Count(tagging.StatusTagged), s.Count(tagging.StatusUntagged),
				s.Count(tagging.StatusSkipped), s.Count(tagging.StatusFailed),
				s.Performance.Status)
		}
		if len(result.TagIssues) > 0 {
			b.WriteString("\n### Tag issues\n\n")
			for _, issue := range result.TagIssues {
				fmt.Fprintf(&b, "- **%s** %s\n", issue.Severity, issue.Message)
			}
		}
	}

	return b.String()
}

func writeIssues(b *strings.Builder, title string, r *validation.Report) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
	if len(r.Issues) == 0 {
		b.WriteString("No issues found.\n")
		return
	}
	for _, severity := range []validation.Severity{validation.SeverityError, validation.SeverityWarning} {
		heading := false
		for _, issue := range r.Issues {
			if issue.Severity != severity {
				continue
			}
			if !heading {
				fmt.Fprintf(b, "### %s\n\n", headingFor(severity))
				heading = true
			}
			fmt.Fprintf(b, "- **%s**: %s\n", issue.Section, issue.Message)
		}
		if heading {
			b.WriteByte('\n')
		}
	}
}

func headingFor(s validation.Severity) string {
	if s == validation.SeverityWarning {
		return "Warnings"
	}
	return "Errors"
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML writes a standalone HTML page converted from the Markdown report.
func HTML(w io.Writer, result *pipeline.Result) error {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(result)), &body); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>XBRL filing report %s</title>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(result.TaskID), body.String())
	return err
}
