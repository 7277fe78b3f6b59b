package errors

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/xbrl/output"
	"github.com/robinvdvleuten/xbrl/validation"
)

type positionalError struct {
	pos Position
	msg string
}

func (e positionalError) Error() string         { return e.msg }
func (e positionalError) GetPosition() Position { return e.pos }

var (
	missingName = validation.Issue{
		Section:  "FilingInformation",
		Message:  "Missing required field: NameOfCompany",
		Severity: validation.SeverityError,
		Rule:     "filing.required_fields",
	}
	revenueWarning = validation.Issue{
		Section:  "IncomeStatement",
		Message:  "Revenue should be provided",
		Severity: validation.SeverityWarning,
		Rule:     "income.revenue",
	}
)

func TestTextFormatter_FormatIssue(t *testing.T) {
	tf := NewTextFormatter()

	assert.Equal(t, "error: FilingInformation: Missing required field: NameOfCompany", tf.Format(missingName))
	assert.Equal(t, "warning: IncomeStatement: Revenue should be provided", tf.Format(revenueWarning))
}

func TestTextFormatter_FormatWithPosition(t *testing.T) {
	tf := NewTextFormatter()

	err := positionalError{pos: Position{Filename: "filing.json", Line: 3, Column: 7}, msg: "invalid character '}'"}
	assert.Equal(t, "filing.json:3:7: invalid character '}'", tf.Format(err))

	stdin := positionalError{pos: Position{Line: 1, Column: 1}, msg: "unexpected end of JSON input"}
	assert.Equal(t, "<stdin>:1:1: unexpected end of JSON input", tf.Format(stdin))
}

func TestTextFormatter_FormatWithSourceContext(t *testing.T) {
	source := []byte("{\n  \"IncomeStatement\": {\n    \"Revenue\": ,\n  }\n}\n")
	tf := NewTextFormatter(WithSource(source))

	err := positionalError{pos: Position{Filename: "filing.json", Line: 3, Column: 16}, msg: "invalid character ','"}
	expected := "filing.json:3:16: invalid character ','\n\n" +
		"   {\n" +
		"     \"IncomeStatement\": {\n" +
		"       \"Revenue\": ,\n" +
		"                  ^\n" +
		"     }\n"
	assert.Equal(t, expected, tf.Format(err))
}

func TestTextFormatter_FormatAll(t *testing.T) {
	tf := NewTextFormatter()

	assert.Equal(t, "", tf.FormatAll(nil))
	assert.Equal(t,
		"error: FilingInformation: Missing required field: NameOfCompany\n"+
			"warning: IncomeStatement: Revenue should be provided",
		tf.FormatAll([]error{missingName, revenueWarning}))
}

func TestTextFormatter_FormatAllUnwrapsReport(t *testing.T) {
	report := &validation.Report{Issues: []validation.Issue{missingName, revenueWarning}}
	err := report.Err()
	assert.Error(t, err)

	errs := err.(interface{ Unwrap() []error }).Unwrap()
	assert.Equal(t, "error: FilingInformation: Missing required field: NameOfCompany", NewTextFormatter().FormatAll(errs))
}

func TestTextFormatter_StylesArePlainWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	tf := NewTextFormatter(WithStyles(output.NewStyles(&buf)))
	assert.Equal(t, "warning: IncomeStatement: Revenue should be provided", tf.Format(revenueWarning))
}

func TestJSONFormatter_Format(t *testing.T) {
	jf := NewJSONFormatter()

	var issue ErrorJSON
	assert.NoError(t, json.Unmarshal([]byte(jf.Format(missingName)), &issue))
	assert.Equal(t, ErrorJSON{
		Type:     "validation",
		Message:  "FilingInformation: Missing required field: NameOfCompany",
		Section:  "FilingInformation",
		Severity: "error",
		Rule:     "filing.required_fields",
	}, issue)

	var decode ErrorJSON
	err := positionalError{pos: Position{Filename: "filing.json", Line: 2, Column: 4}, msg: "bad"}
	assert.NoError(t, json.Unmarshal([]byte(jf.Format(err)), &decode))
	assert.Equal(t, "decode", decode.Type)
	assert.Equal(t, &Position{Filename: "filing.json", Line: 2, Column: 4}, decode.Position)
}

func TestJSONFormatter_FormatAll(t *testing.T) {
	jf := NewJSONFormatter()

	assert.Equal(t, "[]", jf.FormatAll(nil))

	out := jf.FormatAllToSlice([]error{missingName, revenueWarning})
	assert.Equal(t, 2, len(out))
	assert.Equal(t, "warning", out[1].Severity)
}
