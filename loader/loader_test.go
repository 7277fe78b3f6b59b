package loader

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	xerrors "github.com/robinvdvleuten/xbrl/errors"
	"github.com/robinvdvleuten/xbrl/jsonvalue"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	assert.NoError(t, err)
	return string(data)
}

func TestLoadSingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "filing.json", `{
		"FilingInformation": {"NameOfCompany": "Acme"},
		"IncomeStatement": {"Revenue": 100, "ProfitLoss": 10}
	}`)

	doc, err := New().Load(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"FilingInformation", "IncomeStatement"}, doc.Keys())
}

func TestLoadUnwrapsAgentEnvelope(t *testing.T) {
	path := writeFile(t, t.TempDir(), "agent.json", `{"data": {"mapped_data": {"IncomeStatement": {"Revenue": 1}}}}`)

	doc, err := New().Load(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, `{"IncomeStatement":{"Revenue":1}}`, marshal(t, doc))
}

func TestLoadStdin(t *testing.T) {
	ldr := New(WithStdin(strings.NewReader(`{"AuditReport": {"AuditOpinion": "Unqualified"}}`)))

	doc, err := ldr.Load(context.Background())
	assert.NoError(t, err)
	assert.True(t, doc.Has("AuditReport"))
}

func TestLoadEmptyInput(t *testing.T) {
	ldr := New(WithStdin(strings.NewReader("  \n\t")))
	_, err := ldr.Load(context.Background(), Stdin)
	assert.True(t, errors.Is(err, ErrEmptyInput))

	path := writeFile(t, t.TempDir(), "empty.json", "\xef\xbb\xbf\n")
	_, err = New(WithLenient()).Load(context.Background(), path)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.Contains(t, err.Error(), "empty.json")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStrictLoaderReportsPosition(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.json", "{\n  \"Revenue\": ,\n}")

	_, err := New().Load(context.Background(), path)
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, xerrors.Position{Filename: path, Line: 2, Column: 14}, decodeErr.GetPosition())
}

func TestStrictLoaderRejectsNonObject(t *testing.T) {
	_, err := New().Parse(context.Background(), "list.json", []byte(`[1, 2]`))
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, 0, decodeErr.Line)
	assert.Contains(t, err.Error(), "expected a JSON object")
}

func TestLenientLoaderRepairsInput(t *testing.T) {
	tests := map[string]string{
		"trailing commas": `{"IncomeStatement": {"ProfitLoss": 10, "Revenue": 100,},}`,
		"markdown fence":  "```json\n{\"IncomeStatement\": {\"ProfitLoss\": 10, \"Revenue\": 100}}\n```",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New().Parse(context.Background(), "agent.json", []byte(input))
			assert.Error(t, err)

			doc, err := New(WithLenient()).Parse(context.Background(), "agent.json", []byte(input))
			assert.NoError(t, err)
			assert.Equal(t, `{"IncomeStatement":{"ProfitLoss":10,"Revenue":100}}`, marshal(t, doc))
		})
	}
}

func TestLenientLoaderReadsHumanEditedInput(t *testing.T) {
	input := `{
  # prepared by hand
  IncomeStatement: {
    Revenue: 100
  }
}`
	doc, err := New(WithLenient()).Parse(context.Background(), "filing.hjson", []byte(input))
	assert.NoError(t, err)

	income, ok := doc.Object("IncomeStatement")
	assert.True(t, ok)
	revenue, _ := income.Get("Revenue")
	assert.Equal(t, jsonvalue.Value(jsonvalue.Number(100)), revenue)
}

func TestLoadMergesFiles(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{
		"FilingInformation": {"NameOfCompany": "Acme", "PresentationCurrency": "SGD"},
		"IncomeStatement": {"Revenue": 100}
	}`)
	override := writeFile(t, dir, "override.json", `{
		"FilingInformation": {"PresentationCurrency": "USD"},
		"AuditReport": {"AuditOpinion": "Unqualified"}
	}`)

	doc, err := New().Load(context.Background(), base, override, base)
	assert.NoError(t, err)
	assert.Equal(t,
		`{"FilingInformation":{"NameOfCompany":"Acme","PresentationCurrency":"USD"},`+
			`"IncomeStatement":{"Revenue":100},"AuditReport":{"AuditOpinion":"Unqualified"}}`,
		marshal(t, doc))
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Load(ctx, "anything.json")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	dst, _ := jsonvalue.DecodeObject([]byte(`{"A": {"x": 1}}`))
	src, _ := jsonvalue.DecodeObject([]byte(`{"A": {"y": 2}, "B": 3}`))

	out := Merge(dst, src)
	assert.Equal(t, `{"A":{"x":1,"y":2},"B":3}`, marshal(t, out))
	assert.Equal(t, `{"A":{"x":1}}`, marshal(t, dst))
}

func TestFormatterShowsSourceContext(t *testing.T) {
	data := []byte("{\n  \"Revenue\": ,\n}")
	_, err := New().Parse(context.Background(), "broken.json", data)

	out := xerrors.NewTextFormatter(xerrors.WithSource(data)).Format(err)
	assert.True(t, strings.HasPrefix(out, "broken.json:2:14: invalid character ','"))
	assert.Contains(t, out, "                ^")
}
