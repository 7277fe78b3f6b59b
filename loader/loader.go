// Package loader reads filing documents from files or standard input.
//
// Documents are JSON objects. A lenient loader also accepts what agents and
// people tend to produce instead: JSON with trailing commas, comments,
// unquoted keys or markdown fences is repaired, and Hjson is accepted as a
// last resort. Agent envelopes ({"mapped_data": ...} and
// {"data": {"mapped_data": ...}}) are unwrapped.
//
// Several files can be loaded at once; their sections are merged in order,
// later files winning per field:
//
//	ldr := loader.New(loader.WithLenient())
//	doc, err := ldr.Load(ctx, "filing.json", "notes.json")
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	xerrors "github.com/robinvdvleuten/xbrl/errors"
	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/logging"
	"github.com/robinvdvleuten/xbrl/telemetry"
	"github.com/robinvdvleuten/xbrl/translate"
)

// Stdin is the file name that reads standard input.
const Stdin = "-"

// ErrEmptyInput is returned for input that holds nothing but whitespace.
var ErrEmptyInput = errors.New("empty input")

// DecodeError is returned when input cannot be read as a JSON object.
type DecodeError struct {
	Filename string
	Line     int
	Column   int
	Err      error
}

func (e *DecodeError) Error() string {
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// GetPosition returns where decoding failed.
func (e *DecodeError) GetPosition() xerrors.Position {
	return xerrors.Position{Filename: e.Filename, Line: e.Line, Column: e.Column}
}

// Loader reads documents.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(WithLenient())
type Loader struct {
	// Lenient enables JSON repair and the Hjson fallback.
	Lenient bool

	stdin io.Reader
}

// Option configures how documents are loaded.
type Option func(*Loader)

// WithLenient makes the loader repair malformed input instead of rejecting it.
func WithLenient() Option {
	return func(l *Loader) {
		l.Lenient = true
	}
}

// WithStdin replaces standard input.
func WithStdin(r io.Reader) Option {
	return func(l *Loader) {
		l.stdin = r
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{stdin: os.Stdin}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and merges filenames. No names, or "-", read standard input.
// A file named twice is only read once.
func (l *Loader) Load(ctx context.Context, filenames ...string) (*jsonvalue.Object, error) {
	timer := telemetry.StartTimer(ctx, "loader.load")
	defer timer.End()

	if len(filenames) == 0 {
		filenames = []string{Stdin}
	}

	visited := make(map[string]bool)
	var merged *jsonvalue.Object
	for _, name := range filenames {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		key := name
		if name != Stdin {
			abs, err := filepath.Abs(name)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", name, err)
			}
			key = abs
		}
		if visited[key] {
			continue
		}
		visited[key] = true

		data, err := l.read(name)
		if err != nil {
			return nil, err
		}
		doc, err := l.Parse(ctx, name, data)
		if err != nil {
			return nil, err
		}
		merged = Merge(merged, doc)
	}
	return merged, nil
}

func (l *Loader) read(name string) ([]byte, error) {
	if name == Stdin {
		data, err := io.ReadAll(l.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Parse decodes data as a document. filename is only used in errors.
func (l *Loader) Parse(ctx context.Context, filename string, data []byte) (*jsonvalue.Object, error) {
	log := logging.FromContext(ctx)
	if filename == Stdin {
		filename = ""
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		if filename == "" {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyInput)
	}

	doc, err := jsonvalue.DecodeObject(data)
	if err == nil {
		return translate.Unwrap(doc), nil
	}
	if !l.Lenient {
		return nil, newDecodeError(filename, data, err)
	}

	if repaired, rerr := jsonrepair.RepairJSON(string(data)); rerr == nil {
		if doc, derr := jsonvalue.DecodeObject([]byte(repaired)); derr == nil {
			log.Debug().Str("file", filename).Str("reason", err.Error()).Msg("input repaired")
			return translate.Unwrap(doc), nil
		}
	}

	// Hjson objects decode into Go maps, so key order is lost here.
	var v any
	if herr := hjson.Unmarshal(data, &v); herr == nil {
		if doc, ok := jsonvalue.FromAny(v).(*jsonvalue.Object); ok {
			log.Debug().Str("file", filename).Msg("input read as hjson")
			return translate.Unwrap(doc), nil
		}
	}

	return nil, newDecodeError(filename, data, err)
}

func newDecodeError(filename string, data []byte, err error) *DecodeError {
	e := &DecodeError{Filename: filename, Err: err}

	// The streaming decoder reports offsets relative to the current value;
	// a whole-input syntax check gives an absolute one.
	var scratch any
	var syntax *json.SyntaxError
	if errors.As(json.Unmarshal(data, &scratch), &syntax) {
		e.Line, e.Column = position(data, syntax.Offset)
	}
	return e
}

// position converts a byte offset into a 1-based line and column. Syntax
// errors report the offset just past the offending byte.
func position(data []byte, offset int64) (line, column int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset > 0 {
		offset--
	}
	line, column = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// Merge folds src into dst and returns dst. Nested objects merge
// recursively; any other value in src replaces the one in dst. Neither
// input is modified.
func Merge(dst, src *jsonvalue.Object) *jsonvalue.Object {
	if dst == nil {
		return src.Clone()
	}
	out := dst.Clone()
	for k, v := range src.All() {
		existing, _ := out.Object(k)
		incoming, ok := v.(*jsonvalue.Object)
		if existing != nil && ok {
			out.Set(k, Merge(existing, incoming))
			continue
		}
		out.Set(k, jsonvalue.Clone(v))
	}
	return out
}
