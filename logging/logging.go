// Package logging builds the structured logger used across the pipeline and
// carries it through context.Context, the same way telemetry collectors
// travel.
//
// Example usage:
//
//	logger := logging.New(logging.Options{Level: "debug", Format: logging.FormatConsole})
//	ctx := logging.WithLogger(context.Background(), logger)
//
//	logging.FromContext(ctx).Info().Str("section", "IncomeStatement").Msg("tagged")
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
	"golang.org/x/term"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures New.
type Options struct {
	// Level is one of trace, debug, info, warn or error. Empty means info.
	Level string
	// Format is FormatConsole or FormatJSON. Empty means console.
	Format string
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New creates a logger from opts.
func New(opts Options) *log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	logger := &log.Logger{
		Level:      ParseLevel(opts.Level),
		TimeFormat: "15:04:05",
	}

	switch strings.ToLower(opts.Format) {
	case FormatJSON:
		logger.TimeFormat = ""
		logger.Writer = &log.IOWriter{Writer: w}
	default:
		logger.Writer = &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    isTerminal(w),
			EndWithMessage: true,
		}
	}
	return logger
}

// ParseLevel maps a level name onto a log level. Unknown names mean info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}

type contextKey struct{}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger attached to ctx, or a discarding logger.
func FromContext(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*log.Logger); ok && logger != nil {
		return logger
	}
	return discard
}

var discard = Discard()

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
