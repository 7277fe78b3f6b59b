package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/phuslu/log"

	"github.com/robinvdvleuten/xbrl/config"
	xerrors "github.com/robinvdvleuten/xbrl/errors"
	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/loader"
	"github.com/robinvdvleuten/xbrl/logging"
	"github.com/robinvdvleuten/xbrl/output"
	"github.com/robinvdvleuten/xbrl/reference"
	"github.com/robinvdvleuten/xbrl/telemetry"
)

// Version and CommitSHA are set via ldflags when building.
var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool   `help:"Show timing telemetry for operations."`
	LogLevel  string `help:"Log level (trace, debug, info, warn, error)." placeholder:"LEVEL"`
	Config    string `help:"Configuration file (TOML)." type:"existingfile" placeholder:"FILE"`
}

type Commands struct {
	Globals

	Match    MatchCmd    `cmd:"" help:"Classify a financial term into a statement and field."`
	Extract  ExtractCmd  `cmd:"" help:"Extract statement buckets from agent output."`
	Map      MapCmd      `cmd:"" help:"Translate a filing to storage field names."`
	Validate ValidateCmd `cmd:"" help:"Validate a filing against the cross-statement rules."`
	Tag      TagCmd      `cmd:"" help:"Tag a filing with taxonomy elements."`
	Run      RunCmd      `cmd:"" help:"Run the full pipeline and print a report."`
}

// session carries what every command needs for one invocation.
type session struct {
	ctx    context.Context
	cfg    *config.Config
	tables *reference.Tables
	logger *log.Logger

	stdout io.Writer
	stderr io.Writer

	collector telemetry.Collector
	rootTimer telemetry.Timer
	once      sync.Once
}

// newSession loads the configuration and reference tables and wires the
// logger, validator configuration and telemetry collector into a context.
func newSession(kctx *kong.Context, globals *Globals, name string) (*session, error) {
	cfg, err := config.Load(globals.Config, ".env")
	if err != nil {
		return nil, err
	}
	if globals.LogLevel != "" {
		cfg.LogLevel = globals.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	tables, err := reference.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference tables: %w", err)
	}

	opts := cfg.Logging()
	opts.Writer = kctx.Stderr
	logger := logging.New(opts)

	ctx := logging.WithLogger(context.Background(), logger)
	ctx = cfg.Validation().WithContext(ctx)

	s := &session{
		ctx:    ctx,
		cfg:    cfg,
		tables: tables,
		logger: logger,
		stdout: kctx.Stdout,
		stderr: kctx.Stderr,
	}

	if globals.Telemetry || cfg.Telemetry {
		s.collector = telemetry.NewTimingCollector()
		s.ctx = telemetry.WithCollector(s.ctx, s.collector)
		s.rootTimer = s.collector.Start(name)
	}

	return s, nil
}

// finish reports telemetry once, no matter how often it is called.
func (s *session) finish() {
	s.once.Do(func() {
		if s.collector == nil {
			return
		}
		s.rootTimer.End()
		_, _ = fmt.Fprintln(s.stderr)
		s.collector.Report(s.stderr, output.NewStyles(s.stderr))
	})
}

func (s *session) loader() *loader.Loader {
	var opts []loader.Option
	if s.cfg.Lenient {
		opts = append(opts, loader.WithLenient())
	}
	return loader.New(opts...)
}

// load decodes input. Decode errors are rendered with source context and
// turned into an ExitError.
func (s *session) load(input *FileOrStdin) (*jsonvalue.Object, error) {
	if err := input.EnsureContents(); err != nil {
		return nil, err
	}

	doc, err := input.Load(s.ctx, s.loader())
	if err == nil {
		return doc, nil
	}

	source, _ := input.Source()
	formatter := xerrors.NewTextFormatter(
		xerrors.WithSource(source),
		xerrors.WithStyles(output.NewStyles(s.stderr)),
	)
	_, _ = fmt.Fprintln(s.stderr, formatter.Format(err))
	_, _ = fmt.Fprintln(s.stderr)
	printError(s.stderr, "failed to load "+input.Filename)
	return nil, failed()
}
