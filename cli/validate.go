package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	xerrors "github.com/robinvdvleuten/xbrl/errors"
	"github.com/robinvdvleuten/xbrl/output"
	"github.com/robinvdvleuten/xbrl/validation"
)

type ValidateCmd struct {
	File   FileOrStdin `help:"Filing filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Format string      `help:"Output format (text, json)." default:"text" enum:"text,json"`
	Strict bool        `help:"Require every mapped field of each present section."`
	Watch  bool        `help:"Re-validate whenever the file changes." short:"w"`
}

func (cmd *ValidateCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	s, err := newSession(ctx, globals, fmt.Sprintf("validate %s", filepath.Base(cmd.File.Filename)))
	if err != nil {
		return err
	}
	defer s.finish()

	if cmd.Strict {
		cfg := s.cfg.Validation()
		cfg.StrictFields = true
		s.ctx = cfg.WithContext(s.ctx)
	}

	if cmd.Watch {
		if cmd.File.IsStdin() {
			return errors.New("--watch needs a filename, not stdin")
		}
		return cmd.watch(s)
	}

	valid, err := cmd.check(s)
	if err != nil {
		return err
	}
	if !valid {
		return failed()
	}
	return nil
}

// check validates the input once and prints the outcome.
func (cmd *ValidateCmd) check(s *session) (bool, error) {
	doc, err := s.load(&cmd.File)
	if err != nil {
		return false, err
	}

	report := validation.New(s.tables).Validate(s.ctx, canonicalize(s.tables, doc))

	issues := make([]error, len(report.Issues))
	for i, issue := range report.Issues {
		issues[i] = issue
	}

	if cmd.Format == "json" {
		_, err := fmt.Fprintln(s.stdout, xerrors.NewJSONFormatter().FormatAll(issues))
		return report.Valid(), err
	}

	if len(issues) > 0 {
		formatter := xerrors.NewTextFormatter(xerrors.WithStyles(output.NewStyles(s.stderr)))
		_, _ = fmt.Fprintln(s.stderr, formatter.FormatAll(issues))
		_, _ = fmt.Fprintln(s.stderr)
	}

	errCount := len(report.Issues) - countWarnings(report)
	switch {
	case errCount > 0:
		printError(s.stderr, fmt.Sprintf("%d validation error(s) found", errCount))
	case len(report.Issues) > 0:
		printSuccess(s.stdout, fmt.Sprintf("Validation passed with %d warning(s)", len(report.Issues)))
	default:
		printSuccess(s.stdout, "Validation passed")
	}
	return report.Valid(), nil
}

func countWarnings(report *validation.Report) int {
	n := 0
	for _, issue := range report.Issues {
		if issue.Severity == validation.SeverityWarning {
			n++
		}
	}
	return n
}

// watch re-runs check on every change until interrupted.
func (cmd *ValidateCmd) watch(s *session) error {
	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt)
	defer stop()

	runCheck := func() {
		if _, err := cmd.check(s); err != nil {
			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				printError(s.stderr, err.Error())
			}
		}
	}

	runCheck()
	printInfof(s.stderr, "watching %s for changes", cmd.File.AbsoluteFilename())

	return watchFile(ctx, cmd.File.Filename, func() {
		s.logger.Debug().Str("file", cmd.File.Filename).Msg("file changed")
		runCheck()
	})
}
