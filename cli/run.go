package cli

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/xbrl/output"
	"github.com/robinvdvleuten/xbrl/pipeline"
	"github.com/robinvdvleuten/xbrl/report"
)

type RunCmd struct {
	File       FileOrStdin `help:"Filing or agent output filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Report     string      `help:"Report format (text, json, markdown, html)." default:"text" enum:"text,json,markdown,html" short:"r"`
	CheckShape bool        `help:"Reject raw agent output that fails the input shape check."`
	Defaults   bool        `help:"Fill in storage layer defaults for missing fields."`
}

func (cmd *RunCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	s, err := newSession(ctx, globals, fmt.Sprintf("run %s", filepath.Base(cmd.File.Filename)))
	if err != nil {
		return err
	}
	defer s.finish()

	doc, err := s.load(&cmd.File)
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if !s.cfg.TagCache {
		opts = append(opts, pipeline.WithCache(nil))
	}
	if cmd.CheckShape {
		opts = append(opts, pipeline.WithShapeCheck())
	}
	if cmd.Defaults {
		opts = append(opts, pipeline.WithStorageDefaults())
	}

	result := pipeline.New(s.tables, opts...).Run(s.ctx, doc)

	if err := report.Render(s.stdout, result, cmd.Report, output.NewStyles(s.stdout)); err != nil {
		return err
	}

	if !result.Valid() {
		printError(s.stderr, fmt.Sprintf("pipeline %s", result.Status))
		return failed()
	}
	return nil
}
