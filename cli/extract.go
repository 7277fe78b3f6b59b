package cli

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/xbrl/extract"
	"github.com/robinvdvleuten/xbrl/matcher"
)

type ExtractCmd struct {
	File FileOrStdin `help:"Agent output filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *ExtractCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	s, err := newSession(ctx, globals, fmt.Sprintf("extract %s", filepath.Base(cmd.File.Filename)))
	if err != nil {
		return err
	}
	defer s.finish()

	doc, err := s.load(&cmd.File)
	if err != nil {
		return err
	}

	result := extract.New(matcher.New(s.tables)).Extract(doc)
	if result.Empty() {
		printInfof(s.stderr, "no numeric values found")
	}
	return writeJSON(s.stdout, result)
}
