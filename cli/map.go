package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/xbrl/output"
	"github.com/robinvdvleuten/xbrl/translate"
)

type MapCmd struct {
	File     FileOrStdin `help:"Filing filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Output   string      `help:"Write the storage document to this file instead of stdout." short:"o" placeholder:"FILE"`
	Force    bool        `help:"Overwrite the output file without asking." short:"f"`
	Defaults bool        `help:"Fill in storage layer defaults for missing fields."`
	Summary  bool        `help:"Print a per-section mapping summary to stderr."`
}

func (cmd *MapCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	s, err := newSession(ctx, globals, fmt.Sprintf("map %s", filepath.Base(cmd.File.Filename)))
	if err != nil {
		return err
	}
	defer s.finish()

	doc, err := s.load(&cmd.File)
	if err != nil {
		return err
	}

	canonical := canonicalize(s.tables, doc)
	translator := translate.New(s.tables)
	storage := translate.SanitizeInput(translator.ToStorageNames(canonical))
	if cmd.Defaults {
		storage = translate.ApplyStorageDefaults(storage)
	}

	if cmd.Summary {
		if err := renderMapping(s, translator.ReportMapping(canonical)); err != nil {
			return err
		}
	}

	if cmd.Output == "" {
		return writeJSON(s.stdout, storage)
	}

	target, err := filepath.Abs(cmd.Output)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if _, err := os.Stat(target); err == nil && !cmd.Force {
		confirmed, err := promptYesNo(fmt.Sprintf("File %q already exists. Overwrite it?", target))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !confirmed {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", target)
		}
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, storage); err != nil {
		return err
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	printSuccess(s.stderr, "Wrote "+output.NewStyles(s.stderr).FilePath(target))
	return nil
}

func renderMapping(s *session, report translate.MappingReport) error {
	table := output.NewTable("SECTION", "MAPPED", "DROPPED")
	for _, section := range report.Sections {
		table.Append(section.Section, strconv.Itoa(section.Mapped), strings.Join(section.Dropped, ", "))
	}
	if err := table.Render(s.stderr, output.NewStyles(s.stderr)); err != nil {
		return err
	}
	if len(report.Ignored) > 0 {
		printInfof(s.stderr, "ignored top-level keys: %s", strings.Join(report.Ignored, ", "))
	}
	return nil
}
