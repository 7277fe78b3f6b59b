package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/tagging"
)

type TagCmd struct {
	File    FileOrStdin `help:"Filing filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Section string      `help:"Only tag this section (dotted paths reach sub-sections, e.g. StatementOfFinancialPosition.CurrentAssets)." placeholder:"NAME"`
}

type tagOutput struct {
	Tagged *tagging.Document  `json:"tagged"`
	Issues []tagging.TagIssue `json:"issues"`
	Cache  cacheStats         `json:"cache"`
}

type cacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func (cmd *TagCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	s, err := newSession(ctx, globals, fmt.Sprintf("tag %s", filepath.Base(cmd.File.Filename)))
	if err != nil {
		return err
	}
	defer s.finish()

	doc, err := s.load(&cmd.File)
	if err != nil {
		return err
	}
	if s.tables.Taxonomy == nil {
		return fmt.Errorf("no taxonomy loaded")
	}

	var cache *tagging.Cache
	if s.cfg.TagCache {
		cache = tagging.NewCache()
	}
	tagger := tagging.New(s.tables.Taxonomy, cache)
	canonical := canonicalize(s.tables, doc)

	if cmd.Section != "" {
		data, ok := lookupPath(canonical, cmd.Section)
		if !ok {
			printError(s.stderr, fmt.Sprintf("section %q not found", cmd.Section))
			return failed()
		}
		result := tagger.TagSection(s.ctx, lastSegment(cmd.Section), data)
		if err := writeJSON(s.stdout, result); err != nil {
			return err
		}
		if result.Performance.Status == tagging.CriticalFailure {
			printError(s.stderr, result.Error)
			return failed()
		}
		return nil
	}

	tagged := tagger.TagDocument(s.ctx, canonical)
	out := tagOutput{Tagged: tagged, Issues: tagger.CheckTagged(tagged)}
	if cache != nil {
		out.Cache = cacheStats{Hits: cache.Hits(), Misses: cache.Misses()}
	}
	if err := writeJSON(s.stdout, out); err != nil {
		return err
	}

	for _, issue := range out.Issues {
		if issue.Severity == tagging.SeverityError {
			printError(s.stderr, issue.Message)
		}
	}
	if tagged.Status() == tagging.CriticalFailure {
		printError(s.stderr, "tagging failed for at least one section")
		return failed()
	}
	return nil
}

// lookupPath follows a dotted section path through doc.
func lookupPath(doc *jsonvalue.Object, path string) (jsonvalue.Value, bool) {
	var current jsonvalue.Value = doc
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(*jsonvalue.Object)
		if !ok {
			return nil, false
		}
		if current, ok = obj.Get(key); !ok {
			return nil, false
		}
	}
	return current, true
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}
