package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/xbrl/matcher"
	"github.com/robinvdvleuten/xbrl/output"
)

type MatchCmd struct {
	Term      string `help:"Financial term to classify." arg:""`
	Statement string `help:"Restrict matching to one statement (all, income, position)." default:"all" enum:"all,income,position" short:"s"`
	JSON      bool   `help:"Print the match as JSON." name:"json"`
}

func (cmd *MatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals, fmt.Sprintf("match %q", cmd.Term))
	if err != nil {
		return err
	}
	defer s.finish()

	m := matcher.New(s.tables).Match(cmd.Term, matcher.ParseFilter(cmd.Statement))

	if cmd.JSON {
		return writeJSON(s.stdout, m)
	}

	if !m.Known() {
		printError(s.stdout, fmt.Sprintf("no statement matches %q", cmd.Term))
		return nil
	}

	styles := output.NewStyles(s.stdout)
	_, _ = fmt.Fprintf(s.stdout, "%s %s %s\n",
		styles.Section(m.StatementType),
		styles.Field(m.Field),
		styles.Dim(fmt.Sprintf("(score %d)", m.Score)),
	)
	return nil
}
