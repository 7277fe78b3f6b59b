package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	xbrlcli "github.com/robinvdvleuten/xbrl/cli"
)

var cli struct {
	Version kong.VersionFlag `help:"Show version information"`
	xbrlcli.Commands
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("xbrl"),
		kong.Description("Classify, validate and tag financial statements for XBRL filing."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)

	err := ctx.Run()

	var exitErr *xbrlcli.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	ctx.FatalIfErrorf(err)
}

func buildVersion() string {
	version := xbrlcli.Version
	if version == "" {
		version = "dev"
	}
	if xbrlcli.CommitSHA == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, xbrlcli.CommitSHA)
}
