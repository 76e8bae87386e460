// Package main is the entry point for the pybootstrap CLI.
//
// It delegates all functionality to the internal/cli package, which
// defines the cobra command. Build-time variables (version, commit, date)
// are injected via ldflags by GoReleaser.
package main

import (
	"os"

	"github.com/shinji-kodama/pybootstrap/internal/cli"
)

// version, commit, and date are set by GoReleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand(os.Stdout, os.Stderr)
	cli.Execute(rootCmd)
}
