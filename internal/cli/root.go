// Package cli implements the cobra-based command line of pybootstrap.
//
// The root command performs the installation itself; it takes no
// positional arguments. Execute maps the outcome to the process exit code:
// 0 for success and user cancellation, the CLIError code otherwise.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/pybootstrap/internal/console"
	"github.com/shinji-kodama/pybootstrap/internal/model"
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// rootFlags holds the flag values of the root command.
type rootFlags struct {
	projectDir string // --project-dir: project to install (default: cwd)
	configPath string // --config: explicit config file
	verbose    bool   // --verbose: debug logging on stderr
}

// NewRootCommand creates and configures the root cobra command.
//
// Output goes to out; diagnostics go to errOut through the logger.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "pybootstrap",
		Short: "Create a virtual environment and install the project in editable mode",
		Long: `pybootstrap prepares a Python project for development in one step.

It detects a local Python interpreter, creates a .venv virtual environment
in the project root, upgrades pip, installs the project in editable mode,
and prints how to activate the environment and run the project.

Running it again is safe: an existing .venv is reused.`,

		Args: cobra.NoArgs,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(errOut, flags.verbose)
			return runInstall(cmd.Context(), flags, out, logger)
		},
	}

	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringVar(&flags.projectDir, "project-dir", "", "Project to install (default: current directory)")
	rootCmd.Flags().StringVar(&flags.configPath, "config", "", "Config file (default: .pybootstrap.{yaml,yml,jsonc,json} in the project)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")

	return rootCmd
}

// newLogger creates the diagnostics logger.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "pybootstrap",
		Level:  log.InfoLevel,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Execute runs the root command and exits the process with the matching
// code. This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	os.Exit(run(rootCmd, os.Stdout))
}

// run executes rootCmd with interrupt handling and returns the exit code.
//
// SIGINT and SIGTERM cancel the command's context; running children are
// killed and the installer returns model.ErrCancelled.
func run(rootCmd *cobra.Command, out io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return exitCode(rootCmd.ExecuteContext(ctx), out)
}

// exitCode reports err on out and translates it into a process exit
// code.
func exitCode(err error, out io.Writer) int {
	if err == nil {
		return int(model.ExitSuccess)
	}

	printer := console.New(out)
	if errors.Is(err, model.ErrCancelled) || errors.Is(err, context.Canceled) {
		printer.Cancelled()
		return int(model.ExitSuccess)
	}

	// Step failures were already reported by the installer.
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return int(cliErr.Code)
	}

	printer.Crash(err)
	return int(model.ExitGeneralError)
}
