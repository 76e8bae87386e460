// Package model defines the transient types shared by the pybootstrap
// packages.
//
// Nothing in this package is persisted. An ExecutionContext lives for one
// run of the installer, and a CommandResult lives only until the step that
// produced it has decided between success and failure.
//
// The package also defines exit codes (ExitCode), the two-valued step
// Severity, and a custom error type (CLIError) that carries an exit code
// for proper OS process exit handling.
package model
