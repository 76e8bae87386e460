// Package interpreter finds a usable Python interpreter and reads its
// version.
//
// Detection is enumeration, not retry: each candidate is probed exactly
// once with "--version" and the first one that exits 0 within the probe
// timeout wins.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shinji-kodama/pybootstrap/internal/runner"
)

// ErrNotFound is returned by Detect when no candidate answered the
// version probe. The returned command is the fallback in that case.
var ErrNotFound = errors.New("no interpreter candidate responded")

// Detector probes interpreter candidates through a runner.
type Detector struct {
	runner runner.Runner

	// Candidates are probed in order.
	Candidates []string

	// Fallback is returned when no candidate answers.
	Fallback string

	// ProbeTimeout bounds each candidate probe.
	ProbeTimeout time.Duration

	// VersionTimeout bounds the version query of the chosen command.
	VersionTimeout time.Duration
}

// NewDetector creates a Detector with the given runner and settings.
func NewDetector(r runner.Runner, candidates []string, fallback string, probeTimeout, versionTimeout time.Duration) *Detector {
	return &Detector{
		runner:         r,
		Candidates:     candidates,
		Fallback:       fallback,
		ProbeTimeout:   probeTimeout,
		VersionTimeout: versionTimeout,
	}
}

// Detect returns the first candidate that answers "--version"
// successfully.
//
// When none does, it returns the fallback together with ErrNotFound.
// Callers treat that as a soft failure and continue with the fallback.
// A cancelled ctx stops the enumeration and returns ctx.Err().
func (d *Detector) Detect(ctx context.Context) (string, error) {
	for _, cand := range d.Candidates {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}
		res := d.runner.Run(ctx, runner.Command{
			Name:    cand,
			Args:    []string{"--version"},
			Timeout: d.ProbeTimeout,
			Capture: true,
		})
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if res.Succeeded() {
			return cand, nil
		}
	}
	return d.Fallback, fmt.Errorf("%w (tried %s), assuming %q",
		ErrNotFound, strings.Join(d.Candidates, ", "), d.Fallback)
}

// QueryVersion runs "<command> --version" and returns its trimmed output.
//
// A timeout or a start failure is an error. A non-zero exit is not: its
// output is returned as-is so it can still be shown to the user.
func (d *Detector) QueryVersion(ctx context.Context, command string) (string, error) {
	res := d.runner.Run(ctx, runner.Command{
		Name:    command,
		Args:    []string{"--version"},
		Timeout: d.VersionTimeout,
		Capture: true,
	})
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if res.TimedOut {
		return "", fmt.Errorf("%s --version timed out after %s", command, d.VersionTimeout)
	}
	if res.Err != nil {
		return "", fmt.Errorf("%s --version: %w", command, res.Err)
	}
	return res.Output(), nil
}

// ResolveLauncher returns the first of names that lookPath finds
// (exec.LookPath in production). When none is found it returns the first
// name with ok false, so the later version query reports it as missing.
func ResolveLauncher(names []string, lookPath func(string) (string, error)) (name string, ok bool) {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, err := lookPath(n); err == nil {
			return n, true
		}
	}
	if len(names) == 0 {
		return "", false
	}
	return strings.TrimSpace(names[0]), false
}
