// Package platform isolates every OS-dependent detail of the installer
// behind a single lookup.
//
// Step logic never compares runtime.GOOS itself. It asks Lookup for a
// Layout and uses the Layout to build environment paths and the shell
// commands shown to the user.
package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"mvdan.cc/sh/v3/syntax"
)

// Windows is the platform identifier of Windows hosts.
const Windows = "windows"

// Layout describes how a virtual environment is laid out on a platform
// and how commands are presented to the user there.
type Layout struct {
	// ID is the platform identifier (runtime.GOOS style).
	ID string

	// BinDir is the environment subdirectory holding executables.
	BinDir string

	// ExeSuffix is appended to executable names.
	ExeSuffix string

	// Separator joins path elements in printed paths.
	Separator string

	// ShellName names the shell the printed commands target.
	ShellName string

	// Launchers are the commands looked up on PATH, in order, when no
	// launcher is configured.
	Launchers []string
}

// Lookup returns the Layout for a platform identifier. Every identifier
// other than "windows" gets the POSIX layout.
func Lookup(id string) Layout {
	if strings.EqualFold(id, Windows) {
		return Layout{
			ID:        Windows,
			BinDir:    "Scripts",
			ExeSuffix: ".exe",
			Separator: `\`,
			ShellName: "PowerShell",
			Launchers: []string{"py", "python"},
		}
	}
	return Layout{
		ID:        id,
		BinDir:    "bin",
		Separator: "/",
		ShellName: "sh",
		Launchers: []string{"python3", "python"},
	}
}

// Current returns the Layout of the host the binary runs on.
func Current() Layout {
	return Lookup(runtime.GOOS)
}

// IsWindows reports whether the layout is the Windows one.
func (l Layout) IsWindows() bool {
	return l.ID == Windows
}

// Join joins path elements with the layout's separator. It exists so that
// printed paths use the target platform's separator even when rendered on
// another host (as in tests).
func (l Layout) Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	root := ""
	for i, e := range elem {
		if e == "" {
			continue
		}
		if i > 0 {
			e = strings.Trim(e, `/\`)
		} else if trimmed := strings.TrimRight(e, `/\`); trimmed != "" {
			e = trimmed
		} else {
			// A bare root such as "/" stays a root.
			root = e[:1]
			continue
		}
		parts = append(parts, e)
	}
	return root + strings.Join(parts, l.Separator)
}

// Executable returns the path of a named executable inside venvPath.
func (l Layout) Executable(venvPath, name string) string {
	return l.Join(venvPath, l.BinDir, name+l.ExeSuffix)
}

// Pip returns the path of the environment's own package manager.
func (l Layout) Pip(venvPath string) string {
	return l.Executable(venvPath, "pip")
}

// ActivateScript returns the path of the activation script.
func (l Layout) ActivateScript(venvPath string) string {
	if l.IsWindows() {
		return l.Join(venvPath, l.BinDir, "Activate.ps1")
	}
	return l.Join(venvPath, l.BinDir, "activate")
}

// ActivateCommand returns the command that activates the environment in
// the platform's interactive shell.
func (l Layout) ActivateCommand(venvPath string) string {
	script := l.quoteCommand(l.ActivateScript(venvPath))
	if l.IsWindows() {
		return script
	}
	return "source " + script
}

// CommandLine renders an executable and its arguments as a single line
// that can be pasted into the platform's shell.
func (l Layout) CommandLine(exe string, args ...string) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, l.quoteCommand(exe))
	for _, a := range args {
		words = append(words, l.Quote(a))
	}
	return strings.Join(words, " ")
}

// Quote quotes an argument for the platform's shell when it needs quoting.
func (l Layout) Quote(s string) string {
	if l.IsWindows() {
		return quotePowerShell(s, false)
	}
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Only strings with NUL bytes fail; show them as they are.
		return s
	}
	return q
}

// quoteCommand quotes the word in command position. PowerShell treats a
// quoted first word as a string, so it needs the call operator.
func (l Layout) quoteCommand(s string) string {
	if l.IsWindows() {
		return quotePowerShell(s, true)
	}
	return l.Quote(s)
}

// quotePowerShell wraps s in double quotes when it contains characters
// PowerShell would split on or expand.
func quotePowerShell(s string, call bool) string {
	if s != "" && !strings.ContainsAny(s, " \t'\"`$&;(){}@#") {
		return s
	}
	escaped := strings.ReplaceAll(s, "`", "``")
	escaped = strings.ReplaceAll(escaped, `"`, "`\"")
	escaped = strings.ReplaceAll(escaped, "$", "`$")
	if call {
		return `& "` + escaped + `"`
	}
	return `"` + escaped + `"`
}

// Describe returns a one-line description of the host for diagnostics,
// e.g. "ubuntu 22.04 (linux/x86_64)".
func Describe(ctx context.Context) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("host info: %w", err)
	}
	platform := info.Platform
	if platform == "" {
		platform = info.OS
	}
	desc := strings.TrimSpace(platform + " " + info.PlatformVersion)
	return fmt.Sprintf("%s (%s/%s)", desc, info.OS, info.KernelArch), nil
}
