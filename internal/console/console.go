// Package console renders the installer's human-readable output: the
// banner, per-step progress lines with status glyphs, and the completion
// instructions.
//
// Styles are created from a lipgloss renderer bound to the output writer,
// so colors are only emitted when that writer is a color-capable terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status glyphs.
const (
	GlyphPending = "⏳"
	GlyphOK      = "✅"
	GlyphFail    = "❌"
	GlyphWarn    = "⚠️ "
	GlyphBye     = "👋"
	GlyphCrash   = "💥"
	GlyphDone    = "🎉"
)

const ruleWidth = 60

// Printer writes progress output to a writer.
type Printer struct {
	w io.Writer

	header  lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	command lipgloss.Style
	hint    lipgloss.Style
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		command: r.NewStyle().Bold(true),
		hint:    r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

func (p *Printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Blank writes an empty line.
func (p *Printer) Blank() {
	p.line("")
}

// Rule writes a horizontal rule.
func (p *Printer) Rule() {
	p.line("%s", strings.Repeat("=", ruleWidth))
}

// Banner writes the opening banner.
func (p *Printer) Banner(title string) {
	p.Blank()
	p.Rule()
	p.line("  %s", p.header.Render(title))
	p.Rule()
	p.Blank()
}

// Stage writes a "Step n/total" heading.
func (p *Printer) Stage(glyph string, n, total int, title string) {
	p.line("%s %s", glyph, p.header.Render(fmt.Sprintf("Step %d/%d: %s", n, total, title)))
}

// Progress announces a running action.
func (p *Printer) Progress(desc string) {
	p.line("  %s %s...", GlyphPending, desc)
}

// Done reports a finished action.
func (p *Printer) Done(desc string) {
	p.line("  %s %s", GlyphOK, p.ok.Render(desc+" done"))
}

// OK writes a success line.
func (p *Printer) OK(format string, args ...any) {
	p.line("  %s %s", GlyphOK, fmt.Sprintf(format, args...))
}

// Skip reports an action that did not need to run.
func (p *Printer) Skip(format string, args ...any) {
	p.line("  %s %s", GlyphPending, fmt.Sprintf(format, args...))
}

// Fail reports a failed action.
func (p *Printer) Fail(desc, reason string) {
	msg := desc + " failed"
	if reason != "" {
		msg += ": " + reason
	}
	p.line("  %s %s", GlyphFail, p.fail.Render(msg))
}

// Warn writes a warning line.
func (p *Printer) Warn(format string, args ...any) {
	p.line("  %s %s", GlyphWarn, p.warn.Render(fmt.Sprintf(format, args...)))
}

// Cancelled reports a user interrupt.
func (p *Printer) Cancelled() {
	p.line("\n\n%s Installation cancelled", GlyphBye)
}

// Crash reports an unexpected error.
func (p *Printer) Crash(err error) {
	p.line("\n%s Installation failed: %v", GlyphCrash, err)
}

// Instructions is the content of the completion block.
type Instructions struct {
	// Shell names the shell the commands are written for.
	Shell string

	// Activate is the environment activation command.
	Activate string

	// Run is the command to run once activated. May be empty.
	Run string

	// Direct runs the installed command without activation.
	Direct string
}

// Completion writes the final "next steps" block: a manual activation
// block and a direct run block.
func (p *Printer) Completion(n, total int, in Instructions) {
	p.line("%s %s", GlyphDone, p.header.Render(fmt.Sprintf("Step %d/%d: Installation complete!", n, total)))
	p.Blank()
	p.Rule()
	p.line("  Next steps (%s):", in.Shell)
	p.Rule()
	p.Blank()
	p.line("  1️⃣  Activate the virtual environment and run:")
	p.line("     %s", p.command.Render(in.Activate))
	if in.Run != "" {
		p.line("     %s", p.command.Render(in.Run))
	}
	p.Blank()
	p.line("  2️⃣  Or run directly without activating:")
	p.line("     %s", p.command.Render(in.Direct))
	p.Blank()
	p.Rule()
	p.Blank()
}

// Hint writes a dimmed informational line.
func (p *Printer) Hint(format string, args ...any) {
	p.line("  %s", p.hint.Render(fmt.Sprintf(format, args...)))
}
