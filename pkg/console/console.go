// Package console prints the operator-facing progress lines of a scan.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes prefixed status lines. Colour is used only when the
// destination is a terminal.
type Printer struct {
	w       io.Writer
	info    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warn    lipgloss.Style
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	renderer := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		info:    renderer.NewStyle().Foreground(lipgloss.Color("12")),
		success: renderer.NewStyle().Foreground(lipgloss.Color("10")),
		failure: renderer.NewStyle().Foreground(lipgloss.Color("9")),
		warn:    renderer.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Discard returns a Printer that writes nowhere.
func Discard() *Printer { return New(io.Discard) }

func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.info, "[*]", format, args...)
}

func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.success, "[+]", format, args...)
}

func (p *Printer) Failure(format string, args ...interface{}) {
	p.line(p.failure, "[-]", format, args...)
}

func (p *Printer) Warn(format string, args ...interface{}) {
	p.line(p.warn, "[!]", format, args...)
}

// Detail prints an indented continuation line.
func (p *Printer) Detail(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "    "+format+"\n", args...)
}

// Blank prints an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

// Raw prints s unchanged.
func (p *Printer) Raw(s string) {
	fmt.Fprint(p.w, s)
}

func (p *Printer) line(style lipgloss.Style, tag, format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", style.Render(tag), fmt.Sprintf(format, args...))
}
