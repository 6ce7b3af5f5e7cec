// Package diag collects and prints compiler diagnostics.
package diag

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Pos is a position in a named source buffer. Line and Col are 1-based; a
// zero value means the component is unknown and is omitted when printed.
type Pos struct {
	Name string
	Line int
	Col  int
}

func (p Pos) String() string {
	s := p.Name
	if p.Line > 0 {
		s += ":" + strconv.Itoa(p.Line)
		if p.Col > 0 {
			s += ":" + strconv.Itoa(p.Col)
		}
	}
	return s
}

// Diagnostic is a single reported error.
type Diagnostic struct {
	Pos    Pos
	HasPos bool
	Msg    string
}

func (d Diagnostic) String() string {
	if !d.HasPos {
		return "error: " + d.Msg
	}
	return d.Pos.String() + ": error: " + d.Msg
}

// ColorMode selects when diagnostics are colorized.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode accepts auto, always and never.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	}
	return "", fmt.Errorf("unknown color mode %q", s)
}

// Reporter is the error sink shared by every compiler phase. It counts what
// it receives so a phase can tell whether it introduced new errors.
type Reporter struct {
	out    io.Writer
	diags  []Diagnostic
	marked int

	label *color.Color
	where *color.Color
}

// NewReporter prints to out. A nil writer only records diagnostics.
func NewReporter(out io.Writer) *Reporter {
	r := &Reporter{
		out:   out,
		label: color.New(color.FgRed, color.Bold),
		where: color.New(color.Bold),
	}
	r.SetColor(ColorAuto)
	return r
}

// CanColor reports whether w is a terminal.
func CanColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Reporter) SetColor(mode ColorMode) {
	on := mode == ColorAlways || (mode == ColorAuto && CanColor(r.out))
	if on {
		r.label.EnableColor()
		r.where.EnableColor()
	} else {
		r.label.DisableColor()
		r.where.DisableColor()
	}
}

// Errorf reports a positioned error.
func (r *Reporter) Errorf(pos Pos, format string, args ...any) {
	r.add(Diagnostic{Pos: pos, HasPos: true, Msg: fmt.Sprintf(format, args...)})
}

// Error reports an error that is not tied to a source position.
func (r *Reporter) Error(format string, args ...any) {
	r.add(Diagnostic{Msg: fmt.Sprintf(format, args...)})
}

func (r *Reporter) add(d Diagnostic) {
	r.diags = append(r.diags, d)
	if r.out == nil {
		return
	}
	if d.HasPos {
		fmt.Fprintf(r.out, "%s %s %s\n", r.where.Sprint(d.Pos.String()+":"), r.label.Sprint("error:"), d.Msg)
	} else {
		fmt.Fprintf(r.out, "%s %s\n", r.label.Sprint("error:"), d.Msg)
	}
}

func (r *Reporter) Count() int {
	return len(r.diags)
}

func (r *Reporter) HasErrors() bool {
	return len(r.diags) > 0
}

// Mark remembers the current count for HasNewErrors.
func (r *Reporter) Mark() {
	r.marked = len(r.diags)
}

// HasNewErrors reports whether anything was reported since the last Mark.
func (r *Reporter) HasNewErrors() bool {
	return len(r.diags) > r.marked
}

// Diagnostics returns everything reported so far, in order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// Messages returns the text of every diagnostic without its position.
func (r *Reporter) Messages() []string {
	out := make([]string, len(r.diags))
	for i, d := range r.diags {
		out[i] = d.Msg
	}
	return out
}

// Summary prints the error count, if any, and returns the process exit code.
func (r *Reporter) Summary() int {
	if len(r.diags) == 0 {
		return 0
	}
	if r.out != nil {
		fmt.Fprintf(r.out, "%d error(s)\n", len(r.diags))
	}
	return 1
}
