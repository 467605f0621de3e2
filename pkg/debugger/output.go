package debugger

import (
	"fmt"
	"path/filepath"

	"github.com/mgutz/ansi"
)

type palette struct {
	red    func(string) string
	blue   func(string) string
	green  func(string) string
	yellow func(string) string

	blueStrike  func(string) string
	whiteStrike func(string) string
}

func newPalette(color bool) palette {
	style := func(s string) func(string) string {
		if !color {
			return func(in string) string { return in }
		}
		return ansi.ColorFunc(s)
	}

	return palette{
		red:         style("red"),
		blue:        style("blue"),
		green:       style("green"),
		yellow:      style("yellow"),
		blueStrike:  style("blue+s"),
		whiteStrike: style("white+s"),
	}
}

// msg prints a line of output
func (s *Session) msg(format string, args ...interface{}) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, format)
		return
	}
	fmt.Fprintf(s.out, format+"\n", args...)
}

// errmsg prints a line of output in red
func (s *Session) errmsg(format string, args ...interface{}) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, s.clr.red(format))
		return
	}
	fmt.Fprintln(s.out, s.clr.red(fmt.Sprintf(format, args...)))
}

// fileName honors the basename setting of the host.
func (s *Session) fileName(file string) string {
	if s.state.Host != nil {
		if b := s.state.Host.Flags().Basename; b != nil && *b {
			return filepath.Base(file)
		}
	}
	return file
}

func (s *Session) formatLocation(loc Location) string {
	if loc.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.fileName(loc.File), loc.Line)
}

// printLocation prints where the build stopped.
func (s *Session) printLocation(reason Reason) {
	t := s.frame()
	if t == nil {
		return
	}

	fmt.Fprintln(s.out)
	if loc := s.formatLocation(t.Location()); loc != "" {
		fmt.Fprintf(s.out, "%s %s\n", s.clr.yellow(reason.glyph()), s.clr.green("("+loc+")"))
		fmt.Fprintln(s.out, s.clr.blue(t.Name()))
		return
	}
	fmt.Fprintf(s.out, "%s %s\n", s.clr.yellow(reason.glyph()), s.clr.blue(t.Name()))
}
