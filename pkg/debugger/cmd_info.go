package debugger

import (
	"fmt"
	"strings"
	"unicode"

	prompt "github.com/c-bata/go-prompt"
	"github.com/davecgh/go-spew/spew"
)

var cmdInfo = Command{
	Code:    CodeInfo,
	Name:    "info",
	Usage:   "info [SUBCOMMAND]",
	Summary: "Show the state of the build or the debugger",
	Description: "Subcommands:\n" +
		"  breakpoints  list breakpoints\n" +
		"  debugger     dump the internal state of the debugger\n" +
		"  frame        show the selected frame\n" +
		"  line         show the location of the selected target\n" +
		"  program      show why and where the build stopped\n" +
		"  target       show the selected target, see also 'target'\n" +
		"  variables    list all build variables",
	Exec:     infoExec,
	Complete: infoCompletion,
}

type infoSubcommand struct {
	name string
	exec func(s *Session, args string) Signal
}

// infoSubcommands are matched on any unique prefix.
var infoSubcommands = []infoSubcommand{
	{"breakpoints", func(s *Session, _ string) Signal {
		s.listBreakpoints()
		return SignalReadLoop
	}},
	{"debugger", infoDebuggerExec},
	{"frame", func(s *Session, _ string) Signal {
		if s.frame() == nil {
			s.errmsg("No stack.")
			return SignalCmdError
		}
		s.printFrame(s.state.FramePos)
		return SignalReadLoop
	}},
	{"line", infoLineExec},
	{"program", infoProgramExec},
	{"target", func(s *Session, args string) Signal {
		return targetExec(s, args)
	}},
	{"variables", infoVariablesExec},
}

func infoExec(s *Session, args string) Signal {
	word, rest := splitWord(args)
	if word == "" {
		s.msg("List of info subcommands:")
		for _, sub := range infoSubcommands {
			s.msg("  info %s", sub.name)
		}
		return SignalReadLoop
	}

	var matches []infoSubcommand
	for _, sub := range infoSubcommands {
		if strings.HasPrefix(sub.name, word) {
			matches = append(matches, sub)
		}
	}

	switch len(matches) {
	case 0:
		s.errmsg("Undefined info command \"%s\". Try \"help info\".", word)
		return SignalCmdError
	case 1:
		return matches[0].exec(s, rest)
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.name)
		}
		s.errmsg("Ambiguous info command \"%s\": %s.", word, strings.Join(names, ", "))
		return SignalCmdError
	}
}

func infoLineExec(s *Session, _ string) Signal {
	t := s.frame()
	if t == nil {
		s.errmsg("No stack.")
		return SignalCmdError
	}

	loc := s.formatLocation(t.Location())
	if loc == "" {
		s.msg("Target %s has no location, it is not defined in a build file.", t.Name())
		return SignalReadLoop
	}
	s.msg("Target %s is defined at %s.", t.Name(), s.clr.green(loc))
	return SignalReadLoop
}

func infoProgramExec(s *Session, _ string) Signal {
	level := 0
	if s.state.Host != nil {
		level = s.state.Host.Level()
	}

	s.msg("Build level %d, %d targets on the stack.", level, len(s.state.Frames))
	s.msg("It stopped %s.", s.state.LastReason)
	if s.state.Stepping > 0 {
		s.msg("Stepping, %d more halt points.", s.state.Stepping)
	}
	if s.state.Nexting > 0 {
		s.msg("Nexting at depth %d, %d more halt points.", s.state.NextDepth, s.state.Nexting)
	}
	if t := s.frame(); t != nil {
		s.printLocation(s.state.LastReason)
	}
	return SignalReadLoop
}

func infoVariablesExec(s *Session, args string) Signal {
	h, err := s.host()
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	filter := strings.TrimSpace(args)
	for _, name := range h.Vars().Names() {
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		v, ok := h.Vars().Lookup(name)
		if !ok {
			continue
		}
		fmt.Fprintf(s.out, "%s = %s %s\n", s.clr.blue(v.Name), v.Value, s.clr.yellow("("+string(v.Origin)+")"))
	}
	return SignalReadLoop
}

// debuggerDump is the part of the session state shown by 'info debugger'.
type debuggerDump struct {
	Level       int
	Stepping    int
	Nexting     int
	NextDepth   int
	LastReason  Reason
	FramePos    int
	Frames      []string
	Quitting    bool
	InDebugger  bool
	Breakpoints map[string]TraceFlags
	History     int
}

func infoDebuggerExec(s *Session, _ string) Signal {
	d := debuggerDump{
		Stepping:    s.state.Stepping,
		Nexting:     s.state.Nexting,
		NextDepth:   s.state.NextDepth,
		LastReason:  s.state.LastReason,
		FramePos:    s.state.FramePos,
		Quitting:    s.state.Quitting,
		InDebugger:  s.inDebugger,
		Breakpoints: make(map[string]TraceFlags, len(s.breakpoints)),
		History:     len(s.history),
	}
	if s.state.Host != nil {
		d.Level = s.state.Host.Level()
	}
	for _, t := range s.state.Frames {
		d.Frames = append(d.Frames, t.Name())
	}
	for _, bp := range s.breakpoints {
		d.Breakpoints[bp.target.Name()] = bp.target.Trace()
	}

	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	cfg.Fdump(s.out, d)
	return SignalReadLoop
}

func infoCompletion(s *Session, args string) []prompt.Suggest {
	if strings.IndexFunc(args, unicode.IsSpace) >= 0 {
		return nil
	}

	words := make([]string, 0, len(infoSubcommands))
	for _, sub := range infoSubcommands {
		words = append(words, sub.name)
	}
	return suggest(rankWords(args, words))
}
