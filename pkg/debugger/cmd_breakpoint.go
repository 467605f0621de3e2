package debugger

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-delve/delve/pkg/locspec"
)

var cmdBreak = Command{
	Code:    CodeBreak,
	Name:    "break",
	Usage:   "break [LOCATION] [all|prereq|run|end]",
	Summary: "Set a breakpoint at a target or line",
	Description: "LOCATION is a target name, FILE:LINE, LINE in the file of the selected target, +N or -N " +
		"lines relative to the selected target or /REGEX/ matching target names. Without a location " +
		"the selected target is used.\n\n" +
		"The mode picks the halt points the breakpoint stops at: 'prereq' before the prerequisites " +
		"are checked, 'run' after they are checked and before the recipe runs, 'end' after the " +
		"recipe ran and 'all', the default, at all of them.",
	Exec:     breakExec,
	Complete: targetCompletion,
}

var cmdDelete = Command{
	Code:        CodeDelete,
	Name:        "delete",
	Usage:       "delete [ID...]",
	Summary:     "Delete breakpoints",
	Description: "Deletes the breakpoints with the given ids, or all breakpoints if no id is given.",
	Exec:        deleteExec,
}

type breakpoint struct {
	id     int
	target Target
	flags  TraceFlags
}

var breakModes = map[string]TraceFlags{
	"all":    TraceAll,
	"prereq": TraceBeforePrereq,
	"run":    TraceAfterPrereq,
	"end":    TraceAfterCmd,
}

func breakExec(s *Session, args string) Signal {
	fields := strings.Fields(args)

	// A lone word naming a target is a location, even if it is also a mode
	flags := TraceAll
	if n := len(fields); n > 0 {
		if mode, ok := breakModes[fields[n-1]]; ok && (n > 1 || !s.isTarget(fields[0])) {
			flags = mode
			fields = fields[:n-1]
		}
	}

	var targets []Target
	switch len(fields) {
	case 0:
		t := s.frame()
		if t == nil {
			s.errmsg("No target selected, give a location")
			return SignalCmdError
		}
		targets = []Target{t}
	case 1:
		var err error
		targets, err = s.locate(fields[0])
		if err != nil {
			s.errmsg("%s", err)
			return SignalCmdError
		}
	default:
		s.errmsg("Too many arguments, expecting a location and an optional mode")
		s.usage(CodeBreak)
		return SignalCmdError
	}

	for _, t := range targets {
		s.addBreakpoint(t, flags)
	}
	return SignalReadLoop
}

func (s *Session) isTarget(name string) bool {
	h, err := s.host()
	if err != nil {
		return false
	}
	_, ok := h.Target(name)
	return ok
}

func (s *Session) addBreakpoint(t Target, flags TraceFlags) {
	for _, bp := range s.breakpoints {
		if bp.target.Name() == t.Name() {
			bp.target = t
			bp.flags = flags
			t.SetTrace(flags)
			s.msg("Breakpoint %d on target %s changed to mode %s.", bp.id, t.Name(), flags)
			return
		}
	}

	s.nextBreakID++
	bp := &breakpoint{
		id:     s.nextBreakID,
		target: t,
		flags:  flags,
	}
	s.breakpoints = append(s.breakpoints, bp)
	t.SetTrace(flags)

	loc := s.formatLocation(t.Location())
	if loc == "" {
		s.msg("Breakpoint %d on target %s, mode %s.", bp.id, t.Name(), flags)
		return
	}
	s.msg("Breakpoint %d on target %s: %s, mode %s.", bp.id, t.Name(), s.clr.green(loc), flags)
}

func deleteExec(s *Session, args string) Signal {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		for _, bp := range s.breakpoints {
			bp.target.SetTrace(TraceNone)
		}
		s.msg("Deleted %d breakpoints.", len(s.breakpoints))
		s.breakpoints = nil
		return SignalReadLoop
	}

	sig := SignalReadLoop
	for _, field := range fields {
		id, err := strconv.Atoi(field)
		if err != nil {
			s.errmsg("Invalid breakpoint id '%s'", field)
			sig = SignalCmdError
			continue
		}

		if !s.deleteBreakpoint(id) {
			s.errmsg("No breakpoint number %d.", id)
			sig = SignalCmdError
			continue
		}
		s.msg("Breakpoint %d deleted.", id)
	}
	return sig
}

func (s *Session) deleteBreakpoint(id int) bool {
	for i, bp := range s.breakpoints {
		if bp.id != id {
			continue
		}

		bp.target.SetTrace(TraceNone)
		s.breakpoints = append(s.breakpoints[:i], s.breakpoints[i+1:]...)
		return true
	}
	return false
}

// forgetBreakpoints drops the listing entries of a target whose breakpoint was cleared.
func (s *Session) forgetBreakpoints(t Target) {
	kept := s.breakpoints[:0]
	for _, bp := range s.breakpoints {
		if bp.target.Name() != t.Name() {
			kept = append(kept, bp)
		}
	}
	s.breakpoints = kept
}

func (s *Session) listBreakpoints() {
	if len(s.breakpoints) == 0 {
		s.msg("No breakpoints.")
		return
	}

	indexPadSize := len(strconv.Itoa(s.nextBreakID))
	for _, bp := range s.breakpoints {
		mode := bp.target.Trace()
		enabled := mode != TraceNone
		if !enabled {
			mode = bp.flags
		}

		id := fmt.Sprintf("%*d ", indexPadSize, bp.id)
		line := fmt.Sprintf("%-6s %s", mode, bp.target.Name())
		if loc := s.formatLocation(bp.target.Location()); loc != "" {
			line += " at " + loc
		}

		if enabled {
			fmt.Fprintln(s.out, s.clr.blue(id)+line)
		} else {
			fmt.Fprintln(s.out, s.clr.blueStrike(id)+s.clr.whiteStrike(line))
		}
	}
}

// setTemporary stops once at the given halt points. A target with a breakpoint keeps it, it just
// gains the extra halt points.
func setTemporary(t Target, flags TraceFlags) {
	if t.Trace() == TraceNone {
		t.SetTrace(flags | TraceTemp)
		return
	}
	t.SetTrace(t.Trace() | flags)
}

// locate resolves a location to the targets it names.
func (s *Session) locate(loc string) ([]Target, error) {
	h, err := s.host()
	if err != nil {
		return nil, err
	}

	// Target names like 'all' or 'clean' parse as function locations, try the name first
	if t, ok := h.Target(loc); ok {
		return []Target{t}, nil
	}

	ls, err := locspec.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid location '%s': %v", ErrInvalidArgument, loc, err)
	}

	var found []Target
	switch ls := ls.(type) {
	case *locspec.LineLocationSpec:
		cur := s.frame()
		if cur == nil {
			return nil, fmt.Errorf("%w: no target selected to take the file from", ErrUnknownTarget)
		}
		found = targetsAt(h, cur.Location().File, ls.Line)

	case *locspec.OffsetLocationSpec:
		cur := s.frame()
		if cur == nil {
			return nil, fmt.Errorf("%w: no target selected to offset from", ErrUnknownTarget)
		}
		found = targetsAt(h, cur.Location().File, cur.Location().Line+ls.Offset)

	case *locspec.NormalLocationSpec:
		if ls.LineOffset < 0 {
			if t, ok := h.Target(ls.Base); ok {
				found = []Target{t}
			}
			break
		}
		found = targetsAt(h, ls.Base, ls.LineOffset)

	case *locspec.RegexLocationSpec:
		re, err := regexp.Compile(ls.FuncRegex)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		for _, t := range h.Targets() {
			if re.MatchString(t.Name()) {
				found = append(found, t)
			}
		}

	default:
		return nil, fmt.Errorf("%w: unsupported location type '%T'", ErrInvalidArgument, ls)
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w: nothing found at '%s'", ErrUnknownTarget, loc)
	}
	return found, nil
}

// targetsAt returns the targets defined at a line. The file matches on its full path or its base name.
func targetsAt(h Host, file string, line int) []Target {
	var found []Target
	for _, t := range h.Targets() {
		tl := t.Location()
		if tl.Line != line {
			continue
		}
		if tl.File == file || filepath.Base(tl.File) == filepath.Base(file) {
			found = append(found, t)
		}
	}
	return found
}
