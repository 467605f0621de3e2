package debugger

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var cmdTarget = Command{
	Code:    CodeTarget,
	Name:    "target",
	Usage:   "target [TARGET] [ATTRIBUTE...]",
	Summary: "Show information about a target",
	Description: "Shows the selected target, or TARGET. The attributes to show can be picked from: " +
		"location, depends, commands, expand and trace. All of them are shown by default.",
	Exec:     targetExec,
	Complete: targetCompletion,
}

var cmdWrite = Command{
	Code:    CodeWrite,
	Name:    "write",
	Usage:   "write [TARGET [FILE]]",
	Summary: "Write the expanded recipe of a target to a file or the terminal",
	Description: "Writes the recipe of the selected target, or TARGET, with all variable references " +
		"expanded. If FILE is given the recipe is written there as a shell script, otherwise it is " +
		"printed.",
	Exec:     writeExec,
	Complete: targetCompletion,
}

var targetAttributes = []string{"location", "depends", "commands", "expand", "trace"}

func targetExec(s *Session, args string) Signal {
	fields := strings.Fields(args)

	t := s.frame()
	if len(fields) > 0 && !isTargetAttribute(fields[0]) {
		targets, err := s.locate(fields[0])
		if err != nil {
			s.errmsg("%s", err)
			return SignalCmdError
		}
		t = targets[0]
		fields = fields[1:]
	}
	if t == nil {
		s.errmsg("No target selected, give a target name.")
		return SignalCmdError
	}

	attrs := fields
	if len(attrs) == 0 {
		attrs = targetAttributes
	}

	sig := SignalReadLoop
	s.msg("%s:", s.clr.blue(t.Name()))
	for _, attr := range attrs {
		switch attr {
		case "location":
			if loc := s.formatLocation(t.Location()); loc != "" {
				s.msg("#  defined at %s", s.clr.green(loc))
			}
		case "depends":
			s.msg("#  depends on: %s", strings.Join(t.Prerequisites(), " "))
		case "commands":
			s.msg("#  recipe to execute:")
			for _, line := range t.Recipe() {
				s.msg("\t%s", line)
			}
		case "expand":
			if h, err := s.host(); err == nil {
				s.msg("#  recipe, expanded:")
				for _, line := range t.Recipe() {
					s.msg("\t%s", h.Vars().Expand(line))
				}
			}
		case "trace":
			s.msg("#  breakpoint: %s", t.Trace())
		default:
			s.errmsg("Unknown target attribute '%s', expecting one of: %s", attr, strings.Join(targetAttributes, ", "))
			sig = SignalCmdError
		}
	}
	return sig
}

func isTargetAttribute(word string) bool {
	for _, attr := range targetAttributes {
		if attr == word {
			return true
		}
	}
	return false
}

func writeExec(s *Session, args string) Signal {
	h, err := s.host()
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	fields := strings.Fields(args)
	if len(fields) > 2 {
		s.errmsg("Too many arguments.")
		s.usage(CodeWrite)
		return SignalCmdError
	}

	t := s.frame()
	if len(fields) > 0 {
		var ok bool
		t, ok = h.Target(fields[0])
		if !ok {
			s.errmsg("Can't find target %s.", fields[0])
			return SignalCmdError
		}
	}
	if t == nil {
		s.errmsg("No target selected, give a target name.")
		return SignalCmdError
	}

	if len(fields) < 2 {
		writeRecipe(s.out, h, t)
		return SignalReadLoop
	}

	f, err := os.OpenFile(fields[1], os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	defer f.Close()

	fmt.Fprintln(f, "#!/bin/sh")
	if loc := t.Location(); loc.File != "" {
		fmt.Fprintf(f, "# %s, defined at %s\n", t.Name(), loc)
	}
	writeRecipe(f, h, t)

	s.msg("File \"%s\" written.", fields[1])
	return SignalReadLoop
}

func writeRecipe(w io.Writer, h Host, t Target) {
	for _, line := range t.Recipe() {
		line = strings.TrimLeft(h.Vars().Expand(line), "@-+")
		fmt.Fprintln(w, line)
	}
}
