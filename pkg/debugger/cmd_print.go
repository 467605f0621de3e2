package debugger

import "strings"

var cmdPrint = Command{
	Code:    CodePrint,
	Name:    "print",
	Usage:   "print VARIABLE",
	Summary: "Show a build variable definition",
	Description: "Prints the unexpanded value of VARIABLE along with its origin and where it was defined. " +
		"Use 'expand' to see the expanded value.",
	Exec:     printExec,
	Complete: variableCompletion,
}

var cmdExpand = Command{
	Code:        CodeExpand,
	Name:        "expand",
	Usage:       "expand TEXT",
	Summary:     "Show the expansion of a string with variable references",
	Description: "Expands TEXT the way a recipe line is expanded, for example 'expand $(CFLAGS) -g'.",
	Exec:        expandExec,
	Complete:    variableCompletion,
}

func printExec(s *Session, args string) Signal {
	h, err := s.host()
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	name, _ := splitWord(args)
	if name == "" {
		s.errmsg("You need to supply a variable name.")
		return SignalCmdError
	}

	v, ok := h.Vars().Lookup(name)
	if !ok {
		v, ok = h.Vars().Lookup(stripSigil(name))
	}
	if !ok {
		s.errmsg("Can't find variable %s.", name)
		return SignalCmdError
	}

	s.printVariable(v)
	return SignalReadLoop
}

func (s *Session) printVariable(v Variable) {
	origin := string(v.Origin)
	if loc := s.formatLocation(v.Loc); loc != "" {
		origin += " at " + s.clr.green(loc)
	}

	s.msg("# %s", origin)
	s.msg("%s = %s", s.clr.blue(v.Name), v.Value)
}

func expandExec(s *Session, args string) Signal {
	h, err := s.host()
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	if strings.TrimSpace(args) == "" {
		s.errmsg("You need to supply a string to expand.")
		return SignalCmdError
	}

	out, err := expandChecked(h.Vars(), args)
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	s.msg("%s", out)
	return SignalReadLoop
}

// strictExpander is implemented by variable tables which report a variable referencing itself.
type strictExpander interface {
	ExpandStrict(text string) (string, error)
}

func expandChecked(vars Variables, text string) (string, error) {
	if x, ok := vars.(strictExpander); ok {
		return x.ExpandStrict(text)
	}
	return vars.Expand(text), nil
}
