package debugger

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	prompt "github.com/c-bata/go-prompt"
)

var cmdSet = Command{
	Code:    CodeSet,
	Name:    "set",
	Usage:   "set OPTION [on|off|toggle]\nset variable VARIABLE VALUE\nset VARIABLE VALUE",
	Summary: "Set a debugger option or the value of a build variable",
	Description: "In the first form, set a debugger OPTION. Run `set' for a list of options and their " +
		"current values. Without on or off the option is toggled.\n\n" +
		"In the other forms change the value of a build variable, references in VALUE are " +
		"expanded first.",
	Exec:     setExec,
	Complete: setCompletion,
}

var cmdSetq = Command{
	Code:        CodeSetq,
	Name:        "setq",
	Usage:       "setq VARIABLE VALUE",
	Summary:     "Set the value of a build variable, VALUE is not expanded",
	Description: "Changes the value of an existing build variable to the literal VALUE.",
	Exec:        setqExec,
	Complete:    variableCompletion,
}

var cmdSetqx = Command{
	Code:        CodeSetqx,
	Name:        "setqx",
	Usage:       "setqx VARIABLE VALUE",
	Summary:     "Set the value of a build variable after expanding VALUE",
	Description: "Changes the value of an existing build variable to VALUE with variable references expanded.",
	Exec:        setqxExec,
	Complete:    variableCompletion,
}

// setting is an option of the build engine which the debugger can change.
type setting struct {
	name string
	// min is the shortest accepted abbreviation
	min  int
	help string

	boolFlag func(Flags) *bool
	intFlag  func(Flags) *int
}

var settings = []setting{
	{
		name:     "basename",
		min:      4,
		help:     "Set if we are to show short or long filenames",
		boolFlag: func(f Flags) *bool { return f.Basename },
	},
	{
		name:    "debug",
		min:     3,
		help:    "Set the debug mask of the build engine (set via --debug)",
		intFlag: func(f Flags) *int { return f.DebugMask },
	},
	{
		name:     "ignore-errors",
		min:      3,
		help:     "Set value of the --ignore-errors (or -i) flag",
		boolFlag: func(f Flags) *bool { return f.IgnoreErrors },
	},
	{
		name:     "keep-going",
		min:      3,
		help:     "Set value of the --keep-going (or -k) flag",
		boolFlag: func(f Flags) *bool { return f.KeepGoing },
	},
	{
		name:     "silent",
		min:      3,
		help:     "Set value of the --silent (or -s) flag",
		boolFlag: func(f Flags) *bool { return f.Silent },
	},
	{
		name:     "trace",
		min:      3,
		help:     "Set value of shell tracing",
		boolFlag: func(f Flags) *bool { return f.ShellTrace },
	},
}

const variableHelp = "Set a build variable VARIABLE"

func findSetting(word string) (*setting, bool) {
	for i := range settings {
		if isAbbrevOf(word, settings[i].name, settings[i].min) {
			return &settings[i], true
		}
	}
	return nil, false
}

func setExec(s *Session, args string) Signal {
	if strings.TrimSpace(args) == "" {
		s.listSettings()
		return SignalReadLoop
	}

	word, rest := splitWord(args)

	if isAbbrevOf(word, "variable", 3) {
		if err := s.setVariable(rest, true); err != nil {
			return SignalCmdError
		}
		return SignalReadLoop
	}

	if opt, ok := findSetting(word); ok {
		if err := s.applySetting(opt, strings.TrimSpace(rest)); err != nil {
			s.errmsg("%s", err)
			return SignalCmdError
		}
		return SignalReadLoop
	}

	// Anything else is a variable name
	if err := s.setVariable(args, true); err != nil {
		return SignalCmdError
	}
	return SignalReadLoop
}

func setqExec(s *Session, args string) Signal {
	if err := s.setVariable(args, false); err != nil {
		return SignalCmdError
	}
	return SignalReadLoop
}

func setqxExec(s *Session, args string) Signal {
	if err := s.setVariable(args, true); err != nil {
		return SignalCmdError
	}
	return SignalReadLoop
}

// setVariable changes an existing build variable. args is the variable name followed by the new
// value. The new definition keeps the canonical name and the location of the old one. Problems are
// reported to the user before the error is returned.
func (s *Session) setVariable(args string, expand bool) error {
	h, err := s.host()
	if err != nil {
		s.errmsg("%s", err)
		return err
	}

	name, value := splitWord(args)
	if name == "" {
		s.errmsg("You need to supply a variable name.")
		return ErrMissingArgument
	}

	vars := h.Vars()
	v, ok := vars.Lookup(name)
	if !ok {
		if bare := stripSigil(name); bare != name {
			v, ok = vars.Lookup(bare)
		}
	}
	if !ok {
		s.log.Warn("assignment to undefined variable", "variable", name)
		s.errmsg("Can't find variable %s.", name)
		return fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}

	if expand {
		if value, err = expandChecked(vars, value); err != nil {
			s.errmsg("%s", err)
			return err
		}
	}

	vars.Define(Variable{
		Name:   v.Name,
		Value:  value,
		Origin: OriginDebugger,
		Loc:    v.Loc,
	})
	s.msg("Variable %s now has value '%s'", name, value)
	return nil
}

// stripSigil turns a variable reference like $X, $(X) or ${X} into the bare name.
func stripSigil(name string) string {
	if !strings.HasPrefix(name, "$") || len(name) < 2 {
		return name
	}

	inner := name[1:]
	switch {
	case strings.HasPrefix(inner, "(") && strings.HasSuffix(inner, ")"),
		strings.HasPrefix(inner, "{") && strings.HasSuffix(inner, "}"):
		return inner[1 : len(inner)-1]
	}
	return inner
}

func (s *Session) applySetting(opt *setting, arg string) error {
	h, err := s.host()
	if err != nil {
		return err
	}
	flags := h.Flags()

	if opt.intFlag != nil {
		p := opt.intFlag(flags)
		if p == nil {
			return fmt.Errorf("%w: %s is not supported by this build", ErrInvalidArgument, opt.name)
		}
		if arg == "" {
			return fmt.Errorf("%w: %s needs an integer value", ErrMissingArgument, opt.name)
		}

		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: expecting an integer, got '%s'", ErrInvalidArgument, arg)
		}
		*p = n
		s.showSetting(opt)
		return nil
	}

	p := opt.boolFlag(flags)
	if p == nil {
		return fmt.Errorf("%w: %s is not supported by this build", ErrInvalidArgument, opt.name)
	}

	v, err := onOffToggle(arg, *p)
	if err != nil {
		return err
	}
	*p = v
	s.showSetting(opt)
	return nil
}

// onOffToggle computes the new value of a boolean option, no argument toggles.
func onOffToggle(arg string, cur bool) (bool, error) {
	switch strings.ToLower(arg) {
	case "", "toggle":
		return !cur, nil
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	}
	return cur, fmt.Errorf("%w: expecting 'on', 'off' or 'toggle', got '%s'", ErrInvalidArgument, arg)
}

// settingValue renders the current value, "on"/"off" for booleans.
func (s *Session) settingValue(opt *setting) string {
	h, err := s.host()
	if err != nil {
		return "unknown"
	}

	if opt.intFlag != nil {
		if p := opt.intFlag(h.Flags()); p != nil {
			return strconv.Itoa(*p)
		}
		return "unsupported"
	}

	p := opt.boolFlag(h.Flags())
	switch {
	case p == nil:
		return "unsupported"
	case *p:
		return "on"
	default:
		return "off"
	}
}

func (s *Session) showSetting(opt *setting) {
	s.msg("%s is %s.", opt.name, s.settingValue(opt))
}

func (s *Session) listSettings() {
	for i := range settings {
		opt := &settings[i]
		s.msg("set %-13s -- %s is %s.", opt.name, opt.help, s.settingValue(opt))
	}
	s.msg("set %-13s -- %s.", "VARIABLE", variableHelp)
}

func setCompletion(s *Session, args string) []prompt.Suggest {
	if strings.IndexFunc(args, unicode.IsSpace) >= 0 {
		return nil
	}

	words := []string{"variable"}
	for _, opt := range settings {
		words = append(words, opt.name)
	}
	return suggest(rankWords(args, words))
}
