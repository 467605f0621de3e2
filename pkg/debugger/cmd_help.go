package debugger

import (
	"fmt"
	"strings"
)

var cmdHelp = Command{
	Code:        CodeHelp,
	Name:        "help",
	Usage:       "help [COMMAND]",
	Summary:     "Show help text / available commands",
	Description: "Show a summary of all commands or detailed help for the specified command.",
	Exec:        helpExec,
	Complete:    commandCompletion,
}

func helpExec(s *Session, args string) Signal {
	word, _ := splitWord(args)
	if word == "" {
		s.msg("Commands:")
		s.printCmds()
		s.msg("\nAn empty line repeats step. Type 'help COMMAND' for details on a command.")
		return SignalReadLoop
	}

	cmd, err := s.registry.Resolve(word)
	if err != nil {
		s.errmsg("No such debugger command: %s.", word)
		return SignalCmdError
	}

	fmt.Fprintf(s.out, "%s - %s\n", s.clr.blue(cmd.Name), cmd.Summary)
	s.msg("Usage:")
	for _, line := range strings.Split(cmd.Usage, "\n") {
		s.msg("  %s", line)
	}

	if cmd.Description != "" {
		s.msg("\n%s", cmd.Description)
	}

	s.msg("\nShort name: %s", cmd.Code)
	if aliases := s.registry.AliasesOf(cmd.Name); len(aliases) > 0 {
		s.msg("Aliases: %s", strings.Join(aliases, ", "))
	}

	if cmd.Code == CodeSet {
		s.msg("\nOptions:")
		s.listSettings()
	}

	return SignalReadLoop
}

func (s *Session) printCmds() {
	for _, cmd := range s.registry.Commands() {
		name := fmt.Sprintf("%s (%s)", cmd.Name, cmd.Code)
		if aliases := s.registry.AliasesOf(cmd.Name); len(aliases) > 0 {
			name = fmt.Sprintf("%s (%s, %s)", cmd.Name, cmd.Code, strings.Join(aliases, ", "))
		}

		padLen := 30 - len(name)
		if padLen < 0 {
			padLen = 0
		}

		fmt.Fprintf(s.out, "  %s %s %s\n", name, strings.Repeat("-", padLen), cmd.Summary)
	}
}

// usage prints the usage lines of a command, used after argument errors.
func (s *Session) usage(code Code) {
	cmd, ok := s.registry.Lookup(code)
	if !ok {
		return
	}

	s.msg("Usage:")
	for _, line := range strings.Split(cmd.Usage, "\n") {
		s.msg("  %s", line)
	}
}
