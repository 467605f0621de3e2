package debugger

import (
	"runtime/debug"
	"strings"
	"unicode"

	prompt "github.com/c-bata/go-prompt"
)

var cmdShow = Command{
	Code:    CodeShow,
	Name:    "show",
	Usage:   "show [OPTION|commands|version]",
	Summary: "Show debugger options, the command history or the version",
	Description: "Without an argument all options are shown. 'show commands' lists the command history " +
		"and 'show version' the version of remake.",
	Exec:     showExec,
	Complete: showCompletion,
}

func showExec(s *Session, args string) Signal {
	word, _ := splitWord(args)

	switch {
	case word == "":
		for i := range settings {
			s.showSetting(&settings[i])
		}
		return SignalReadLoop

	case isAbbrevOf(word, "commands", 3):
		for i, line := range s.history {
			s.msg("%5d  %s", i+1, line)
		}
		return SignalReadLoop

	case isAbbrevOf(word, "version", 3):
		s.msg("remake %s", version())
		return SignalReadLoop
	}

	if opt, ok := findSetting(word); ok {
		s.showSetting(opt)
		return SignalReadLoop
	}

	s.errmsg("Undefined show command \"%s\". Try \"help show\".", word)
	return SignalCmdError
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}

func showCompletion(s *Session, args string) []prompt.Suggest {
	if strings.IndexFunc(args, unicode.IsSpace) >= 0 {
		return nil
	}

	words := []string{"commands", "version"}
	for _, opt := range settings {
		words = append(words, opt.name)
	}
	return suggest(rankWords(args, words))
}
