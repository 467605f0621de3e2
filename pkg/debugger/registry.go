package debugger

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	prompt "github.com/c-bata/go-prompt"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Code is the single character shortcut of a command. Every command has exactly one.
type Code byte

const (
	CodeBreak    Code = 'b'
	CodeCd       Code = 'C'
	CodeComment  Code = '#'
	CodeContinue Code = 'c'
	CodeDelete   Code = 'd'
	CodeDown     Code = 'D'
	CodeEdit     Code = 'e'
	CodeExpand   Code = 'x'
	CodeFinish   Code = 'F'
	CodeFrame    Code = 'f'
	CodeHelp     Code = 'h'
	CodeInfo     Code = 'i'
	CodeList     Code = 'l'
	CodeLoad     Code = 'M'
	CodeNext     Code = 'n'
	CodePrint    Code = 'p'
	CodePwd      Code = 'P'
	CodeQuit     Code = 'q'
	CodeRun      Code = 'R'
	CodeSet      Code = '='
	CodeSetq     Code = '"'
	CodeSetqx    Code = '`'
	CodeShell    Code = '!'
	CodeShow     Code = 'S'
	CodeSkip     Code = 'k'
	CodeSource   Code = '<'
	CodeStep     Code = 's'
	CodeTarget   Code = 't'
	CodeUp       Code = 'u'
	CodeWhere    Code = 'T'
	CodeWrite    Code = 'w'
)

func (c Code) String() string {
	return string(rune(c))
}

type CmdFn func(s *Session, args string) Signal
type CompletionFn func(s *Session, args string) []prompt.Suggest

// Command is a slot in the registry.
type Command struct {
	Code        Code
	Name        string
	Usage       string
	Summary     string
	Description string
	// ID is the ordinal of the command, used to order help listings.
	ID       int
	Exec     CmdFn
	Complete CompletionFn
}

// longNames must stay sorted by name.
var longNames = []struct {
	name string
	code Code
}{
	{"break", CodeBreak},
	{"cd", CodeCd},
	{"comment", CodeComment},
	{"continue", CodeContinue},
	{"delete", CodeDelete},
	{"down", CodeDown},
	{"edit", CodeEdit},
	{"expand", CodeExpand},
	{"finish", CodeFinish},
	{"frame", CodeFrame},
	{"help", CodeHelp},
	{"info", CodeInfo},
	{"list", CodeList},
	{"load", CodeLoad},
	{"next", CodeNext},
	{"print", CodePrint},
	{"pwd", CodePwd},
	{"quit", CodeQuit},
	{"run", CodeRun},
	{"set", CodeSet},
	{"setq", CodeSetq},
	{"setqx", CodeSetqx},
	{"shell", CodeShell},
	{"show", CodeShow},
	{"skip", CodeSkip},
	{"source", CodeSource},
	{"step", CodeStep},
	{"target", CodeTarget},
	{"up", CodeUp},
	{"where", CodeWhere},
	{"write", CodeWrite},
}

// aliasNames must stay sorted by alias.
var aliasNames = []struct {
	alias   string
	command string
}{
	{"!!", "shell"},
	{"?", "help"},
	{"L", "break"},
	{"backtrace", "where"},
	{"bt", "where"},
	{"exit", "quit"},
	{"restart", "run"},
	{"return", "quit"},
}

func builtinCommands() []Command {
	return []Command{
		cmdBreak,
		cmdCd,
		cmdComment,
		cmdContinue,
		cmdDelete,
		cmdDown,
		cmdEdit,
		cmdExpand,
		cmdFinish,
		cmdFrame,
		cmdHelp,
		cmdInfo,
		cmdList,
		cmdLoad,
		cmdNext,
		cmdPrint,
		cmdPwd,
		cmdQuit,
		cmdRun,
		cmdSet,
		cmdSetq,
		cmdSetqx,
		cmdShell,
		cmdShow,
		cmdSkip,
		cmdSource,
		cmdStep,
		cmdTarget,
		cmdUp,
		cmdWhere,
		cmdWrite,
	}
}

// Registry maps codes, names and aliases to commands. It is read-only once built.
type Registry struct {
	slots   map[Code]*Command
	names   map[string]Code
	aliases map[string]string
	ordered []*Command
}

var (
	registryOnce sync.Once
	registry     *Registry
)

// defaultRegistry builds the process wide registry on first use.
func defaultRegistry() *Registry {
	registryOnce.Do(func() {
		registry = newRegistry(builtinCommands())
	})
	return registry
}

// newRegistry panics on a command without a long name or with a code that is already taken, both
// are programming errors.
func newRegistry(cmds []Command) *Registry {
	r := &Registry{
		slots:   make(map[Code]*Command, len(cmds)),
		names:   make(map[string]Code, len(longNames)),
		aliases: make(map[string]string, len(aliasNames)),
	}

	for _, ln := range longNames {
		r.names[ln.name] = ln.code
	}
	for _, a := range aliasNames {
		r.aliases[a.alias] = a.command
	}

	for i := range cmds {
		cmd := cmds[i]
		if code, ok := r.names[cmd.Name]; !ok || code != cmd.Code {
			panic(fmt.Sprintf("debugger: command '%s' is not in the name table under code '%s'", cmd.Name, cmd.Code))
		}
		if _, dup := r.slots[cmd.Code]; dup {
			panic(fmt.Sprintf("debugger: duplicate command code '%s'", cmd.Code))
		}

		cmd.ID = i
		r.slots[cmd.Code] = &cmd
		r.ordered = append(r.ordered, &cmd)
	}

	return r
}

// Resolve maps an input token to a command. A single character is looked up as a shortcut first,
// anything else goes through the alias table and then the name table.
func (r *Registry) Resolve(token string) (*Command, error) {
	if len(token) == 1 {
		if cmd, ok := r.slots[Code(token[0])]; ok {
			return cmd, nil
		}
	}

	name := token
	if canonical, ok := r.aliases[token]; ok {
		name = canonical
	}

	if code, ok := r.names[name]; ok {
		if cmd, ok := r.slots[code]; ok {
			return cmd, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, token)
}

func (r *Registry) Lookup(code Code) (*Command, bool) {
	cmd, ok := r.slots[code]
	return cmd, ok
}

// Commands returns all commands ordered by ID.
func (r *Registry) Commands() []*Command {
	return r.ordered
}

// AliasesOf returns the sorted aliases of a command name.
func (r *Registry) AliasesOf(name string) []string {
	var aliases []string
	for alias, canonical := range r.aliases {
		if canonical == name {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return aliases
}

// Words returns every name and alias, used for completion.
func (r *Registry) Words() []string {
	words := make([]string, 0, len(r.names)+len(r.aliases))
	for name := range r.names {
		words = append(words, name)
	}
	for alias := range r.aliases {
		words = append(words, alias)
	}
	sort.Strings(words)
	return words
}

// suggest returns the closest command name to a mistyped token, or "" if nothing is close.
func (r *Registry) suggest(token string) string {
	const maxDistance = 2

	best, bestDist := "", maxDistance+1
	for _, word := range r.Words() {
		if len(word) < 2 {
			continue
		}
		d := fuzzy.LevenshteinDistance(strings.ToLower(token), word)
		if d < bestDist {
			best, bestDist = word, d
		}
	}
	return best
}

// isAbbrevOf reports whether word is a prefix of full which is at least min characters long.
// The comparison is case sensitive.
func isAbbrevOf(word, full string, min int) bool {
	if len(word) < min || len(word) > len(full) {
		return false
	}
	return strings.HasPrefix(full, word)
}
