package debugger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	prompt "github.com/c-bata/go-prompt"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/term"
)

// LineReader acquires one line of input. It returns io.EOF once the input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// newLineReader uses the interactive line editor if the input is a terminal.
func newLineReader(s *Session) LineReader {
	if f, ok := s.cfg.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return &promptReader{s: s}
	}
	return NewPlainReader(s.cfg.In, s.out)
}

type plainReader struct {
	r   *bufio.Reader
	out io.Writer
}

// NewPlainReader reads lines from r after printing the prompt to out.
func NewPlainReader(r io.Reader, out io.Writer) LineReader {
	return &plainReader{
		r:   bufio.NewReader(r),
		out: out,
	}
}

func (p *plainReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	line, err := p.r.ReadString('\n')
	if err != nil {
		// A last line without newline is still a line
		if !errors.Is(err, io.EOF) || line == "" {
			return "", err
		}
	}

	return strings.TrimRightFunc(line, unicode.IsSpace), nil
}

// promptReader reads lines with go-prompt which adds history and completion.
type promptReader struct {
	s         *Session
	submitted bool
}

func (p *promptReader) ReadLine(prefix string) (string, error) {
	p.submitted = false
	submit := func(*prompt.Buffer) { p.submitted = true }

	in := prompt.Input(
		prefix,
		p.complete,
		prompt.OptionTitle("remake debugger"),
		prompt.OptionHistory(p.s.History()),
		prompt.OptionAddKeyBind(
			prompt.KeyBind{Key: prompt.Enter, Fn: submit},
			prompt.KeyBind{Key: prompt.ControlM, Fn: submit},
			prompt.KeyBind{Key: prompt.ControlJ, Fn: submit},
			prompt.KeyBind{Key: prompt.ControlC, Fn: func(b *prompt.Buffer) {
				fmt.Println("Ctrl+C disabled, please use the 'quit' command")
			}},
		),
	)

	// go-prompt returns an empty string for both <enter> on an empty line and ctrl+D
	if !p.submitted && in == "" {
		return "", io.EOF
	}
	return in, nil
}

func (p *promptReader) complete(in prompt.Document) []prompt.Suggest {
	return p.s.complete(in.TextBeforeCursor())
}

// complete suggests command names, or defers to the command's own completion once the command
// word is complete.
func (s *Session) complete(text string) []prompt.Suggest {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	if text == "" || s.registry == nil {
		return nil
	}

	word, args := splitWord(text)
	if strings.IndexFunc(text, unicode.IsSpace) >= 0 {
		cmd, err := s.registry.Resolve(word)
		if err != nil || cmd.Complete == nil {
			return nil
		}
		return cmd.Complete(s, args)
	}

	var suggestions []prompt.Suggest
	for _, target := range rankWords(word, s.registry.Words()) {
		cmd, err := s.registry.Resolve(target)
		if err != nil {
			continue
		}
		suggestions = append(suggestions, prompt.Suggest{
			Text:        target,
			Description: cmd.Summary,
		})
	}
	return suggestions
}

// rankWords fuzzy matches the last word of args against words, best match first.
func rankWords(search string, words []string) []string {
	if search == "" {
		sorted := append([]string(nil), words...)
		sort.Strings(sorted)
		return sorted
	}

	ranks := fuzzy.RankFind(search, words)
	sort.Sort(ranks)

	targets := make([]string, 0, len(ranks))
	for _, rank := range ranks {
		targets = append(targets, rank.Target)
	}
	return targets
}

// lastWord returns the word under the cursor of an argument string.
func lastWord(args string) string {
	if args == "" || unicode.IsSpace(rune(args[len(args)-1])) {
		return ""
	}
	fields := strings.Fields(args)
	return fields[len(fields)-1]
}

func suggest(words []string) []prompt.Suggest {
	suggestions := make([]prompt.Suggest, 0, len(words))
	for _, w := range words {
		suggestions = append(suggestions, prompt.Suggest{Text: w})
	}
	return suggestions
}

// targetCompletion completes target names of the host.
func targetCompletion(s *Session, args string) []prompt.Suggest {
	h, err := s.host()
	if err != nil {
		return nil
	}

	var names []string
	for _, t := range h.Targets() {
		names = append(names, t.Name())
	}
	return suggest(rankWords(lastWord(args), names))
}

// variableCompletion completes the first argument with variable names of the host.
func variableCompletion(s *Session, args string) []prompt.Suggest {
	h, err := s.host()
	if err != nil || strings.IndexFunc(args, unicode.IsSpace) >= 0 {
		return nil
	}
	return suggest(rankWords(args, h.Vars().Names()))
}

// commandCompletion completes command names, used by help.
func commandCompletion(s *Session, args string) []prompt.Suggest {
	if strings.IndexFunc(args, unicode.IsSpace) >= 0 {
		return nil
	}
	return suggest(rankWords(args, s.registry.Words()))
}

// fileCompletion completes file paths relative to the working directory.
func fileCompletion(s *Session, args string) []prompt.Suggest {
	path := lastWord(args)

	dir, file := ".", path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		dir, file = path[:i+1], path[i+1:]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}

	var suggestions []prompt.Suggest
	for _, target := range rankWords(file, names) {
		if dir != "." {
			target = dir + target
		}
		suggestions = append(suggestions, prompt.Suggest{Text: target})
	}
	return suggestions
}
