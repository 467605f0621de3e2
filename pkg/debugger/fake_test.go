package debugger

import (
	"bytes"
	"sort"
	"strings"
	"testing"
)

type fakeTarget struct {
	name    string
	loc     Location
	trace   TraceFlags
	prereqs []string
	recipe  []string
}

func (t *fakeTarget) Name() string            { return t.name }
func (t *fakeTarget) Location() Location      { return t.loc }
func (t *fakeTarget) Trace() TraceFlags       { return t.trace }
func (t *fakeTarget) SetTrace(f TraceFlags)   { t.trace = f }
func (t *fakeTarget) Prerequisites() []string { return t.prereqs }
func (t *fakeTarget) Recipe() []string        { return t.recipe }

type fakeVars struct {
	vars map[string]Variable
}

func (v *fakeVars) Lookup(name string) (Variable, bool) {
	vv, ok := v.vars[name]
	return vv, ok
}

func (v *fakeVars) Define(vv Variable) { v.vars[vv.Name] = vv }

func (v *fakeVars) Expand(text string) string {
	for name, vv := range v.vars {
		text = strings.ReplaceAll(text, "$("+name+")", vv.Value)
	}
	return text
}

func (v *fakeVars) Names() []string {
	var names []string
	for name := range v.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type fakeHost struct {
	level   int
	stack   []Target
	targets []*fakeTarget
	vars    *fakeVars

	basename, ignoreErrors, keepGoing, silent, shellTrace bool
	debugMask                                             int

	skipped   int
	restarted int
	loaded    []string
	panicSkip bool
}

func newFakeHost() *fakeHost {
	all := &fakeTarget{name: "all", loc: Location{File: "/src/build.hcl", Line: 1}, prereqs: []string{"prog"}}
	prog := &fakeTarget{name: "prog", loc: Location{File: "/src/build.hcl", Line: 5}, recipe: []string{"$(CC) -o prog main.c"}}

	return &fakeHost{
		stack:   []Target{prog, all},
		targets: []*fakeTarget{all, prog},
		vars: &fakeVars{vars: map[string]Variable{
			"CC":     {Name: "CC", Value: "cc", Origin: "file", Loc: Location{File: "/src/build.hcl", Line: 9}},
			"CFLAGS": {Name: "CFLAGS", Value: "-O2", Origin: "file", Loc: Location{File: "/src/build.hcl", Line: 10}},
		}},
	}
}

func (h *fakeHost) Level() int      { return h.level }
func (h *fakeHost) Stack() []Target { return h.stack }
func (h *fakeHost) Vars() Variables { return h.vars }
func (h *fakeHost) Load(p string) error {
	h.loaded = append(h.loaded, p)
	return nil
}

func (h *fakeHost) Target(name string) (Target, bool) {
	for _, t := range h.targets {
		if t.name == name {
			return t, true
		}
	}
	return nil, false
}

func (h *fakeHost) Targets() []Target {
	targets := make([]Target, 0, len(h.targets))
	for _, t := range h.targets {
		targets = append(targets, t)
	}
	return targets
}

func (h *fakeHost) Flags() Flags {
	return Flags{
		Basename:     &h.basename,
		DebugMask:    &h.debugMask,
		IgnoreErrors: &h.ignoreErrors,
		KeepGoing:    &h.keepGoing,
		Silent:       &h.silent,
		ShellTrace:   &h.shellTrace,
	}
}

func (h *fakeHost) Skip() {
	if h.panicSkip {
		panic("skip exploded")
	}
	h.skipped++
}

func (h *fakeHost) Restart() error {
	h.restarted++
	return nil
}

// newTestSession returns a session reading the given input lines, with all output in the buffer.
func newTestSession(t *testing.T, h Host, input string, cfg Config) (*Session, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	cfg.Out = out
	cfg.Reader = NewPlainReader(strings.NewReader(input), out)
	return New(h, cfg), out
}
