// Package build is a small make-like build engine driven by HCL build files. It walks the
// prerequisites of its goals depth first, runs recipes through a Runner and offers every step to an
// attached debugger session.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandy-yan/remake/pkg/debugger"
	"golang.org/x/exp/slices"
)

var (
	// ErrNoRule indicates a prerequisite which is neither a target nor an existing file.
	ErrNoRule = errors.New("no rule to make target")

	// ErrCycle indicates a target which depends on itself.
	ErrCycle = errors.New("circular dependency")

	// ErrRecipe indicates a recipe line which failed.
	ErrRecipe = errors.New("recipe failed")

	// ErrRecursiveVariable indicates a variable which references itself, directly or through others.
	ErrRecursiveVariable = errors.New("recursive variable references itself")

	// ErrQuit indicates the build was stopped from the debugger.
	ErrQuit = errors.New("build stopped from the debugger")

	errRestart = errors.New("restart requested")
)

// fatalCode is the exit code reported to the debugger on fatal errors.
const fatalCode debugger.ErrCode = 2

// debugBasic is the bit of the debug mask which traces the targets being considered.
const debugBasic = 1

// debuggerFunc is the recipe line which stops in the debugger.
const debuggerFunc = "$(debugger)"

type Config struct {
	// File is the build file, build.hcl in the working directory by default.
	File string

	IgnoreErrors bool
	KeepGoing    bool
	Silent       bool
	ShellTrace   bool
	Basename     bool
	DebugMask    int

	Runner Runner
	Out    io.Writer
	Err    io.Writer
	// Environ seeds the variable table, os.Environ() by default.
	Environ []string

	Logger *slog.Logger
}

type flags struct {
	ignoreErrors bool
	keepGoing    bool
	silent       bool
	shellTrace   bool
	basename     bool
	debugMask    int
}

type Engine struct {
	cfg    Config
	log    *slog.Logger
	runner Runner

	level  int
	parent *Engine

	vars    *VarTable
	targets map[string]*Target
	order   []string
	files   []string
	flags   flags

	dbg *debugger.Session

	stack   []*Target
	done    map[string]error
	skip    bool
	restart bool
}

// New creates an engine and reads its build file.
func New(cfg Config) (*Engine, error) {
	if cfg.File == "" {
		cfg.File = "build.hcl"
	}
	if cfg.Runner == nil {
		cfg.Runner = ShellRunner{}
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	if cfg.Environ == nil {
		cfg.Environ = os.Environ()
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		cfg:     cfg,
		log:     log.With("component", "build"),
		runner:  cfg.Runner,
		vars:    NewVarTable(),
		targets: make(map[string]*Target),
		flags: flags{
			ignoreErrors: cfg.IgnoreErrors,
			keepGoing:    cfg.KeepGoing,
			silent:       cfg.Silent,
			shellTrace:   cfg.ShellTrace,
			basename:     cfg.Basename,
			debugMask:    cfg.DebugMask,
		},
	}

	e.vars.Define(debugger.Variable{Name: "SHELL", Value: "/bin/sh", Origin: OriginDefault})
	if err := e.Load(cfg.File); err != nil {
		return nil, err
	}
	e.vars.ImportEnv(cfg.Environ)

	return e, nil
}

// Load reads a build file, its definitions override earlier ones.
func (e *Engine) Load(path string) error {
	f, err := ParseFile(path)
	if err != nil {
		return err
	}

	e.merge(f)
	e.files = append(e.files, path)
	e.log.Debug("Loaded build file.", "path", path, "variables", len(f.Variables), "targets", len(f.Targets))
	return nil
}

func (e *Engine) merge(f *File) {
	for _, v := range f.Variables {
		e.vars.Define(v)
	}

	for _, t := range f.Targets {
		if prev, ok := e.targets[t.name]; ok {
			e.log.Warn("Overriding target definition.", "target", t.name, "previous", prev.loc, "new", t.loc)
			// Breakpoints survive a redefinition
			t.trace = prev.trace
		} else {
			e.order = append(e.order, t.name)
		}
		e.targets[t.name] = t
	}
}

// AttachDebugger offers every halt point of the build to s.
func (e *Engine) AttachDebugger(s *debugger.Session) {
	e.dbg = s
	s.Attach(e)
}

// DefaultGoal is the first target of the first build file.
func (e *Engine) DefaultGoal() string {
	if len(e.order) == 0 {
		return ""
	}
	return e.order[0]
}

// Build updates the goals, or the default goal. A restart requested from the debugger starts the
// build over with the current variables and breakpoints.
func (e *Engine) Build(ctx context.Context, goals ...string) error {
	if len(goals) == 0 {
		if def := e.DefaultGoal(); def != "" {
			goals = []string{def}
		}
	}
	if len(goals) == 0 {
		return fmt.Errorf("%w: no targets", ErrNoRule)
	}

	for {
		err := e.build(ctx, goals)
		if !errors.Is(err, errRestart) {
			return err
		}

		e.log.Info("Restarting build.", "level", e.level, "goals", goals)
		e.restart = false
		if e.dbg != nil {
			e.dbg.Step(1)
		}
	}
}

func (e *Engine) build(ctx context.Context, goals []string) error {
	e.done = make(map[string]error)
	e.stack = nil
	e.skip = false

	var failed error
	for _, goal := range goals {
		err := e.update(ctx, goal)
		if err == nil {
			continue
		}
		if isAbort(err) || !e.flags.keepGoing {
			return err
		}
		failed = err
	}

	if err := e.halt(nil, debugger.ErrCodeTerminated, debugger.ReasonAfterCmd); err != nil {
		return err
	}
	return failed
}

// isAbort reports errors which stop the build regardless of --keep-going.
func isAbort(err error) bool {
	return errors.Is(err, ErrQuit) ||
		errors.Is(err, errRestart) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (e *Engine) update(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := e.done[name]; ok {
		return err
	}

	if e.flags.debugMask&debugBasic != 0 {
		fmt.Fprintf(e.cfg.Err, "%sConsidering target '%s'.\n", strings.Repeat(" ", e.depth()), name)
	}

	t, ok := e.targets[name]
	if !ok {
		if _, err := os.Stat(name); err == nil {
			e.done[name] = nil
			return nil
		}
		return e.fail(e.top(), fmt.Errorf("%w '%s'", ErrNoRule, name))
	}

	if slices.Contains(e.stack, t) {
		return e.fail(e.top(), fmt.Errorf("%w: %s <- %s dependency dropped", ErrCycle, e.top().name, name))
	}

	e.stack = append(e.stack, t)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	if err := e.halt(t, debugger.ErrCodeNone, debugger.ReasonBeforePrereq); err != nil {
		return err
	}

	prereqs, err := e.prerequisites(t)
	if err != nil {
		err = e.fail(t, err)
		e.done[name] = err
		return err
	}

	var failed error
	for _, p := range prereqs {
		err := e.update(ctx, p)
		if err == nil {
			continue
		}
		if isAbort(err) || !e.flags.keepGoing {
			return err
		}
		failed = err
	}
	if failed != nil {
		e.log.Warn("Target not remade because of errors.", "target", t.name)
		e.done[name] = failed
		return failed
	}

	if err := e.halt(t, debugger.ErrCodeNone, debugger.ReasonAfterPrereq); err != nil {
		return err
	}

	err = e.remake(ctx, t, prereqs)
	e.done[name] = err
	if err != nil {
		return err
	}

	return e.halt(t, debugger.ErrCodeNone, debugger.ReasonAfterCmd)
}

func (e *Engine) prerequisites(t *Target) ([]string, error) {
	var prereqs []string
	for _, p := range t.prereqs {
		expanded, err := e.vars.ExpandStrict(p)
		if err != nil {
			return nil, fmt.Errorf("target '%s': %w", t.name, err)
		}
		prereqs = append(prereqs, strings.Fields(expanded)...)
	}
	return prereqs, nil
}

func (e *Engine) remake(ctx context.Context, t *Target, prereqs []string) error {
	defer func() { e.skip = false }()

	if t.build != "" {
		return e.subBuild(ctx, t)
	}

	e.vars.setAutomatic(t, prereqs)
	defer e.vars.clearAutomatic()

	for _, raw := range t.recipe {
		if e.skip {
			e.log.Debug("Skipping rest of recipe.", "target", t.name)
			return nil
		}

		if strings.TrimSpace(raw) == debuggerFunc {
			if err := e.request(t); err != nil {
				return err
			}
			continue
		}

		if err := e.runLine(ctx, t, raw); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runLine(ctx context.Context, t *Target, raw string) error {
	line, err := e.vars.ExpandStrict(raw)
	if err != nil {
		return e.fail(t, fmt.Errorf("target '%s': %w", t.name, err))
	}

	silent, ignore := e.flags.silent, e.flags.ignoreErrors
	for len(line) > 0 && strings.ContainsRune("@-+", rune(line[0])) {
		switch line[0] {
		case '@':
			silent = true
		case '-':
			ignore = true
		}
		line = strings.TrimLeft(line[1:], " \t")
	}
	if line == "" {
		return nil
	}

	if !silent {
		fmt.Fprintln(e.cfg.Out, line)
	}

	err = e.runner.Run(ctx, Command{
		Line:   line,
		Dir:    e.dir(),
		Env:    e.cfg.Environ,
		Trace:  e.flags.shellTrace,
		Stdout: e.cfg.Out,
		Stderr: e.cfg.Err,
	})
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	code := exitCode(err)
	if ignore {
		fmt.Fprintf(e.cfg.Err, "remake: [%s] Error %d (ignored)\n", t.name, code)
		e.log.Warn("Ignoring recipe error.", "target", t.name, "code", code, "error", err)
		return e.halt(t, debugger.ErrCodeSoft, debugger.ReasonError)
	}

	fmt.Fprintf(e.cfg.Err, "remake: *** [%s] Error %d\n", t.name, code)
	return e.fail(t, fmt.Errorf("%w: target '%s': %v", ErrRecipe, t.name, err))
}

// fail reports a build error to the debugger. With --keep-going it is a soft error the build goes
// on after, otherwise it is fatal.
func (e *Engine) fail(t *Target, err error) error {
	e.log.Error("Build error.", "level", e.level, "error", err)

	code, reason := fatalCode, debugger.ReasonFatal
	if e.flags.keepGoing {
		code, reason = debugger.ErrCodeSoft, debugger.ReasonError
	}

	if herr := e.halt(t, code, reason); herr != nil {
		return herr
	}
	return err
}

// halt offers a halt point to the debugger and translates its answer into an error for the build.
func (e *Engine) halt(t *Target, code debugger.ErrCode, reason debugger.Reason) error {
	if e.dbg == nil {
		return nil
	}

	var dt debugger.Target
	if t != nil {
		dt = t
	}

	if code == debugger.ErrCodeNone && !e.dbg.Candidate(reason, dt, e.depth()) {
		return nil
	}

	return e.signal(e.dbg.Enter(debugger.Stop{Target: dt, Code: code, Reason: reason}))
}

// request stops in the debugger because the recipe asked for it.
func (e *Engine) request(t *Target) error {
	if e.dbg == nil {
		e.log.Warn("Recipe requested the debugger but none is attached.", "target", t.name)
		return nil
	}
	return e.signal(e.dbg.Request(t))
}

func (e *Engine) signal(sig debugger.Signal) error {
	if sig != debugger.SignalQuit {
		return nil
	}
	if e.restart {
		return errRestart
	}
	return ErrQuit
}

// subBuild runs a nested build one level deeper which shares the debugger session.
func (e *Engine) subBuild(ctx context.Context, t *Target) error {
	path, err := e.vars.ExpandStrict(t.build)
	if err != nil {
		return e.fail(t, fmt.Errorf("target '%s': %w", t.name, err))
	}
	if !filepath.IsAbs(path) && t.loc.File != "" {
		path = filepath.Join(filepath.Dir(t.loc.File), path)
	}

	cfg := e.cfg
	cfg.File = path
	cfg.IgnoreErrors = e.flags.ignoreErrors
	cfg.KeepGoing = e.flags.keepGoing
	cfg.Silent = e.flags.silent
	cfg.ShellTrace = e.flags.shellTrace
	cfg.Basename = e.flags.basename
	cfg.DebugMask = e.flags.debugMask

	child, err := New(cfg)
	if err != nil {
		return e.fail(t, err)
	}
	child.level = e.level + 1
	child.parent = e

	e.log.Debug("Entering sub-build.", "level", child.level, "file", path, "goals", t.goals)

	if e.dbg != nil {
		saved := e.dbg.Save()
		child.AttachDebugger(e.dbg)
		defer func() {
			// Step and next progress made in the child carries over, everything else is the parent's
			st := e.dbg.Save()
			saved.Stepping = st.Stepping
			saved.Nexting = st.Nexting
			e.dbg.Restore(saved)
		}()
	}

	err = child.Build(ctx, t.goals...)
	if err != nil && !isAbort(err) {
		return e.fail(t, err)
	}
	return err
}

func (e *Engine) dir() string {
	if len(e.files) == 0 {
		return ""
	}
	return filepath.Dir(e.files[0])
}

func (e *Engine) top() *Target {
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1]
}

func (e *Engine) depth() int {
	d := len(e.stack)
	if e.parent != nil {
		d += e.parent.depth()
	}
	return d
}

func (e *Engine) Level() int { return e.level }

// Stack returns the targets being remade, innermost first, including those of parent builds.
func (e *Engine) Stack() []debugger.Target {
	stack := make([]debugger.Target, 0, e.depth())
	for i := len(e.stack) - 1; i >= 0; i-- {
		stack = append(stack, e.stack[i])
	}
	if e.parent != nil {
		stack = append(stack, e.parent.Stack()...)
	}
	return stack
}

func (e *Engine) Target(name string) (debugger.Target, bool) {
	t, ok := e.targets[name]
	if !ok {
		return nil, false
	}
	return t, true
}

// Targets returns all targets in definition order.
func (e *Engine) Targets() []debugger.Target {
	targets := make([]debugger.Target, 0, len(e.order))
	for _, name := range e.order {
		targets = append(targets, e.targets[name])
	}
	return targets
}

func (e *Engine) Vars() debugger.Variables { return e.vars }

func (e *Engine) Flags() debugger.Flags {
	return debugger.Flags{
		Basename:     &e.flags.basename,
		DebugMask:    &e.flags.debugMask,
		IgnoreErrors: &e.flags.ignoreErrors,
		KeepGoing:    &e.flags.keepGoing,
		Silent:       &e.flags.silent,
		ShellTrace:   &e.flags.shellTrace,
	}
}

func (e *Engine) Skip() { e.skip = true }

func (e *Engine) Restart() error {
	e.restart = true
	return nil
}
