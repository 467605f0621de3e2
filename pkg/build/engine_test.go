package build

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mandy-yan/remake/pkg/debugger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records the recipe lines instead of running them, lines in fail exit with an error.
type fakeRunner struct {
	cmds []Command
	fail map[string]bool
}

func (r *fakeRunner) Run(_ context.Context, cmd Command) error {
	r.cmds = append(r.cmds, cmd)
	if r.fail[cmd.Line] {
		return fmt.Errorf("'%s' failed", cmd.Line)
	}
	return nil
}

func (r *fakeRunner) lines() []string {
	lines := make([]string, 0, len(r.cmds))
	for _, c := range r.cmds {
		lines = append(lines, c.Line)
	}
	return lines
}

type testBuild struct {
	engine *Engine
	runner *fakeRunner
	out    *bytes.Buffer
	errOut *bytes.Buffer
	dir    string
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestBuild(t *testing.T, src string, cfg Config) *testBuild {
	t.Helper()

	tb := &testBuild{
		runner: &fakeRunner{fail: make(map[string]bool)},
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		dir:    t.TempDir(),
	}

	cfg.File = filepath.Join(tb.dir, "build.hcl")
	writeFile(t, cfg.File, src)

	cfg.Runner = tb.runner
	cfg.Out = tb.out
	cfg.Err = tb.errOut
	if cfg.Environ == nil {
		cfg.Environ = []string{}
	}
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	e, err := New(cfg)
	require.NoError(t, err)
	tb.engine = e
	return tb
}

// debug attaches a debugger session which reads the given input.
func (tb *testBuild) debug(input string, cfg debugger.Config) (*debugger.Session, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cfg.Out = out
	cfg.Reader = debugger.NewPlainReader(strings.NewReader(input), out)
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	s := debugger.New(nil, cfg)
	tb.engine.AttachDebugger(s)
	return s, out
}

const progBuild = `variable "CC" {
  value = "cc"
}

target "all" {
  prereqs = ["prog"]
}

target "prog" {
  prereqs = ["main.o", "util.o"]
  recipe  = ["$(CC) -o $@ $^"]
}

target "main.o" {
  recipe = ["$(CC) -c main.c"]
}

target "util.o" {
  recipe = ["$(CC) -c util.c"]
}
`

func TestBuildOrder(t *testing.T) {
	tb := newTestBuild(t, progBuild, Config{})

	require.NoError(t, tb.engine.Build(context.Background()))

	want := []string{"cc -c main.c", "cc -c util.c", "cc -o prog main.o util.o"}
	if diff := cmp.Diff(want, tb.runner.lines()); diff != "" {
		t.Errorf("recipe lines mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, strings.Join(want, "\n")+"\n", tb.out.String())

	for _, c := range tb.runner.cmds {
		assert.Equal(t, tb.dir, c.Dir)
	}
}

func TestBuildGoals(t *testing.T) {
	tb := newTestBuild(t, progBuild, Config{})

	require.NoError(t, tb.engine.Build(context.Background(), "util.o", "main.o", "util.o"))
	assert.Equal(t, []string{"cc -c util.c", "cc -c main.c"}, tb.runner.lines())
	assert.Equal(t, "all", tb.engine.DefaultGoal())
}

func TestSharedPrerequisiteBuiltOnce(t *testing.T) {
	tb := newTestBuild(t, `
target "all" {
  prereqs = ["a", "b"]
}

target "a" {
  prereqs = ["common"]
  recipe  = ["echo a"]
}

target "b" {
  prereqs = ["common"]
  recipe  = ["echo b"]
}

target "common" {
  recipe = ["echo common"]
}
`, Config{})

	require.NoError(t, tb.engine.Build(context.Background()))
	assert.Equal(t, []string{"echo common", "echo a", "echo b"}, tb.runner.lines())
}

func TestRecipePrefixes(t *testing.T) {
	tb := newTestBuild(t, `
target "all" {
  recipe = ["@echo quiet", "-false", "+ echo loud", "@-false", "@"]
}
`, Config{})
	tb.runner.fail["false"] = true

	require.NoError(t, tb.engine.Build(context.Background()))
	assert.Equal(t, []string{"echo quiet", "false", "echo loud", "false"}, tb.runner.lines())
	assert.Equal(t, "false\necho loud\n", tb.out.String())
	assert.Equal(t, "remake: [all] Error 1 (ignored)\nremake: [all] Error 1 (ignored)\n", tb.errOut.String())
}

func TestSilentAndIgnoreErrorsFlags(t *testing.T) {
	tb := newTestBuild(t, `
target "all" {
  recipe = ["false", "echo after"]
}
`, Config{Silent: true, IgnoreErrors: true, ShellTrace: true})
	tb.runner.fail["false"] = true

	require.NoError(t, tb.engine.Build(context.Background()))
	assert.Equal(t, []string{"false", "echo after"}, tb.runner.lines())
	assert.Empty(t, tb.out.String())
	assert.True(t, tb.runner.cmds[0].Trace)
}

func TestRecipeError(t *testing.T) {
	tb := newTestBuild(t, progBuild, Config{})
	tb.runner.fail["cc -c main.c"] = true

	err := tb.engine.Build(context.Background())
	assert.ErrorIs(t, err, ErrRecipe)
	assert.Equal(t, []string{"cc -c main.c"}, tb.runner.lines())
	assert.Equal(t, "remake: *** [main.o] Error 1\n", tb.errOut.String())
}

func TestRecursiveVariable(t *testing.T) {
	tb := newTestBuild(t, `
variable "FLAGS" {
  value = "$(FLAGS) -g"
}

target "all" {
  recipe = ["cc $(FLAGS) -c main.c"]
}
`, Config{})

	err := tb.engine.Build(context.Background())
	assert.ErrorIs(t, err, ErrRecursiveVariable)
	assert.ErrorContains(t, err, "target 'all'")
	assert.Empty(t, tb.runner.lines())
}

func TestKeepGoing(t *testing.T) {
	tb := newTestBuild(t, progBuild, Config{KeepGoing: true})
	tb.runner.fail["cc -c main.c"] = true

	err := tb.engine.Build(context.Background())
	assert.ErrorIs(t, err, ErrRecipe)
	// util.o is still made, prog is not
	assert.Equal(t, []string{"cc -c main.c", "cc -c util.c"}, tb.runner.lines())
}

func TestNoRule(t *testing.T) {
	tb := newTestBuild(t, `
target "all" {
  prereqs = ["missing.c"]
}
`, Config{})

	err := tb.engine.Build(context.Background())
	assert.ErrorIs(t, err, ErrNoRule)
	assert.Contains(t, err.Error(), "'missing.c'")

	err = tb.engine.Build(context.Background(), "nosuch")
	assert.ErrorIs(t, err, ErrNoRule)
}

func TestExistingFileNeedsNoRule(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.c")
	writeFile(t, src, "int main() {}\n")

	tb := newTestBuild(t, fmt.Sprintf(`
variable "SRC" {
  value = %q
}

target "all" {
  prereqs = ["$(SRC)"]
  recipe  = ["cc $<"]
}
`, src), Config{})

	require.NoError(t, tb.engine.Build(context.Background()))
	assert.Equal(t, []string{"cc " + src}, tb.runner.lines())
}

func TestCycle(t *testing.T) {
	tb := newTestBuild(t, `
target "a" {
  prereqs = ["b"]
}

target "b" {
  prereqs = ["a"]
}
`, Config{})

	err := tb.engine.Build(context.Background())
	assert.ErrorIs(t, err, ErrCycle)
	assert.Contains(t, err.Error(), "b <- a")
}

func TestCanceled(t *testing.T) {
	tb := newTestBuild(t, progBuild, Config{KeepGoing: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tb.engine.Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, tb.runner.lines())
}

func TestDebugMask(t *testing.T) {
	tb := newTestBuild(t, progBuild, Config{DebugMask: 1})

	require.NoError(t, tb.engine.Build(context.Background()))
	assert.Contains(t, tb.errOut.String(), "Considering target 'all'.\n")
	assert.Contains(t, tb.errOut.String(), "\n Considering target 'prog'.\n")
	assert.Contains(t, tb.errOut.String(), "\n  Considering target 'main.o'.\n")
}

func TestEnvironment(t *testing.T) {
	tb := newTestBuild(t, progBuild, Config{Environ: []string{"CC=gcc", "HOME=/home/build"}})

	v, _ := tb.engine.Vars().Lookup("CC")
	assert.Equal(t, "cc", v.Value)
	v, _ = tb.engine.Vars().Lookup("HOME")
	assert.Equal(t, OriginEnvironment, v.Origin)
	v, _ = tb.engine.Vars().Lookup("SHELL")
	assert.Equal(t, OriginDefault, v.Origin)
}

func TestLoadOverrides(t *testing.T) {
	tb := newTestBuild(t, progBuild, Config{})
	prog, _ := tb.engine.Target("prog")
	prog.SetTrace(debugger.TraceAfterCmd)

	extra := filepath.Join(tb.dir, "extra.hcl")
	writeFile(t, extra, `
variable "CC" {
  value = "clang"
}

target "prog" {
  recipe = ["$(CC) -o prog"]
}

target "clean" {
  recipe = ["rm -f prog"]
}
`)
	require.NoError(t, tb.engine.Load(extra))

	prog, _ = tb.engine.Target("prog")
	assert.Equal(t, debugger.TraceAfterCmd, prog.Trace())
	assert.Equal(t, extra, prog.Location().File)

	names := frameNames(tb.engine.Targets())
	assert.Equal(t, []string{"all", "prog", "main.o", "util.o", "clean"}, names)

	require.NoError(t, tb.engine.Build(context.Background(), "prog"))
	assert.Equal(t, []string{"clang -o prog"}, tb.runner.lines())

	assert.Error(t, tb.engine.Load(filepath.Join(tb.dir, "missing.hcl")))
}

func TestSubBuild(t *testing.T) {
	tb := newTestBuild(t, `
target "all" {
  prereqs = ["docs"]
  recipe  = ["echo parent"]
}

target "docs" {
  build = "docs/build.hcl"
  goals = ["html"]
}
`, Config{})
	writeFile(t, filepath.Join(tb.dir, "docs", "build.hcl"), `
target "html" {
  recipe = ["echo html"]
}

target "pdf" {
  recipe = ["echo pdf"]
}
`)

	require.NoError(t, tb.engine.Build(context.Background()))
	assert.Equal(t, []string{"echo html", "echo parent"}, tb.runner.lines())
	assert.Equal(t, filepath.Join(tb.dir, "docs"), tb.runner.cmds[0].Dir)
}

func TestSubBuildMissingFile(t *testing.T) {
	tb := newTestBuild(t, `
target "all" {
  build = "nowhere.hcl"
}
`, Config{})

	err := tb.engine.Build(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShellRunner(t *testing.T) {
	var out bytes.Buffer

	err := ShellRunner{}.Run(context.Background(), Command{Line: "echo $((1+2))", Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, "3\n", out.String())

	err = ShellRunner{}.Run(context.Background(), Command{Line: "exit 3"})
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(err))

	assert.Equal(t, 1, exitCode(fmt.Errorf("not an exit error")))
}

func TestGraph(t *testing.T) {
	tb := newTestBuild(t, `
target "all" {
  prereqs = ["prog", "docs"]
}

target "prog" {
  prereqs = ["main.c"]
}

target "docs" {
  build = "docs/build.hcl"
}
`, Config{})
	all, _ := tb.engine.Target("all")
	all.SetTrace(debugger.TraceAll)

	graph := tb.engine.Graph().String()
	assert.Equal(t, 3, strings.Count(graph, "->"))
	assert.Contains(t, graph, `label="main.c"`)
	assert.Contains(t, graph, `shape="note"`)
	assert.Contains(t, graph, `color="blue"`)
	assert.Contains(t, graph, `color="red"`)
	assert.Contains(t, graph, `rankdir="LR"`)
}

func frameNames(targets []debugger.Target) []string {
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, t.Name())
	}
	return names
}
