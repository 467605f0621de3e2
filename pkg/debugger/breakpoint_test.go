package debugger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	h := newFakeHost()
	h.targets = append(h.targets,
		&fakeTarget{name: "clean", loc: Location{File: "/src/build.hcl", Line: 14}},
		&fakeTarget{name: "main.o", loc: Location{File: "/src/objects.hcl", Line: 5}},
	)

	s, _ := newTestSession(t, h, "", Config{})
	s.Execute("pwd")
	s.resetFrames(nil)

	tests := []struct {
		loc  string
		want []string
	}{
		{"clean", []string{"clean"}},
		{"main.o", []string{"main.o"}},
		{"14", []string{"clean"}},
		{"-4", []string{"all"}},
		{"+9", []string{"clean"}},
		{"/src/build.hcl:1", []string{"all"}},
		{"build.hcl:5", []string{"prog"}},
		{"objects.hcl:5", []string{"main.o"}},
		{"/^(all|clean)$/", []string{"all", "clean"}},
	}

	for _, tt := range tests {
		targets, err := s.locate(tt.loc)
		require.NoError(t, err, tt.loc)
		if diff := cmp.Diff(tt.want, frameNames(targets)); diff != "" {
			t.Errorf("locate %s mismatch (-want +got):\n%s", tt.loc, diff)
		}
	}

	for _, loc := range []string{"nosuch", "99", "build.hcl:2", "/^x/"} {
		_, err := s.locate(loc)
		assert.ErrorIs(t, err, ErrUnknownTarget, loc)
	}

	_, err := s.locate("*0x1234")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBreakAndDelete(t *testing.T) {
	h := newFakeHost()
	all, prog := h.targets[0], h.targets[1]

	s, out := newTestSession(t, h, "", Config{})
	s.Execute("pwd")
	s.resetFrames(nil)
	out.Reset()

	require.Equal(t, SignalReadLoop, s.Execute("break"))
	assert.Equal(t, "Breakpoint 1 on target prog: /src/build.hcl:5, mode all.\n", out.String())
	assert.Equal(t, TraceAll, prog.trace)

	out.Reset()
	require.Equal(t, SignalReadLoop, s.Execute("b all run"))
	assert.Equal(t, "Breakpoint 2 on target all: /src/build.hcl:1, mode run.\n", out.String())
	assert.Equal(t, TraceAfterPrereq, all.trace)

	out.Reset()
	require.Equal(t, SignalReadLoop, s.Execute("L prog end"))
	assert.Equal(t, "Breakpoint 1 on target prog changed to mode end.\n", out.String())
	assert.Equal(t, TraceAfterCmd, prog.trace)

	out.Reset()
	s.Execute("info breakpoints")
	assert.Equal(t, ""+
		"1 end    prog at /src/build.hcl:5\n"+
		"2 run    all at /src/build.hcl:1\n",
		out.String())

	out.Reset()
	assert.Equal(t, SignalCmdError, s.Execute("delete 7 1"))
	assert.Equal(t, "No breakpoint number 7.\nBreakpoint 1 deleted.\n", out.String())
	assert.Equal(t, TraceNone, prog.trace)

	out.Reset()
	s.Execute("delete")
	assert.Equal(t, "Deleted 1 breakpoints.\n", out.String())
	assert.Equal(t, TraceNone, all.trace)

	out.Reset()
	s.Execute("break all")
	assert.Contains(t, out.String(), "Breakpoint 3 on target all")
}

func TestBreakTargetNamedLikeMode(t *testing.T) {
	h := newFakeHost()
	all, prog := h.targets[0], h.targets[1]
	end := &fakeTarget{name: "end", loc: Location{File: "/src/build.hcl", Line: 12}}
	h.targets = append(h.targets, end)

	s, out := newTestSession(t, h, "", Config{})
	s.Execute("pwd")
	s.resetFrames(nil)
	out.Reset()

	// prog is selected, but 'all' is a target
	require.Equal(t, SignalReadLoop, s.Execute("break all"))
	assert.Equal(t, "Breakpoint 1 on target all: /src/build.hcl:1, mode all.\n", out.String())
	assert.Equal(t, TraceAll, all.trace)
	assert.Equal(t, TraceNone, prog.trace)

	out.Reset()
	require.Equal(t, SignalReadLoop, s.Execute("break end"))
	assert.Equal(t, "Breakpoint 2 on target end: /src/build.hcl:12, mode all.\n", out.String())

	out.Reset()
	require.Equal(t, SignalReadLoop, s.Execute("break end end"))
	assert.Equal(t, TraceAfterCmd, end.trace)

	// No target is called 'run', so it is the mode of the selected target
	out.Reset()
	require.Equal(t, SignalReadLoop, s.Execute("break run"))
	assert.Equal(t, "Breakpoint 3 on target prog: /src/build.hcl:5, mode run.\n", out.String())
	assert.Equal(t, TraceAfterPrereq, prog.trace)
}

func TestBreakErrors(t *testing.T) {
	h := newFakeHost()
	s, out := newTestSession(t, h, "", Config{})

	assert.Equal(t, SignalCmdError, s.Execute("break"))
	assert.Contains(t, out.String(), "No target selected")

	out.Reset()
	assert.Equal(t, SignalCmdError, s.Execute("break all prog end"))
	assert.Contains(t, out.String(), "Too many arguments")
	assert.Contains(t, out.String(), "break [LOCATION] [all|prereq|run|end]")

	out.Reset()
	assert.Equal(t, SignalCmdError, s.Execute("break nosuch"))

	out.Reset()
	assert.Equal(t, SignalCmdError, s.Execute("delete one"))
	assert.Equal(t, "Invalid breakpoint id 'one'\n", out.String())
}

func TestClearedTemporaryLeavesListing(t *testing.T) {
	h := newFakeHost()
	prog := h.targets[1]

	s, out := newTestSession(t, h, "continue\n", Config{})
	s.Execute("break prog")
	prog.trace |= TraceTemp

	s.Enter(Stop{Target: prog, Reason: ReasonAfterCmd})
	assert.Equal(t, TraceNone, prog.trace)

	out.Reset()
	s.Execute("info breakpoints")
	assert.Equal(t, "No breakpoints.\n", out.String())
}

func TestDisabledBreakpointListing(t *testing.T) {
	h := newFakeHost()
	prog := h.targets[1]

	s, out := newTestSession(t, h, "", Config{})
	s.Execute("break prog prereq")
	prog.SetTrace(TraceNone)

	out.Reset()
	s.listBreakpoints()
	assert.Equal(t, "1 prereq prog at /src/build.hcl:5\n", out.String())
}

func TestTargetCommand(t *testing.T) {
	h := newFakeHost()
	s, out := newTestSession(t, h, "", Config{})
	s.resetFrames(nil)

	s.Execute("target")
	assert.Equal(t, ""+
		"prog:\n"+
		"#  defined at /src/build.hcl:5\n"+
		"#  depends on: \n"+
		"#  recipe to execute:\n"+
		"\t$(CC) -o prog main.c\n"+
		"#  recipe, expanded:\n"+
		"\tcc -o prog main.c\n"+
		"#  breakpoint: none\n",
		out.String())

	out.Reset()
	s.Execute("target all depends")
	assert.Equal(t, "all:\n#  depends on: prog\n", out.String())

	out.Reset()
	assert.Equal(t, SignalCmdError, s.Execute("target all color"))
	assert.Contains(t, out.String(), "Unknown target attribute 'color'")

	out.Reset()
	s.Execute("info target prog expand")
	assert.Equal(t, "prog:\n#  recipe, expanded:\n\tcc -o prog main.c\n", out.String())
}

func TestWriteCommand(t *testing.T) {
	h := newFakeHost()
	h.targets[1].recipe = []string{"@echo building", "-$(CC) -o prog main.c"}
	s, out := newTestSession(t, h, "", Config{})
	s.resetFrames(nil)

	s.Execute("write")
	assert.Equal(t, "echo building\ncc -o prog main.c\n", out.String())

	path := filepath.Join(t.TempDir(), "prog.sh")
	out.Reset()
	require.Equal(t, SignalReadLoop, s.Execute("write prog "+path))
	assert.Equal(t, "File \""+path+"\" written.\n", out.String())

	script, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n# prog, defined at /src/build.hcl:5\necho building\ncc -o prog main.c\n", string(script))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100)

	out.Reset()
	assert.Equal(t, SignalCmdError, s.Execute("write nosuch"))
	assert.Equal(t, "Can't find target nosuch.\n", out.String())
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "build.hcl")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0o644))

	h := newFakeHost()
	h.targets[0].loc = Location{File: path, Line: 1}
	h.targets[1].loc = Location{File: path, Line: 3}
	s, out := newTestSession(t, h, "", Config{})
	s.resetFrames(nil)

	require.Equal(t, SignalReadLoop, s.Execute("list"))
	assert.Equal(t, ""+
		"     1 one\n"+
		"     2 two\n"+
		" =>  3 three\n"+
		"     4 four\n",
		out.String())

	out.Reset()
	s.Execute("l 2")
	assert.Contains(t, out.String(), " =>  2 two\n")

	out.Reset()
	s.Execute("list all")
	assert.Contains(t, out.String(), " =>  1 one\n")

	out.Reset()
	h.targets[1].loc = Location{}
	assert.Equal(t, SignalCmdError, s.Execute("list"))
}
