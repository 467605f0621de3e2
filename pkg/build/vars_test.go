package build

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mandy-yan/remake/pkg/debugger"
	"github.com/stretchr/testify/assert"
)

func testVars() *VarTable {
	vars := NewVarTable()
	for name, value := range map[string]string{
		"CC":       "cc",
		"CFLAGS":   "-O2 $(DEFS)",
		"DEFS":     "-DNDEBUG",
		"SUFFIX":   "dbg",
		"NAME_dbg": "yes",
		"X":        "ex",
		"LOOP":     "$(LOOP)x",
	} {
		vars.Define(debugger.Variable{Name: name, Value: value})
	}
	return vars
}

func TestExpand(t *testing.T) {
	vars := testVars()

	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"$(CC) -c main.c", "cc -c main.c"},
		{"${CC}", "cc"},
		{"$(CC)$(CC)", "cccc"},
		{"$(CFLAGS)", "-O2 -DNDEBUG"},
		{"$$HOME", "$HOME"},
		{"$$(CC)", "$(CC)"},
		{"$(UNDEFINED)x", "x"},
		{"$(CC", "$(CC"},
		{"a ${CC", "a ${CC"},
		{"$(NAME_$(SUFFIX))", "yes"},
		{"$X", "ex"},
		{"$Xy", "exy"},
		{"costs 5$", "costs 5$"},
		{"$( CC )", "cc"},
		{"$(LOOP)", "x"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, vars.Expand(tt.in), tt.in)
	}
}

func TestExpandSelfReference(t *testing.T) {
	vars := NewVarTable()
	vars.Define(debugger.Variable{Name: "X", Value: "$(X)$(X)"})
	vars.Define(debugger.Variable{Name: "A", Value: "a$(B)"})
	vars.Define(debugger.Variable{Name: "B", Value: "b$(A)"})
	vars.Define(debugger.Variable{Name: "TWICE", Value: "$(Y) $(Y)"})
	vars.Define(debugger.Variable{Name: "Y", Value: "y"})

	done := make(chan struct{})
	go func() {
		defer close(done)

		out, err := vars.ExpandStrict("$(X)")
		assert.ErrorIs(t, err, ErrRecursiveVariable)
		assert.ErrorContains(t, err, "'X'")
		assert.Equal(t, "", out)

		out, err = vars.ExpandStrict("<$(A)>")
		assert.ErrorIs(t, err, ErrRecursiveVariable)
		assert.Equal(t, "<ab>", out)

		// Using a variable twice is not a self reference
		out, err = vars.ExpandStrict("$(TWICE)")
		assert.NoError(t, err)
		assert.Equal(t, "y y", out)

		assert.Equal(t, "", vars.Expand("$(X)"))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("expanding a self referencing variable did not finish")
	}
}

func TestAutomaticVariables(t *testing.T) {
	vars := testVars()

	vars.setAutomatic(&Target{name: "prog"}, []string{"a.o", "b.o"})
	assert.Equal(t, "prog: a.o a.o b.o", vars.Expand("$@: $< $^"))

	v, ok := vars.Lookup("@")
	assert.True(t, ok)
	assert.Equal(t, OriginAutomatic, v.Origin)

	vars.setAutomatic(&Target{name: "clean"}, nil)
	assert.Equal(t, "clean: ", vars.Expand("$@: $<$^"))

	vars.clearAutomatic()
	assert.Equal(t, "", vars.Expand("$@"))
	_, ok = vars.Lookup("@")
	assert.False(t, ok)
}

func TestImportEnv(t *testing.T) {
	vars := testVars()
	vars.ImportEnv([]string{"CC=gcc", "HOME=/home/build", "BROKEN", "=nameless", "EMPTY="})

	cc, _ := vars.Lookup("CC")
	assert.Equal(t, "cc", cc.Value)
	assert.Equal(t, OriginFile, cc.Origin)

	home, ok := vars.Lookup("HOME")
	assert.True(t, ok)
	assert.Equal(t, debugger.Variable{Name: "HOME", Value: "/home/build", Origin: OriginEnvironment}, home)

	_, ok = vars.Lookup("BROKEN")
	assert.False(t, ok)

	empty, ok := vars.Lookup("EMPTY")
	assert.True(t, ok)
	assert.Equal(t, "", empty.Value)
}

func TestNames(t *testing.T) {
	vars := testVars()

	want := []string{"CC", "CFLAGS", "DEFS", "LOOP", "NAME_dbg", "SUFFIX", "X"}
	if diff := cmp.Diff(want, vars.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestDefineKeepsOrigin(t *testing.T) {
	vars := NewVarTable()
	vars.Define(debugger.Variable{Name: "CC", Value: "cc"})
	vars.Define(debugger.Variable{Name: "LD", Value: "ld", Origin: debugger.OriginDebugger})

	cc, _ := vars.Lookup("CC")
	ld, _ := vars.Lookup("LD")
	assert.Equal(t, OriginFile, cc.Origin)
	assert.Equal(t, debugger.OriginDebugger, ld.Origin)
}
