package build

import (
	"fmt"
	"strings"

	"github.com/mandy-yan/remake/pkg/debugger"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Variable origins, in addition to debugger.OriginDebugger.
const (
	OriginDefault     debugger.Origin = "default"
	OriginEnvironment debugger.Origin = "environment"
	OriginFile        debugger.Origin = "file"
	OriginAutomatic   debugger.Origin = "automatic"
)

// VarTable is the global variable table of a build. Values are stored unexpanded and expanded on
// use, references look like $(NAME), ${NAME} or $N for single character names. $$ is a literal $.
type VarTable struct {
	vars map[string]debugger.Variable
	// automatic variables of the target whose recipe is running, they shadow globals
	auto map[string]string
}

func NewVarTable() *VarTable {
	return &VarTable{
		vars: make(map[string]debugger.Variable),
		auto: make(map[string]string),
	}
}

// ImportEnv defines a variable for every NAME=VALUE pair, without overriding existing variables.
func (t *VarTable) ImportEnv(environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		if _, exists := t.vars[name]; exists {
			continue
		}
		t.vars[name] = debugger.Variable{
			Name:   name,
			Value:  value,
			Origin: OriginEnvironment,
		}
	}
}

func (t *VarTable) Lookup(name string) (debugger.Variable, bool) {
	if v, ok := t.auto[name]; ok {
		return debugger.Variable{Name: name, Value: v, Origin: OriginAutomatic}, true
	}
	v, ok := t.vars[name]
	return v, ok
}

func (t *VarTable) Define(v debugger.Variable) {
	if v.Origin == "" {
		v.Origin = OriginFile
	}
	t.vars[v.Name] = v
}

// Names returns the sorted names of all global variables.
func (t *VarTable) Names() []string {
	names := maps.Keys(t.vars)
	slices.Sort(names)
	return names
}

func (t *VarTable) setAutomatic(target *Target, prereqs []string) {
	t.auto = map[string]string{
		"@": target.name,
		"<": "",
		"^": strings.Join(prereqs, " "),
	}
	if len(prereqs) > 0 {
		t.auto["<"] = prereqs[0]
	}
}

func (t *VarTable) clearAutomatic() {
	t.auto = make(map[string]string)
}

// Expand replaces all variable references in text. Undefined variables expand to nothing, so does
// a reference to a variable which is already being expanded.
func (t *VarTable) Expand(text string) string {
	out, _ := t.ExpandStrict(text)
	return out
}

// ExpandStrict is Expand which also reports a variable referencing itself, directly or through
// other variables, with ErrRecursiveVariable.
func (t *VarTable) ExpandStrict(text string) (string, error) {
	x := expansion{vars: t, active: make(map[string]bool)}
	out := x.expand(text)
	return out, x.err
}

// expansion is the state of a single Expand call.
type expansion struct {
	vars *VarTable
	// active holds the variables whose values are being expanded
	active map[string]bool
	err    error
}

func (x *expansion) expand(text string) string {
	if !strings.Contains(text, "$") {
		return text
	}

	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '$' || i == len(text)-1 {
			sb.WriteByte(c)
			continue
		}

		i++
		switch open := text[i]; open {
		case '$':
			sb.WriteByte('$')

		case '(', '{':
			end := matchingClose(text, i)
			if end < 0 {
				// Unterminated reference, keep it as is
				sb.WriteString(text[i-1:])
				return sb.String()
			}

			// The name itself may contain references
			name := x.expand(text[i+1 : end])
			sb.WriteString(x.value(name))
			i = end

		default:
			sb.WriteString(x.value(string(open)))
		}
	}

	return sb.String()
}

func (x *expansion) value(name string) string {
	name = strings.TrimSpace(name)
	v, ok := x.vars.Lookup(name)
	if !ok {
		return ""
	}

	if x.active[name] {
		if x.err == nil {
			x.err = fmt.Errorf("%w: '%s'", ErrRecursiveVariable, name)
		}
		return ""
	}

	x.active[name] = true
	defer delete(x.active, name)
	return x.expand(v.Value)
}

// matchingClose returns the index of the bracket closing the one at text[open], or -1.
func matchingClose(text string, open int) int {
	var closing byte = ')'
	if text[open] == '{' {
		closing = '}'
	}

	nest := 0
	for i := open + 1; i < len(text); i++ {
		switch text[i] {
		case text[open]:
			nest++
		case closing:
			if nest == 0 {
				return i
			}
			nest--
		}
	}
	return -1
}
