package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/hcl/v2"
	"github.com/mandy-yan/remake/pkg/debugger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBuild = `variable "CC" {
  value = "cc"
}

variable "OBJS" {
  value = ["main.o", "util.o"]
}

variable "JOBS" {
  value = 4
}

target "all" {
  prereqs = ["prog"]
}

target "prog" {
  prereqs = ["$(OBJS)"]
  recipe = [
    "$(CC) -o $@ $^",
    "@echo done",
  ]
}

target "docs" {
  build = "docs/build.hcl"
  goals = ["html", "pdf"]
}
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sampleBuild), "/src/build.hcl")
	require.NoError(t, err)

	wantVars := []debugger.Variable{
		{Name: "CC", Value: "cc", Origin: OriginFile, Loc: debugger.Location{File: "/src/build.hcl", Line: 1}},
		{Name: "OBJS", Value: "main.o util.o", Origin: OriginFile, Loc: debugger.Location{File: "/src/build.hcl", Line: 5}},
		{Name: "JOBS", Value: "4", Origin: OriginFile, Loc: debugger.Location{File: "/src/build.hcl", Line: 9}},
	}
	if diff := cmp.Diff(wantVars, f.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}

	wantTargets := []*Target{
		{name: "all", loc: debugger.Location{File: "/src/build.hcl", Line: 13}, prereqs: []string{"prog"}},
		{
			name:    "prog",
			loc:     debugger.Location{File: "/src/build.hcl", Line: 17},
			prereqs: []string{"$(OBJS)"},
			recipe:  []string{"$(CC) -o $@ $^", "@echo done"},
		},
		{
			name:  "docs",
			loc:   debugger.Location{File: "/src/build.hcl", Line: 25},
			build: "docs/build.hcl",
			goals: []string{"html", "pdf"},
		},
	}
	if diff := cmp.Diff(wantTargets, f.Targets, cmp.AllowUnexported(Target{})); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "syntax",
			src:  `target "all" {`,
			want: "failed to parse build file",
		},
		{
			name: "unknown block",
			src:  `rule "all" {}`,
			want: "Unsupported block type",
		},
		{
			name: "unknown attribute",
			src:  "target \"all\" {\n  command = \"x\"\n}\n",
			want: "Unsupported argument",
		},
		{
			name: "missing value",
			src:  `variable "CC" {}`,
			want: "Missing required argument",
		},
		{
			name: "unknown variable attribute",
			src:  "variable \"CC\" {\n  value   = \"cc\"\n  default = \"gcc\"\n}\n",
			want: "Unsupported argument",
		},
		{
			name: "object value",
			src:  "variable \"CC\" {\n  value = { a = 1 }\n}\n",
			want: "Unsuitable variable value",
		},
		{
			name: "duplicate target",
			src:  "target \"all\" {}\ntarget \"all\" {}\n",
			want: "Duplicate \"target\" block",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "build.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var diags hcl.Diagnostics
			assert.ErrorAs(t, err, &diags)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sampleBuild), 0o644))

	f, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Len(t, f.Targets, 3)
	assert.Equal(t, path, f.Targets[0].Location().File)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
