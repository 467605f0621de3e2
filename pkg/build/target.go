package build

import "github.com/mandy-yan/remake/pkg/debugger"

// Target is a rule of the build file.
type Target struct {
	name    string
	loc     debugger.Location
	prereqs []string
	recipe  []string

	// build is a build file which is built as a nested sub-build instead of running a recipe
	build string
	goals []string

	trace debugger.TraceFlags
}

func (t *Target) Name() string                   { return t.name }
func (t *Target) Location() debugger.Location    { return t.loc }
func (t *Target) Trace() debugger.TraceFlags     { return t.trace }
func (t *Target) SetTrace(f debugger.TraceFlags) { t.trace = f }
func (t *Target) Prerequisites() []string        { return t.prereqs }
func (t *Target) Recipe() []string               { return t.recipe }

// SubBuild returns the build file and goals of a target which runs a nested build.
func (t *Target) SubBuild() (string, []string) { return t.build, t.goals }
