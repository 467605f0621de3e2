package build

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mandy-yan/remake/pkg/debugger"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// File is a parsed build file. A build file holds variable and target blocks:
//
//	variable "CC" {
//	  value = "cc"
//	}
//
//	target "prog" {
//	  prereqs = ["main.o"]
//	  recipe  = ["$(CC) -o $@ $^"]
//	}
//
//	target "docs" {
//	  build = "docs/build.hcl"
//	  goals = ["html"]
//	}
//
// Variable references use make syntax. HCL interpolates ${...} itself, the ${NAME} form must be
// written as $${NAME}.
type File struct {
	Path      string
	Variables []debugger.Variable
	Targets   []*Target
}

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "variable", LabelNames: []string{"name"}},
		{Type: "target", LabelNames: []string{"name"}},
	},
}

// variableSchema is explicit, gohcl treats an hcl.Expression field as optional.
var variableSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "value", Required: true},
	},
}

type targetBody struct {
	Prereqs []string `hcl:"prereqs,optional"`
	Recipe  []string `hcl:"recipe,optional"`
	Build   string   `hcl:"build,optional"`
	Goals   []string `hcl:"goals,optional"`
}

// ParseFile reads and parses the build file at path.
func ParseFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read build file: %w", err)
	}
	return Parse(src, path)
}

// Parse parses the build file source, filename is used for locations and diagnostics.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse build file %s: %w", filename, diags)
	}

	content, diags := hclFile.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode build file %s: %w", filename, diags)
	}

	f := &File{Path: filename}
	seen := make(map[string]*hcl.Block)

	for _, block := range content.Blocks {
		switch block.Type {
		case "variable":
			v, diags := decodeVariable(block)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode build file %s: %w", filename, diags)
			}
			f.Variables = append(f.Variables, v)

		case "target":
			name := block.Labels[0]
			if prev, dup := seen[name]; dup {
				diags := hcl.Diagnostics{{
					Severity: hcl.DiagError,
					Summary:  "Duplicate \"target\" block",
					Detail:   fmt.Sprintf("Target %q was already defined at %s.", name, prev.DefRange),
					Subject:  &block.DefRange,
				}}
				return nil, fmt.Errorf("failed to decode build file %s: %w", filename, diags)
			}
			seen[name] = block

			var body targetBody
			if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode build file %s: %w", filename, diags)
			}

			f.Targets = append(f.Targets, &Target{
				name:    name,
				loc:     location(block.DefRange),
				prereqs: body.Prereqs,
				recipe:  body.Recipe,
				build:   body.Build,
				goals:   body.Goals,
			})
		}
	}

	return f, nil
}

func decodeVariable(block *hcl.Block) (debugger.Variable, hcl.Diagnostics) {
	content, diags := block.Body.Content(variableSchema)
	if diags.HasErrors() {
		return debugger.Variable{}, diags
	}

	expr := content.Attributes["value"].Expr
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return debugger.Variable{}, diags
	}

	s, err := ctyToString(val)
	if err != nil {
		rng := expr.Range()
		return debugger.Variable{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsuitable variable value",
			Detail:   fmt.Sprintf("Variable %q: %s.", block.Labels[0], err),
			Subject:  &rng,
		}}
	}

	return debugger.Variable{
		Name:   block.Labels[0],
		Value:  s,
		Origin: OriginFile,
		Loc:    location(block.DefRange),
	}, nil
}

// ctyToString renders a value the way a make variable holds it, lists become space separated words.
func ctyToString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", nil
	}
	if !val.IsWhollyKnown() {
		return "", errors.New("value is not known")
	}

	ty := val.Type()
	if ty.IsListType() || ty.IsTupleType() || ty.IsSetType() {
		var words []string
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			w, err := ctyToString(ev)
			if err != nil {
				return "", err
			}
			words = append(words, w)
		}
		return strings.Join(words, " "), nil
	}

	sv, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot convert %s to string: %w", ty.FriendlyName(), err)
	}
	return sv.AsString(), nil
}

func location(r hcl.Range) debugger.Location {
	return debugger.Location{
		File: r.Filename,
		Line: r.Start.Line,
	}
}
