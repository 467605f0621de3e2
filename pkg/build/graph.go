package build

import (
	"fmt"

	"github.com/emicklei/dot"
	"github.com/mandy-yan/remake/pkg/debugger"
)

// Graph renders the dependency graph of the build. Targets are boxes, prerequisites without a rule
// are plain files and targets which run a sub-build are drawn in blue. Edges point from a target to
// its prerequisites, targets with a breakpoint are red.
func (e *Engine) Graph() *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "LR")
	graph.Attr("nodesep", "0.3")

	nodes := make(map[string]dot.Node)
	node := func(name string) dot.Node {
		if n, ok := nodes[name]; ok {
			return n
		}

		n := graph.Node(name)
		t, ok := e.targets[name]
		switch {
		case !ok:
			n.Attr("shape", "note")
		case t.build != "":
			n.Attr("shape", "box")
			n.Attr("color", "blue")
			n.Attr("tooltip", fmt.Sprintf("sub-build %s", t.build))
		default:
			n.Attr("shape", "box")
			if loc := t.loc; loc.File != "" {
				n.Attr("tooltip", loc.String())
			}
		}

		if ok && t.trace != debugger.TraceNone {
			n.Attr("color", "red")
			n.Attr("style", "bold")
		}

		nodes[name] = n
		return n
	}

	for _, name := range e.order {
		from := node(name)
		// A prerequisite list which can't be expanded is drawn without edges
		prereqs, _ := e.prerequisites(e.targets[name])
		for _, p := range prereqs {
			graph.Edge(from, node(p))
		}
	}

	return graph
}
