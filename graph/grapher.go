package graph

import (
	"bytes"
	"fmt"
	"sort"

	L "github.com/cs-au-dk/cat/analysis/lattice"
	"github.com/cs-au-dk/cat/utils"
	"github.com/cs-au-dk/cat/utils/dot"
)

var opts = utils.Opts()

// ConditionGraph renders the provenance traces behind a condition set:
// one box per condition, one node per distinct trace step, edges
// directed from input sources towards the conditions they explain.
// Conditions cluster by the file they are reported in, and steps
// shared between conditions share nodes.
func ConditionGraph(title string, conds L.Conditions) *dot.DotGraph {
	g := &dot.DotGraph{
		Title: title,
		Options: map[string]string{
			"minlen":  fmt.Sprint(opts.Minlen()),
			"nodesep": fmt.Sprint(opts.Nodesep()),
		},
	}

	clusters := map[string]*dot.DotCluster{}
	clusterOf := func(file string) *dot.DotCluster {
		if file == "" {
			file = "<unknown>"
		}
		if cl, found := clusters[file]; found {
			return cl
		}
		cl := dot.NewDotCluster(fmt.Sprint(len(clusters)))
		cl.Attrs["label"] = file
		clusters[file] = cl
		g.Clusters = append(g.Clusters, cl)
		return cl
	}

	steps := map[string]*dot.DotNode{}
	stepNode := func(el L.TraceElem) *dot.DotNode {
		id := elemLabel(el)
		if n, found := steps[id]; found {
			return n
		}
		n := &dot.DotNode{ID: id, Attrs: dot.DotAttrs{}}
		if _, isSource := el.(L.InputSource); isSource {
			n.Attrs["fillcolor"] = "salmon"
		}
		steps[id] = n
		g.Nodes = append(g.Nodes, n)
		return n
	}

	seen := map[[2]string]bool{}
	connect := func(from, to *dot.DotNode, attrs dot.DotAttrs) {
		key := [2]string{from.ID, to.ID}
		if seen[key] {
			return
		}
		seen[key] = true
		g.Edges = append(g.Edges, &dot.DotEdge{From: from, To: to, Attrs: attrs})
	}

	for _, c := range sortedConds(conds) {
		cn := &dot.DotNode{
			ID: condLabel(c),
			Attrs: dot.DotAttrs{
				"shape":     "box",
				"fillcolor": kindColor(c.Kind),
			},
		}
		cl := clusterOf(c.Pos.File)
		cl.Nodes = append(cl.Nodes, cn)

		c.Traces().ForEach(func(tr *L.Trace) {
			var prev *dot.DotNode
			for _, el := range tr.Elems() {
				n := stepNode(el)
				if prev != nil {
					connect(prev, n, dot.DotAttrs{})
				}
				prev = n
			}
			if prev != nil {
				connect(prev, cn, dot.DotAttrs{"style": "dashed"})
			}
		})
	}
	return g
}

// BuildGraph renders the condition graph to an image in the format
// selected on the command line and returns the image path, or the
// empty string when rendering fails.
func BuildGraph(title string, conds L.Conditions) string {
	g := ConditionGraph(title, conds)

	fmt.Printf("Clusters: %d\nNodes: %d\nEdges: %d\n",
		len(g.Clusters), len(g.Nodes), len(g.Edges))

	var buf bytes.Buffer
	if err := g.WriteDot(&buf); err != nil {
		fmt.Println(err)
		return ""
	}

	out, err := dot.DotToImage("", opts.OutputFormat(), buf.Bytes())
	if err != nil {
		fmt.Println(err)
		return ""
	}
	return out
}

// sortedConds orders conditions by position, then kind, then location,
// so the emitted graph is stable across runs.
func sortedConds(conds L.Conditions) []L.Condition {
	cs := conds.Entries()
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		switch {
		case a.Pos.File != b.Pos.File:
			return a.Pos.File < b.Pos.File
		case a.Pos.Line != b.Pos.Line:
			return a.Pos.Line < b.Pos.Line
		case a.Pos.Col != b.Pos.Col:
			return a.Pos.Col < b.Pos.Col
		case a.Kind != b.Kind:
			return a.Kind < b.Kind
		default:
			return a.Loc.String() < b.Loc.String()
		}
	})
	return cs
}

func condLabel(c L.Condition) string {
	return fmt.Sprintf("%s\n%s\n%s", c.Kind, c.Loc, c.Pos)
}

func kindColor(k L.CondKind) string {
	switch k {
	case L.CondOverflow:
		return "lightcoral"
	case L.CondFormat:
		return "lightskyblue"
	default:
		return "khaki"
	}
}

// elemLabel is the uncolorized rendering of a trace step.
func elemLabel(el L.TraceElem) string {
	switch el := el.(type) {
	case L.InputSource:
		return fmt.Sprintf("input %s\n%s", el.Fn, el.P)
	case L.BinOpTrace:
		return fmt.Sprintf("%s\n%s", el.Op, el.P)
	case L.PruneTrace:
		op := el.Op.String()
		if el.Const {
			op += " const"
		}
		return fmt.Sprintf("prune %s\n%s", op, el.P)
	case L.FormatSink:
		return fmt.Sprintf("format %s\n%s", el.Fn, el.P)
	case L.AllocSink:
		return fmt.Sprintf("alloc %s\n%s", el.Fn, el.P)
	case L.ConcatSink:
		return fmt.Sprintf("concat %s\n%s", el.Fn, el.P)
	}
	return el.String()
}
