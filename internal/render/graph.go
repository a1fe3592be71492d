package render

import (
	"fmt"
	"strings"

	"serdump/internal/decode"
	"serdump/internal/refgraph"
)

// maxLabel caps node labels; long strings in a payload are common.
const maxLabel = 48

// GraphDOT renders the reference graph with one node per handle and edges
// colored by kind. Descriptors and strings get their own fills. maxNodes
// limits rendered nodes in handle order (0 = all).
func GraphDOT(g *refgraph.Graph, title string, t Theme, maxNodes int) string {
	nodes := g.Nodes
	if maxNodes > 0 && len(nodes) > maxNodes {
		nodes = nodes[:maxNodes]
	}
	renderSet := make(map[decode.Handle]bool, len(nodes))
	for _, n := range nodes {
		renderSet[n.Handle] = true
	}

	var b strings.Builder
	b.WriteString("digraph refgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  splines=true;\n")
	b.WriteString("  nodesep=0.4;\n")
	b.WriteString("  ranksep=0.7;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=\"filled,rounded\", fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Helvetica Neue,Helvetica,Arial\", fontsize=10, fontcolor=%q, height=0.4, margin=\"0.15,0.08\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.5, arrowsize=0.5, arrowhead=vee, color=%q];\n", t.EdgeField)
	if title != "" {
		fmt.Fprintf(&b, "  labelloc=t;\n  labeljust=l;\n")
		fmt.Fprintf(&b, "  label=<<font face=\"Helvetica Neue,Helvetica\" point-size=\"8\" color=\"%s\">%s</font>>;\n",
			t.TextColor, dotEscape(title))
	}
	b.WriteByte('\n')

	for _, n := range nodes {
		id := dotID(n.Handle.String())
		name := n.Name
		if name == "" {
			name = string(n.Kind)
		}
		htmlLabel := fmt.Sprintf("<<font point-size=\"10\">%s</font><br/><font point-size=\"7\" color=\"%s\">%s %s</font>>",
			dotEscape(truncLabel(name, maxLabel)), t.MutedText, n.Handle, n.Kind)

		switch n.Kind {
		case decode.EntryClassDesc:
			fmt.Fprintf(&b, "  %s [label=%s, fillcolor=%q, shape=box];\n", id, htmlLabel, t.DescFill)
		case decode.EntryString:
			fmt.Fprintf(&b, "  %s [label=%s, fillcolor=%q];\n", id, htmlLabel, t.StringFill)
		default:
			fmt.Fprintf(&b, "  %s [label=%s];\n", id, htmlLabel)
		}
	}
	b.WriteByte('\n')

	for _, e := range g.Edges {
		if !renderSet[e.From] || !renderSet[e.To] {
			continue
		}
		attrs := fmt.Sprintf("color=%q", t.EdgeColor(e.Kind))
		if e.Kind == refgraph.EdgeSuper {
			attrs += ", style=dashed"
		}
		if e.Label != "" {
			attrs += fmt.Sprintf(", label=<<font point-size=\"7\" color=\"%s\">%s</font>>",
				t.MutedText, dotEscape(e.Label))
		}
		fmt.Fprintf(&b, "  %s -> %s [%s];\n", dotID(e.From.String()), dotID(e.To.String()), attrs)
	}

	b.WriteString("}\n")
	return b.String()
}
