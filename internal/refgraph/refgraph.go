// Package refgraph builds the handle reference graph of a decoded stream.
package refgraph

import (
	"fmt"

	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	"serdump/internal/decode"
)

// EdgeKind says why one handle points at another.
type EdgeKind string

const (
	EdgeClass      EdgeKind = "class"      // instance, array, enum or class literal -> descriptor
	EdgeSuper      EdgeKind = "super"      // descriptor -> super descriptor
	EdgeField      EdgeKind = "field"      // object -> field value
	EdgeElement    EdgeKind = "element"    // array -> element
	EdgeAnnotation EdgeKind = "annotation" // descriptor or object -> annotation content
)

// Edge links two allocated handles.
type Edge struct {
	From  decode.Handle `json:"from"`
	To    decode.Handle `json:"to"`
	Kind  EdgeKind      `json:"kind"`
	Label string        `json:"label,omitempty"`
}

// Graph has one node per allocated handle.
type Graph struct {
	Nodes []decode.Entry `json:"nodes"`
	Edges []Edge         `json:"edges"`
}

type edgeKey struct {
	from, to decode.Handle
	kind     EdgeKind
}

type builder struct {
	g       *Graph
	seen    map[edgeKey]bool
	visited map[decode.Handle]bool
}

// Build walks the content tree of res. Edges are deduplicated on
// (from, to, kind); the label of the first occurrence is kept.
func Build(res *decode.Result) *Graph {
	b := &builder{
		g:       &Graph{Nodes: res.Handles},
		seen:    make(map[edgeKey]bool),
		visited: make(map[decode.Handle]bool),
	}
	for _, c := range res.Contents {
		b.content(c)
	}
	return b.g
}

func (b *builder) edge(from, to decode.Handle, kind EdgeKind, label string) {
	k := edgeKey{from, to, kind}
	if b.seen[k] {
		return
	}
	b.seen[k] = true
	b.g.Edges = append(b.g.Edges, Edge{From: from, To: to, Kind: kind, Label: label})
}

// handleOf returns the handle a content element names, if any.
func handleOf(c decode.Content) (decode.Handle, bool) {
	switch n := c.(type) {
	case *decode.Reference:
		return n.Handle, true
	case *decode.Object:
		return n.Handle, true
	case *decode.Class:
		return n.Handle, true
	case *decode.Array:
		return n.Handle, true
	case *decode.String:
		return n.Handle, true
	case *decode.Enum:
		return n.Handle, true
	case *decode.ClassDesc:
		return n.Handle, true
	}
	return 0, false
}

// link records an edge to c and descends into it.
func (b *builder) link(from decode.Handle, c decode.Content, kind EdgeKind, label string) {
	if c == nil {
		return
	}
	if to, ok := handleOf(c); ok {
		b.edge(from, to, kind, label)
	}
	b.content(c)
}

func (b *builder) chain(from decode.Handle, c decode.Chain) {
	if len(c) == 0 {
		return
	}
	b.edge(from, c[0].Handle, EdgeClass, "")
	for _, cd := range c {
		b.classDesc(cd)
	}
}

func (b *builder) classDesc(cd *decode.ClassDesc) {
	if b.visited[cd.Handle] {
		return
	}
	b.visited[cd.Handle] = true
	if len(cd.Super) > 0 {
		b.edge(cd.Handle, cd.Super[0].Handle, EdgeSuper, "")
	}
	for _, a := range cd.Annotations {
		b.link(cd.Handle, a, EdgeAnnotation, "")
	}
	for _, s := range cd.Super {
		b.classDesc(s)
	}
}

func (b *builder) content(c decode.Content) {
	switch n := c.(type) {
	case *decode.ClassDesc:
		b.classDesc(n)
	case *decode.Object:
		b.chain(n.Handle, n.Class)
		for _, cd := range n.Data {
			for _, v := range cd.Values {
				b.link(n.Handle, v.Content, EdgeField, cd.Class+"."+v.Name)
			}
			for _, a := range cd.Annotations {
				b.link(n.Handle, a, EdgeAnnotation, cd.Class)
			}
		}
	case *decode.Array:
		if n.Class != nil {
			b.edge(n.Handle, n.Class.Handle, EdgeClass, "")
			b.classDesc(n.Class)
		}
		for i, v := range n.Elements {
			b.link(n.Handle, v.Content, EdgeElement, fmt.Sprintf("[%d]", i))
		}
	case *decode.Enum:
		b.chain(n.Handle, n.Class)
	case *decode.Class:
		b.chain(n.Handle, n.Desc)
	}
}

// NodeName is the display name of an entry: handle, kind and name.
func NodeName(e decode.Entry) string {
	if e.Name == "" {
		return fmt.Sprintf("%s %s", e.Handle, e.Kind)
	}
	return fmt.Sprintf("%s %s %s", e.Handle, e.Kind, e.Name)
}

// Lattice converts g to a lattice graph with one node per handle.
func (g *Graph) Lattice() *lattice.Graph {
	names := make(map[decode.Handle]string, len(g.Nodes))
	lg := &lattice.Graph{}
	for _, n := range g.Nodes {
		name := NodeName(n)
		names[n.Handle] = name
		lg.Nodes = append(lg.Nodes, name)
	}
	for _, e := range g.Edges {
		from, to := names[e.From], names[e.To]
		if from == "" || to == "" {
			continue
		}
		lg.Edges = append(lg.Edges, lattice.Edge{Caller: from, Callee: to})
	}
	lg.Dedup()
	return lg
}

// DOT renders g with the lattice renderer.
func DOT(g *Graph, title string) string {
	return render.DOT(g.Lattice(), title)
}

// Out returns the edges leaving h in insertion order.
func (g *Graph) Out(h decode.Handle) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == h {
			out = append(out, e)
		}
	}
	return out
}
