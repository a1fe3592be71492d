package render

import "serdump/internal/refgraph"

// Theme holds colors for reference graph rendering.
type Theme struct {
	Background string
	NodeFill   string
	NodeBorder string
	TextColor  string

	// Edge colors by edge kind.
	EdgeClass      string // instance -> descriptor
	EdgeSuper      string // descriptor -> super
	EdgeField      string // object -> field value
	EdgeElement    string // array -> element
	EdgeAnnotation string // -> annotation content

	// Node fills by handle kind.
	DescFill   string // class descriptors
	StringFill string
	MutedText  string // secondary label text

	// Errors in the HTML report.
	ErrorText string
}

// NASA is the NASA/Bauhaus theme: geometric, monochrome, sparse color.
var NASA = Theme{
	Background: "#F5F5F5",
	NodeFill:   "white",
	NodeBorder: "#1A1A1A",
	TextColor:  "#1A1A1A",

	EdgeClass:      "#0B3D91", // NASA blue
	EdgeSuper:      "#00695C", // teal
	EdgeField:      "#424242", // dark gray
	EdgeElement:    "#9E9E9E", // gray
	EdgeAnnotation: "#E65100", // deep orange

	DescFill:   "#ECEFF1", // blue-gray 50
	StringFill: "#FFF8E1", // amber 50
	MutedText:  "#9E9E9E",

	ErrorText: "#FC3D21", // NASA red
}

// EdgeColor returns the color for an edge kind.
func (t Theme) EdgeColor(k refgraph.EdgeKind) string {
	switch k {
	case refgraph.EdgeClass:
		return t.EdgeClass
	case refgraph.EdgeSuper:
		return t.EdgeSuper
	case refgraph.EdgeElement:
		return t.EdgeElement
	case refgraph.EdgeAnnotation:
		return t.EdgeAnnotation
	}
	return t.EdgeField
}
