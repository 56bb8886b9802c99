package export

import (
	"fmt"
	"strings"

	"github.com/textgraph/textgraph/pkg/graph/builder"
)

// renderDOT emits a Graphviz digraph. Shapes are remapped to Graphviz names
// per node role rather than taken from the vis-network config.
func renderDOT(g *builder.InteractiveGraph) string {
	var sb strings.Builder

	sb.WriteString("digraph EntityRelationshipGraph {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=ellipse, style=filled];\n")
	sb.WriteString("  edge [fontsize=10];\n\n")

	for i := range g.Nodes {
		node := &g.Nodes[i]
		fmt.Fprintf(&sb, "  \"%s\" [label=\"%s\", shape=%s, fillcolor=\"%s\", tooltip=\"Confidence: %.2f\"];\n",
			escapeDOT(node.ID),
			escapeDOT(node.Label),
			dotShape(node.Type),
			node.Color,
			node.Metadata.Confidence,
		)
	}

	sb.WriteString("\n")

	for i := range g.Edges {
		edge := &g.Edges[i]
		fmt.Fprintf(&sb, "  \"%s\" -> \"%s\" [label=\"%s\", color=\"%s\", penwidth=%v, tooltip=\"Confidence: %.2f\"];\n",
			escapeDOT(edge.From),
			escapeDOT(edge.To),
			escapeDOT(edge.Label),
			edge.Color,
			edge.Width,
			edge.Metadata.Confidence,
		)
	}

	sb.WriteString("}\n")
	return sb.String()
}

func dotShape(t builder.NodeType) string {
	switch t {
	case builder.NodeConcept:
		return "circle"
	case builder.NodeAttribute:
		return "box"
	default:
		return "ellipse"
	}
}
