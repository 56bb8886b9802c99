package export

import (
	"fmt"
	"strings"

	"github.com/textgraph/textgraph/pkg/graph/builder"
)

// renderCSV writes two sections into one file, "# NODES" then "# EDGES",
// each with its own header row. Commas inside labels become semicolons so
// the row structure survives naive splitting.
func renderCSV(g *builder.InteractiveGraph) string {
	var sb strings.Builder

	sb.WriteString("# NODES\n")
	sb.WriteString("id,label,type,color,shape,size,confidence\n")
	for i := range g.Nodes {
		node := &g.Nodes[i]
		fmt.Fprintf(&sb, "%s,%s,%s,%s,%s,%v,%v\n",
			node.ID,
			strings.ReplaceAll(node.Label, ",", ";"),
			node.Type,
			node.Color,
			node.Shape,
			node.Size,
			node.Metadata.Confidence,
		)
	}

	sb.WriteString("\n# EDGES\n")
	sb.WriteString("id,from,to,label,type,color,width,confidence\n")
	for i := range g.Edges {
		edge := &g.Edges[i]
		fmt.Fprintf(&sb, "%s,%s,%s,%s,%s,%s,%v,%v\n",
			edge.ID,
			edge.From,
			edge.To,
			strings.ReplaceAll(edge.Label, ",", ";"),
			edge.Type,
			edge.Color,
			edge.Width,
			edge.Metadata.Confidence,
		)
	}

	return sb.String()
}
