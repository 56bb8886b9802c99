package export

import (
	"fmt"
	"strings"

	"github.com/textgraph/textgraph/pkg/graph/builder"
)

const graphmlHeader = `<?xml version="1.0" encoding="UTF-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns"
         xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
         xsi:schemaLocation="http://graphml.graphdrawing.org/xmlns
         http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd">

  <key id="d0" for="node" attr.name="label" attr.type="string"/>
  <key id="d1" for="node" attr.name="type" attr.type="string"/>
  <key id="d2" for="node" attr.name="confidence" attr.type="double"/>
  <key id="d3" for="edge" attr.name="label" attr.type="string"/>
  <key id="d4" for="edge" attr.name="type" attr.type="string"/>
  <key id="d5" for="edge" attr.name="confidence" attr.type="double"/>

`

// renderGraphML emits a directed GraphML document with label, type and
// confidence data keys on both nodes and edges.
func renderGraphML(g *builder.InteractiveGraph) string {
	var sb strings.Builder
	sb.WriteString(graphmlHeader)
	sb.WriteString("  <graph id=\"G\" edgedefault=\"directed\">\n")

	for i := range g.Nodes {
		node := &g.Nodes[i]
		fmt.Fprintf(&sb, "    <node id=%q>\n", escapeXML(node.ID))
		fmt.Fprintf(&sb, "      <data key=\"d0\">%s</data>\n", escapeXML(node.Label))
		fmt.Fprintf(&sb, "      <data key=\"d1\">%s</data>\n", node.Type)
		fmt.Fprintf(&sb, "      <data key=\"d2\">%v</data>\n", node.Metadata.Confidence)
		sb.WriteString("    </node>\n")
	}

	for i := range g.Edges {
		edge := &g.Edges[i]
		fmt.Fprintf(&sb, "    <edge id=%q source=%q target=%q>\n",
			escapeXML(edge.ID), escapeXML(edge.From), escapeXML(edge.To))
		fmt.Fprintf(&sb, "      <data key=\"d3\">%s</data>\n", escapeXML(edge.Label))
		fmt.Fprintf(&sb, "      <data key=\"d4\">%s</data>\n", edge.Type)
		fmt.Fprintf(&sb, "      <data key=\"d5\">%v</data>\n", edge.Metadata.Confidence)
		sb.WriteString("    </edge>\n")
	}

	sb.WriteString("  </graph>\n")
	sb.WriteString("</graphml>\n")
	return sb.String()
}
