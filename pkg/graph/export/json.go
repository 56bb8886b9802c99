package export

import (
	"encoding/json"

	"github.com/textgraph/textgraph/pkg/graph"
	"github.com/textgraph/textgraph/pkg/graph/builder"
)

// renderJSON emits the full graph when metadata is requested, or a stripped
// nodes-and-edges document otherwise. Compact output only applies to the
// stripped form; full exports are always indented for inspection.
func renderJSON(g *builder.InteractiveGraph, opts Options) (string, error) {
	var (
		data []byte
		err  error
	)

	if opts.IncludeMetadata {
		data, err = json.MarshalIndent(g, "", "  ")
	} else {
		simplified := struct {
			Nodes []builder.Node `json:"nodes"`
			Edges []builder.Edge `json:"edges"`
		}{Nodes: g.Nodes, Edges: g.Edges}

		if opts.CompactOutput {
			data, err = json.Marshal(simplified)
		} else {
			data, err = json.MarshalIndent(simplified, "", "  ")
		}
	}
	if err != nil {
		return "", graph.WrapError(graph.ErrExport, err, "encoding graph to JSON")
	}
	return string(data), nil
}
