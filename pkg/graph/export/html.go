package export

import (
	"encoding/json"
	"html/template"
	"strings"

	"github.com/textgraph/textgraph/pkg/graph"
	"github.com/textgraph/textgraph/pkg/graph/builder"
)

// renderHTML emits a standalone page with the graph data embedded as JSON
// and vis-network loaded from CDN. Opening the file in a browser renders the
// interactive graph without any server.
func renderHTML(g *builder.InteractiveGraph) (string, error) {
	nodes, err := json.Marshal(g.Nodes)
	if err != nil {
		return "", graph.WrapError(graph.ErrExport, err, "encoding nodes for HTML export")
	}
	edges, err := json.Marshal(g.Edges)
	if err != nil {
		return "", graph.WrapError(graph.ErrExport, err, "encoding edges for HTML export")
	}
	cfg, err := json.Marshal(g.Config)
	if err != nil {
		return "", graph.WrapError(graph.ErrExport, err, "encoding config for HTML export")
	}

	var sb strings.Builder
	err = htmlTemplate.Execute(&sb, map[string]interface{}{
		"Title":  "Entity Relationship Graph",
		"Nodes":  template.JS(nodes),
		"Edges":  template.JS(edges),
		"Config": template.JS(cfg),
	})
	if err != nil {
		return "", graph.WrapError(graph.ErrExport, err, "rendering HTML template")
	}
	return sb.String(), nil
}

var htmlTemplate = template.Must(template.New("graph").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
    <style>
        body {
            margin: 0;
            font-family: Arial, Helvetica, sans-serif;
            background-color: #f5f5f5;
        }
        #toolbar {
            padding: 10px;
            background-color: #ffffff;
            border-bottom: 1px solid #ddd;
        }
        #toolbar button {
            margin-right: 8px;
            padding: 6px 12px;
            border: 1px solid #ccc;
            border-radius: 4px;
            background-color: #fafafa;
            cursor: pointer;
        }
        #toolbar button:hover {
            background-color: #eee;
        }
        #graph-container {
            width: 100%;
            height: calc(100vh - 50px);
        }
    </style>
</head>
<body>
    <div id="toolbar">
        <button id="physicsToggle" onclick="togglePhysics()">Physics: ON</button>
        <button id="nodeLabelsToggle" onclick="toggleNodeLabels()">Node Labels: ON</button>
        <button id="edgeLabelsToggle" onclick="toggleEdgeLabels()">Edge Labels: ON</button>
        <button onclick="fitGraph()">Fit</button>
    </div>
    <div id="graph-container"></div>

    <script>
        window.graphData = {
            nodes: {{.Nodes}},
            edges: {{.Edges}},
            config: {{.Config}}
        };

        var currentNetwork = null;
        var physicsEnabled = true;
        var showNodeLabels = true;
        var showEdgeLabels = true;

        window.addEventListener('load', function() {
            initializeGraph();
        });

        function initializeGraph() {
            physicsEnabled = window.graphData.config.physics.enabled;

            var container = document.getElementById('graph-container');
            var nodes = new vis.DataSet(window.graphData.nodes.map(function(node) {
                return {
                    id: node.id,
                    label: node.label,
                    originalLabel: node.label,
                    color: node.color,
                    shape: node.shape,
                    size: node.size,
                    x: node.x,
                    y: node.y,
                    physics: node.physics,
                    title: 'Type: ' + node.node_type + ' / Confidence: ' + node.metadata.confidence.toFixed(2)
                };
            }));

            var edges = new vis.DataSet(window.graphData.edges.map(function(edge) {
                return {
                    id: edge.id,
                    from: edge.from,
                    to: edge.to,
                    label: edge.label,
                    originalLabel: edge.label,
                    color: edge.color,
                    width: edge.width,
                    arrows: edge.arrows,
                    title: 'Type: ' + edge.metadata.relationship_type + ' / Confidence: ' + edge.metadata.confidence.toFixed(2),
                    smooth: { type: 'continuous' }
                };
            }));

            var options = {
                nodes: {
                    font: { size: 14, color: '#343434', face: 'arial' },
                    borderWidth: 2,
                    shadow: true
                },
                edges: {
                    arrows: { to: { enabled: true, scaleFactor: 1 } },
                    smooth: true,
                    shadow: true
                },
                physics: {
                    enabled: window.graphData.config.physics.enabled,
                    stabilization: {
                        enabled: window.graphData.config.physics.stabilization,
                        iterations: 1000
                    },
                    repulsion: {
                        nodeDistance: window.graphData.config.physics.repulsion,
                        centralGravity: 0.1,
                        springLength: window.graphData.config.physics.spring_length,
                        springConstant: window.graphData.config.physics.spring_constant
                    }
                },
                interaction: {
                    dragNodes: true,
                    dragView: true,
                    zoomView: true,
                    selectConnectedEdges: true,
                    hover: true
                }
            };

            currentNetwork = new vis.Network(container, { nodes: nodes, edges: edges }, options);
            window.graphNodes = nodes;
            window.graphEdges = edges;
            updateButton('physicsToggle', physicsEnabled, 'Physics: ON', 'Physics: OFF');
        }

        function togglePhysics() {
            physicsEnabled = !physicsEnabled;
            currentNetwork.setOptions({ physics: { enabled: physicsEnabled } });
            updateButton('physicsToggle', physicsEnabled, 'Physics: ON', 'Physics: OFF');
        }

        function toggleNodeLabels() {
            showNodeLabels = !showNodeLabels;
            window.graphNodes.update(window.graphNodes.get().map(function(node) {
                return { id: node.id, label: showNodeLabels ? node.originalLabel : '' };
            }));
            updateButton('nodeLabelsToggle', showNodeLabels, 'Node Labels: ON', 'Node Labels: OFF');
        }

        function toggleEdgeLabels() {
            showEdgeLabels = !showEdgeLabels;
            window.graphEdges.update(window.graphEdges.get().map(function(edge) {
                return { id: edge.id, label: showEdgeLabels ? edge.originalLabel : '' };
            }));
            updateButton('edgeLabelsToggle', showEdgeLabels, 'Edge Labels: ON', 'Edge Labels: OFF');
        }

        function fitGraph() {
            if (currentNetwork) {
                currentNetwork.fit();
            }
        }

        function updateButton(id, on, onText, offText) {
            var button = document.getElementById(id);
            if (button) {
                button.textContent = on ? onText : offText;
            }
        }
    </script>
</body>
</html>
`))
