package builder

import "math"

// ApplyLayout assigns node coordinates according to the configured algorithm.
// Unknown algorithm names fall back to force layout, which assigns nothing
// and leaves positioning to the renderer's physics simulation.
func (b *Builder) ApplyLayout(g *InteractiveGraph) {
	switch b.cfg.Layout.Algorithm {
	case "hierarchical":
		b.applyHierarchicalLayout(g)
	case "circular":
		b.applyCircularLayout(g)
	default:
		b.applyForceLayout(g)
	}
}

// applyHierarchicalLayout places entities on a top band, concepts in the
// middle and attributes on a bottom band, spread horizontally around zero by
// the configured spacing.
func (b *Builder) applyHierarchicalLayout(g *InteractiveGraph) {
	bands := map[NodeType]float64{
		NodeEntity:    -200,
		NodeConcept:   0,
		NodeAttribute: 200,
	}

	counts := make(map[NodeType]int)
	for i := range g.Nodes {
		counts[g.Nodes[i].Type]++
	}

	placed := make(map[NodeType]int)
	for i := range g.Nodes {
		node := &g.Nodes[i]
		y, ok := bands[node.Type]
		if !ok {
			continue
		}
		idx := placed[node.Type]
		placed[node.Type]++

		x := (float64(idx) - float64(counts[node.Type])/2) * b.cfg.Layout.Spacing
		node.X = &x
		yCopy := y
		node.Y = &yCopy
	}
}

// applyCircularLayout spreads all nodes evenly on a fixed-radius circle in
// slice order, starting at angle zero.
func (b *Builder) applyCircularLayout(g *InteractiveGraph) {
	if len(g.Nodes) == 0 {
		return
	}

	const radius = 300.0
	step := 2 * math.Pi / float64(len(g.Nodes))

	for i := range g.Nodes {
		angle := float64(i) * step
		x := radius * math.Cos(angle)
		y := radius * math.Sin(angle)
		g.Nodes[i].X = &x
		g.Nodes[i].Y = &y
	}
}

func (b *Builder) applyForceLayout(g *InteractiveGraph) {
	for i := range g.Nodes {
		g.Nodes[i].X = nil
		g.Nodes[i].Y = nil
	}
}
