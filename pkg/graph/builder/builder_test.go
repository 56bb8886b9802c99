package builder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textgraph/textgraph/pkg/config"
	"github.com/textgraph/textgraph/pkg/graph"
)

func sampleResult() *graph.ExtractionResult {
	alice := graph.Entity{
		ID:   "e-alice",
		Name: "Alice",
		Type: graph.EntityType{Kind: graph.EntityPerson},
		Attributes: []graph.Attribute{
			{ID: "a-name", Name: "name", Value: "Alice", Type: graph.AttributeType{Kind: graph.AttributeName}, Confidence: 1.0},
			{ID: "a-desc", Name: "description", Value: "engineer", Type: graph.AttributeType{Kind: graph.AttributeDescription}, Confidence: 0.7},
		},
		Confidence: 0.8,
		Position:   &graph.TextPosition{Start: 0, End: 5, SentenceIndex: 0},
	}
	bob := graph.Entity{
		ID:         "e-bob",
		Name:       "Bob",
		Type:       graph.EntityType{Kind: graph.EntityPerson},
		Attributes: []graph.Attribute{{ID: "b-name", Name: "name", Value: "Bob", Type: graph.AttributeType{Kind: graph.AttributeName}, Confidence: 1.0}},
		Confidence: 0.7,
		Position:   &graph.TextPosition{Start: 10, End: 13, SentenceIndex: 2},
	}
	concept := graph.Concept{
		ID:              "c-system",
		Name:            "system",
		Description:     "Concept 'system' mentioned in context: Alice built it",
		RelatedEntities: []string{},
		Confidence:      0.6,
		Position:        &graph.TextPosition{Start: 20, End: 26, SentenceIndex: 1},
	}
	rel := graph.Relationship{
		ID:         "r-1",
		SourceID:   "e-alice",
		TargetID:   "e-bob",
		Type:       graph.RelationshipType{Kind: graph.RelationHas},
		Label:      "Alice has Bob",
		Confidence: 0.6,
	}
	return &graph.ExtractionResult{
		Entities:      []graph.Entity{alice, bob},
		Relationships: []graph.Relationship{rel},
		Concepts:      []graph.Concept{concept},
	}
}

func TestBuildRejectsNilResult(t *testing.T) {
	b := New(config.Default())
	_, err := b.Build(nil, "")
	require.Error(t, err)
	assert.True(t, graph.IsKind(err, graph.ErrGraphBuilding))
}

func TestBuildNodesAndEdges(t *testing.T) {
	b := New(config.Default())
	g, err := b.Build(sampleResult(), "some source text")
	require.NoError(t, err)

	// 2 entities + 1 description attribute + 1 concept. Name attributes do
	// not become nodes.
	require.Len(t, g.Nodes, 4)
	assert.Equal(t, map[string]int{"entity": 2, "attribute": 1, "concept": 1}, g.Metadata.NodeTypes)

	// 1 relationship + 1 attribute edge + concept-entity links. The concept
	// sits in sentence 1, adjacent to both entities (sentences 0 and 2).
	assert.Equal(t, map[string]int{"relationship": 1, "entity_attribute": 1, "concept_entity": 2}, g.Metadata.EdgeTypes)
	assert.Equal(t, len(g.Nodes), g.Metadata.TotalNodes)
	assert.Equal(t, len(g.Edges), g.Metadata.TotalEdges)
	assert.Equal(t, len("some source text"), g.Metadata.SourceTextLength)
}

func TestBuildEntityNodeStyling(t *testing.T) {
	cfg := config.Default()
	b := New(cfg)
	g, err := b.Build(sampleResult(), "")
	require.NoError(t, err)

	var alice *Node
	for i := range g.Nodes {
		if g.Nodes[i].ID == "e-alice" {
			alice = &g.Nodes[i]
		}
	}
	require.NotNil(t, alice)

	assert.Equal(t, NodeEntity, alice.Type)
	assert.Equal(t, cfg.NodeColors.Entity, alice.Color)
	assert.Equal(t, cfg.NodeShapes.Entity, alice.Shape)
	// 30 * (1 + 0.8*0.5) * (1 + 2*0.1)
	assert.InDelta(t, 50.4, alice.Size, 1e-9)
	assert.True(t, alice.Physics)
	assert.Nil(t, alice.X)
	assert.Equal(t, "Person", alice.Metadata.EntityType)
	assert.Equal(t, "engineer", alice.Metadata.Attributes["description"])
	require.NotNil(t, alice.Metadata.PositionIn)
	assert.Equal(t, [2]int{0, 5}, *alice.Metadata.PositionIn)
}

func TestBuildRelationshipEdge(t *testing.T) {
	cfg := config.Default()
	b := New(cfg)
	g, err := b.Build(sampleResult(), "")
	require.NoError(t, err)

	var rel *Edge
	for i := range g.Edges {
		if g.Edges[i].Type == EdgeRelationship {
			rel = &g.Edges[i]
		}
	}
	require.NotNil(t, rel)

	assert.Equal(t, "e-alice", rel.From)
	assert.Equal(t, "e-bob", rel.To)
	assert.Equal(t, "Alice has Bob", rel.Label)
	assert.Equal(t, cfg.NodeColors.Relationship, rel.Color)
	// 1 + 0.6*2
	assert.InDelta(t, 2.2, rel.Width, 1e-9)
	assert.Equal(t, "to", rel.Arrows)
	assert.False(t, rel.Metadata.Bidirectional)
}

func TestBuildAttributeEdge(t *testing.T) {
	b := New(config.Default())
	g, err := b.Build(sampleResult(), "")
	require.NoError(t, err)

	var attrEdge *Edge
	for i := range g.Edges {
		if g.Edges[i].Type == EdgeAttribute {
			attrEdge = &g.Edges[i]
		}
	}
	require.NotNil(t, attrEdge)

	assert.Equal(t, "e-alice-a-desc", attrEdge.ID)
	assert.Equal(t, "has", attrEdge.Label)
	assert.Equal(t, "#888888", attrEdge.Color)
	assert.Equal(t, "has_attribute", attrEdge.Metadata.RelationshipType)
}

func TestBuildConceptEntityEdge(t *testing.T) {
	b := New(config.Default())
	g, err := b.Build(sampleResult(), "")
	require.NoError(t, err)

	var ce *Edge
	for i := range g.Edges {
		if g.Edges[i].Type == EdgeConceptEntity && g.Edges[i].To == "e-alice" {
			ce = &g.Edges[i]
		}
	}
	require.NotNil(t, ce)

	assert.Equal(t, "c-system", ce.From)
	assert.Equal(t, "relates to", ce.Label)
	assert.Equal(t, "#CCCCCC", ce.Color)
	assert.True(t, ce.Metadata.Bidirectional)
	assert.Equal(t, 0.5, ce.Metadata.Weight)
	// Average of concept 0.6 and entity 0.8.
	assert.InDelta(t, 0.7, ce.Metadata.Confidence, 1e-9)
}

func TestBuildRejectsDanglingEdge(t *testing.T) {
	result := sampleResult()
	result.Relationships = append(result.Relationships, graph.Relationship{
		ID:       "r-bad",
		SourceID: "e-alice",
		TargetID: "e-missing",
		Type:     graph.RelationshipType{Kind: graph.RelationRelatedTo},
		Label:    "dangling",
	})

	b := New(config.Default())
	_, err := b.Build(result, "")
	require.Error(t, err)
	assert.True(t, graph.IsKind(err, graph.ErrGraphBuilding))
}

func TestShouldConnectWithoutPositions(t *testing.T) {
	concept := &graph.Concept{Name: "analytics", Description: "TechCorp runs analytics"}
	entity := &graph.Entity{Name: "techcorp"}
	assert.True(t, shouldConnect(concept, entity))

	unrelated := &graph.Entity{Name: "zebra"}
	assert.False(t, shouldConnect(concept, unrelated))
}

func TestHierarchicalLayout(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.Algorithm = "hierarchical"
	b := New(cfg)
	g, err := b.Build(sampleResult(), "")
	require.NoError(t, err)

	b.ApplyLayout(g)

	for _, node := range g.Nodes {
		require.NotNil(t, node.X, "node %s has no x", node.ID)
		require.NotNil(t, node.Y, "node %s has no y", node.ID)
		switch node.Type {
		case NodeEntity:
			assert.Equal(t, -200.0, *node.Y)
		case NodeConcept:
			assert.Equal(t, 0.0, *node.Y)
		case NodeAttribute:
			assert.Equal(t, 200.0, *node.Y)
		}
	}

	// Two entities with spacing 200: x = (i - 1) * 200.
	var xs []float64
	for _, node := range g.Nodes {
		if node.Type == NodeEntity {
			xs = append(xs, *node.X)
		}
	}
	assert.ElementsMatch(t, []float64{-200, 0}, xs)
}

func TestCircularLayout(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.Algorithm = "circular"
	b := New(cfg)
	g, err := b.Build(sampleResult(), "")
	require.NoError(t, err)

	b.ApplyLayout(g)

	for _, node := range g.Nodes {
		require.NotNil(t, node.X)
		require.NotNil(t, node.Y)
		radius := math.Hypot(*node.X, *node.Y)
		assert.InDelta(t, 300, radius, 1e-9)
	}

	// First node sits at angle zero.
	assert.InDelta(t, 300, *g.Nodes[0].X, 1e-9)
	assert.InDelta(t, 0, *g.Nodes[0].Y, 1e-9)
}

func TestForceLayoutLeavesCoordinatesUnset(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.Algorithm = "force"
	b := New(cfg)
	g, err := b.Build(sampleResult(), "")
	require.NoError(t, err)

	b.ApplyLayout(g)

	for _, node := range g.Nodes {
		assert.Nil(t, node.X)
		assert.Nil(t, node.Y)
	}
}

func TestUnknownLayoutFallsBackToForce(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.Algorithm = "spiral"
	b := New(cfg)
	g, err := b.Build(sampleResult(), "")
	require.NoError(t, err)

	b.ApplyLayout(g)
	for _, node := range g.Nodes {
		assert.Nil(t, node.X)
	}
}

func TestLayoutIdempotent(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.Algorithm = "circular"
	b := New(cfg)
	g, err := b.Build(sampleResult(), "")
	require.NoError(t, err)

	b.ApplyLayout(g)
	first := make([]float64, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		first = append(first, *node.X, *node.Y)
	}

	b.ApplyLayout(g)
	second := make([]float64, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		second = append(second, *node.X, *node.Y)
	}
	assert.Equal(t, first, second)
}
