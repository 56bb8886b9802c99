// Package builder turns extraction results into renderable interactive
// graphs: typed nodes and edges styled from configuration, plus deterministic
// layout algorithms.
package builder

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/textgraph/textgraph/pkg/config"
	"github.com/textgraph/textgraph/pkg/graph"
	"github.com/textgraph/textgraph/pkg/graph/metrics"
)

// NodeType tags the role a node plays in the rendered graph.
type NodeType string

const (
	NodeEntity    NodeType = "entity"
	NodeConcept   NodeType = "concept"
	NodeAttribute NodeType = "attribute"
)

// EdgeType tags the provenance of an edge.
type EdgeType string

const (
	EdgeRelationship  EdgeType = "relationship"
	EdgeAttribute     EdgeType = "entity_attribute"
	EdgeConceptEntity EdgeType = "concept_entity"
)

// Node is a renderable graph node. X and Y stay nil until a layout that
// assigns coordinates runs; the force layout leaves them nil so the renderer
// simulates positions itself.
type Node struct {
	ID       string       `json:"id"`
	Label    string       `json:"label"`
	Type     NodeType     `json:"node_type"`
	Color    string       `json:"color"`
	Shape    string       `json:"shape"`
	Size     float64      `json:"size"`
	X        *float64     `json:"x,omitempty"`
	Y        *float64     `json:"y,omitempty"`
	Physics  bool         `json:"physics"`
	Metadata NodeMetadata `json:"metadata"`
}

// NodeMetadata carries provenance for tooltips and export consumers.
type NodeMetadata struct {
	Confidence   float64           `json:"confidence"`
	OriginalText string            `json:"original_text"`
	EntityType   string            `json:"entity_type,omitempty"`
	Attributes   map[string]string `json:"attributes"`
	PositionIn   *[2]int           `json:"position_in_text,omitempty"`
}

// Edge is a directed, labeled graph edge.
type Edge struct {
	ID       string       `json:"id"`
	From     string       `json:"from"`
	To       string       `json:"to"`
	Label    string       `json:"label"`
	Color    string       `json:"color"`
	Width    float64      `json:"width"`
	Arrows   string       `json:"arrows"`
	Type     EdgeType     `json:"edge_type"`
	Metadata EdgeMetadata `json:"metadata"`
}

// EdgeMetadata carries edge provenance and rendering weight.
type EdgeMetadata struct {
	Confidence       float64 `json:"confidence"`
	RelationshipType string  `json:"relationship_type"`
	Bidirectional    bool    `json:"bidirectional"`
	Weight           float64 `json:"weight"`
}

// InteractiveGraph is the complete renderable graph, including the styling
// configuration exporters embed for the renderer.
type InteractiveGraph struct {
	Nodes    []Node        `json:"nodes"`
	Edges    []Edge        `json:"edges"`
	Config   config.Config `json:"config"`
	Metadata GraphMetadata `json:"metadata"`
}

// GraphMetadata summarizes one build.
type GraphMetadata struct {
	TotalNodes        int            `json:"total_nodes"`
	TotalEdges        int            `json:"total_edges"`
	NodeTypes         map[string]int `json:"node_types"`
	EdgeTypes         map[string]int `json:"edge_types"`
	CreationTimestamp string         `json:"creation_timestamp"`
	SourceTextLength  int            `json:"source_text_length"`
}

// Builder assembles interactive graphs from extraction results.
type Builder struct {
	cfg    config.Config
	logger *logrus.Logger
}

func New(cfg config.Config) *Builder {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return &Builder{cfg: cfg, logger: logger}
}

// Build assembles the graph: entity nodes with their non-name attributes as
// satellite nodes, concept nodes, relationship edges, and heuristic
// concept-entity links. The result is validated for referential integrity
// before it is returned.
func (b *Builder) Build(result *graph.ExtractionResult, sourceText string) (*InteractiveGraph, error) {
	if result == nil {
		return nil, graph.NewError(graph.ErrGraphBuilding, "extraction result is nil")
	}

	nodes := make([]Node, 0, len(result.Entities)+len(result.Concepts))
	edges := make([]Edge, 0, len(result.Relationships))
	nodeTypes := make(map[string]int)
	edgeTypes := make(map[string]int)

	for i := range result.Entities {
		entity := &result.Entities[i]
		nodes = append(nodes, b.entityNode(entity))
		nodeTypes[string(NodeEntity)]++

		for j := range entity.Attributes {
			attr := &entity.Attributes[j]
			if attr.Name == "name" {
				// The name is already the node label.
				continue
			}
			nodes = append(nodes, b.attributeNode(entity, attr))
			edges = append(edges, b.attributeEdge(entity, attr))
			nodeTypes[string(NodeAttribute)]++
			edgeTypes[string(EdgeAttribute)]++
		}
	}

	for i := range result.Concepts {
		nodes = append(nodes, b.conceptNode(&result.Concepts[i]))
		nodeTypes[string(NodeConcept)]++
	}

	for i := range result.Relationships {
		edges = append(edges, b.relationshipEdge(&result.Relationships[i]))
		edgeTypes[string(EdgeRelationship)]++
	}

	for i := range result.Concepts {
		concept := &result.Concepts[i]
		for j := range result.Entities {
			entity := &result.Entities[j]
			if !shouldConnect(concept, entity) {
				continue
			}
			edges = append(edges, b.conceptEntityEdge(concept, entity))
			edgeTypes[string(EdgeConceptEntity)]++
		}
	}

	g := &InteractiveGraph{
		Nodes:  nodes,
		Edges:  edges,
		Config: b.cfg,
		Metadata: GraphMetadata{
			TotalNodes:        len(nodes),
			TotalEdges:        len(edges),
			NodeTypes:         nodeTypes,
			EdgeTypes:         edgeTypes,
			CreationTimestamp: time.Now().UTC().Format(time.RFC3339),
			SourceTextLength:  len(sourceText),
		},
	}

	if err := g.validate(); err != nil {
		return nil, err
	}

	for nodeType, count := range nodeTypes {
		metrics.GraphNodeCount.WithLabelValues(nodeType).Set(float64(count))
	}
	for edgeType, count := range edgeTypes {
		metrics.GraphEdgeCount.WithLabelValues(edgeType).Set(float64(count))
	}

	b.logger.WithFields(logrus.Fields{
		"nodes": len(nodes),
		"edges": len(edges),
	}).Info("graph built")

	return g, nil
}

// validate checks that every edge endpoint names an existing node.
func (g *InteractiveGraph) validate() error {
	ids := make(map[string]struct{}, len(g.Nodes))
	for i := range g.Nodes {
		ids[g.Nodes[i].ID] = struct{}{}
	}
	for i := range g.Edges {
		edge := &g.Edges[i]
		if _, ok := ids[edge.From]; !ok {
			return graph.NewError(graph.ErrGraphBuilding, "edge %s references unknown source node %s", edge.ID, edge.From)
		}
		if _, ok := ids[edge.To]; !ok {
			return graph.NewError(graph.ErrGraphBuilding, "edge %s references unknown target node %s", edge.ID, edge.To)
		}
	}
	return nil
}

func (b *Builder) entityNode(entity *graph.Entity) Node {
	attrs := make(map[string]string, len(entity.Attributes))
	for _, a := range entity.Attributes {
		attrs[a.Name] = a.Value
	}

	var pos *[2]int
	if entity.Position != nil {
		pos = &[2]int{entity.Position.Start, entity.Position.End}
	}

	return Node{
		ID:      entity.ID,
		Label:   entity.Name,
		Type:    NodeEntity,
		Color:   b.cfg.NodeColors.Entity,
		Shape:   b.cfg.NodeShapes.Entity,
		Size:    entityNodeSize(entity.Confidence, len(entity.Attributes)),
		Physics: true,
		Metadata: NodeMetadata{
			Confidence:   entity.Confidence,
			OriginalText: entity.Name,
			EntityType:   entity.Type.String(),
			Attributes:   attrs,
			PositionIn:   pos,
		},
	}
}

func (b *Builder) conceptNode(concept *graph.Concept) Node {
	var pos *[2]int
	if concept.Position != nil {
		pos = &[2]int{concept.Position.Start, concept.Position.End}
	}

	return Node{
		ID:      concept.ID,
		Label:   concept.Name,
		Type:    NodeConcept,
		Color:   b.cfg.NodeColors.Concept,
		Shape:   b.cfg.NodeShapes.Concept,
		Size:    conceptNodeSize(concept.Confidence, len(concept.RelatedEntities)),
		Physics: true,
		Metadata: NodeMetadata{
			Confidence:   concept.Confidence,
			OriginalText: concept.Name,
			EntityType:   "concept",
			Attributes: map[string]string{
				"description":            concept.Description,
				"related_entities_count": fmt.Sprintf("%d", len(concept.RelatedEntities)),
			},
			PositionIn: pos,
		},
	}
}

func (b *Builder) attributeNode(entity *graph.Entity, attr *graph.Attribute) Node {
	return Node{
		ID:      attr.ID,
		Label:   fmt.Sprintf("%s: %s", attr.Name, attr.Value),
		Type:    NodeAttribute,
		Color:   b.cfg.NodeColors.Attribute,
		Shape:   b.cfg.NodeShapes.Attribute,
		Size:    attributeNodeSize,
		Physics: true,
		Metadata: NodeMetadata{
			Confidence:   attr.Confidence,
			OriginalText: attr.Value,
			EntityType:   attr.Type.String(),
			Attributes: map[string]string{
				"attribute_name": attr.Name,
				"parent_entity":  entity.Name,
			},
		},
	}
}

func (b *Builder) relationshipEdge(rel *graph.Relationship) Edge {
	return Edge{
		ID:     rel.ID,
		From:   rel.SourceID,
		To:     rel.TargetID,
		Label:  rel.Label,
		Color:  b.cfg.NodeColors.Relationship,
		Width:  edgeWidth(rel.Confidence),
		Arrows: "to",
		Type:   EdgeRelationship,
		Metadata: EdgeMetadata{
			Confidence:       rel.Confidence,
			RelationshipType: rel.Type.String(),
			Bidirectional:    false,
			Weight:           rel.Confidence,
		},
	}
}

func (b *Builder) attributeEdge(entity *graph.Entity, attr *graph.Attribute) Edge {
	return Edge{
		ID:     fmt.Sprintf("%s-%s", entity.ID, attr.ID),
		From:   entity.ID,
		To:     attr.ID,
		Label:  "has",
		Color:  "#888888",
		Width:  1.0,
		Arrows: "to",
		Type:   EdgeAttribute,
		Metadata: EdgeMetadata{
			Confidence:       attr.Confidence,
			RelationshipType: "has_attribute",
			Bidirectional:    false,
			Weight:           attr.Confidence,
		},
	}
}

// shouldConnect links a concept to an entity when both carry positions in the
// same or adjacent sentences, or, lacking positions, when either name appears
// inside the other's text.
func shouldConnect(concept *graph.Concept, entity *graph.Entity) bool {
	if concept.Position != nil && entity.Position != nil {
		diff := concept.Position.SentenceIndex - entity.Position.SentenceIndex
		if diff < 0 {
			diff = -diff
		}
		return diff <= 1
	}
	return containsFold(concept.Description, entity.Name) || containsFold(entity.Name, concept.Name)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (b *Builder) conceptEntityEdge(concept *graph.Concept, entity *graph.Entity) Edge {
	return Edge{
		ID:     fmt.Sprintf("%s-%s", concept.ID, entity.ID),
		From:   concept.ID,
		To:     entity.ID,
		Label:  "relates to",
		Color:  "#CCCCCC",
		Width:  1.0,
		Arrows: "to",
		Type:   EdgeConceptEntity,
		Metadata: EdgeMetadata{
			Confidence:       (concept.Confidence + entity.Confidence) / 2,
			RelationshipType: "related_to",
			Bidirectional:    true,
			Weight:           0.5,
		},
	}
}

const attributeNodeSize = 20.0

func entityNodeSize(confidence float64, attributeCount int) float64 {
	return 30.0 * (1 + confidence*0.5) * (1 + float64(attributeCount)*0.1)
}

func conceptNodeSize(confidence float64, relatedCount int) float64 {
	return 25.0 * (1 + confidence*0.3) * (1 + float64(relatedCount)*0.15)
}

func edgeWidth(confidence float64) float64 {
	return 1.0 + confidence*2.0
}
