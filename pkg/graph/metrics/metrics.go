package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Extraction metrics
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "extraction_duration_seconds",
			Help: "Time spent extracting facts from text",
		},
		[]string{"method"},
	)

	EntitiesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_entities_total",
			Help: "Number of entities extracted",
		},
		[]string{"entity_type", "method"},
	)

	RelationshipsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_relationships_total",
			Help: "Number of relationships extracted",
		},
		[]string{"method"},
	)

	LLMFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_llm_fallbacks_total",
			Help: "Number of LLM calls that degraded to pattern extraction",
		},
		[]string{"fact_type", "reason"},
	)

	// Graph metrics
	GraphNodeCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graph_nodes_total",
			Help: "Total number of nodes in the last built graph",
		},
		[]string{"node_type"},
	)

	GraphEdgeCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graph_edges_total",
			Help: "Total number of edges in the last built graph",
		},
		[]string{"edge_type"},
	)
)
