// Package extractor turns processed text into entities, relationships and
// concepts. Two strategies exist: pattern-based matching against configured
// regular expressions, and LLM-backed extraction that degrades to the pattern
// path on any failure. Deep analysis layers three enrichment phases on top of
// the LLM base extraction.
package extractor

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/textgraph/textgraph/pkg/config"
	"github.com/textgraph/textgraph/pkg/graph"
	"github.com/textgraph/textgraph/pkg/graph/metrics"
	"github.com/textgraph/textgraph/pkg/llm"
	"github.com/textgraph/textgraph/pkg/text"
)

// Extraction confidence policy. These are fixed by rule, not computed; tune
// them here rather than inside the matching logic.
const (
	patternEntityConfidence       = 0.7
	patternRelationshipConfidence = 0.6
	patternConceptConfidence      = 0.6
	descriptionConfidence         = 0.7
	contextAttributeConfidence    = 0.7
	enhancedPatternConfidence     = 0.75
	conceptEntityConfidence       = 0.65

	baseConfidenceThreshold = 0.5
	deepConfidenceThreshold = 0.6
)

// Extractor runs entity, relationship and concept detection over processed
// text. All configured patterns are compiled once at construction; a pattern
// that fails to compile aborts construction with a Configuration error.
type Extractor struct {
	cfg                  config.ExtractionConfig
	entityPatterns       []*regexp.Regexp
	relationshipPatterns []*regexp.Regexp
	conceptPatterns      []*regexp.Regexp
	client               llm.Completer
	logger               *logrus.Logger
}

// New builds an Extractor from configuration. When the LLM is enabled the
// configured provider is instantiated; pass a custom client with
// NewWithClient instead to override it.
func New(cfg config.ExtractionConfig) (*Extractor, error) {
	var client llm.Completer
	if cfg.UseLLM {
		client = llm.New(llm.Options{
			Provider: cfg.LLMProvider,
			Model:    cfg.LLMModel,
			Endpoint: cfg.LLMEndpoint,
		})
	}
	return NewWithClient(cfg, client)
}

// NewWithClient builds an Extractor around an explicit completion client.
func NewWithClient(cfg config.ExtractionConfig, client llm.Completer) (*Extractor, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	e := &Extractor{cfg: cfg, client: client, logger: logger}

	var err error
	if e.entityPatterns, err = compilePatterns("entity", cfg.EntityPatterns); err != nil {
		return nil, err
	}
	if e.relationshipPatterns, err = compilePatterns("relationship", cfg.RelationshipPatterns); err != nil {
		return nil, err
	}
	if e.conceptPatterns, err = compilePatterns("concept", cfg.ConceptPatterns); err != nil {
		return nil, err
	}
	return e, nil
}

func compilePatterns(group string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, graph.WrapError(graph.ErrConfiguration, err, "invalid %s pattern %q", group, p)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// ExtractFromText runs the configured strategy over the processed text.
// Entities, relationships and concepts are detected strictly in that order
// because relationship detection consumes the entity list.
func (e *Extractor) ExtractFromText(ctx context.Context, pt *text.ProcessedText) (*graph.ExtractionResult, error) {
	if pt == nil {
		return nil, graph.NewError(graph.ErrTextProcessing, "processed text is nil")
	}

	method := "Pattern-based"
	if e.cfg.UseLLM {
		method = fmt.Sprintf("LLM-%s", e.cfg.LLMModel)
	}

	timer := prometheus.NewTimer(metrics.ExtractionDuration.WithLabelValues(method))
	defer timer.ObserveDuration()
	start := time.Now()

	var entities []graph.Entity
	if e.cfg.UseLLM {
		entities = e.extractEntitiesLLM(ctx, pt)
	} else {
		entities = e.extractEntitiesPatterns(pt)
	}

	var relationships []graph.Relationship
	if e.cfg.UseLLM {
		relationships = e.extractRelationshipsLLM(ctx, pt, entities)
	} else {
		relationships = e.extractRelationshipsPatterns(pt, entities)
	}

	var concepts []graph.Concept
	if e.cfg.UseLLM {
		concepts = e.extractConceptsLLM(ctx, pt)
	} else {
		concepts = e.extractConceptsPatterns(pt)
	}

	e.logger.WithFields(logrus.Fields{
		"entities":      len(entities),
		"relationships": len(relationships),
		"concepts":      len(concepts),
		"method":        method,
	}).Info("extraction complete")

	return &graph.ExtractionResult{
		Entities:      entities,
		Relationships: relationships,
		Concepts:      concepts,
		Metadata: graph.Metadata{
			TotalEntities:       len(entities),
			TotalRelationships:  len(relationships),
			TotalConcepts:       len(concepts),
			ProcessingTimeMS:    time.Since(start).Milliseconds(),
			ConfidenceThreshold: baseConfidenceThreshold,
			ExtractionMethod:    method,
		},
	}, nil
}
