package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/textgraph/textgraph/pkg/graph"
	"github.com/textgraph/textgraph/pkg/graph/metrics"
	"github.com/textgraph/textgraph/pkg/text"
)

// Supplementary verb patterns used only by deep analysis. These run over the
// lowercased cleaned text, so entity names are matched case-insensitively.
var enhancedRelationshipPatterns = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`(\w+)\s+manages?\s+(\w+)`), "manages"},
	{regexp.MustCompile(`(\w+)\s+depends?\s+on\s+(\w+)`), "depends_on"},
	{regexp.MustCompile(`(\w+)\s+implements?\s+(\w+)`), "implements"},
	{regexp.MustCompile(`(\w+)\s+inherits?\s+from\s+(\w+)`), "inherits_from"},
	{regexp.MustCompile(`(\w+)\s+communicates?\s+with\s+(\w+)`), "communicates_with"},
	{regexp.MustCompile(`(\w+)\s+provides?\s+(\w+)`), "provides"},
	{regexp.MustCompile(`(\w+)\s+requires?\s+(\w+)`), "requires"},
}

// Role indicators checked as adjacent word pairs around an entity name.
var rolePatterns = []struct{ keyword, role string }{
	{"manager", "management_role"},
	{"developer", "technical_role"},
	{"customer", "business_role"},
	{"user", "user_role"},
	{"system", "system_component"},
	{"process", "business_process"},
}

// Domain indicators checked anywhere in the text.
var domainPatterns = []struct{ keyword, domain string }{
	{"database", "data_management"},
	{"server", "infrastructure"},
	{"application", "software"},
	{"network", "networking"},
	{"security", "cybersecurity"},
}

// ExtractWithDeepAnalysis layers three enrichment phases on top of the LLM
// base extraction: supplementary verb-pattern relationships, contextual
// entity attributes, and concept-to-entity links. It requires the LLM to be
// enabled; there is no pattern-only deep mode.
func (e *Extractor) ExtractWithDeepAnalysis(ctx context.Context, pt *text.ProcessedText) (*graph.ExtractionResult, error) {
	if !e.cfg.UseLLM {
		return nil, graph.NewError(graph.ErrEntityExtraction, "deep analysis requires LLM to be enabled")
	}
	if pt == nil {
		return nil, graph.NewError(graph.ErrTextProcessing, "processed text is nil")
	}

	method := fmt.Sprintf("Deep-Analysis-LLM-%s", e.cfg.LLMModel)
	timer := prometheus.NewTimer(metrics.ExtractionDuration.WithLabelValues(method))
	defer timer.ObserveDuration()
	start := time.Now()

	entities := e.extractEntitiesLLM(ctx, pt)
	relationships := e.extractRelationshipsLLM(ctx, pt, entities)
	concepts := e.extractConceptsLLM(ctx, pt)

	e.logger.WithFields(logrus.Fields{
		"entities":      len(entities),
		"relationships": len(relationships),
		"concepts":      len(concepts),
	}).Info("deep analysis base extraction complete")

	relationships = append(relationships, e.extractEnhancedRelationships(pt, entities)...)
	entities = enhanceEntitiesWithContext(pt, entities)
	relationships = append(relationships, conceptEntityRelationships(concepts, entities)...)

	return &graph.ExtractionResult{
		Entities:      entities,
		Relationships: relationships,
		Concepts:      concepts,
		Metadata: graph.Metadata{
			TotalEntities:       len(entities),
			TotalRelationships:  len(relationships),
			TotalConcepts:       len(concepts),
			ProcessingTimeMS:    time.Since(start).Milliseconds(),
			ConfidenceThreshold: deepConfidenceThreshold,
			ExtractionMethod:    method,
		},
	}, nil
}

// extractEnhancedRelationships matches the supplementary verb patterns over
// the lowercased text and keeps only captures that resolve to known entities.
func (e *Extractor) extractEnhancedRelationships(pt *text.ProcessedText, entities []graph.Entity) []graph.Relationship {
	byName := make(map[string]*graph.Entity, len(entities))
	for i := range entities {
		byName[strings.ToLower(entities[i].Name)] = &entities[i]
	}

	lowered := strings.ToLower(pt.CleanedText)
	relationships := make([]graph.Relationship, 0)

	for _, ep := range enhancedRelationshipPatterns {
		for _, m := range ep.pattern.FindAllStringSubmatch(lowered, -1) {
			source, okSource := byName[m[1]]
			target, okTarget := byName[m[2]]
			if !okSource || !okTarget {
				continue
			}
			relationships = append(relationships, graph.Relationship{
				ID:         uuid.New().String(),
				SourceID:   source.ID,
				TargetID:   target.ID,
				Type:       graph.OtherRelationshipType(ep.label),
				Label:      ep.label,
				Confidence: enhancedPatternConfidence,
			})
			metrics.RelationshipsExtracted.WithLabelValues("enhanced_pattern").Inc()
		}
	}
	return relationships
}

// enhanceEntitiesWithContext appends contextual_role and domain attributes
// derived from keyword co-occurrence, and boosts confidence for entities
// whose context yields more than two signals.
func enhanceEntitiesWithContext(pt *text.ProcessedText, entities []graph.Entity) []graph.Entity {
	for i := range entities {
		info := analyzeEntityContext(pt, entities[i].Name)

		if role, ok := info["role"]; ok {
			entities[i].Attributes = append(entities[i].Attributes, graph.Attribute{
				ID:         uuid.New().String(),
				Name:       "contextual_role",
				Value:      role,
				Type:       graph.OtherAttributeType("role"),
				Confidence: contextAttributeConfidence,
			})
		}
		if domain, ok := info["domain"]; ok {
			entities[i].Attributes = append(entities[i].Attributes, graph.Attribute{
				ID:         uuid.New().String(),
				Name:       "domain",
				Value:      domain,
				Type:       graph.OtherAttributeType("domain"),
				Confidence: contextAttributeConfidence,
			})
		}

		if len(info) > 2 {
			entities[i].Confidence = graph.ClampConfidence(entities[i].Confidence * 1.2)
		}
	}
	return entities
}

func analyzeEntityContext(pt *text.ProcessedText, entityName string) map[string]string {
	info := make(map[string]string)
	lowered := strings.ToLower(pt.CleanedText)
	entity := strings.ToLower(entityName)

	for _, rp := range rolePatterns {
		if strings.Contains(lowered, entity+" "+rp.keyword) || strings.Contains(lowered, rp.keyword+" "+entity) {
			info["role"] = rp.role
			break
		}
	}

	for _, dp := range domainPatterns {
		if strings.Contains(lowered, dp.keyword) {
			info["domain"] = dp.domain
			break
		}
	}
	return info
}

// conceptEntityRelationships links each concept to every entity its
// description mentions, case-insensitively.
func conceptEntityRelationships(concepts []graph.Concept, entities []graph.Entity) []graph.Relationship {
	relationships := make([]graph.Relationship, 0)
	for _, concept := range concepts {
		description := strings.ToLower(concept.Description)
		for _, entity := range entities {
			if !strings.Contains(description, strings.ToLower(entity.Name)) {
				continue
			}
			relationships = append(relationships, graph.Relationship{
				ID:         uuid.New().String(),
				SourceID:   concept.ID,
				TargetID:   entity.ID,
				Type:       graph.RelationshipType{Kind: graph.RelationRelatedTo},
				Label:      "relates to",
				Confidence: conceptEntityConfidence,
			})
		}
	}
	return relationships
}
