package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/textgraph/textgraph/pkg/graph"
	"github.com/textgraph/textgraph/pkg/graph/metrics"
	"github.com/textgraph/textgraph/pkg/text"
)

const entityPrompt = `Analyze the following text and extract entities (people, places, organizations, concepts, systems, processes).

Text: "%s"

Please respond with a JSON array of entities in this exact format:
[
  {
    "name": "entity_name",
    "type": "Person|Place|Organization|System|Process|Concept|Other",
    "confidence": 0.8
  }
]

Only return the JSON array, no other text.`

const relationshipPrompt = `Analyze the following text and identify relationships between these entities: %s

Text: "%s"

Please respond with a JSON array of relationships in this exact format:
[
  {
    "from": "entity1_name",
    "to": "entity2_name",
    "relationship": "relationship_type",
    "confidence": 0.8
  }
]

Only return the JSON array, no other text.`

const conceptPrompt = `Analyze the following text and extract key concepts, ideas, systems, processes, and methods.

Text: "%s"

Please respond with a JSON array of concepts in this exact format:
[
  {
    "name": "concept_name",
    "description": "brief description of the concept",
    "confidence": 0.8
  }
]

Only return the JSON array, no other text.`

// bracketPayload isolates the JSON array from a completion that may wrap it
// in prose. It slices from the first '[' to the last ']'; when either bracket
// is missing the respective bound defaults to the string edge, so validation
// happens on whatever remains. When the last ']' precedes the first '[' the
// reply has no bracketed span at all and is returned whole, leaving the
// JSON validation to reject it.
func bracketPayload(response string) string {
	start := strings.Index(response, "[")
	if start < 0 {
		start = 0
	}
	end := strings.LastIndex(response, "]")
	if end < 0 {
		end = len(response)
	} else {
		end++
	}
	if end <= start {
		return response
	}
	return response[start:end]
}

func decodePayload(response string, v interface{}) error {
	payload := bracketPayload(response)
	if !gjson.Valid(payload) {
		return errors.Errorf("completion payload is not valid JSON: %.60s", payload)
	}
	return errors.Wrap(json.Unmarshal([]byte(payload), v), "decode completion payload")
}

type llmEntity struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type llmRelationship struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	Relationship string  `json:"relationship"`
	Confidence   float64 `json:"confidence"`
}

type llmConcept struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// extractEntitiesLLM asks the model for entities and falls back to the
// pattern extractor on any call or parse failure.
func (e *Extractor) extractEntitiesLLM(ctx context.Context, pt *text.ProcessedText) []graph.Entity {
	response, err := e.client.Complete(ctx, fmt.Sprintf(entityPrompt, pt.CleanedText))
	if err != nil {
		return e.fallbackEntities(pt, "call", err)
	}

	entities, err := parseLLMEntities(response)
	if err != nil {
		return e.fallbackEntities(pt, "parse", err)
	}

	for _, ent := range entities {
		metrics.EntitiesExtracted.WithLabelValues(ent.Type.String(), "llm").Inc()
	}
	e.logger.WithField("entities", len(entities)).Info("llm entity extraction complete")
	return entities
}

func (e *Extractor) fallbackEntities(pt *text.ProcessedText, reason string, err error) []graph.Entity {
	metrics.LLMFallbacks.WithLabelValues("entity", reason).Inc()
	e.logger.WithError(err).Warn("llm entity extraction failed, falling back to patterns")
	return e.extractEntitiesPatterns(pt)
}

func parseLLMEntities(response string) ([]graph.Entity, error) {
	var raw []llmEntity
	if err := decodePayload(response, &raw); err != nil {
		return nil, err
	}

	entities := make([]graph.Entity, 0, len(raw))
	for _, le := range raw {
		entities = append(entities, graph.Entity{
			ID:   uuid.New().String(),
			Name: le.Name,
			Type: mapLLMEntityType(le.Type),
			Attributes: []graph.Attribute{{
				ID:         uuid.New().String(),
				Name:       "extraction_method",
				Value:      "LLM",
				Type:       graph.OtherAttributeType("method"),
				Confidence: 1.0,
			}},
			Confidence: graph.ClampConfidence(le.Confidence),
		})
	}
	return entities, nil
}

// mapLLMEntityType keeps System, Process and Concept as open variants with
// canonical capitalization instead of folding Concept into the closed kind,
// so model-reported subtypes stay distinguishable from keyword-classified
// ones.
func mapLLMEntityType(s string) graph.EntityType {
	switch strings.ToLower(s) {
	case "person":
		return graph.EntityType{Kind: graph.EntityPerson}
	case "place":
		return graph.EntityType{Kind: graph.EntityPlace}
	case "organization":
		return graph.EntityType{Kind: graph.EntityOrganization}
	case "system":
		return graph.OtherEntityType("System")
	case "process":
		return graph.OtherEntityType("Process")
	case "concept":
		return graph.OtherEntityType("Concept")
	default:
		return graph.OtherEntityType(s)
	}
}

// extractRelationshipsLLM asks the model for relationships between the known
// entities. With no entities to relate, or on any failure, the pattern path
// runs instead.
func (e *Extractor) extractRelationshipsLLM(ctx context.Context, pt *text.ProcessedText, entities []graph.Entity) []graph.Relationship {
	if len(entities) == 0 {
		return e.extractRelationshipsPatterns(pt, entities)
	}

	names := make([]string, len(entities))
	for i, ent := range entities {
		names[i] = fmt.Sprintf("%q", ent.Name)
	}
	prompt := fmt.Sprintf(relationshipPrompt, "["+strings.Join(names, ", ")+"]", pt.CleanedText)

	response, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return e.fallbackRelationships(pt, entities, "call", err)
	}

	relationships, err := parseLLMRelationships(response, entities)
	if err != nil {
		return e.fallbackRelationships(pt, entities, "parse", err)
	}

	for range relationships {
		metrics.RelationshipsExtracted.WithLabelValues("llm").Inc()
	}
	e.logger.WithField("relationships", len(relationships)).Info("llm relationship extraction complete")
	return relationships
}

func (e *Extractor) fallbackRelationships(pt *text.ProcessedText, entities []graph.Entity, reason string, err error) []graph.Relationship {
	metrics.LLMFallbacks.WithLabelValues("relationship", reason).Inc()
	e.logger.WithError(err).Warn("llm relationship extraction failed, falling back to patterns")
	return e.extractRelationshipsPatterns(pt, entities)
}

// parseLLMRelationships resolves endpoint names case-insensitively against
// the known entities. Relationships naming an unknown endpoint are dropped,
// not errors.
func parseLLMRelationships(response string, entities []graph.Entity) ([]graph.Relationship, error) {
	var raw []llmRelationship
	if err := decodePayload(response, &raw); err != nil {
		return nil, err
	}

	byName := make(map[string]*graph.Entity, len(entities))
	for i := range entities {
		byName[strings.ToLower(entities[i].Name)] = &entities[i]
	}

	relationships := make([]graph.Relationship, 0, len(raw))
	for _, lr := range raw {
		source, okSource := byName[strings.ToLower(lr.From)]
		target, okTarget := byName[strings.ToLower(lr.To)]
		if !okSource || !okTarget {
			continue
		}
		relationships = append(relationships, graph.Relationship{
			ID:         uuid.New().String(),
			SourceID:   source.ID,
			TargetID:   target.ID,
			Type:       graph.OtherRelationshipType(lr.Relationship),
			Label:      lr.Relationship,
			Confidence: graph.ClampConfidence(lr.Confidence),
		})
	}
	return relationships, nil
}

// extractConceptsLLM asks the model for concepts and falls back to the
// pattern extractor on any failure.
func (e *Extractor) extractConceptsLLM(ctx context.Context, pt *text.ProcessedText) []graph.Concept {
	response, err := e.client.Complete(ctx, fmt.Sprintf(conceptPrompt, pt.CleanedText))
	if err != nil {
		return e.fallbackConcepts(pt, "call", err)
	}

	concepts, err := parseLLMConcepts(response)
	if err != nil {
		return e.fallbackConcepts(pt, "parse", err)
	}

	e.logger.WithField("concepts", len(concepts)).Info("llm concept extraction complete")
	return concepts
}

func (e *Extractor) fallbackConcepts(pt *text.ProcessedText, reason string, err error) []graph.Concept {
	metrics.LLMFallbacks.WithLabelValues("concept", reason).Inc()
	e.logger.WithError(err).Warn("llm concept extraction failed, falling back to patterns")
	return e.extractConceptsPatterns(pt)
}

func parseLLMConcepts(response string) ([]graph.Concept, error) {
	var raw []llmConcept
	if err := decodePayload(response, &raw); err != nil {
		return nil, err
	}

	concepts := make([]graph.Concept, 0, len(raw))
	for _, lc := range raw {
		concepts = append(concepts, graph.Concept{
			ID:              uuid.New().String(),
			Name:            lc.Name,
			Description:     lc.Description,
			RelatedEntities: make([]string, 0),
			Confidence:      graph.ClampConfidence(lc.Confidence),
		})
	}
	return concepts, nil
}
