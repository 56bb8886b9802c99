package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/textgraph/textgraph/pkg/graph"
	"github.com/textgraph/textgraph/pkg/graph/metrics"
	"github.com/textgraph/textgraph/pkg/text"
)

// extractEntitiesPatterns surfaces entities by applying the configured
// patterns to each sentence in order. Matches are deduplicated by exact
// literal text across the whole run; the first occurrence fixes position and
// sentence index.
func (e *Extractor) extractEntitiesPatterns(pt *text.ProcessedText) []graph.Entity {
	seen := mapset.NewSet[string]()
	entities := make([]graph.Entity, 0)

	for idx, sentence := range pt.Sentences {
		for _, pattern := range e.entityPatterns {
			for _, loc := range pattern.FindAllStringIndex(sentence, -1) {
				name := strings.TrimSpace(sentence[loc[0]:loc[1]])
				if len(name) < 2 || seen.Contains(name) {
					continue
				}
				seen.Add(name)

				entityType := classifyEntityType(name)
				entities = append(entities, graph.Entity{
					ID:         uuid.New().String(),
					Name:       name,
					Type:       entityType,
					Attributes: e.entityAttributes(name, sentence),
					Confidence: patternEntityConfidence,
					Position: &graph.TextPosition{
						Start:         loc[0],
						End:           loc[1],
						SentenceIndex: idx,
					},
				})
				metrics.EntitiesExtracted.WithLabelValues(entityType.String(), "pattern").Inc()
			}
		}
	}
	return entities
}

// classifyEntityType assigns a semantic subtype with ordered keyword rules:
// organization keywords first, then the short-proper-noun test, then
// concept keywords, then the open catch-all carrying the lowercased text.
func classifyEntityType(name string) graph.EntityType {
	lower := strings.ToLower(name)

	switch {
	case strings.Contains(lower, "corp") || strings.Contains(lower, "inc") || strings.Contains(lower, "company"):
		return graph.EntityType{Kind: graph.EntityOrganization}
	case startsUppercase(name) && len(strings.Fields(name)) <= 3:
		return graph.EntityType{Kind: graph.EntityPerson}
	case strings.Contains(lower, "system") || strings.Contains(lower, "process") || strings.Contains(lower, "method"):
		return graph.EntityType{Kind: graph.EntityConcept}
	default:
		return graph.OtherEntityType(lower)
	}
}

func startsUppercase(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// entityAttributes builds the synthetic "name" attribute plus an optional
// description derived from the surrounding sentence.
func (e *Extractor) entityAttributes(name, sentence string) []graph.Attribute {
	attrs := []graph.Attribute{{
		ID:         uuid.New().String(),
		Name:       "name",
		Value:      name,
		Type:       graph.AttributeType{Kind: graph.AttributeName},
		Confidence: 1.0,
	}}

	if desc, ok := descriptionFromContext(name, sentence); ok {
		attrs = append(attrs, graph.Attribute{
			ID:         uuid.New().String(),
			Name:       "description",
			Value:      desc,
			Type:       graph.AttributeType{Kind: graph.AttributeDescription},
			Confidence: descriptionConfidence,
		})
	}
	return attrs
}

// descriptionFromContext looks for appositive phrasings such as
// "Alice, a software engineer" or "the red car". First match wins.
func descriptionFromContext(entity, context string) (string, bool) {
	patterns := []string{
		fmt.Sprintf(`%s,?\s+(?:a|an|the)\s+([^,.]+)`, regexp.QuoteMeta(entity)),
		fmt.Sprintf(`(?:a|an|the)\s+([^,\s]+)\s+%s`, regexp.QuoteMeta(entity)),
	}

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		if m := re.FindStringSubmatch(context); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// extractRelationshipsPatterns looks for relationships between entity pairs
// found in the same sentence, in insertion order.
func (e *Extractor) extractRelationshipsPatterns(pt *text.ProcessedText, entities []graph.Entity) []graph.Relationship {
	relationships := make([]graph.Relationship, 0)

	for idx, sentence := range pt.Sentences {
		inSentence := make([]*graph.Entity, 0)
		for i := range entities {
			ent := &entities[i]
			if ent.Position != nil {
				if ent.Position.SentenceIndex == idx {
					inSentence = append(inSentence, ent)
				}
			} else if strings.Contains(sentence, ent.Name) {
				inSentence = append(inSentence, ent)
			}
		}

		for i := 0; i < len(inSentence); i++ {
			for j := i + 1; j < len(inSentence); j++ {
				if rel, ok := e.relationshipBetween(inSentence[i], inSentence[j], sentence, idx); ok {
					relationships = append(relationships, rel)
					metrics.RelationshipsExtracted.WithLabelValues("pattern").Inc()
				}
			}
		}
	}
	return relationships
}

// relationshipBetween tests the configured relationship patterns against the
// substring spanning the two entity occurrences. The first pattern that
// matches anything in the span wins; there is no scoring across patterns.
func (e *Extractor) relationshipBetween(source, target *graph.Entity, sentence string, sentenceIdx int) (graph.Relationship, bool) {
	posSource := strings.Index(sentence, source.Name)
	posTarget := strings.Index(sentence, target.Name)
	if posSource < 0 || posTarget < 0 {
		return graph.Relationship{}, false
	}

	start := min(posSource, posTarget)
	end := max(posSource+len(source.Name), posTarget+len(target.Name))
	span := sentence[start:end]

	for _, pattern := range e.relationshipPatterns {
		if !pattern.MatchString(span) {
			continue
		}
		relType := classifyRelationshipType(span)
		return graph.Relationship{
			ID:         uuid.New().String(),
			SourceID:   source.ID,
			TargetID:   target.ID,
			Type:       relType,
			Label:      relType.FormatLabel(source.Name, target.Name),
			Confidence: patternRelationshipConfidence,
			Position: &graph.TextPosition{
				Start:         start,
				End:           end,
				SentenceIndex: sentenceIdx,
			},
		}, true
	}
	return graph.Relationship{}, false
}

// classifyRelationshipType is a fixed, ordered keyword cascade over the
// spanning substring.
func classifyRelationshipType(span string) graph.RelationshipType {
	lower := strings.ToLower(span)

	switch {
	case strings.Contains(lower, "has") || strings.Contains(lower, "have") || strings.Contains(lower, "owns"):
		return graph.RelationshipType{Kind: graph.RelationHas}
	case strings.Contains(lower, "is") || strings.Contains(lower, "are") || strings.Contains(lower, "was") || strings.Contains(lower, "were"):
		return graph.RelationshipType{Kind: graph.RelationIsA}
	case strings.Contains(lower, "part of") || strings.Contains(lower, "belongs"):
		return graph.RelationshipType{Kind: graph.RelationPartOf}
	case strings.Contains(lower, "connected") || strings.Contains(lower, "linked"):
		return graph.RelationshipType{Kind: graph.RelationConnectedTo}
	case strings.Contains(lower, "uses") || strings.Contains(lower, "utilizes"):
		return graph.RelationshipType{Kind: graph.RelationUses}
	case strings.Contains(lower, "creates") || strings.Contains(lower, "generates"):
		return graph.RelationshipType{Kind: graph.RelationCreates}
	case strings.Contains(lower, "influences") || strings.Contains(lower, "affects"):
		return graph.RelationshipType{Kind: graph.RelationInfluences}
	default:
		return graph.RelationshipType{Kind: graph.RelationRelatedTo}
	}
}

// extractConceptsPatterns mirrors entity detection with a minimum length of
// three characters and a templated description.
func (e *Extractor) extractConceptsPatterns(pt *text.ProcessedText) []graph.Concept {
	seen := mapset.NewSet[string]()
	concepts := make([]graph.Concept, 0)

	for idx, sentence := range pt.Sentences {
		for _, pattern := range e.conceptPatterns {
			for _, loc := range pattern.FindAllStringIndex(sentence, -1) {
				name := strings.TrimSpace(sentence[loc[0]:loc[1]])
				if len(name) < 3 || seen.Contains(name) {
					continue
				}
				seen.Add(name)

				concepts = append(concepts, graph.Concept{
					ID:              uuid.New().String(),
					Name:            name,
					Description:     conceptDescription(name, sentence),
					RelatedEntities: make([]string, 0),
					Confidence:      patternConceptConfidence,
					Position: &graph.TextPosition{
						Start:         loc[0],
						End:           loc[1],
						SentenceIndex: idx,
					},
				})
			}
		}
	}
	return concepts
}

func conceptDescription(name, sentence string) string {
	return fmt.Sprintf("Concept '%s' mentioned in context: %s", name, truncateRunes(sentence, 100))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
