package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textgraph/textgraph/pkg/graph"
)

func TestDeepAnalysisRequiresLLM(t *testing.T) {
	e := newPatternExtractor(t)
	pt := processText(t, "Alice works here.")

	_, err := e.ExtractWithDeepAnalysis(context.Background(), pt)
	require.Error(t, err)
	assert.True(t, graph.IsKind(err, graph.ErrEntityExtraction))
}

func TestDeepAnalysisEnhancedRelationships(t *testing.T) {
	client := &scriptedClient{
		entities: `[{"name": "alice", "type": "Person", "confidence": 0.9},
{"name": "bob", "type": "Person", "confidence": 0.9}]`,
		relationships: `[]`,
		concepts:      `[]`,
	}

	e := newLLMExtractor(t, client)
	pt := processText(t, "alice manages bob every day.")

	result, err := e.ExtractWithDeepAnalysis(context.Background(), pt)
	require.NoError(t, err)

	require.Len(t, result.Relationships, 1)
	rel := result.Relationships[0]
	assert.Equal(t, "manages", rel.Label)
	assert.Equal(t, graph.RelationOther, rel.Type.Kind)
	assert.Equal(t, 0.75, rel.Confidence)
	assert.Equal(t, result.Entities[0].ID, rel.SourceID)
	assert.Equal(t, result.Entities[1].ID, rel.TargetID)

	assert.Equal(t, "Deep-Analysis-LLM-llama3.2", result.Metadata.ExtractionMethod)
	assert.Equal(t, 0.6, result.Metadata.ConfidenceThreshold)
}

func TestDeepAnalysisContextualAttributes(t *testing.T) {
	client := &scriptedClient{
		entities:      `[{"name": "alice", "type": "Person", "confidence": 0.9}]`,
		relationships: `[]`,
		concepts:      `[]`,
	}

	e := newLLMExtractor(t, client)
	pt := processText(t, "alice manager duties cover the database migration.")

	result, err := e.ExtractWithDeepAnalysis(context.Background(), pt)
	require.NoError(t, err)
	require.Len(t, result.Entities, 1)

	attrs := make(map[string]graph.Attribute)
	for _, a := range result.Entities[0].Attributes {
		attrs[a.Name] = a
	}

	require.Contains(t, attrs, "contextual_role")
	assert.Equal(t, "management_role", attrs["contextual_role"].Value)
	assert.Equal(t, 0.7, attrs["contextual_role"].Confidence)

	require.Contains(t, attrs, "domain")
	assert.Equal(t, "data_management", attrs["domain"].Value)
}

func TestDeepAnalysisConceptEntityLinks(t *testing.T) {
	client := &scriptedClient{
		entities:      `[{"name": "Alice", "type": "Person", "confidence": 0.8}]`,
		relationships: `[]`,
		concepts:      `[{"name": "mentorship", "description": "Alice guides new hires", "confidence": 0.7}]`,
	}

	e := newLLMExtractor(t, client)
	pt := processText(t, "Alice guides new hires through mentorship.")

	result, err := e.ExtractWithDeepAnalysis(context.Background(), pt)
	require.NoError(t, err)

	require.Len(t, result.Relationships, 1)
	rel := result.Relationships[0]
	assert.Equal(t, result.Concepts[0].ID, rel.SourceID)
	assert.Equal(t, result.Entities[0].ID, rel.TargetID)
	assert.Equal(t, graph.RelationRelatedTo, rel.Type.Kind)
	assert.Equal(t, "relates to", rel.Label)
	assert.Equal(t, 0.65, rel.Confidence)
}
