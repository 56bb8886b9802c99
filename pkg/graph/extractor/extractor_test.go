package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textgraph/textgraph/pkg/config"
	"github.com/textgraph/textgraph/pkg/graph"
	"github.com/textgraph/textgraph/pkg/text"
)

func processText(t *testing.T, raw string) *text.ProcessedText {
	t.Helper()
	p, err := text.NewProcessor(text.Options{})
	require.NoError(t, err)
	pt, err := p.Process(raw, text.SourceDocument)
	require.NoError(t, err)
	return pt
}

func newPatternExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(config.Default().Extraction)
	require.NoError(t, err)
	return e
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	cfg := config.Default().Extraction
	cfg.EntityPatterns = []string{`[unclosed`}

	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, graph.IsKind(err, graph.ErrConfiguration))
}

func TestExtractFromTextRejectsNilInput(t *testing.T) {
	e := newPatternExtractor(t)

	_, err := e.ExtractFromText(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, graph.IsKind(err, graph.ErrTextProcessing))
}

func TestPatternEntityExtraction(t *testing.T) {
	e := newPatternExtractor(t)
	pt := processText(t, "Alice has a laptop and Bob is happy. Alice writes code.")

	result, err := e.ExtractFromText(context.Background(), pt)
	require.NoError(t, err)

	names := make(map[string]graph.Entity)
	for _, ent := range result.Entities {
		names[ent.Name] = ent
	}

	// "Alice" appears in two sentences but is extracted once.
	require.Contains(t, names, "Alice")
	require.Contains(t, names, "Bob")
	alice := names["Alice"]
	assert.Equal(t, graph.EntityPerson, alice.Type.Kind)
	assert.Equal(t, 0.7, alice.Confidence)
	require.NotNil(t, alice.Position)
	assert.Equal(t, 0, alice.Position.SentenceIndex)

	assert.Equal(t, "Pattern-based", result.Metadata.ExtractionMethod)
	assert.Equal(t, 0.5, result.Metadata.ConfidenceThreshold)
	assert.Equal(t, len(result.Entities), result.Metadata.TotalEntities)
}

func TestEntityNameAttribute(t *testing.T) {
	e := newPatternExtractor(t)
	pt := processText(t, "Alice writes code.")

	result, err := e.ExtractFromText(context.Background(), pt)
	require.NoError(t, err)
	require.NotEmpty(t, result.Entities)

	alice := result.Entities[0]
	require.NotEmpty(t, alice.Attributes)
	assert.Equal(t, "name", alice.Attributes[0].Name)
	assert.Equal(t, "Alice", alice.Attributes[0].Value)
	assert.Equal(t, 1.0, alice.Attributes[0].Confidence)
}

func TestEntityDescriptionFromContext(t *testing.T) {
	e := newPatternExtractor(t)
	pt := processText(t, "Alice, a software engineer, joined recently.")

	result, err := e.ExtractFromText(context.Background(), pt)
	require.NoError(t, err)

	var alice *graph.Entity
	for i := range result.Entities {
		if result.Entities[i].Name == "Alice" {
			alice = &result.Entities[i]
		}
	}
	require.NotNil(t, alice)

	var desc *graph.Attribute
	for i := range alice.Attributes {
		if alice.Attributes[i].Name == "description" {
			desc = &alice.Attributes[i]
		}
	}
	require.NotNil(t, desc)
	assert.Equal(t, "software engineer", desc.Value)
	assert.Equal(t, 0.7, desc.Confidence)
}

func TestClassifyEntityType(t *testing.T) {
	assert.Equal(t, graph.EntityOrganization, classifyEntityType("Acme Corp").Kind)
	assert.Equal(t, graph.EntityOrganization, classifyEntityType("TechCorp").Kind)
	assert.Equal(t, graph.EntityPerson, classifyEntityType("Alice").Kind)
	assert.Equal(t, graph.EntityPerson, classifyEntityType("Alice Marie Smith").Kind)

	// Four capitalized words exceed the proper noun heuristic.
	long := classifyEntityType("Alice Marie Smith Jones")
	assert.Equal(t, graph.EntityOther, long.Kind)
	assert.Equal(t, "alice marie smith jones", long.Label)

	assert.Equal(t, graph.EntityConcept, classifyEntityType("billing system").Kind)
}

func TestPatternRelationshipExtraction(t *testing.T) {
	e := newPatternExtractor(t)
	pt := processText(t, "Alice has a laptop and Bob is happy.")

	result, err := e.ExtractFromText(context.Background(), pt)
	require.NoError(t, err)
	require.NotEmpty(t, result.Relationships)

	rel := result.Relationships[0]
	assert.Equal(t, graph.RelationHas, rel.Type.Kind)
	assert.Equal(t, "Alice has Bob", rel.Label)
	assert.Equal(t, 0.6, rel.Confidence)

	ids := make(map[string]bool)
	for _, ent := range result.Entities {
		ids[ent.ID] = true
	}
	assert.True(t, ids[rel.SourceID])
	assert.True(t, ids[rel.TargetID])
}

func TestRelationshipRequiresSharedSentence(t *testing.T) {
	e := newPatternExtractor(t)
	pt := processText(t, "Alice writes code. Bob draws diagrams.")

	result, err := e.ExtractFromText(context.Background(), pt)
	require.NoError(t, err)
	assert.Empty(t, result.Relationships)
}

func TestClassifyRelationshipType(t *testing.T) {
	assert.Equal(t, graph.RelationHas, classifyRelationshipType("Alice has a laptop").Kind)
	assert.Equal(t, graph.RelationIsA, classifyRelationshipType("Bob is tired").Kind)
	assert.Equal(t, graph.RelationPartOf, classifyRelationshipType("wheel part of car").Kind)
	assert.Equal(t, graph.RelationConnectedTo, classifyRelationshipType("linked together").Kind)
	assert.Equal(t, graph.RelationUses, classifyRelationshipType("app uses cache").Kind)
	assert.Equal(t, graph.RelationCreates, classifyRelationshipType("job creates report").Kind)
	assert.Equal(t, graph.RelationInfluences, classifyRelationshipType("price influences demand").Kind)
	assert.Equal(t, graph.RelationRelatedTo, classifyRelationshipType("foo near bar").Kind)
}

func TestPatternConceptExtraction(t *testing.T) {
	e := newPatternExtractor(t)
	pt := processText(t, "The billing system follows a strict process.")

	result, err := e.ExtractFromText(context.Background(), pt)
	require.NoError(t, err)

	names := make(map[string]graph.Concept)
	for _, c := range result.Concepts {
		names[c.Name] = c
	}
	require.Contains(t, names, "system")
	require.Contains(t, names, "process")

	system := names["system"]
	assert.Equal(t, 0.6, system.Confidence)
	assert.Contains(t, system.Description, "Concept 'system' mentioned in context:")
	assert.Empty(t, system.RelatedEntities)
}

func TestConceptDescriptionTruncation(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcde"
	}
	desc := conceptDescription("system", long)
	assert.Contains(t, desc, long[:100])
	assert.NotContains(t, desc, long)
}
