package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityType(t *testing.T) {
	assert.Equal(t, EntityType{Kind: EntityPerson}, ParseEntityType("person"))
	assert.Equal(t, EntityType{Kind: EntityOrganization}, ParseEntityType("ORGANIZATION"))
	assert.Equal(t, EntityType{Kind: EntityConcept}, ParseEntityType("Concept"))

	// Unrecognized types keep their original casing.
	other := ParseEntityType("Widget")
	assert.Equal(t, EntityOther, other.Kind)
	assert.Equal(t, "Widget", other.Label)
}

func TestEntityTypeJSON(t *testing.T) {
	data, err := json.Marshal(EntityType{Kind: EntityPlace})
	require.NoError(t, err)
	assert.Equal(t, `"Place"`, string(data))

	data, err = json.Marshal(OtherEntityType("System"))
	require.NoError(t, err)
	assert.Equal(t, `"System"`, string(data))

	var parsed EntityType
	require.NoError(t, json.Unmarshal([]byte(`"organization"`), &parsed))
	assert.Equal(t, EntityOrganization, parsed.Kind)
}

func TestRelationshipTypeFormatLabel(t *testing.T) {
	assert.Equal(t, "Alice has Laptop",
		RelationshipType{Kind: RelationHas}.FormatLabel("Alice", "Laptop"))
	assert.Equal(t, "Bob is a Manager",
		RelationshipType{Kind: RelationIsA}.FormatLabel("Bob", "Manager"))
	assert.Equal(t, "API is part of System",
		RelationshipType{Kind: RelationPartOf}.FormatLabel("API", "System"))
	assert.Equal(t, "Server manages Cluster",
		OtherRelationshipType("manages").FormatLabel("Server", "Cluster"))
}

func TestRelationshipTypeJSON(t *testing.T) {
	var parsed RelationshipType
	require.NoError(t, json.Unmarshal([]byte(`"ConnectedTo"`), &parsed))
	assert.Equal(t, RelationConnectedTo, parsed.Kind)

	require.NoError(t, json.Unmarshal([]byte(`"depends_on"`), &parsed))
	assert.Equal(t, RelationOther, parsed.Kind)
	assert.Equal(t, "depends_on", parsed.Label)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.3))
	assert.Equal(t, 0.5, ClampConfidence(0.5))
	assert.Equal(t, 1.0, ClampConfidence(1.7))
}

func TestErrorKinds(t *testing.T) {
	base := NewError(ErrExport, "unsupported format %q", "xml")
	assert.EqualError(t, base, `export error: unsupported format "xml"`)
	assert.True(t, IsKind(base, ErrExport))
	assert.False(t, IsKind(base, ErrConfiguration))

	wrapped := WrapError(ErrConfiguration, base, "loading config")
	assert.True(t, IsKind(wrapped, ErrConfiguration))
	assert.ErrorIs(t, wrapped, base)
}
