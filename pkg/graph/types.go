package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EntityKind enumerates the closed set of entity classifications.
type EntityKind int

const (
	EntityPerson EntityKind = iota
	EntityPlace
	EntityOrganization
	EntityEvent
	EntityProduct
	EntityConcept
	EntityOther
)

// EntityType is a tagged variant: Kind selects the classification and Label
// carries the original text when Kind is EntityOther.
type EntityType struct {
	Kind  EntityKind
	Label string
}

func OtherEntityType(label string) EntityType {
	return EntityType{Kind: EntityOther, Label: label}
}

var entityKindNames = map[EntityKind]string{
	EntityPerson:       "Person",
	EntityPlace:        "Place",
	EntityOrganization: "Organization",
	EntityEvent:        "Event",
	EntityProduct:      "Product",
	EntityConcept:      "Concept",
}

func (t EntityType) String() string {
	if t.Kind == EntityOther {
		return t.Label
	}
	return entityKindNames[t.Kind]
}

func (t EntityType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *EntityType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseEntityType(s)
	return nil
}

// ParseEntityType maps a free-form type string onto the closed variants,
// case-insensitively. Unrecognized strings keep their original casing in the
// Other payload.
func ParseEntityType(s string) EntityType {
	for kind, name := range entityKindNames {
		if strings.EqualFold(s, name) {
			return EntityType{Kind: kind}
		}
	}
	return OtherEntityType(s)
}

// RelationKind enumerates the closed set of relationship classifications.
type RelationKind int

const (
	RelationHas RelationKind = iota
	RelationIsA
	RelationPartOf
	RelationConnectedTo
	RelationRelatedTo
	RelationContains
	RelationOwns
	RelationUses
	RelationCreates
	RelationInfluences
	RelationOther
)

// RelationshipType is a tagged variant mirroring EntityType.
type RelationshipType struct {
	Kind  RelationKind
	Label string
}

func OtherRelationshipType(label string) RelationshipType {
	return RelationshipType{Kind: RelationOther, Label: label}
}

var relationKindNames = map[RelationKind]string{
	RelationHas:         "Has",
	RelationIsA:         "IsA",
	RelationPartOf:      "PartOf",
	RelationConnectedTo: "ConnectedTo",
	RelationRelatedTo:   "RelatedTo",
	RelationContains:    "Contains",
	RelationOwns:        "Owns",
	RelationUses:        "Uses",
	RelationCreates:     "Creates",
	RelationInfluences:  "Influences",
}

func (t RelationshipType) String() string {
	if t.Kind == RelationOther {
		return t.Label
	}
	return relationKindNames[t.Kind]
}

func (t RelationshipType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *RelationshipType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for kind, name := range relationKindNames {
		if strings.EqualFold(s, name) {
			*t = RelationshipType{Kind: kind}
			return nil
		}
	}
	*t = OtherRelationshipType(s)
	return nil
}

// FormatLabel renders the human-readable phrase for a relationship between
// two named endpoints, e.g. "Alice has Laptop".
func (t RelationshipType) FormatLabel(source, target string) string {
	switch t.Kind {
	case RelationHas:
		return fmt.Sprintf("%s has %s", source, target)
	case RelationIsA:
		return fmt.Sprintf("%s is a %s", source, target)
	case RelationPartOf:
		return fmt.Sprintf("%s is part of %s", source, target)
	case RelationConnectedTo:
		return fmt.Sprintf("%s connected to %s", source, target)
	case RelationRelatedTo:
		return fmt.Sprintf("%s related to %s", source, target)
	case RelationContains:
		return fmt.Sprintf("%s contains %s", source, target)
	case RelationOwns:
		return fmt.Sprintf("%s owns %s", source, target)
	case RelationUses:
		return fmt.Sprintf("%s uses %s", source, target)
	case RelationCreates:
		return fmt.Sprintf("%s creates %s", source, target)
	case RelationInfluences:
		return fmt.Sprintf("%s influences %s", source, target)
	default:
		return fmt.Sprintf("%s %s %s", source, t.Label, target)
	}
}

// AttributeKind enumerates attribute classifications.
type AttributeKind int

const (
	AttributeName AttributeKind = iota
	AttributeDescription
	AttributeLocation
	AttributeDate
	AttributeNumber
	AttributeCategory
	AttributeProperty
	AttributeOtherKind
)

// AttributeType is a tagged variant mirroring EntityType.
type AttributeType struct {
	Kind  AttributeKind
	Label string
}

func OtherAttributeType(label string) AttributeType {
	return AttributeType{Kind: AttributeOtherKind, Label: label}
}

var attributeKindNames = map[AttributeKind]string{
	AttributeName:        "Name",
	AttributeDescription: "Description",
	AttributeLocation:    "Location",
	AttributeDate:        "Date",
	AttributeNumber:      "Number",
	AttributeCategory:    "Category",
	AttributeProperty:    "Property",
}

func (t AttributeType) String() string {
	if t.Kind == AttributeOtherKind {
		return t.Label
	}
	return attributeKindNames[t.Kind]
}

func (t AttributeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *AttributeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for kind, name := range attributeKindNames {
		if strings.EqualFold(s, name) {
			*t = AttributeType{Kind: kind}
			return nil
		}
	}
	*t = OtherAttributeType(s)
	return nil
}

// TextPosition locates a fact in the source text by character offsets and the
// index of the sentence it was found in.
type TextPosition struct {
	Start         int `json:"start"`
	End           int `json:"end"`
	SentenceIndex int `json:"sentence_index"`
}

// Entity is a detected person, place, organization or similar mention.
// Entities are deduplicated by exact literal name within one extraction run.
type Entity struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Type       EntityType    `json:"entity_type"`
	Attributes []Attribute   `json:"attributes"`
	Confidence float64       `json:"confidence"`
	Position   *TextPosition `json:"position,omitempty"`
}

// Attribute is a named property attached to an entity. Every entity carries a
// synthetic "name" attribute at confidence 1.0.
type Attribute struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Value      string        `json:"value"`
	Type       AttributeType `json:"attribute_type"`
	Confidence float64       `json:"confidence"`
}

// Relationship is a directed, labeled connection between two entity or
// concept identifiers.
type Relationship struct {
	ID         string           `json:"id"`
	SourceID   string           `json:"source_entity_id"`
	TargetID   string           `json:"target_entity_id"`
	Type       RelationshipType `json:"relationship_type"`
	Label      string           `json:"label"`
	Confidence float64          `json:"confidence"`
	Position   *TextPosition    `json:"position,omitempty"`
}

// Concept is an extracted abstract idea, system or process mention.
// RelatedEntities is informational only; concept-entity links materialize as
// graph edges instead.
type Concept struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	RelatedEntities []string      `json:"related_entities"`
	Confidence      float64       `json:"confidence"`
	Position        *TextPosition `json:"position,omitempty"`
}

// ExtractionResult owns everything one extraction run produced.
type ExtractionResult struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Concepts      []Concept      `json:"concepts"`
	Metadata      Metadata       `json:"metadata"`
}

// Metadata describes an extraction run.
type Metadata struct {
	TotalEntities       int     `json:"total_entities"`
	TotalRelationships  int     `json:"total_relationships"`
	TotalConcepts       int     `json:"total_concepts"`
	ProcessingTimeMS    int64   `json:"processing_time_ms"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	ExtractionMethod    string  `json:"extraction_method"`
}

// ClampConfidence bounds a confidence score to [0, 1]. Applied wherever a
// score is boosted or taken from an external source.
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
