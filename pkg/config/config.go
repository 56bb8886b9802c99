// Package config owns the configuration surface of the graph pipeline:
// visual styling, layout, physics, extraction patterns and text processing.
// Files are loaded with viper, so JSON and YAML are both accepted.
package config

import (
	"regexp"

	"github.com/spf13/viper"

	"github.com/textgraph/textgraph/pkg/graph"
)

// Config is the full pipeline configuration.
type Config struct {
	NodeColors     NodeColors           `json:"node_colors" mapstructure:"node_colors"`
	NodeShapes     NodeShapes           `json:"node_shapes" mapstructure:"node_shapes"`
	Layout         LayoutConfig         `json:"layout" mapstructure:"layout"`
	Physics        PhysicsConfig        `json:"physics" mapstructure:"physics"`
	Extraction     ExtractionConfig     `json:"extraction" mapstructure:"extraction"`
	TextProcessing TextProcessingConfig `json:"text_processing" mapstructure:"text_processing"`
}

// NodeColors assigns a color per node role.
type NodeColors struct {
	Entity       string `json:"entity" mapstructure:"entity"`
	Relationship string `json:"relationship" mapstructure:"relationship"`
	Concept      string `json:"concept" mapstructure:"concept"`
	Attribute    string `json:"attribute" mapstructure:"attribute"`
}

// NodeShapes assigns a vis-network shape per node role.
type NodeShapes struct {
	Entity       string `json:"entity" mapstructure:"entity"`
	Relationship string `json:"relationship" mapstructure:"relationship"`
	Concept      string `json:"concept" mapstructure:"concept"`
	Attribute    string `json:"attribute" mapstructure:"attribute"`
}

// LayoutConfig selects the coordinate-assignment algorithm.
type LayoutConfig struct {
	Algorithm    string  `json:"algorithm" mapstructure:"algorithm"`
	Spacing      float64 `json:"spacing" mapstructure:"spacing"`
	Hierarchical bool    `json:"hierarchical" mapstructure:"hierarchical"`
}

// PhysicsConfig is embedded into exported graphs for the renderer; layout
// math never reads it.
type PhysicsConfig struct {
	Enabled        bool    `json:"enabled" mapstructure:"enabled"`
	Stabilization  bool    `json:"stabilization" mapstructure:"stabilization"`
	Repulsion      float64 `json:"repulsion" mapstructure:"repulsion"`
	SpringLength   float64 `json:"spring_length" mapstructure:"spring_length"`
	SpringConstant float64 `json:"spring_constant" mapstructure:"spring_constant"`
}

// ExtractionConfig drives the extraction engine.
type ExtractionConfig struct {
	UseLLM               bool     `json:"use_llm" mapstructure:"use_llm"`
	LLMProvider          string   `json:"llm_provider" mapstructure:"llm_provider"`
	LLMModel             string   `json:"llm_model" mapstructure:"llm_model"`
	LLMEndpoint          string   `json:"llm_endpoint" mapstructure:"llm_endpoint"`
	EntityPatterns       []string `json:"entity_patterns" mapstructure:"entity_patterns"`
	RelationshipPatterns []string `json:"relationship_patterns" mapstructure:"relationship_patterns"`
	ConceptPatterns      []string `json:"concept_patterns" mapstructure:"concept_patterns"`
}

// TextProcessingConfig drives input normalization.
type TextProcessingConfig struct {
	RemoveStopwords bool     `json:"remove_stopwords" mapstructure:"remove_stopwords"`
	StopwordsFile   string   `json:"stopwords_file,omitempty" mapstructure:"stopwords_file"`
	CustomStopwords []string `json:"custom_stopwords,omitempty" mapstructure:"custom_stopwords"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		NodeColors: NodeColors{
			Entity:       "#FF6B6B",
			Relationship: "#4ECDC4",
			Concept:      "#45B7D1",
			Attribute:    "#FFA07A",
		},
		NodeShapes: NodeShapes{
			Entity:       "ellipse",
			Relationship: "box",
			Concept:      "circle",
			Attribute:    "diamond",
		},
		Layout: LayoutConfig{
			Algorithm:    "hierarchical",
			Spacing:      200,
			Hierarchical: true,
		},
		Physics: PhysicsConfig{
			Enabled:        true,
			Stabilization:  true,
			Repulsion:      200,
			SpringLength:   150,
			SpringConstant: 0.04,
		},
		Extraction: ExtractionConfig{
			UseLLM:      false,
			LLMProvider: "ollama",
			LLMModel:    "llama3.2",
			LLMEndpoint: "http://localhost:11434/api/generate",
			EntityPatterns: []string{
				`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`,
				`\b(?:person|people|individual|user|customer|client)\b`,
			},
			RelationshipPatterns: []string{
				`\b(?:has|have|is|are|was|were|contains|includes|owns|belongs)\b`,
				`\b(?:connected to|related to|associated with|linked to)\b`,
			},
			ConceptPatterns: []string{
				`\b(?:concept|idea|principle|theory|method|approach|strategy)\b`,
				`\b(?:system|process|workflow|procedure|protocol)\b`,
			},
		},
		TextProcessing: TextProcessingConfig{
			RemoveStopwords: true,
		},
	}
}

// Load reads a config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, graph.WrapError(graph.ErrConfiguration, err, "reading config file %q", path)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, graph.WrapError(graph.ErrConfiguration, err, "decoding config file %q", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that every configured pattern compiles. Called at startup;
// a bad pattern aborts initialization.
func (c Config) Validate() error {
	groups := map[string][]string{
		"entity":       c.Extraction.EntityPatterns,
		"relationship": c.Extraction.RelationshipPatterns,
		"concept":      c.Extraction.ConceptPatterns,
	}
	for group, patterns := range groups {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return graph.WrapError(graph.ErrConfiguration, err, "invalid %s pattern %q", group, p)
			}
		}
	}
	return nil
}
