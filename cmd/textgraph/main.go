// Command textgraph converts text into interactive entity relationship
// graphs. It processes input text, extracts entities, relationships and
// concepts, builds a styled graph and exports it to HTML, JSON, CSV, GraphML
// or DOT.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/textgraph/textgraph/pkg/config"
	"github.com/textgraph/textgraph/pkg/graph"
	"github.com/textgraph/textgraph/pkg/graph/builder"
	"github.com/textgraph/textgraph/pkg/graph/export"
	"github.com/textgraph/textgraph/pkg/graph/extractor"
	"github.com/textgraph/textgraph/pkg/llm"
	"github.com/textgraph/textgraph/pkg/text"
)

const version = "0.1.0"

func main() {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}

	root := &cobra.Command{
		Use:     "textgraph",
		Short:   "Convert text into interactive entity relationship graphs",
		Version: version,
	}

	root.AddCommand(
		newGenerateCmd(),
		newAnalyzeCmd(),
		newInitConfigCmd(),
		newExampleCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type generateFlags struct {
	input           string
	output          string
	sourceType      string
	configPath      string
	format          string
	layout          string
	includeMetadata bool
	useLLM          bool
	deepAnalysis    bool
	llmModel        string
	llmEndpoint     string
}

func newGenerateCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Process text and generate an interactive graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "input text file path")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file path")
	cmd.Flags().StringVarP(&flags.sourceType, "source-type", "s", "document", "source type of the input text")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "configuration file path (JSON or YAML)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "html", "export format (html, json, csv, graphml, dot)")
	cmd.Flags().StringVar(&flags.layout, "layout", "", "layout algorithm (hierarchical, circular, force)")
	cmd.Flags().BoolVar(&flags.includeMetadata, "include-metadata", false, "include metadata in export")
	cmd.Flags().BoolVar(&flags.useLLM, "use-llm", false, "use LLM for enhanced extraction")
	cmd.Flags().BoolVar(&flags.deepAnalysis, "deep-analysis", false, "use deep analysis with LLM for comprehensive extraction")
	cmd.Flags().StringVar(&flags.llmModel, "llm-model", "llama3.2", "LLM model to use")
	cmd.Flags().StringVar(&flags.llmEndpoint, "llm-endpoint", "http://localhost:11434/api/generate", "LLM endpoint URL")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runGenerate(ctx context.Context, flags generateFlags) error {
	raw, err := os.ReadFile(flags.input)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return graph.NewError(graph.ErrTextProcessing, "input file is empty")
	}
	fmt.Printf("Loaded text from %s (%d characters)\n", flags.input, len(raw))

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.useLLM {
		cfg.Extraction.UseLLM = true
		cfg.Extraction.LLMModel = flags.llmModel
		cfg.Extraction.LLMEndpoint = flags.llmEndpoint
	}
	if flags.layout != "" {
		cfg.Layout.Algorithm = flags.layout
	}

	processor, err := text.NewProcessor(text.Options{
		RemoveStopwords: cfg.TextProcessing.RemoveStopwords,
		StopwordsFile:   cfg.TextProcessing.StopwordsFile,
		CustomStopwords: cfg.TextProcessing.CustomStopwords,
	})
	if err != nil {
		return err
	}

	processed, err := processor.Process(string(raw), text.ParseSourceType(flags.sourceType))
	if err != nil {
		return err
	}
	fmt.Printf("Text processed: %d words, %d sentences\n",
		processed.Metadata.WordCount, processed.Metadata.SentenceCount)

	ext, err := extractor.New(cfg.Extraction)
	if err != nil {
		return err
	}

	var result *graph.ExtractionResult
	if flags.deepAnalysis {
		result, err = ext.ExtractWithDeepAnalysis(ctx, processed)
	} else {
		result, err = ext.ExtractFromText(ctx, processed)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Extracted: %d entities, %d relationships, %d concepts\n",
		result.Metadata.TotalEntities, result.Metadata.TotalRelationships, result.Metadata.TotalConcepts)

	b := builder.New(cfg)
	g, err := b.Build(result, string(raw))
	if err != nil {
		return err
	}
	b.ApplyLayout(g)
	fmt.Printf("Graph built: %d nodes, %d edges\n", len(g.Nodes), len(g.Edges))

	format, err := export.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	if err := export.ValidateExportPath(flags.output, format); err != nil {
		return err
	}

	exportResult, err := export.New().Export(g, export.Options{
		Format:          format,
		IncludeMetadata: flags.includeMetadata,
		IncludeStyling:  true,
		CompactOutput:   true,
		FilePath:        flags.output,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Graph exported to %s (%d bytes)\n",
		exportResult.FilePath, exportResult.Metadata.FileSizeBytes)
	if format == export.FormatHTML {
		fmt.Println("Open the HTML file in your web browser to view the interactive graph.")
	}
	return nil
}

type analyzeFlags struct {
	input        string
	verbose      bool
	configPath   string
	useLLM       bool
	deepAnalysis bool
}

func newAnalyzeCmd() *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Validate and process text without generating output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "input text file path")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "show detailed analysis")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "configuration file path (JSON or YAML)")
	cmd.Flags().BoolVar(&flags.useLLM, "use-llm", false, "use LLM for the extraction preview")
	cmd.Flags().BoolVar(&flags.deepAnalysis, "deep-analysis", false, "use deep analysis with LLM for the extraction preview")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runAnalyze(ctx context.Context, flags analyzeFlags) error {
	raw, err := os.ReadFile(flags.input)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return graph.NewError(graph.ErrTextProcessing, "input file is empty")
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.useLLM || flags.deepAnalysis {
		cfg.Extraction.UseLLM = true
	}

	processor, err := text.NewProcessor(text.Options{
		RemoveStopwords: cfg.TextProcessing.RemoveStopwords,
		StopwordsFile:   cfg.TextProcessing.StopwordsFile,
		CustomStopwords: cfg.TextProcessing.CustomStopwords,
	})
	if err != nil {
		return err
	}

	processed, err := processor.Process(string(raw), text.SourceDocument)
	if err != nil {
		return err
	}

	fmt.Println("\nTEXT ANALYSIS RESULTS")
	fmt.Println("========================")
	fmt.Printf("Original length: %d characters\n", len(raw))
	fmt.Printf("Word count: %d\n", processed.Metadata.WordCount)
	fmt.Printf("Sentence count: %d\n", processed.Metadata.SentenceCount)
	fmt.Printf("Detected language: %s\n", processed.Metadata.Language)
	fmt.Printf("Source type: %s\n", processed.Metadata.SourceType)

	if flags.verbose {
		fmt.Println("\nDETAILED ANALYSIS")
		fmt.Println("====================")

		keyPhrases := processor.ExtractKeyPhrases(processed.CleanedText)
		fmt.Printf("Key phrases found: %d\n", len(keyPhrases))
		for i, phrase := range keyPhrases {
			if i >= 10 {
				break
			}
			fmt.Printf("  %d. %s\n", i+1, phrase)
		}

		ext, err := extractor.New(cfg.Extraction)
		if err != nil {
			return err
		}
		var result *graph.ExtractionResult
		if flags.deepAnalysis {
			result, err = ext.ExtractWithDeepAnalysis(ctx, processed)
		} else {
			result, err = ext.ExtractFromText(ctx, processed)
		}
		if err != nil {
			return err
		}

		fmt.Println("\nENTITY EXTRACTION PREVIEW")
		fmt.Println("============================")
		fmt.Printf("Entities found: %d\n", len(result.Entities))
		for i, entity := range result.Entities {
			if i >= 5 {
				break
			}
			fmt.Printf("  %d. %s (Type: %s, Confidence: %.2f)\n",
				i+1, entity.Name, entity.Type, entity.Confidence)
		}

		fmt.Printf("Relationships found: %d\n", len(result.Relationships))
		for i, rel := range result.Relationships {
			if i >= 5 {
				break
			}
			fmt.Printf("  %d. %s\n", i+1, rel.Label)
		}

		fmt.Printf("Concepts found: %d\n", len(result.Concepts))
		for i, concept := range result.Concepts {
			if i >= 5 {
				break
			}
			fmt.Printf("  %d. %s\n", i+1, concept.Name)
		}
	}

	fmt.Println("\nAnalysis complete.")
	return nil
}

func newInitConfigCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Generate a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Configuration file created: %s\n", output)
			fmt.Println("Edit this file to customize graph appearance and extraction settings.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "graph_config.json", "output path for the configuration file")
	return cmd
}

const exampleText = `Alice is a software engineer who works at TechCorp. She is responsible for developing the main application that the company uses for customer relationship management. The application has several important features including user authentication, data visualization, and report generation.

Bob, who is Alice's colleague, manages the database system that stores all the customer information. The database system is connected to the main application through a secure API. This API ensures that data flows efficiently between different components of the system.

The customer relationship management system helps the company track interactions with clients. Each client has a unique profile that contains their contact information, purchase history, and communication preferences. The system also generates automated reports that help the sales team understand customer behavior patterns.

TechCorp uses advanced analytics to process the customer data. The analytics module identifies trends and patterns that can help improve customer satisfaction. These insights are shared with the marketing team to develop targeted campaigns.

The development team, led by Carol, continuously improves the system by adding new features and fixing bugs. They use agile methodology to manage their development process. Regular meetings are held to discuss progress and plan future enhancements.`

func newExampleCmd() *cobra.Command {
	var (
		generateText  bool
		generateStory bool
		wordCount     int
		llmModel      string
		llmEndpoint   string
		output        string
	)

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Generate example input text",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case generateStory:
				return generateAIStory(cmd.Context(), output, wordCount, llmModel, llmEndpoint)
			case generateText:
				if err := os.WriteFile(output, []byte(exampleText), 0o644); err != nil {
					return err
				}
				fmt.Printf("Example text file created: %s\n", output)
				fmt.Println("Use this file to test graph generation:")
				fmt.Printf("  textgraph generate -i %s -o example_graph.html\n", output)
				return nil
			default:
				return cmd.Help()
			}
		},
	}

	cmd.Flags().BoolVarP(&generateText, "generate-text", "g", false, "write the built-in example text file")
	cmd.Flags().BoolVar(&generateStory, "generate-ai-story", false, "generate a story with the configured LLM")
	cmd.Flags().IntVar(&wordCount, "word-count", 200, "number of words for the generated story")
	cmd.Flags().StringVar(&llmModel, "llm-model", "llama3.2", "LLM model to use for story generation")
	cmd.Flags().StringVar(&llmEndpoint, "llm-endpoint", "http://localhost:11434/api/generate", "LLM endpoint URL for story generation")
	cmd.Flags().StringVarP(&output, "output", "o", "example_text.txt", "output path for example text")

	return cmd
}

func generateAIStory(ctx context.Context, output string, wordCount int, model, endpoint string) error {
	fmt.Printf("Generating a story of about %d words with %s...\n", wordCount, model)

	prompt := fmt.Sprintf(
		"Write a short story of approximately %d words that includes several characters, "+
			"locations, and organizations. The story should have clear relationships between "+
			"entities (people, places, companies) that would be good for creating an entity "+
			"relationship graph. Include names of people, places, and organizations. "+
			"Make it interesting and suitable for network analysis. "+
			"Only return the story text, no additional commentary.", wordCount)

	client := llm.New(llm.Options{Provider: "ollama", Model: model, Endpoint: endpoint})
	story, err := client.Complete(ctx, prompt)
	if err != nil {
		return graph.WrapError(graph.ErrEntityExtraction, err, "story generation failed")
	}

	story = strings.TrimSpace(story)
	if err := os.WriteFile(output, []byte(story), 0o644); err != nil {
		return err
	}

	fmt.Printf("AI-generated story created: %s (%d words)\n", output, len(strings.Fields(story)))
	fmt.Println("Use this file to test graph generation:")
	fmt.Printf("  textgraph generate -i %s -o story_graph.html\n", output)
	return nil
}
