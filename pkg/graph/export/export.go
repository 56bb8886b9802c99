// Package export serializes interactive graphs to HTML, JSON, CSV, GraphML
// and DOT. Every format writes into a networks output directory with
// collision-safe serialized filenames.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/textgraph/textgraph/pkg/graph"
	"github.com/textgraph/textgraph/pkg/graph/builder"
)

// Format selects the output serialization.
type Format string

const (
	FormatHTML    Format = "html"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatGraphML Format = "graphml"
	FormatDOT     Format = "dot"
)

// SupportedFormats lists every format Export accepts, in dispatch order.
func SupportedFormats() []Format {
	return []Format{FormatHTML, FormatJSON, FormatCSV, FormatGraphML, FormatDOT}
}

// ParseFormat maps a user-supplied format name onto a Format,
// case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range SupportedFormats() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", graph.NewError(graph.ErrExport, "unsupported export format %q", s)
}

// extension returns the expected file extension without the dot.
func (f Format) extension() string {
	return string(f)
}

// DefaultOutputDir is where exports land unless overridden.
const DefaultOutputDir = "0_networks"

// Options controls one export run.
type Options struct {
	Format          Format
	IncludeMetadata bool
	IncludeStyling  bool
	CompactOutput   bool
	FilePath        string
	OutputDir       string
}

// DefaultOptions exports styled HTML with full metadata.
func DefaultOptions() Options {
	return Options{
		Format:          FormatHTML,
		IncludeMetadata: true,
		IncludeStyling:  true,
	}
}

// Result describes a completed export.
type Result struct {
	FilePath string
	Content  string
	Metadata Metadata
}

// Metadata describes what was exported.
type Metadata struct {
	ExportTimestamp string
	GraphNodes      int
	GraphEdges      int
	Format          Format
	FileSizeBytes   int
}

// Exporter writes interactive graphs to disk.
type Exporter struct {
	logger *logrus.Logger
}

func New() *Exporter {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return &Exporter{logger: logger}
}

// Export renders the graph in the requested format and writes it to a
// serialized path inside the output directory.
func (e *Exporter) Export(g *builder.InteractiveGraph, opts Options) (*Result, error) {
	if g == nil {
		return nil, graph.NewError(graph.ErrExport, "graph is nil")
	}

	var content string
	var err error
	switch opts.Format {
	case FormatHTML:
		content, err = renderHTML(g)
	case FormatJSON:
		content, err = renderJSON(g, opts)
	case FormatCSV:
		content, err = renderCSV(g), nil
	case FormatGraphML:
		content, err = renderGraphML(g), nil
	case FormatDOT:
		content, err = renderDOT(g), nil
	default:
		return nil, graph.NewError(graph.ErrExport, "unsupported export format %q", opts.Format)
	}
	if err != nil {
		return nil, err
	}

	requested := opts.FilePath
	if requested == "" {
		requested = "graph." + opts.Format.extension()
	}
	outputPath, err := serializedPath(opts.outputDir(), requested)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return nil, graph.WrapError(graph.ErrExport, err, "writing %s export to %q", opts.Format, outputPath)
	}

	e.logger.WithFields(logrus.Fields{
		"format": opts.Format,
		"path":   outputPath,
		"bytes":  len(content),
	}).Info("graph exported")

	result := &Result{
		FilePath: outputPath,
		Metadata: Metadata{
			ExportTimestamp: time.Now().UTC().Format(time.RFC3339),
			GraphNodes:      len(g.Nodes),
			GraphEdges:      len(g.Edges),
			Format:          opts.Format,
			FileSizeBytes:   len(content),
		},
	}
	if !opts.CompactOutput {
		result.Content = content
	}
	return result, nil
}

func (o Options) outputDir() string {
	if o.OutputDir != "" {
		return o.OutputDir
	}
	return DefaultOutputDir
}

// ValidateExportPath checks that the target directory exists and that the
// file extension matches the format.
func ValidateExportPath(filePath string, format Format) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return graph.NewError(graph.ErrExport, "directory does not exist: %s", dir)
		}
	}

	ext := strings.TrimPrefix(filepath.Ext(filePath), ".")
	if ext != "" && !strings.EqualFold(ext, format.extension()) {
		return graph.NewError(graph.ErrExport, "file extension should be .%s for %s format", format.extension(), format)
	}
	return nil
}

// serializedPath joins the requested filename onto the output directory,
// creating it if needed, and appends a _NN counter while the name collides
// with an existing file.
func serializedPath(dir, requested string) (string, error) {
	filename := filepath.Base(requested)
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	if stem == "" || ext == "" {
		return "", graph.NewError(graph.ErrExport, "invalid export filename %q", requested)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", graph.WrapError(graph.ErrExport, err, "creating output directory %q", dir)
	}

	outputPath := filepath.Join(dir, filename)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			return outputPath, nil
		}
		outputPath = filepath.Join(dir, fmt.Sprintf("%s_%02d%s", stem, counter, ext))
	}
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

func escapeDOT(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}
