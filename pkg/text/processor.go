package text

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jdkato/prose/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/textgraph/textgraph/pkg/graph"
)

// SourceType tags where a piece of text came from. It is carried through as
// metadata only; processing does not branch on it.
type SourceType string

const (
	SourceChatMessage SourceType = "chat_message"
	SourceDocument    SourceType = "document"
	SourceEmail       SourceType = "email"
	SourceArticle     SourceType = "article"
	SourceUnknown     SourceType = "unknown"
)

// ParseSourceType maps a user-supplied tag onto a SourceType, defaulting to
// SourceUnknown.
func ParseSourceType(s string) SourceType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chat", "chat_message", "message":
		return SourceChatMessage
	case "document", "doc":
		return SourceDocument
	case "email":
		return SourceEmail
	case "article":
		return SourceArticle
	default:
		return SourceUnknown
	}
}

// ProcessedText is the normalized input consumed by the extraction engine.
type ProcessedText struct {
	OriginalText string   `json:"original_text"`
	Sentences    []string `json:"sentences"`
	Words        []string `json:"words"`
	CleanedText  string   `json:"cleaned_text"`
	Metadata     Metadata `json:"metadata"`
}

// Metadata summarizes a processed text.
type Metadata struct {
	WordCount      int        `json:"word_count"`
	SentenceCount  int        `json:"sentence_count"`
	CharacterCount int        `json:"character_count"`
	Language       string     `json:"language"`
	SourceType     SourceType `json:"source_type"`
}

// Options configures a Processor.
type Options struct {
	RemoveStopwords bool
	StopwordsFile   string
	CustomStopwords []string
}

// Processor normalizes raw text into sentences and a filtered word list.
type Processor struct {
	cleanupRE  *regexp.Regexp
	spaceRE    *regexp.Regexp
	wordRE     *regexp.Regexp
	stopwords  mapset.Set[string]
	filterStop bool
	logger     *logrus.Logger
}

var defaultStopwords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at",
	"to", "for", "of", "with", "by", "is", "are", "was", "were",
}

// NewProcessor builds a Processor. The stopwords file, when given, holds one
// word per line; custom stopwords are merged on top of the default set.
func NewProcessor(opts Options) (*Processor, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	stopwords := mapset.NewSet[string]()
	for _, w := range defaultStopwords {
		stopwords.Add(w)
	}
	if opts.StopwordsFile != "" {
		loaded, err := loadStopwordsFile(opts.StopwordsFile)
		if err != nil {
			return nil, graph.WrapError(graph.ErrConfiguration, err, "loading stopwords file %q", opts.StopwordsFile)
		}
		stopwords = loaded
	}
	for _, w := range opts.CustomStopwords {
		stopwords.Add(strings.ToLower(strings.TrimSpace(w)))
	}

	return &Processor{
		cleanupRE:  regexp.MustCompile(`[^\w\s.,!?;:\-()\[\]]`),
		spaceRE:    regexp.MustCompile(`\s+`),
		wordRE:     regexp.MustCompile(`\b\w+\b`),
		stopwords:  stopwords,
		filterStop: opts.RemoveStopwords,
		logger:     logger,
	}, nil
}

func loadStopwordsFile(path string) (mapset.Set[string], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open stopwords file")
	}
	defer f.Close()

	words := mapset.NewSet[string]()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word != "" && !strings.HasPrefix(word, "#") {
			words.Add(word)
		}
	}
	return words, errors.Wrap(scanner.Err(), "read stopwords file")
}

// Process normalizes raw text. Empty or whitespace-only input is a fatal
// TextProcessing error.
func (p *Processor) Process(raw string, source SourceType) (*ProcessedText, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, graph.NewError(graph.ErrTextProcessing, "input text is empty")
	}

	cleaned := p.clean(raw)

	sentences, err := p.splitSentences(cleaned)
	if err != nil {
		return nil, graph.WrapError(graph.ErrTextProcessing, err, "sentence segmentation failed")
	}

	words := p.extractWords(cleaned)

	processed := &ProcessedText{
		OriginalText: raw,
		Sentences:    sentences,
		Words:        words,
		CleanedText:  cleaned,
		Metadata: Metadata{
			WordCount:      len(words),
			SentenceCount:  len(sentences),
			CharacterCount: len(raw),
			Language:       detectLanguage(cleaned),
			SourceType:     source,
		},
	}

	p.logger.WithFields(logrus.Fields{
		"sentences": len(sentences),
		"words":     len(words),
		"language":  processed.Metadata.Language,
	}).Debug("text processed")

	return processed, nil
}

func (p *Processor) clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = p.cleanupRE.ReplaceAllString(s, " ")
	s = p.spaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func (p *Processor) splitSentences(cleaned string) ([]string, error) {
	doc, err := prose.NewDocument(cleaned,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}

	sentences := make([]string, 0, len(doc.Sentences()))
	for _, sent := range doc.Sentences() {
		trimmed := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(sent.Text), ".!?"))
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences, nil
}

func (p *Processor) extractWords(cleaned string) []string {
	matches := p.wordRE.FindAllString(cleaned, -1)
	words := make([]string, 0, len(matches))
	for _, m := range matches {
		word := strings.ToLower(m)
		if p.filterStop && p.stopwords.Contains(word) {
			continue
		}
		words = append(words, word)
	}
	return words
}

// ExtractContextWindows returns a sliding window of words centered on each
// word position. Useful for context-sensitive downstream analysis.
func (p *Processor) ExtractContextWindows(text string, windowSize int) []string {
	words := strings.Fields(text)
	windows := make([]string, 0, len(words))

	for i := range words {
		start := 0
		if i >= windowSize/2 {
			start = i - windowSize/2
		}
		end := i + windowSize/2 + 1
		if end > len(words) {
			end = len(words)
		}
		windows = append(windows, strings.Join(words[start:end], " "))
	}
	return windows
}

var (
	nounPhraseRE    = regexp.MustCompile(`\b(?:[A-Z][a-z]*\s*){1,3}\b`)
	importantTermRE = regexp.MustCompile(`\b(?:important|key|main|primary|essential|critical|vital|crucial)\s+\w+\b`)
)

// ExtractKeyPhrases pulls capitalized noun phrases and emphasized terms from
// the text, longest first, deduplicated.
func (p *Processor) ExtractKeyPhrases(text string) []string {
	phrases := make([]string, 0)
	for _, m := range nounPhraseRE.FindAllString(text, -1) {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			phrases = append(phrases, trimmed)
		}
	}
	for _, m := range importantTermRE.FindAllString(text, -1) {
		phrases = append(phrases, strings.TrimSpace(m))
	}

	sort.SliceStable(phrases, func(i, j int) bool {
		return len(phrases[i]) > len(phrases[j])
	})

	seen := mapset.NewSet[string]()
	unique := phrases[:0]
	for _, phrase := range phrases {
		if seen.Contains(phrase) {
			continue
		}
		seen.Add(phrase)
		unique = append(unique, phrase)
	}
	return unique
}

// detectLanguage is a naive ratio check against common English words; real
// language identification is out of scope.
func detectLanguage(text string) string {
	common := map[string]bool{
		"the": true, "and": true, "or": true, "but": true, "in": true,
		"on": true, "at": true, "to": true, "for": true, "of": true,
		"with": true, "by": true,
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "unknown"
	}

	hits := 0
	for _, f := range fields {
		if common[strings.ToLower(f)] {
			hits++
		}
	}

	if float64(hits)/float64(len(fields)) > 0.1 {
		return "english"
	}
	return "unknown"
}
