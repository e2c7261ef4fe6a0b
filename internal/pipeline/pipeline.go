package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dmelnic/storylens/internal/detect"
	"github.com/dmelnic/storylens/internal/relation"
	"github.com/dmelnic/storylens/internal/textproc"
	"github.com/dmelnic/storylens/internal/traits"
	"github.com/dmelnic/storylens/pkg/models"
)

// Config holds the settings for an analysis run.
type Config struct {
	Detect   detect.Config
	Relation relation.Config
	Logger   *log.Logger
}

// Analyzer runs the full document pipeline: cleaning, segmentation,
// character detection, trait extraction, and relation extraction.
type Analyzer struct {
	detector  *detect.Detector
	traits    *traits.Extractor
	relations *relation.Extractor
	logger    *log.Logger

	now   func() time.Time
	newID func() string
}

// NewAnalyzer creates an Analyzer. Zero-valued config fields fall back
// to defaults.
func NewAnalyzer(cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{
		detector:  detect.NewDetector(cfg.Detect),
		traits:    traits.NewExtractor(),
		relations: relation.NewExtractor(cfg.Relation),
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// AnalyzeText analyzes one document already loaded into memory. An
// empty document yields an empty, well-formed analysis.
func (a *Analyzer) AnalyzeText(filename, text string) (*models.Analysis, error) {
	cleaned := textproc.CleanText(text)
	sentences, err := textproc.SegmentSentences(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to segment %s: %w", filename, err)
	}

	result, err := a.detector.Detect(sentences)
	if err != nil {
		return nil, fmt.Errorf("character detection failed for %s: %w", filename, err)
	}

	characters := make([]models.Character, 0, len(result.Characters))
	for _, c := range result.Characters {
		if len(c.Mentions) == 0 {
			a.logger.Warn("skipping character with no mentions",
				"file", filename, "character", c.Name)
			continue
		}
		characters = append(characters, c)
	}

	traitRecords, err := a.traits.Extract(sentences, characters)
	if err != nil {
		return nil, fmt.Errorf("trait extraction failed for %s: %w", filename, err)
	}

	relations, err := a.relations.Extract(sentences, relation.MentionsFromSets(result.BySentence))
	if err != nil {
		return nil, fmt.Errorf("relation extraction failed for %s: %w", filename, err)
	}

	a.logger.Info("analyzed document",
		"file", filename,
		"sentences", len(sentences),
		"characters", len(characters),
		"relations", len(relations))

	return &models.Analysis{
		ID:            a.newID(),
		Filename:      filename,
		ProcessedAt:   a.now().UTC(),
		SentenceCount: len(sentences),
		Characters:    characters,
		Traits:        traitRecords,
		Relations:     relations,
	}, nil
}

// AnalyzeFile reads and analyzes one document from disk.
func (a *Analyzer) AnalyzeFile(path string) (*models.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return a.AnalyzeText(filepath.Base(path), string(data))
}

// BatchResult is the outcome for one document in a batch run.
type BatchResult struct {
	Path     string
	Analysis *models.Analysis
	Err      error
}

// Batch analyzes documents sequentially. A failed document is recorded
// and the run continues with the next one.
func (a *Analyzer) Batch(paths []string) []BatchResult {
	results := make([]BatchResult, 0, len(paths))
	for _, path := range paths {
		analysis, err := a.AnalyzeFile(path)
		if err != nil {
			a.logger.Error("document analysis failed", "file", path, "error", err)
		}
		results = append(results, BatchResult{Path: path, Analysis: analysis, Err: err})
	}
	return results
}
