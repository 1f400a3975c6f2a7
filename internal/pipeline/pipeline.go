// Copyright EpiMind Project, 2026. All rights reserved.

// Package pipeline runs whole-document extraction: OCR, normalization,
// entity extraction and validation, producing a clinical dataset ready
// for scoring. Components are pure and share no cross-call state, so
// independent documents may run concurrently on one Pipeline.
// Cancellation is cooperative per document: a cancelled run discards
// its partial results entirely.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/razorlong2/epimind-app/internal/entities"
	"github.com/razorlong2/epimind-app/internal/normalize"
	"github.com/razorlong2/epimind-app/internal/ocr"
	"github.com/razorlong2/epimind-app/internal/patterns"
	"github.com/razorlong2/epimind-app/internal/validate"
	"github.com/razorlong2/epimind-app/pkg/types"
)

// Stamp carries the caller-supplied context a document cannot provide:
// identities and the admission/evaluation timestamps that drive the
// temporal criterion.
type Stamp struct {
	Patient     string
	Ward        string
	AdmittedAt  time.Time
	EvaluatedAt time.Time
}

// DocumentResult is the outcome of one whole-document run.
type DocumentResult struct {
	// Source is the document path or label.
	Source string `json:"source" yaml:"source"`

	// Language is the pattern-set language used ("ro" or "en").
	Language string `json:"language" yaml:"language"`

	// Text is the normalized document text all spans refer to.
	Text string `json:"text" yaml:"text"`

	// Quality is the heuristic OCR quality estimate (0-100).
	Quality int `json:"quality" yaml:"quality"`

	// OCRConfidence is the engine's mean token confidence, when the
	// engine reported one.
	OCRConfidence float64 `json:"ocr_confidence,omitempty" yaml:"ocr_confidence,omitempty"`

	// Candidates is the full pre-validation candidate set, with spans.
	Candidates []types.CandidateFact `json:"candidates,omitempty" yaml:"candidates,omitempty"`

	// Facts records the validator's per-candidate decisions.
	Facts []types.ValidatedFact `json:"facts,omitempty" yaml:"facts,omitempty"`

	// Warnings lists validation rejections and tie-breaks.
	Warnings []types.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Dataset is the validated clinical dataset. It may be empty:
	// absence of extractable data is a reportable outcome, not an
	// error.
	Dataset types.ClinicalDataset `json:"dataset" yaml:"dataset"`
}

// Pipeline wires the extraction stages together.
type Pipeline struct {
	engine    ocr.Engine
	extractor *entities.Extractor
	validator *validate.Validator
	language  string
}

// New builds a pipeline over an OCR engine and an extractor. An empty
// language means per-document detection. The engine may be nil when
// only RunText is used.
func New(engine ocr.Engine, extractor *entities.Extractor, language string) *Pipeline {
	return &Pipeline{
		engine:    engine,
		extractor: extractor,
		validator: validate.New(extractor.Registry().Priority),
		language:  language,
	}
}

// NewFromConfig assembles a pipeline from a stage configuration: the
// built-in rule registry plus an optional custom rules file, a
// tesseract engine per cfg.OCR, and the configured pattern-set
// language. A rule-file identifier collision is a startup error.
func NewFromConfig(cfg types.PipelineConfig) (*Pipeline, error) {
	registry := patterns.Builtin()
	if cfg.Extraction.RulesFile != "" {
		if err := patterns.MergeFile(registry, cfg.Extraction.RulesFile); err != nil {
			return nil, err
		}
	}
	return New(ocr.NewTesseract(cfg.OCR), entities.New(registry), cfg.Extraction.Language), nil
}

// Run recognizes one image document and extracts a dataset from it.
// OCR failure (including timeout) is a pipeline-level failure for this
// document only.
func (p *Pipeline) Run(ctx context.Context, imagePath string, stamp Stamp) (*DocumentResult, error) {
	if p.engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", ocr.ErrEngine)
	}

	text, err := p.engine.Recognize(ctx, imagePath)
	if err != nil {
		return nil, err
	}

	res, err := p.RunText(ctx, imagePath, text.Content, stamp)
	if err != nil {
		return nil, err
	}
	res.OCRConfidence = text.MeanConfidence()
	return res, nil
}

// RunText extracts a dataset from already-recognized text, the entry
// point for pre-OCR'd documents. Normalization is idempotent, so text
// that was already cleaned extracts identically.
func (p *Pipeline) RunText(ctx context.Context, source, rawText string, stamp Stamp) (*DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lang := p.language
	if lang == "" {
		lang = normalize.DetectLanguage(rawText)
	}
	clean := normalize.Normalize(rawText, lang)

	candidates := p.extractor.Extract(clean, lang)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vres := p.validator.Validate(candidates)

	ds := vres.Dataset
	ds.Patient = stamp.Patient
	ds.Ward = stamp.Ward
	ds.AdmittedAt = stamp.AdmittedAt
	ds.EvaluatedAt = stamp.EvaluatedAt

	return &DocumentResult{
		Source:     source,
		Language:   lang,
		Text:       clean,
		Quality:    normalize.Quality(clean),
		Candidates: candidates,
		Facts:      vres.Facts,
		Warnings:   vres.Warnings,
		Dataset:    ds,
	}, nil
}

// Summary holds counts from a batch run.
type Summary struct {
	Processed int
	Failed    int
}

// Total returns the number of documents attempted.
func (s Summary) Total() int { return s.Processed + s.Failed }

// HasFailures reports whether any document failed.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// Batch processes multiple documents, printing per-file status lines to
// w. One document's failure never aborts the batch; context
// cancellation stops it between documents.
func (p *Pipeline) Batch(ctx context.Context, paths []string, stamp Stamp, w io.Writer) (Summary, []*DocumentResult) {
	var summary Summary
	var results []*DocumentResult

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(w, "stopped: %v\n", err)
			break
		}

		res, err := p.Run(ctx, path, stamp)
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "processed: %s (quality %d%%, %d facts, %d warnings)\n",
			path, res.Quality, len(res.Facts), len(res.Warnings))
		summary.Processed++
		results = append(results, res)
	}

	fmt.Fprintf(w, "\nBatch summary: %d processed, %d failed (total: %d)\n",
		summary.Processed, summary.Failed, summary.Total())
	return summary, results
}
