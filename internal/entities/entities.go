// Copyright EpiMind Project, 2026. All rights reserved.

// Package entities combines the pattern library with a lexical
// named-entity pass to turn normalized document text into typed
// candidate facts. Every candidate keeps the span that produced it so
// the validator and any downstream surface can show provenance.
package entities

import (
	"sort"

	"github.com/razorlong2/epimind-app/internal/normalize"
	"github.com/razorlong2/epimind-app/internal/patterns"
	"github.com/razorlong2/epimind-app/pkg/types"
)

// Extractor applies a pattern registry plus the named-entity
// recognizers to clean text. It holds no cross-call state; one
// Extractor may serve concurrent pipeline runs.
type Extractor struct {
	registry *patterns.Registry
}

// New returns an extractor over the given rule registry.
func New(registry *patterns.Registry) *Extractor {
	return &Extractor{registry: registry}
}

// Registry exposes the underlying rule registry, which the validator
// needs for rule priorities.
func (e *Extractor) Registry() *patterns.Registry {
	return e.registry
}

// Extract produces the candidate fact set for normalized text. An empty
// lang selects the language by detection. Given identical text and
// language the result is identical across runs: both passes are
// rule-driven and the output is sorted by span, then rule identifier.
func (e *Extractor) Extract(cleanText, lang string) []types.CandidateFact {
	if lang == "" {
		lang = normalize.DetectLanguage(cleanText)
	}

	facts := e.registry.Match(cleanText, lang)
	facts = append(facts, recognizeBinomials(cleanText)...)
	facts = append(facts, recognizeAntibiogram(cleanText)...)

	sort.SliceStable(facts, func(i, j int) bool {
		if facts[i].Span.Start != facts[j].Span.Start {
			return facts[i].Span.Start < facts[j].Span.Start
		}
		return facts[i].RuleID < facts[j].RuleID
	})
	return facts
}
