// Copyright EpiMind Project, 2026. All rights reserved.

// Package ocr invokes an external optical character recognition engine
// on document images. The engine is an opaque external dependency: the
// pipeline receives only the recognized text and optional per-token
// confidence. Engine failures (binary missing, timeout) are a distinct
// failure class from extraction soft failures and leave the
// manual-entry path available as a fallback.
package ocr

import (
	"context"
	"errors"
)

// ErrEngine marks an external OCR dependency failure: the engine binary
// is unavailable, crashed, or timed out. It is never used for documents
// that simply yield poor text.
var ErrEngine = errors.New("ocr engine failure")

// TokenConfidence carries the engine's confidence for one recognized
// token, in [0,1].
type TokenConfidence struct {
	Token      string  `json:"token" yaml:"token"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Text is the output of one recognition run.
type Text struct {
	// Content is the raw recognized text, before normalization.
	Content string `json:"content" yaml:"content"`

	// Tokens holds per-token confidences when the engine provides
	// them. May be nil.
	Tokens []TokenConfidence `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// MeanConfidence averages the per-token confidences, or returns 0 when
// none are available.
func (t Text) MeanConfidence() float64 {
	if len(t.Tokens) == 0 {
		return 0
	}
	var sum float64
	for _, tok := range t.Tokens {
		sum += tok.Confidence
	}
	return sum / float64(len(t.Tokens))
}

// Engine recognizes text in a document image. The caller bounds the
// invocation with a context deadline; expiry fails that one document,
// never the process.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (Text, error)
}
