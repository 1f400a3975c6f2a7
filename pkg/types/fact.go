// Copyright EpiMind Project, 2026. All rights reserved.

package types

// FactKind categorizes a candidate fact produced by extraction.
type FactKind string

const (
	KindValue      FactKind = "value"
	KindPathogen   FactKind = "pathogen"
	KindResistance FactKind = "resistance"
	KindDevice     FactKind = "device"
)

// Span locates a match inside the normalized document text, as byte
// offsets (start inclusive, end exclusive).
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// CandidateFact is one extraction match before validation. Candidates
// live for a single extraction run: the validator consumes them and they
// are never persisted.
type CandidateFact struct {
	// Kind categorizes the fact.
	Kind FactKind `json:"kind" yaml:"kind"`

	// Field is the logical field the producing rule targets.
	Field FieldID `json:"field" yaml:"field"`

	// Raw is the exact matched text span, kept for provenance.
	Raw string `json:"raw" yaml:"raw"`

	// Span locates Raw in the normalized text.
	Span Span `json:"span" yaml:"span"`

	// Value is the normalized numeric value for KindValue facts.
	Value float64 `json:"value,omitempty" yaml:"value,omitempty"`

	// Text is the normalized entity text for pathogen, resistance and
	// device facts (canonical organism or marker name).
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Unit is the reporting unit for numeric facts, when the rule
	// declares one.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Confidence is the source confidence in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// RuleID names the extraction rule that produced this candidate.
	RuleID string `json:"rule_id" yaml:"rule_id"`
}

// ValidationOutcome records the validator's decision for a fact.
type ValidationOutcome string

const (
	OutcomeAccepted    ValidationOutcome = "accepted"
	OutcomeWithWarning ValidationOutcome = "accepted-with-warning"
	OutcomeRejected    ValidationOutcome = "rejected"
)

// ValidatedFact is a candidate promoted (or rejected) by the validator.
type ValidatedFact struct {
	CandidateFact `yaml:",inline"`

	// Outcome is the validation decision.
	Outcome ValidationOutcome `json:"outcome" yaml:"outcome"`

	// Reason explains a rejection or warning. Empty when accepted clean.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Warning records one auditable validation event: a rejection, a
// tie-break between competing candidates, or a cascaded rejection.
type Warning struct {
	// Field is the logical field the warning concerns.
	Field FieldID `json:"field" yaml:"field"`

	// Reason explains what happened.
	Reason string `json:"reason" yaml:"reason"`

	// Values lists the competing or rejected raw values involved.
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
}
