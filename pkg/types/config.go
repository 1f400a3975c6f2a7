package types

import "time"

// Band is one threshold step: points awarded once the observed value
// reaches Min.
type Band struct {
	// Min is the inclusive lower bound for this band.
	Min float64 `json:"min" yaml:"min"`

	// Points is the contribution when the value falls in this band.
	Points int `json:"points" yaml:"points"`
}

// LabBand configures the threshold-banded contribution of one
// laboratory marker. Bands are evaluated highest Min first; the first
// band at or below the value applies.
type LabBand struct {
	// Field is the marker this banding applies to.
	Field FieldID `json:"field" yaml:"field"`

	// Bands lists the threshold steps.
	Bands []Band `json:"bands" yaml:"bands"`

	// LowPoints is an optional contribution when the value falls below
	// Low (e.g. leukopenia). Zero disables the low band.
	Low       float64 `json:"low,omitempty" yaml:"low,omitempty"`
	LowPoints int     `json:"low_points,omitempty" yaml:"low_points,omitempty"`
}

// CutPoints maps the composite score to an ordinal risk level. Scores
// below Moderate are low risk.
type CutPoints struct {
	Moderate int `json:"moderate" yaml:"moderate"`
	High     int `json:"high" yaml:"high"`
	Critical int `json:"critical" yaml:"critical"`
}

// ScoringConfig holds every clinical constant used by the risk engine.
// All weights, bands and cut-points are configuration rather than
// hard-coded values so institutions can align them with local protocols.
type ScoringConfig struct {
	// EligibilityHours is the minimum hospitalization duration for a
	// healthcare-associated infection to qualify (default 48).
	EligibilityHours float64 `json:"eligibility_hours" yaml:"eligibility_hours"`

	// TemporalBands award points by hospitalization duration in hours.
	TemporalBands []Band `json:"temporal_bands" yaml:"temporal_bands"`

	// DeviceWeights is the base contribution per device type.
	DeviceWeights map[DeviceType]int `json:"device_weights" yaml:"device_weights"`

	// DeviceDurationBands add a bonus by days in place.
	DeviceDurationBands []Band `json:"device_duration_bands" yaml:"device_duration_bands"`

	// DeviceScoreCap bounds the accumulated device subscore.
	DeviceScoreCap int `json:"device_score_cap" yaml:"device_score_cap"`

	// CulturePoints is the contribution of one positive culture.
	CulturePoints int `json:"culture_points" yaml:"culture_points"`

	// ResistancePoints is the controlled resistance-marker vocabulary
	// with the contribution of each marker. A marker appearing in a
	// dataset but absent here violates a structural invariant.
	ResistancePoints map[string]int `json:"resistance_points" yaml:"resistance_points"`

	// PolymicrobialMultiplier scales a culture's contribution when more
	// than one organism grew.
	PolymicrobialMultiplier float64 `json:"polymicrobial_multiplier" yaml:"polymicrobial_multiplier"`

	// SOFAMultiplier converts SOFA points into composite points.
	SOFAMultiplier int `json:"sofa_multiplier" yaml:"sofa_multiplier"`

	// QSOFAThreshold is the qSOFA value at which QSOFAPoints apply
	// (>=2 per Sepsis-3).
	QSOFAThreshold int `json:"qsofa_threshold" yaml:"qsofa_threshold"`
	QSOFAPoints    int `json:"qsofa_points" yaml:"qsofa_points"`

	// APACHEMultiplier converts the APACHE-like aggregate into
	// composite points.
	APACHEMultiplier int `json:"apache_multiplier" yaml:"apache_multiplier"`

	// LabBands configures the laboratory subscore per marker.
	LabBands []LabBand `json:"lab_bands" yaml:"lab_bands"`

	// CutPoints maps the composite score to a risk level.
	CutPoints CutPoints `json:"cut_points" yaml:"cut_points"`
}

// OCRConfig holds settings for the external OCR engine.
type OCRConfig struct {
	// Binary is the OCR executable (default "tesseract").
	Binary string `json:"binary" yaml:"binary"`

	// Languages is the language-pack spec passed to the engine
	// (default "ron+eng").
	Languages string `json:"languages" yaml:"languages"`

	// Timeout bounds one OCR invocation; expiry fails that document
	// only, never the whole batch.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ExtractionConfig holds settings for text extraction and validation.
type ExtractionConfig struct {
	// Language forces the pattern-set language ("ro" or "en"). Empty
	// means detect from the document text.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// RulesFile is an optional YAML file of caller-supplied extraction
	// rules merged with the built-in registry at startup.
	RulesFile string `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`
}

// AuditConfig holds settings for the evaluation history store.
type AuditConfig struct {
	// Dir is the base directory holding the audit database and exports.
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	OCR        OCRConfig        `json:"ocr" yaml:"ocr"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring"`
	Audit      AuditConfig      `json:"audit" yaml:"audit"`
}
