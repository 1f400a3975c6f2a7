// Copyright EpiMind Project, 2026. All rights reserved.

package types

import "time"

// RiskLevel is the ordinal risk classification of a composite score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskOrder maps levels to their ordinal rank for comparisons.
var riskOrder = map[RiskLevel]int{
	RiskLow:      0,
	RiskModerate: 1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// AtLeast reports whether l ranks at or above other.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return riskOrder[l] >= riskOrder[other]
}

// Domain names a scoring domain contributing to the composite.
type Domain string

const (
	DomainTemporal     Domain = "temporal"
	DomainDevice       Domain = "device"
	DomainSeverity     Domain = "severity"
	DomainMicrobiology Domain = "microbiology"
	DomainLaboratory   Domain = "laboratory"
)

// Subscores holds the per-domain contributions to the composite score.
type Subscores struct {
	Temporal     int `json:"temporal" yaml:"temporal"`
	Device       int `json:"device" yaml:"device"`
	Severity     int `json:"severity" yaml:"severity"`
	Microbiology int `json:"microbiology" yaml:"microbiology"`
	Laboratory   int `json:"laboratory" yaml:"laboratory"`
}

// BreakdownEntry maps one scored contribution back to the dataset fields
// that produced it, so results stay auditable.
type BreakdownEntry struct {
	// Domain is the subscore this entry contributed to.
	Domain Domain `json:"domain" yaml:"domain"`

	// Points is the contribution to that subscore.
	Points int `json:"points" yaml:"points"`

	// Fields lists the dataset fields behind the contribution.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Note is a short human-readable explanation.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// RiskResult is the immutable output of one risk evaluation. The engine
// produces a fresh result per call and never retains or mutates it.
type RiskResult struct {
	// Eligible reports whether the healthcare-associated infection
	// criterion (minimum hospitalization duration) is met. When false
	// the subscores are still informative but the composite result is
	// non-qualifying.
	Eligible bool `json:"eligible" yaml:"eligible"`

	// EligibilityReason explains the eligibility decision.
	EligibilityReason string `json:"eligibility_reason" yaml:"eligibility_reason"`

	// HoursSinceAdmission echoes the derived duration used for the
	// temporal criterion.
	HoursSinceAdmission float64 `json:"hours_since_admission" yaml:"hours_since_admission"`

	// Subscores holds the per-domain contributions.
	Subscores Subscores `json:"subscores" yaml:"subscores"`

	// Composite is the weighted sum of all subscores.
	Composite int `json:"composite" yaml:"composite"`

	// Level is the ordinal classification of Composite.
	Level RiskLevel `json:"level" yaml:"level"`

	// Recommendations is the ordered list of clinical actions for the
	// level and dominant contributing domain.
	Recommendations []string `json:"recommendations" yaml:"recommendations"`

	// Breakdown maps each contribution to the fields that produced it.
	Breakdown []BreakdownEntry `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`

	// Incomplete lists severity parameters that were missing and
	// therefore scored as zero.
	Incomplete []string `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`

	// EvaluatedAt is the evaluation reference time from the dataset.
	EvaluatedAt time.Time `json:"evaluated_at" yaml:"evaluated_at"`
}

// DominantDomain returns the domain with the highest subscore, with a
// fixed preference order on ties (device, microbiology, severity,
// laboratory, temporal) so recommendations stay deterministic.
func (r RiskResult) DominantDomain() Domain {
	order := []struct {
		d Domain
		v int
	}{
		{DomainDevice, r.Subscores.Device},
		{DomainMicrobiology, r.Subscores.Microbiology},
		{DomainSeverity, r.Subscores.Severity},
		{DomainLaboratory, r.Subscores.Laboratory},
		{DomainTemporal, r.Subscores.Temporal},
	}
	best := order[0]
	for _, c := range order[1:] {
		if c.v > best.v {
			best = c
		}
	}
	return best.d
}
