// Copyright EpiMind Project, 2026. All rights reserved.

// Package scoring implements the deterministic IAAM risk engine:
// temporal eligibility, device, severity, microbiology and laboratory
// subscores combined into an ordinal risk level with recommendations.
// Scoring is a pure function of the input dataset; the engine keeps no
// state across calls and a fresh RiskResult is produced per evaluation.
package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/razorlong2/epimind-app/pkg/types"
)

// ErrInvalidDataset marks a structural invariant violation in the input
// dataset. No partial result accompanies this error.
var ErrInvalidDataset = errors.New("invalid clinical dataset")

// Engine scores clinical datasets against one scoring configuration.
type Engine struct {
	cfg types.ScoringConfig
}

// New returns an engine over the given configuration. Use
// DefaultConfig for the reference constants.
func New(cfg types.ScoringConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Score evaluates one dataset. Incomplete data never fails: missing
// severity parameters score zero and are listed in the result. Score
// fails only on structural violations (negative hospitalization
// duration, resistance markers outside the controlled vocabulary).
func (e *Engine) Score(ds types.ClinicalDataset) (*types.RiskResult, error) {
	hours := ds.HoursSinceAdmission()
	if hours < 0 {
		return nil, fmt.Errorf("%w: hours since admission is negative (%.1f): evaluation precedes admission",
			ErrInvalidDataset, hours)
	}

	result := &types.RiskResult{
		HoursSinceAdmission: hours,
		EvaluatedAt:         ds.EvaluatedAt,
	}

	result.Eligible = hours >= e.cfg.EligibilityHours
	if result.Eligible {
		result.EligibilityReason = fmt.Sprintf("hospitalized %.0f h (>= %.0f h)", hours, e.cfg.EligibilityHours)
	} else {
		result.EligibilityReason = fmt.Sprintf("hospitalized %.0f h (< %.0f h): temporal criterion not met",
			hours, e.cfg.EligibilityHours)
	}

	// Temporal contribution applies only once the stay qualifies; the
	// remaining subscores are always computed so a non-qualifying
	// result still carries an informative breakdown.
	if result.Eligible {
		pts := bandPoints(e.cfg.TemporalBands, hours)
		result.Subscores.Temporal = pts
		result.Breakdown = append(result.Breakdown, types.BreakdownEntry{
			Domain: types.DomainTemporal,
			Points: pts,
			Fields: []string{"admitted_at", "evaluated_at"},
			Note:   fmt.Sprintf("hospitalized %.0f h", hours),
		})
	}

	devicePts, deviceEntries := DeviceScore(ds, e.cfg)
	result.Subscores.Device = devicePts
	result.Breakdown = append(result.Breakdown, deviceEntries...)

	sevPts, sevEntries, incomplete := e.severityScore(ds.Severity)
	result.Subscores.Severity = sevPts
	result.Breakdown = append(result.Breakdown, sevEntries...)
	result.Incomplete = incomplete

	microPts, microEntries, err := MicrobiologyScore(ds, e.cfg)
	if err != nil {
		return nil, err
	}
	result.Subscores.Microbiology = microPts
	result.Breakdown = append(result.Breakdown, microEntries...)

	labPts, labEntries := LabScore(ds, e.cfg)
	result.Subscores.Laboratory = labPts
	result.Breakdown = append(result.Breakdown, labEntries...)

	result.Composite = result.Subscores.Temporal + result.Subscores.Device +
		result.Subscores.Severity + result.Subscores.Microbiology + result.Subscores.Laboratory
	result.Level = e.level(result.Composite)
	result.Recommendations = recommendations(result.Eligible, result.Level, result.DominantDomain())

	return result, nil
}

// severityScore combines SOFA, qSOFA and the APACHE-like aggregate into
// the severity subscore, collecting missing parameters.
func (e *Engine) severityScore(s types.SeverityInputs) (int, []types.BreakdownEntry, []string) {
	var total int
	var entries []types.BreakdownEntry
	missing := make(map[string]bool)

	sofa := SOFA(s)
	if sofa.Total > 0 {
		pts := sofa.Total * e.cfg.SOFAMultiplier
		total += pts
		entries = append(entries, types.BreakdownEntry{
			Domain: types.DomainSeverity,
			Points: pts,
			Fields: sofaFields(sofa),
			Note:   fmt.Sprintf("SOFA %d", sofa.Total),
		})
	}
	for _, m := range sofa.Missing {
		missing[m] = true
	}

	qsofa, qMissing := QSOFA(s)
	if qsofa >= e.cfg.QSOFAThreshold {
		total += e.cfg.QSOFAPoints
		entries = append(entries, types.BreakdownEntry{
			Domain: types.DomainSeverity,
			Points: e.cfg.QSOFAPoints,
			Fields: []string{"systolic_bp", "resp_rate", "glasgow"},
			Note:   fmt.Sprintf("qSOFA %d", qsofa),
		})
	}
	for _, m := range qMissing {
		missing[m] = true
	}

	apache, aMissing := APACHELike(s)
	if apache > 0 {
		pts := apache * e.cfg.APACHEMultiplier
		total += pts
		entries = append(entries, types.BreakdownEntry{
			Domain: types.DomainSeverity,
			Points: pts,
			Fields: []string{"temperature", "heart_rate", "resp_rate", "age"},
			Note:   fmt.Sprintf("acute physiology %d", apache),
		})
	}
	for _, m := range aMissing {
		missing[m] = true
	}

	incomplete := make([]string, 0, len(missing))
	for m := range missing {
		incomplete = append(incomplete, m)
	}
	sort.Strings(incomplete)
	return total, entries, incomplete
}

// sofaFields lists the organ systems that contributed SOFA points.
func sofaFields(r SOFAResult) []string {
	var fields []string
	for name, pts := range r.Components {
		if pts > 0 {
			fields = append(fields, "sofa:"+name)
		}
	}
	sort.Strings(fields)
	return fields
}

// level maps a composite score to its ordinal risk level via the
// configured cut-points.
func (e *Engine) level(composite int) types.RiskLevel {
	switch {
	case composite >= e.cfg.CutPoints.Critical:
		return types.RiskCritical
	case composite >= e.cfg.CutPoints.High:
		return types.RiskHigh
	case composite >= e.cfg.CutPoints.Moderate:
		return types.RiskModerate
	default:
		return types.RiskLow
	}
}
