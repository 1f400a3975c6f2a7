// Copyright EpiMind Project, 2026. All rights reserved.

// Package validate cross-checks candidate facts for plausibility and
// resolves conflicts into a single clinical dataset. Validation never
// fails: malformed or absent input yields an empty dataset plus
// warnings, which is a valid, reportable outcome.
package validate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/razorlong2/epimind-app/internal/entities"
	"github.com/razorlong2/epimind-app/pkg/types"
)

// PriorityFunc returns the tie-break priority of the rule that produced
// a candidate. More specific rules outrank generic ones; unknown rules
// (the named-entity pass) rank lowest at 0.
type PriorityFunc func(ruleID string) int

// Validator resolves candidate facts into a dataset. It holds no
// cross-call state beyond the priority lookup.
type Validator struct {
	priority PriorityFunc
}

// New returns a validator using the given rule priority lookup. A nil
// lookup treats every rule as priority 0.
func New(priority PriorityFunc) *Validator {
	if priority == nil {
		priority = func(string) int { return 0 }
	}
	return &Validator{priority: priority}
}

// Result is the outcome of one validation run.
type Result struct {
	// Dataset is the assembled clinical dataset. Timestamps are left
	// zero: documents do not carry the admission time, the caller
	// stamps it.
	Dataset types.ClinicalDataset `json:"dataset" yaml:"dataset"`

	// Facts records the per-candidate decisions for auditing.
	Facts []types.ValidatedFact `json:"facts,omitempty" yaml:"facts,omitempty"`

	// Warnings lists every rejection and tie-break.
	Warnings []types.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Validate groups candidates by logical field, applies range checks,
// resolves competing candidates (highest confidence wins, rule priority
// breaks ties), and cascades rejection across the dependency between
// resistance markers and pathogens. Every decision is recorded.
func (v *Validator) Validate(candidates []types.CandidateFact) Result {
	var res Result

	numeric := make(map[types.FieldID][]types.CandidateFact)
	var pathogens, resistances, devices []types.CandidateFact

	for _, c := range candidates {
		switch c.Kind {
		case types.KindValue:
			numeric[c.Field] = append(numeric[c.Field], c)
		case types.KindPathogen:
			pathogens = append(pathogens, c)
		case types.KindResistance:
			resistances = append(resistances, c)
		case types.KindDevice:
			devices = append(devices, c)
		default:
			res.warn(c.Field, fmt.Sprintf("unknown fact kind %q", c.Kind), c.Raw)
		}
	}

	v.resolveNumeric(numeric, &res)
	primary := v.resolvePathogens(pathogens, &res)
	v.resolveResistances(resistances, primary, &res)
	v.resolveDevices(devices, &res)

	return res
}

func (r *Result) warn(field types.FieldID, reason string, values ...string) {
	r.Warnings = append(r.Warnings, types.Warning{Field: field, Reason: reason, Values: values})
}

func (r *Result) record(c types.CandidateFact, outcome types.ValidationOutcome, reason string) {
	r.Facts = append(r.Facts, types.ValidatedFact{CandidateFact: c, Outcome: outcome, Reason: reason})
}

// resolveNumeric applies range checks and picks one winner per field.
func (v *Validator) resolveNumeric(groups map[types.FieldID][]types.CandidateFact, res *Result) {
	fields := make([]types.FieldID, 0, len(groups))
	for f := range groups {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	for _, field := range fields {
		var survivors []types.CandidateFact
		for _, c := range groups[field] {
			if !inRange(field, c.Value) {
				reason := fmt.Sprintf("value %s outside plausible range for %s", formatValue(c.Value), field)
				res.record(c, types.OutcomeRejected, reason)
				res.warn(field, reason, formatValue(c.Value))
				continue
			}
			survivors = append(survivors, c)
		}
		if len(survivors) == 0 {
			continue
		}

		v.sortByPreference(survivors)
		winner := survivors[0]

		if len(survivors) > 1 {
			values := make([]string, 0, len(survivors))
			for _, c := range survivors {
				values = append(values, formatValue(c.Value))
			}
			reason := fmt.Sprintf("%d candidates for %s; selected %s from rule %s",
				len(survivors), field, formatValue(winner.Value), winner.RuleID)
			res.warn(field, reason, values...)
			res.record(winner, types.OutcomeWithWarning, reason)
			for _, loser := range survivors[1:] {
				res.record(loser, types.OutcomeRejected,
					fmt.Sprintf("lost tie-break to rule %s", winner.RuleID))
			}
		} else {
			res.record(winner, types.OutcomeAccepted, "")
		}

		assignField(&res.Dataset, field, winner)
	}
}

// sortByPreference orders candidates best-first: confidence descending,
// then rule priority descending, then span start ascending so the
// outcome never depends on input order.
func (v *Validator) sortByPreference(facts []types.CandidateFact) {
	sort.SliceStable(facts, func(i, j int) bool {
		if facts[i].Confidence != facts[j].Confidence {
			return facts[i].Confidence > facts[j].Confidence
		}
		pi, pj := v.priority(facts[i].RuleID), v.priority(facts[j].RuleID)
		if pi != pj {
			return pi > pj
		}
		return facts[i].Span.Start < facts[j].Span.Start
	})
}

// resolvePathogens deduplicates organisms by canonical name and builds
// one culture per accepted organism. It returns the primary (highest
// confidence) organism, or "" when none was accepted.
func (v *Validator) resolvePathogens(pathogens []types.CandidateFact, res *Result) string {
	if len(pathogens) == 0 {
		return ""
	}

	byName := make(map[string][]types.CandidateFact)
	for _, c := range pathogens {
		byName[c.Text] = append(byName[c.Text], c)
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	type organism struct {
		name string
		best types.CandidateFact
	}
	organisms := make([]organism, 0, len(names))
	for _, n := range names {
		group := byName[n]
		v.sortByPreference(group)
		res.record(group[0], types.OutcomeAccepted, "")
		for _, dup := range group[1:] {
			res.record(dup, types.OutcomeRejected, "duplicate mention of "+n)
		}
		organisms = append(organisms, organism{name: n, best: group[0]})
	}

	// Primary organism: highest confidence, name as final tie-break.
	sort.SliceStable(organisms, func(i, j int) bool {
		if organisms[i].best.Confidence != organisms[j].best.Confidence {
			return organisms[i].best.Confidence > organisms[j].best.Confidence
		}
		return organisms[i].name < organisms[j].name
	})

	poly := len(organisms) > 1
	for _, o := range organisms {
		res.Dataset.Cultures = append(res.Dataset.Cultures, types.CultureResult{
			Pathogen:      o.name,
			Polymicrobial: poly,
		})
	}
	if poly {
		res.warn(types.FieldPathogen,
			fmt.Sprintf("%d distinct organisms extracted; cultures marked polymicrobial", len(organisms)))
	}

	return organisms[0].name
}

// resolveResistances attaches deduplicated markers to the primary
// culture. A marker reported with no accepted pathogen is a cascaded
// rejection: resistance is a property of an organism, not of a document.
func (v *Validator) resolveResistances(resistances []types.CandidateFact, primary string, res *Result) {
	if len(resistances) == 0 {
		return
	}

	byMarker := make(map[string]types.CandidateFact)
	for _, c := range resistances {
		best, seen := byMarker[c.Text]
		if !seen || c.Confidence > best.Confidence {
			byMarker[c.Text] = c
		}
	}

	markers := make([]string, 0, len(byMarker))
	for m := range byMarker {
		markers = append(markers, m)
	}
	sort.Strings(markers)

	if primary == "" {
		for _, m := range markers {
			c := byMarker[m]
			reason := fmt.Sprintf("resistance marker %s without an accepted pathogen", m)
			res.record(c, types.OutcomeRejected, reason)
			res.warn(types.FieldResistance, reason, m)
		}
		return
	}

	known := entities.KnownResistances(primary)
	for _, m := range markers {
		c := byMarker[m]
		if len(known) > 0 && !contains(known, m) {
			reason := fmt.Sprintf("marker %s is unusual for %s", m, primary)
			res.record(c, types.OutcomeWithWarning, reason)
			res.warn(types.FieldResistance, reason, m)
		} else {
			res.record(c, types.OutcomeAccepted, "")
		}
		res.Dataset.Cultures[0].Resistances = append(res.Dataset.Cultures[0].Resistances, m)
	}
}

// resolveDevices deduplicates device mentions by type. Documents rarely
// state the insertion date, so extracted devices carry a zero timestamp
// and an accepted-with-warning outcome; duration scoring needs the
// caller to fill the date in.
func (v *Validator) resolveDevices(devices []types.CandidateFact, res *Result) {
	byType := make(map[string]types.CandidateFact)
	for _, c := range devices {
		best, seen := byType[c.Text]
		if !seen || c.Confidence > best.Confidence {
			byType[c.Text] = c
		}
	}

	kinds := make([]string, 0, len(byType))
	for k := range byType {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	for _, k := range kinds {
		c := byType[k]
		res.record(c, types.OutcomeWithWarning, "device mentioned without insertion date")
		res.Dataset.Devices = append(res.Dataset.Devices, types.Device{
			Type:    types.DeviceType(k),
			InPlace: true,
		})
	}
	if len(kinds) > 0 {
		res.warn(types.FieldDevice, "extracted devices have no insertion date; durations score as day 0 until set")
	}
}

// assignField routes an accepted numeric value into the dataset.
func assignField(ds *types.ClinicalDataset, field types.FieldID, c types.CandidateFact) {
	switch field {
	case types.FieldWBC, types.FieldCRP, types.FieldProcalcitonin, types.FieldLactate, types.FieldHemoglobin:
		ds.Labs = append(ds.Labs, types.LabValue{Field: field, Value: c.Value, Unit: c.Unit})
	case types.FieldPaO2FiO2:
		ds.Severity.PaO2FiO2 = ptr(c.Value)
	case types.FieldPlatelets:
		ds.Severity.Platelets = ptr(c.Value)
	case types.FieldBilirubin:
		ds.Severity.Bilirubin = ptr(c.Value)
	case types.FieldGlasgow:
		g := int(c.Value)
		ds.Severity.Glasgow = &g
	case types.FieldCreatinine:
		ds.Severity.Creatinine = ptr(c.Value)
	case types.FieldSystolicBP:
		ds.Severity.SystolicBP = ptr(c.Value)
	case types.FieldDiastolicBP:
		ds.Severity.DiastolicBP = ptr(c.Value)
	case types.FieldRespRate:
		ds.Severity.RespRate = ptr(c.Value)
	case types.FieldHeartRate:
		ds.Severity.HeartRate = ptr(c.Value)
	case types.FieldTemperature:
		ds.Severity.Temperature = ptr(c.Value)
	default:
		// Custom-rule fields land in the lab list so nothing accepted
		// is silently dropped.
		ds.Labs = append(ds.Labs, types.LabValue{Field: field, Value: c.Value, Unit: c.Unit})
	}
}

func ptr(v float64) *float64 { return &v }

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
