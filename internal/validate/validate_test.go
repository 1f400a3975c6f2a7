// Copyright EpiMind Project, 2026. All rights reserved.

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razorlong2/epimind-app/pkg/types"
)

func numericFact(field types.FieldID, value, confidence float64, ruleID string, start int) types.CandidateFact {
	return types.CandidateFact{
		Kind: types.KindValue, Field: field, Value: value,
		Confidence: confidence, RuleID: ruleID,
		Span: types.Span{Start: start, End: start + 4},
	}
}

func TestValidateEmptyInput(t *testing.T) {
	res := New(nil).Validate(nil)
	assert.Empty(t, res.Facts)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Dataset.Labs)
	assert.Empty(t, res.Dataset.Cultures)
}

func TestValidateRangeRejection(t *testing.T) {
	v := New(nil)
	res := v.Validate([]types.CandidateFact{
		numericFact(types.FieldWBC, 250, 0.9, "wbc-labeled-ro", 0),
	})

	require.Len(t, res.Facts, 1)
	assert.Equal(t, types.OutcomeRejected, res.Facts[0].Outcome)
	assert.Contains(t, res.Facts[0].Reason, "plausible range")

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, types.FieldWBC, res.Warnings[0].Field)
	assert.Contains(t, res.Warnings[0].Values, "250")

	assert.Empty(t, res.Dataset.Labs, "rejected value must not reach the dataset")
}

func TestValidateConfidenceTieBreak(t *testing.T) {
	v := New(nil)
	res := v.Validate([]types.CandidateFact{
		numericFact(types.FieldWBC, 15.0, 0.6, "wbc-unit-context", 20),
		numericFact(types.FieldWBC, 15.2, 0.9, "wbc-labeled-ro", 0),
	})

	lab, ok := res.Dataset.Lab(types.FieldWBC)
	require.True(t, ok)
	assert.Equal(t, 15.2, lab.Value, "higher confidence candidate must win")

	// The conflict is recorded: winner accepted with warning, loser rejected.
	outcomes := map[string]types.ValidationOutcome{}
	for _, f := range res.Facts {
		outcomes[f.RuleID] = f.Outcome
	}
	assert.Equal(t, types.OutcomeWithWarning, outcomes["wbc-labeled-ro"])
	assert.Equal(t, types.OutcomeRejected, outcomes["wbc-unit-context"])

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Reason, "wbc-labeled-ro")
	assert.ElementsMatch(t, []string{"15.2", "15"}, res.Warnings[0].Values)
}

func TestValidatePriorityBreaksEqualConfidence(t *testing.T) {
	priorities := map[string]int{"specific": 10, "generic": 4}
	v := New(func(id string) int { return priorities[id] })

	res := v.Validate([]types.CandidateFact{
		numericFact(types.FieldCRP, 80, 0.8, "generic", 0),
		numericFact(types.FieldCRP, 102, 0.8, "specific", 30),
	})

	lab, ok := res.Dataset.Lab(types.FieldCRP)
	require.True(t, ok)
	assert.Equal(t, 102.0, lab.Value)
}

func TestValidateOrderIndependence(t *testing.T) {
	v := New(nil)
	candidates := []types.CandidateFact{
		numericFact(types.FieldWBC, 15.2, 0.9, "wbc-labeled-ro", 0),
		numericFact(types.FieldWBC, 15.0, 0.6, "wbc-unit-context", 20),
		numericFact(types.FieldCRP, 102, 0.9, "crp-labeled", 40),
	}
	reversed := []types.CandidateFact{candidates[2], candidates[1], candidates[0]}

	a := v.Validate(candidates)
	b := v.Validate(reversed)
	assert.Equal(t, a.Dataset, b.Dataset)
	assert.Equal(t, a.Warnings, b.Warnings)
}

func TestValidatePathogens(t *testing.T) {
	v := New(nil)

	pathogen := func(name string, conf float64) types.CandidateFact {
		return types.CandidateFact{
			Kind: types.KindPathogen, Field: types.FieldPathogen,
			Text: name, Confidence: conf, RuleID: "pathogen-test",
		}
	}

	t.Run("single organism", func(t *testing.T) {
		res := v.Validate([]types.CandidateFact{pathogen("Escherichia coli", 0.9)})
		require.Len(t, res.Dataset.Cultures, 1)
		assert.Equal(t, "Escherichia coli", res.Dataset.Cultures[0].Pathogen)
		assert.False(t, res.Dataset.Cultures[0].Polymicrobial)
	})

	t.Run("duplicate mentions collapse", func(t *testing.T) {
		res := v.Validate([]types.CandidateFact{
			pathogen("Escherichia coli", 0.9),
			pathogen("Escherichia coli", 0.7),
		})
		require.Len(t, res.Dataset.Cultures, 1)
		assert.Empty(t, res.Warnings)
	})

	t.Run("distinct organisms mark polymicrobial", func(t *testing.T) {
		res := v.Validate([]types.CandidateFact{
			pathogen("Escherichia coli", 0.9),
			pathogen("Klebsiella pneumoniae", 0.8),
		})
		require.Len(t, res.Dataset.Cultures, 2)
		for _, c := range res.Dataset.Cultures {
			assert.True(t, c.Polymicrobial)
		}
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0].Reason, "polymicrobial")
	})
}

func TestValidateResistanceCascade(t *testing.T) {
	v := New(nil)
	marker := types.CandidateFact{
		Kind: types.KindResistance, Field: types.FieldResistance,
		Text: "ESBL", Confidence: 0.85, RuleID: "resistance-esbl",
	}

	// No accepted pathogen: the marker is a cascaded rejection.
	res := v.Validate([]types.CandidateFact{marker})
	require.Len(t, res.Facts, 1)
	assert.Equal(t, types.OutcomeRejected, res.Facts[0].Outcome)
	assert.Contains(t, res.Facts[0].Reason, "without an accepted pathogen")
	assert.Empty(t, res.Dataset.Cultures)
	require.Len(t, res.Warnings, 1)
}

func TestValidateResistanceAttachment(t *testing.T) {
	v := New(nil)
	pathogen := types.CandidateFact{
		Kind: types.KindPathogen, Field: types.FieldPathogen,
		Text: "Escherichia coli", Confidence: 0.9, RuleID: "pathogen-ecoli",
	}
	esbl := types.CandidateFact{
		Kind: types.KindResistance, Field: types.FieldResistance,
		Text: "ESBL", Confidence: 0.85, RuleID: "resistance-esbl",
	}
	mrsa := types.CandidateFact{
		Kind: types.KindResistance, Field: types.FieldResistance,
		Text: "MRSA", Confidence: 0.85, RuleID: "resistance-mrsa",
	}

	res := v.Validate([]types.CandidateFact{pathogen, esbl, mrsa})
	require.Len(t, res.Dataset.Cultures, 1)
	assert.Equal(t, []string{"ESBL", "MRSA"}, res.Dataset.Cultures[0].Resistances)

	// MRSA on E. coli is off-profile: attached, but flagged.
	var flagged bool
	for _, w := range res.Warnings {
		if w.Field == types.FieldResistance {
			assert.Contains(t, w.Reason, "MRSA")
			flagged = true
		}
	}
	assert.True(t, flagged, "off-profile marker should produce a warning")
}

func TestValidateDevices(t *testing.T) {
	v := New(nil)
	device := func(kind types.DeviceType, conf float64) types.CandidateFact {
		return types.CandidateFact{
			Kind: types.KindDevice, Field: types.FieldDevice,
			Text: string(kind), Confidence: conf, RuleID: "device-test",
		}
	}

	res := v.Validate([]types.CandidateFact{
		device(types.DeviceCVC, 0.75),
		device(types.DeviceCVC, 0.6),
		device(types.DeviceUrinaryCatheter, 0.75),
	})

	require.Len(t, res.Dataset.Devices, 2)
	for _, d := range res.Dataset.Devices {
		assert.True(t, d.InPlace)
		assert.True(t, d.InsertedAt.IsZero(), "extracted devices carry no insertion date")
	}

	for _, f := range res.Facts {
		assert.Equal(t, types.OutcomeWithWarning, f.Outcome)
	}
}

func TestValidateSeverityRouting(t *testing.T) {
	v := New(nil)
	res := v.Validate([]types.CandidateFact{
		numericFact(types.FieldSystolicBP, 120, 0.9, "bp-pair", 0),
		numericFact(types.FieldDiastolicBP, 80, 0.9, "bp-pair", 0),
		numericFact(types.FieldGlasgow, 9, 0.9, "glasgow-labeled", 20),
		numericFact(types.FieldCreatinine, 2.4, 0.9, "creatinine-labeled", 40),
	})

	sev := res.Dataset.Severity
	require.NotNil(t, sev.SystolicBP)
	assert.Equal(t, 120.0, *sev.SystolicBP)
	require.NotNil(t, sev.DiastolicBP)
	assert.Equal(t, 80.0, *sev.DiastolicBP)
	require.NotNil(t, sev.Glasgow)
	assert.Equal(t, 9, *sev.Glasgow)
	require.NotNil(t, sev.Creatinine)
	assert.Equal(t, 2.4, *sev.Creatinine)
	assert.Empty(t, res.Dataset.Labs)
}

func TestValidateCustomFieldLandsInLabs(t *testing.T) {
	v := New(nil)
	res := v.Validate([]types.CandidateFact{
		numericFact(types.FieldID("ferritin"), 820, 0.7, "ferritin-labeled", 0),
	})

	lab, ok := res.Dataset.Lab(types.FieldID("ferritin"))
	require.True(t, ok)
	assert.Equal(t, 820.0, lab.Value)
}
