// Copyright EpiMind Project, 2026. All rights reserved.

package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razorlong2/epimind-app/pkg/types"
)

var evalTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// dataset returns a minimal dataset hospitalized for the given hours.
func dataset(hours float64) types.ClinicalDataset {
	return types.ClinicalDataset{
		AdmittedAt:  evalTime.Add(-time.Duration(hours * float64(time.Hour))),
		EvaluatedAt: evalTime,
	}
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestScoreEligibility(t *testing.T) {
	e := New(DefaultConfig())

	t.Run("under threshold is non-qualifying", func(t *testing.T) {
		ds := dataset(24)
		ds.Labs = []types.LabValue{{Field: types.FieldWBC, Value: 15.2}}

		result, err := e.Score(ds)
		require.NoError(t, err)

		assert.False(t, result.Eligible)
		assert.Contains(t, result.EligibilityReason, "temporal criterion not met")
		assert.Equal(t, 0, result.Subscores.Temporal)
		// Domain subscores still computed for an informative breakdown.
		assert.Equal(t, 10, result.Subscores.Laboratory)
		assert.Contains(t, result.Recommendations[1], "eligibility threshold")
	})

	t.Run("at threshold qualifies", func(t *testing.T) {
		result, err := e.Score(dataset(48))
		require.NoError(t, err)
		assert.True(t, result.Eligible)
		assert.Equal(t, 5, result.Subscores.Temporal)
	})

	t.Run("negative duration is a structural violation", func(t *testing.T) {
		ds := types.ClinicalDataset{
			AdmittedAt:  evalTime.Add(time.Hour),
			EvaluatedAt: evalTime,
		}
		_, err := e.Score(ds)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidDataset))
	})
}

func TestScoreTemporalBands(t *testing.T) {
	e := New(DefaultConfig())
	tests := []struct {
		hours float64
		want  int
	}{
		{47, 0},
		{48, 5},
		{71, 5},
		{72, 10},
		{167, 10},
		{168, 15},
		{400, 15},
	}
	for _, tt := range tests {
		result, err := e.Score(dataset(tt.hours))
		require.NoError(t, err)
		assert.Equal(t, tt.want, result.Subscores.Temporal, "hours=%v", tt.hours)
	}
}

func TestDeviceScore(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("base weight plus duration bonus", func(t *testing.T) {
		ds := dataset(96)
		ds.Devices = []types.Device{{
			Type:       types.DeviceCVC,
			InsertedAt: evalTime.Add(-4 * 24 * time.Hour),
			InPlace:    true,
		}}
		pts, entries := DeviceScore(ds, cfg)
		assert.Equal(t, 25, pts) // 20 base + 5 for >3 days
		require.Len(t, entries, 1)
		assert.Equal(t, types.DomainDevice, entries[0].Domain)
	})

	t.Run("removed devices score nothing", func(t *testing.T) {
		ds := dataset(96)
		ds.Devices = []types.Device{{
			Type:       types.DeviceCVC,
			InsertedAt: evalTime.Add(-4 * 24 * time.Hour),
			InPlace:    false,
		}}
		pts, entries := DeviceScore(ds, cfg)
		assert.Equal(t, 0, pts)
		assert.Empty(t, entries)
	})

	t.Run("unknown insertion date scores day zero", func(t *testing.T) {
		ds := dataset(96)
		ds.Devices = []types.Device{{Type: types.DeviceVentilation, InPlace: true}}
		pts, _ := DeviceScore(ds, cfg)
		assert.Equal(t, 25, pts) // base weight only
	})

	t.Run("monotonic in days in place", func(t *testing.T) {
		prev := -1
		for _, days := range []int{0, 2, 4, 6, 8, 30} {
			ds := dataset(float64(days*24) + 96)
			ds.Devices = []types.Device{{
				Type:       types.DeviceUrinaryCatheter,
				InsertedAt: evalTime.Add(-time.Duration(days) * 24 * time.Hour),
				InPlace:    true,
			}}
			pts, _ := DeviceScore(ds, cfg)
			assert.GreaterOrEqual(t, pts, prev, "days=%d", days)
			prev = pts
		}
	})

	t.Run("cap bounds the total", func(t *testing.T) {
		ds := dataset(96)
		for _, dt := range []types.DeviceType{
			types.DeviceCVC, types.DeviceVentilation, types.DeviceTracheostomy,
			types.DevicePEG, types.DeviceDrainage,
		} {
			ds.Devices = append(ds.Devices, types.Device{Type: dt, InPlace: true})
		}
		pts, entries := DeviceScore(ds, cfg)
		assert.Equal(t, cfg.DeviceScoreCap, pts)

		// The cap correction is visible in the breakdown.
		last := entries[len(entries)-1]
		assert.Negative(t, last.Points)
		assert.Contains(t, last.Note, "capped")
	})
}

func TestMicrobiologyScore(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("culture with resistance markers", func(t *testing.T) {
		ds := dataset(96)
		ds.Cultures = []types.CultureResult{{
			Pathogen:    "Escherichia coli",
			Resistances: []string{"ESBL"},
		}}
		pts, entries, err := MicrobiologyScore(ds, cfg)
		require.NoError(t, err)
		assert.Equal(t, 30, pts) // 15 culture + 15 ESBL
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Note, "Escherichia coli")
		assert.Contains(t, entries[0].Fields, "ESBL")
	})

	t.Run("polymicrobial multiplier", func(t *testing.T) {
		ds := dataset(96)
		ds.Cultures = []types.CultureResult{{
			Pathogen:      "Escherichia coli",
			Polymicrobial: true,
		}}
		pts, _, err := MicrobiologyScore(ds, cfg)
		require.NoError(t, err)
		assert.Equal(t, 23, pts) // round(15 * 1.5)
	})

	t.Run("unknown marker rejects the evaluation", func(t *testing.T) {
		ds := dataset(96)
		ds.Cultures = []types.CultureResult{{
			Pathogen:    "Escherichia coli",
			Resistances: []string{"NOT-A-MARKER"},
		}}
		_, _, err := MicrobiologyScore(ds, cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidDataset))
		assert.Contains(t, err.Error(), "NOT-A-MARKER")
	})

	t.Run("culture order does not change the total", func(t *testing.T) {
		a := dataset(96)
		a.Cultures = []types.CultureResult{
			{Pathogen: "Escherichia coli", Resistances: []string{"ESBL"}},
			{Pathogen: "Klebsiella pneumoniae", Resistances: []string{"KPC"}},
		}
		b := dataset(96)
		b.Cultures = []types.CultureResult{a.Cultures[1], a.Cultures[0]}

		ptsA, entriesA, err := MicrobiologyScore(a, cfg)
		require.NoError(t, err)
		ptsB, entriesB, err := MicrobiologyScore(b, cfg)
		require.NoError(t, err)
		assert.Equal(t, ptsA, ptsB)
		assert.Equal(t, entriesA, entriesB)
	})
}

func TestLabScore(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		labs []types.LabValue
		want int
	}{
		{
			name: "leukocytosis",
			labs: []types.LabValue{{Field: types.FieldWBC, Value: 15.2}},
			want: 10,
		},
		{
			name: "leukopenia scores too",
			labs: []types.LabValue{{Field: types.FieldWBC, Value: 2.1}},
			want: 10,
		},
		{
			name: "normal wbc scores nothing",
			labs: []types.LabValue{{Field: types.FieldWBC, Value: 8.0}},
			want: 0,
		},
		{
			name: "crp tiers",
			labs: []types.LabValue{{Field: types.FieldCRP, Value: 102}},
			want: 15,
		},
		{
			name: "moderate crp",
			labs: []types.LabValue{{Field: types.FieldCRP, Value: 60}},
			want: 8,
		},
		{
			name: "procalcitonin high tier",
			labs: []types.LabValue{{Field: types.FieldProcalcitonin, Value: 2.5}},
			want: 20,
		},
		{
			name: "combined markers sum",
			labs: []types.LabValue{
				{Field: types.FieldWBC, Value: 15.2},
				{Field: types.FieldCRP, Value: 102},
				{Field: types.FieldLactate, Value: 4.5},
			},
			want: 37,
		},
		{
			name: "unconfigured marker ignored",
			labs: []types.LabValue{{Field: types.FieldHemoglobin, Value: 7.2}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := dataset(96)
			ds.Labs = tt.labs
			pts, _ := LabScore(ds, cfg)
			assert.Equal(t, tt.want, pts)
		})
	}
}

func TestLabScoreOrderIndependent(t *testing.T) {
	cfg := DefaultConfig()
	labs := []types.LabValue{
		{Field: types.FieldLactate, Value: 4.5},
		{Field: types.FieldWBC, Value: 15.2},
		{Field: types.FieldCRP, Value: 102},
	}

	a := dataset(96)
	a.Labs = labs
	b := dataset(96)
	b.Labs = []types.LabValue{labs[2], labs[0], labs[1]}

	ptsA, entriesA := LabScore(a, cfg)
	ptsB, entriesB := LabScore(b, cfg)
	assert.Equal(t, ptsA, ptsB)
	assert.Equal(t, entriesA, entriesB)
}

func TestSOFA(t *testing.T) {
	t.Run("all components", func(t *testing.T) {
		s := types.SeverityInputs{
			PaO2FiO2:     fptr(150), // 3
			Platelets:    fptr(45),  // 3
			Bilirubin:    fptr(2.5), // 2
			Glasgow:      iptr(9),   // 3
			Creatinine:   fptr(4.0), // 3
			Vasopressors: true,      // 3
		}
		r := SOFA(s)
		assert.Equal(t, 17, r.Total)
		assert.Equal(t, 3, r.Components["respiration"])
		assert.Equal(t, 3, r.Components["cardiovascular"])
		assert.Empty(t, r.Missing)
	})

	t.Run("missing parameters reported not failed", func(t *testing.T) {
		r := SOFA(types.SeverityInputs{})
		assert.Equal(t, 0, r.Total)
		assert.ElementsMatch(t, r.Missing,
			[]string{"pao2_fio2", "platelets", "bilirubin", "glasgow", "creatinine"})
	})

	t.Run("renal takes worse of creatinine and urine output", func(t *testing.T) {
		s := types.SeverityInputs{
			Creatinine:  fptr(1.5), // 1
			UrineOutput: fptr(0.2), // 3
		}
		r := SOFA(s)
		assert.Equal(t, 3, r.Components["renal"])
	})

	t.Run("hypotension without vasopressors", func(t *testing.T) {
		r := SOFA(types.SeverityInputs{Hypotension: true})
		assert.Equal(t, 2, r.Components["cardiovascular"])
	})
}

func TestQSOFA(t *testing.T) {
	score, missing := QSOFA(types.SeverityInputs{
		SystolicBP: fptr(90),
		RespRate:   fptr(24),
		Glasgow:    iptr(14),
	})
	assert.Equal(t, 3, score)
	assert.Empty(t, missing)

	score, missing = QSOFA(types.SeverityInputs{SystolicBP: fptr(120)})
	assert.Equal(t, 0, score)
	assert.ElementsMatch(t, missing, []string{"resp_rate", "glasgow"})
}

func TestScoreFullScenario(t *testing.T) {
	e := New(DefaultConfig())

	ds := dataset(96)
	ds.Devices = []types.Device{{
		Type:       types.DeviceCVC,
		InsertedAt: evalTime.Add(-4 * 24 * time.Hour),
		InPlace:    true,
	}}
	ds.Cultures = []types.CultureResult{{Pathogen: "Escherichia coli"}}
	ds.Labs = []types.LabValue{
		{Field: types.FieldWBC, Value: 15.2},
		{Field: types.FieldCRP, Value: 120},
	}

	result, err := e.Score(ds)
	require.NoError(t, err)

	assert.True(t, result.Eligible)
	assert.Equal(t, 10, result.Subscores.Temporal) // 96 h band
	assert.Equal(t, 25, result.Subscores.Device)
	assert.Equal(t, 15, result.Subscores.Microbiology)
	assert.Equal(t, 25, result.Subscores.Laboratory)
	assert.Equal(t, 75, result.Composite)
	assert.Equal(t, types.RiskHigh, result.Level)
	assert.True(t, result.Level.AtLeast(types.RiskModerate))

	// Missing severity inputs are reported, never fatal.
	assert.NotEmpty(t, result.Incomplete)
	assert.NotEmpty(t, result.Recommendations)
	assert.Equal(t, types.DomainDevice, result.DominantDomain())
}

func TestScoreLevels(t *testing.T) {
	e := New(DefaultConfig())
	tests := []struct {
		composite int
		want      types.RiskLevel
	}{
		{0, types.RiskLow},
		{34, types.RiskLow},
		{35, types.RiskModerate},
		{59, types.RiskModerate},
		{60, types.RiskHigh},
		{119, types.RiskHigh},
		{120, types.RiskCritical},
		{300, types.RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.level(tt.composite), "composite=%d", tt.composite)
	}
}

func TestScoreDeterministic(t *testing.T) {
	e := New(DefaultConfig())

	ds := dataset(200)
	ds.Devices = []types.Device{
		{Type: types.DeviceVentilation, InsertedAt: evalTime.Add(-8 * 24 * time.Hour), InPlace: true},
		{Type: types.DeviceCVC, InsertedAt: evalTime.Add(-2 * 24 * time.Hour), InPlace: true},
	}
	ds.Cultures = []types.CultureResult{{Pathogen: "Klebsiella pneumoniae", Resistances: []string{"KPC"}}}
	ds.Severity = types.SeverityInputs{Glasgow: iptr(12), SystolicBP: fptr(95), RespRate: fptr(24)}
	ds.Labs = []types.LabValue{{Field: types.FieldProcalcitonin, Value: 3.1}}

	first, err := e.Score(ds)
	require.NoError(t, err)
	second, err := e.Score(ds)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecommendations(t *testing.T) {
	recs := recommendations(true, types.RiskCritical, types.DomainDevice)
	assert.Contains(t, recs[0], "isolation")
	assert.Contains(t, recs[len(recs)-1], "invasive device")

	recs = recommendations(true, types.RiskLow, types.DomainDevice)
	assert.Equal(t, []string{"Standard monitoring", "Standard precautions"}, recs)

	recs = recommendations(false, types.RiskHigh, types.DomainDevice)
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0], "standard clinical monitoring")
}
