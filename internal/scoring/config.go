// Copyright EpiMind Project, 2026. All rights reserved.

package scoring

import "github.com/razorlong2/epimind-app/pkg/types"

// DefaultConfig returns the reference scoring constants. SOFA component
// tables follow Vincent et al., Intensive Care Med 1996; qSOFA follows
// Singer et al., JAMA 2016 (Sepsis-3). Device weights, resistance
// points, laboratory bands and cut-points follow the EpiMind reference
// protocol. Institutions may override any value through configuration.
func DefaultConfig() types.ScoringConfig {
	return types.ScoringConfig{
		EligibilityHours: 48,

		TemporalBands: []types.Band{
			{Min: 48, Points: 5},
			{Min: 72, Points: 10},
			{Min: 168, Points: 15},
		},

		DeviceWeights: map[types.DeviceType]int{
			types.DeviceCVC:             20,
			types.DeviceVentilation:     25,
			types.DeviceUrinaryCatheter: 15,
			types.DeviceTracheostomy:    20,
			types.DeviceDrainage:        10,
			types.DevicePEG:             12,
		},
		// Duration bonuses: beyond 3 days and beyond 7 days in place.
		DeviceDurationBands: []types.Band{
			{Min: 4, Points: 5},
			{Min: 8, Points: 10},
		},
		DeviceScoreCap: 80,

		CulturePoints: 15,
		ResistancePoints: map[string]int{
			"ESBL":   15,
			"CRE":    25,
			"KPC":    30,
			"NDM":    35,
			"OXA-48": 20,
			"AmpC":   12,
			"CTX-M":  12,
			"MRSA":   20,
			"VISA":   18,
			"VRE":    25,
			"MDR":    20,
			"XDR":    30,
			"PDR":    40,
		},
		PolymicrobialMultiplier: 1.5,

		SOFAMultiplier:   3,
		QSOFAThreshold:   2,
		QSOFAPoints:      15,
		APACHEMultiplier: 2,

		LabBands: []types.LabBand{
			{
				Field:     types.FieldWBC,
				Bands:     []types.Band{{Min: 12, Points: 10}},
				Low:       4,
				LowPoints: 10,
			},
			{
				Field: types.FieldCRP,
				Bands: []types.Band{{Min: 50, Points: 8}, {Min: 100, Points: 15}},
			},
			{
				Field: types.FieldProcalcitonin,
				Bands: []types.Band{{Min: 0.5, Points: 10}, {Min: 2, Points: 20}},
			},
			{
				Field: types.FieldLactate,
				Bands: []types.Band{{Min: 2, Points: 5}, {Min: 4, Points: 12}},
			},
		},

		CutPoints: types.CutPoints{Moderate: 35, High: 60, Critical: 120},
	}
}
