// Copyright EpiMind Project, 2026. All rights reserved.

package validate

import "github.com/razorlong2/epimind-app/pkg/types"

// plausibleRange bounds a field's physiologically plausible values.
// Values outside the range are rejected outright, never clamped: a
// garbled OCR digit must not survive as a silently "corrected" number.
type plausibleRange struct {
	Min, Max float64
}

var plausibleRanges = map[types.FieldID]plausibleRange{
	types.FieldWBC:           {0, 200},   // x10^3/uL
	types.FieldCRP:           {0, 1000},  // mg/L
	types.FieldProcalcitonin: {0, 100},   // ng/mL
	types.FieldLactate:       {0, 25},    // mmol/L
	types.FieldTemperature:   {30, 45},   // Celsius
	types.FieldHeartRate:     {20, 300},  // bpm
	types.FieldRespRate:      {4, 80},    // /min
	types.FieldSystolicBP:    {40, 300},  // mmHg
	types.FieldDiastolicBP:   {20, 200},  // mmHg
	types.FieldHemoglobin:    {2, 25},    // g/dL
	types.FieldCreatinine:    {0.1, 25},  // mg/dL
	types.FieldBilirubin:     {0, 50},    // mg/dL
	types.FieldPlatelets:     {0, 1500},  // x10^3/uL
	types.FieldPaO2FiO2:      {40, 600},  // ratio
	types.FieldGlasgow:       {3, 15},    // points
}

// inRange reports whether a numeric candidate is plausible for its
// field. Fields without a configured range (custom rules) always pass.
func inRange(field types.FieldID, value float64) bool {
	r, ok := plausibleRanges[field]
	if !ok {
		return true
	}
	return value >= r.Min && value <= r.Max
}
