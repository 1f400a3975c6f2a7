// Copyright EpiMind Project, 2026. All rights reserved.

package types

import "time"

// FieldID identifies a logical clinical field targeted by extraction rules
// and referenced in validation warnings and score breakdowns.
type FieldID string

const (
	FieldWBC           FieldID = "wbc"
	FieldCRP           FieldID = "crp"
	FieldProcalcitonin FieldID = "procalcitonin"
	FieldLactate       FieldID = "lactate"
	FieldTemperature   FieldID = "temperature"
	FieldHeartRate     FieldID = "heart_rate"
	FieldRespRate      FieldID = "resp_rate"
	FieldSystolicBP    FieldID = "systolic_bp"
	FieldDiastolicBP   FieldID = "diastolic_bp"
	FieldHemoglobin    FieldID = "hemoglobin"
	FieldCreatinine    FieldID = "creatinine"
	FieldBilirubin     FieldID = "bilirubin"
	FieldPlatelets     FieldID = "platelets"
	FieldPaO2FiO2      FieldID = "pao2_fio2"
	FieldGlasgow       FieldID = "glasgow"
	FieldPathogen      FieldID = "pathogen"
	FieldResistance    FieldID = "resistance"
	FieldDevice        FieldID = "device"
)

// DeviceType names an invasive device tracked for infection risk.
type DeviceType string

const (
	DeviceCVC             DeviceType = "central_venous_catheter"
	DeviceVentilation     DeviceType = "mechanical_ventilation"
	DeviceUrinaryCatheter DeviceType = "urinary_catheter"
	DeviceTracheostomy    DeviceType = "tracheostomy"
	DeviceDrainage        DeviceType = "drainage"
	DevicePEG             DeviceType = "peg_tube"
)

// Device records one invasive device episode for a patient.
type Device struct {
	// Type identifies the device.
	Type DeviceType `json:"type" yaml:"type"`

	// InsertedAt is when the device was placed. All timestamps in a
	// dataset share one reference timezone (UTC).
	InsertedAt time.Time `json:"inserted_at" yaml:"inserted_at"`

	// InPlace reports whether the device is still present.
	InPlace bool `json:"in_place" yaml:"in_place"`
}

// DaysInPlace returns whole days between insertion and the evaluation
// time. Returns 0 when InsertedAt is unset or in the future.
func (d Device) DaysInPlace(at time.Time) int {
	if d.InsertedAt.IsZero() || d.InsertedAt.After(at) {
		return 0
	}
	return int(at.Sub(d.InsertedAt).Hours() / 24)
}

// CultureResult holds one microbiology finding.
type CultureResult struct {
	// Specimen is the sample type (e.g. "blood", "urine", "wound").
	Specimen string `json:"specimen" yaml:"specimen"`

	// Pathogen is the identified organism (e.g. "Escherichia coli").
	Pathogen string `json:"pathogen" yaml:"pathogen"`

	// Resistances lists resistance markers from the controlled
	// vocabulary (e.g. "ESBL", "MRSA"). Markers outside the vocabulary
	// violate a dataset invariant.
	Resistances []string `json:"resistances,omitempty" yaml:"resistances,omitempty"`

	// CollectedAt is the specimen collection time.
	CollectedAt time.Time `json:"collected_at" yaml:"collected_at"`

	// Polymicrobial marks a culture growing more than one organism.
	Polymicrobial bool `json:"polymicrobial,omitempty" yaml:"polymicrobial,omitempty"`
}

// LabValue is a named laboratory marker with its unit.
type LabValue struct {
	// Field identifies the marker (FieldWBC, FieldCRP, ...).
	Field FieldID `json:"field" yaml:"field"`

	// Value is the measured quantity.
	Value float64 `json:"value" yaml:"value"`

	// Unit is the reporting unit (e.g. "mg/L", "x10^3/uL").
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// SeverityInputs carries the per-organ-system parameters required by the
// SOFA, qSOFA and APACHE-like calculators. Nil pointers mean the value
// was not measured; calculators score the missing sub-item as zero and
// list it as incomplete in the result breakdown.
type SeverityInputs struct {
	PaO2FiO2    *float64 `json:"pao2_fio2,omitempty" yaml:"pao2_fio2,omitempty"`
	Platelets   *float64 `json:"platelets,omitempty" yaml:"platelets,omitempty"`
	Bilirubin   *float64 `json:"bilirubin,omitempty" yaml:"bilirubin,omitempty"`
	Glasgow     *int     `json:"glasgow,omitempty" yaml:"glasgow,omitempty"`
	Creatinine  *float64 `json:"creatinine,omitempty" yaml:"creatinine,omitempty"`
	UrineOutput *float64 `json:"urine_output,omitempty" yaml:"urine_output,omitempty"`
	SystolicBP  *float64 `json:"systolic_bp,omitempty" yaml:"systolic_bp,omitempty"`
	DiastolicBP *float64 `json:"diastolic_bp,omitempty" yaml:"diastolic_bp,omitempty"`
	RespRate    *float64 `json:"resp_rate,omitempty" yaml:"resp_rate,omitempty"`
	HeartRate   *float64 `json:"heart_rate,omitempty" yaml:"heart_rate,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Age         *int     `json:"age,omitempty" yaml:"age,omitempty"`

	// Hypotension reports documented hypotension despite fluids.
	Hypotension bool `json:"hypotension,omitempty" yaml:"hypotension,omitempty"`

	// Vasopressors reports active vasopressor support.
	Vasopressors bool `json:"vasopressors,omitempty" yaml:"vasopressors,omitempty"`
}

// ClinicalDataset is the canonical record consumed by the risk engine.
// Both the document-extraction path and the manual-entry path produce
// this shape. The dataset is owned by whichever caller assembled it; the
// engine never retains it.
type ClinicalDataset struct {
	// Patient is a local patient label or code. Never a national ID.
	Patient string `json:"patient,omitempty" yaml:"patient,omitempty"`

	// Ward is the hospital section (e.g. "ICU").
	Ward string `json:"ward,omitempty" yaml:"ward,omitempty"`

	// AdmittedAt is the hospital admission timestamp (UTC).
	AdmittedAt time.Time `json:"admitted_at" yaml:"admitted_at"`

	// EvaluatedAt is the reference time for the evaluation (UTC). The
	// hours-since-admission criterion derives from these two stamps.
	EvaluatedAt time.Time `json:"evaluated_at" yaml:"evaluated_at"`

	// Devices lists active and historical invasive devices.
	Devices []Device `json:"devices,omitempty" yaml:"devices,omitempty"`

	// Severity carries the organ-system parameters for severity scores.
	Severity SeverityInputs `json:"severity" yaml:"severity"`

	// Cultures lists microbiology results.
	Cultures []CultureResult `json:"cultures,omitempty" yaml:"cultures,omitempty"`

	// Labs lists laboratory markers, at most one entry per field.
	Labs []LabValue `json:"labs,omitempty" yaml:"labs,omitempty"`
}

// HoursSinceAdmission derives the hospitalization duration in hours.
// A zero admission stamp yields 0. A negative duration is a structural
// invariant violation surfaced by the engine, not clamped here.
func (d ClinicalDataset) HoursSinceAdmission() float64 {
	if d.AdmittedAt.IsZero() || d.EvaluatedAt.IsZero() {
		return 0
	}
	return d.EvaluatedAt.Sub(d.AdmittedAt).Hours()
}

// Lab returns the lab value for field and whether it is present.
func (d ClinicalDataset) Lab(field FieldID) (LabValue, bool) {
	for _, lv := range d.Labs {
		if lv.Field == field {
			return lv, true
		}
	}
	return LabValue{}, false
}
