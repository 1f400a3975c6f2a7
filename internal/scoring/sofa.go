// Copyright EpiMind Project, 2026. All rights reserved.

package scoring

import "github.com/razorlong2/epimind-app/pkg/types"

// SOFAResult holds the SOFA total with its per-organ-system component
// breakdown and the list of parameters that were not measured.
type SOFAResult struct {
	Total      int
	Components map[string]int
	Missing    []string
}

// SOFA computes the Sequential Organ Failure Assessment score from the
// available parameters. Component tables per Vincent et al., Intensive
// Care Med 1996. A missing parameter scores its component as zero and
// is reported in Missing rather than treated as a failure.
func SOFA(s types.SeverityInputs) SOFAResult {
	r := SOFAResult{Components: map[string]int{
		"respiration":    0,
		"coagulation":    0,
		"liver":          0,
		"cardiovascular": 0,
		"cns":            0,
		"renal":          0,
	}}

	if s.PaO2FiO2 != nil {
		switch v := *s.PaO2FiO2; {
		case v < 100:
			r.Components["respiration"] = 4
		case v < 200:
			r.Components["respiration"] = 3
		case v < 300:
			r.Components["respiration"] = 2
		case v < 400:
			r.Components["respiration"] = 1
		}
	} else {
		r.Missing = append(r.Missing, "pao2_fio2")
	}

	if s.Platelets != nil {
		switch v := *s.Platelets; {
		case v < 20:
			r.Components["coagulation"] = 4
		case v < 50:
			r.Components["coagulation"] = 3
		case v < 100:
			r.Components["coagulation"] = 2
		case v < 150:
			r.Components["coagulation"] = 1
		}
	} else {
		r.Missing = append(r.Missing, "platelets")
	}

	if s.Bilirubin != nil {
		switch v := *s.Bilirubin; {
		case v >= 12.0:
			r.Components["liver"] = 4
		case v >= 6.0:
			r.Components["liver"] = 3
		case v >= 2.0:
			r.Components["liver"] = 2
		case v >= 1.2:
			r.Components["liver"] = 1
		}
	} else {
		r.Missing = append(r.Missing, "bilirubin")
	}

	// The form collects hypotension and vasopressor support as flags
	// rather than MAP and drug doses, so the cardiovascular component
	// is bounded at 3.
	if s.Vasopressors {
		r.Components["cardiovascular"] = 3
	} else if s.Hypotension {
		r.Components["cardiovascular"] = 2
	}

	if s.Glasgow != nil {
		switch v := *s.Glasgow; {
		case v < 6:
			r.Components["cns"] = 4
		case v < 10:
			r.Components["cns"] = 3
		case v < 13:
			r.Components["cns"] = 2
		case v < 15:
			r.Components["cns"] = 1
		}
	} else {
		r.Missing = append(r.Missing, "glasgow")
	}

	renal := 0
	if s.Creatinine != nil {
		switch v := *s.Creatinine; {
		case v >= 5.0:
			renal = 4
		case v >= 3.5:
			renal = 3
		case v >= 2.0:
			renal = 2
		case v >= 1.2:
			renal = 1
		}
	} else {
		r.Missing = append(r.Missing, "creatinine")
	}
	if s.UrineOutput != nil {
		switch v := *s.UrineOutput; {
		case v < 0.1:
			renal = max(renal, 4)
		case v < 0.3:
			renal = max(renal, 3)
		case v < 0.5:
			renal = max(renal, 1)
		}
	}
	r.Components["renal"] = renal

	for _, c := range r.Components {
		r.Total += c
	}
	return r
}

// QSOFA computes the quick SOFA score per Sepsis-3: systolic blood
// pressure < 100 mmHg, respiratory rate >= 22/min, altered mentation
// (Glasgow < 15). Missing parameters contribute nothing and are
// reported.
func QSOFA(s types.SeverityInputs) (score int, missing []string) {
	if s.SystolicBP != nil {
		if *s.SystolicBP < 100 {
			score++
		}
	} else {
		missing = append(missing, "systolic_bp")
	}
	if s.RespRate != nil {
		if *s.RespRate >= 22 {
			score++
		}
	} else {
		missing = append(missing, "resp_rate")
	}
	if s.Glasgow != nil {
		if *s.Glasgow < 15 {
			score++
		}
	} else {
		missing = append(missing, "glasgow")
	}
	return score, missing
}

// APACHELike computes a reduced acute-physiology aggregate over the
// vital signs and age the form collects, with APACHE II-style deviation
// bands. It is deliberately coarser than the full APACHE II score,
// which needs arterial blood gas and chemistry panels the dataset does
// not carry.
func APACHELike(s types.SeverityInputs) (score int, missing []string) {
	if s.Temperature != nil {
		switch v := *s.Temperature; {
		case v >= 41 || v < 30:
			score += 4
		case v >= 39 || v < 32:
			score += 3
		case v < 34:
			score += 2
		case v >= 38.5 || v < 36:
			score += 1
		}
	} else {
		missing = append(missing, "temperature")
	}

	if s.HeartRate != nil {
		switch v := *s.HeartRate; {
		case v >= 180 || v < 40:
			score += 4
		case v >= 140 || v < 55:
			score += 3
		case v >= 110 || v < 70:
			score += 2
		}
	} else {
		missing = append(missing, "heart_rate")
	}

	if s.RespRate != nil {
		switch v := *s.RespRate; {
		case v >= 50 || v < 6:
			score += 4
		case v >= 35:
			score += 3
		case v >= 25 || v < 10:
			score += 1
		}
	} else {
		missing = append(missing, "resp_rate")
	}

	if s.Age != nil {
		switch v := *s.Age; {
		case v >= 75:
			score += 6
		case v >= 65:
			score += 5
		case v >= 55:
			score += 3
		case v >= 45:
			score += 2
		}
	} else {
		missing = append(missing, "age")
	}

	return score, missing
}
