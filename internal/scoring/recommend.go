// Copyright EpiMind Project, 2026. All rights reserved.

package scoring

import "github.com/razorlong2/epimind-app/pkg/types"

// levelRecommendations are the base clinical actions per risk level,
// ordered by urgency.
var levelRecommendations = map[types.RiskLevel][]string{
	types.RiskCritical: {
		"Immediate isolation and notification of the infection control team",
		"Urgent infectious disease consult",
		"Collect cultures and start broad empirical antibiotic therapy per local protocol",
		"Intensive monitoring; consider organ support",
	},
	types.RiskHigh: {
		"Infectious disease consult within 2 hours",
		"Collect targeted cultures and antibiogram",
		"Preventive isolation",
		"Re-check clinical parameters every 8 hours",
	},
	types.RiskModerate: {
		"Extended monitoring",
		"Document findings fully in the observation sheet",
	},
	types.RiskLow: {
		"Standard monitoring",
		"Standard precautions",
	},
}

// domainRecommendations append one action targeting the dominant
// contributing domain, for levels at or above moderate.
var domainRecommendations = map[types.Domain]string{
	types.DomainDevice:       "Review the necessity of each invasive device and remove those no longer indicated",
	types.DomainMicrobiology: "Align antibiotic therapy with the antibiogram once available",
	types.DomainSeverity:     "Reassess organ support requirements",
	types.DomainLaboratory:   "Repeat inflammatory markers within 24 hours",
}

// recommendations is a deterministic lookup from (eligibility, level,
// dominant domain) to the ordered action list.
func recommendations(eligible bool, level types.RiskLevel, dominant types.Domain) []string {
	if !eligible {
		return []string{
			"Continue standard clinical monitoring",
			"Re-evaluate once the hospitalization passes the eligibility threshold",
		}
	}

	recs := append([]string(nil), levelRecommendations[level]...)
	if level.AtLeast(types.RiskModerate) {
		if extra, ok := domainRecommendations[dominant]; ok {
			recs = append(recs, extra)
		}
	}
	return recs
}
