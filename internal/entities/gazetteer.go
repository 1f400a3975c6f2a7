// Copyright EpiMind Project, 2026. All rights reserved.

package entities

import (
	"regexp"
	"strings"

	"github.com/razorlong2/epimind-app/pkg/types"
)

// speciesProfiles maps each organism in the surveillance vocabulary to
// the resistance markers plausibly reported for it. The validator uses
// this to flag marker/organism combinations that merit review.
var speciesProfiles = map[string][]string{
	"Escherichia coli":         {"ESBL", "CRE", "AmpC", "NDM", "CTX-M"},
	"Klebsiella pneumoniae":    {"ESBL", "CRE", "KPC", "NDM", "OXA-48"},
	"Pseudomonas aeruginosa":   {"MDR", "XDR", "PDR"},
	"Acinetobacter baumannii":  {"OXA-48", "MDR", "XDR", "PDR"},
	"Staphylococcus aureus":    {"MRSA", "VISA"},
	"Enterococcus faecalis":    {"VRE"},
	"Enterococcus faecium":     {"VRE"},
	"Proteus mirabilis":        {"ESBL", "CRE"},
	"Candida auris":            {"MDR"},
	"Clostridioides difficile": {},
}

// KnownResistances returns the resistance markers typically reported
// for a species, or nil for organisms outside the vocabulary.
func KnownResistances(species string) []string {
	return speciesProfiles[species]
}

// bacterialGenera are genus names accepted by the binomial recognizer.
// The list is broader than speciesProfiles so organisms without a
// resistance profile are still captured as named entities.
var bacterialGenera = map[string]bool{
	"escherichia": true, "klebsiella": true, "pseudomonas": true,
	"acinetobacter": true, "staphylococcus": true, "streptococcus": true,
	"enterococcus": true, "enterobacter": true, "serratia": true,
	"proteus": true, "morganella": true, "citrobacter": true,
	"stenotrophomonas": true, "haemophilus": true, "legionella": true,
	"listeria": true, "neisseria": true, "salmonella": true,
	"shigella": true, "candida": true, "clostridioides": true,
	"clostridium": true, "providencia": true, "burkholderia": true,
}

// binomialRe matches a capitalized Latin binomial ("Serratia
// marcescens"). Matching is case-sensitive on purpose: requiring the
// capitalized genus keeps ordinary prose out.
var binomialRe = regexp.MustCompile(`\b([A-Z][a-z]{3,})\s+([a-z]{3,})\b`)

// recognizeBinomials is the named-entity pass for organisms outside the
// fixed pattern vocabulary. It is purely lexical and therefore
// deterministic: same text, same candidates, every run.
func recognizeBinomials(text string) []types.CandidateFact {
	var facts []types.CandidateFact
	for _, m := range binomialRe.FindAllStringSubmatchIndex(text, -1) {
		genus := text[m[2]:m[3]]
		species := text[m[4]:m[5]]
		if !bacterialGenera[strings.ToLower(genus)] {
			continue
		}
		canonical := genus + " " + species
		facts = append(facts, types.CandidateFact{
			Kind:       types.KindPathogen,
			Field:      types.FieldPathogen,
			Raw:        text[m[0]:m[1]],
			Span:       types.Span{Start: m[0], End: m[1]},
			Text:       canonical,
			Confidence: 0.7,
			RuleID:     "ner-binomial",
		})
	}
	return facts
}

// antibiogramRe matches antibiogram lines reporting resistance to a
// named drug ("Meropenem: R", "vancomicina - rezistent").
var antibiogramRe = regexp.MustCompile(`(?i)\b(meropenem|imipenem|ertapenem|vancomycin|vancomicina|oxacillin|oxacilina|methicillin|meticilina|colistin)\b\s*[:\-]?\s*(r\b|rezistent\w*|resistant)`)

// drugMarkerClass maps a resistant drug to the marker class it implies.
var drugMarkerClass = map[string]string{
	"meropenem": "CRE", "imipenem": "CRE", "ertapenem": "CRE",
	"vancomycin": "VRE", "vancomicina": "VRE",
	"oxacillin": "MRSA", "oxacilina": "MRSA",
	"methicillin": "MRSA", "meticilina": "MRSA",
	"colistin": "PDR",
}

// recognizeAntibiogram derives resistance-marker candidates from
// per-drug susceptibility lines. These are weaker evidence than an
// explicit marker mention, so they carry lower confidence and lose
// tie-breaks against the acronym rules.
func recognizeAntibiogram(text string) []types.CandidateFact {
	var facts []types.CandidateFact
	for _, m := range antibiogramRe.FindAllStringSubmatchIndex(text, -1) {
		drug := strings.ToLower(text[m[2]:m[3]])
		marker, ok := drugMarkerClass[drug]
		if !ok {
			continue
		}
		facts = append(facts, types.CandidateFact{
			Kind:       types.KindResistance,
			Field:      types.FieldResistance,
			Raw:        text[m[0]:m[1]],
			Span:       types.Span{Start: m[0], End: m[1]},
			Text:       marker,
			Confidence: 0.6,
			RuleID:     "ner-antibiogram",
		})
	}
	return facts
}
