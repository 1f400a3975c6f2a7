// Copyright EpiMind Project, 2026. All rights reserved.

package patterns

import "github.com/razorlong2/epimind-app/pkg/types"

// Builtin returns a registry loaded with the built-in rule set for
// Romanian and English laboratory and microbiology reports. Rule
// identifiers are stable: custom rule files are checked against them at
// merge time and collisions are rejected.
func Builtin() *Registry {
	r := NewRegistry()
	for _, rule := range builtinRules() {
		if err := r.Register(rule); err != nil {
			// Built-in rules are a static table; a conflict here is a
			// programmer error.
			panic(err)
		}
	}
	return r
}

const (
	decimal = `(\d+(?:\.\d+)?)`
	integer = `(\d{1,3})`
)

func builtinRules() []Rule {
	var rules []Rule
	rules = append(rules, numericRules()...)
	rules = append(rules, pathogenRules()...)
	rules = append(rules, resistanceRules()...)
	rules = append(rules, deviceRules()...)
	return rules
}

// numericRules cover the laboratory and vital-sign vocabulary of both
// languages. Labeled patterns (name then value) carry high confidence;
// contextual patterns (value then unit then name) are weaker and lose
// validation tie-breaks to labeled ones.
func numericRules() []Rule {
	return []Rule{
		{ID: "wbc-labeled-ro", Field: types.FieldWBC, Kind: types.KindValue, Shape: ShapeDecimal, Language: "ro",
			Expr: `(?:\bleucocite\b|\bgb\b)[:=\s]*` + decimal, Unit: "x10^3/uL", Priority: 10, Confidence: 0.9},
		{ID: "wbc-labeled-en", Field: types.FieldWBC, Kind: types.KindValue, Shape: ShapeDecimal, Language: "en",
			Expr: `(?:\bwbc\b|white\s+blood\s+cells?|\bleukocytes\b)[:=\s]*` + decimal, Unit: "x10^3/uL", Priority: 10, Confidence: 0.9},
		{ID: "wbc-unit-context", Field: types.FieldWBC, Kind: types.KindValue, Shape: ShapeDecimal, Language: "any",
			Expr: decimal + `\s*(?:x\s*)?10\^?3\s*/\s*(?:ul|mm3)`, Unit: "x10^3/uL", Priority: 4, Confidence: 0.6},

		{ID: "crp-labeled", Field: types.FieldCRP, Kind: types.KindValue, Shape: ShapeDecimal, Language: "any",
			Expr: `\bcrp\b[:=\s]*` + decimal, Unit: "mg/L", Priority: 10, Confidence: 0.9},
		{ID: "crp-longform-ro", Field: types.FieldCRP, Kind: types.KindValue, Shape: ShapeDecimal, Language: "ro",
			Expr: `proteina\s+c[\s-]reactiva[:=\s]*` + decimal, Unit: "mg/L", Priority: 8, Confidence: 0.85},
		{ID: "crp-longform-en", Field: types.FieldCRP, Kind: types.KindValue, Shape: ShapeDecimal, Language: "en",
			Expr: `c[\s-]reactive\s+protein[:=\s]*` + decimal, Unit: "mg/L", Priority: 8, Confidence: 0.85},

		{ID: "pct-labeled", Field: types.FieldProcalcitonin, Kind: types.KindValue, Shape: ShapeDecimal, Language: "any",
			Expr: `(?:procalcitonin[a]?|\bpct\b)[:=\s]*` + decimal, Unit: "ng/mL", Priority: 10, Confidence: 0.9},

		{ID: "lactate-labeled", Field: types.FieldLactate, Kind: types.KindValue, Shape: ShapeDecimal, Language: "any",
			Expr: `\blactat[e]?\b[:=\s]*` + decimal, Unit: "mmol/L", Priority: 10, Confidence: 0.85},

		{ID: "temp-labeled", Field: types.FieldTemperature, Kind: types.KindValue, Shape: ShapeDecimal, Language: "any",
			Expr: `(?:\btemperatura\b|\btemp\b)[:=\s]*` + decimal, Unit: "C", Priority: 10, Confidence: 0.9},
		{ID: "temp-degrees", Field: types.FieldTemperature, Kind: types.KindValue, Shape: ShapeDecimal, Language: "any",
			Expr: decimal + `\s*°\s*c\b`, Unit: "C", Priority: 4, Confidence: 0.6},

		{ID: "hr-labeled-ro", Field: types.FieldHeartRate, Kind: types.KindValue, Shape: ShapeInteger, Language: "ro",
			Expr: `(?:\bpuls\b|\bfc\b|frecventa\s+cardiaca)[:=\s]*` + integer, Unit: "bpm", Priority: 10, Confidence: 0.9},
		{ID: "hr-labeled-en", Field: types.FieldHeartRate, Kind: types.KindValue, Shape: ShapeInteger, Language: "en",
			Expr: `(?:\bhr\b|heart\s+rate|\bpulse\b)[:=\s]*` + integer, Unit: "bpm", Priority: 10, Confidence: 0.9},

		{ID: "rr-labeled-ro", Field: types.FieldRespRate, Kind: types.KindValue, Shape: ShapeInteger, Language: "ro",
			Expr: `(?:\bfr\b|frecventa\s+respiratorie)[:=\s]*` + integer, Unit: "/min", Priority: 10, Confidence: 0.9},
		{ID: "rr-labeled-en", Field: types.FieldRespRate, Kind: types.KindValue, Shape: ShapeInteger, Language: "en",
			Expr: `(?:\brr\b|resp(?:iratory)?\s+rate)[:=\s]*` + integer, Unit: "/min", Priority: 10, Confidence: 0.9},

		{ID: "bp-pair", Field: types.FieldSystolicBP, PairField: types.FieldDiastolicBP, Kind: types.KindValue, Shape: ShapeInteger, Language: "any",
			Expr: `(?:\bta\b|\btas\b|tensiune(?:\s+arteriala)?|\bbp\b|blood\s+pressure)[:=\s]*(\d{2,3})\s*/\s*(\d{2,3})`, Unit: "mmHg", Priority: 10, Confidence: 0.9},

		{ID: "hgb-labeled", Field: types.FieldHemoglobin, Kind: types.KindValue, Shape: ShapeDecimal, Language: "any",
			Expr: `(?:hemoglobin[a]?|\bhgb\b|\bhb\b)[:=\s]*` + decimal, Unit: "g/dL", Priority: 10, Confidence: 0.9},

		{ID: "creatinine-labeled", Field: types.FieldCreatinine, Kind: types.KindValue, Shape: ShapeDecimal, Language: "any",
			Expr: `creatinin[ae]?[:=\s]*` + decimal, Unit: "mg/dL", Priority: 10, Confidence: 0.9},

		{ID: "bilirubin-labeled", Field: types.FieldBilirubin, Kind: types.KindValue, Shape: ShapeDecimal, Language: "any",
			Expr: `bilirubin[ae]?(?:\s+total[a]?)?[:=\s]*` + decimal, Unit: "mg/dL", Priority: 10, Confidence: 0.9},

		{ID: "platelets-labeled-ro", Field: types.FieldPlatelets, Kind: types.KindValue, Shape: ShapeDecimal, Language: "ro",
			Expr: `\btrombocite\b[:=\s]*` + decimal, Unit: "x10^3/uL", Priority: 10, Confidence: 0.9},
		{ID: "platelets-labeled-en", Field: types.FieldPlatelets, Kind: types.KindValue, Shape: ShapeDecimal, Language: "en",
			Expr: `(?:platelets?|\bplt\b)[:=\s]*` + decimal, Unit: "x10^3/uL", Priority: 10, Confidence: 0.9},

		// The normalizer rewrites the O in "PaO2" to a zero (digit
		// context), so both spellings must match.
		{ID: "pao2fio2-labeled", Field: types.FieldPaO2FiO2, Kind: types.KindValue, Shape: ShapeDecimal, Language: "any",
			Expr: `pa[o0]2\s*/\s*fi[o0]2[:=\s]*` + decimal, Priority: 10, Confidence: 0.9},

		{ID: "glasgow-labeled", Field: types.FieldGlasgow, Kind: types.KindValue, Shape: ShapeInteger, Language: "any",
			Expr: `(?:\bglasgow\b|\bgcs\b)[:=\s]*(\d{1,2})\b`, Priority: 10, Confidence: 0.9},
	}
}

// pathogenRules match organism names in binomial or abbreviated form and
// emit the canonical species name. Free-text organism mentions outside
// this fixed vocabulary are handled by the gazetteer pass in the entity
// extractor.
func pathogenRules() []Rule {
	species := []struct {
		id, expr, canonical string
	}{
		{"pathogen-ecoli", `escherichia\s+coli|\be\.?\s*coli\b`, "Escherichia coli"},
		{"pathogen-klebsiella", `klebsiella\s+pneumoniae`, "Klebsiella pneumoniae"},
		{"pathogen-pseudomonas", `pseudomonas\s+aeruginosa`, "Pseudomonas aeruginosa"},
		{"pathogen-staph-aureus", `staphylococcus\s+aureus|\bs\.?\s*aureus\b`, "Staphylococcus aureus"},
		{"pathogen-acinetobacter", `acinetobacter\s+baumannii`, "Acinetobacter baumannii"},
		{"pathogen-enterococcus-faecalis", `enterococcus\s+faecalis`, "Enterococcus faecalis"},
		{"pathogen-enterococcus-faecium", `enterococcus\s+faecium`, "Enterococcus faecium"},
		{"pathogen-proteus", `proteus\s+mirabilis`, "Proteus mirabilis"},
		{"pathogen-candida-auris", `candida\s+auris`, "Candida auris"},
		{"pathogen-cdiff", `clostridi(?:oides|um)\s+difficile|\bc\.?\s*difficile\b`, "Clostridioides difficile"},
	}

	rules := make([]Rule, 0, len(species))
	for _, s := range species {
		rules = append(rules, Rule{
			ID: s.id, Field: types.FieldPathogen, Kind: types.KindPathogen,
			Shape: ShapeEntity, Language: "any", Expr: s.expr,
			Canonical: s.canonical, Priority: 10, Confidence: 0.9,
		})
	}
	return rules
}

// resistanceRules match resistance markers from the controlled
// vocabulary, by acronym or spelled-out phenotype.
func resistanceRules() []Rule {
	markers := []struct {
		id, expr, canonical string
	}{
		{"resistance-esbl", `\besbl\b|extended[\s-]spectrum\s+beta[\s-]lactamase`, "ESBL"},
		{"resistance-mrsa", `\bmrsa\b|methicillin[\s-]resistant`, "MRSA"},
		{"resistance-vre", `\bvre\b|vancomycin[\s-]resistant`, "VRE"},
		{"resistance-cre", `\bcre\b|carbapenem[\s-]resistant`, "CRE"},
		{"resistance-kpc", `\bkpc\b`, "KPC"},
		{"resistance-ndm", `\bndm(?:-1)?\b`, "NDM"},
		{"resistance-oxa48", `\boxa[\s-]?48\b`, "OXA-48"},
		{"resistance-ampc", `\bampc\b`, "AmpC"},
		{"resistance-ctxm", `\bctx[\s-]?m\b`, "CTX-M"},
		{"resistance-visa", `\bvisa\b`, "VISA"},
		{"resistance-mdr", `\bmdr\b|multi[\s-]?drug[\s-]resistant`, "MDR"},
		{"resistance-xdr", `\bxdr\b`, "XDR"},
		{"resistance-pdr", `\bpdr\b`, "PDR"},
	}

	rules := make([]Rule, 0, len(markers))
	for _, m := range markers {
		rules = append(rules, Rule{
			ID: m.id, Field: types.FieldResistance, Kind: types.KindResistance,
			Shape: ShapeToken, Language: "any", Expr: m.expr,
			Canonical: m.canonical, Priority: 10, Confidence: 0.85,
		})
	}
	return rules
}

// deviceRules match invasive device mentions in observation sheets.
func deviceRules() []Rule {
	devices := []struct {
		id, expr  string
		canonical types.DeviceType
	}{
		{"device-cvc", `\bcvc\b|cateter\s+venos\s+central|central\s+venous\s+catheter|central\s+line`, types.DeviceCVC},
		{"device-ventilation", `ventilatie\s+mecanica|mechanical\s+ventilation|\bventilat(?:or)?\b`, types.DeviceVentilation},
		{"device-urinary", `sonda\s+urinara|urinary\s+catheter|\bfoley\b`, types.DeviceUrinaryCatheter},
		{"device-tracheostomy", `traheostom(?:ie|a)|tracheostomy`, types.DeviceTracheostomy},
		{"device-drainage", `\bdrenaj\b|\bdrain(?:age)?\b`, types.DeviceDrainage},
		{"device-peg", `\bpeg\b|gastrostom(?:ie|a|y)`, types.DevicePEG},
	}

	rules := make([]Rule, 0, len(devices))
	for _, d := range devices {
		rules = append(rules, Rule{
			ID: d.id, Field: types.FieldDevice, Kind: types.KindDevice,
			Shape: ShapeToken, Language: "any", Expr: d.expr,
			Canonical: string(d.canonical), Priority: 8, Confidence: 0.75,
		})
	}
	return rules
}
