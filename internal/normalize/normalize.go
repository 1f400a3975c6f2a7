// Copyright EpiMind Project, 2026. All rights reserved.

// Package normalize cleans raw OCR output before pattern extraction:
// line-wrap repair, per-language decimal separator normalization, and
// correction of a bounded set of OCR digit/letter confusions in numeric
// contexts only.
// Normalization is a pure text transformation and never fails; text that
// cannot be confidently cleaned passes through unchanged.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// hyphenWrapRe matches a word split across a line break with a
	// trailing hyphen, common in scanned tabular reports.
	hyphenWrapRe = regexp.MustCompile(`(\pL)-\r?\n\s*(\pL)`)

	// decimalCommaRe matches a comma used as decimal separator between
	// digits (Romanian locale).
	decimalCommaRe = regexp.MustCompile(`(\d),(\d)`)

	// thousandsCommaRe matches a comma used as thousands grouping
	// (English locale): exactly three digits follow, then a non-digit.
	thousandsCommaRe = regexp.MustCompile(`(\d),(\d{3})\b`)

	// crlfRe folds carriage returns left by some OCR engines.
	crlfRe = regexp.MustCompile(`\r\n?`)

	// blankRunRe collapses runs of three or more newlines.
	blankRunRe = regexp.MustCompile(`\n{3,}`)

	// trailingSpaceRe strips spaces before a newline.
	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
)

// confusions are digit/letter look-alikes fixed only when adjacent to a
// digit, so free-text words (and pathogen names) are never corrupted.
// Each pair is applied in both directions: digit before and digit after.
var confusions = []struct {
	letters string // character class of confusable letters
	digit   string
}{
	{"Oo", "0"},
	{"lI|", "1"},
	{"S", "5"},
	{"B", "8"},
	{"Z", "2"},
}

var confusionRes = buildConfusionRes()

type confusionRe struct {
	before *regexp.Regexp // digit then letter
	after  *regexp.Regexp // letter then digit
	digit  string
}

func buildConfusionRes() []confusionRe {
	res := make([]confusionRe, 0, len(confusions))
	for _, c := range confusions {
		class := "[" + regexp.QuoteMeta(c.letters) + "]"
		res = append(res, confusionRe{
			before: regexp.MustCompile(`(\d)` + class),
			after:  regexp.MustCompile(class + `(\d)`),
			digit:  c.digit,
		})
	}
	return res
}

// foldDiacritics strips combining marks so Romanian diacritics match
// plain-ASCII patterns (analiză -> analiza).
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize cleans raw recognized text for the given document language.
// A comma between digits is a decimal separator in Romanian text and is
// rewritten to a dot; in English text it is a thousands grouping and is
// removed, so "1,200" reads as 1200, not 1.2. Languages other than "en"
// follow the Romanian convention, the primary locale. The transformation
// is deterministic and idempotent: normalizing already-normalized text
// is a no-op, so extraction behaves identically on either.
func Normalize(raw, lang string) string {
	text := clean(raw)
	if text == "" {
		return ""
	}

	if lang == "en" {
		// Fixpoint so multi-group numbers ("12,345,678") fully resolve.
		for {
			next := thousandsCommaRe.ReplaceAllString(text, "$1$2")
			if next == text {
				return text
			}
			text = next
		}
	}
	return decimalCommaRe.ReplaceAllString(text, "$1.$2")
}

// clean applies the language-neutral passes. Separator handling runs
// after confusion repair so a group like "1,2OO" resolves to digits
// before the locale convention is applied.
func clean(raw string) string {
	if raw == "" {
		return ""
	}

	text := crlfRe.ReplaceAllString(raw, "\n")

	if folded, _, err := transform.String(foldDiacritics, text); err == nil {
		text = folded
	}

	text = hyphenWrapRe.ReplaceAllString(text, "$1$2")
	text = fixNumericConfusions(text)
	text = trailingSpaceRe.ReplaceAllString(text, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// fixNumericConfusions replaces letter look-alikes adjacent to digits
// until a fixpoint, so runs like "1OO" fully resolve to "100".
func fixNumericConfusions(text string) string {
	for i := 0; i < 8; i++ {
		next := text
		for _, c := range confusionRes {
			next = c.before.ReplaceAllString(next, "${1}"+c.digit)
			next = c.after.ReplaceAllString(next, c.digit+"${1}")
		}
		if next == text {
			return text
		}
		text = next
	}
	return text
}

// romanianMarkers and englishMarkers are high-frequency words from lab
// and microbiology reports used for language detection. Diacritics are
// folded before counting, so the Romanian markers are ASCII.
var (
	romanianMarkers = []string{"analiza", "rezultat", "valoare", "pacient", "sectia", "recoltat", "crescut", "scazut", "leucocite", "urocultura", "hemocultura"}
	englishMarkers  = []string{"analysis", "result", "value", "patient", "ward", "collected", "elevated", "decreased", "leukocytes", "urine culture", "blood culture"}
)

// DetectLanguage guesses the document language ("ro" or "en") by
// counting marker words. Ties resolve to Romanian, the primary locale.
func DetectLanguage(text string) string {
	lower := strings.ToLower(clean(text))
	var ro, en int
	for _, m := range romanianMarkers {
		if strings.Contains(lower, m) {
			ro++
		}
	}
	for _, m := range englishMarkers {
		if strings.Contains(lower, m) {
			en++
		}
	}
	if en > ro {
		return "en"
	}
	return "ro"
}

var (
	numberRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	garbageRe = regexp.MustCompile(`[^\w\s.,;:()/%°<>=+*-]`)
)

// qualityVocabulary are words whose presence suggests the OCR captured a
// genuine medical document.
var qualityVocabulary = []string{"pacient", "patient", "analiza", "analysis", "rezultat", "result", "valoare", "value", "normal", "laborator", "laboratory"}

// Quality estimates OCR extraction quality on a 0-100 scale from text
// length, medical vocabulary hits, numeric density, and the proportion
// of garbage characters.
func Quality(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	var score int

	switch n := len(text); {
	case n >= 50 && n <= 5000:
		score += 25
	case n < 50:
		score += 10
	default:
		score += 15
	}

	lower := strings.ToLower(text)
	var vocab int
	for _, w := range qualityVocabulary {
		if strings.Contains(lower, w) {
			vocab++
		}
	}
	score += min(vocab*5, 25)

	score += min(len(numberRe.FindAllString(text, -1))*2, 25)

	if len(garbageRe.FindAllString(text, -1)) < len(text)/20 {
		score += 25
	} else {
		score += 10
	}

	return min(score, 100)
}
