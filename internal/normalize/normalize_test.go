// Copyright EpiMind Project, 2026. All rights reserved.

package normalize

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		lang string
		want string
	}{
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "decimal comma becomes dot",
			in:   "Leucocite: 15,2",
			want: "Leucocite: 15.2",
		},
		{
			name: "english thousands comma removed",
			in:   "Platelets: 1,200 x10^3/uL",
			lang: "en",
			want: "Platelets: 1200 x10^3/uL",
		},
		{
			name: "english multi-group number",
			in:   "Count: 12,345,678",
			lang: "en",
			want: "Count: 12345678",
		},
		{
			name: "english decimal point untouched",
			in:   "WBC: 15.2",
			lang: "en",
			want: "WBC: 15.2",
		},
		{
			name: "english comma with confused digits",
			in:   "Platelets: 1,2OO",
			lang: "en",
			want: "Platelets: 1200",
		},
		{
			name: "hyphenated line wrap joined",
			in:   "hemo-\nglobina: 10.1",
			want: "hemoglobina: 10.1",
		},
		{
			name: "digit-adjacent letter O fixed",
			in:   "CRP: 1O2",
			want: "CRP: 102",
		},
		{
			name: "confusion run resolves fully",
			in:   "Trombocite: 1OO",
			want: "Trombocite: 100",
		},
		{
			name: "letters away from digits untouched",
			in:   "Izolat in hemocultura",
			want: "Izolat in hemocultura",
		},
		{
			name: "diacritics folded",
			in:   "Secția ATI, analiză recoltată",
			want: "Sectia ATI, analiza recoltata",
		},
		{
			name: "crlf and blank runs collapsed",
			in:   "linia unu\r\n\r\n\r\n\r\nlinia doi",
			want: "linia unu\n\nlinia doi",
		},
		{
			name: "trailing spaces stripped",
			in:   "valoare: 12   \nurmatoarea",
			want: "valoare: 12\nurmatoarea",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang := tt.lang
			if lang == "" {
				lang = "ro"
			}
			got := Normalize(tt.in, lang)
			if got != tt.want {
				t.Errorf("Normalize(%q, %q) = %q, want %q", tt.in, lang, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []struct {
		text string
		lang string
	}{
		{"Leucocite: 15,2\nCRP: 1O2\nhemo-\nglobina: 9,8", "ro"},
		{"PaO2/FiO2: 185", "ro"},
		{"Secția ATI\r\nTA: 120/80", "ro"},
		{"Trombocite: l5O", "ro"},
		{"Platelets: 1,200\nWBC: 15.2", "en"},
		{"Count: 1,2OO,OOO", "en"},
	}
	for _, in := range inputs {
		once := Normalize(in.text, in.lang)
		twice := Normalize(once, in.lang)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q (%s): first %q, second %q", in.text, in.lang, once, twice)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "romanian lab report",
			text: "Pacient internat. Leucocite: 15.2. Rezultat urocultura: pozitiv.",
			want: "ro",
		},
		{
			name: "english lab report",
			text: "Patient admitted to the ward. Leukocytes elevated. Blood culture result pending.",
			want: "en",
		},
		{
			name: "no markers defaults to romanian",
			text: "1234 5678",
			want: "ro",
		},
		{
			name: "romanian with diacritics",
			text: "Analiză recoltată pe secția de terapie intensivă, valoare crescută.",
			want: "ro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestQuality(t *testing.T) {
	if got := Quality(""); got != 0 {
		t.Errorf("Quality of empty text = %d, want 0", got)
	}
	if got := Quality("   \n  "); got != 0 {
		t.Errorf("Quality of whitespace = %d, want 0", got)
	}

	rich := "Pacient: 12345. Rezultat analiza laborator: Leucocite 15.2, CRP 102, valoare crescuta fata de normal."
	poor := "@@##" + strings.Repeat("~", 40)

	richScore := Quality(rich)
	poorScore := Quality(poor)
	if richScore <= poorScore {
		t.Errorf("rich document scored %d, garbage scored %d; want rich higher", richScore, poorScore)
	}
	if richScore > 100 {
		t.Errorf("Quality = %d, want <= 100", richScore)
	}
}
