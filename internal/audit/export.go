// Copyright EpiMind Project, 2026. All rights reserved.

package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// ExportJSON writes evaluations as indented JSON. The field names match
// the stored structures so the output parses back with ParseJSON.
func ExportJSON(w io.Writer, evals []Evaluation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(evals); err != nil {
		return fmt.Errorf("encoding evaluations: %w", err)
	}
	return nil
}

// ParseJSON reads evaluations previously written by ExportJSON.
func ParseJSON(r io.Reader) ([]Evaluation, error) {
	var evals []Evaluation
	if err := json.NewDecoder(r).Decode(&evals); err != nil {
		return nil, fmt.Errorf("decoding evaluations: %w", err)
	}
	return evals, nil
}

// ExportYAML writes evaluations as a YAML document.
func ExportYAML(w io.Writer, evals []Evaluation) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(evals); err != nil {
		return fmt.Errorf("encoding evaluations: %w", err)
	}
	return enc.Close()
}

// ParseYAML reads evaluations previously written by ExportYAML.
func ParseYAML(r io.Reader) ([]Evaluation, error) {
	var evals []Evaluation
	if err := yaml.NewDecoder(r).Decode(&evals); err != nil {
		return nil, fmt.Errorf("decoding evaluations: %w", err)
	}
	return evals, nil
}

// csvHeader defines the flat column layout of the CSV export.
var csvHeader = []string{
	"id", "created_at", "patient", "ward", "hours",
	"composite", "level", "pathogen", "resistances",
}

// ExportCSV writes a flat summary table of evaluations. The full result
// breakdown does not fit a row, so CSV carries the headline fields only.
func ExportCSV(w io.Writer, evals []Evaluation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, e := range evals {
		row := []string{
			e.ID,
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.Patient,
			e.Ward,
			strconv.FormatFloat(e.Hours, 'f', 1, 64),
			strconv.Itoa(e.Composite),
			string(e.Level),
			e.Pathogen,
			strings.Join(e.Resistances, ";"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
