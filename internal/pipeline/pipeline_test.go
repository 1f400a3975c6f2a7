// Copyright EpiMind Project, 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razorlong2/epimind-app/internal/entities"
	"github.com/razorlong2/epimind-app/internal/ocr"
	"github.com/razorlong2/epimind-app/internal/patterns"
	"github.com/razorlong2/epimind-app/pkg/types"
)

// fakeEngine returns canned text per image path, or an error.
type fakeEngine struct {
	texts map[string]ocr.Text
}

func (f *fakeEngine) Recognize(ctx context.Context, imagePath string) (ocr.Text, error) {
	text, ok := f.texts[imagePath]
	if !ok {
		return ocr.Text{}, errors.New("unreadable image: " + imagePath)
	}
	return text, nil
}

var testStamp = Stamp{
	Patient:     "P-1042",
	Ward:        "ATI",
	AdmittedAt:  time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	EvaluatedAt: time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC),
}

const romanianReport = `Pacient internat, sectia ATI.
Leucocite: 15,2
CRP: 120
TA: 120/80
Urocultura: Escherichia coli, ESBL pozitiv
Cateter venos central montat`

func newPipeline(engine ocr.Engine) *Pipeline {
	return New(engine, entities.New(patterns.Builtin()), "")
}

func TestRunTextEndToEnd(t *testing.T) {
	p := newPipeline(nil)

	res, err := p.RunText(context.Background(), "fisa.txt", romanianReport, testStamp)
	require.NoError(t, err)

	assert.Equal(t, "fisa.txt", res.Source)
	assert.Equal(t, "ro", res.Language)
	assert.Greater(t, res.Quality, 0)

	ds := res.Dataset
	assert.Equal(t, "P-1042", ds.Patient)
	assert.Equal(t, "ATI", ds.Ward)
	assert.Equal(t, testStamp.AdmittedAt, ds.AdmittedAt)
	assert.Equal(t, 96.0, ds.HoursSinceAdmission())

	wbc, ok := ds.Lab(types.FieldWBC)
	require.True(t, ok, "WBC should be extracted despite the decimal comma")
	assert.Equal(t, 15.2, wbc.Value)

	crp, ok := ds.Lab(types.FieldCRP)
	require.True(t, ok)
	assert.Equal(t, 120.0, crp.Value)

	require.NotNil(t, ds.Severity.SystolicBP)
	assert.Equal(t, 120.0, *ds.Severity.SystolicBP)
	require.NotNil(t, ds.Severity.DiastolicBP)
	assert.Equal(t, 80.0, *ds.Severity.DiastolicBP)

	require.Len(t, ds.Cultures, 1)
	assert.Equal(t, "Escherichia coli", ds.Cultures[0].Pathogen)
	assert.Equal(t, []string{"ESBL"}, ds.Cultures[0].Resistances)

	require.Len(t, ds.Devices, 1)
	assert.Equal(t, types.DeviceCVC, ds.Devices[0].Type)
	assert.True(t, ds.Devices[0].InsertedAt.IsZero())

	// Spans in the candidate set reference the normalized text.
	for _, c := range res.Candidates {
		assert.Equal(t, res.Text[c.Span.Start:c.Span.End], c.Raw)
	}
}

func TestRunTextDeterministic(t *testing.T) {
	p := newPipeline(nil)

	first, err := p.RunText(context.Background(), "fisa.txt", romanianReport, testStamp)
	require.NoError(t, err)
	second, err := p.RunText(context.Background(), "fisa.txt", romanianReport, testStamp)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunTextAlreadyNormalized(t *testing.T) {
	p := newPipeline(nil)

	raw, err := p.RunText(context.Background(), "a", romanianReport, testStamp)
	require.NoError(t, err)
	clean, err := p.RunText(context.Background(), "a", raw.Text, testStamp)
	require.NoError(t, err)
	assert.Equal(t, raw.Dataset, clean.Dataset)
}

func TestRunTextEnglishThousands(t *testing.T) {
	p := New(nil, entities.New(patterns.Builtin()), "en")

	report := "Patient admitted to the ward.\nPlatelets: 1,200 x10^3/uL\nWBC: 15.2"
	res, err := p.RunText(context.Background(), "report.txt", report, testStamp)
	require.NoError(t, err)
	assert.Equal(t, "en", res.Language)

	// The comma is a thousands grouping here, not a decimal separator.
	require.NotNil(t, res.Dataset.Severity.Platelets)
	assert.Equal(t, 1200.0, *res.Dataset.Severity.Platelets)

	wbc, ok := res.Dataset.Lab(types.FieldWBC)
	require.True(t, ok)
	assert.Equal(t, 15.2, wbc.Value)
}

func TestRunTextEmptyDocument(t *testing.T) {
	p := newPipeline(nil)

	res, err := p.RunText(context.Background(), "blank.txt", "   \n  ", testStamp)
	require.NoError(t, err, "absence of extractable data is not an error")
	assert.Empty(t, res.Dataset.Labs)
	assert.Empty(t, res.Dataset.Cultures)
	assert.Equal(t, "P-1042", res.Dataset.Patient, "stamp still applied")
}

func TestRunTextCancellation(t *testing.T) {
	p := newPipeline(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.RunText(ctx, "fisa.txt", romanianReport, testStamp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewFromConfig(t *testing.T) {
	rulesFile := filepath.Join(t.TempDir(), "rules.yaml")
	rules := `rules:
  - id: ferritin-labeled
    field: ferritin
    expr: 'feritina[:=\s]*(\d+(?:\.\d+)?)'
    unit: ng/mL
`
	require.NoError(t, os.WriteFile(rulesFile, []byte(rules), 0o644))

	cfg := types.PipelineConfig{
		Extraction: types.ExtractionConfig{Language: "ro", RulesFile: rulesFile},
	}
	p, err := NewFromConfig(cfg)
	require.NoError(t, err)

	res, err := p.RunText(context.Background(), "fisa.txt", "Feritina: 820", testStamp)
	require.NoError(t, err)
	assert.Equal(t, "ro", res.Language)

	ferritin, ok := res.Dataset.Lab(types.FieldID("ferritin"))
	require.True(t, ok, "merged custom rule should extract")
	assert.Equal(t, 820.0, ferritin.Value)
}

func TestNewFromConfigRejectsCollidingRules(t *testing.T) {
	rulesFile := filepath.Join(t.TempDir(), "rules.yaml")
	rules := `rules:
  - id: wbc-labeled-ro
    field: wbc
    expr: 'leucocite[:=\s]*(\d+)'
`
	require.NoError(t, os.WriteFile(rulesFile, []byte(rules), 0o644))

	_, err := NewFromConfig(types.PipelineConfig{
		Extraction: types.ExtractionConfig{RulesFile: rulesFile},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wbc-labeled-ro")
}

func TestRunWithEngine(t *testing.T) {
	engine := &fakeEngine{texts: map[string]ocr.Text{
		"scan.png": {
			Content: "Leucocite: 15,2\nCRP: 120",
			Tokens: []ocr.TokenConfidence{
				{Token: "Leucocite:", Confidence: 0.9},
				{Token: "15,2", Confidence: 0.8},
			},
		},
	}}
	p := newPipeline(engine)

	res, err := p.Run(context.Background(), "scan.png", testStamp)
	require.NoError(t, err)
	assert.InDelta(t, 0.85, res.OCRConfidence, 1e-9)

	wbc, ok := res.Dataset.Lab(types.FieldWBC)
	require.True(t, ok)
	assert.Equal(t, 15.2, wbc.Value)
}

func TestRunWithoutEngine(t *testing.T) {
	p := newPipeline(nil)
	_, err := p.Run(context.Background(), "scan.png", testStamp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ocr.ErrEngine))
}

func TestBatch(t *testing.T) {
	engine := &fakeEngine{texts: map[string]ocr.Text{
		"a.png": {Content: "Leucocite: 15,2"},
		"b.png": {Content: "CRP: 120"},
	}}
	p := newPipeline(engine)

	var log bytes.Buffer
	summary, results := p.Batch(context.Background(),
		[]string{"a.png", "broken.png", "b.png"}, testStamp, &log)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Total())
	assert.True(t, summary.HasFailures())
	assert.Len(t, results, 2)

	output := log.String()
	assert.Contains(t, output, "processed: a.png")
	assert.Contains(t, output, "failed:    broken.png")
	assert.Contains(t, output, "Batch summary: 2 processed, 1 failed (total: 3)")
}

func TestBatchCancellation(t *testing.T) {
	engine := &fakeEngine{texts: map[string]ocr.Text{"a.png": {Content: "CRP: 120"}}}
	p := newPipeline(engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var log bytes.Buffer
	summary, _ := p.Batch(ctx, []string{"a.png", "b.png"}, testStamp, &log)
	assert.Equal(t, 0, summary.Total())
	assert.Contains(t, log.String(), "stopped:")
}

func TestBatchStatusLineShape(t *testing.T) {
	engine := &fakeEngine{texts: map[string]ocr.Text{"a.png": {Content: "Leucocite: 15,2\nCRP: 120"}}}
	p := newPipeline(engine)

	var log bytes.Buffer
	p.Batch(context.Background(), []string{"a.png"}, testStamp, &log)

	lines := strings.Split(strings.TrimSpace(log.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "processed: a.png (quality "))
}
