// Copyright EpiMind Project, 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/razorlong2/epimind-app/internal/pipeline"
	"github.com/razorlong2/epimind-app/internal/scoring"
	"github.com/razorlong2/epimind-app/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract a clinical dataset from scanned documents or text",
	Long: `Extract runs the document pipeline: OCR (tesseract), text
normalization, pattern-based extraction, and clinical validation. The
output is a structured dataset with validation warnings.

With --text the inputs are read as plain text files and OCR is skipped.
With --apply the extracted dataset is scored directly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	p, err := pipelineFromFlags(cmd)
	if err != nil {
		return err
	}

	stamp, err := stampFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	textMode, _ := cmd.Flags().GetBool("text")

	if len(args) > 1 && !textMode {
		summary, docs := p.Batch(ctx, args, stamp, os.Stdout)
		if apply, _ := cmd.Flags().GetBool("apply"); apply {
			batched := make([]pipeline.DocumentResult, 0, len(docs))
			for _, doc := range docs {
				batched = append(batched, *doc)
			}
			if err := applyScoring(cmd, batched); err != nil {
				return err
			}
		}
		if summary.HasFailures() {
			return fmt.Errorf("%d document(s) failed extraction", summary.Failed)
		}
		return nil
	}

	var results []pipeline.DocumentResult
	for _, path := range args {
		var doc *pipeline.DocumentResult
		if textMode {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading text file: %w", err)
			}
			doc, err = p.RunText(ctx, path, string(raw), stamp)
			if err != nil {
				return err
			}
		} else {
			doc, err = p.Run(ctx, path, stamp)
			if err != nil {
				return err
			}
		}
		results = append(results, *doc)
	}

	if apply, _ := cmd.Flags().GetBool("apply"); apply {
		return applyScoring(cmd, results)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatExtractOutput(results, jsonOutput)
}

// pipelineFromFlags assembles the stage configuration from CLI flags
// and builds the document pipeline from it.
func pipelineFromFlags(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	var cfg types.PipelineConfig
	cfg.Extraction.Language, _ = cmd.Flags().GetString("lang")
	cfg.Extraction.RulesFile, _ = cmd.Flags().GetString("rules")
	cfg.OCR.Binary, _ = cmd.Flags().GetString("ocr-binary")
	cfg.OCR.Languages, _ = cmd.Flags().GetString("ocr-langs")
	cfg.OCR.Timeout = 2 * time.Minute

	return pipeline.NewFromConfig(cfg)
}

// stampFromFlags builds the dataset stamp the document itself cannot
// supply: patient, ward, and the admission and evaluation timestamps.
func stampFromFlags(cmd *cobra.Command) (pipeline.Stamp, error) {
	var stamp pipeline.Stamp
	stamp.Patient, _ = cmd.Flags().GetString("patient")
	stamp.Ward, _ = cmd.Flags().GetString("ward")

	admitted, _ := cmd.Flags().GetString("admitted")
	if admitted != "" {
		ts, err := time.Parse(time.RFC3339, admitted)
		if err != nil {
			return stamp, fmt.Errorf("parsing --admitted: %w", err)
		}
		stamp.AdmittedAt = ts
	}

	evaluated, _ := cmd.Flags().GetString("evaluated")
	if evaluated == "" {
		stamp.EvaluatedAt = time.Now()
	} else {
		ts, err := time.Parse(time.RFC3339, evaluated)
		if err != nil {
			return stamp, fmt.Errorf("parsing --evaluated: %w", err)
		}
		stamp.EvaluatedAt = ts
	}
	return stamp, nil
}

// applyScoring scores each extracted dataset and prints the results.
func applyScoring(cmd *cobra.Command, results []pipeline.DocumentResult) error {
	engine := scoring.New(scoring.DefaultConfig())
	jsonOutput, _ := cmd.Flags().GetBool("json")

	for _, doc := range results {
		result, err := engine.Score(doc.Dataset)
		if err != nil {
			return fmt.Errorf("scoring %s: %w", doc.Source, err)
		}
		if len(results) > 1 {
			fmt.Fprintf(os.Stdout, "== %s ==\n", doc.Source)
		}
		if err := formatScoreOutput(result, jsonOutput); err != nil {
			return err
		}
	}
	return nil
}

func formatExtractOutput(results []pipeline.DocumentResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, doc := range results {
		fmt.Fprintf(os.Stdout, "%s: language=%s quality=%d facts=%d warnings=%d\n",
			doc.Source, doc.Language, doc.Quality, len(doc.Facts), len(doc.Warnings))

		for _, fact := range doc.Facts {
			switch fact.Kind {
			case types.KindValue:
				fmt.Fprintf(os.Stdout, "  %-16s %-22s rule=%s (%s)\n",
					fact.Field, formatFactValue(fact), fact.RuleID, fact.Outcome)
			default:
				fmt.Fprintf(os.Stdout, "  %-16s %-22s rule=%s (%s)\n",
					fact.Kind, fact.Text, fact.RuleID, fact.Outcome)
			}
		}
		for _, w := range doc.Warnings {
			fmt.Fprintf(os.Stdout, "  warning: %s: %s\n", w.Field, w.Reason)
		}
	}
	return nil
}

func formatFactValue(fact types.ValidatedFact) string {
	s := strings.TrimSpace(fmt.Sprintf("%g %s", fact.Value, fact.Unit))
	return s
}

func init() {
	extractCmd.Flags().Bool("text", false, "read inputs as plain text files, skipping OCR")
	extractCmd.Flags().String("lang", "", "document language: ro or en (default: auto-detect)")
	extractCmd.Flags().String("rules", "", "YAML file with custom extraction rules")
	extractCmd.Flags().String("ocr-binary", "tesseract", "OCR binary to invoke")
	extractCmd.Flags().String("ocr-langs", "ron+eng", "OCR language models")
	extractCmd.Flags().String("patient", "", "patient identifier for the dataset stamp")
	extractCmd.Flags().String("ward", "", "hospital section for the dataset stamp")
	extractCmd.Flags().String("admitted", "", "admission timestamp (RFC 3339)")
	extractCmd.Flags().String("evaluated", "", "evaluation timestamp (RFC 3339, default: now)")
	extractCmd.Flags().Bool("apply", false, "score the extracted dataset directly")
	extractCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(extractCmd)
}
