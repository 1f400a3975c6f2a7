// Copyright EpiMind Project, 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/razorlong2/epimind-app/internal/audit"
	"github.com/razorlong2/epimind-app/internal/scoring"
	"github.com/razorlong2/epimind-app/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score [dataset-file]",
	Short: "Score a clinical dataset for infection risk",
	Long: `Score reads a clinical dataset from a YAML or JSON file and evaluates
healthcare-associated infection risk across five domains: hospitalization
time, invasive devices, clinical severity, microbiology, and laboratory
markers. The composite score maps to a risk level with recommendations.

Patients hospitalized under the eligibility threshold receive domain
subscores but no qualifying temporal points.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	ds, err := readDataset(args[0])
	if err != nil {
		return err
	}

	cfg, err := scoringConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	engine := scoring.New(cfg)
	result, err := engine.Score(ds)
	if err != nil {
		return err
	}

	if appendAudit, _ := cmd.Flags().GetBool("audit"); appendAudit {
		auditDir, _ := cmd.Flags().GetString("audit-dir")
		store, err := audit.NewStore(types.AuditConfig{Dir: auditDir})
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.Append(context.Background(), ds, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Recorded evaluation %s\n", id)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatScoreOutput(result, jsonOutput)
}

// readDataset loads a clinical dataset from a YAML or JSON file,
// detected by extension.
func readDataset(path string) (types.ClinicalDataset, error) {
	var ds types.ClinicalDataset

	data, err := os.ReadFile(path)
	if err != nil {
		return ds, fmt.Errorf("reading dataset file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &ds); err != nil {
			return ds, fmt.Errorf("parsing dataset JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return ds, fmt.Errorf("parsing dataset YAML: %w", err)
		}
	default:
		return ds, fmt.Errorf("unsupported dataset format %q: use .json, .yaml, or .yml", filepath.Ext(path))
	}
	return ds, nil
}

// scoringConfigFromFlags returns the default scoring configuration,
// overridden by a --scoring YAML file when provided.
func scoringConfigFromFlags(cmd *cobra.Command) (types.ScoringConfig, error) {
	cfg := scoring.DefaultConfig()

	scoringFile, _ := cmd.Flags().GetString("scoring")
	if scoringFile == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(scoringFile)
	if err != nil {
		return cfg, fmt.Errorf("reading scoring config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing scoring config: %w", err)
	}
	return cfg, nil
}

func formatScoreOutput(result *types.RiskResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(os.Stdout, "Risk level: %s (composite %d)\n", result.Level, result.Composite)
	fmt.Fprintf(os.Stdout, "Hours since admission: %.1f (%s)\n",
		result.HoursSinceAdmission, result.EligibilityReason)

	fmt.Fprintln(os.Stdout, "\nSubscores:")
	fmt.Fprintf(os.Stdout, "  %-14s %d\n", "temporal", result.Subscores.Temporal)
	fmt.Fprintf(os.Stdout, "  %-14s %d\n", "device", result.Subscores.Device)
	fmt.Fprintf(os.Stdout, "  %-14s %d\n", "severity", result.Subscores.Severity)
	fmt.Fprintf(os.Stdout, "  %-14s %d\n", "microbiology", result.Subscores.Microbiology)
	fmt.Fprintf(os.Stdout, "  %-14s %d\n", "laboratory", result.Subscores.Laboratory)

	if len(result.Breakdown) > 0 {
		fmt.Fprintln(os.Stdout, "\nBreakdown:")
		for _, entry := range result.Breakdown {
			fmt.Fprintf(os.Stdout, "  %-14s %+4d  %s\n", entry.Domain, entry.Points, entry.Note)
		}
	}

	if len(result.Incomplete) > 0 {
		fmt.Fprintf(os.Stdout, "\nMissing inputs: %s\n", strings.Join(result.Incomplete, ", "))
	}

	fmt.Fprintln(os.Stdout, "\nRecommendations:")
	for _, rec := range result.Recommendations {
		fmt.Fprintf(os.Stdout, "  - %s\n", rec)
	}
	return nil
}

func init() {
	scoreCmd.Flags().String("scoring", "", "YAML file overriding the default scoring configuration")
	scoreCmd.Flags().Bool("audit", false, "record the evaluation in the audit store")
	scoreCmd.Flags().String("audit-dir", "audit", "base directory for the audit store")
	scoreCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(scoreCmd)
}
