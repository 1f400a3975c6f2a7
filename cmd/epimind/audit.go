// Copyright EpiMind Project, 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/razorlong2/epimind-app/internal/audit"
	"github.com/razorlong2/epimind-app/pkg/types"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Manage the evaluation history (list, export)",
	Long: `Audit manages the local SQLite evaluation history. Use subcommands to
list past evaluations or export them for review.`,
}

// --- list subcommand ---

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored evaluations, most recent first",
	RunE:  runAuditList,
}

func runAuditList(cmd *cobra.Command, args []string) error {
	store, opts, err := auditStoreFromFlags(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	evals, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}

	if len(evals) == 0 {
		fmt.Println("No evaluations recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-12s  %-10s  %-9s  %-8s  %s\n",
		"ID", "Recorded", "Patient", "Ward", "Composite", "Level", "Pathogen")
	for _, e := range evals {
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-12s  %-10s  %-9d  %-8s  %s\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Patient, e.Ward, e.Composite, e.Level, e.Pathogen)
	}
	fmt.Fprintf(os.Stdout, "\n%d evaluations\n", len(evals))
	return nil
}

// --- export subcommand ---

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the evaluation history to JSON, YAML, or CSV",
	Long: `Export writes stored evaluations to stdout. JSON and YAML carry the
full result breakdown and parse back field-for-field; CSV carries a flat
summary table. Supports the same filter flags as list.`,
	RunE: runAuditExport,
}

func runAuditExport(cmd *cobra.Command, args []string) error {
	store, opts, err := auditStoreFromFlags(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	evals, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json", "":
		return audit.ExportJSON(os.Stdout, evals)
	case "yaml":
		return audit.ExportYAML(os.Stdout, evals)
	case "csv":
		return audit.ExportCSV(os.Stdout, evals)
	default:
		return fmt.Errorf("unsupported format %q: use json, yaml, or csv", format)
	}
}

// --- shared helpers ---

func auditStoreFromFlags(cmd *cobra.Command) (*audit.Store, audit.ListOptions, error) {
	auditDir, _ := cmd.Flags().GetString("audit-dir")

	var opts audit.ListOptions
	opts.Ward, _ = cmd.Flags().GetString("ward")
	level, _ := cmd.Flags().GetString("level")
	opts.Level = types.RiskLevel(level)
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	since, _ := cmd.Flags().GetString("since")
	if since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return nil, opts, fmt.Errorf("parsing --since: %w", err)
		}
		opts.Since = ts
	}

	store, err := audit.NewStore(types.AuditConfig{Dir: auditDir})
	if err != nil {
		return nil, opts, err
	}
	return store, opts, nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	auditCmd.PersistentFlags().String("audit-dir", "audit", "base directory for the audit store")
	auditCmd.PersistentFlags().String("ward", "", "filter by hospital section")
	auditCmd.PersistentFlags().String("level", "", "filter by risk level: low, moderate, high, critical")
	auditCmd.PersistentFlags().String("since", "", "filter by creation time (RFC 3339)")
	auditCmd.PersistentFlags().Int("limit", 0, "maximum evaluations (0 = default 50)")

	// Export flags.
	auditExportCmd.Flags().String("format", "json", "export format: json, yaml, or csv")

	// Wire subcommands.
	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditExportCmd)

	rootCmd.AddCommand(auditCmd)
}
