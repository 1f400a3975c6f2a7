// Copyright EpiMind Project, 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/razorlong2/epimind-app/internal/patterns"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns [rule-id...]",
	Short: "List the extraction pattern registry",
	Long: `Patterns prints every registered extraction rule: identifier, target
field, kind, value shape, language, and priority. Naming rule identifiers
prints the full definition of each, including the match expression. With
--rules a custom YAML rule file is merged first; identifier conflicts with
built-in rules are reported as errors, never silently overridden.`,
	RunE: runPatterns,
}

func runPatterns(cmd *cobra.Command, args []string) error {
	registry := patterns.Builtin()

	if rulesFile, _ := cmd.Flags().GetString("rules"); rulesFile != "" {
		if err := patterns.MergeFile(registry, rulesFile); err != nil {
			return err
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")

	if len(args) > 0 {
		return describeRules(registry, args, jsonOutput)
	}

	rules := registry.Rules()

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rules)
	}

	fmt.Fprintf(os.Stdout, "%-26s  %-16s  %-10s  %-8s  %-4s  %s\n",
		"ID", "Field", "Kind", "Shape", "Lang", "Priority")
	for _, r := range rules {
		lang := r.Language
		if lang == "" {
			lang = "any"
		}
		fmt.Fprintf(os.Stdout, "%-26s  %-16s  %-10s  %-8s  %-4s  %d\n",
			r.ID, r.Field, r.Kind, r.Shape, lang, r.Priority)
	}
	fmt.Fprintf(os.Stdout, "\n%d rules\n", len(rules))
	return nil
}

// describeRules prints the full definition of each named rule.
func describeRules(registry *patterns.Registry, ids []string, jsonOutput bool) error {
	rules := make([]patterns.Rule, 0, len(ids))
	for _, id := range ids {
		rule, ok := registry.Lookup(id)
		if !ok {
			return fmt.Errorf("unknown rule %q", id)
		}
		rules = append(rules, rule)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rules)
	}

	for i, r := range rules {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, "%s\n", r.ID)
		fmt.Fprintf(os.Stdout, "  field:      %s\n", r.Field)
		if r.PairField != "" {
			fmt.Fprintf(os.Stdout, "  pair field: %s\n", r.PairField)
		}
		fmt.Fprintf(os.Stdout, "  kind:       %s\n", r.Kind)
		fmt.Fprintf(os.Stdout, "  shape:      %s\n", r.Shape)
		fmt.Fprintf(os.Stdout, "  language:   %s\n", r.Language)
		fmt.Fprintf(os.Stdout, "  expr:       %s\n", r.Expr)
		if r.Unit != "" {
			fmt.Fprintf(os.Stdout, "  unit:       %s\n", r.Unit)
		}
		if r.Canonical != "" {
			fmt.Fprintf(os.Stdout, "  canonical:  %s\n", r.Canonical)
		}
		fmt.Fprintf(os.Stdout, "  priority:   %d\n", r.Priority)
		fmt.Fprintf(os.Stdout, "  confidence: %.2f\n", r.Confidence)
	}
	return nil
}

func init() {
	patternsCmd.Flags().String("rules", "", "YAML file with custom extraction rules to merge")
	patternsCmd.Flags().Bool("json", false, "output the registry as JSON")

	rootCmd.AddCommand(patternsCmd)
}
