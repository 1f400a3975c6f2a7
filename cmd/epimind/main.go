// Copyright EpiMind Project, 2026. All rights reserved.

// Package main is the entry point for the epimind CLI. Each pipeline
// stage is a subcommand: extract, score, patterns, and audit.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the epimind CLI.
var rootCmd = &cobra.Command{
	Use:   "epimind",
	Short: "Healthcare-associated infection risk scoring and document extraction",
	Long: `epimind evaluates the risk of healthcare-associated infection for
hospitalized patients and extracts clinical data from scanned documents.

The pipeline runs OCR, text normalization, pattern-based extraction, and
clinical validation to build a dataset, then scores it across temporal,
device, severity, microbiology, and laboratory domains. Each stage is a
subcommand; extract and score compose into the full document workflow.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./epimind.yaml or ~/.config/epimind/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("epimind")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "epimind"))
		}
	}

	viper.SetEnvPrefix("EPIMIND")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
