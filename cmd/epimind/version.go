package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of epimind",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("epimind %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
