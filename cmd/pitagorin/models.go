// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the model catalog usable as pipeline steps",
	Long: `Models lists the catalog entries from inference.catalog (or the built-in
defaults). Pass a name to "run --step".`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "%-24s  %-24s  %s\n", "Name", "Task", "Model")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
		for _, e := range appConfig.Inference.Catalog {
			fmt.Fprintf(os.Stdout, "%-24s  %-24s  %s\n", e.Name, e.Task, e.ModelID)
		}
		fmt.Fprintf(os.Stdout, "\nbackend: %s\n", appConfig.Inference.Backend)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
