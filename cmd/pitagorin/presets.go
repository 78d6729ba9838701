package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pitagorin/internal/prompt"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the preset tones, formats, and constraints for run",
	Run: func(cmd *cobra.Command, args []string) {
		printPresets("Tones (--tone)", prompt.Tones)
		printPresets("Formats (--format)", prompt.Formats)
		printPresets("Constraints (--constraint)", prompt.Constraints)
	},
}

func printPresets(title string, values []string) {
	fmt.Println(title)
	for _, v := range values {
		fmt.Printf("  %s\n", v)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
