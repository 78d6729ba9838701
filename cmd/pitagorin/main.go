// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pitagorin CLI: a topic-partitioned
// knowledge base plus a sequential multi-model text pipeline.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pitagorin/internal/config"
	"github.com/pdiddy/pitagorin/internal/logger"
	"github.com/pdiddy/pitagorin/internal/secrets"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// appConfig is the decoded configuration for the running command.
var appConfig types.AppConfig

// rootCmd is the base command for the pitagorin CLI.
var rootCmd = &cobra.Command{
	Use:   "pitagorin",
	Short: "Local knowledge base and multi-model text pipeline",
	Long: `pitagorin stores text fragments tagged by topic, retrieves the fragments
most relevant to a query within chosen topics, and feeds a composed prompt
through an ordered chain of model steps where each step's output becomes the
next step's input.

Use "knowledge" to build the knowledge base, "run" to compose and execute a
pipeline, and "fetch" to pull records from SQL or MongoDB sources.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger.SetVerbose(verbose)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Info("loaded secrets: %v", keys)
		}

		used, err := config.Read(viper.GetViper())
		if err != nil {
			return err
		}
		if used != "" {
			logger.Info("using config file: %s", used)
		}
		appConfig, err = config.Load(viper.GetViper())
		return err
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pitagorin.yaml or ~/.config/pitagorin/pitagorin.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "base directory for persisted state (default: data)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print diagnostic output to stderr")

	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	config.Init(viper.GetViper(), cfgFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
