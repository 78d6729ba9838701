// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pitagorin/internal/parse"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the knowledge base (add, ingest, query, topics, export)",
	Long: `Knowledge manages the local knowledge base: text fragments tagged by
topic, embedded, and searchable by similarity within a set of topics.`,
}

// --- add subcommand ---

var knowledgeAddCmd = &cobra.Command{
	Use:   "add [text | -]",
	Short: "Add a text fragment under a topic",
	Long: `Add stores one fragment. Pass the text as arguments or "-" to read it
from stdin. Blank text is ignored and nothing is stored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKnowledgeAdd,
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	source, _ := cmd.Flags().GetString("source")

	text, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer store.Close()

	id, stored, err := store.AddDocument(cmd.Context(), text, topic, source)
	if err != nil {
		return err
	}
	if !stored {
		fmt.Println("Nothing stored: text is empty.")
		return nil
	}
	fmt.Printf("Stored %s\n", id)
	return nil
}

// --- ingest subcommand ---

var knowledgeIngestCmd = &cobra.Command{
	Use:   "ingest <pattern>...",
	Short: "Parse files and add their text under a topic",
	Long: `Ingest expands each pattern (e.g. "docs/**/*.md"), parses every matching
file by extension, and stores its text with the file name as source.
Supported extensions: ` + strings.Join(parse.Extensions(), ", ") + `.
PDF files need docker or podman with the markitdown image.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKnowledgeIngest,
}

func runKnowledgeIngest(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")

	store, err := openStore(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.IngestGlob(cmd.Context(), args, topic, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed ingestion", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var knowledgeQueryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Retrieve the fragments most similar to a query within topics",
	Long: `Query searches only the topics given with --topic and prints the matching
fragments separated by blank lines. No topics means no search.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKnowledgeQuery,
}

func runKnowledgeQuery(cmd *cobra.Command, args []string) error {
	topics, _ := cmd.Flags().GetStringSlice("topic")
	results, _ := cmd.Flags().GetInt("results")

	store, err := openStore(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer store.Close()

	text, err := store.QueryKnowledge(cmd.Context(), strings.Join(args, " "), topics, results)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Println(text)
	return nil
}

// --- topics subcommand ---

var knowledgeTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the distinct topics in the knowledge base",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer store.Close()

		topics, err := store.ListTopics(cmd.Context())
		if err != nil {
			return err
		}
		if len(topics) == 0 {
			fmt.Println("No topics yet.")
			return nil
		}
		for _, t := range topics {
			fmt.Println(t)
		}
		return nil
	},
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every fragment to YAML or JSON",
	Long: `Export writes all fragments to <data-dir>/index/export.yaml or
export.json.`,
	RunE: runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context())
	case "json":
		path, err = store.ExportJSON(cmd.Context())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func init() {
	knowledgeAddCmd.Flags().String("topic", "", "topic label (default from knowledge_base.default_topic)")
	knowledgeAddCmd.Flags().String("source", "", "origin tag (default: manual)")

	knowledgeIngestCmd.Flags().String("topic", "", "topic label for every ingested file")

	knowledgeQueryCmd.Flags().StringSlice("topic", nil, "topic to search (repeatable or comma-separated)")
	knowledgeQueryCmd.Flags().Int("results", 0, "number of fragments to return (0 = knowledge_base.result_count)")

	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	knowledgeCmd.AddCommand(knowledgeAddCmd)
	knowledgeCmd.AddCommand(knowledgeIngestCmd)
	knowledgeCmd.AddCommand(knowledgeQueryCmd)
	knowledgeCmd.AddCommand(knowledgeTopicsCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
