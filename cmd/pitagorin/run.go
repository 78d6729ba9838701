// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pitagorin/internal/inference"
	"github.com/pdiddy/pitagorin/internal/logger"
	"github.com/pdiddy/pitagorin/internal/pipeline"
	"github.com/pdiddy/pitagorin/internal/prompt"
	"github.com/pdiddy/pitagorin/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <task | ->",
	Short: "Compose a prompt and run it through a pipeline of model steps",
	Long: `Run builds a prompt from the task text and the instruction flags
(--role, --audience, --tone, --format, --structure, --constraint, --avoid),
adds knowledge base context retrieved from the --topic topics, and feeds the
result through the pipeline steps in order. Each step's output becomes the
next step's input; the first failing step stops the run.

Steps come from --pipeline (a YAML file) followed by each --step, which is a
catalog name (see "pitagorin models") or an explicit task:model_id pair.

Use --dry-run to print the composed prompt without running any step.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	task, err := readTask(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	opts, err := promptOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	topics, _ := cmd.Flags().GetStringSlice("topic")
	if len(topics) > 0 {
		query, _ := cmd.Flags().GetString("query")
		if query == "" {
			query = task
		}
		results, _ := cmd.Flags().GetInt("results")

		store, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		opts.Context, err = store.QueryKnowledge(ctx, query, topics, results)
		store.Close()
		if err != nil {
			return err
		}
	}

	input := prompt.Compose(task, opts)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), input)
		return nil
	}

	steps, err := stepsFromFlags(cmd)
	if err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("save-pipeline"); path != "" {
		if err := pipeline.SaveFile(path, steps); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved pipeline to %s\n", path)
	}

	runner, err := newRunner()
	if err != nil {
		return err
	}
	obs := newConsoleObserver(os.Stderr, len(steps))
	res, err := pipeline.New(runner).Run(ctx, steps, input, obs)
	logger.Debug("models loaded: %s", strings.Join(runner.Models(), ", "))
	if err != nil {
		return err
	}
	fmt.Println(res.Output)
	return nil
}

// readTask reads the task text and rejects a blank one.
func readTask(args []string, stdin io.Reader) (string, error) {
	task, err := readInput(args, stdin)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(task) == "" {
		return "", fmt.Errorf("task text is required: %w", types.ErrValidation)
	}
	return task, nil
}

func promptOptsFromFlags(cmd *cobra.Command) (prompt.Options, error) {
	role, _ := cmd.Flags().GetString("role")
	audience, _ := cmd.Flags().GetString("audience")
	tone, _ := cmd.Flags().GetString("tone")
	format, _ := cmd.Flags().GetString("format")
	structure, _ := cmd.Flags().GetString("structure")
	constraints, _ := cmd.Flags().GetStringArray("constraint")
	avoid, _ := cmd.Flags().GetString("avoid")

	if path, ok := strings.CutPrefix(structure, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return prompt.Options{}, fmt.Errorf("reading structure: %w", err)
		}
		structure = string(data)
	}
	return prompt.Options{
		Role:        role,
		Audience:    audience,
		Tone:        tone,
		Format:      format,
		Structure:   structure,
		Constraints: constraints,
		Avoid:       avoid,
	}, nil
}

// stepsFromFlags returns the steps of --pipeline followed by each --step.
func stepsFromFlags(cmd *cobra.Command) ([]types.Step, error) {
	var steps []types.Step
	if path, _ := cmd.Flags().GetString("pipeline"); path != "" {
		fileSteps, err := pipeline.LoadFile(path)
		if err != nil {
			return nil, err
		}
		steps = append(steps, fileSteps...)
	}
	refs, _ := cmd.Flags().GetStringArray("step")
	for _, ref := range refs {
		step, err := inference.ParseStep(appConfig.Inference.Catalog, ref)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func init() {
	runCmd.Flags().StringArray("step", nil, `pipeline step: catalog name or "task:model_id" (repeatable, runs in order)`)
	runCmd.Flags().String("pipeline", "", "YAML file with the pipeline steps")
	runCmd.Flags().String("save-pipeline", "", "write the resolved steps to this YAML file")

	runCmd.Flags().String("role", "", `role the model should act as, e.g. "Teacher"`)
	runCmd.Flags().String("audience", "", "audience to adapt the response for")
	runCmd.Flags().String("tone", prompt.DefaultTone, "tone (see presets)")
	runCmd.Flags().String("format", "", "output format (see presets)")
	runCmd.Flags().String("structure", "", "custom output structure; overrides --format (@file reads it from a file)")
	runCmd.Flags().StringArray("constraint", nil, "negative constraint (repeatable, see presets)")
	runCmd.Flags().String("avoid", "", "free-text negative constraint")

	runCmd.Flags().StringSlice("topic", nil, "knowledge base topic to draw context from (repeatable)")
	runCmd.Flags().String("query", "", "retrieval query (default: the task text)")
	runCmd.Flags().Int("results", 0, "number of context fragments (0 = knowledge_base.result_count)")
	runCmd.Flags().Bool("dry-run", false, "print the composed prompt and exit")

	rootCmd.AddCommand(runCmd)
}
