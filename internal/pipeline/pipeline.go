// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs an ordered list of inference steps over a text,
// feeding each step's output to the next. Execution stops at the first
// failing step.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/pitagorin/pkg/types"
)

// ErrNothingToExecute is returned when there are no steps or the input is
// blank. It matches types.ErrValidation.
var ErrNothingToExecute = fmt.Errorf("nothing to execute: %w", types.ErrValidation)

// Inferer runs one model over a text. It is the inference capability seen
// from the executor; output extraction happens behind it.
type Inferer interface {
	Run(ctx context.Context, task types.TaskKind, modelID, input string) (string, error)
}

// InfererFunc adapts a function to Inferer.
type InfererFunc func(ctx context.Context, task types.TaskKind, modelID, input string) (string, error)

// Run implements Inferer.
func (f InfererFunc) Run(ctx context.Context, task types.TaskKind, modelID, input string) (string, error) {
	return f(ctx, task, modelID, input)
}

// Observer receives progress events. Step indices are 1-based.
type Observer interface {
	StepStarted(index int, step types.Step)
	StepSucceeded(index int, step types.Step, output string)
	StepFailed(index int, step types.Step, err error)
}

// State is the terminal status of a run.
type State string

const (
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Result records the outcome of a run.
type Result struct {
	State State

	// Output is the last step's output when State is StateCompleted.
	Output string

	// Steps holds the output of every step that succeeded, in order.
	Steps []string

	// FailedStep is the 1-based index of the failing step, or 0.
	FailedStep int
}

// StepError describes a failed step. It matches types.ErrStepExecution and
// unwraps to the inference error.
type StepError struct {
	Index   int
	Task    types.TaskKind
	ModelID string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("error in step %d (%s, %s): %v", e.Index, e.Task, e.ModelID, e.Err)
}

// Unwrap returns the sentinel and the cause.
func (e *StepError) Unwrap() []error {
	return []error{types.ErrStepExecution, e.Err}
}

// Executor runs pipelines against an Inferer.
type Executor struct {
	Inferer Inferer
}

// New returns an Executor backed by inf.
func New(inf Inferer) *Executor {
	return &Executor{Inferer: inf}
}

// Run executes steps in declared order starting from input. obs may be nil.
// On failure at step k it returns a Result with State StateFailed, the
// outputs of steps 1..k-1, and a *StepError; steps after k never run.
func (e *Executor) Run(ctx context.Context, steps []types.Step, input string, obs Observer) (Result, error) {
	if len(steps) == 0 || strings.TrimSpace(input) == "" {
		return Result{}, ErrNothingToExecute
	}
	if obs == nil {
		obs = nopObserver{}
	}

	res := Result{Steps: make([]string, 0, len(steps))}
	current := input
	for i, step := range steps {
		n := i + 1
		obs.StepStarted(n, step)

		out, err := e.runStep(ctx, step, current)
		if err != nil {
			obs.StepFailed(n, step, err)
			res.State = StateFailed
			res.FailedStep = n
			return res, &StepError{Index: n, Task: step.Task, ModelID: step.ModelID, Err: err}
		}

		obs.StepSucceeded(n, step, out)
		res.Steps = append(res.Steps, out)
		current = out
	}

	res.State = StateCompleted
	res.Output = current
	return res, nil
}

func (e *Executor) runStep(ctx context.Context, step types.Step, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.Inferer == nil {
		return "", errors.New("no inference backend configured")
	}
	return e.Inferer.Run(ctx, step.Task, step.ModelID, input)
}

type nopObserver struct{}

func (nopObserver) StepStarted(int, types.Step) {}

func (nopObserver) StepSucceeded(int, types.Step, string) {}

func (nopObserver) StepFailed(int, types.Step, error) {}
