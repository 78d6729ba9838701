// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/pdiddy/pitagorin/pkg/types"
)

// consoleObserver prints pipeline progress, one block per step.
type consoleObserver struct {
	w     io.Writer
	total int

	header func(a ...any) string
	ok     func(a ...any) string
	fail   func(a ...any) string
}

func newConsoleObserver(w io.Writer, total int) *consoleObserver {
	return &consoleObserver{
		w:      w,
		total:  total,
		header: color.New(color.FgCyan, color.Bold).SprintFunc(),
		ok:     color.New(color.FgGreen, color.Bold).SprintFunc(),
		fail:   color.New(color.FgRed, color.Bold).SprintFunc(),
	}
}

func (o *consoleObserver) StepStarted(index int, step types.Step) {
	fmt.Fprintf(o.w, "%s %s (%s)\n", o.header(fmt.Sprintf("[%d/%d]", index, o.total)), step.Task, step.ModelID)
}

func (o *consoleObserver) StepSucceeded(index int, step types.Step, output string) {
	fmt.Fprintf(o.w, "%s step %d: %s\n", o.ok("done"), index, step.Task)
	if index < o.total {
		fmt.Fprintln(o.w, indent(output, "    "))
	}
}

func (o *consoleObserver) StepFailed(index int, step types.Step, err error) {
	fmt.Fprintf(o.w, "%s step %d (%s): %v\n", o.fail("error"), index, step.Task, err)
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
