// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt assembles the structured input sent to the first pipeline
// step: optional system instructions, optional knowledge base context, and
// the user's task.
package prompt

import (
	"strings"
)

// Block headers.
const (
	headerInstructions = "--- SYSTEM INSTRUCTIONS ---"
	headerContext      = "--- KNOWLEDGE BASE CONTEXT ---"
	headerTask         = "--- TASK ---"
)

// DefaultTone is the tone value that adds no TONE line.
const DefaultTone = "Default"

// defaultFormats are format values that add no FORMAT line.
var defaultFormats = map[string]bool{
	"":               true,
	"Text":           true,
	"Default":        true,
	"Text (Default)": true,
}

// Options shapes the instructions around a task. Every field is optional.
type Options struct {
	Role     string
	Audience string
	Tone     string
	Format   string

	// Structure overrides Format when non-blank.
	Structure string

	// Constraints are named negative constraints, usually from Constraints.
	Constraints []string

	// Avoid is a free-form negative constraint appended after Constraints.
	Avoid string

	// Context is retrieved knowledge base text.
	Context string
}

// Instructions returns the instruction lines implied by opts, in order.
func Instructions(opts Options) []string {
	var lines []string
	if role := strings.TrimSpace(opts.Role); role != "" {
		lines = append(lines, "ROLE: Act as a "+role+".")
	}
	if audience := strings.TrimSpace(opts.Audience); audience != "" {
		lines = append(lines, "AUDIENCE: Adapt response for "+audience+".")
	}
	if tone := strings.TrimSpace(opts.Tone); tone != "" && tone != DefaultTone {
		lines = append(lines, "TONE: "+tone+".")
	}
	if format := resolveFormat(opts); !defaultFormats[format] {
		lines = append(lines, "FORMAT: Provide output as "+format+".")
	}
	if constraints := collectConstraints(opts); len(constraints) > 0 {
		lines = append(lines, "CONSTRAINTS (DO NOT DO): "+strings.Join(constraints, ", ")+".")
	}
	return lines
}

// Compose builds the full prompt for task. Blocks are separated by a blank
// line; the instruction and context blocks appear only when non-empty, and
// the task block is always last.
func Compose(task string, opts Options) string {
	var blocks []string
	if lines := Instructions(opts); len(lines) > 0 {
		blocks = append(blocks, headerInstructions+"\n"+strings.Join(lines, "\n"))
	}
	if opts.Context != "" {
		blocks = append(blocks, headerContext+"\n"+opts.Context)
	}
	blocks = append(blocks, headerTask+"\n"+task)
	return strings.Join(blocks, "\n\n")
}

func resolveFormat(opts Options) string {
	if s := strings.TrimSpace(opts.Structure); s != "" {
		return s
	}
	return strings.TrimSpace(opts.Format)
}

func collectConstraints(opts Options) []string {
	var out []string
	for _, c := range opts.Constraints {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if avoid := strings.TrimSpace(opts.Avoid); avoid != "" {
		out = append(out, avoid)
	}
	return out
}
