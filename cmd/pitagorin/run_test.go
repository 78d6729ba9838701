// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pitagorin/pkg/types"
)

// useRunCmd points runCmd at in/out and restores its flags afterwards.
func useRunCmd(t *testing.T, stdin string, flags map[string]string) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	runCmd.SetIn(strings.NewReader(stdin))
	runCmd.SetOut(&out)
	for name, value := range flags {
		require.NoError(t, runCmd.Flags().Set(name, value))
	}
	t.Cleanup(func() {
		runCmd.SetIn(nil)
		runCmd.SetOut(nil)
		for name := range flags {
			f := runCmd.Flags().Lookup(name)
			if sv, ok := f.Value.(interface{ Replace([]string) error }); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		}
	})
	return &out
}

func TestReadTask(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		want    string
		wantErr bool
	}{
		{"joined args", []string{"Explain", "recursion"}, "", "Explain recursion", false},
		{"stdin", []string{"-"}, "Explain recursion\n", "Explain recursion\n", false},
		{"empty arg", []string{""}, "", "", true},
		{"whitespace args", []string{"  ", "\t"}, "", "", true},
		{"empty stdin", []string{"-"}, "", "", true},
		{"whitespace stdin", []string{"-"}, " \n\t\n", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readTask(tt.args, strings.NewReader(tt.stdin))
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrValidation)
				assert.ErrorContains(t, err, "task text is required")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunRejectsBlankTaskOnDryRun(t *testing.T) {
	out := useRunCmd(t, "  \n", map[string]string{"dry-run": "true", "role": "Teacher"})

	err := runRun(runCmd, []string{"-"})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Empty(t, out.String(), "no prompt is printed for a blank task")

	err = runRun(runCmd, []string{"   "})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Empty(t, out.String())
}

func TestRunRejectsBlankTaskBeforeSteps(t *testing.T) {
	useRunCmd(t, "", map[string]string{"step": "summarization:x"})

	err := runRun(runCmd, []string{""})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.ErrorContains(t, err, "task text is required")
}

func TestRunDryRunPrintsPrompt(t *testing.T) {
	out := useRunCmd(t, "", map[string]string{"dry-run": "true", "role": "Teacher"})

	require.NoError(t, runRun(runCmd, []string{"Explain", "recursion"}))
	assert.Equal(t,
		"--- SYSTEM INSTRUCTIONS ---\nROLE: Act as a Teacher.\n\n--- TASK ---\nExplain recursion\n",
		out.String())
}
