package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"

	"github.com/pdiddy/pitagorin/pkg/types"
)

func TestConsoleObserver(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	obs := newConsoleObserver(&buf, 2)

	s1 := types.Step{Task: types.TaskSummarization, ModelID: "X"}
	s2 := types.Step{Task: types.TaskTranslationEnEs, ModelID: "Y"}
	obs.StepStarted(1, s1)
	obs.StepSucceeded(1, s1, "short\ntext")
	obs.StepStarted(2, s2)
	obs.StepFailed(2, s2, errors.New("model unavailable"))

	want := "[1/2] summarization (X)\n" +
		"done step 1: summarization\n" +
		"    short\n    text\n" +
		"[2/2] translation_en_to_es (Y)\n" +
		"error step 2 (translation_en_to_es): model unavailable\n"
	if got := buf.String(); got != want {
		t.Errorf("output =\n%q\nwant\n%q", got, want)
	}
}
