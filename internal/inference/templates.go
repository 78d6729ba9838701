// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/pitagorin/pkg/types"
)

var summarizeTmpl = template.Must(template.New("summarization").Parse(`Summarize the following text concisely. Keep the key facts and respond with the summary only.

{{.Input}}`))

var translateTmpl = template.Must(template.New("translation").Parse(`Translate the following text from {{.Source}} to {{.Target}}. Preserve formatting and respond with the translation only.

{{.Input}}`))

// languageNames maps ISO 639-1 codes used in translation task names.
var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"ja": "Japanese",
	"zh": "Chinese",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// instruction is the rendered model input for one invocation.
type instruction struct {
	task  types.TaskKind
	field string
	tmpl  *template.Template
	data  map[string]string
}

// newInstruction prepares the prompt shape for task. Generation tasks and
// unknown kinds pass the input through unchanged.
func newInstruction(task types.TaskKind) (instruction, error) {
	in := instruction{task: task, field: OutputField(task)}
	switch {
	case task == types.TaskSummarization:
		in.tmpl = summarizeTmpl
	case task.IsTranslation():
		src, dst, ok := task.Languages()
		if !ok {
			return instruction{}, fmt.Errorf("malformed translation task %q: %w", task, types.ErrValidation)
		}
		in.tmpl = translateTmpl
		in.data = map[string]string{"Source": languageName(src), "Target": languageName(dst)}
	}
	if in.field == "" {
		in.field = FieldGenerated
	}
	return in, nil
}

// render returns the model prompt for input.
func (in instruction) render(input string) (string, error) {
	if in.tmpl == nil {
		return input, nil
	}
	data := map[string]string{"Input": input}
	for k, v := range in.data {
		data[k] = v
	}
	var buf bytes.Buffer
	if err := in.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", in.task, err)
	}
	return buf.String(), nil
}

// result wraps text in the output field for the instruction's task.
func (in instruction) result(text string) Result {
	return Result{in.field: text}
}
