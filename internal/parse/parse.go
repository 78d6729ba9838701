// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns uploaded file bytes into text suitable for the
// knowledge base. Structured formats are re-emitted in a readable form so
// that their hierarchy survives as plain text.
package parse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/pitagorin/internal/container"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// Error reports a failure to parse a file of a given extension.
type Error struct {
	Ext string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("error parsing %s: %v", strings.ToUpper(e.Ext), e.Err)
}

// Unwrap returns the cause and types.ErrExternalSource.
func (e *Error) Unwrap() []error {
	return []error{types.ErrExternalSource, e.Err}
}

// Parser dispatches on file extension. The zero value handles every format
// except pdf, which needs a container runtime.
type Parser struct {
	pdf *MarkitdownConverter
}

// New returns a Parser. rt may be nil, in which case pdf input fails.
// image overrides ImageMarkitdown when non-empty.
func New(rt container.Runtime, image string) *Parser {
	p := &Parser{}
	if rt != nil {
		p.pdf = NewMarkitdownConverter(rt, image)
	}
	return p
}

// Extensions lists the supported extensions, sorted.
func Extensions() []string {
	return []string{"csv", "docx", "json", "md", "pdf", "txt", "xml", "yaml", "yml"}
}

// Parse extracts text from data according to ext (with or without the
// leading dot, any case).
func (p *Parser) Parse(data []byte, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))

	var (
		text string
		err  error
	)
	switch ext {
	case "txt", "md":
		text, err = plainText(data)
	case "pdf":
		if p.pdf == nil {
			err = fmt.Errorf("no container runtime configured for pdf conversion")
		} else {
			text, err = p.pdf.Convert(data)
		}
	case "docx":
		text, err = docxText(data)
	case "csv":
		text, err = csvTable(data)
	case "json":
		text, err = jsonIndent(data)
	case "yaml", "yml":
		text, err = yamlNormalize(data)
	case "xml":
		text, err = xmlIndent(data)
	default:
		return "", fmt.Errorf("unsupported file type %q (supported: %s): %w",
			ext, strings.Join(Extensions(), ", "), types.ErrValidation)
	}
	if err != nil {
		return "", &Error{Ext: ext, Err: err}
	}
	return text, nil
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("invalid UTF-8 text")
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
