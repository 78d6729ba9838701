// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/pitagorin/internal/container"
)

// ImageMarkitdown is the container image used for pdf conversion.
const ImageMarkitdown = "markitdown:latest"

// ConvertTimeout bounds a single markitdown run.
var ConvertTimeout = 2 * time.Minute

// MarkitdownConverter converts PDFs by piping them through the markitdown
// container image.
type MarkitdownConverter struct {
	runtime container.Runtime
	image   string
}

// NewMarkitdownConverter creates a converter that runs image ("" means
// ImageMarkitdown) on rt. The image is checked on each conversion.
func NewMarkitdownConverter(rt container.Runtime, image string) *MarkitdownConverter {
	if image == "" {
		image = ImageMarkitdown
	}
	return &MarkitdownConverter{runtime: rt, image: image}
}

// Convert pipes the PDF bytes through the markitdown container and returns
// the resulting Markdown text.
func (m *MarkitdownConverter) Convert(pdf []byte) (string, error) {
	if err := m.runtime.ImageExists(m.image); err != nil {
		return "", fmt.Errorf("markitdown image not available in %s: %w", m.runtime.Name(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConvertTimeout)
	defer cancel()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, m.image, bytes.NewReader(pdf), &out); err != nil {
		return "", fmt.Errorf("converting with markitdown: %w", err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("markitdown produced empty output")
	}
	return out.String(), nil
}
