//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Knowledge groups targets that operate on the local knowledge base.
type Knowledge mg.Namespace

func cli(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Topics lists the topics in the knowledge base.
func (Knowledge) Topics() error {
	mg.Deps(Build)
	return cli("knowledge", "topics")
}

// Ingest adds every Markdown and text file under docs/ to the "Docs" topic.
func (Knowledge) Ingest() error {
	mg.Deps(Build, Init)
	return cli("knowledge", "ingest", "--topic", "Docs", "docs/**/*.md", "docs/**/*.txt")
}

// Export writes the knowledge base to data/index/export.yaml and export.json.
func (Knowledge) Export() error {
	mg.Deps(Build)
	for _, format := range []string{"yaml", "json"} {
		if err := cli("knowledge", "export", "--format", format); err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}
	}
	return nil
}
