// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ParseFrontmatter extracts the YAML frontmatter block from the content of
// a Markdown record. The file must begin with a "---" line and contain a
// closing "---" delimiter.
func ParseFrontmatter(content string) (Frontmatter, error) {
	var fm Frontmatter
	if !strings.HasPrefix(content, "---") {
		return fm, fmt.Errorf("missing YAML frontmatter (file must start with ---)")
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return fm, fmt.Errorf("malformed YAML frontmatter (no closing ---)")
	}
	if err := yaml.Unmarshal([]byte(parts[1]), &fm); err != nil {
		return fm, fmt.Errorf("invalid YAML: %w", err)
	}
	return fm, nil
}

// ReadFrontmatter reads a record file and parses its frontmatter.
func ReadFrontmatter(path string) (Frontmatter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Frontmatter{}, err
	}
	return ParseFrontmatter(string(data))
}

// WalkRecords calls fn for every Markdown record under dataDir, skipping
// README files. Walk errors abort; fn errors abort with the file path
// attached.
func WalkRecords(dataDir string, fn func(path string) error) error {
	return filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") || d.Name() == "README.md" {
			return nil
		}
		if err := fn(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	})
}
