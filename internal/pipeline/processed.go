// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProcessedSet tracks accession numbers that have already been ingested,
// backed by a flat text file with one accession per line.
type ProcessedSet struct {
	path string
	seen map[string]bool
}

// LoadProcessed reads the processed file at path. A missing file is an
// empty set, not an error.
func LoadProcessed(path string) (*ProcessedSet, error) {
	s := &ProcessedSet{path: path, seen: make(map[string]bool)}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening processed file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			s.seen[line] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading processed file %s: %w", path, err)
	}
	return s, nil
}

// Contains reports whether the accession has been ingested.
func (s *ProcessedSet) Contains(accession string) bool {
	return s.seen[accession]
}

// Len returns the number of tracked accessions.
func (s *ProcessedSet) Len() int {
	return len(s.seen)
}

// Add marks the accession as ingested and appends it to the backing file
// immediately, so an interrupted run never reprocesses completed filings.
func (s *ProcessedSet) Add(accession string) error {
	if s.seen[accession] {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating directory for processed file: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening processed file %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, accession); err != nil {
		return fmt.Errorf("appending to processed file %s: %w", s.path, err)
	}
	s.seen[accession] = true
	return nil
}
