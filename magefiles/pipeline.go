//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// runCLI builds the binary if needed and runs it with args.
func runCLI(args ...string) error {
	mg.Deps(Build)
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Ingest runs a daily ingestion pass over yesterday and today.
func Ingest() error {
	fmt.Println("[ingest] Ingesting new SEC cybersecurity disclosures.")
	return runCLI("ingest")
}

// Validate checks every dataset record against the schema and for duplicates.
func Validate() error {
	return runCLI("validate")
}

// Report rebuilds the dataset statistics artifacts under stats/.
func Report() error {
	return runCLI("stats")
}
