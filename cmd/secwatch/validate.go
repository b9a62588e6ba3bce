// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/secwatch/internal/catalog"
	"github.com/pdiddy/secwatch/internal/dataset"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every dataset record against the schema and for duplicates",
	Long: `Validate walks the data tree and checks each record's frontmatter: required
fields per form type, the allowed item codes, and the filing date format.
It then rebuilds an in-memory catalog and reports filings that share an
accession number or a CIK + date + type key. Any violation makes the
command exit non-zero.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("output-dir", "data", "root of the data tree to validate")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("output-dir")

	violations, checked, err := dataset.ValidateTree(dataDir)
	if err != nil {
		return err
	}
	for _, v := range violations {
		fmt.Fprintf(os.Stderr, "%s: %s\n", v.Path, v.Message)
	}

	cat, err := catalog.Open(":memory:")
	if err != nil {
		return err
	}
	defer cat.Close()
	if _, err := cat.Reindex(cmd.Context(), dataDir); err != nil {
		return err
	}

	dupCount := 0
	report := func(kind string, dups []catalog.Duplicate) {
		for _, d := range dups {
			dupCount++
			fmt.Fprintf(os.Stderr, "duplicate %s %s:\n", kind, d.Key)
			for _, p := range d.Paths {
				fmt.Fprintf(os.Stderr, "  %s\n", p)
			}
		}
	}
	accDups, err := cat.DuplicateAccessions(cmd.Context())
	if err != nil {
		return err
	}
	report("accession", accDups)
	keyDups, err := cat.DuplicateKeys(cmd.Context())
	if err != nil {
		return err
	}
	report("filing key", keyDups)

	if len(violations) > 0 || dupCount > 0 {
		return fmt.Errorf("%d schema violation(s), %d duplicate group(s) across %d record(s)",
			len(violations), dupCount, checked)
	}
	fmt.Printf("OK: %d record(s) valid, no duplicates\n", checked)
	return nil
}
