// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/secwatch/internal/catalog"
	"github.com/pdiddy/secwatch/internal/report"
	"github.com/pdiddy/secwatch/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the dataset and write statistics artifacts",
	Long: `Stats rebuilds an in-memory catalog from the data tree and prints filing
counts by type, year, quarter, company, and disclosure item. Unless
--no-write is set it also refreshes <stats-dir>/summary.json and
<stats-dir>/README.md.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().String("output-dir", "data", "root of the data tree to summarize")
	statsCmd.Flags().String("stats-dir", "stats", "directory for summary.json and README.md")
	statsCmd.Flags().String("filing-type", "", "restrict totals to 8-K or 10-K")
	statsCmd.Flags().Bool("json", false, "print the summary as JSON instead of text")
	statsCmd.Flags().Bool("no-write", false, "print only; do not write statistics artifacts")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("output-dir")
	statsDir, _ := cmd.Flags().GetString("stats-dir")
	asJSON, _ := cmd.Flags().GetBool("json")
	noWrite, _ := cmd.Flags().GetBool("no-write")

	cat, err := catalog.Open(":memory:")
	if err != nil {
		return err
	}
	defer cat.Close()

	if _, err := cat.Reindex(cmd.Context(), dataDir); err != nil {
		return err
	}

	filingType, _ := cmd.Flags().GetString("filing-type")
	if filingType != "" {
		form, ok := types.ParseFormType(filingType)
		if !ok {
			return fmt.Errorf("invalid filing type %q (expected 8-K or 10-K)", filingType)
		}
		filingType = string(form)
	}

	summary, err := report.Build(cmd.Context(), cat, filingType)
	if err != nil {
		return err
	}

	if asJSON {
		if err := report.FormatJSON(summary, os.Stdout); err != nil {
			return err
		}
	} else {
		report.FormatText(summary, os.Stdout)
	}

	if !noWrite {
		if err := report.WriteArtifacts(summary, statsDir); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s/summary.json and %s/README.md\n", statsDir, statsDir)
	}
	return nil
}
