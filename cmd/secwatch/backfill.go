// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Ingest historical filings quarter by quarter",
	Long: `Backfill walks a year range one calendar quarter at a time, running the
same ingestion as the ingest command over each quarter's date window.
Quarter-sized windows keep EDGAR full-text search result sets below its
pagination cap. Already-processed filings are skipped, so a backfill can
be interrupted and resumed.`,
	RunE: runBackfill,
}

func init() {
	addIngestFlags(backfillCmd)
	backfillCmd.Flags().Int("start-year", 2023, "first year to backfill (Item 1.05 and Item 106 took effect December 2023)")
	backfillCmd.Flags().Int("end-year", 0, "last year to backfill (default: current year)")

	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	startYear, _ := cmd.Flags().GetInt("start-year")
	endYear, _ := cmd.Flags().GetInt("end-year")

	now := time.Now()
	if endYear == 0 {
		endYear = now.Year()
	}
	if startYear > endYear {
		return fmt.Errorf("start year %d is after end year %d", startYear, endYear)
	}

	for year := startYear; year <= endYear; year++ {
		for q := 0; q < 4; q++ {
			qStart := time.Date(year, time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
			if qStart.After(now) {
				return nil
			}
			qEnd := qStart.AddDate(0, 3, -1)
			if qEnd.After(now) {
				qEnd = now
			}

			fmt.Printf("== %d Q%d (%s to %s) ==\n",
				year, q+1, qStart.Format(dateLayout), qEnd.Format(dateLayout))
			if err := ingestWindow(cmd, qStart.Format(dateLayout), qEnd.Format(dateLayout)); err != nil {
				return fmt.Errorf("backfill %d Q%d: %w", year, q+1, err)
			}
		}
	}
	return nil
}
