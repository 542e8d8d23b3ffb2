package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/m5bench/m5bench/harness/archive"
)

var (
	runsArchivePath string // Archive to list
	runsShowID      string // Dump this run's archived ROI statistics instead
)

// runsCmd lists archived runs, or dumps one run's archived counters.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs recorded in the SQLite archive",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := archive.Open(runsArchivePath)
		if err != nil {
			logrus.Fatalf("Failed to open archive: %v", err)
		}
		defer a.Close()

		if runsShowID != "" {
			showRunStats(a, runsShowID)
			return
		}

		rows, err := a.Runs()
		if err != nil {
			logrus.Fatalf("Failed to list runs: %v", err)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "id\texperiment\toutdir\twall\trecorded")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Experiment, r.OutDir,
				r.WallTime.Round(time.Millisecond),
				r.RecordedAt.Format(time.RFC3339))
		}
		tw.Flush()
	},
}

func showRunStats(a *archive.Archive, runID string) {
	stats, err := a.Stats(runID)
	if err != nil {
		logrus.Fatalf("Failed to read run statistics: %v", err)
	}
	if len(stats) == 0 {
		logrus.Fatalf("No archived statistics for run %q", runID)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Raw)
	}
	tw.Flush()
}

func init() {
	runsCmd.Flags().StringVar(&runsArchivePath, "archive", "m5bench.sqlite3", "SQLite run archive path")
	runsCmd.Flags().StringVar(&runsShowID, "show", "", "Dump the archived ROI statistics of this run ID")
	rootCmd.AddCommand(runsCmd)
}
