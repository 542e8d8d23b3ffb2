package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/m5bench/m5bench/harness/stats"
)

var compareKeys []string // Statistic names to compare; defaults cover the cache study

// compareCmd compares the ROI blocks of two statistics reports.
var compareCmd = &cobra.Command{
	Use:   "compare <baseline-stats.txt> <candidate-stats.txt>",
	Short: "Compare region-of-interest statistics between two runs",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		base := mustROI(args[0])
		cand := mustROI(args[1])

		keys := compareKeys
		if len(keys) == 0 {
			keys = stats.DefaultCompareKeys
		}
		if err := stats.Compare(base, cand, keys).Render(os.Stdout); err != nil {
			logrus.Fatalf("Failed to render comparison: %v", err)
		}
	},
}

func init() {
	compareCmd.Flags().IntVar(&roiBlock, "roi-block", stats.DefaultROIBlock, "1-based statistics block holding the ROI")
	compareCmd.Flags().StringSliceVar(&compareKeys, "keys", nil, "Statistic names to compare (default covers the cache study)")
	rootCmd.AddCommand(compareCmd)
}
