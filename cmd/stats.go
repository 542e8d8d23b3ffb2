package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/m5bench/m5bench/harness/stats"
)

var (
	roiBlock      int    // 1-based block index; shared with `run` and `compare`
	statsPattern  string // Glob filter over statistic names
	showMissRates bool   // Append derived per-cache miss rates
)

// statsCmd slices the ROI block out of a statistics report.
var statsCmd = &cobra.Command{
	Use:   "stats <stats.txt>",
	Short: "Extract the region-of-interest block from a statistics report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		file, err := stats.ParseFile(args[0])
		if err != nil {
			logrus.Fatalf("Failed to parse report: %v", err)
		}
		block, err := file.Block(roiBlock)
		if err != nil {
			logrus.Fatalf("Failed to extract ROI: %v", err)
		}

		lines := block.Lines
		if statsPattern != "" {
			lines, err = block.Match(statsPattern)
			if err != nil {
				logrus.Fatalf("Bad --match pattern: %v", err)
			}
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, l := range lines {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, l.Value.Raw, l.Desc)
		}
		tw.Flush()

		if showMissRates {
			for _, prefix := range stats.CachePrefixes {
				rate, err := stats.MissRate(block, prefix)
				if err != nil {
					logrus.Debugf("No miss rate for %s: %v", prefix, err)
					continue
				}
				fmt.Printf("%s miss rate: %.4f\n", prefix, rate)
			}
		}
	},
}

func init() {
	statsCmd.Flags().IntVar(&roiBlock, "roi-block", stats.DefaultROIBlock, "1-based statistics block holding the ROI")
	statsCmd.Flags().StringVar(&statsPattern, "match", "", "Glob filter over statistic names")
	statsCmd.Flags().BoolVar(&showMissRates, "miss-rates", false, "Append derived per-cache miss rates")
	rootCmd.AddCommand(statsCmd)
}
