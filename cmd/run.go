package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/m5bench/m5bench/harness"
	"github.com/m5bench/m5bench/harness/archive"
	"github.com/m5bench/m5bench/harness/stats"
)

var (
	gem5Bin     string        // Simulator binary override
	outRoot     string        // Root directory for run outputs
	runBoth     bool          // Run no-cache and two-level back to back and compare
	archivePath string        // SQLite archive ("" disables archiving)
	runTimeout  time.Duration // Abort the simulation after this long
)

// runCmd launches the simulator for one experiment, or for the walkthrough's
// no-cache/two-level pair with --both.
var runCmd = &cobra.Command{
	Use:   "run [experiment]",
	Short: "Run an experiment under the simulator",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runTimeout)
			defer cancel()
		}

		bin := gem5Bin
		if bin == "" {
			bin = harness.NewBuilder(gem5Dir, harness.DefaultToolchain()).Gem5Binary(isa)
		}
		runner := harness.NewRunner(bin, ".")

		if runBoth {
			runPair(ctx, cmd, runner)
			return
		}
		if len(args) != 1 {
			logrus.Fatalf("Need an experiment name (or --both)")
		}
		exp := loadExperiment(cmd, args[0])
		res := runOne(ctx, runner, exp)
		logrus.Infof("Report: %s", res.StatsPath)
	},
}

// runPair reproduces the walkthrough: same workload with and without the
// cache hierarchy, compared on the default key set.
func runPair(ctx context.Context, cmd *cobra.Command, runner *harness.Runner) {
	baseExp := loadExperiment(cmd, "no-cache")
	candExp := loadExperiment(cmd, "two-level")

	baseRes := runOne(ctx, runner, baseExp)
	candRes := runOne(ctx, runner, candExp)

	baseROI := mustROI(baseRes.StatsPath)
	candROI := mustROI(candRes.StatsPath)

	table := stats.Compare(baseROI, candROI, stats.DefaultCompareKeys)
	if err := table.Render(os.Stdout); err != nil {
		logrus.Fatalf("Failed to render comparison: %v", err)
	}
}

func runOne(ctx context.Context, runner *harness.Runner, exp *harness.Experiment) *harness.RunResult {
	outdir := filepath.Join(outRoot, exp.Name)
	res, err := runner.Run(ctx, exp, outdir)
	if err != nil {
		logrus.Fatalf("Run failed: %v", err)
	}
	if archivePath != "" {
		archiveRun(res)
	}
	return res
}

func archiveRun(res *harness.RunResult) {
	a, err := archive.Open(archivePath)
	if err != nil {
		logrus.Fatalf("Failed to open archive: %v", err)
	}
	defer a.Close()
	if err := a.RecordRun(res, mustROI(res.StatsPath)); err != nil {
		logrus.Fatalf("Failed to archive run: %v", err)
	}
}

func mustROI(path string) *stats.Block {
	file, err := stats.ParseFile(path)
	if err != nil {
		logrus.Fatalf("Failed to parse report: %v", err)
	}
	block, err := file.Block(roiBlock)
	if err != nil {
		logrus.Fatalf("Failed to extract ROI: %v", err)
	}
	return block
}

func init() {
	runCmd.Flags().StringVar(&gem5Bin, "gem5-bin", "", "Simulator binary (default build/<ISA>/gem5.opt under --gem5-dir)")
	runCmd.Flags().StringVar(&outRoot, "out", "runs", "Root directory for run output directories")
	runCmd.Flags().BoolVar(&runBoth, "both", false, "Run no-cache and two-level experiments and compare them")
	runCmd.Flags().StringVar(&archivePath, "archive", "", "SQLite run archive path (empty disables archiving)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Abort the simulation after this long (0 = no limit)")
	runCmd.Flags().IntVar(&roiBlock, "roi-block", stats.DefaultROIBlock, "1-based statistics block holding the ROI")
	rootCmd.AddCommand(runCmd)
}
