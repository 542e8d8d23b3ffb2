package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/m5bench/m5bench/harness"
)

var (
	buildJobs int  // Parallel scons jobs
	skipM5Ops bool // Skip the m5 ops library build
	skipGem5  bool // Skip the simulator build
)

// buildCmd invokes the external build system for the simulator binary and
// the m5 ops static library.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the gem5 binary and the m5 ops library",
	Run: func(cmd *cobra.Command, args []string) {
		tc := harness.DefaultToolchain()
		if buildJobs > 0 {
			tc.Jobs = buildJobs
		}
		b := harness.NewBuilder(gem5Dir, tc)
		ctx := context.Background()

		if !skipGem5 {
			bin, err := b.BuildGem5(ctx, isa)
			if err != nil {
				logrus.Fatalf("Simulator build failed: %v", err)
			}
			logrus.Infof("Simulator built: %s", bin)
		}
		if !skipM5Ops {
			dir, err := b.BuildM5Ops(ctx, abi)
			if err != nil {
				logrus.Fatalf("m5 ops build failed: %v", err)
			}
			logrus.Infof("m5 ops library built in %s", dir)
		}
	},
}

func init() {
	buildCmd.Flags().IntVar(&buildJobs, "jobs", 0, "Parallel build jobs (0 = host CPU count)")
	buildCmd.Flags().BoolVar(&skipGem5, "skip-gem5", false, "Skip the simulator build")
	buildCmd.Flags().BoolVar(&skipM5Ops, "skip-m5ops", false, "Skip the m5 ops library build")
	rootCmd.AddCommand(buildCmd)
}
