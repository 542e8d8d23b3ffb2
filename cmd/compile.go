package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/m5bench/m5bench/harness"
)

var (
	compileSrc           string // Workload C source (generated when absent)
	compileOut           string // Output binary path
	crossGCC             string // Cross compiler override
	keepBranchProtection bool   // Keep the default branch-protection codegen

	workloadArrayBytes int
	workloadStride     int
	workloadPasses     int
)

// compileCmd cross-compiles the instrumented workload, generating its source
// first when no existing file is given.
var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Cross-compile the instrumented workload",
	Run: func(cmd *cobra.Command, args []string) {
		src := compileSrc
		if src == "" {
			src = "workload.c"
			if err := os.WriteFile(src, renderWorkloadSource(), 0o644); err != nil {
				logrus.Fatalf("Failed to write workload source: %v", err)
			}
			logrus.Infof("Workload source written to %s", src)
		}

		tc := harness.DefaultToolchain()
		if crossGCC != "" {
			tc.CrossGCC = crossGCC
		}
		tc.DisableBranchProtection = !keepBranchProtection

		b := harness.NewBuilder(gem5Dir, tc)
		if err := b.CompileWorkload(context.Background(), abi, src, compileOut); err != nil {
			logrus.Fatalf("Workload compile failed: %v", err)
		}
		logrus.Infof("Workload binary: %s", compileOut)
	},
}

// workloadCmd only emits the instrumented C source, for inspection or manual
// compilation.
var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Print the instrumented workload C source",
	Run: func(cmd *cobra.Command, args []string) {
		os.Stdout.Write(renderWorkloadSource())
	},
}

func renderWorkloadSource() []byte {
	cfg := harness.DefaultWorkloadConfig()
	if workloadArrayBytes > 0 {
		cfg.ArrayBytes = workloadArrayBytes
	}
	if workloadStride > 0 {
		cfg.Stride = workloadStride
	}
	if workloadPasses > 0 {
		cfg.Passes = workloadPasses
	}
	src, err := harness.WorkloadSource(cfg)
	if err != nil {
		logrus.Fatalf("Failed to render workload source: %v", err)
	}
	return src
}

func addWorkloadFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&workloadArrayBytes, "array-bytes", 0, "Workload working-set size in bytes (0 = default)")
	cmd.Flags().IntVar(&workloadStride, "stride", 0, "Workload access stride in bytes (0 = default)")
	cmd.Flags().IntVar(&workloadPasses, "passes", 0, "Workload ROI passes over the buffer (0 = default)")
}

func init() {
	compileCmd.Flags().StringVar(&compileSrc, "src", "", "Existing workload source (generated when empty)")
	compileCmd.Flags().StringVar(&compileOut, "out", "workload", "Output binary path")
	compileCmd.Flags().StringVar(&crossGCC, "cross-gcc", "", "Cross compiler (default aarch64-linux-gnu-gcc)")
	compileCmd.Flags().BoolVar(&keepBranchProtection, "keep-branch-protection", false,
		"Do not pass -mbranch-protection=none (the simulated CPU rejects pointer-authentication instructions)")
	addWorkloadFlags(compileCmd)
	addWorkloadFlags(workloadCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(workloadCmd)
}
