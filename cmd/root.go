package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/m5bench/m5bench/harness"
)

var (
	// Global CLI flags
	logLevel string // Log verbosity level
	gem5Dir  string // Simulator source checkout
	isa      string // Simulator build target architecture
	abi      string // Target ABI for the m5 ops library and cross compiles
	presets  string // Optional experiments.yaml path
	workload string // Cross-compiled workload binary
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "m5bench",
	Short: "Harness for gem5 cache-hierarchy experiments",
	Long: `m5bench drives a gem5 cache study end to end: it builds the simulator
and the m5 ops library, cross-compiles an instrumented workload, renders
SE-mode configuration scripts, runs the no-cache and two-level experiments,
and extracts and compares the region-of-interest statistics.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadExperiment resolves a named experiment from the presets file when one
// is given, or from the built-in defaults otherwise. The --workload override
// applies only when the flag was set on the command line; the flag's default
// must not clobber a workload path configured in the presets file.
func loadExperiment(cmd *cobra.Command, name string) *harness.Experiment {
	var (
		pf  *harness.PresetFile
		err error
	)
	if presets != "" {
		pf, err = harness.LoadPresets(presets)
		if err != nil {
			logrus.Fatalf("Failed to load presets: %v", err)
		}
	} else {
		pf = harness.DefaultPresets(workload)
	}
	exp, err := pf.Experiment(name)
	if err != nil {
		logrus.Fatalf("Unknown experiment: %v", err)
	}
	if cmd.Flags().Changed("workload") {
		exp.Workload = workload
	}
	return exp
}

// init sets up global CLI flags
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&gem5Dir, "gem5-dir", "gem5", "Path to the gem5 source checkout")
	rootCmd.PersistentFlags().StringVar(&isa, "isa", "ARM", "Simulator build target (scons build/<ISA>/gem5.opt)")
	rootCmd.PersistentFlags().StringVar(&abi, "abi", "arm64", "Target ABI for the m5 ops library")
	rootCmd.PersistentFlags().StringVar(&presets, "presets", "", "experiments.yaml path (built-in presets when empty)")
	rootCmd.PersistentFlags().StringVar(&workload, "workload", "workload", "Cross-compiled workload binary")
}
