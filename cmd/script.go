package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/m5bench/m5bench/harness"
)

// scriptCmd renders the simulator configuration script for an experiment so
// it can be inspected or launched by hand.
var scriptCmd = &cobra.Command{
	Use:   "script <experiment>",
	Short: "Print the rendered gem5 configuration script for an experiment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exp := loadExperiment(cmd, args[0])
		script, err := harness.RenderScript(exp)
		if err != nil {
			logrus.Fatalf("Failed to render script: %v", err)
		}
		os.Stdout.Write(script)
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd)
}
