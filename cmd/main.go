package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgDir string

var rootCmd = &cobra.Command{
	Use:           "trv-schedule",
	Short:         "Weekly schedule editor for Zigbee thermostatic radiator valves",
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgDir, "config", "c", "configs", "directory holding config.yml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
