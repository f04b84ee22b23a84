package main

import (
	"github.com/spf13/cobra"
)

// runCmd executes the whole pipeline in order.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all pipeline stages: reshape, analyze, plot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := reshapeStage(cfg); err != nil {
			return err
		}
		if err := analyzeStage(cfg); err != nil {
			return err
		}
		return plotStage(cfg)
	},
}
