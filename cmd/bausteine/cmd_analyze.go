package main

import (
	"github.com/spf13/cobra"
)

// analyzeCmd fits the cluster-robust logistic regressions.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fit cluster-robust logistic regressions over the variant CSV",
	Long: `Fits two model families over the variant-level dataset, with the
task id as clustering variable for the sandwich standard errors:

  Model A  comp/pass against the Baustein count (reg_sum.csv)
  Model B  comp/pass against each single Baustein presence
           indicator (reg_presence.csv)

Degenerate fits (perfect separation, constant predictor) export as empty
numeric fields instead of aborting the batch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return analyzeStage(cfg)
	},
}
