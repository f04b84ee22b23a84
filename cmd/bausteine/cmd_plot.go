package main

import (
	"github.com/spf13/cobra"
)

// plotCmd renders the forest plots.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render forest plots of the presence odds ratios",
	Long: `Renders one forest plot per outcome from reg_presence.csv: odds
ratios with 95% confidence intervals on a log axis, sorted ascending,
with a dashed reference line at OR = 1. Rows without a usable estimate
are dropped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return plotStage(cfg)
	},
}
