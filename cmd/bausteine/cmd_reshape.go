package main

import (
	"github.com/spf13/cobra"
)

// reshapeCmd builds the variant-level dataset from the workbook.
var reshapeCmd = &cobra.Command{
	Use:   "reshape",
	Short: "Reshape the workbook into the variant-level CSV",
	Long: `Reads the variants_raw worksheet and builds a tidy dataset with one
row per task variant:

  variant      unique variant name (I1a ... I29e)
  cluster      task id (e.g. I1), the clustering variable
  n_bausteine  Baustein count of the task
  comp / pass  0/1 success per variant
  B1 ... Bk    0/1 Baustein presence, inherited from the task

Emits a warning when a cluster does not have the expected number of
variants.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, err = reshapeStage(cfg)
		return err
	},
}
