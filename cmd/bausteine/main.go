// Command bausteine runs the Baustein analysis pipeline: it reshapes the
// exam-task workbook into a variant-level dataset, fits cluster-robust
// logistic regressions of compilation and test success, and renders
// forest plots of the resulting odds ratios.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vincentrvk/bausteine/internal/config"
)

var (
	// Global flags
	cfgPath    string
	verbose    bool
	ledgerPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bausteine",
	Short: "Baustein analysis pipeline for exam-task variants",
	Long: `bausteine transforms the variants_raw worksheet of the exam-task
workbook into a tidy variant-level dataset, fits cluster-robust logistic
regressions of compilation/test success against Baustein presence, and
renders forest plots of the resulting odds ratios.

Stages:
  reshape  workbook -> variants_sortiert.csv
  analyze  variants CSV -> reg_sum.csv + reg_presence.csv
  plot     reg_presence.csv -> forest PNGs
  run      all three stages in sequence`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML pipeline config (defaults match the original scripts)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "SQLite run ledger path (overrides config; empty keeps ledger disabled)")

	rootCmd.AddCommand(reshapeCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
}

// loadConfig loads the pipeline config and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if ledgerPath != "" {
		cfg.Ledger = ledgerPath
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
