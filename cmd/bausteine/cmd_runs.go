package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vincentrvk/bausteine/internal/store"
)

var runsLimit int

// runsCmd lists recorded pipeline runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs from the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Ledger == "" {
			fmt.Println("Ledger disabled; set --ledger or the ledger config key.")
			return nil
		}

		l, err := store.Open(cfg.Ledger)
		if err != nil {
			return err
		}
		defer l.Close()

		runs, err := l.ListRuns(runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}

		fmt.Println(strings.Repeat("─", 72))
		for _, r := range runs {
			fmt.Println(formatRunLine(r))
		}
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("Total: %d runs\n", len(runs))
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list (0 = all)")
}
