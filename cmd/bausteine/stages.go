// Stage implementations shared by the per-stage commands and `run`.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vincentrvk/bausteine/internal/config"
	"github.com/vincentrvk/bausteine/internal/dataset"
	"github.com/vincentrvk/bausteine/internal/forest"
	"github.com/vincentrvk/bausteine/internal/logit"
	"github.com/vincentrvk/bausteine/internal/store"
	"github.com/vincentrvk/bausteine/internal/workbook"
)

// reshapeStage reads the workbook and writes the variant-level CSV. It
// returns the cluster-size warning text, if any.
func reshapeStage(cfg *config.Config) (warning string, err error) {
	start := time.Now()
	f, err := cfg.Format()
	if err != nil {
		return "", err
	}

	logger.Debug("reading workbook",
		zap.String("path", cfg.Workbook), zap.String("sheet", cfg.Sheet))
	grid, err := workbook.Read(cfg.Workbook, cfg.Sheet)
	if err != nil {
		return "", err
	}

	table, err := dataset.Reshape(grid, dataset.Options{VariantsPerTask: cfg.VariantsPerTask})
	if err != nil {
		return "", err
	}

	if uneven := table.UnevenClusters(cfg.VariantsPerTask); len(uneven) > 0 {
		warning = fmt.Sprintf("Warnung: Nicht jedes Cluster hat %d Varianten!", cfg.VariantsPerTask)
		fmt.Fprintln(os.Stderr, warning)
		logger.Warn("uneven clusters", zap.Strings("clusters", uneven))
	}

	if err := dataset.WriteCSVFile(cfg.Outputs.Variants, table, f); err != nil {
		return warning, err
	}

	recordRun(cfg, store.Run{
		Stage:    "reshape",
		Input:    cfg.Workbook,
		Output:   cfg.Outputs.Variants,
		Rows:     len(table.Variants),
		Duration: time.Since(start),
		Warning:  warning,
	})

	fmt.Printf("✓ Fertig – Datei '%s' geschrieben (%d Varianten).\n",
		cfg.Outputs.Variants, len(table.Variants))
	return warning, nil
}

// analyzeStage fits both model families over the variant CSV and writes
// the regression result CSVs.
func analyzeStage(cfg *config.Config) error {
	start := time.Now()
	f, err := cfg.Format()
	if err != nil {
		return err
	}

	table, err := dataset.ReadCSVFile(cfg.Outputs.Variants, f)
	if err != nil {
		return err
	}
	logger.Debug("fitting regressions",
		zap.Int("variants", len(table.Variants)),
		zap.Int("bausteine", len(table.BausteinCols)))

	analysis := logit.AnalyzeTable(table)
	for _, r := range analysis.Presence {
		if r.Degenerate() {
			logger.Debug("degenerate fit",
				zap.String("outcome", r.Outcome), zap.String("baustein", r.Baustein))
		}
	}

	if err := logit.WriteSumCSVFile(cfg.Outputs.RegSum, analysis.Sum, f); err != nil {
		return err
	}
	if err := logit.WritePresenceCSVFile(cfg.Outputs.RegPresence, analysis.Presence, f); err != nil {
		return err
	}

	recordRun(cfg, store.Run{
		Stage:    "analyze",
		Input:    cfg.Outputs.Variants,
		Output:   cfg.Outputs.RegSum + "," + cfg.Outputs.RegPresence,
		Rows:     len(analysis.Sum) + len(analysis.Presence),
		Duration: time.Since(start),
	})

	fmt.Println("► Ergebnisse gespeichert:")
	fmt.Printf("  • %s       – Einfluss der Baustein-Summe\n", cfg.Outputs.RegSum)
	fmt.Printf("  • %s  – Vorhandensein einzelner Bausteine\n", cfg.Outputs.RegPresence)
	return nil
}

// plotStage renders both forest plots from the presence regression CSV.
func plotStage(cfg *config.Config) error {
	start := time.Now()
	f, err := cfg.Format()
	if err != nil {
		return err
	}
	plotColor, err := cfg.Plot.ParseColor()
	if err != nil {
		return err
	}

	rows, err := logit.ReadPresenceCSVFile(cfg.Outputs.RegPresence, f)
	if err != nil {
		return err
	}

	opts := forest.Options{
		Color:        plotColor,
		WidthInches:  cfg.Plot.WidthInches,
		HeightInches: cfg.Plot.HeightInches,
		DPI:          cfg.Plot.DPI,
	}

	plots := []struct {
		outcome string
		title   string
		path    string
	}{
		{"comp", cfg.Plot.CompTitle, cfg.Outputs.ForestComp},
		{"pass", cfg.Plot.PassTitle, cfg.Outputs.ForestPass},
	}
	rendered := 0
	for _, p := range plots {
		sub := forest.FilterOutcome(rows, p.outcome)
		logger.Debug("rendering forest plot",
			zap.String("outcome", p.outcome), zap.Int("rows", len(sub)))
		o := opts
		o.Title = p.title
		if err := forest.Render(sub, o, p.path); err != nil {
			return err
		}
		rendered += len(sub)
	}

	recordRun(cfg, store.Run{
		Stage:    "plot",
		Input:    cfg.Outputs.RegPresence,
		Output:   cfg.Outputs.ForestComp + "," + cfg.Outputs.ForestPass,
		Rows:     rendered,
		Duration: time.Since(start),
	})

	fmt.Printf("✓ Forest-Plots gespeichert (%s, %s)\n",
		cfg.Outputs.ForestComp, cfg.Outputs.ForestPass)
	return nil
}

// recordRun writes a ledger row when the ledger is enabled. Ledger
// failures are logged, never fatal: bookkeeping must not kill a stage
// that already produced its outputs.
func recordRun(cfg *config.Config, r store.Run) {
	if cfg.Ledger == "" {
		return
	}
	l, err := store.Open(cfg.Ledger)
	if err != nil {
		logger.Warn("failed to open run ledger", zap.Error(err))
		return
	}
	defer l.Close()

	if _, err := l.RecordRun(r); err != nil {
		logger.Warn("failed to record run", zap.Error(err))
	}
}

// formatRunLine renders one ledger row for `bausteine runs`.
func formatRunLine(r store.Run) string {
	warning := ""
	if r.Warning != "" {
		warning = "  ! " + r.Warning
	}
	return fmt.Sprintf("%s  %-8s %5d rows  %6dms  %s -> %s%s",
		r.Started.Format("2006-01-02 15:04:05"), r.Stage, r.Rows,
		r.Duration.Milliseconds(), r.Input, strings.ReplaceAll(r.Output, ",", ", "), warning)
}
