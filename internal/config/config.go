// Package config holds the YAML pipeline configuration. The defaults
// reproduce the constants of the original analysis exactly, so running
// without a config file behaves like the original scripts.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vincentrvk/bausteine/internal/csvenc"
)

// Config holds all pipeline configuration.
type Config struct {
	// Input workbook
	Workbook        string `yaml:"workbook"`
	Sheet           string `yaml:"sheet"`
	VariantsPerTask int    `yaml:"variants_per_task"`

	// CSV dialect shared by all exports
	CSV CSVConfig `yaml:"csv"`

	// Stage output paths
	Outputs OutputsConfig `yaml:"outputs"`

	// Forest plot rendering
	Plot PlotConfig `yaml:"plot"`

	// Run ledger (SQLite); empty disables it
	Ledger string `yaml:"ledger"`
}

// CSVConfig configures the CSV dialect.
type CSVConfig struct {
	FieldSep   string `yaml:"field_sep"`
	DecimalSep string `yaml:"decimal_sep"`
}

// OutputsConfig names the files each stage writes.
type OutputsConfig struct {
	Variants    string `yaml:"variants"`
	RegSum      string `yaml:"reg_sum"`
	RegPresence string `yaml:"reg_presence"`
	ForestComp  string `yaml:"forest_comp"`
	ForestPass  string `yaml:"forest_pass"`
}

// PlotConfig configures the forest plots.
type PlotConfig struct {
	Color        string  `yaml:"color"`
	DPI          int     `yaml:"dpi"`
	WidthInches  float64 `yaml:"width_inches"`
	HeightInches float64 `yaml:"height_inches"`
	CompTitle    string  `yaml:"comp_title"`
	PassTitle    string  `yaml:"pass_title"`
}

// Default returns the configuration matching the original scripts.
func Default() *Config {
	return &Config{
		Workbook:        "Aufgaben.xlsx",
		Sheet:           "variants_raw",
		VariantsPerTask: 5,
		CSV: CSVConfig{
			FieldSep:   ";",
			DecimalSep: ",",
		},
		Outputs: OutputsConfig{
			Variants:    "variants_sortiert.csv",
			RegSum:      "reg_sum.csv",
			RegPresence: "reg_presence.csv",
			ForestComp:  "forest_compilation.png",
			ForestPass:  "forest_testerfolg.png",
		},
		Plot: PlotConfig{
			Color:        "#5B9BD5",
			DPI:          300,
			WidthInches:  8,
			HeightInches: 6,
			CompTitle:    "Einfluss der Integrationsbausteine auf die erfolgreiche Kompilierung",
			PassTitle:    "Einfluss der Integrationsbausteine auf den Testerfolg",
		},
	}
}

// Load reads a YAML config over the defaults. An empty path returns the
// defaults. Environment overrides apply last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets the environment point at a different workbook or
// ledger without editing the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BAUSTEINE_WORKBOOK"); v != "" {
		c.Workbook = v
	}
	if v := os.Getenv("BAUSTEINE_LEDGER"); v != "" {
		c.Ledger = v
	}
}

// Validate rejects configurations no stage could run with.
func (c *Config) Validate() error {
	if c.Workbook == "" {
		return fmt.Errorf("workbook path must not be empty")
	}
	if c.Sheet == "" {
		return fmt.Errorf("sheet name must not be empty")
	}
	if c.VariantsPerTask < 1 {
		return fmt.Errorf("variants_per_task must be at least 1, got %d", c.VariantsPerTask)
	}
	if _, err := c.Format(); err != nil {
		return err
	}
	if c.Plot.DPI < 1 {
		return fmt.Errorf("plot dpi must be positive, got %d", c.Plot.DPI)
	}
	if c.Plot.WidthInches <= 0 || c.Plot.HeightInches <= 0 {
		return fmt.Errorf("plot dimensions must be positive")
	}
	if _, err := c.Plot.ParseColor(); err != nil {
		return err
	}
	return nil
}

// ParseColor decodes the configured #RRGGBB plot color.
func (p PlotConfig) ParseColor() (color.RGBA, error) {
	s := strings.TrimPrefix(p.Color, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("plot color must be #RRGGBB, got %q", p.Color)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("plot color must be #RRGGBB, got %q", p.Color)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// Format builds the CSV dialect from the configured separators.
func (c *Config) Format() (csvenc.Format, error) {
	return csvenc.ParseFormat(c.CSV.FieldSep, c.CSV.DecimalSep)
}
