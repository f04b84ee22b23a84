// Package workbook reads the raw cell grid of an Excel worksheet. It only
// extracts cells; interpreting the layout is the dataset package's job.
package workbook

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Grid is a worksheet as rows of cell strings. Rows may have different
// lengths; excelize drops trailing empty cells.
type Grid [][]string

// Read opens the workbook at path and returns the cell grid of the named
// sheet.
func Read(path, sheet string) (Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return Grid(rows), nil
}

// Cell returns the trimmed cell at (row, col), or "" when the coordinates
// fall outside the grid.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Width returns the widest row length.
func (g Grid) Width() int {
	w := 0
	for _, r := range g {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// CoerceFloat parses a cell as a number, accepting either decimal mark.
// Empty and unparsable cells yield NaN.
func CoerceFloat(cell string) float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN()
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// CoerceInt parses a cell as an integer with NaN and parse failures
// collapsing to 0, matching a coerce-then-fill-zero read.
func CoerceInt(cell string) int {
	v := CoerceFloat(cell)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}
