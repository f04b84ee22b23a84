package dataset

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vincentrvk/bausteine/internal/workbook"
)

// Worksheet layout constants: the first three sheet rows are decorative
// headers, the fourth row carries the Baustein column labels, data starts
// on the fifth.
const (
	labelRowIndex = 3
	dataRowIndex  = 4
)

var (
	taskRe     = regexp.MustCompile(`^[A-Za-z]+\d+$`)
	variantRe  = regexp.MustCompile(`^[A-Za-z]+\d+[a-eA-E]$`)
	bausteinRe = regexp.MustCompile(`^B\d+$`)
)

// Options controls the reshape.
type Options struct {
	// VariantsPerTask is how many physical rows after a task row are read
	// as its variants. The workbook always carries five (a through e).
	VariantsPerTask int
}

// Reshape turns the raw worksheet grid into the variant-level table.
//
// Task rows are recognized by their id shape (letters followed by digits,
// e.g. "I17"). Each contributes the next VariantsPerTask rows as variants;
// a row whose label does not look like a variant id (letters, digits, one
// trailing a-e) gets a synthesized label such as "I17A". Variants inherit
// the task row's Baustein presence and count; their own comp./pass cells
// provide the outcomes.
func Reshape(grid workbook.Grid, opts Options) (*Table, error) {
	if opts.VariantsPerTask < 1 {
		return nil, fmt.Errorf("variants per task must be positive, got %d", opts.VariantsPerTask)
	}
	if len(grid) <= dataRowIndex {
		return nil, fmt.Errorf("sheet has %d rows, need at least %d", len(grid), dataRowIndex+1)
	}

	headers := headerRow(grid)
	bausteinCols, bausteinIdx := bausteinColumns(headers)
	if len(bausteinCols) == 0 {
		return nil, fmt.Errorf("no Baustein columns (B1, B2, ...) found in label row")
	}
	compIdx := columnIndex(headers, "comp.")
	passIdx := columnIndex(headers, "pass")
	if compIdx < 0 || passIdx < 0 {
		return nil, fmt.Errorf("label row is missing the comp./pass outcome columns")
	}

	data := grid[dataRowIndex:]
	table := &Table{BausteinCols: bausteinCols}

	for i := range data {
		cluster := data.Cell(i, 0)
		if !taskRe.MatchString(cluster) {
			continue
		}

		presence := make(map[string]int, len(bausteinCols))
		nBausteine := 0
		for _, col := range bausteinCols {
			v := workbook.CoerceInt(data.Cell(i, bausteinIdx[col]))
			presence[col] = v
			nBausteine += v
		}

		for offset := 1; offset <= opts.VariantsPerTask; offset++ {
			idx := i + offset
			if idx >= len(data) {
				continue
			}
			label := data.Cell(idx, 0)
			if !variantRe.MatchString(label) {
				label = fmt.Sprintf("%s%c", cluster, 'A'+offset-1)
			}

			table.Variants = append(table.Variants, Variant{
				Variant:    label,
				Cluster:    cluster,
				NBausteine: nBausteine,
				Comp:       workbook.CoerceInt(data.Cell(idx, compIdx)),
				Pass:       workbook.CoerceInt(data.Cell(idx, passIdx)),
				Bausteine:  copyPresence(presence),
			})
		}
	}

	return table, nil
}

// headerRow builds the effective column names: the first column is always
// "variant", the rest come from the trimmed label row.
func headerRow(grid workbook.Grid) []string {
	labels := grid[labelRowIndex]
	if len(labels) == 0 {
		return []string{"variant"}
	}
	headers := make([]string, len(labels))
	headers[0] = "variant"
	for c := 1; c < len(labels); c++ {
		headers[c] = strings.TrimSpace(labels[c])
	}
	return headers
}

func bausteinColumns(headers []string) ([]string, map[string]int) {
	var cols []string
	idx := make(map[string]int)
	for c, h := range headers {
		if bausteinRe.MatchString(h) {
			cols = append(cols, h)
			idx[h] = c
		}
	}
	return cols, idx
}

func columnIndex(headers []string, name string) int {
	for c, h := range headers {
		if h == name {
			return c
		}
	}
	return -1
}

func copyPresence(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
