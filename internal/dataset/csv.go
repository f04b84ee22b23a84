package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/vincentrvk/bausteine/internal/csvenc"
)

// fixedCols are the non-Baustein columns, in export order.
var fixedCols = []string{"variant", "cluster", "n_bausteine", "comp", "pass"}

// WriteCSV exports the table in the pipeline dialect with the column order
// variant;cluster;n_bausteine;comp;pass;B1..Bk.
func WriteCSV(w io.Writer, t *Table, f csvenc.Format) error {
	cw := csvenc.NewWriter(w, f)

	header := append(append([]string{}, fixedCols...), t.BausteinCols...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, v := range t.Variants {
		record := []string{
			v.Variant,
			v.Cluster,
			f.FormatInt(v.NBausteine),
			f.FormatInt(v.Comp),
			f.FormatInt(v.Pass),
		}
		for _, col := range t.BausteinCols {
			record = append(record, f.FormatInt(v.Bausteine[col]))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// WriteCSVFile exports the table to path.
func WriteCSVFile(path string, t *Table, f csvenc.Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteCSV(file, t, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// ReadCSV loads a table previously written by WriteCSV. Baustein columns
// are recognized by their B<number> names; unknown columns are ignored.
func ReadCSV(r io.Reader, f csvenc.Format) (*Table, error) {
	cr := csvenc.NewReader(r, f)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read variants CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("variants CSV is empty")
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, name := range fixedCols {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("variants CSV is missing column %q", name)
		}
	}

	table := &Table{}
	for _, h := range header {
		if bausteinRe.MatchString(h) {
			table.BausteinCols = append(table.BausteinCols, h)
		}
	}

	field := func(record []string, name string) string {
		i := col[name]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	for _, record := range records[1:] {
		v := Variant{
			Variant:    field(record, "variant"),
			Cluster:    field(record, "cluster"),
			NBausteine: f.ParseInt(field(record, "n_bausteine")),
			Comp:       f.ParseInt(field(record, "comp")),
			Pass:       f.ParseInt(field(record, "pass")),
			Bausteine:  make(map[string]int, len(table.BausteinCols)),
		}
		for _, b := range table.BausteinCols {
			v.Bausteine[b] = f.ParseInt(field(record, b))
		}
		table.Variants = append(table.Variants, v)
	}
	return table, nil
}

// ReadCSVFile loads a table from path.
func ReadCSVFile(path string, f csvenc.Format) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return ReadCSV(file, f)
}
