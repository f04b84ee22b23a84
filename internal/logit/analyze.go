package logit

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vincentrvk/bausteine/internal/csvenc"
	"github.com/vincentrvk/bausteine/internal/dataset"
)

// Outcomes are fitted in this fixed order for both model families.
var Outcomes = []string{"comp", "pass"}

// SumRow is one model A fit: the Baustein count as predictor.
type SumRow struct {
	Outcome string
	Result
}

// PresenceRow is one model B fit: a single Baustein presence indicator as
// predictor.
type PresenceRow struct {
	Outcome  string
	Baustein string
	Result
}

// Analysis bundles both model families over one variant table.
type Analysis struct {
	Sum      []SumRow
	Presence []PresenceRow
}

// AnalyzeTable fits model A (n_bausteine against each outcome) and model B
// (each Baustein column against each outcome) with the table's cluster ids
// as the grouping variable. Presence rows are sorted by outcome, then by
// Baustein label (lexicographically, so B10 sorts before B2, as string
// sorting has it).
func AnalyzeTable(t *dataset.Table) *Analysis {
	clusters := t.Clusters()
	a := &Analysis{}

	for _, outcome := range Outcomes {
		a.Sum = append(a.Sum, SumRow{
			Outcome: outcome,
			Result:  Fit(t.Outcome(outcome), t.Predictor("n_bausteine"), clusters),
		})
	}

	for _, b := range t.BausteinCols {
		for _, outcome := range Outcomes {
			a.Presence = append(a.Presence, PresenceRow{
				Outcome:  outcome,
				Baustein: b,
				Result:   Fit(t.Outcome(outcome), t.Predictor(b), clusters),
			})
		}
	}

	sort.SliceStable(a.Presence, func(i, j int) bool {
		if a.Presence[i].Outcome != a.Presence[j].Outcome {
			return a.Presence[i].Outcome < a.Presence[j].Outcome
		}
		return a.Presence[i].Baustein < a.Presence[j].Baustein
	})

	return a
}

var resultCols = []string{"β", "SE", "CI_low", "CI_up", "OR", "OR_low", "OR_up", "p"}

func resultFields(f csvenc.Format, r Result) []string {
	return []string{
		f.FormatFloat(r.Beta),
		f.FormatFloat(r.SE),
		f.FormatFloat(r.CILow),
		f.FormatFloat(r.CIHigh),
		f.FormatFloat(r.OR),
		f.FormatFloat(r.ORLow),
		f.FormatFloat(r.ORHigh),
		f.FormatFloat(r.P),
	}
}

// WriteSumCSV exports the model A results.
func WriteSumCSV(w io.Writer, rows []SumRow, f csvenc.Format) error {
	cw := csvenc.NewWriter(w, f)
	if err := cw.Write(append([]string{"Outcome"}, resultCols...)); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(append([]string{r.Outcome}, resultFields(f, r.Result)...)); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// WritePresenceCSV exports the model B results.
func WritePresenceCSV(w io.Writer, rows []PresenceRow, f csvenc.Format) error {
	cw := csvenc.NewWriter(w, f)
	if err := cw.Write(append([]string{"Outcome", "Baustein"}, resultCols...)); err != nil {
		return err
	}
	for _, r := range rows {
		record := append([]string{r.Outcome, r.Baustein}, resultFields(f, r.Result)...)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// WriteSumCSVFile exports model A results to path.
func WriteSumCSVFile(path string, rows []SumRow, f csvenc.Format) error {
	return writeFile(path, func(w io.Writer) error { return WriteSumCSV(w, rows, f) })
}

// WritePresenceCSVFile exports model B results to path.
func WritePresenceCSVFile(path string, rows []PresenceRow, f csvenc.Format) error {
	return writeFile(path, func(w io.Writer) error { return WritePresenceCSV(w, rows, f) })
}

// ReadPresenceCSV loads a reg_presence CSV back in, coercing the numeric
// columns needed downstream (the plot stage only uses OR and its CI).
func ReadPresenceCSV(r io.Reader, f csvenc.Format) ([]PresenceRow, error) {
	cr := csvenc.NewReader(r, f)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read presence CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("presence CSV is empty")
	}

	col := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		col[h] = i
	}
	for _, name := range []string{"Outcome", "Baustein", "OR", "OR_low", "OR_up"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("presence CSV is missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i := col[name]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}
	num := func(record []string, name string) float64 {
		if _, ok := col[name]; !ok {
			return f.ParseFloat("")
		}
		return f.ParseFloat(field(record, name))
	}

	var rows []PresenceRow
	for _, record := range records[1:] {
		rows = append(rows, PresenceRow{
			Outcome:  field(record, "Outcome"),
			Baustein: field(record, "Baustein"),
			Result: Result{
				Beta:   num(record, "β"),
				SE:     num(record, "SE"),
				CILow:  num(record, "CI_low"),
				CIHigh: num(record, "CI_up"),
				OR:     num(record, "OR"),
				ORLow:  num(record, "OR_low"),
				ORHigh: num(record, "OR_up"),
				P:      num(record, "p"),
			},
		})
	}
	return rows, nil
}

// ReadPresenceCSVFile loads a reg_presence CSV from path.
func ReadPresenceCSVFile(path string, f csvenc.Format) ([]PresenceRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return ReadPresenceCSV(file, f)
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := write(file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
