// Package csvenc reads and writes the semicolon-separated, decimal-comma
// CSV dialect used throughout the pipeline. All exported files (variant
// table, regression results) share this dialect so that spreadsheet tools
// configured for German locales open them correctly.
package csvenc

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Format describes one CSV dialect: the field separator and the decimal
// mark used inside numeric fields.
type Format struct {
	FieldSep   rune
	DecimalSep rune
}

// Default is the dialect of the original exports: semicolon fields,
// comma decimals.
var Default = Format{FieldSep: ';', DecimalSep: ','}

// FormatFloat renders f with the dialect's decimal mark. NaN renders as an
// empty field, which is how degenerate regression rows are exported.
func (f Format) FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if f.DecimalSep != '.' {
		s = strings.ReplaceAll(s, ".", string(f.DecimalSep))
	}
	return s
}

// FormatInt renders an integer field.
func (f Format) FormatInt(v int) string {
	return strconv.Itoa(v)
}

// ParseFloat parses a numeric field in the dialect. Empty and unparsable
// fields yield NaN rather than an error, mirroring coerced numeric reads.
func (f Format) ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	if f.DecimalSep != '.' {
		s = strings.ReplaceAll(s, string(f.DecimalSep), ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseInt parses an integer field, tolerating float renderings such as
// "1,0". Unparsable fields yield 0.
func (f Format) ParseInt(s string) int {
	v := f.ParseFloat(s)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}

// Writer writes records in the dialect.
type Writer struct {
	fmt Format
	w   *csv.Writer
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer, f Format) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = f.FieldSep
	return &Writer{fmt: f, w: cw}
}

// Write writes one raw record.
func (w *Writer) Write(record []string) error {
	return w.w.Write(record)
}

// Flush flushes buffered records and reports any write error.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// Format exposes the writer's dialect for field formatting.
func (w *Writer) Format() Format { return w.fmt }

// Reader reads records in the dialect.
type Reader struct {
	fmt Format
	r   *csv.Reader
}

// NewReader returns a Reader consuming r. Records may have varying length.
func NewReader(r io.Reader, f Format) *Reader {
	cr := csv.NewReader(r)
	cr.Comma = f.FieldSep
	cr.FieldsPerRecord = -1
	return &Reader{fmt: f, r: cr}
}

// Read returns the next record.
func (r *Reader) Read() ([]string, error) {
	return r.r.Read()
}

// ReadAll returns all remaining records.
func (r *Reader) ReadAll() ([][]string, error) {
	return r.r.ReadAll()
}

// Format exposes the reader's dialect for field parsing.
func (r *Reader) Format() Format { return r.fmt }

// ParseFormat builds a Format from single-character separator strings, as
// they appear in the YAML config.
func ParseFormat(fieldSep, decimalSep string) (Format, error) {
	fr := []rune(fieldSep)
	dr := []rune(decimalSep)
	if len(fr) != 1 || len(dr) != 1 {
		return Format{}, fmt.Errorf("separators must be single characters, got %q and %q", fieldSep, decimalSep)
	}
	if fr[0] == dr[0] {
		return Format{}, fmt.Errorf("field separator and decimal separator are both %q", fieldSep)
	}
	return Format{FieldSep: fr[0], DecimalSep: dr[0]}, nil
}
