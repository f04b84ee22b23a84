// Package forest renders forest plots of odds ratios with their 95%
// confidence intervals, one horizontal row per Baustein, on a log-scaled
// axis with a reference line at OR = 1.
package forest

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/vincentrvk/bausteine/internal/logit"
)

// Row is one plotted estimate.
type Row struct {
	Label string
	OR    float64
	Low   float64
	High  float64
}

// Options controls the rendering. Zero values fall back to the defaults
// of the original plots: Excel accent blue, 8x6 inches, 300 DPI.
type Options struct {
	Color        color.Color
	WidthInches  float64
	HeightInches float64
	DPI          int
	Title        string
	XLabel       string
}

// ExcelBlue is the accent color of the original plots (#5B9BD5).
var ExcelBlue = color.RGBA{R: 0x5B, G: 0x9B, B: 0xD5, A: 0xFF}

const capHeight = 0.25 // CI cap extent in row units

func (o *Options) fillDefaults() {
	if o.Color == nil {
		o.Color = ExcelBlue
	}
	if o.WidthInches <= 0 {
		o.WidthInches = 8
	}
	if o.HeightInches <= 0 {
		o.HeightInches = 6
	}
	if o.DPI <= 0 {
		o.DPI = 300
	}
	if o.XLabel == "" {
		o.XLabel = "Odds Ratio (log-Skala)"
	}
}

// FilterOutcome selects the presence rows whose outcome contains the given
// substring (case-insensitive) and converts them to plot rows, dropping
// degenerate estimates.
func FilterOutcome(rows []logit.PresenceRow, outcome string) []Row {
	var out []Row
	needle := strings.ToLower(outcome)
	for _, r := range rows {
		if !strings.Contains(strings.ToLower(r.Outcome), needle) {
			continue
		}
		if math.IsNaN(r.OR) || math.IsNaN(r.ORLow) || math.IsNaN(r.ORHigh) {
			continue
		}
		out = append(out, Row{Label: r.Baustein, OR: r.OR, Low: r.ORLow, High: r.ORHigh})
	}
	return out
}

// Render draws the forest plot for rows into a PNG at path. Rows are
// sorted ascending by OR from bottom to top. An empty row set still
// produces a plot with the reference line so the pipeline never fails on
// an all-degenerate outcome.
func Render(rows []Row, opts Options, path string) error {
	opts.fillDefaults()

	rows = append([]Row(nil), rows...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].OR < rows[j].OR })

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	yMax := float64(len(rows))
	if len(rows) == 0 {
		yMax = 1
	}
	p.Y.Min = -0.5
	p.Y.Max = yMax - 0.5

	if err := addReferenceLine(p, yMax); err != nil {
		return err
	}

	ticks := make([]plot.Tick, len(rows))
	points := make(plotter.XYs, len(rows))
	for i, r := range rows {
		y := float64(i)
		ticks[i] = plot.Tick{Value: y, Label: r.Label}
		points[i] = plotter.XY{X: r.OR, Y: y}

		if err := addInterval(p, r, y, opts.Color); err != nil {
			return err
		}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	if len(points) > 0 {
		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return fmt.Errorf("failed to build scatter: %w", err)
		}
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Color = opts.Color
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
	} else {
		// Keep the log axis sane without data.
		p.X.Min = 0.1
		p.X.Max = 10
	}

	return writePNG(p, opts, path)
}

// addInterval draws the CI as a horizontal segment plus short vertical
// caps at both ends.
func addInterval(p *plot.Plot, r Row, y float64, c color.Color) error {
	segments := []plotter.XYs{
		{{X: r.Low, Y: y}, {X: r.High, Y: y}},
		{{X: r.Low, Y: y - capHeight/2}, {X: r.Low, Y: y + capHeight/2}},
		{{X: r.High, Y: y - capHeight/2}, {X: r.High, Y: y + capHeight/2}},
	}
	for _, seg := range segments {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return fmt.Errorf("failed to build CI segment: %w", err)
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
	}
	return nil
}

// addReferenceLine draws the dashed grey OR=1 line over the full height.
func addReferenceLine(p *plot.Plot, yMax float64) error {
	line, err := plotter.NewLine(plotter.XYs{
		{X: 1, Y: -0.5},
		{X: 1, Y: yMax - 0.5},
	})
	if err != nil {
		return fmt.Errorf("failed to build reference line: %w", err)
	}
	line.LineStyle.Color = color.Gray{Y: 128}
	line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(line)
	return nil
}

func writePNG(p *plot.Plot, opts Options, path string) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.WidthInches)*vg.Inch, vg.Length(opts.HeightInches)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
