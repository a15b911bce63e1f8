package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	barColor     = color.RGBA{R: 0x87, G: 0xCE, B: 0xEB, A: 0xFF}
	scatterColor = color.RGBA{R: 0xFF, G: 0xA5, B: 0x00, A: 0xFF}
)

// Axes names the title and axis labels of a batch plot.
type Axes struct {
	Title  string
	XLabel string
	YLabel string
}

// GroupedBar draws one vertical bar per category.
func GroupedBar(axes Axes, categories []string, values []float64) (*plot.Plot, error) {
	if len(categories) != len(values) {
		return nil, fmt.Errorf("%d categories but %d values", len(categories), len(values))
	}

	p := plot.New()
	p.Title.Text = axes.Title
	p.X.Label.Text = axes.XLabel
	p.Y.Label.Text = axes.YLabel

	if len(values) == 0 {
		return p, nil
	}

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(28))
	if err != nil {
		return nil, fmt.Errorf("creating bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.NominalX(categories...)
	p.X.Tick.Label.Rotation = 0.785
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0

	return p, nil
}

// Scatter draws one point per (x, y) pair on a grid.
func Scatter(axes Axes, xs, ys []float64) (*plot.Plot, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%d x values but %d y values", len(xs), len(ys))
	}

	p := plot.New()
	p.Title.Text = axes.Title
	p.X.Label.Text = axes.XLabel
	p.Y.Label.Text = axes.YLabel
	p.Add(plotter.NewGrid())

	points := make(plotter.XYs, len(xs))
	for i := range xs {
		points[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	if len(points) == 0 {
		return p, nil
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return nil, fmt.Errorf("creating scatter: %w", err)
	}
	scatter.GlyphStyle.Color = scatterColor
	scatter.GlyphStyle.Radius = vg.Points(3)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)

	return p, nil
}

// Save writes a plot to path; the format follows the file extension.
func Save(p *plot.Plot, path string) error {
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
