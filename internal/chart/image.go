package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Image formats supported by WriteImage.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

const (
	imageWidth = 8 * vg.Inch
	rowHeight  = 0.45 * vg.Inch
	barWidth   = 0.3 * vg.Inch
)

// ParseFormat normalizes an image format name or file extension.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (use png or svg)", s)
	}
}

// Plot builds the gonum plot of a ranked figure: one horizontal bar per
// entry, the first entry on top, the value axis spanning the figure's axis
// range.
func Plot(fig *Figure) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.Metric

	grid := plotter.NewGrid()
	grid.Horizontal.Color = nil
	p.Add(grid)

	n := len(fig.Bars)
	names := make([]string, n)
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, 0, n),
		Labels: make([]string, 0, n),
	}

	for i, bar := range fig.Bars {
		pos := float64(n - 1 - i)
		names[n-1-i] = bar.Label

		bc, err := plotter.NewBarChart(plotter.Values{bar.Score}, barWidth)
		if err != nil {
			return nil, fmt.Errorf("creating bar for %s: %w", bar.Label, err)
		}
		bc.Horizontal = true
		bc.XMin = pos
		bc.Color = bar.Fill
		bc.LineStyle.Width = vg.Length(0)
		p.Add(bc)

		if fig.Labels {
			labels.XYs = append(labels.XYs, plotter.XY{X: bar.Score, Y: pos})
			labels.Labels = append(labels.Labels, bar.ValueLabel)
		}
	}

	if len(labels.Labels) > 0 {
		valueLabels, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("creating value labels: %w", err)
		}
		valueLabels.Offset = vg.Point{X: vg.Points(4)}
		for i := range valueLabels.TextStyle {
			valueLabels.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(valueLabels)
	}

	if n > 0 {
		p.NominalY(names...)
	} else {
		p.Y.Min, p.Y.Max = 0, 1
	}

	p.X.Min = fig.AxisMin
	p.X.Max = fig.AxisMax

	return p, nil
}

// imageSize grows the canvas with the number of bars.
func imageSize(fig *Figure) (vg.Length, vg.Length) {
	height := vg.Length(len(fig.Bars))*rowHeight + 1.5*vg.Inch
	if height < 3*vg.Inch {
		height = 3 * vg.Inch
	}
	return imageWidth, height
}

// WriteImage renders the figure as PNG or SVG to w.
func WriteImage(fig *Figure, w io.Writer, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}

	p, err := Plot(fig)
	if err != nil {
		return err
	}

	width, height := imageSize(fig)
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("preparing %s canvas: %w", format, err)
	}

	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s chart: %w", format, err)
	}
	return nil
}

// SaveImage renders the figure to a file; the format follows the extension.
func SaveImage(fig *Figure, path string) error {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := WriteImage(fig, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
