// Package chart turns rankings into horizontal ranked-bar figures and renders
// them as images, terminal output or inline SVG.
package chart

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lacquerai/rankview/internal/ranking"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// AxisHeadroom stretches the value axis past the longest bar.
const AxisHeadroom = 1.1

// Bar is a single ranked bar, ordered top to bottom within a Figure.
type Bar struct {
	Label      string      `json:"label" yaml:"label"`
	Score      float64     `json:"score" yaml:"score"`
	Fraction   float64     `json:"fraction" yaml:"fraction"`
	Color      string      `json:"color" yaml:"color"`
	Tooltip    string      `json:"tooltip" yaml:"tooltip"`
	ValueLabel string      `json:"value_label,omitempty" yaml:"value_label,omitempty"`
	Fill       color.Color `json:"-" yaml:"-"`
}

// Figure is a renderer-independent description of a ranked bar chart.
type Figure struct {
	Title   string  `json:"title" yaml:"title"`
	Metric  string  `json:"metric" yaml:"metric"`
	AxisMin float64 `json:"axis_min" yaml:"axis_min"`
	AxisMax float64 `json:"axis_max" yaml:"axis_max"`
	Labels  bool    `json:"labels" yaml:"labels"`
	Bars    []Bar   `json:"bars" yaml:"bars"`
}

// Options configures Build.
type Options struct {
	Title  string
	Labels bool
}

// Build lays out a ranking as a figure. Bars keep the ranking order, so the
// largest score is drawn on top; bar length and color intensity are both
// proportional to the score.
func Build(r *ranking.Ranking, opts Options) *Figure {
	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Top %d by %s", r.N, r.Metric)
	}

	fig := &Figure{
		Title:  title,
		Metric: r.Metric,
		Labels: opts.Labels,
		Bars:   make([]Bar, 0, len(r.Rows)),
	}

	maxScore, minScore := 0.0, 0.0
	for _, row := range r.Rows {
		maxScore = math.Max(maxScore, row.Score)
		minScore = math.Min(minScore, row.Score)
	}

	fig.AxisMax = maxScore * AxisHeadroom
	fig.AxisMin = minScore * AxisHeadroom
	if fig.AxisMax <= fig.AxisMin {
		fig.AxisMax = fig.AxisMin + 1
	}

	scale := newColorScale()
	for _, row := range r.Rows {
		intensity := 0.0
		if maxScore > 0 {
			intensity = math.Max(0, row.Score/maxScore)
		}

		fill := scale.at(intensity)
		bar := Bar{
			Label:    row.Identifier,
			Score:    row.Score,
			Fraction: (row.Score - fig.AxisMin) / (fig.AxisMax - fig.AxisMin),
			Color:    hexColor(fill),
			Fill:     fill,
			Tooltip:  fmt.Sprintf("%s: %s = %g", row.Identifier, r.Metric, row.Score),
		}
		if opts.Labels {
			bar.ValueLabel = FormatValue(row.Score)
		}
		fig.Bars = append(fig.Bars, bar)
	}

	return fig
}

// FormatValue formats a score the way bar labels show it.
func FormatValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// colorScale maps an intensity in [0, 1] to a fixed perceptual color ramp,
// light for small values and dark for large ones.
type colorScale struct {
	cmap palette.ColorMap
}

func newColorScale() colorScale {
	cmap := moreland.Kindlmann()
	cmap.SetMax(1)
	cmap.SetMin(0)
	return colorScale{cmap: cmap}
}

func (s colorScale) at(intensity float64) color.Color {
	intensity = math.Min(1, math.Max(0, intensity))
	// Keep clear of the near-white and near-black ends of the ramp.
	c, err := s.cmap.At(0.9 - 0.75*intensity)
	if err != nil {
		return color.RGBA{R: 0x42, G: 0xA5, B: 0xF5, A: 0xFF}
	}
	return c
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
