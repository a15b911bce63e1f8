package chart

import "math"

// SVG geometry used by LayoutSVG, in user units.
const (
	svgLabelWidth = 140.0
	svgValueRoom  = 60.0
	svgBarHeight  = 24.0
	svgBarGap     = 8.0
	svgTitleRoom  = 36.0
	svgAxisRoom   = 28.0
)

// SVGBar is one positioned bar of an inline SVG chart.
type SVGBar struct {
	Bar
	X, Y, Width, Height float64
	// LabelY is the text baseline shared by the category and value labels.
	LabelY float64
	// ValueX is where the value label starts.
	ValueX float64
}

// SVGTick is a value-axis tick mark.
type SVGTick struct {
	X     float64
	Label string
}

// SVGLayout is a figure positioned inside a fixed-width SVG viewport.
type SVGLayout struct {
	Title         string
	Width, Height float64
	PlotX         float64
	PlotWidth     float64
	ZeroX         float64
	AxisY         float64
	Bars          []SVGBar
	Ticks         []SVGTick
}

// LayoutSVG positions the bars of fig inside an SVG of the given width. Bars
// grow from the zero line, so negative scores extend to the left of it.
func LayoutSVG(fig *Figure, width float64) SVGLayout {
	if width < svgLabelWidth+svgValueRoom+100 {
		width = svgLabelWidth + svgValueRoom + 100
	}

	plotX := svgLabelWidth
	plotWidth := width - svgLabelWidth - svgValueRoom
	span := fig.AxisMax - fig.AxisMin
	if span <= 0 {
		span = 1
	}
	xAt := func(v float64) float64 {
		return plotX + (v-fig.AxisMin)/span*plotWidth
	}

	layout := SVGLayout{
		Title:     fig.Title,
		Width:     width,
		PlotX:     plotX,
		PlotWidth: plotWidth,
		ZeroX:     xAt(0),
		Bars:      make([]SVGBar, len(fig.Bars)),
	}

	y := svgTitleRoom
	for i, b := range fig.Bars {
		start, end := xAt(0), xAt(b.Score)
		layout.Bars[i] = SVGBar{
			Bar:    b,
			X:      math.Min(start, end),
			Y:      y,
			Width:  math.Abs(end - start),
			Height: svgBarHeight,
			LabelY: y + svgBarHeight*0.7,
			ValueX: math.Max(start, end) + 6,
		}
		y += svgBarHeight + svgBarGap
	}

	layout.AxisY = y
	layout.Height = y + svgAxisRoom

	const ticks = 5
	for i := 0; i <= ticks; i++ {
		v := fig.AxisMin + span*float64(i)/ticks
		layout.Ticks = append(layout.Ticks, SVGTick{X: xAt(v), Label: FormatValue(v)})
	}

	return layout
}
