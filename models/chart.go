package models

import "time"

// ChartKind selects how a ChartSpec is drawn.
type ChartKind int

const (
	ChartLine ChartKind = iota
	ChartHeatmap
)

func (k ChartKind) String() string {
	switch k {
	case ChartLine:
		return "line"
	case ChartHeatmap:
		return "heatmap"
	default:
		return "unknown"
	}
}

// Point is one x/y sample of a time series. A missing Y leaves a gap.
type Point struct {
	X time.Time
	Y Measure
}

// Series is a named, coloured sequence of points.
type Series struct {
	Name   string
	Color  string
	Marker string
	Points []Point
}

// Heatmap is an annotated square grid. NaN cells are left blank.
type Heatmap struct {
	Labels []string
	Values [][]float64
	Min    float64
	Max    float64
	// Palette runs from the Min colour to the Max colour.
	Palette []string
}

// ChartSpec describes a chart independently of the plotting backend.
type ChartSpec struct {
	ID     string
	Kind   ChartKind
	Title  string
	XLabel string
	YLabel string

	Series  []Series
	Heatmap *Heatmap

	Legend       bool
	Grid         bool
	XTickRotate  float64
	WidthPixels  int
	HeightPixels int
}
