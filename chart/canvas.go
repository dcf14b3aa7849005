// Package chart provides the per-request drawing surface bound into the
// code sandbox. A Canvas is created for one execution, captured at most
// once, and never shared, so concurrent requests cannot interleave chart
// state.
package chart

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Canvas wraps a single plot that generated code draws onto.
type Canvas struct {
	p     *plot.Plot
	drawn bool
	err   error
}

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{p: plot.New()}
}

// Title sets the chart title.
func (c *Canvas) Title(title string) {
	c.p.Title.Text = title
}

// Labels sets the axis labels.
func (c *Canvas) Labels(x, y string) {
	c.p.X.Label.Text = x
	c.p.Y.Label.Text = y
}

func (c *Canvas) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Bar draws a bar chart with one bar per label.
func (c *Canvas) Bar(labels []string, values []float64) {
	if len(labels) != len(values) {
		c.fail(fmt.Errorf("bar chart needs one label per value, got %d labels and %d values", len(labels), len(values)))
		return
	}
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		c.fail(err)
		return
	}
	c.p.Add(bars)
	c.p.NominalX(labels...)
	c.drawn = true
}

// Line draws a line through the values against their indices.
func (c *Canvas) Line(values []float64) {
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	c.LineXY(xs, values)
}

// LineXY draws a line through (x, y) pairs.
func (c *Canvas) LineXY(xs, ys []float64) {
	pts, err := makeXYs(xs, ys)
	if err != nil {
		c.fail(err)
		return
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		c.fail(err)
		return
	}
	c.p.Add(line)
	c.drawn = true
}

// Scatter draws a scatter plot of (x, y) pairs.
func (c *Canvas) Scatter(xs, ys []float64) {
	pts, err := makeXYs(xs, ys)
	if err != nil {
		c.fail(err)
		return
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		c.fail(err)
		return
	}
	c.p.Add(scatter)
	c.drawn = true
}

// Hist draws a histogram of the values with the given bin count.
func (c *Canvas) Hist(values []float64, bins int) {
	if bins <= 0 {
		bins = 10
	}
	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		c.fail(err)
		return
	}
	c.p.Add(hist)
	c.drawn = true
}

// Drawn reports whether anything has been drawn on the canvas.
func (c *Canvas) Drawn() bool {
	return c.drawn
}

// Capture renders the canvas to a PNG. It returns (nil, nil) when nothing
// was drawn, so callers can distinguish "no chart" from a render failure.
func (c *Canvas) Capture() ([]byte, error) {
	if c.err != nil {
		return nil, fmt.Errorf("chart drawing failed: %v", c.err)
	}
	if !c.drawn {
		return nil, nil
	}
	wt, err := c.p.WriterTo(8*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %v", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %v", err)
	}
	return buf.Bytes(), nil
}

func makeXYs(xs, ys []float64) (plotter.XYs, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("x and y must have the same length, got %d and %d", len(xs), len(ys))
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts, nil
}
