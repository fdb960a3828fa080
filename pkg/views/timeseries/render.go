package timeseries

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"

	samplesPerSegment = 12
)

var svgSize = regexp.MustCompile(`(<svg[^>]*?) width="(\d+)" height="(\d+)"`)

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// PlotArea is the pixel box, within Width x Height, that the series were
// drawn into.
type PlotArea struct {
	Left, Top, Right, Bottom int
}

// Render draws the chart. The same chart always yields the same bytes.
func (c *Chart) Render(w io.Writer, format Format) error {
	_, err := c.RenderLayout(w, format)
	return err
}

// RenderLayout draws the chart and reports where go-chart placed the plot
// area once the axes were laid out.
func (c *Chart) RenderLayout(w io.Writer, format Format) (PlotArea, error) {
	var provider chart.RendererProvider
	switch format {
	case FormatSVG:
		provider = chart.SVG
	case FormatPNG:
		provider = chart.PNG
	default:
		return PlotArea{}, fmt.Errorf("unsupported chart format %q", format)
	}

	var plot chart.Box
	graph := c.graph(format, &plot)

	var buf bytes.Buffer
	if err := graph.Render(provider, &buf); err != nil {
		return PlotArea{}, fmt.Errorf("failed to render chart: %w", err)
	}

	out := buf.Bytes()
	if format == FormatSVG && c.Responsive {
		out = responsive(out)
	}
	if _, err := w.Write(out); err != nil {
		return PlotArea{}, err
	}
	return PlotArea{Left: plot.Left, Top: plot.Top, Right: plot.Right, Bottom: plot.Bottom}, nil
}

// graph translates the chart into go-chart terms. go-chart draws its
// primary y-axis on the right, so the left axis is the secondary one.
// plot receives the axis-adjusted canvas box during rendering.
func (c *Chart) graph(format Format, plot *chart.Box) chart.Chart {
	// go-chart writes SVG text nodes verbatim.
	text := func(s string) string { return s }
	if format == FormatSVG {
		text = html.EscapeString
	}

	grid := chart.Style{
		StrokeColor:     drawing.ColorFromHex("cccccc"),
		StrokeWidth:     1,
		StrokeDashArray: c.Grid.DashArray,
	}

	// go-chart takes the x range from the tick list, so the range ends get
	// unlabelled ticks; a single point would otherwise leave no span.
	ticks := make([]chart.Tick, 0, len(c.XAxis.Ticks)+2)
	ticks = append(ticks, chart.Tick{Value: c.XAxis.Min})
	for _, t := range c.XAxis.Ticks {
		ticks = append(ticks, chart.Tick{Value: t.Value, Label: text(t.Label)})
	}
	ticks = append(ticks, chart.Tick{Value: c.XAxis.Max})

	series := make([]chart.Series, 0, len(c.Series))
	for _, s := range c.Series {
		xs := make([]float64, 0, len(s.Points))
		ys := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
		if s.Interpolation == interpolationMonotone {
			xs, ys = monotoneSample(xs, ys, samplesPerSegment)
		}

		axis := chart.YAxisPrimary
		if s.Axis == AxisLeft {
			axis = chart.YAxisSecondary
		}

		series = append(series, chart.ContinuousSeries{
			Name:    text(s.Name),
			YAxis:   axis,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#")),
				StrokeWidth: 2,
			},
		})
	}

	graph := chart.Chart{
		Title:  text(c.Title),
		Width:  c.Width,
		Height: c.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 24, Right: 24, Bottom: 24},
		},
		XAxis: chart.XAxis{
			Ticks:          ticks,
			Range:          &chart.ContinuousRange{Min: c.XAxis.Min, Max: c.XAxis.Max},
			GridMajorStyle: grid,
		},
		YAxis: chart.YAxis{
			Name:           text(c.Right.Label),
			Range:          &chart.ContinuousRange{Min: c.Right.Min, Max: c.Right.Max},
			GridMajorStyle: grid,
		},
		YAxisSecondary: chart.YAxis{
			Name:  text(c.Left.Label),
			Range: &chart.ContinuousRange{Min: c.Left.Min, Max: c.Left.Max},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
		func(_ chart.Renderer, box chart.Box, _ chart.Style) { *plot = box },
	}
	return graph
}

// responsive swaps the fixed SVG size for a viewBox so the chart fills
// its container.
func responsive(svg []byte) []byte {
	return svgSize.ReplaceAll(svg, []byte(`$1 viewBox="0 0 $2 $3" width="100%" preserveAspectRatio="xMidYMid meet"`))
}
