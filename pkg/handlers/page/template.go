package page

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/de-tools/route-trends/pkg/services/session"
	"github.com/de-tools/route-trends/pkg/views/timeseries"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Airline Demand &amp; Price Trend Analyzer</title>
{{- if .Refresh}}
<meta http-equiv="refresh" content="1">
{{- end}}
<style>
body { font-family: sans-serif; margin: 2rem; }
form label { display: inline-block; margin-right: 1rem; }
.chart { position: relative; width: 100%; }
.chart .hover { position: absolute; }
.chart .hover:hover { background: rgba(136, 132, 216, 0.12); }
.panel { border: 1px solid #ccc; padding: 1rem; margin-top: 1rem; }
.panel.error { border-color: #c33; color: #c33; }
</style>
</head>
<body>
<h1>Airline Demand &amp; Price Trend Analyzer</h1>
<form method="post" action="/">
  <label>Origin <input type="text" name="origin" placeholder="Origin (e.g. SYD)" value="{{.View.Form.Origin}}"></label>
  <label>Destination <input type="text" name="destination" placeholder="Destination (e.g. MEL)" value="{{.View.Form.Destination}}"></label>
  <label>Start date <input type="date" name="start_date" value="{{.View.Form.StartDate}}"></label>
  <label>End date <input type="date" name="end_date" value="{{.View.Form.EndDate}}"></label>
  <button type="submit" name="action" value="analyze"{{if .View.Trigger.Disabled}} disabled{{end}}>{{.View.Trigger.Label}}</button>
</form>
{{- with .Chart}}
<h2>{{.Title}}</h2>
<div class="chart">
{{.SVG}}
{{- range .Hover}}
<div class="hover" style="left: {{.Left}}%; width: {{.Width}}%; top: {{.Top}}%; height: {{.Height}}%" title="{{.Text}}"></div>
{{- end}}
</div>
{{- end}}
{{- with .View.Insights}}
<div class="panel{{if .IsError}} error{{end}}">
<h2>{{.Title}}</h2>
{{- if .IsError}}
<p>{{.Error}}</p>
{{- else}}
{{- range .Lines}}
<p><strong>{{.Label}}:</strong> {{.Value}}</p>
{{- end}}
{{- end}}
</div>
{{- end}}
</body>
</html>
`))

type hoverColumn struct {
	Left   string
	Width  string
	Top    string
	Height string
	Text   string
}

type chartData struct {
	Title string
	SVG   template.HTML
	Hover []hoverColumn
}

type pageData struct {
	View    session.View
	Refresh bool
	Chart   *chartData
}

func renderPage(w io.Writer, v session.View) error {
	data := pageData{
		View:    v,
		Refresh: v.Phase == session.PhaseSubmitting,
	}

	if v.Chart != nil {
		var svg bytes.Buffer
		plot, err := v.Chart.RenderLayout(&svg, timeseries.FormatSVG)
		if err != nil {
			return err
		}
		data.Chart = &chartData{
			Title: v.Chart.Title,
			// The renderer escapes every label it draws.
			SVG:   template.HTML(svg.String()),
			Hover: hoverColumns(v.Chart, plot),
		}
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute page template: %w", err)
	}
	return nil
}

// hoverColumns lays one tooltip strip over each x position, inside the plot
// area. Each point owns one unit of the x range.
func hoverColumns(c *timeseries.Chart, plot timeseries.PlotArea) []hoverColumn {
	span := c.XAxis.Max - c.XAxis.Min
	plotWidth := float64(plot.Right - plot.Left)
	if span <= 0 || plotWidth <= 0 || c.Width <= 0 || c.Height <= 0 {
		return nil
	}

	width, height := float64(c.Width), float64(c.Height)
	top := percent(float64(plot.Top) / height)
	tall := percent(float64(plot.Bottom-plot.Top) / height)

	columns := make([]hoverColumn, 0, len(c.Tooltips))
	for _, tip := range c.Tooltips {
		lines := []string{tip.Date}
		for _, v := range tip.Values {
			lines = append(lines, fmt.Sprintf("%s: %s", v.Series, strconv.FormatFloat(v.Value, 'f', -1, 64)))
		}
		left := float64(plot.Left) + (tip.X-0.5-c.XAxis.Min)/span*plotWidth
		columns = append(columns, hoverColumn{
			Left:   percent(left / width),
			Width:  percent(plotWidth / span / width),
			Top:    top,
			Height: tall,
			Text:   strings.Join(lines, "\n"),
		})
	}
	return columns
}

func percent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 2, 64)
}
