package insights

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/de-tools/route-trends/pkg/models/domain"
)

const (
	TitleSummary = "AI Insights"
	TitleError   = "Error"
)

type Line struct {
	Label string
	Value string
}

// Panel is the rendered form of one Insights value. A summary panel has
// Lines and no Error; an error panel has only Error.
type Panel struct {
	Title string
	Lines []Line
	Error string
}

func (p *Panel) IsError() bool {
	return p.Title == TitleError
}

// Build returns nil for absent insights.
func Build(in domain.Insights) *Panel {
	switch v := in.(type) {
	case nil:
		return nil
	case domain.Summary:
		return &Panel{
			Title: TitleSummary,
			Lines: []Line{
				{Label: "Demand Trend", Value: v.DemandTrend},
				{Label: "Price Trend", Value: v.PriceTrend},
				{Label: "Popular Days", Value: strings.Join(v.PopularDays, ", ")},
				{Label: "Observations", Value: v.Observations},
			},
		}
	case domain.Failure:
		return &Panel{Title: TitleError, Error: v.Message}
	default:
		panic(fmt.Sprintf("insights: unhandled variant %T", in))
	}
}

var panelTemplate = template.Must(template.New("panel").Parse(
	`=== {{.Title}} ===
{{if .IsError}}{{.Error}}
{{else}}{{range .Lines}}{{.Label}}: {{.Value}}
{{end}}{{end}}`))

func (p *Panel) Render(w io.Writer) error {
	if err := panelTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("failed to render insights panel: %w", err)
	}
	return nil
}
