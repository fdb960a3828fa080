package export

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/de-tools/route-trends/pkg/services/session"
)

type TableConfig struct {
	DateWidth     int
	BookingsWidth int
	PriceWidth    int
	LabelWidth    int
	ValueWidth    int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		DateWidth:     12,
		BookingsWidth: 10,
		PriceWidth:    12,
		LabelWidth:    14,
		ValueWidth:    60,
	}
}

// Reporter prints a session view as ASCII tables.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(v session.View) error {
	funcMap := template.FuncMap{
		"dataRow": func(date string, bookings, price any) string {
			return fmt.Sprintf("| %-*s | %*v | %*v |",
				c.config.DateWidth, date,
				c.config.BookingsWidth, bookings,
				c.config.PriceWidth, price)
		},
		"dataSeparator": func() string {
			return fmt.Sprintf("+%s+%s+%s+",
				strings.Repeat("-", c.config.DateWidth+2),
				strings.Repeat("-", c.config.BookingsWidth+2),
				strings.Repeat("-", c.config.PriceWidth+2))
		},
		"panelRow": func(label, value string) string {
			return fmt.Sprintf("| %-*s | %-*s |",
				c.config.LabelWidth, label,
				c.config.ValueWidth, value)
		},
		"panelSeparator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.LabelWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
		"number": func(f float64) string {
			return strconv.FormatFloat(f, 'f', -1, 64)
		},
		"money": func(f float64) string {
			return strconv.FormatFloat(f, 'f', 2, 64)
		},
	}

	tmpl := `{{with .Chart}}
=== {{.Title}} ===
{{dataSeparator}}
{{dataRow "Date" "Bookings" "Price ($)"}}
{{dataSeparator}}
{{range $.Dataset}}{{dataRow .Date (number .Bookings) (money .Price)}}
{{end}}{{dataSeparator}}
{{end}}{{with .Insights}}
=== {{.Title}} ===
{{if .IsError}}{{.Error}}
{{else}}{{panelSeparator}}
{{range .Lines}}{{panelRow .Label .Value}}
{{end}}{{panelSeparator}}
{{end}}{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, v)
}
