package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/route-trends/pkg/services/session"
)

// Reporter prints a session view as plain text.
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(v session.View) error {
	tmpl := `Route: {{or .Form.Origin "-"}} -> {{or .Form.Destination "-"}} ({{or .Form.StartDate "-"}} to {{or .Form.EndDate "-"}})
{{with .Chart}}
{{.Title}}
{{range $.Dataset}}{{.Date}}  bookings={{.Bookings}}  price={{printf "%.2f" .Price}}
{{end}}{{end}}`

	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	if err := t.Execute(c.writer, v); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if v.Insights == nil {
		return nil
	}
	if _, err := fmt.Fprintln(c.writer); err != nil {
		return err
	}
	return v.Insights.Render(c.writer)
}
