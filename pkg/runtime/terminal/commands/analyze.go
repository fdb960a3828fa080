package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/de-tools/route-trends/pkg/services/analysis"
	"github.com/de-tools/route-trends/pkg/services/config"
	"github.com/de-tools/route-trends/pkg/services/orchestrator"
	"github.com/de-tools/route-trends/pkg/services/session"
	"github.com/de-tools/route-trends/pkg/store/export"
	"github.com/de-tools/route-trends/pkg/views/timeseries"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var ErrAnalysisFailed = errors.New("analysis failed")

type Reporter interface {
	Handle(v session.View) error
}

// Dependencies are the collaborators the analyze command builds its session
// from. Profiles may be nil when no profile file exists.
type Dependencies struct {
	Settings  config.Settings
	Profiles  config.Registry
	NewClient func(analysis.Settings) (orchestrator.Client, error)
	NewBucket func(ctx context.Context, bucket, region string) (export.Sink, error)
	Reporters map[string]Reporter
}

type AnalyzeCmd struct {
	deps Dependencies

	query        domain.RouteQuery
	profile      string
	endpoint     string
	output       string
	chartOut     string
	exportBucket string
}

func NewAnalyzeCmd(deps Dependencies) *cobra.Command {
	ac := &AnalyzeCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze booking and price trends for a route",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.query.Origin, "origin", "", "Origin airport code")
	cmd.Flags().StringVar(&ac.query.Destination, "destination", "", "Destination airport code")
	cmd.Flags().StringVar(&ac.query.StartDate, "start-date", "", "First date of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ac.query.EndDate, "end-date", "", "Last date of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ac.profile, "profile", "", "Endpoint profile from the profiles file")
	cmd.Flags().StringVar(&ac.endpoint, "endpoint", "", "Analysis service URL, overrides settings and profile")
	cmd.Flags().StringVarP(&ac.output, "output", "o", "text", "Report format (text or table)")
	cmd.Flags().StringVar(&ac.chartOut, "chart-out", "", "Write the chart to this .svg or .png file")
	cmd.Flags().StringVar(&ac.exportBucket, "export-bucket", "", "Upload the chart to this S3 bucket")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := zerolog.Ctx(ctx)

	reporter, ok := ac.deps.Reporters[ac.output]
	if !ok {
		return fmt.Errorf("unsupported output %q", ac.output)
	}

	settings, err := ac.settings(ctx)
	if err != nil {
		return err
	}

	client, err := ac.deps.NewClient(settings.AnalysisSettings())
	if err != nil {
		return fmt.Errorf("failed to create analysis client: %w", err)
	}

	s := session.New("cli", client, session.Options{
		Chart: timeseries.Options{
			Width:  settings.Chart.Width,
			Height: settings.Chart.Height,
			Fixed:  true,
		},
		Logger: *logger,
	})
	defer s.Close()

	for _, field := range domain.Fields {
		value, _ := ac.query.Get(field)
		if err := s.SetField(string(field), value); err != nil {
			return fmt.Errorf("failed to set %s: %w", field, err)
		}
	}

	logger.Debug().Str("endpoint", settings.Endpoint).Msg("submitting analysis")
	s.Submit(ctx)
	view := s.View()

	if err := reporter.Handle(view); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	if err := ac.exportChart(ctx, cmd, view, settings.Export); err != nil {
		return err
	}

	if view.Phase == session.PhaseDisplayedWithFailure {
		return ErrAnalysisFailed
	}
	return nil
}

func (ac *AnalyzeCmd) settings(ctx context.Context) (config.Settings, error) {
	settings := ac.deps.Settings

	if ac.profile != "" {
		if ac.deps.Profiles == nil {
			return settings, fmt.Errorf("profile %s requested but no profiles file was loaded", ac.profile)
		}
		profile, err := ac.deps.Profiles.GetProfile(ctx, ac.profile)
		if err != nil {
			return settings, fmt.Errorf("failed to load profile: %w", err)
		}
		settings.ApplyProfile(profile)
	}
	if ac.endpoint != "" {
		settings.Endpoint = ac.endpoint
	}
	if ac.exportBucket != "" {
		settings.Export.Bucket = ac.exportBucket
	}
	return settings, nil
}

func (ac *AnalyzeCmd) exportChart(ctx context.Context, cmd *cobra.Command, view session.View, exp config.ExportSettings) error {
	if ac.chartOut == "" && exp.Bucket == "" {
		return nil
	}
	logger := zerolog.Ctx(ctx)

	if view.Chart == nil {
		logger.Warn().Msg("no data points, chart not written")
		return nil
	}

	format := timeseries.FormatSVG
	if ac.chartOut != "" {
		f, err := timeseries.ParseFormat(strings.TrimPrefix(filepath.Ext(ac.chartOut), "."))
		if err != nil {
			return err
		}
		format = f
	}

	var buf bytes.Buffer
	if err := view.Chart.Render(&buf, format); err != nil {
		return err
	}

	if ac.chartOut != "" {
		path, err := export.NewFileSink("").Put(ctx, ac.chartOut, format.ContentType(), bytes.NewReader(buf.Bytes()))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", path)
	}

	if exp.Bucket != "" {
		sink, err := ac.deps.NewBucket(ctx, exp.Bucket, exp.Region)
		if err != nil {
			return err
		}
		key := export.ObjectKey(exp.Prefix, view.Form.Origin, view.Form.Destination,
			view.Form.StartDate, view.Form.EndDate, string(format))
		location, err := sink.Put(ctx, key, format.ContentType(), bytes.NewReader(buf.Bytes()))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Chart exported to %s\n", location)
	}
	return nil
}
