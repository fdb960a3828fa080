package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/route-trends/pkg/runtime/terminal/commands"
	"github.com/de-tools/route-trends/pkg/runtime/terminal/export"
	"github.com/de-tools/route-trends/pkg/services/analysis"
	"github.com/de-tools/route-trends/pkg/services/config"
	"github.com/de-tools/route-trends/pkg/services/orchestrator"
	storeexport "github.com/de-tools/route-trends/pkg/store/export"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	deps    commands.Dependencies
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Settings config.Settings
	Profiles config.Registry
	// NewClient defaults to the HTTP analysis client.
	NewClient func(analysis.Settings) (orchestrator.Client, error)
	// NewBucket defaults to an S3 sink using the default AWS credential chain.
	NewBucket func(ctx context.Context, bucket, region string) (storeexport.Sink, error)
	Output    io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NewClient == nil {
		opts.NewClient = func(s analysis.Settings) (orchestrator.Client, error) {
			return analysis.NewHTTPClient(s)
		}
	}
	if opts.NewBucket == nil {
		opts.NewBucket = func(ctx context.Context, bucket, region string) (storeexport.Sink, error) {
			return storeexport.NewS3SinkFromEnv(ctx, bucket, region)
		}
	}

	cli := &CLI{
		deps: commands.Dependencies{
			Settings:  opts.Settings,
			Profiles:  opts.Profiles,
			NewClient: opts.NewClient,
			NewBucket: opts.NewBucket,
			Reporters: map[string]commands.Reporter{
				"text":  NewReporter(opts.Output),
				"table": export.NewReporter(opts.Output),
			},
		},
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "route-trends",
		Short:         "Booking and price trends for a travel route",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.deps))
	cmd.AddCommand(commands.NewProfilesCmd(cli.deps))

	return cmd
}
