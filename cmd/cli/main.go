package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/route-trends/pkg/runtime/terminal"
	"github.com/de-tools/route-trends/pkg/services/config"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
	if os.Getenv("ROUTE_TRENDS_DEBUG") != "" {
		logger = logger.Level(zerolog.DebugLevel)
	}

	settings, err := config.Load(os.Getenv("ROUTE_TRENDS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The profiles file is optional for the CLI.
	var profiles config.Registry
	if registry, err := config.NewRegistry(config.DefaultProfilesPath()); err == nil {
		profiles = registry
	}

	cli := terminal.NewCLI(terminal.Options{
		Settings: *settings,
		Profiles: profiles,
		Output:   os.Stdout,
	})

	if err := cli.ExecuteContext(logger.WithContext(context.Background())); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
