package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/de-tools/route-trends/pkg/server"
	"github.com/de-tools/route-trends/pkg/services/analysis"
	"github.com/de-tools/route-trends/pkg/services/config"
	"github.com/de-tools/route-trends/pkg/services/session"
	"github.com/de-tools/route-trends/pkg/views/timeseries"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	settingsPath string
	profilesPath string
	profileName  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Route Trends",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&settingsPath, "config", "c", "",
		"Path to a settings file (yaml, toml or json)")
	rootCmd.Flags().StringVar(&profilesPath, "profiles", config.DefaultProfilesPath(),
		"Path to the endpoint profiles file (default is $HOME/.routetrendscfg)")
	rootCmd.Flags().StringVar(&profileName, "profile", "",
		"Endpoint profile to use for the analysis service")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.Load(settingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if profileName != "" {
		registry, err := config.NewRegistry(profilesPath)
		if err != nil {
			return fmt.Errorf("failed to create profile registry: %w", err)
		}

		profiles, _ := registry.GetProfiles(ctx)
		logger.Info().Msgf("Configuration found at `%s` successfully loaded.", profilesPath)
		for _, profile := range profiles {
			logger.Info().Msgf("Name: `%s`, Endpoint: `%s`", profile.Name, profile.Endpoint)
		}

		profile, err := registry.GetProfile(ctx, profileName)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		settings.ApplyProfile(profile)
	}

	client, err := analysis.NewHTTPClient(settings.AnalysisSettings())
	if err != nil {
		return fmt.Errorf("failed to create analysis client: %w", err)
	}
	logger.Info().Str("endpoint", client.Endpoint()).Msg("analysis service configured")

	sessions := session.NewRegistry(client, session.Options{
		Chart: timeseries.Options{
			Width:  settings.Chart.Width,
			Height: settings.Chart.Height,
		},
		Logger: logger,
	})

	webAPI := server.NewWebAPI(server.Config{
		Addr:               settings.Server.Addr(),
		ShutdownTimeout:    settings.Server.ShutdownTimeout,
		SessionIdleTimeout: settings.Server.SessionIdleTimeout,
		Dependencies: server.Dependencies{
			Sessions: sessions,
			Logger:   logger,
		},
	})

	return webAPI.Start()
}
