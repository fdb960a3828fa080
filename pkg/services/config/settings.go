package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/de-tools/route-trends/pkg/services/analysis"
	"github.com/spf13/viper"
)

const envPrefix = "ROUTE_TRENDS"

type Settings struct {
	Endpoint string         `mapstructure:"endpoint"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	Server   ServerSettings `mapstructure:"server"`
	Chart    ChartSettings  `mapstructure:"chart"`
	Export   ExportSettings `mapstructure:"export"`
}

type ServerSettings struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout"`
}

func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type ChartSettings struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type ExportSettings struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("endpoint", analysis.DefaultEndpoint)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.session_idle_timeout", 30*time.Minute)
	v.SetDefault("chart.width", 960)
	v.SetDefault("chart.height", 350)
	v.SetDefault("export.bucket", "")
	v.SetDefault("export.prefix", "charts/")
	v.SetDefault("export.region", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings from path, if given, with ROUTE_TRENDS_* environment
// variables taking precedence (ROUTE_TRENDS_SERVER_PORT for server.port).
func Load(path string) (*Settings, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	var errs []error
	if s.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", s.Server.Port))
	}
	if s.Server.SessionIdleTimeout < 0 {
		errs = append(errs, errors.New("server.session_idle_timeout must not be negative"))
	}
	if s.Chart.Width < 0 || s.Chart.Height < 0 {
		errs = append(errs, errors.New("chart dimensions must not be negative"))
	}
	return errors.Join(errs...)
}

// ApplyProfile lets a named endpoint profile override the endpoint and,
// when set, the timeout.
func (s *Settings) ApplyProfile(p *domain.EndpointProfile) {
	if p == nil {
		return
	}
	s.Endpoint = p.Endpoint
	if p.Timeout > 0 {
		s.Timeout = p.Timeout
	}
}

func (s *Settings) AnalysisSettings() analysis.Settings {
	return analysis.Settings{
		Endpoint: s.Endpoint,
		Timeout:  s.Timeout,
	}
}
