package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/route-trends/pkg/models/domain"
	"gopkg.in/ini.v1"
)

const profilesFileName = ".routetrendscfg"

// Registry reads endpoint profiles from an ini file, one section per
// profile:
//
//	[default]
//	endpoint = http://localhost:8000/api/analyze
//
//	[staging]
//	endpoint = https://trends.staging.example.com/api/analyze
//	timeout  = 20s
type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.EndpointProfile, error)
	GetProfile(ctx context.Context, name string) (*domain.EndpointProfile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func DefaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return profilesFileName
	}
	return filepath.Join(home, profilesFileName)
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]domain.EndpointProfile, error) {
	var profiles []domain.EndpointProfile
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		profile, err := profileFromSection(section)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*domain.EndpointProfile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}
	return profileFromSection(section)
}

func profileFromSection(section *ini.Section) (*domain.EndpointProfile, error) {
	profile := &domain.EndpointProfile{
		Name:     section.Name(),
		Endpoint: section.Key("endpoint").String(),
	}
	if profile.Endpoint == "" {
		return nil, fmt.Errorf("profile %s has no endpoint", section.Name())
	}

	if section.HasKey("timeout") {
		timeout, err := section.Key("timeout").Duration()
		if err != nil {
			return nil, fmt.Errorf("profile %s has an invalid timeout: %w", section.Name(), err)
		}
		profile.Timeout = timeout
	}
	return profile, nil
}
