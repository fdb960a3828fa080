package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".routetrendscfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRegistry_GetProfiles(t *testing.T) {
	path := writeProfiles(t, `[default]
endpoint = http://localhost:8000/api/analyze

[staging]
endpoint = https://trends.staging.example.com/api/analyze
timeout  = 20s

[empty]
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	profiles, err := registry.GetProfiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.EndpointProfile{
		{Name: "default", Endpoint: "http://localhost:8000/api/analyze"},
		{Name: "staging", Endpoint: "https://trends.staging.example.com/api/analyze", Timeout: 20 * time.Second},
	}, profiles)
}

func TestRegistry_GetProfile(t *testing.T) {
	path := writeProfiles(t, `[default]
endpoint = http://localhost:8000/api/analyze

[broken]
endpoint = http://x
timeout = soon

[noendpoint]
timeout = 1s
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)
	ctx := context.Background()

	profile, err := registry.GetProfile(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "default:http://localhost:8000/api/analyze", profile.String())

	_, err = registry.GetProfile(ctx, "missing")
	assert.EqualError(t, err, "profile missing not found")

	_, err = registry.GetProfile(ctx, "broken")
	assert.ErrorContains(t, err, "invalid timeout")

	_, err = registry.GetProfile(ctx, "noendpoint")
	assert.EqualError(t, err, "profile noendpoint has no endpoint")
}

func TestNewRegistry_MissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
