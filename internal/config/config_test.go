package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilescout/tilescout/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	env := []byte("API_HOST=0.0.0.0\nAPI_PORT=8080\nLOG_LEVEL=info\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), env, 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
	assert.Equal(t, 14, cfg.Explorer.Zoom)
	assert.Equal(t, "activity-ingest-workers", cfg.Worker.ConsumerGroup)
	assert.Equal(t, 3, cfg.Worker.MaxRetries)
	assert.Equal(t, "https://www.strava.com", cfg.Strava.BaseURL)
	assert.Equal(t, 50, cfg.Strava.PerPage)
	assert.Equal(t, "./activities", cfg.Import.Dir)
	assert.Equal(t, time.Hour, cfg.Cache.ExplorerTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.HeatmapTTL)
	assert.Equal(t, 30, cfg.Heatmap.MaxPerPixel)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	env := []byte("API_HOST=127.0.0.1\nAPI_PORT=9999\nEXPLORER_ZOOM=17\nWORKER_MAX_RETRIES=5\nIMPORT_DIR=/data/tracks\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), env, 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 17, cfg.Explorer.Zoom)
	assert.Equal(t, 5, cfg.Worker.MaxRetries)
	assert.Equal(t, "/data/tracks", cfg.Import.Dir)
}
