package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
predictions:
  base_url: "https://predict.example.com/"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://predict.example.com", cfg.Predictions.BaseURL)
	assert.Equal(t, defaultAppHTTPAddr, cfg.App.HTTPAddr)
	assert.Equal(t, defaultPredictionsTimeout, cfg.Predictions.TimeoutSeconds)
	assert.Equal(t, defaultChartWidth, cfg.Chart.Width)
	assert.Equal(t, defaultPointSize, cfg.Chart.PointSize)
	assert.False(t, cfg.Chart.LenientCoercion)
	assert.True(t, cfg.Catalog.Watch)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, defaultStorePath, cfg.Store.Path)
}

func TestLoadKeepsExplicitFalse(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
store:
  enabled: false
catalog:
  watch: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Store.Enabled)
	assert.False(t, cfg.Catalog.Watch)
}

func TestLoadIncludesMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
app:
  http_addr: ":7000"
chart:
  point_size: 4
`)
	path := writeFile(t, dir, "config.yaml", `
include:
  - base.yaml
chart:
  point_size: 12
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.App.HTTPAddr)
	assert.Equal(t, 12, cfg.Chart.PointSize)
}

func TestLoadDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include: [b.yaml]\n")
	writeFile(t, dir, "b.yaml", "include: [a.yaml]\n")
	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
app:
  http_addr: ":7000"
`)
	t.Setenv("BRACKETBUDDY_HTTP_ADDR", ":8123")
	t.Setenv("BRACKETBUDDY_LENIENT_COERCION", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8123", cfg.App.HTTPAddr)
	assert.True(t, cfg.Chart.LenientCoercion)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"bad scheme", "predictions:\n  base_url: ftp://x\n", "must be http(s)"},
		{"tiny chart", "chart:\n  width: 50\n", "chart.width"},
		{"huge points", "chart:\n  point_size: 100\n", "chart.point_size"},
		{"short ttl", "session:\n  idle_ttl_seconds: 10\n", "idle_ttl_seconds"},
		{"janitor beyond ttl", "session:\n  idle_ttl_seconds: 120\n  janitor_interval_seconds: 600\n", "janitor_interval_seconds"},
		{"derive without color", "chart:\n  derive_missing_colors: true\n  tie_color: \" \"\n", "chart.tie_color"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tc.body)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadSingleStringInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "app:\n  log_level: debug\n")
	path := writeFile(t, dir, "config.yaml", "include: base.yaml\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestLoadRejectsNonStringInclude(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "include:\n  nested: base.yaml\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include must be")
}

func TestCollectSettingsKeys(t *testing.T) {
	keys := make(keySet)
	collectSettingsKeys(map[string]any{
		"store":   map[string]any{"enabled": false},
		"Catalog": map[string]any{"watch": true, "path": ""},
		"include": []any{"a.yaml"},
	}, keys)
	assert.True(t, keys.isSet("store.enabled"))
	assert.True(t, keys.isSet("catalog.watch"))
	assert.True(t, keys.isSet("catalog.path"))
	assert.True(t, keys.isSet("include"))
	assert.False(t, keys.isSet("store.path"))
}
