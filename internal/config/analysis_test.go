package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmptyDefaults(t *testing.T) {
	cfg := Empty()
	assert.Equal(t, "tdb.sqlite", cfg.GetTDBPath())
	assert.Equal(t, "", cfg.GetCacheDir())
	assert.Equal(t, "plots", cfg.GetOutputDir())
	assert.Equal(t, 5, cfg.GetSmoothingWindow())
	assert.Equal(t, 10.0, cfg.GetPlotWidthIn())
	assert.Equal(t, 8.0, cfg.GetPlotHeightIn())
	assert.Equal(t, "png", cfg.GetPlotFormat())
	assert.Equal(t, 2.0, cfg.GetLineWidth())
	assert.Equal(t, 14.0, cfg.GetFontSize())
	assert.Equal(t, "deg_C", cfg.GetTempUnit())
	assert.Equal(t, 410227200.0, cfg.GetTracelogEpochOffset())
	assert.NotEmpty(t, cfg.GetLoadReviewRoot())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "acispy.json", `{
  "tdb_path": "/tmp/tdb.db",
  "smoothing_window": 11,
  "plot_format": "svg",
  "temp_unit": "deg_F"
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/tdb.db", cfg.GetTDBPath())
	assert.Equal(t, 11, cfg.GetSmoothingWindow())
	assert.Equal(t, "svg", cfg.GetPlotFormat())
	assert.Equal(t, "deg_F", cfg.GetTempUnit())
	// Unset fields keep defaults.
	assert.Equal(t, 14.0, cfg.GetFontSize())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want string
	}{
		{"extension", "cfg.yaml", `{}`, ".json extension"},
		{"bad json", "cfg.json", `{`, "parse config JSON"},
		{"window", "cfg.json", `{"smoothing_window": 0}`, "smoothing_window"},
		{"width", "cfg.json", `{"plot_width_in": -1}`, "plot_width_in"},
		{"format", "cfg.json", `{"plot_format": "gif"}`, "plot_format"},
		{"temp unit", "cfg.json", `{"temp_unit": "C"}`, "temp_unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "stat")

	big := writeConfig(t, "big.json", `{"tdb_path": "`+strings.Repeat("x", maxFileSize)+`"}`)
	_, err = Load(big)
	assert.ErrorContains(t, err, "too large")
}

func TestDefaultsFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)
	assert.Equal(t, "png", cfg.GetPlotFormat())
}
