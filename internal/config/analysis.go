// Package config loads the JSON settings shared by the acisplot commands.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/acisops/acispy/internal/align"
	"github.com/acisops/acispy/internal/msids"
	"github.com/acisops/acispy/internal/units"
)

// DefaultConfigPath is the repository copy of the default settings.
const DefaultConfigPath = "config/acispy.defaults.json"

const maxFileSize = 1 * 1024 * 1024

// PlotFormats are the accepted plot_format values.
var PlotFormats = []string{"png", "svg", "pdf", "html"}

// AnalysisConfig holds optional settings. Unset fields fall back to the
// defaults returned by the Get* methods, so partial files are fine.
type AnalysisConfig struct {
	TDBPath  *string `json:"tdb_path,omitempty"`
	CacheDir *string `json:"cache_dir,omitempty"`
	// OutputDir is the root under which plot runs are created.
	OutputDir           *string  `json:"output_dir,omitempty"`
	SmoothingWindow     *int     `json:"smoothing_window,omitempty"`
	PlotWidthIn         *float64 `json:"plot_width_in,omitempty"`
	PlotHeightIn        *float64 `json:"plot_height_in,omitempty"`
	PlotFormat          *string  `json:"plot_format,omitempty"`
	LineWidth           *float64 `json:"line_width,omitempty"`
	FontSize            *float64 `json:"font_size,omitempty"`
	TempUnit            *string  `json:"temp_unit,omitempty"`
	LoadReviewRoot      *string  `json:"load_review_root,omitempty"`
	TracelogEpochOffset *float64 `json:"tracelog_epoch_offset,omitempty"`
}

// Empty returns a config with every field unset.
func Empty() *AnalysisConfig {
	return &AnalysisConfig{}
}

// Load reads an AnalysisConfig from a .json file of at most 1 MB and
// validates it.
func Load(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the set fields.
func (c *AnalysisConfig) Validate() error {
	if c.SmoothingWindow != nil && *c.SmoothingWindow < 1 {
		return fmt.Errorf("smoothing_window must be at least 1, got %d", *c.SmoothingWindow)
	}
	for name, v := range map[string]*float64{
		"plot_width_in":  c.PlotWidthIn,
		"plot_height_in": c.PlotHeightIn,
		"line_width":     c.LineWidth,
		"font_size":      c.FontSize,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, *v)
		}
	}
	if c.PlotFormat != nil && !validFormat(*c.PlotFormat) {
		return fmt.Errorf("plot_format must be one of %v, got %q", PlotFormats, *c.PlotFormat)
	}
	if c.TempUnit != nil && !units.IsTemperature(*c.TempUnit) {
		return fmt.Errorf("temp_unit must be one of %v, got %q", units.TemperatureUnits, *c.TempUnit)
	}
	return nil
}

func validFormat(f string) bool {
	for _, p := range PlotFormats {
		if f == p {
			return true
		}
	}
	return false
}

func stringOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// GetTDBPath returns the telemetry database path or "tdb.sqlite".
func (c *AnalysisConfig) GetTDBPath() string { return stringOr(c.TDBPath, "tdb.sqlite") }

// GetCacheDir returns the series cache directory; empty disables it.
func (c *AnalysisConfig) GetCacheDir() string { return stringOr(c.CacheDir, "") }

// GetOutputDir returns the plot output root or "plots".
func (c *AnalysisConfig) GetOutputDir() string { return stringOr(c.OutputDir, "plots") }

// GetSmoothingWindow returns the moving average window.
func (c *AnalysisConfig) GetSmoothingWindow() int {
	if c.SmoothingWindow == nil {
		return align.DefaultWindow
	}
	return *c.SmoothingWindow
}

// GetPlotWidthIn returns the figure width in inches.
func (c *AnalysisConfig) GetPlotWidthIn() float64 { return floatOr(c.PlotWidthIn, 10) }

// GetPlotHeightIn returns the figure height in inches.
func (c *AnalysisConfig) GetPlotHeightIn() float64 { return floatOr(c.PlotHeightIn, 8) }

// GetPlotFormat returns the default output format.
func (c *AnalysisConfig) GetPlotFormat() string { return stringOr(c.PlotFormat, "png") }

// GetLineWidth returns the line width in points.
func (c *AnalysisConfig) GetLineWidth() float64 { return floatOr(c.LineWidth, 2) }

// GetFontSize returns the font size in points.
func (c *AnalysisConfig) GetFontSize() float64 { return floatOr(c.FontSize, 14) }

// GetTempUnit returns the temperature unit plots are drawn in.
func (c *AnalysisConfig) GetTempUnit() string { return stringOr(c.TempUnit, units.DegC) }

// GetLoadReviewRoot returns the load review tree root.
func (c *AnalysisConfig) GetLoadReviewRoot() string {
	return stringOr(c.LoadReviewRoot, "/data/acis/LoadReviews")
}

// GetTracelogEpochOffset returns the tracelog TIME offset in seconds.
func (c *AnalysisConfig) GetTracelogEpochOffset() float64 {
	return floatOr(c.TracelogEpochOffset, msids.TracelogEpochOffset)
}
