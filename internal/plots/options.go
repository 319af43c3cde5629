// Package plots draws dataset fields against time: static PNG/SVG/PDF
// figures with gonum/plot and interactive HTML charts with go-echarts.
package plots

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/acisops/acispy/internal/cxotime"
)

// Options controls figure layout. Zero fields take defaults.
type Options struct {
	Title string
	// Width and Height of the whole figure in inches.
	Width, Height float64
	LineWidth     float64
	FontSize      float64
	// TStart and TStop bound the time axis; Chandra date strings or empty
	// for the data range.
	TStart, TStop string
	// TempUnit converts temperature fields ("deg_C", "deg_F" or "K").
	TempUnit string
	// Colors are used in order; empty uses a generated palette.
	Colors []color.Color
}

const (
	defaultWidth     = 10.0
	defaultHeight    = 8.0
	defaultLineWidth = 2.0
	defaultFontSize  = 14.0
)

func (o Options) width() vg.Length {
	if o.Width <= 0 {
		return defaultWidth * vg.Inch
	}
	return vg.Length(o.Width) * vg.Inch
}

func (o Options) height() vg.Length {
	if o.Height <= 0 {
		return defaultHeight * vg.Inch
	}
	return vg.Length(o.Height) * vg.Inch
}

func (o Options) lineWidth() vg.Length {
	if o.LineWidth <= 0 {
		return vg.Points(defaultLineWidth)
	}
	return vg.Points(o.LineWidth)
}

func (o Options) fontSize() vg.Length {
	if o.FontSize <= 0 {
		return vg.Points(defaultFontSize)
	}
	return vg.Points(o.FontSize)
}

// timeRange parses TStart/TStop; unset bounds are NaN.
func (o Options) timeRange() (float64, float64, error) {
	lo, hi := math.NaN(), math.NaN()
	var err error
	if o.TStart != "" {
		if lo, err = cxotime.Parse(o.TStart); err != nil {
			return 0, 0, fmt.Errorf("plots: tstart: %w", err)
		}
	}
	if o.TStop != "" {
		if hi, err = cxotime.Parse(o.TStop); err != nil {
			return 0, 0, fmt.Errorf("plots: tstop: %w", err)
		}
	}
	if !math.IsNaN(lo) && !math.IsNaN(hi) && hi <= lo {
		return 0, 0, fmt.Errorf("plots: tstop %s is not after tstart %s", o.TStop, o.TStart)
	}
	return lo, hi, nil
}

func (o Options) color(i, n int) color.Color {
	if len(o.Colors) > 0 {
		return o.Colors[i%len(o.Colors)]
	}
	return generateColors(n)[i]
}

// FormatFromPath returns the output format implied by a file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf", "eps", "jpg", "jpeg", "tif", "tiff", "html":
		return ext, nil
	case "":
		return "", fmt.Errorf("plots: %s has no extension", path)
	}
	return "", fmt.Errorf("plots: unsupported format %q", ext)
}

// generateColors spreads n hues around the colour wheel.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	out := make([]color.Color, n)
	for i := range out {
		r, g, b := hslToRGB(float64(i)/float64(n), 0.7, 0.45)
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	q := l * (1 + s)
	if l >= 0.5 {
		q = l + s - l*s
	}
	p := 2*l - q
	conv := func(t float64) uint8 {
		t = t - math.Floor(t)
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 0.5:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return uint8(math.Round(v * 255))
	}
	return conv(h + 1.0/3), conv(h), conv(h - 1.0/3)
}
