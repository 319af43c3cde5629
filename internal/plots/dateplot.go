package plots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/acisops/acispy/internal/dataset"
)

// ErrNoFields is returned when a plot is requested without fields.
var ErrNoFields = errors.New("plots: no fields")

// Figure is a stack of date panels sharing the time axis.
type Figure struct {
	panels []*plot.Plot
	opts   Options
}

// DatePlot draws fields against time on one panel. The fields must share a
// unit. A non-nil field2 is drawn on a second panel below the first; it
// may have any unit.
func DatePlot(ctx context.Context, ds *dataset.Dataset, fields []any, field2 any, opts Options) (*Figure, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	lo, hi, err := opts.timeRange()
	if err != nil {
		return nil, err
	}
	ncolors := len(fields)
	if field2 != nil {
		ncolors++
	}
	traces := make([]trace, 0, len(fields))
	for _, f := range fields {
		tr, err := loadTrace(ctx, ds, f, opts)
		if err != nil {
			return nil, err
		}
		traces = append(traces, tr)
	}
	top, err := newPanel(traces, 0, ncolors, opts, lo, hi)
	if err != nil {
		return nil, err
	}
	top.Title.Text = opts.Title
	fig := &Figure{panels: []*plot.Plot{top}, opts: opts}

	if field2 != nil {
		tr, err := loadTrace(ctx, ds, field2, opts)
		if err != nil {
			return nil, err
		}
		bottom, err := newPanel([]trace{tr}, len(fields), ncolors, opts, lo, hi)
		if err != nil {
			return nil, err
		}
		fig.panels = append(fig.panels, bottom)
		fig.shareTimeAxis()
	}
	return fig, nil
}

// MultiDatePlot stacks one panel per entry of fields. Each entry is a
// field spec or a []any of specs drawn together.
func MultiDatePlot(ctx context.Context, ds *dataset.Dataset, fields []any, opts Options) (*Figure, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	lo, hi, err := opts.timeRange()
	if err != nil {
		return nil, err
	}
	fig := &Figure{opts: opts}
	for _, entry := range fields {
		group, ok := entry.([]any)
		if !ok {
			group = []any{entry}
		}
		traces := make([]trace, 0, len(group))
		for _, f := range group {
			tr, err := loadTrace(ctx, ds, f, opts)
			if err != nil {
				return nil, err
			}
			traces = append(traces, tr)
		}
		p, err := newPanel(traces, 0, len(traces), opts, lo, hi)
		if err != nil {
			return nil, err
		}
		fig.panels = append(fig.panels, p)
	}
	fig.panels[0].Title.Text = opts.Title
	fig.shareTimeAxis()
	return fig, nil
}

// shareTimeAxis gives every panel the union of their time ranges.
func (f *Figure) shareTimeAxis() {
	lo, hi := f.panels[0].X.Min, f.panels[0].X.Max
	for _, p := range f.panels[1:] {
		lo = min(lo, p.X.Min)
		hi = max(hi, p.X.Max)
	}
	for _, p := range f.panels {
		p.X.Min, p.X.Max = lo, hi
	}
}

// Panels returns the number of panels.
func (f *Figure) Panels() int { return len(f.panels) }

// Plot returns panel i for further customisation.
func (f *Figure) Plot(i int) *plot.Plot { return f.panels[i] }

// Render draws the figure in format (png, svg, pdf, ...) to w.
func (f *Figure) Render(w io.Writer, format string) error {
	c, err := draw.NewFormattedCanvas(f.opts.width(), f.opts.height(), format)
	if err != nil {
		return fmt.Errorf("plots: %w", err)
	}
	dc := draw.New(c)
	if len(f.panels) == 1 {
		f.panels[0].Draw(dc)
	} else {
		grid := make([][]*plot.Plot, len(f.panels))
		for i, p := range f.panels {
			grid[i] = []*plot.Plot{p}
		}
		tiles := draw.Tiles{
			Rows:      len(f.panels),
			Cols:      1,
			PadY:      vg.Millimeter * 2,
			PadTop:    vg.Millimeter * 2,
			PadBottom: vg.Millimeter * 2,
			PadLeft:   vg.Millimeter * 2,
			PadRight:  vg.Millimeter * 2,
		}
		canvases := plot.Align(grid, tiles, dc)
		for i, p := range f.panels {
			p.Draw(canvases[i][0])
		}
	}
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("plots: write: %w", err)
	}
	return nil
}

// Save writes the figure to path in the format named by its extension.
func (f *Figure) Save(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == "html" {
		return fmt.Errorf("plots: use RenderHTML for %s", path)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plots: %w", err)
	}
	if err := f.Render(out, format); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
