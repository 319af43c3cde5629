package plots

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"github.com/acisops/acispy/internal/cxotime"
	"github.com/acisops/acispy/internal/dataset"
	"github.com/acisops/acispy/internal/series"
	"github.com/acisops/acispy/internal/statecodes"
	"github.com/acisops/acispy/internal/units"
)

// dateFormat labels time ticks as Chandra dates without seconds.
const dateFormat = "2006:002:15:04"

// unknownState labels samples whose state has no code.
const unknownState = "UNKNOWN"

// trace is one field ready to draw.
type trace struct {
	name string
	unit string
	pts  plotter.XYs
	// stateLabels maps raw counts to state strings for string fields.
	stateLabels map[float64]string
}

// loadTrace fetches a field and converts it to plot points. Masked and
// non-finite samples are dropped. Step-wise series become horizontal
// segments, and string states are drawn by state code.
func loadTrace(ctx context.Context, ds *dataset.Dataset, spec any, opts Options) (trace, error) {
	s, err := ds.Get(spec)
	if err != nil {
		return trace{}, err
	}
	name, err := ds.FieldDisplayName(spec)
	if err != nil {
		return trace{}, err
	}
	tr := trace{name: name, unit: s.Unit}

	vals := s.Values
	if s.IsString() {
		codes, err := ds.ConvertStateCode(ctx, spec)
		if err != nil {
			return trace{}, err
		}
		vals = make([]float64, len(codes))
		tr.stateLabels = make(map[float64]string)
		for i, c := range codes {
			vals[i] = float64(c)
			if c == statecodes.Unmapped {
				tr.stateLabels[float64(c)] = unknownState
				continue
			}
			tr.stateLabels[float64(c)] = s.Strings[i]
		}
		tr.unit = units.None
	} else if opts.TempUnit != "" && units.IsTemperature(s.Unit) && s.Unit != opts.TempUnit {
		conv := make([]float64, len(vals))
		for i, v := range vals {
			conv[i], _ = units.ConvertTemperature(v, s.Unit, opts.TempUnit)
		}
		vals = conv
		tr.unit = opts.TempUnit
	}
	tr.pts = points(s, vals)
	return tr, nil
}

func points(s series.Series, vals []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, 2*len(vals))
	for i, v := range vals {
		if !s.Valid(i) || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: s.Times[i], Y: v})
		if s.IsStepwise() {
			pts = append(pts, plotter.XY{X: s.Stops[i], Y: v})
		}
	}
	return pts
}

// newPanel draws traces that share one y axis.
func newPanel(traces []trace, colorOffset, ncolors int, opts Options, lo, hi float64) (*plot.Plot, error) {
	p := plot.New()
	p.X.Tick.Marker = plot.TimeTicks{Format: dateFormat, Time: cxotime.ToTime}
	p.X.Label.Text = "Date"
	p.Add(plotter.NewGrid())

	unit := traces[0].unit
	for i, tr := range traces {
		if tr.unit != unit {
			return nil, fmt.Errorf("plots: %s is in %q but the panel is in %q", tr.name, tr.unit, unit)
		}
		if len(tr.pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(tr.pts)
		if err != nil {
			return nil, fmt.Errorf("plots: %s: %w", tr.name, err)
		}
		line.Width = opts.lineWidth()
		line.Color = opts.color(colorOffset+i, ncolors)
		p.Add(line)
		p.Legend.Add(tr.name, line)
	}
	p.Y.Label.Text = yLabel(traces)
	if labels := traces[0].stateLabels; len(traces) == 1 && labels != nil {
		p.Y.Tick.Marker = stateTicks(labels)
		p.Y.Min, p.Y.Max = p.Y.Min-0.5, p.Y.Max+0.5
	}
	if !math.IsNaN(lo) {
		p.X.Min = lo
	}
	if !math.IsNaN(hi) {
		p.X.Max = hi
	}

	fs := opts.fontSize()
	p.Title.TextStyle.Font.Size = fs
	p.X.Label.TextStyle.Font.Size = fs
	p.Y.Label.TextStyle.Font.Size = fs
	p.X.Tick.Label.Font.Size = fs * 0.8
	p.Y.Tick.Label.Font.Size = fs * 0.8
	p.Legend.TextStyle.Font.Size = fs * 0.8
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func yLabel(traces []trace) string {
	if len(traces) == 1 && traces[0].stateLabels != nil {
		return traces[0].name
	}
	unit := traces[0].unit
	label := traces[0].name
	if q := units.Quantity(unit); len(traces) > 1 && q != "" {
		label = q
	}
	if unit == units.None {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, units.Label(unit))
}

func stateTicks(labels map[float64]string) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, 0, len(labels))
	for v, l := range labels {
		ticks = append(ticks, plot.Tick{Value: v, Label: l})
	}
	return ticks
}

// timeOf converts a CXC time for the echarts time axis.
func timeOf(secs float64) time.Time { return cxotime.ToTime(secs) }
