package plots

import (
	"context"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/acisops/acispy/internal/dataset"
	"github.com/acisops/acispy/internal/units"
)

// RenderHTML writes an interactive line chart of fields to w. Every
// field is drawn on one time axis with a zoom slider.
func RenderHTML(ctx context.Context, ds *dataset.Dataset, fields []any, o Options, w io.Writer) error {
	if len(fields) == 0 {
		return ErrNoFields
	}
	traces := make([]trace, 0, len(fields))
	for _, f := range fields {
		tr, err := loadTrace(ctx, ds, f, o)
		if err != nil {
			return err
		}
		traces = append(traces, tr)
	}

	title := o.Title
	if title == "" {
		title = traces[0].name
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time", Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yAxisName(traces)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	for _, tr := range traces {
		data := make([]opts.LineData, len(tr.pts))
		for i, p := range tr.pts {
			data[i] = opts.LineData{Value: []interface{}{timeOf(p.X).UnixMilli(), p.Y}}
		}
		line.AddSeries(tr.name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("plots: render html: %w", err)
	}
	return nil
}

func yAxisName(traces []trace) string {
	if len(traces) == 1 {
		return yLabel(traces)
	}
	if l := units.Label(traces[0].unit); l != "" {
		return l
	}
	return ""
}
