package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/acisops/acispy/internal/config"
	"github.com/acisops/acispy/internal/cxotime"
	"github.com/acisops/acispy/internal/dataset"
	"github.com/acisops/acispy/internal/fsutil"
	"github.com/acisops/acispy/internal/loads"
	"github.com/acisops/acispy/internal/plots"
	"github.com/acisops/acispy/internal/tdb"
	"github.com/acisops/acispy/internal/timeutil"
	"github.com/acisops/acispy/internal/units"
)

func fileExists(path string) bool {
	return path != "" && fsutil.OSFileSystem{}.Exists(path)
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func plotOptions(cfg *config.AnalysisConfig) plots.Options {
	return plots.Options{
		Width:     cfg.GetPlotWidthIn(),
		Height:    cfg.GetPlotHeightIn(),
		LineWidth: cfg.GetLineWidth(),
		FontSize:  cfg.GetFontSize(),
		TempUnit:  cfg.GetTempUnit(),
	}
}

func runPlot(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("plot", stderr)
	var in inputs
	in.register(fs)
	fields := fs.String("fields", "", "Comma-separated fields drawn on one panel")
	field2 := fs.String("field2", "", "Field drawn on a second panel below -fields")
	var panels listFlag
	fs.Var(&panels, "panel", "Comma-separated fields of one stacked panel; repeatable")
	format := fs.String("format", "", "png, svg, pdf or html (overrides config)")
	outDir := fs.String("out", "", "Output root (overrides config)")
	title := fs.String("title", "", "Figure title")
	tstart := fs.String("tstart", "", "Start date, e.g. 2019:001:00:00:00")
	tstop := fs.String("tstop", "", "Stop date")
	tempUnit := fs.String("temp-unit", "", "deg_C, deg_F or K (overrides config)")
	avg := fs.Int("avg", 0, "Also plot a moving average of each -fields entry over this many samples; -1 uses the config window")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*fields == "") == (len(panels) == 0) {
		fmt.Fprintln(stderr, "Error: give exactly one of -fields or -panel")
		fs.Usage()
		return errUsage
	}

	cfg, err := loadConfig(in.configPath)
	if err != nil {
		return err
	}
	ds, closeInputs, err := in.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeInputs()

	opts := plotOptions(cfg)
	opts.Title, opts.TStart, opts.TStop = *title, *tstart, *tstop
	if *tempUnit != "" {
		if !units.IsTemperature(*tempUnit) {
			return fmt.Errorf("invalid -temp-unit %q", *tempUnit)
		}
		opts.TempUnit = *tempUnit
	}
	f := *format
	if f == "" {
		f = cfg.GetPlotFormat()
	}
	root := *outDir
	if root == "" {
		root = cfg.GetOutputDir()
	}

	var specs []any
	var groups []any
	var names []string
	if *fields != "" {
		specs = parseFieldList(*fields)
		if *avg != 0 {
			n := *avg
			if n < 0 {
				n = cfg.GetSmoothingWindow()
			}
			base := specs
			for _, s := range base {
				af, err := ds.AddAveragedField(s, n)
				if err != nil {
					return err
				}
				specs = append(specs, af)
			}
		}
		for _, s := range specs {
			names = append(names, fmt.Sprint(s))
		}
	} else {
		for _, p := range panels {
			group := parseFieldList(p)
			groups = append(groups, group)
			for _, s := range group {
				names = append(names, fmt.Sprint(s))
			}
		}
	}

	run, err := plots.NewRun(fsutil.OSFileSystem{}, root, timeutil.RealClock{})
	if err != nil {
		return err
	}
	name := plots.FigureName(f, names...)

	if f == "html" {
		if groups != nil {
			for _, g := range groups {
				specs = append(specs, g.([]any)...)
			}
		}
		if *field2 != "" {
			specs = append(specs, parseField(*field2))
		}
		w, err := run.Create(name)
		if err != nil {
			return err
		}
		if err := plots.RenderHTML(ctx, ds, specs, opts, w); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	} else {
		var fig *plots.Figure
		if groups != nil {
			fig, err = plots.MultiDatePlot(ctx, ds, groups, opts)
		} else {
			var f2 any
			if *field2 != "" {
				f2 = parseField(*field2)
			}
			fig, err = plots.DatePlot(ctx, ds, specs, f2, opts)
		}
		if err != nil {
			return err
		}
		if err := run.SaveFigure(name, fig); err != nil {
			return err
		}
	}
	if err := run.WriteManifest(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s\n", run.Dir)
	for _, file := range run.Files() {
		fmt.Fprintf(stdout, "  %s\n", file)
	}
	return nil
}

func runDescribe(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("describe", stderr)
	var in inputs
	in.register(fs)
	fields := fs.String("fields", "", "Comma-separated fields to summarise; empty lists all fields")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(in.configPath)
	if err != nil {
		return err
	}
	ds, closeInputs, err := in.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeInputs()

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	if *fields == "" {
		fmt.Fprintln(tw, "FIELD\tUNIT\tNAME")
		for _, f := range ds.FieldList() {
			unit, _ := ds.Unit(f)
			display, _ := ds.FieldDisplayName(f)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f, unit, display)
		}
		return tw.Flush()
	}
	fmt.Fprintln(tw, "FIELD\tUNIT\tCOUNT\tMIN\tMAX\tMEAN\tSTDDEV\tSTART\tSTOP")
	for _, spec := range parseFieldList(*fields) {
		sum, err := ds.Summarize(spec)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			sum.Field, sum.Unit, sum.Count,
			fmtFloat(sum.Min), fmtFloat(sum.Max), fmtFloat(sum.Mean), fmtFloat(sum.StdDev),
			cxotime.Format(sum.Start), cxotime.Format(sum.Stop))
	}
	return tw.Flush()
}

func fmtFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("export", stderr)
	var in inputs
	in.register(fs)
	fields := fs.String("fields", "", "Comma-separated fields on one time base (required)")
	mask := fs.String("mask", "", "Boolean field selecting rows")
	states := fs.Bool("states-table", false, "Write the commanded states table instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(in.configPath)
	if err != nil {
		return err
	}
	ds, closeInputs, err := in.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeInputs()

	if *states {
		return ds.WriteStates(stdout)
	}
	if *fields == "" {
		fmt.Fprintln(stderr, "Error: -fields is required")
		fs.Usage()
		return errUsage
	}
	var maskField any
	if *mask != "" {
		maskField = parseField(*mask)
	}
	return ds.WriteMSIDs(stdout, parseFieldList(*fields), maskField)
}

func runStatesAt(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("states-at", stderr)
	var in inputs
	in.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(in.configPath)
	if err != nil {
		return err
	}
	ds, closeInputs, err := in.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeInputs()
	if ds.States() == nil {
		return dataset.ErrNoStates
	}

	var row map[string]any
	if fs.NArg() == 0 {
		row = ds.States().Current(timeutil.RealClock{})
	} else {
		row, err = ds.States().AtDate(fs.Arg(0))
		if err != nil {
			return err
		}
	}
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%v\n", k, row[k])
	}
	return tw.Flush()
}

func openTDB(configPath, override string) (*tdb.DB, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	path := override
	if path == "" {
		path = cfg.GetTDBPath()
	}
	db, err := tdb.Open(path, nil)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runCodes(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("codes", stderr)
	configPath := fs.String("config", "", "JSON settings file")
	dbPath := fs.String("tdb", "", "State-code database (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: acisplot codes [-tdb file] <msid>")
		return errUsage
	}
	db, err := openTDB(*configPath, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.StateCodes(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tRAW")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\n", e.StateCode, e.LowRawCount)
	}
	return tw.Flush()
}

func runTDB(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("tdb", stderr)
	configPath := fs.String("config", "", "JSON settings file")
	dbPath := fs.String("tdb", "", "State-code database (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Usage: acisplot tdb [-tdb file] migrate | import <csv>...")
		return errUsage
	}
	db, err := openTDB(*configPath, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	switch fs.Arg(0) {
	case "migrate":
		v, dirty, err := db.MigrateVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "schema version %d (dirty=%t)\n", v, dirty)
		return nil
	case "import":
		if fs.NArg() < 2 {
			return fmt.Errorf("tdb import: no files: %w", errUsage)
		}
		for _, path := range fs.Args()[1:] {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			n, err := db.ImportStateCodesCSV(ctx, f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(stdout, "%s: imported %d state codes\n", path, n)
		}
		return nil
	default:
		return fmt.Errorf("tdb: unknown action %q: %w", fs.Arg(0), errUsage)
	}
}

func runFindLoad(_ context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("find-load", stderr)
	configPath := fs.String("config", "", "JSON settings file")
	root := fs.String("root", "", "Load review root (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: acisplot find-load [-root dir] <load>")
		return errUsage
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	r := *root
	if r == "" {
		r = cfg.GetLoadReviewRoot()
	}
	fsys := fsutil.OSFileSystem{}
	load, err := loads.FindLoad(fsys, r, fs.Arg(0))
	if err != nil {
		return err
	}
	dir, err := loads.Dir(r, load)
	if err != nil {
		return err
	}
	if !fsys.Exists(dir) {
		return fmt.Errorf("load %s: %s does not exist", load, dir)
	}
	fmt.Fprintf(stdout, "%s\t%s\n", strings.ToUpper(load), dir)
	return nil
}
