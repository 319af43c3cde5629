package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/acisops/acispy/internal/config"
	"github.com/acisops/acispy/internal/dataset"
	"github.com/acisops/acispy/internal/model"
	"github.com/acisops/acispy/internal/monitoring"
	"github.com/acisops/acispy/internal/msids"
	"github.com/acisops/acispy/internal/seriescache"
	"github.com/acisops/acispy/internal/states"
	"github.com/acisops/acispy/internal/tdb"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// inputs holds the data source flags shared by the dataset commands.
type inputs struct {
	configPath string
	tracelog   string
	states     string
	models     listFlag
	cacheDir   string
	tdbPath    string
}

func (in *inputs) register(fs *flag.FlagSet) {
	fs.StringVar(&in.configPath, "config", "", "JSON settings file")
	fs.StringVar(&in.tracelog, "tracelog", "", "Tracelog file")
	fs.StringVar(&in.states, "states", "", "Commanded states file")
	fs.Var(&in.models, "model", "Model output as type=file or file; repeatable")
	fs.StringVar(&in.cacheDir, "cache", "", "Series cache directory (overrides config)")
	fs.StringVar(&in.tdbPath, "tdb", "", "State-code database (overrides config); used only if it exists")
}

func loadConfig(path string) (*config.AnalysisConfig, error) {
	if path == "" {
		return config.Empty(), nil
	}
	return config.Load(path)
}

// parseModelArg splits "type=file"; a bare file is of type "model".
func parseModelArg(arg string) (ftype, path string) {
	if i := strings.Index(arg, "="); i > 0 {
		return strings.ToLower(arg[:i]), arg[i+1:]
	}
	return "model", arg
}

// open loads every requested source into a dataset. The returned close
// function releases the cache and database.
func (in *inputs) open(ctx context.Context, cfg *config.AnalysisConfig) (*dataset.Dataset, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if in.tracelog == "" && in.states == "" && len(in.models) == 0 {
		return nil, closeAll, fmt.Errorf("no input files; use -tracelog, -states or -model")
	}

	var cache *seriescache.Cache
	cacheDir := in.cacheDir
	if cacheDir == "" {
		cacheDir = cfg.GetCacheDir()
	}
	if cacheDir != "" {
		c, err := seriescache.Open(seriescache.Options{Dir: cacheDir})
		if err != nil {
			return nil, closeAll, err
		}
		cache = c
		closers = append(closers, func() {
			if err := c.Close(); err != nil {
				monitoring.Logf("acisplot: closing cache: %v", err)
			}
		})
	}

	var set *msids.Set
	if in.tracelog != "" {
		s, err := loadTracelog(cache, in.tracelog, cfg.GetTracelogEpochOffset())
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		set = s
	}

	var st *states.Table
	if in.states != "" {
		t, err := states.ReadFile(in.states)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		st = t
	}

	models, err := loadModels(in.models)
	if err != nil {
		closeAll()
		return nil, func() {}, err
	}

	opts := dataset.Options{}
	tdbPath := in.tdbPath
	if tdbPath == "" {
		tdbPath = cfg.GetTDBPath()
	}
	if fileExists(tdbPath) {
		db, err := tdb.Open(tdbPath, nil)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, func() { db.Close() })
		opts.Lookup = db
	}
	return dataset.New(set, st, models, opts), closeAll, nil
}

// loadTracelog parses a tracelog, through the cache when one is open.
func loadTracelog(cache *seriescache.Cache, path string, offset float64) (*msids.Set, error) {
	if cache == nil {
		return msids.ReadTracelogFile(path, offset)
	}
	cols, err := cache.LoadFile(path, func() ([]seriescache.Column, error) {
		set, err := msids.ReadTracelogFile(path, offset)
		if err != nil {
			return nil, err
		}
		cols := make([]seriescache.Column, 0, set.Len())
		for _, name := range set.Keys() {
			s, _ := set.Get(name)
			cols = append(cols, seriescache.Column{Name: name, Series: s})
		}
		return cols, nil
	})
	if err != nil {
		return nil, err
	}
	set := msids.NewSet()
	for _, c := range cols {
		set.Add(c.Name, c.Series)
	}
	return set, nil
}

// loadModels reads every -model argument, joining files of one type.
func loadModels(args []string) (map[string]*model.Model, error) {
	if len(args) == 0 {
		return nil, nil
	}
	byType := make(map[string][]*model.Model)
	var order []string
	for _, arg := range args {
		ftype, path := parseModelArg(arg)
		m, err := model.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if _, ok := byType[ftype]; !ok {
			order = append(order, ftype)
		}
		byType[ftype] = append(byType[ftype], m)
	}
	out := make(map[string]*model.Model, len(order))
	for _, ftype := range order {
		m, err := model.Join(byType[ftype]...)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", ftype, err)
		}
		out[ftype] = m
	}
	return out, nil
}

// parseFieldList turns "1deamzt,states/pitch" into field specs.
func parseFieldList(s string) []any {
	var out []any
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, parseField(item))
	}
	return out
}

func parseField(s string) any {
	if i := strings.Index(s, "/"); i > 0 {
		return dataset.Field{Type: s[:i], Name: s[i+1:]}
	}
	return s
}
