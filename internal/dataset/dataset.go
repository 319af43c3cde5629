// Package dataset joins telemetry, commanded states and model predictions
// behind one field namespace.
//
// A field is addressed by its type ("msids", "states", "model", "model0",
// ...) and name, or by its bare name when that name is unique across types.
// Field values are computed on first use and memoised. A Dataset is not
// safe for concurrent use.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/acisops/acispy/internal/coerce"
	"github.com/acisops/acispy/internal/model"
	"github.com/acisops/acispy/internal/monitoring"
	"github.com/acisops/acispy/internal/msids"
	"github.com/acisops/acispy/internal/series"
	"github.com/acisops/acispy/internal/statecodes"
	"github.com/acisops/acispy/internal/states"
)

var (
	// ErrFieldNotFound is returned for a field that is not registered.
	ErrFieldNotFound = errors.New("dataset: field not found")
	// ErrAmbiguousField is returned when a bare name exists under more than
	// one field type.
	ErrAmbiguousField = errors.New("dataset: ambiguous field name")
	// ErrInvalidFieldSpec is returned for a spec that is neither a name nor
	// a (type, name) pair.
	ErrInvalidFieldSpec = errors.New("dataset: invalid field specification")
)

// Field identifies a field by type and name.
type Field struct {
	Type string
	Name string
}

func (f Field) String() string { return f.Type + "/" + f.Name }

func (f Field) lower() Field {
	return Field{Type: strings.ToLower(f.Type), Name: strings.ToLower(f.Name)}
}

// FieldFunc computes a field's values.
type FieldFunc func(ds *Dataset) (series.Series, error)

type fieldDef struct {
	fn          FieldFunc
	unit        string
	displayName string
	derived     bool
}

// Options configures a Dataset.
type Options struct {
	// Lookup resolves state codes of msids fields; nil disables it.
	Lookup statecodes.Lookup
	// Logf receives lookup failures; nil uses monitoring.Logf.
	Logf monitoring.Logger
}

// Dataset is a field registry over msids, states and models.
type Dataset struct {
	msids  *msids.Set
	states *states.Table
	models map[string]*model.Model

	fields map[Field]*fieldDef
	order  []Field
	types  []string
	data   map[Field]series.Series
	codes  *statecodes.Cache
	logf   monitoring.Logger
}

// New builds a dataset. Any source may be nil. models is keyed by field
// type, "model" for a single model or "model0", "model1", ... for several.
func New(m *msids.Set, st *states.Table, models map[string]*model.Model, opts Options) *Dataset {
	ds := &Dataset{
		msids:  m,
		states: st,
		models: make(map[string]*model.Model, len(models)),
		fields: make(map[Field]*fieldDef),
		data:   make(map[Field]series.Series),
		logf:   monitoring.OrDefault(opts.Logf),
	}
	if m != nil {
		for _, name := range m.Keys() {
			s, _ := m.Get(name)
			ds.addOutput("msids", name, s.Unit, func(*Dataset) (series.Series, error) { return s, nil })
		}
	}
	if st != nil {
		for _, name := range st.Keys() {
			s, _ := st.Get(name)
			ds.addOutput("states", name, s.Unit, func(*Dataset) (series.Series, error) { return s, nil })
		}
	}
	mtypes := make([]string, 0, len(models))
	for ftype := range models {
		mtypes = append(mtypes, strings.ToLower(ftype))
		ds.models[strings.ToLower(ftype)] = models[ftype]
	}
	sort.Strings(mtypes)
	for _, ftype := range mtypes {
		mdl := ds.models[ftype]
		for _, name := range mdl.Keys() {
			s, _ := mdl.Get(name)
			ds.addOutput(ftype, name, s.Unit, func(*Dataset) (series.Series, error) { return s, nil })
		}
	}

	ds.codes = statecodes.NewCache(opts.Lookup, ds.logf)
	statecodes.RegisterCommanded(ds.codes)
	ds.addBuiltinFields()
	return ds
}

func (ds *Dataset) register(f Field, def *fieldDef) {
	f = f.lower()
	if _, ok := ds.fields[f]; !ok {
		ds.order = append(ds.order, f)
	}
	ds.fields[f] = def
	delete(ds.data, f)
	for _, t := range ds.types {
		if t == f.Type {
			return
		}
	}
	ds.types = append(ds.types, f.Type)
}

func (ds *Dataset) addOutput(ftype, name, unit string, fn FieldFunc) {
	ds.register(Field{ftype, name}, &fieldDef{
		fn:          fn,
		unit:        unit,
		displayName: DisplayName(ftype, name),
	})
}

// AddDerivedField registers fn as field (ftype, fname). An empty
// displayName defaults to the upper-cased name. Registering an existing
// field replaces it and drops its memoised values.
func (ds *Dataset) AddDerivedField(ftype, fname string, fn FieldFunc, unit, displayName string) {
	if displayName == "" {
		displayName = strings.ToUpper(fname)
	}
	ds.register(Field{ftype, fname}, &fieldDef{
		fn:          fn,
		unit:        unit,
		displayName: displayName,
		derived:     true,
	})
}

// Resolve turns a field spec into a registered Field. A spec is a Field, a
// bare name string, or a two-element sequence of strings.
func (ds *Dataset) Resolve(spec any) (Field, error) {
	switch v := spec.(type) {
	case Field:
		return ds.resolvePair(v)
	case string:
		return ds.resolveName(v)
	}
	items := coerce.EnsureList(spec)
	if len(items) == 1 {
		return Field{}, fmt.Errorf("%w: %v", ErrInvalidFieldSpec, spec)
	}
	if len(items) != 2 {
		return Field{}, fmt.Errorf("%w: %v has %d elements", ErrInvalidFieldSpec, spec, len(items))
	}
	ftype, ok1 := items[0].(string)
	fname, ok2 := items[1].(string)
	if !ok1 || !ok2 {
		return Field{}, fmt.Errorf("%w: %v", ErrInvalidFieldSpec, spec)
	}
	return ds.resolvePair(Field{ftype, fname})
}

func (ds *Dataset) resolvePair(f Field) (Field, error) {
	f = f.lower()
	if _, ok := ds.fields[f]; !ok {
		return Field{}, fmt.Errorf("%w: %s", ErrFieldNotFound, f)
	}
	return f, nil
}

func (ds *Dataset) resolveName(name string) (Field, error) {
	name = strings.ToLower(name)
	var candidates []Field
	for _, t := range ds.types {
		if _, ok := ds.fields[Field{t, name}]; ok {
			candidates = append(candidates, Field{t, name})
		}
	}
	switch len(candidates) {
	case 0:
		return Field{}, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	case 1:
		return candidates[0], nil
	}
	types := make([]string, len(candidates))
	for i, c := range candidates {
		types[i] = c.Type
	}
	return Field{}, fmt.Errorf("%w: %s is defined for %s", ErrAmbiguousField, name, strings.Join(types, ", "))
}

// Has reports whether spec names a registered field.
func (ds *Dataset) Has(spec any) bool {
	_, err := ds.Resolve(spec)
	return err == nil
}

// Get returns a field's values, computing them on first use.
func (ds *Dataset) Get(spec any) (series.Series, error) {
	f, err := ds.Resolve(spec)
	if err != nil {
		return series.Series{}, err
	}
	if s, ok := ds.data[f]; ok {
		return s, nil
	}
	s, err := ds.fields[f].fn(ds)
	if err != nil {
		return series.Series{}, fmt.Errorf("dataset: computing %s: %w", f, err)
	}
	if s.Unit == "" {
		s.Unit = ds.fields[f].unit
	}
	ds.data[f] = s
	return s, nil
}

// Times returns a field's sample times, or interval starts for states.
func (ds *Dataset) Times(spec any) ([]float64, error) {
	s, err := ds.Get(spec)
	if err != nil {
		return nil, err
	}
	return s.Times, nil
}

// Dates returns a field's times as Chandra date strings.
func (ds *Dataset) Dates(spec any) ([]string, error) {
	s, err := ds.Get(spec)
	if err != nil {
		return nil, err
	}
	return s.Dates(), nil
}

// Unit returns a field's unit.
func (ds *Dataset) Unit(spec any) (string, error) {
	f, err := ds.Resolve(spec)
	if err != nil {
		return "", err
	}
	return ds.fields[f].unit, nil
}

// FieldDisplayName returns the name a field is shown under in plots.
func (ds *Dataset) FieldDisplayName(spec any) (string, error) {
	f, err := ds.Resolve(spec)
	if err != nil {
		return "", err
	}
	return ds.fields[f].displayName, nil
}

// FieldList returns every registered field in registration order.
func (ds *Dataset) FieldList() []Field {
	out := make([]Field, len(ds.order))
	copy(out, ds.order)
	return out
}

// DerivedFieldList returns the fields added through AddDerivedField and
// its helpers.
func (ds *Dataset) DerivedFieldList() []Field {
	var out []Field
	for _, f := range ds.order {
		if ds.fields[f].derived {
			out = append(out, f)
		}
	}
	return out
}

// Types returns the field types in registration order.
func (ds *Dataset) Types() []string {
	out := make([]string, len(ds.types))
	copy(out, ds.types)
	return out
}

// States returns the commanded states, or nil.
func (ds *Dataset) States() *states.Table { return ds.states }

// MSIDs returns the telemetry set, or nil.
func (ds *Dataset) MSIDs() *msids.Set { return ds.msids }

// Model returns the model registered under ftype.
func (ds *Dataset) Model(ftype string) (*model.Model, bool) {
	m, ok := ds.models[strings.ToLower(ftype)]
	return m, ok
}
