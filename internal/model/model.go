// Package model holds thermal model predictions read from the
// temperatures.dat files written by the model check tools.
package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/acisops/acispy/internal/align"
	"github.com/acisops/acispy/internal/asciitable"
	"github.com/acisops/acispy/internal/cxotime"
	"github.com/acisops/acispy/internal/series"
	"github.com/acisops/acispy/internal/units"
)

// ErrNoTime is returned when a model table has no numeric time column.
var ErrNoTime = errors.New("model: table has no time column")

// nonComponents are bookkeeping columns in temperatures.dat.
var nonComponents = map[string]bool{"time": true, "date": true}

// Model is a set of model components sampled on one time base.
type Model struct {
	times []float64
	comps map[string]series.Series
	order []string
}

// New returns a model over times with no components.
func New(times []float64) *Model {
	return &Model{times: times, comps: make(map[string]series.Series)}
}

// Add stores a component. values must match the model time base.
func (m *Model) Add(name string, values []float64) error {
	if len(values) != len(m.times) {
		return fmt.Errorf("model: component %s has %d values, want %d", name, len(values), len(m.times))
	}
	name = strings.ToLower(name)
	if _, ok := m.comps[name]; !ok {
		m.order = append(m.order, name)
	}
	m.comps[name] = series.Numeric(m.times, values, units.UnitFor("model", name))
	return nil
}

// FromASCII builds a model from a parsed table with a time column.
// Every other numeric column except date becomes a component.
func FromASCII(t *asciitable.Table) (*Model, error) {
	tc, ok := t.Column("time")
	if !ok || !tc.IsNumeric() {
		return nil, ErrNoTime
	}
	m := New(tc.Floats)
	for _, c := range t.Columns {
		if nonComponents[strings.ToLower(c.Name)] || !c.IsNumeric() {
			continue
		}
		if err := m.Add(c.Name, c.Floats); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Read parses a temperatures.dat table from r.
func Read(r io.Reader) (*Model, error) {
	t, err := asciitable.Read(r, false)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	return FromASCII(t)
}

// ReadFile parses the model file at path.
func ReadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Join merges models with distinct components into one. The first model's
// time base is kept and later components are interpolated onto it.
func Join(models ...*Model) (*Model, error) {
	if len(models) == 0 {
		return nil, errors.New("model: nothing to join")
	}
	out := New(models[0].times)
	for _, m := range models {
		for _, name := range m.order {
			if _, dup := out.comps[name]; dup {
				return nil, fmt.Errorf("model: component %s appears twice", name)
			}
			vals := m.comps[name].Values
			if !sameTimes(m.times, out.times) {
				vals = align.Interpolate(m.times, out.times, vals)
			}
			if err := out.Add(name, vals); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func sameTimes(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Keys returns component names in file order.
func (m *Model) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Get returns one component.
func (m *Model) Get(name string) (series.Series, bool) {
	s, ok := m.comps[strings.ToLower(name)]
	return s, ok
}

// Times returns the model time base.
func (m *Model) Times() []float64 { return m.times }

// Values interpolates every component at CXC time secs.
func (m *Model) Values(secs float64) map[string]float64 {
	out := make(map[string]float64, len(m.comps))
	for name, s := range m.comps {
		out[name] = align.Interpolate(m.times, []float64{secs}, s.Values)[0]
	}
	return out
}

// ValuesAtDate is Values for a Chandra date string.
func (m *Model) ValuesAtDate(date string) (map[string]float64, error) {
	secs, err := cxotime.Parse(date)
	if err != nil {
		return nil, err
	}
	return m.Values(secs), nil
}

// WriteASCII writes the model with time and date columns first.
func (m *Model) WriteASCII(w io.Writer) error {
	cols := []asciitable.Column{
		{Name: "time", Floats: m.times},
		{Name: "date", Strings: cxotime.FormatAll(m.times)},
	}
	for _, n := range m.order {
		cols = append(cols, asciitable.Column{Name: n, Floats: m.comps[n].Values})
	}
	return asciitable.New(cols...).Write(w)
}
