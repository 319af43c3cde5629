package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/acisops/acispy/internal/asciitable"
	"github.com/acisops/acispy/internal/statecodes"
)

// ErrNoStates is returned by WriteStates for a dataset without states.
var ErrNoStates = errors.New("dataset: no commanded states")

// StateCodes returns the state-code table of a field. Commanded states use
// fixed tables; msids fields are looked up once and the answer is kept.
func (ds *Dataset) StateCodes(ctx context.Context, spec any) (statecodes.Table, bool) {
	f, err := ds.Resolve(spec)
	if err != nil {
		return statecodes.Table{}, false
	}
	return ds.codes.Get(ctx, statecodes.Key{Type: f.Type, Name: f.Name})
}

// SetStateCodes registers a fixed state-code table for a field.
func (ds *Dataset) SetStateCodes(f Field, t statecodes.Table) {
	f = f.lower()
	ds.codes.Set(statecodes.Key{Type: f.Type, Name: f.Name}, t)
}

// ConvertStateCode maps a string field to its raw counts. Values without a
// code become statecodes.Unmapped.
func (ds *Dataset) ConvertStateCode(ctx context.Context, spec any) ([]int, error) {
	s, err := ds.Get(spec)
	if err != nil {
		return nil, err
	}
	if !s.IsString() {
		return nil, fmt.Errorf("dataset: field %v is not a state string", spec)
	}
	table, ok := ds.StateCodes(ctx, spec)
	if !ok {
		return nil, fmt.Errorf("dataset: field %v has no state codes", spec)
	}
	return statecodes.ConvertStateCode(table, s.Strings), nil
}

// WriteMSIDs writes fields sampled on a common time base as an ASCII table
// with columns <type>_<name>, times and dates. When maskField is non-nil
// only its valid samples are written.
func (ds *Dataset) WriteMSIDs(w io.Writer, specs []any, maskField any) error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: no fields to write", ErrInvalidFieldSpec)
	}
	base, err := ds.Get(specs[0])
	if err != nil {
		return err
	}
	keep := make([]bool, len(base.Times))
	for i := range keep {
		keep[i] = true
	}
	if maskField != nil {
		m, err := ds.Get(maskField)
		if err != nil {
			return err
		}
		if m.Mask != nil {
			if len(m.Mask) != len(keep) {
				return fmt.Errorf("dataset: mask field %v does not share the time base", maskField)
			}
			copy(keep, m.Mask)
		}
	}

	var cols []asciitable.Column
	for _, spec := range specs {
		f, err := ds.Resolve(spec)
		if err != nil {
			return err
		}
		s, err := ds.Get(f)
		if err != nil {
			return err
		}
		if !floats.Equal(s.Times, base.Times) {
			return fmt.Errorf("dataset: %s is not on the common time base", f)
		}
		s = s.Select(keep)
		cols = append(cols, asciitable.Column{
			Name:    f.Type + "_" + f.Name,
			Floats:  s.Values,
			Strings: s.Strings,
		})
	}
	sel := base.Select(keep)
	cols = append(cols,
		asciitable.Column{Name: "times", Floats: sel.Times},
		asciitable.Column{Name: "dates", Strings: sel.Dates()},
	)
	return asciitable.New(cols...).Write(w)
}

// WriteStates writes the commanded states in states.dat layout.
func (ds *Dataset) WriteStates(w io.Writer) error {
	if ds.states == nil || ds.states.Len() == 0 {
		return ErrNoStates
	}
	return ds.states.WriteASCII(w)
}

// Summary holds basic statistics of a numeric field over its valid,
// finite samples.
type Summary struct {
	Field  Field
	Unit   string
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Start  float64
	Stop   float64
}

// Summarize computes a Summary for one field. Statistics of a field with
// no finite samples are NaN.
func (ds *Dataset) Summarize(spec any) (Summary, error) {
	f, err := ds.Resolve(spec)
	if err != nil {
		return Summary{}, err
	}
	s, err := ds.Get(f)
	if err != nil {
		return Summary{}, err
	}
	if s.IsString() {
		return Summary{}, fmt.Errorf("dataset: cannot summarise string field %s", f)
	}
	var vals []float64
	for i, v := range s.Values {
		if s.Valid(i) && !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	start, stop := s.Span()
	sum := Summary{
		Field: f,
		Unit:  s.Unit,
		Count: len(vals),
		Start: start,
		Stop:  stop,
	}
	if len(vals) == 0 {
		nan := math.NaN()
		sum.Min, sum.Max, sum.Mean, sum.StdDev = nan, nan, nan, nan
		return sum, nil
	}
	sum.Min = floats.Min(vals)
	sum.Max = floats.Max(vals)
	sum.Mean, sum.StdDev = stat.MeanStdDev(vals, nil)
	if len(vals) == 1 {
		sum.StdDev = 0
	}
	return sum, nil
}
