// Package series defines the time-tagged value arrays passed between the
// loaders, the dataset and the plots.
package series

import (
	"math"
	"sort"

	"github.com/acisops/acispy/internal/align"
	"github.com/acisops/acispy/internal/cxotime"
)

// Series is one field's values with their times in CXC seconds.
//
// Sampled telemetry has one time per value. Step-wise data such as
// commanded states also carries Stops, the end of each interval, and Times
// holds the interval starts. Exactly one of Values and Strings is set.
type Series struct {
	Times   []float64
	Stops   []float64
	Values  []float64
	Strings []string
	// Mask marks valid samples; nil means every sample is valid.
	Mask []bool
	Unit string
}

// Numeric returns a sampled numeric series.
func Numeric(times, values []float64, unit string) Series {
	return Series{Times: times, Values: values, Unit: unit}
}

// Len returns the number of samples.
func (s Series) Len() int {
	if s.Strings != nil {
		return len(s.Strings)
	}
	return len(s.Values)
}

// IsString reports whether the series holds string values.
func (s Series) IsString() bool { return s.Strings != nil }

// IsStepwise reports whether the series holds intervals rather than samples.
func (s Series) IsStepwise() bool { return s.Stops != nil }

// Valid reports whether sample i is unmasked.
func (s Series) Valid(i int) bool {
	return s.Mask == nil || s.Mask[i]
}

// Dates returns the sample (or interval start) times as Chandra dates.
func (s Series) Dates() []string {
	return cxotime.FormatAll(s.Times)
}

// Index returns the sample index in force at time t: for step-wise data the
// interval containing t, for sampled data the last sample at or before t.
// The result is clamped to the valid index range; -1 means the series is
// empty.
func (s Series) Index(t float64) int {
	n := len(s.Times)
	if n == 0 {
		return -1
	}
	// First index whose start is strictly after t, minus one.
	i := sort.Search(n, func(k int) bool { return s.Times[k] > t }) - 1
	if i < 0 {
		i = 0
	}
	return i
}

// ValueAt returns the numeric value at time t: the interval value for
// step-wise data, a linear interpolation (clamped at the ends) for sampled
// data. String or empty series return NaN.
func (s Series) ValueAt(t float64) float64 {
	if s.IsString() || len(s.Values) == 0 {
		return math.NaN()
	}
	if s.IsStepwise() {
		return s.Values[s.Index(t)]
	}
	return align.Interpolate(s.Times, []float64{t}, s.Values)[0]
}

// StringAt returns the string value in force at time t, or "" when the
// series is numeric or empty.
func (s Series) StringAt(t float64) string {
	if !s.IsString() || len(s.Strings) == 0 {
		return ""
	}
	return s.Strings[s.Index(t)]
}

// Select returns a copy holding only the samples where keep is true.
func (s Series) Select(keep []bool) Series {
	out := Series{Unit: s.Unit}
	for i := range keep {
		if !keep[i] {
			continue
		}
		out.Times = append(out.Times, s.Times[i])
		if s.Stops != nil {
			out.Stops = append(out.Stops, s.Stops[i])
		}
		if s.Strings != nil {
			out.Strings = append(out.Strings, s.Strings[i])
		} else {
			out.Values = append(out.Values, s.Values[i])
		}
		if s.Mask != nil {
			out.Mask = append(out.Mask, s.Mask[i])
		}
	}
	return out
}

// Between returns the samples whose times lie in [tstart, tstop].
func (s Series) Between(tstart, tstop float64) Series {
	keep := make([]bool, len(s.Times))
	for i, t := range s.Times {
		keep[i] = t >= tstart && t <= tstop
	}
	return s.Select(keep)
}

// Span returns the first and last time, or NaN for an empty series. For
// step-wise data the span ends at the last stop time.
func (s Series) Span() (float64, float64) {
	if len(s.Times) == 0 {
		return math.NaN(), math.NaN()
	}
	last := s.Times[len(s.Times)-1]
	if len(s.Stops) > 0 {
		last = s.Stops[len(s.Stops)-1]
	}
	return s.Times[0], last
}
