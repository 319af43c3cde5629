package dataset

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/acisops/acispy/internal/align"
	"github.com/acisops/acispy/internal/attitude"
	"github.com/acisops/acispy/internal/series"
	"github.com/acisops/acispy/internal/units"
)

// powerFields lists the electrical power fields derived from a voltage and
// a current MSID.
var powerFields = []struct {
	name, display, volts, amps string
}{
	{"dpa_a_power", "DPA-A Power", "1dp28avo", "1dpicacu"},
	{"dpa_b_power", "DPA-B Power", "1dp28bvo", "1dpicbcu"},
	{"dea_a_power", "DEA-A Power", "1de28avo", "1deicacu"},
	{"dea_b_power", "DEA-B Power", "1de28bvo", "1deicbcu"},
}

// addBuiltinFields registers the derived fields whose inputs are present.
func (ds *Dataset) addBuiltinFields() {
	if ds.hasAll("states", "q1", "q2", "q3", "q4") {
		ds.AddDerivedField("states", "off_nominal_roll", offNominalRoll, units.Deg, "Off-Nominal Roll")
	}
	for _, p := range powerFields {
		if !ds.hasAll("msids", p.volts, p.amps) {
			continue
		}
		ds.AddDerivedField("msids", p.name, powerField(p.volts, p.amps), units.W, p.display)
	}
	if ds.hasAll("msids", "3tscpos") {
		ds.AddDerivedField("msids", "simpos", simpos, units.Steps, "SIM Position")
	}
}

func (ds *Dataset) hasAll(ftype string, names ...string) bool {
	for _, n := range names {
		if _, ok := ds.fields[Field{ftype, n}]; !ok {
			return false
		}
	}
	return true
}

func offNominalRoll(ds *Dataset) (series.Series, error) {
	var q [4]series.Series
	for i, n := range []string{"q1", "q2", "q3", "q4"} {
		s, err := ds.Get(Field{"states", n})
		if err != nil {
			return series.Series{}, err
		}
		if s.IsString() {
			return series.Series{}, fmt.Errorf("state %s is not numeric", n)
		}
		q[i] = s
	}
	quats := make([]attitude.Quat, q[0].Len())
	for i := range quats {
		quats[i] = attitude.Quat{q[0].Values[i], q[1].Values[i], q[2].Values[i], q[3].Values[i]}
	}
	return series.Series{
		Times:  q[0].Times,
		Stops:  q[0].Stops,
		Values: attitude.CalcOffNomRolls(q[0].Times, q[0].Stops, quats),
		Unit:   units.Deg,
	}, nil
}

// powerField multiplies a voltage by a current. The current is
// interpolated onto the voltage times when the two are sampled separately.
func powerField(volts, amps string) FieldFunc {
	return func(ds *Dataset) (series.Series, error) {
		v, err := ds.Get(Field{"msids", volts})
		if err != nil {
			return series.Series{}, err
		}
		a, err := ds.Get(Field{"msids", amps})
		if err != nil {
			return series.Series{}, err
		}
		cur := a.Values
		mask := a.Mask
		if !floats.Equal(v.Times, a.Times) {
			var ok []bool
			cur, ok = align.Align(a.Times, a.Values, v.Times)
			mask = ok
		}
		out := make([]float64, len(v.Values))
		for i := range out {
			out[i] = units.Power(v.Values[i], cur[i])
		}
		return series.Series{Times: v.Times, Values: out, Mask: mask, Unit: units.W}, nil
	}
}

func simpos(ds *Dataset) (series.Series, error) {
	s, err := ds.Get(Field{"msids", "3tscpos"})
	if err != nil {
		return series.Series{}, err
	}
	out := make([]float64, len(s.Values))
	copy(out, s.Values)
	floats.Scale(units.SIMStepsPerMM, out)
	return series.Series{Times: s.Times, Values: out, Mask: s.Mask, Unit: units.Steps}, nil
}

// AddAveragedField registers avg_<name>, a moving average of spec over n
// samples (align.DefaultWindow when n <= 0).
func (ds *Dataset) AddAveragedField(spec any, n int) (Field, error) {
	f, err := ds.Resolve(spec)
	if err != nil {
		return Field{}, err
	}
	def := ds.fields[f]
	fn := func(ds *Dataset) (series.Series, error) {
		s, err := ds.Get(f)
		if err != nil {
			return series.Series{}, err
		}
		if s.IsString() {
			return series.Series{}, fmt.Errorf("cannot average string field %s", f)
		}
		out := s
		out.Values = align.MovingAverage(s.Values, n)
		return out, nil
	}
	avg := Field{f.Type, "avg_" + f.Name}
	ds.AddDerivedField(avg.Type, avg.Name, fn, def.unit, "Average "+def.displayName)
	return avg, nil
}

// AddInterpolatedField registers interp_<name>, spec interpolated onto
// times. Samples outside the field's time span are masked and NaN.
func (ds *Dataset) AddInterpolatedField(spec any, times []float64) (Field, error) {
	f, err := ds.Resolve(spec)
	if err != nil {
		return Field{}, err
	}
	def := ds.fields[f]
	out := make([]float64, len(times))
	copy(out, times)
	fn := func(ds *Dataset) (series.Series, error) {
		s, err := ds.Get(f)
		if err != nil {
			return series.Series{}, err
		}
		if s.IsString() {
			return series.Series{}, fmt.Errorf("cannot interpolate string field %s", f)
		}
		vals, ok := align.Align(s.Times, s.Values, out)
		return series.Series{Times: out, Values: vals, Mask: ok, Unit: s.Unit}, nil
	}
	interp := Field{f.Type, "interp_" + f.Name}
	ds.AddDerivedField(interp.Type, interp.Name, fn, def.unit, "Interpolated "+def.displayName)
	return interp, nil
}

// MapStateToMSID registers (ftype, state): the state in force at each
// sample time of (ftype, msid). ftype defaults to "msids".
func (ds *Dataset) MapStateToMSID(state, msid, ftype string) (Field, error) {
	if ftype == "" {
		ftype = "msids"
	}
	sf, err := ds.resolvePair(Field{"states", state})
	if err != nil {
		return Field{}, err
	}
	mf, err := ds.resolvePair(Field{ftype, msid})
	if err != nil {
		return Field{}, err
	}
	def := ds.fields[sf]
	fn := func(ds *Dataset) (series.Series, error) {
		ms, err := ds.Get(mf)
		if err != nil {
			return series.Series{}, err
		}
		st, err := ds.Get(sf)
		if err != nil {
			return series.Series{}, err
		}
		if st.Len() == 0 {
			return series.Series{}, fmt.Errorf("state %s is empty", sf.Name)
		}
		stops := st.Stops
		if stops == nil {
			stops = st.Times
		}
		idx := align.SearchSorted(stops, ms.Times)
		out := series.Series{Times: ms.Times, Unit: st.Unit}
		last := st.Len() - 1
		if st.IsString() {
			out.Strings = make([]string, len(idx))
		} else {
			out.Values = make([]float64, len(idx))
		}
		for i, k := range idx {
			k = min(k, last)
			if st.IsString() {
				out.Strings[i] = st.Strings[k]
			} else {
				out.Values[i] = st.Values[k]
			}
		}
		return out, nil
	}
	mapped := Field{strings.ToLower(ftype), sf.Name}
	ds.AddDerivedField(mapped.Type, mapped.Name, fn, def.unit, def.displayName)
	return mapped, nil
}

// AddDiffDataModelField registers (ftypeModel, diff_<msid>): telemetry
// minus model for one MSID, on the telemetry times. ftypeModel defaults to
// "model".
func (ds *Dataset) AddDiffDataModelField(msid, ftypeModel string) (Field, error) {
	if ftypeModel == "" {
		ftypeModel = "model"
	}
	df, err := ds.resolvePair(Field{"msids", msid})
	if err != nil {
		return Field{}, err
	}
	mf, err := ds.resolvePair(Field{ftypeModel, msid})
	if err != nil {
		return Field{}, err
	}
	fn := func(ds *Dataset) (series.Series, error) {
		d, err := ds.Get(df)
		if err != nil {
			return series.Series{}, err
		}
		m, err := ds.Get(mf)
		if err != nil {
			return series.Series{}, err
		}
		mv := m.Values
		var mask []bool
		if !floats.Equal(d.Times, m.Times) {
			mv, mask = align.Align(m.Times, m.Values, d.Times)
		}
		diff := make([]float64, len(d.Values))
		floats.SubTo(diff, d.Values, mv)
		return series.Series{Times: d.Times, Values: diff, Mask: mask, Unit: d.Unit}, nil
	}
	diff := Field{mf.Type, "diff_" + df.Name}
	ds.AddDerivedField(diff.Type, diff.Name, fn, ds.fields[df].unit, "Δ("+ds.fields[df].displayName+")")
	return diff, nil
}
