// Package states holds ACIS commanded states: step-wise spacecraft and
// instrument configuration valid over [tstart, tstop) intervals.
package states

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/acisops/acispy/internal/asciitable"
	"github.com/acisops/acispy/internal/attitude"
	"github.com/acisops/acispy/internal/cxotime"
	"github.com/acisops/acispy/internal/series"
	"github.com/acisops/acispy/internal/timeutil"
	"github.com/acisops/acispy/internal/units"
)

// ErrNoIntervals is returned when a states table lacks tstart/tstop.
var ErrNoIntervals = errors.New("states: table has no tstart/tstop columns")

// DefaultStateKeys are the states loaded when the caller names none.
var DefaultStateKeys = []string{
	"ccd_count", "clocking", "ra", "dec", "dither", "fep_count",
	"hetg", "letg", "obsid", "pcad_mode", "pitch", "power_cmd",
	"roll", "si_mode", "simfa_pos", "simpos", "q1", "q2", "q3",
	"q4", "trans_keys", "vid_board", "off_nom_roll", "hrc_15v",
}

// ignoredColumns are present in some load products but are not states.
var ignoredColumns = []string{"T_pin1at"}

// Table is a set of commanded states sharing one list of intervals.
type Table struct {
	tstart []float64
	tstop  []float64
	cols   map[string]series.Series
	order  []string
}

// FromASCII builds a Table from a parsed states table. The table must
// contain tstart and tstop columns. An off_nom_roll column is derived from
// q1..q4 when it is not already present.
func FromASCII(t *asciitable.Table) (*Table, error) {
	for _, name := range ignoredColumns {
		t.Drop(name)
	}
	start, ok1 := t.Column("tstart")
	stop, ok2 := t.Column("tstop")
	if !ok1 || !ok2 || !start.IsNumeric() || !stop.IsNumeric() {
		return nil, ErrNoIntervals
	}

	st := &Table{
		tstart: start.Floats,
		tstop:  stop.Floats,
		cols:   make(map[string]series.Series, len(t.Columns)),
	}
	for _, c := range t.Columns {
		s := series.Series{
			Times: st.tstart,
			Stops: st.tstop,
			Unit:  units.UnitFor("states", c.Name),
		}
		if c.IsNumeric() {
			s.Values = c.Floats
		} else {
			s.Strings = c.Strings
		}
		st.add(strings.ToLower(c.Name), s)
	}
	st.deriveOffNomRoll()
	return st, nil
}

// Read parses a states.dat file from r.
func Read(r io.Reader) (*Table, error) {
	t, err := asciitable.Read(r, false)
	if err != nil {
		return nil, fmt.Errorf("states: %w", err)
	}
	return FromASCII(t)
}

// ReadFile parses the states file at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("states: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func (st *Table) add(name string, s series.Series) {
	if _, dup := st.cols[name]; !dup {
		st.order = append(st.order, name)
	}
	st.cols[name] = s
}

func (st *Table) deriveOffNomRoll() {
	if _, ok := st.cols["off_nom_roll"]; ok {
		return
	}
	var q [4][]float64
	for i, name := range []string{"q1", "q2", "q3", "q4"} {
		c, ok := st.cols[name]
		if !ok || c.IsString() {
			return
		}
		q[i] = c.Values
	}
	quats := make([]attitude.Quat, len(st.tstart))
	for i := range quats {
		quats[i] = attitude.Quat{q[0][i], q[1][i], q[2][i], q[3][i]}
	}
	st.add("off_nom_roll", series.Series{
		Times:  st.tstart,
		Stops:  st.tstop,
		Values: attitude.CalcOffNomRolls(st.tstart, st.tstop, quats),
		Unit:   units.Deg,
	})
}

// Keys returns the state names in file order.
func (st *Table) Keys() []string {
	out := make([]string, len(st.order))
	copy(out, st.order)
	return out
}

// Get returns one state.
func (st *Table) Get(name string) (series.Series, bool) {
	s, ok := st.cols[strings.ToLower(name)]
	return s, ok
}

// Len returns the number of intervals.
func (st *Table) Len() int { return len(st.tstart) }

// Intervals returns the interval start and stop times.
func (st *Table) Intervals() (tstart, tstop []float64) {
	return st.tstart, st.tstop
}

// Select keeps only the named states (plus tstart/tstop and the date
// columns) and returns a new table.
func (st *Table) Select(names []string) *Table {
	keep := map[string]bool{"tstart": true, "tstop": true, "datestart": true, "datestop": true}
	for _, n := range names {
		keep[strings.ToLower(n)] = true
	}
	out := &Table{tstart: st.tstart, tstop: st.tstop, cols: map[string]series.Series{}}
	for _, n := range st.order {
		if keep[n] {
			out.add(n, st.cols[n])
		}
	}
	return out
}

// At returns every state in force at CXC time secs. Numeric states map to
// float64 and string states to string.
func (st *Table) At(secs float64) map[string]any {
	out := make(map[string]any, len(st.cols))
	for name, s := range st.cols {
		if s.IsString() {
			out[name] = s.StringAt(secs)
		} else {
			out[name] = s.ValueAt(secs)
		}
	}
	return out
}

// AtDate is At for a Chandra date string.
func (st *Table) AtDate(date string) (map[string]any, error) {
	secs, err := cxotime.Parse(date)
	if err != nil {
		return nil, err
	}
	return st.At(secs), nil
}

// Current returns the states in force now according to clock.
func (st *Table) Current(clock timeutil.Clock) map[string]any {
	return st.At(cxotime.Now(clock))
}

// ASCII converts the table back to an asciitable.Table in key order.
func (st *Table) ASCII() *asciitable.Table {
	cols := make([]asciitable.Column, 0, len(st.order))
	for _, n := range st.order {
		s := st.cols[n]
		cols = append(cols, asciitable.Column{Name: n, Floats: s.Values, Strings: s.Strings})
	}
	return asciitable.New(cols...)
}

// WriteASCII writes the table in states.dat layout.
func (st *Table) WriteASCII(w io.Writer) error {
	return st.ASCII().Write(w)
}

// Records returns one name -> value map per interval.
func (st *Table) Records() []map[string]any {
	return st.ASCII().Records()
}
