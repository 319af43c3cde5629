// Package msids holds sampled engineering telemetry: one series per MSID,
// each with its own time base.
package msids

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/acisops/acispy/internal/asciitable"
	"github.com/acisops/acispy/internal/series"
	"github.com/acisops/acispy/internal/units"
)

// TracelogEpochOffset is subtracted from a tracelog TIME column to obtain
// CXC seconds.
const TracelogEpochOffset = 410227200.0

// Set is a collection of MSID series keyed by lower-case MSID name.
type Set struct {
	data  map[string]series.Series
	order []string
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{data: make(map[string]series.Series)}
}

// Add stores s under msid, replacing any previous series.
func (m *Set) Add(msid string, s series.Series) {
	msid = strings.ToLower(msid)
	if _, ok := m.data[msid]; !ok {
		m.order = append(m.order, msid)
	}
	if s.Unit == "" {
		s.Unit = units.UnitFor("msids", msid)
	}
	m.data[msid] = s
}

// Get returns the series for msid.
func (m *Set) Get(msid string) (series.Series, bool) {
	s, ok := m.data[strings.ToLower(msid)]
	return s, ok
}

// Keys returns the MSIDs in insertion order.
func (m *Set) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of MSIDs.
func (m *Set) Len() int { return len(m.order) }

// FromTracelog parses a tracelog dump: a header line of MSID names, one of
// which is TIME, followed by whitespace-separated numeric rows. Rows with the
// wrong number of fields are skipped. Every MSID shares the TIME column,
// shifted by offset to CXC seconds.
func FromTracelog(r io.Reader, offset float64) (*Set, error) {
	tbl, err := asciitable.Read(r, true)
	if err != nil {
		return nil, fmt.Errorf("msids: tracelog: %w", err)
	}
	var times []float64
	for _, c := range tbl.Columns {
		if strings.EqualFold(c.Name, "time") {
			if !c.IsNumeric() {
				return nil, fmt.Errorf("msids: tracelog TIME column is not numeric")
			}
			times = make([]float64, len(c.Floats))
			for i, t := range c.Floats {
				times[i] = t - offset
			}
		}
	}
	if times == nil {
		return nil, fmt.Errorf("msids: tracelog has no TIME column")
	}

	set := NewSet()
	for _, c := range tbl.Columns {
		if strings.EqualFold(c.Name, "time") {
			continue
		}
		if !c.IsNumeric() {
			return nil, fmt.Errorf("msids: tracelog column %s is not numeric", c.Name)
		}
		set.Add(c.Name, series.Numeric(times, c.Floats, ""))
	}
	return set, nil
}

// ReadTracelogFile parses the tracelog at path.
func ReadTracelogFile(path string, offset float64) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("msids: %w", err)
	}
	defer f.Close()
	return FromTracelog(f, offset)
}

// WriteASCII writes every MSID with a <msid>_times column beside it.
// MSIDs are written in name order.
func (m *Set) WriteASCII(w io.Writer) error {
	names := m.Keys()
	sort.Strings(names)

	rows := 0
	for _, n := range names {
		if l := m.data[n].Len(); l > rows {
			rows = l
		}
	}
	var cols []asciitable.Column
	for _, n := range names {
		s := m.data[n]
		if s.Len() != rows {
			return fmt.Errorf("msids: %s has %d samples, want %d for a common table", n, s.Len(), rows)
		}
		cols = append(cols,
			asciitable.Column{Name: n, Floats: s.Values, Strings: s.Strings},
			asciitable.Column{Name: n + "_times", Floats: s.Times},
		)
	}
	return asciitable.New(cols...).Write(w)
}
