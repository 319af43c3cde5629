// Package statecodes decodes discrete telemetry values (state codes such as
// "ON" or "NPNT") into the numeric raw counts used for plotting.
package statecodes

import (
	"context"
	"errors"
	"sort"

	"github.com/acisops/acispy/internal/monitoring"
)

// Unmapped is the code assigned to a value that has no entry in a table.
const Unmapped = -1

var (
	// ErrUnknownMSID is returned by a Lookup that has no record of the MSID.
	ErrUnknownMSID = errors.New("statecodes: unknown msid")
	// ErrNoStateCodes is returned by a Lookup when the MSID exists but is not
	// a discrete (state-valued) measurement.
	ErrNoStateCodes = errors.New("statecodes: msid has no state codes")
)

// Entry is one row of a telemetry database state-code table.
type Entry struct {
	StateCode   string
	LowRawCount int
}

// Lookup is the telemetry database query used to build state-code tables.
type Lookup interface {
	StateCodes(ctx context.Context, msid string) ([]Entry, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, msid string) ([]Entry, error)

// StateCodes calls f.
func (f LookupFunc) StateCodes(ctx context.Context, msid string) ([]Entry, error) {
	return f(ctx, msid)
}

// Table maps state strings to raw counts, ordered by ascending count.
// The zero Table is empty.
type Table struct {
	entries []Entry
	index   map[string]int
}

// NewTable builds a table from entries, sorting them by raw count. When a
// state string appears more than once the entry with the higher count wins.
func NewTable(entries []Entry) Table {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LowRawCount < sorted[j].LowRawCount
	})
	idx := make(map[string]int, len(sorted))
	for _, e := range sorted {
		idx[e.StateCode] = e.LowRawCount
	}
	return Table{entries: sorted, index: idx}
}

// FromMap builds a table from a state -> count map.
func FromMap(m map[string]int) Table {
	entries := make([]Entry, 0, len(m))
	for k, v := range m {
		entries = append(entries, Entry{StateCode: k, LowRawCount: v})
	}
	// Map iteration order is random; break count ties by name.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LowRawCount != entries[j].LowRawCount {
			return entries[i].LowRawCount < entries[j].LowRawCount
		}
		return entries[i].StateCode < entries[j].StateCode
	})
	return NewTable(entries)
}

// Code returns the raw count for state.
func (t Table) Code(state string) (int, bool) {
	c, ok := t.index[state]
	return c, ok
}

// Len returns the number of entries.
func (t Table) Len() int { return len(t.entries) }

// Entries returns a copy of the entries in ascending count order.
func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// States returns the state strings in ascending count order.
func (t Table) States() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.StateCode
	}
	return out
}

// Map returns the table as a plain map.
func (t Table) Map() map[string]int {
	out := make(map[string]int, len(t.index))
	for k, v := range t.index {
		out[k] = v
	}
	return out
}

// GetStateCodes queries lookup for the state-code table of msid.
//
// The second result is false when no table is available: the MSID is
// unknown, it is not a discrete measurement, it has an empty table, lookup
// is nil, or the query failed. Failures are logged with logf and never
// returned.
func GetStateCodes(ctx context.Context, lookup Lookup, msid string, logf monitoring.Logger) (Table, bool) {
	logf = monitoring.OrDefault(logf)
	if lookup == nil {
		return Table{}, false
	}
	entries, err := lookup.StateCodes(ctx, msid)
	switch {
	case errors.Is(err, ErrUnknownMSID), errors.Is(err, ErrNoStateCodes):
		return Table{}, false
	case err != nil:
		logf("state code lookup for %s failed: %v", msid, err)
		return Table{}, false
	case len(entries) == 0:
		return Table{}, false
	}
	return NewTable(entries), true
}

// ConvertStateCode maps each value through table. Values missing from the
// table become Unmapped.
func ConvertStateCode(table Table, values []string) []int {
	out := make([]int, len(values))
	for i, v := range values {
		if c, ok := table.Code(v); ok {
			out[i] = c
		} else {
			out[i] = Unmapped
		}
	}
	return out
}
