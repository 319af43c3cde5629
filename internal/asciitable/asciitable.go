// Package asciitable reads and writes the whitespace-separated text tables
// used for ACIS products (states.dat, temperatures.dat, msid dumps).
//
// The first non-blank, non-comment line names the columns. Fields are
// separated by runs of spaces or tabs; a field may be double-quoted to hold
// spaces or to be empty. Lines starting with '#' are comments.
package asciitable

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoHeader is returned when the input has no header line.
var ErrNoHeader = errors.New("asciitable: missing header line")

// Column is one named column. A column is numeric when every value parses
// as a float; otherwise it holds strings.
type Column struct {
	Name    string
	Floats  []float64
	Strings []string
}

// IsNumeric reports whether the column holds numbers.
func (c Column) IsNumeric() bool { return c.Strings == nil }

// Len returns the number of rows in the column.
func (c Column) Len() int {
	if c.Strings != nil {
		return len(c.Strings)
	}
	return len(c.Floats)
}

// Table is an ordered set of equal-length columns.
type Table struct {
	Columns []Column
	index   map[string]int
}

// New builds a table from columns.
func New(cols ...Column) *Table {
	t := &Table{Columns: cols}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c.Name] = i
	}
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Drop removes a column if present.
func (t *Table) Drop(name string) {
	i, ok := t.index[name]
	if !ok {
		return
	}
	t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
	t.reindex()
}

// Record returns row i as a name -> value map. Values are float64 or string.
func (t *Table) Record(i int) map[string]any {
	rec := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		if c.IsNumeric() {
			rec[c.Name] = c.Floats[i]
		} else {
			rec[c.Name] = c.Strings[i]
		}
	}
	return rec
}

// Records returns every row as a record.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, t.Rows())
	for i := range out {
		out[i] = t.Record(i)
	}
	return out
}

// Split breaks a line into whitespace-separated fields, honouring double
// quotes.
func Split(line string) []string {
	var (
		fields []string
		cur    strings.Builder
		inQ    bool
		quoted bool
	)
	flush := func() {
		if cur.Len() > 0 || quoted {
			fields = append(fields, cur.String())
		}
		cur.Reset()
		quoted = false
	}
	for _, r := range line {
		switch {
		case r == '"':
			inQ = !inQ
			quoted = true
		case !inQ && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}

// Read parses a table. Rows whose field count differs from the header are
// skipped when skipBad is true and are an error otherwise.
func Read(r io.Reader, skipBad bool) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var header []string
	var raw [][]string
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := Split(line)
		if header == nil {
			header = fields
			continue
		}
		if len(fields) != len(header) {
			if skipBad {
				continue
			}
			return nil, fmt.Errorf("asciitable: line %d: got %d fields, want %d", lineNo, len(fields), len(header))
		}
		raw = append(raw, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("asciitable: read: %w", err)
	}
	if header == nil {
		return nil, ErrNoHeader
	}

	cols := make([]Column, len(header))
	for j, name := range header {
		cols[j] = parseColumn(name, raw, j)
	}
	return New(cols...), nil
}

func parseColumn(name string, raw [][]string, j int) Column {
	floats := make([]float64, len(raw))
	for i, row := range raw {
		v, err := strconv.ParseFloat(row[j], 64)
		if err != nil {
			strs := make([]string, len(raw))
			for k, r := range raw {
				strs[k] = r[j]
			}
			return Column{Name: name, Strings: strs}
		}
		floats[i] = v
	}
	return Column{Name: name, Floats: floats}
}

// Write renders the table with a header line. Strings containing spaces, or
// empty strings, are quoted.
func (t *Table) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(t.Names(), " ") + "\n"); err != nil {
		return err
	}
	fields := make([]string, len(t.Columns))
	for i := 0; i < t.Rows(); i++ {
		for j, c := range t.Columns {
			if c.IsNumeric() {
				fields[j] = strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
			} else {
				fields[j] = quote(c.Strings[i])
			}
		}
		if _, err := bw.WriteString(strings.Join(fields, " ") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
