package seriescache

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acisops/acispy/internal/fsutil"
	"github.com/acisops/acispy/internal/monitoring"
	"github.com/acisops/acispy/internal/series"
	"github.com/acisops/acispy/internal/timeutil"
)

func openTestCache(t *testing.T, fsys fsutil.FileSystem) *Cache {
	t.Helper()
	c, err := Open(Options{InMemory: true, FS: fsys, Logf: monitoring.Nop})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCodec(t *testing.T) {
	tests := []struct {
		name string
		s    series.Series
	}{
		{"numeric", series.Numeric([]float64{1, 2, 3}, []float64{0.5, math.Inf(1), -7}, "deg_C")},
		{"stepwise strings", series.Series{
			Times:   []float64{0, 10},
			Stops:   []float64{10, 20},
			Strings: []string{"NPNT", ""},
		}},
		{"masked", series.Series{
			Times:  []float64{1, 2},
			Values: []float64{3, 4},
			Mask:   []bool{true, false},
			Unit:   "W",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSeries(encodeSeries(tt.s))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.s, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}

	nan, err := decodeSeries(encodeSeries(series.Numeric([]float64{1}, []float64{math.NaN()}, "")))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(nan.Values[0]))
}

func TestCodec_Corrupt(t *testing.T) {
	good := encodeSeries(series.Numeric([]float64{1, 2}, []float64{3, 4}, "V"))
	for _, data := range [][]byte{nil, good[:len(good)-1], append(append([]byte{}, good...), 0)} {
		_, err := decodeSeries(data)
		assert.ErrorIs(t, err, errCorrupt)
	}
}

func TestPutGet(t *testing.T) {
	c := openTestCache(t, nil)
	k := Key{Path: "/data/tl.dat", ModTime: 42, Column: "1dpamzt"}

	_, ok, err := c.Get(k)
	require.NoError(t, err)
	assert.False(t, ok)

	want := series.Numeric([]float64{1, 2}, []float64{20, 21}, "deg_C")
	require.NoError(t, c.Put(k, want))
	got, ok, err := c.Get(k)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	k.ModTime = 43
	_, ok, err = c.Get(k)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC))
	mem := fsutil.NewMemoryFileSystem(clock)
	require.NoError(t, mem.WriteFile("/data/tl.dat", []byte("x"), 0o644))
	c := openTestCache(t, mem)

	calls := 0
	parse := func() ([]Column, error) {
		calls++
		return []Column{
			{Name: "1dpamzt", Series: series.Numeric([]float64{1}, []float64{float64(calls)}, "deg_C")},
			{Name: "1dpicacu", Series: series.Numeric([]float64{1}, []float64{2}, "A")},
		}, nil
	}

	cols, err := c.LoadFile("/data/tl.dat", parse)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	cols, err = c.LoadFile("/data/tl.dat", parse)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "1dpamzt", cols[0].Name)
	assert.Equal(t, []float64{1}, cols[0].Series.Values)

	clock.Advance(time.Minute)
	require.NoError(t, mem.WriteFile("/data/tl.dat", []byte("y"), 0o644))
	cols, err = c.LoadFile("/data/tl.dat", parse)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []float64{2}, cols[0].Series.Values)

	boom := errors.New("boom")
	_, err = c.LoadFile("/data/missing.dat", parse)
	assert.Error(t, err)
	clock.Advance(time.Minute)
	require.NoError(t, mem.WriteFile("/data/tl.dat", []byte("z"), 0o644))
	_, err = c.LoadFile("/data/tl.dat", func() ([]Column, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestOpen_NoDir(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)
}
