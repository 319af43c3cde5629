package statecodes

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	tables map[string][]Entry
	errs   map[string]error
	calls  map[string]int
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		tables: map[string][]Entry{},
		errs:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeLookup) StateCodes(_ context.Context, msid string) ([]Entry, error) {
	f.calls[msid]++
	if err, ok := f.errs[msid]; ok {
		return nil, err
	}
	if t, ok := f.tables[msid]; ok {
		return t, nil
	}
	return nil, ErrUnknownMSID
}

func TestNewTable_SortsByCode(t *testing.T) {
	tbl := NewTable([]Entry{{"NSUN", 3}, {"STBY", 0}, {"NPNT", 1}})
	assert.Equal(t, []string{"STBY", "NPNT", "NSUN"}, tbl.States())
	assert.Equal(t, 3, tbl.Len())

	code, ok := tbl.Code("NPNT")
	require.True(t, ok)
	assert.Equal(t, 1, code)

	_, ok = tbl.Code("RMAN")
	assert.False(t, ok)
	assert.Equal(t, map[string]int{"STBY": 0, "NPNT": 1, "NSUN": 3}, tbl.Map())
}

func TestFromMap_DeterministicOrder(t *testing.T) {
	tbl := FromMap(map[string]int{"B": 1, "A": 1, "C": 0})
	assert.Equal(t, []string{"C", "A", "B"}, tbl.States())
}

func TestGetStateCodes(t *testing.T) {
	ctx := context.Background()
	lookup := newFakeLookup()
	lookup.tables["1STAT1ST"] = []Entry{{"OFF", 0}, {"ON", 1}}
	lookup.tables["EMPTY"] = nil
	lookup.errs["1DPAMZT"] = ErrNoStateCodes
	lookup.errs["BROKEN"] = errors.New("disk I/O error")
	lookup.errs["WRAPPED"] = fmt.Errorf("tdb: %w", ErrNoStateCodes)

	var logged []string
	logf := func(format string, v ...interface{}) { logged = append(logged, fmt.Sprintf(format, v...)) }

	t.Run("discrete msid", func(t *testing.T) {
		tbl, ok := GetStateCodes(ctx, lookup, "1STAT1ST", logf)
		require.True(t, ok)
		assert.Equal(t, []string{"OFF", "ON"}, tbl.States())
	})

	for _, msid := range []string{"1DPAMZT", "UNKNOWN", "EMPTY", "WRAPPED"} {
		t.Run("not available "+msid, func(t *testing.T) {
			tbl, ok := GetStateCodes(ctx, lookup, msid, logf)
			assert.False(t, ok)
			assert.Equal(t, 0, tbl.Len())
		})
	}
	assert.Empty(t, logged, "expected lookup misses should not be logged")

	t.Run("unexpected error is logged not returned", func(t *testing.T) {
		_, ok := GetStateCodes(ctx, lookup, "BROKEN", logf)
		assert.False(t, ok)
		require.Len(t, logged, 1)
		assert.Contains(t, logged[0], "disk I/O error")
	})

	t.Run("nil lookup", func(t *testing.T) {
		_, ok := GetStateCodes(ctx, nil, "1STAT1ST", logf)
		assert.False(t, ok)
	})
}

func TestConvertStateCode(t *testing.T) {
	tbl := FromMap(map[string]int{"ON": 1, "OFF": 0})
	assert.Equal(t, []int{1, 0, -1}, ConvertStateCode(tbl, []string{"ON", "OFF", "UNKNOWN"}))
	assert.Equal(t, []int{-1, -1}, ConvertStateCode(Table{}, []string{"ON", "OFF"}))
	assert.Equal(t, []int{}, ConvertStateCode(tbl, nil))
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	lookup := newFakeLookup()
	lookup.tables["1STAT1ST"] = []Entry{{"OFF", 0}, {"ON", 1}}
	lookup.errs["1DPAMZT"] = ErrNoStateCodes

	c := NewCache(lookup, func(string, ...interface{}) {})
	RegisterCommanded(c)

	t.Run("msids looked up once", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			tbl, ok := c.Get(ctx, Key{"msids", "1stat1st"})
			require.True(t, ok)
			assert.Equal(t, 2, tbl.Len())
		}
		assert.Equal(t, 1, lookup.calls["1STAT1ST"])
	})

	t.Run("misses are cached", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			_, ok := c.Get(ctx, Key{"msids", "1dpamzt"})
			assert.False(t, ok)
		}
		assert.Equal(t, 1, lookup.calls["1DPAMZT"])
	})

	t.Run("commanded states registered", func(t *testing.T) {
		tbl, ok := c.Get(ctx, Key{"States", "PCAD_MODE"})
		require.True(t, ok)
		code, _ := tbl.Code("NMAN")
		assert.Equal(t, 2, code)
	})

	t.Run("non msids fields never hit lookup", func(t *testing.T) {
		_, ok := c.Get(ctx, Key{"model", "1stat1st"})
		assert.False(t, ok)
		assert.Equal(t, 1, lookup.calls["1STAT1ST"])
	})

	t.Run("keys lists available tables", func(t *testing.T) {
		keys := c.Keys()
		assert.Contains(t, keys, Key{"msids", "1stat1st"})
		assert.Contains(t, keys, Key{"states", "hetg"})
		assert.NotContains(t, keys, Key{"msids", "1dpamzt"})
	})
}

func TestLookupFunc(t *testing.T) {
	var l Lookup = LookupFunc(func(_ context.Context, msid string) ([]Entry, error) {
		return []Entry{{msid, 7}}, nil
	})
	tbl, ok := GetStateCodes(context.Background(), l, "X", nil)
	require.True(t, ok)
	code, _ := tbl.Code("X")
	assert.Equal(t, 7, code)
}
