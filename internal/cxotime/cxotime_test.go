package cxotime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acisops/acispy/internal/timeutil"
)

func TestFromTime_KnownValues(t *testing.T) {
	tests := []struct {
		name string
		utc  time.Time
		want float64
	}{
		{"epoch in UTC", time.Date(1997, 12, 31, 23, 58, 56, 816_000_000, time.UTC), 0},
		{"2000:001", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 63072064.184},
		{"2017:001", time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 599616069.184},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FromTime(tt.utc), 1e-6)
		})
	}
}

func TestTAIMinusUTC(t *testing.T) {
	assert.Equal(t, 31.0, TAIMinusUTC(time.Date(1998, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 32.0, TAIMinusUTC(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 36.0, TAIMinusUTC(time.Date(2016, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, 37.0, TAIMinusUTC(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestToTime_RoundTrip(t *testing.T) {
	for _, tm := range []time.Time{
		time.Date(1998, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2005, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2006, 1, 1, 0, 0, 1, 0, time.UTC),
		time.Date(2019, 7, 14, 12, 30, 15, 250_000_000, time.UTC),
	} {
		got := ToTime(FromTime(tm))
		assert.WithinDuration(t, tm, got, time.Microsecond, "round trip of %v", tm)
	}
}

func TestParseAndFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2000:001", "2000:001:00:00:00.000"},
		{"2000:001:12:30", "2000:001:12:30:00.000"},
		{"2016:366:23:59:59.500", "2016:366:23:59:59.500"},
		{"2019:045:01:02:03.25", "2019:045:01:02:03.250"},
		{"2019-02-14T01:02:03", "2019:045:01:02:03.000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			secs, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Format(secs))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "2000", "2000:001:12", "2000:400", "2019:366", "2019:366:00:00:00.000", "2000:001:25:00", "2000:001:-1:00", "abcd:001", "2000:001:00:00:xx", "2019-13-45T00:00:00"} {
		_, err := Parse(in)
		assert.Error(t, err, "Parse(%q)", in)
	}
}

func TestMustParse(t *testing.T) {
	assert.InDelta(t, 63072064.184, MustParse("2000:001"), 1e-6)
	assert.Panics(t, func() { MustParse("bogus") })
}

func TestPlotDates(t *testing.T) {
	secs := MustParse("2020:100:06:00:00")
	pd := ToPlotDate(secs)
	assert.InDelta(t, secs, FromPlotDate(pd), 1e-3)

	// 2020-04-09 is day 18361 since 1970-01-01.
	assert.InDelta(t, 18361.25, pd, 1e-9)
}

func TestPlotDateToCXC(t *testing.T) {
	base := ToPlotDate(MustParse("2020:100"))
	got := PlotDateToCXC([]float64{base, base + 0.5, base + 1})
	require.Len(t, got, 3)
	assert.InDelta(t, MustParse("2020:100"), got[0], 1e-3)
	assert.InDelta(t, 43200, got[1]-got[0], 1e-6)
	assert.InDelta(t, 86400, got[2]-got[0], 1e-6)
	assert.Empty(t, PlotDateToCXC(nil))
}

func TestNow(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.InDelta(t, 63072064.184, Now(clock), 1e-6)
}

func TestFormatAll(t *testing.T) {
	got := FormatAll([]float64{MustParse("2000:001"), MustParse("2000:002")})
	assert.Equal(t, []string{"2000:001:00:00:00.000", "2000:002:00:00:00.000"}, got)
}
