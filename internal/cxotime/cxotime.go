// Package cxotime converts between Chandra (CXC) time, UTC and the date
// formats used in ACIS products.
//
// CXC time is the number of TT seconds since 1998-01-01T00:00:00 TT. UTC
// conversions account for the leap seconds inserted since 1994.
package cxotime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/acisops/acispy/internal/timeutil"
)

// ttMinusTAI is TT - TAI in seconds.
const ttMinusTAI = 32.184

// epoch is 1998-01-01T00:00:00 on a leap-second-free scale.
var epoch = time.Date(1998, 1, 1, 0, 0, 0, 0, time.UTC)

type leap struct {
	from time.Time
	taiUTC float64
}

// leaps lists TAI-UTC from each date onward.
var leaps = []leap{
	{time.Date(1994, 7, 1, 0, 0, 0, 0, time.UTC), 29},
	{time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), 30},
	{time.Date(1997, 7, 1, 0, 0, 0, 0, time.UTC), 31},
	{time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), 32},
	{time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC), 33},
	{time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), 34},
	{time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC), 35},
	{time.Date(2015, 7, 1, 0, 0, 0, 0, time.UTC), 36},
	{time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 37},
}

// TAIMinusUTC returns TAI-UTC in seconds at UTC instant t.
func TAIMinusUTC(t time.Time) float64 {
	d := leaps[0].taiUTC
	for _, l := range leaps {
		if t.Before(l.from) {
			break
		}
		d = l.taiUTC
	}
	return d
}

func secondsSince(t, ref time.Time) float64 {
	d := t.Sub(ref)
	return d.Seconds()
}

func addSeconds(ref time.Time, s float64) time.Time {
	whole := math.Floor(s)
	frac := s - whole
	return ref.Add(time.Duration(whole) * time.Second).Add(time.Duration(math.Round(frac * 1e9)))
}

// FromTime returns the CXC seconds for the UTC instant t.
func FromTime(t time.Time) float64 {
	t = t.UTC()
	return secondsSince(t, epoch) + TAIMinusUTC(t) + ttMinusTAI
}

// ToTime returns the UTC instant for CXC seconds secs.
func ToTime(secs float64) time.Time {
	naive := secs - ttMinusTAI
	guess := addSeconds(epoch, naive-TAIMinusUTC(addSeconds(epoch, naive-37)))
	// One refinement settles the offset except inside an inserted leap second.
	return addSeconds(epoch, naive-TAIMinusUTC(guess))
}

// Now returns the CXC seconds for clock's current time.
func Now(clock timeutil.Clock) float64 {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return FromTime(clock.Now())
}

// Format renders secs as a Chandra date string, YYYY:DOY:HH:MM:SS.sss.
func Format(secs float64) string {
	t := ToTime(secs).Round(time.Millisecond)
	ms := t.Nanosecond() / 1_000_000
	return fmt.Sprintf("%04d:%03d:%02d:%02d:%02d.%03d",
		t.Year(), t.YearDay(), t.Hour(), t.Minute(), t.Second(), ms)
}

// Parse reads a Chandra date string. The accepted forms are YYYY:DOY,
// YYYY:DOY:HH:MM and YYYY:DOY:HH:MM:SS[.sss]; an ISO-8601 date-time
// (2006-01-02T15:04:05) is also accepted.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "T") || strings.Count(s, "-") == 2 {
		for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return FromTime(t), nil
			}
		}
		return 0, fmt.Errorf("cxotime: invalid ISO date %q", s)
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 5 || len(parts) == 3 {
		return 0, fmt.Errorf("cxotime: invalid date %q", s)
	}
	ints := make([]int, 4)
	for i, p := range parts[:min(len(parts), 4)] {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("cxotime: invalid date %q: %w", s, err)
		}
		ints[i] = v
	}
	var sec float64
	if len(parts) == 5 {
		v, err := strconv.ParseFloat(parts[4], 64)
		if err != nil {
			return 0, fmt.Errorf("cxotime: invalid seconds in %q: %w", s, err)
		}
		sec = v
	}
	year, doy, hour, minute := ints[0], ints[1], ints[2], ints[3]
	daysInYear := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC).YearDay()
	if doy < 1 || doy > daysInYear || hour < 0 || hour > 23 || minute < 0 || minute > 59 || sec < 0 || sec >= 61 {
		return 0, fmt.Errorf("cxotime: date out of range %q", s)
	}
	t := time.Date(year, 1, doy, hour, minute, 0, 0, time.UTC)
	return FromTime(t) + sec, nil
}

// MustParse is Parse for constants; it panics on error.
func MustParse(s string) float64 {
	secs, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return secs
}

// plotEpoch is the zero of plot dates: days since 1970-01-01 UTC, the
// default epoch of date axes in current plotting tools.
var plotEpoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// ToPlotDate converts CXC seconds to plot-date days.
func ToPlotDate(secs float64) float64 {
	return secondsSince(ToTime(secs), plotEpoch) / 86400
}

// FromPlotDate converts plot-date days to CXC seconds.
func FromPlotDate(days float64) float64 {
	return FromTime(addSeconds(plotEpoch, days*86400))
}

// PlotDateToCXC converts plot dates to CXC seconds. Only the first date is
// converted through UTC; later dates keep their spacing from it, so the
// result is a uniform time base even across a leap second.
func PlotDateToCXC(dates []float64) []float64 {
	out := make([]float64, len(dates))
	if len(dates) == 0 {
		return out
	}
	secs0 := FromPlotDate(dates[0])
	for i, d := range dates {
		out[i] = (d-dates[0])*86400 + secs0
	}
	return out
}

// FormatAll formats a slice of CXC seconds.
func FormatAll(secs []float64) []string {
	out := make([]string, len(secs))
	for i, s := range secs {
		out[i] = Format(s)
	}
	return out
}
