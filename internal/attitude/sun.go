package attitude

import "math"

// jdAtEpoch is the Julian date (TT) at CXC time zero.
const jdAtEpoch = 2450814.5

// SunPosition returns the apparent solar RA and Dec in degrees at CXC time
// secs, using the low-precision formulae of the Astronomical Almanac
// (accurate to about 0.01 deg between 1950 and 2050).
func SunPosition(secs float64) (ra, dec float64) {
	n := jdAtEpoch + secs/86400 - 2451545.0
	l := math.Mod(280.460+0.9856474*n, 360)
	g := math.Mod(357.528+0.9856003*n, 360) / deg
	lambda := (l + 1.915*math.Sin(g) + 0.020*math.Sin(2*g)) / deg
	eps := (23.439 - 0.0000004*n) / deg

	ra = math.Atan2(math.Cos(eps)*math.Sin(lambda), math.Cos(lambda)) * deg
	if ra < 0 {
		ra += 360
	}
	dec = math.Asin(math.Sin(eps)*math.Sin(lambda)) * deg
	return ra, dec
}
