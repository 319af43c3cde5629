// Package units holds the physical units of ACIS telemetry fields and the
// few conversions the toolkit needs.
package units

import (
	"strings"
)

// Unit constants
const (
	DegC  = "deg_C"
	DegF  = "deg_F"
	K     = "K"
	V     = "V"
	A     = "A"
	W     = "W"
	Deg   = "deg"
	S     = "s"
	Steps = "steps"
	MM    = "mm"
	None  = ""
)

// TemperatureUnits contains the valid temperature units.
var TemperatureUnits = []string{DegC, DegF, K}

// IsTemperature checks if the given unit is a temperature unit.
func IsTemperature(unit string) bool {
	for _, u := range TemperatureUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// ConvertTemperature converts v from one temperature unit to another.
// Unknown units return v unchanged with ok false.
func ConvertTemperature(v float64, from, to string) (out float64, ok bool) {
	if !IsTemperature(from) || !IsTemperature(to) {
		return v, false
	}
	var c float64
	switch from {
	case DegC:
		c = v
	case DegF:
		c = (v - 32) * 5 / 9
	case K:
		c = v - 273.15
	}
	switch to {
	case DegF:
		return c*9/5 + 32, true
	case K:
		return c + 273.15, true
	default:
		return c, true
	}
}

// Power returns electrical power in watts.
func Power(volts, amps float64) float64 {
	return volts * amps
}

// SIMStepsPerMM converts the SIM translation table position (3TSCPOS, mm)
// into motor steps.
const SIMStepsPerMM = 397.7225924607

// msidUnits lists MSIDs whose unit is not implied by their name.
var msidUnits = map[string]string{
	"1deamzt":  DegC,
	"1dpamzt":  DegC,
	"1pdeaat":  DegC,
	"1pin1at":  DegC,
	"1pdeabt":  DegC,
	"fptemp":   DegC,
	"1dp28avo": V,
	"1dp28bvo": V,
	"1dpicacu": A,
	"1dpicbcu": A,
	"1dpp0avo": V,
	"1dpp0bvo": V,
	"1de28avo": V,
	"1de28bvo": V,
	"1dep3avo": V,
	"1dep2avo": V,
	"1dep1avo": V,
	"1dep0avo": V,
	"1den1avo": V,
	"1den0avo": V,
	"1dep3bvo": V,
	"1deicacu": A,
	"1deicbcu": A,
	"3tscpos":  MM,
}

var stateUnits = map[string]string{
	"ra":           Deg,
	"dec":          Deg,
	"roll":         Deg,
	"pitch":        Deg,
	"off_nom_roll": Deg,
	"simpos":       Steps,
	"simfa_pos":    Steps,
	"tstart":       S,
	"tstop":        S,
}

// UnitFor returns the unit of a field given its type ("msids", "states",
// "model", "model0", ...) and name. Model fields share the MSID table.
func UnitFor(ftype, name string) string {
	ftype = strings.ToLower(ftype)
	name = strings.ToLower(name)
	switch {
	case ftype == "states":
		return stateUnits[name]
	case ftype == "msids", strings.HasPrefix(ftype, "model"):
		if u, ok := msidUnits[name]; ok {
			return u
		}
		// Thermistor naming convention.
		if strings.HasSuffix(name, "mzt") || strings.HasSuffix(name, "at") {
			return DegC
		}
	}
	return None
}

// Label returns a human-readable axis label for a unit.
func Label(unit string) string {
	switch unit {
	case DegC:
		return "°C"
	case DegF:
		return "°F"
	case Deg:
		return "deg"
	default:
		return unit
	}
}

// Quantity returns the physical quantity measured in unit, used to title
// plot axes. Unknown units return "".
func Quantity(unit string) string {
	switch unit {
	case DegC, DegF, K:
		return "Temperature"
	case V:
		return "Voltage"
	case A:
		return "Current"
	case W:
		return "Power"
	case Deg:
		return "Angle"
	}
	return ""
}
