package statecodes

// CommandedStateCodes are the fixed tables for string-valued commanded
// states, keyed by state name.
var CommandedStateCodes = map[string]map[string]int{
	"hetg":      {"RETR": 0, "INSR": 1},
	"letg":      {"RETR": 0, "INSR": 1},
	"grating":   {"NONE": 0, "LETG": 1, "HETG": 2},
	"dither":    {"DISA": 0, "ENAB": 1},
	"pcad_mode": {"STBY": 0, "NPNT": 1, "NMAN": 2, "NSUN": 3, "PWRF": 4, "RMAN": 5, "NULL": 6},
}

// RegisterCommanded adds every CommandedStateCodes table to c under the
// "states" field type.
func RegisterCommanded(c *Cache) {
	for name, m := range CommandedStateCodes {
		c.Set(Key{Type: "states", Name: name}, FromMap(m))
	}
}
