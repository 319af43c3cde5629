package states

// Labels are the display names of states. A missing or empty label means
// the state is not normally plotted.
var Labels = map[string]string{
	"ccd_count":    "CCD Count",
	"clocking":     "Clocking",
	"ra":           "RA",
	"dec":          "Dec",
	"dither":       "Dither",
	"fep_count":    "FEP Count",
	"hetg":         "HETG",
	"letg":         "LETG",
	"obsid":        "ObsID",
	"pcad_mode":    "PCAD Mode",
	"pitch":        "Pitch",
	"power_cmd":    "Power Command",
	"roll":         "Roll",
	"si_mode":      "SI Mode",
	"simpos":       "SIM-Z",
	"q1":           "q1",
	"q2":           "q2",
	"q3":           "q3",
	"q4":           "q4",
	"targ_q1":      "target q1",
	"targ_q2":      "target q2",
	"targ_q3":      "target q3",
	"targ_q4":      "target q4",
	"vid_board":    "Video Board",
	"off_nom_roll": "Off-Nominal Roll",
	"tstart":       "Start Time",
	"tstop":        "Stop Time",
	"datestart":    "Start Date",
	"datestop":     "Stop Date",
	"date":         "Date",
	"time":         "Time",
	"hrc_15v":      "HRC 15V",
	"hrc_24v":      "HRC 24V",
	"hrc_i":        "HRC-I",
	"hrc_s":        "HRC-S",
	"dh_heater":    "Detector Housing Heater",
	"eclipse":      "Eclipse",
}

// CTISIModes are the SI modes of CTI measurement runs.
var CTISIModes = []string{
	"TE_007AC", "TE_00B26", "TE_007AE",
	"TE_00CA8", "TE_00C60", "TN_000B4",
	"TN_000B6", "TE_00C62",
}

// IsCTIMode reports whether siMode is a CTI measurement mode.
func IsCTIMode(siMode string) bool {
	for _, m := range CTISIModes {
		if m == siMode {
			return true
		}
	}
	return false
}
