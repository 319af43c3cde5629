package dataset

import (
	"strings"

	"github.com/acisops/acispy/internal/states"
)

// DisplayName returns the plot label of a field. Model fields read
// "<NAME> Model" with the model index appended for model0, model1, ...;
// states use their label, and everything else is the upper-cased name.
func DisplayName(ftype, name string) string {
	ftype = strings.ToLower(ftype)
	switch {
	case strings.HasPrefix(ftype, "model"):
		dn := strings.ToUpper(name) + " Model"
		if ftype != "model" {
			dn += ftype[len(ftype)-1:]
		}
		return dn
	case ftype == "states":
		if l := states.Labels[strings.ToLower(name)]; l != "" {
			return l
		}
	}
	return strings.ToUpper(name)
}
