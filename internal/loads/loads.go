// Package loads resolves ACIS load week names (JAN1116, JAN1116A) in a
// load review tree laid out as <root>/<year>/<week>/ofls<letter>.
package loads

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/acisops/acispy/internal/fsutil"
)

// ErrBadName is returned for a name that is not a 7 or 8 character load
// name.
var ErrBadName = errors.New("loads: invalid load name")

// Week returns the seven character week part of name, upper-cased.
func Week(name string) (string, error) {
	if len(name) != 7 && len(name) != 8 {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return strings.ToUpper(name[:7]), nil
}

// WeekDir returns <root>/20YY/<week> for a load name.
func WeekDir(root, name string) (string, error) {
	week, err := Week(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "20"+week[5:7], week), nil
}

// FindLoad resolves name to a full load name. A seven character week name
// gets the upper-cased last letter of the last entry, in name order, of
// its week directory. An eight character name is returned as given once
// the week directory is found.
func FindLoad(fsys fsutil.FileSystem, root, name string) (string, error) {
	dir, err := WeekDir(root, name)
	if err != nil {
		return "", err
	}
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("loads: %w", err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("loads: %s is empty", dir)
	}
	if len(name) == 8 {
		return name, nil
	}
	last := entries[len(entries)-1].Name()
	letter := strings.ToUpper(last[len(last)-1:])
	return strings.ToUpper(name) + letter, nil
}

// Dir returns the ofls directory of a full load name.
func Dir(root, load string) (string, error) {
	if len(load) != 8 {
		return "", fmt.Errorf("%w: %q needs a revision letter", ErrBadName, load)
	}
	week, err := WeekDir(root, load)
	if err != nil {
		return "", err
	}
	return filepath.Join(week, "ofls"+strings.ToLower(load[7:])), nil
}
