package testutil

import (
	"errors"
	"math"
	"os"
	"testing"
)

func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	AssertError(t, errors.New("boom"))
}

func TestFloatsClose(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"equal", []float64{1, 2}, []float64{1, 2}, true},
		{"within tol", []float64{1, 2}, []float64{1.0001, 2}, true},
		{"outside tol", []float64{1, 2}, []float64{1.1, 2}, false},
		{"length", []float64{1}, []float64{1, 2}, false},
		{"nan matches nan", []float64{nan}, []float64{nan}, true},
		{"nan vs number", []float64{nan}, []float64{0}, false},
		{"both empty", nil, []float64{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FloatsClose(tt.a, tt.b, 1e-3); got != tt.want {
				t.Errorf("FloatsClose = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTempFiles(t *testing.T) {
	path := WriteFile(t, "sub/states.dat", "tstart tstop\n")
	data, err := os.ReadFile(path)
	AssertNoError(t, err)
	if string(data) != "tstart tstop\n" {
		t.Errorf("content = %q", data)
	}
	if TempDBPath(t) == "" {
		t.Error("empty db path")
	}
}
