package series

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stateSeries() Series {
	return Series{
		Times:   []float64{0, 100, 200},
		Stops:   []float64{100, 200, 300},
		Strings: []string{"NPNT", "NMAN", "NPNT"},
	}
}

func TestSeries_Basics(t *testing.T) {
	s := Numeric([]float64{1, 2, 3}, []float64{10, 20, 30}, "V")
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.IsString())
	assert.False(t, s.IsStepwise())
	assert.True(t, s.Valid(1))

	st := stateSeries()
	assert.Equal(t, 3, st.Len())
	assert.True(t, st.IsString())
	assert.True(t, st.IsStepwise())

	s.Mask = []bool{true, false, true}
	assert.False(t, s.Valid(1))
}

func TestSeries_Index(t *testing.T) {
	st := stateSeries()
	tests := []struct {
		t    float64
		want int
	}{
		{-5, 0}, {0, 0}, {50, 0}, {100, 1}, {199.9, 1}, {250, 2}, {1000, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, st.Index(tt.t), "Index(%v)", tt.t)
	}
	assert.Equal(t, -1, Series{}.Index(3))
}

func TestSeries_ValueAt(t *testing.T) {
	s := Numeric([]float64{0, 10}, []float64{0, 100}, "")
	assert.InDelta(t, 50, s.ValueAt(5), 1e-12)
	assert.InDelta(t, 100, s.ValueAt(20), 1e-12)

	step := Series{Times: []float64{0, 10}, Stops: []float64{10, 20}, Values: []float64{1, 2}}
	assert.Equal(t, 1.0, step.ValueAt(5))
	assert.Equal(t, 2.0, step.ValueAt(15))

	assert.True(t, math.IsNaN(stateSeries().ValueAt(5)))
	assert.True(t, math.IsNaN(Series{}.ValueAt(5)))
}

func TestSeries_StringAt(t *testing.T) {
	st := stateSeries()
	assert.Equal(t, "NMAN", st.StringAt(150))
	assert.Equal(t, "", Numeric([]float64{1}, []float64{1}, "").StringAt(1))
}

func TestSeries_SelectAndBetween(t *testing.T) {
	st := stateSeries()
	st.Mask = []bool{true, true, false}
	got := st.Between(50, 200)
	assert.Equal(t, []float64{100, 200}, got.Times)
	assert.Equal(t, []float64{200, 300}, got.Stops)
	assert.Equal(t, []string{"NMAN", "NPNT"}, got.Strings)
	assert.Equal(t, []bool{true, false}, got.Mask)

	n := Numeric([]float64{1, 2, 3}, []float64{4, 5, 6}, "A").Select([]bool{false, true, true})
	assert.Equal(t, []float64{5, 6}, n.Values)
	assert.Equal(t, "A", n.Unit)
}

func TestSeries_Span(t *testing.T) {
	lo, hi := stateSeries().Span()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 300.0, hi)

	lo, hi = Numeric([]float64{5, 9}, []float64{0, 0}, "").Span()
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 9.0, hi)

	lo, _ = Series{}.Span()
	assert.True(t, math.IsNaN(lo))
}

func TestSeries_Dates(t *testing.T) {
	s := Numeric([]float64{63072064.184}, []float64{1}, "")
	assert.Equal(t, []string{"2000:001:00:00:00.000"}, s.Dates())
}
