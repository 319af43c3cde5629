package coerce

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEnsureTuple(t *testing.T) {
	t.Run("scalars are wrapped", func(t *testing.T) {
		for _, x := range []any{1, 2.5, "1dpamzt", true, nil, map[string]int{"a": 1}} {
			got := EnsureTuple(x)
			require.Equal(t, 1, got.Len(), "input %v", x)
			assert.Equal(t, x, got.At(0))
		}
	})

	t.Run("tuple returned unchanged", func(t *testing.T) {
		in := NewTuple("msids", "1deamzt")
		got := EnsureTuple(in)
		assert.True(t, in.Equal(got))
	})

	t.Run("slices and arrays keep order", func(t *testing.T) {
		got := EnsureTuple([]string{"a", "b", "c"})
		assert.Equal(t, []any{"a", "b", "c"}, got.Items())

		got = EnsureTuple([3]int{3, 1, 2})
		assert.Equal(t, []any{3, 1, 2}, got.Items())

		got = EnsureTuple([]any{1, "x"})
		assert.Equal(t, []any{1, "x"}, got.Items())
	})

	t.Run("items is a copy", func(t *testing.T) {
		tup := NewTuple(1, 2)
		items := tup.Items()
		items[0] = 99
		assert.Equal(t, 1, tup.At(0))
	})
}

func TestTupleEqual(t *testing.T) {
	assert.True(t, NewTuple(1, "a").Equal(NewTuple(1, "a")))
	assert.False(t, NewTuple(1, "a").Equal(NewTuple("a", 1)))
	assert.False(t, NewTuple(1).Equal(NewTuple(1, 1)))
}

func TestEnsureList(t *testing.T) {
	assert.Equal(t, []any{nil}, EnsureList(nil))
	assert.Equal(t, []any{"1dpamzt"}, EnsureList("1dpamzt"))
	assert.Equal(t, []any{4.0}, EnsureList(4.0))
	assert.Equal(t, []any{"a", "b"}, EnsureList([]string{"a", "b"}))
	assert.Equal(t, []any{1, 2}, EnsureList(NewTuple(1, 2)))

	in := []any{"x", 1}
	out := EnsureList(in)
	out[0] = "y"
	assert.Equal(t, "y", in[0], "[]any should pass through without copying")
}

func TestEnsureSlice(t *testing.T) {
	assert.Equal(t, []string{"pitch"}, EnsureSlice[string]("pitch"))
	assert.Equal(t, []string{"a", "b"}, EnsureSlice[string]([]string{"a", "b"}))
	assert.Equal(t, []string{""}, EnsureSlice[string](nil))
	assert.Equal(t, []string{"a", "c"}, EnsureSlice[string]([]any{"a", 2, "c"}))
	assert.Equal(t, []string{"q1", "q2"}, EnsureSlice[string]([2]string{"q1", "q2"}))
	assert.Nil(t, EnsureSlice[string](42))
}

func TestEnsureArray(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		assert.Equal(t, []float64{3}, EnsureArray(3))
		assert.Equal(t, []float64{2.5}, EnsureArray(float32(2.5)))
		assert.Equal(t, []float64{1}, EnsureArray(true))
	})

	t.Run("zero dimensional array", func(t *testing.T) {
		got := EnsureArray(mat.NewDense(1, 1, []float64{7.5}))
		assert.Equal(t, []float64{7.5}, got)
	})

	t.Run("sequences keep length", func(t *testing.T) {
		for _, s := range []any{
			[]int{1, 2, 3},
			[]float64{1, 2, 3},
			[3]int64{1, 2, 3},
			NewTuple(1, 2.0, uint8(3)),
			[]any{1, 2, 3},
		} {
			assert.Equal(t, []float64{1, 2, 3}, EnsureArray(s), "input %#v", s)
		}
	})

	t.Run("float slices are copied", func(t *testing.T) {
		in := []float64{1, 2}
		out := EnsureArray(in)
		out[0] = 10
		assert.Equal(t, 1.0, in[0])
	})

	t.Run("vector is copied", func(t *testing.T) {
		v := mat.NewVecDense(3, []float64{4, 5, 6})
		out := EnsureArray(v)
		assert.Equal(t, []float64{4, 5, 6}, out)
		out[0] = 0
		assert.Equal(t, 4.0, v.AtVec(0))
	})

	t.Run("matrix flattened row major", func(t *testing.T) {
		m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
		assert.Equal(t, []float64{1, 2, 3, 4}, EnsureArray(m))
	})

	t.Run("non numeric becomes NaN", func(t *testing.T) {
		got := EnsureArray([]any{1, "x", nil})
		require.Len(t, got, 3)
		assert.Equal(t, 1.0, got[0])
		assert.True(t, math.IsNaN(got[1]))
		assert.True(t, math.IsNaN(got[2]))
		assert.True(t, math.IsNaN(EnsureArray(nil)[0]))
	})
}
