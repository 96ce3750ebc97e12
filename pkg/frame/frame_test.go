package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ajitpratap0/pairscan/pkg/errors"
)

func TestNew(t *testing.T) {
	f, err := New([][]float64{{1, 2}, {3, 4}, {5, 6}}, nil, []string{"x", "y"})
	require.NoError(t, err)

	assert.Equal(t, 3, f.Rows())
	assert.Equal(t, 2, f.Cols())
	assert.Equal(t, []string{"row_0", "row_1", "row_2"}, f.IndexNames())
	assert.Equal(t, []float64{2, 4, 6}, f.ColumnView(1))
	assert.Equal(t, "y", f.ColumnName(1))
	assert.Equal(t, int64(48), f.SizeBytes())

	r, c := f.Matrix().Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 5.0, f.Matrix().At(2, 0))
}

func TestNewRejectsBadShapes(t *testing.T) {
	_, err := New(nil, nil, []string{"x"})
	assert.Equal(t, errors.ErrorTypeEmptyInput, errors.TypeOf(err))

	_, err = New([][]float64{{1, 2}, {3}}, nil, []string{"x", "y"})
	assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))

	_, err = New([][]float64{{1}}, []string{"a", "b"}, []string{"x"})
	assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))
}

func TestFromDenseCopies(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	f, err := FromDense(m, []string{"a", "b"}, []string{"x", "y"})
	require.NoError(t, err)

	m.Set(0, 0, 100)
	assert.Equal(t, 1.0, f.At(0, 0))
	assert.Equal(t, []float64{2, 4}, f.Column(1))

	_, err = FromDense(m, []string{"a"}, []string{"x", "y"})
	assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))

	_, err = FromDense(nil, nil, nil)
	assert.Equal(t, errors.ErrorTypeEmptyInput, errors.TypeOf(err))
}

func TestColumnIsACopy(t *testing.T) {
	f, err := New([][]float64{{1}, {2}}, nil, []string{"x"})
	require.NoError(t, err)

	col := f.Column(0)
	col[0] = 42
	assert.Equal(t, 1.0, f.At(0, 0))
}

func TestCombine(t *testing.T) {
	f, err := New([][]float64{{6, 3}, {1, 0}}, nil, []string{"a", "b"})
	require.NoError(t, err)

	got, err := f.Combine(0, 1, Divide)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got[0])
	assert.True(t, math.IsInf(got[1], 1))
	assert.Equal(t, []float64{6, 1}, f.Column(0))
}

func TestString(t *testing.T) {
	f, err := New([][]float64{{1, 2}}, []string{"s"}, []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, "Matrix: 1 X 2\nindex\tx\ty\ns\t1\t2\n", f.String())
}
