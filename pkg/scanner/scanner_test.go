package scanner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ajitpratap0/pairscan/pkg/frame"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustFrame(t *testing.T, columns []string, cols ...[]float64) *frame.Frame {
	t.Helper()
	require.NotEmpty(t, cols)
	rows := make([][]float64, len(cols[0]))
	for i := range rows {
		rows[i] = make([]float64, len(cols))
		for j, col := range cols {
			rows[i][j] = col[i]
		}
	}
	f, err := frame.New(rows, nil, columns)
	require.NoError(t, err)
	return f
}

func TestScale(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{1, 1000},
		{-1, -1000},
		{0.0625, 63}, // exact half rounds away from zero
		{-0.0625, -63},
		{0.3, 300},
		{0.9534, 953},
	}

	for _, tt := range tests {
		got, ok := Scale(tt.in)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, "Scale(%v)", tt.in)
	}
}

func TestScaleRejectsNonFinite(t *testing.T) {
	_, ok := Scale(math.NaN())
	assert.False(t, ok)
	_, ok = Scale(math.Inf(1))
	assert.False(t, ok)
}

func TestExceeds(t *testing.T) {
	assert.True(t, Exceeds(301, 300))
	assert.True(t, Exceeds(-301, 300))
	assert.False(t, Exceeds(300, 300))
	assert.False(t, Exceeds(-300, 300))
	assert.True(t, Exceeds(0, -1))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"within": ModeWithin, "CROSS_SET": ModeCross, "combination_cross_set": ModeCombination,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseMode("diagonal")
	assert.Error(t, err)
	assert.True(t, ModeCross.NeedsTarget())
	assert.False(t, ModeWithin.NeedsTarget())
}
