// Package testutil provides testing utilities for pairscan
package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/pairscan/pkg/logger"
)

// TestLogger creates a test logger that writes to the test output and
// installs it as the global logger until the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	l := zaptest.NewLogger(t)
	prev := logger.Get()
	logger.Set(l)
	t.Cleanup(func() { logger.Set(prev) })
	return l
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// WriteFixture writes content to name inside a per-test temp directory and
// returns the full path.
func WriteFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// MatrixCSV renders a samples × features matrix as a table with an "id"
// index column, features named f0..fN and samples named s0..sN.
func MatrixCSV(rows [][]float64, delimiter string) string {
	var b strings.Builder
	b.WriteString("id")
	if len(rows) > 0 {
		for j := range rows[0] {
			fmt.Fprintf(&b, "%sf%d", delimiter, j)
		}
	}
	b.WriteByte('\n')
	for i, row := range rows {
		fmt.Fprintf(&b, "s%d", i)
		for _, v := range row {
			b.WriteString(delimiter)
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RandomMatrix returns a rows × cols matrix of standard normal values drawn
// from a seeded source, so every call with the same seed is identical.
func RandomMatrix(seed int64, rows, cols int) [][]float64 {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test data
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = rng.NormFloat64()
		}
	}
	return m
}
