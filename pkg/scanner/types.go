// Package scanner implements the two pairwise scanners.
//
// CorrScanner enumerates feature pairs in one of three topologies and keeps
// those whose correlation clears a threshold. StableScanner keeps feature
// pairs where one feature exceeds the other in a large enough share of the
// samples, optionally confirmed by the reversed ordering in a second table.
//
// Both scanners own their frames, split the outer loop into blocks, run the
// blocks on a fixed worker pool and merge each worker's private matches once
// the pool has drained. The order of Matches is therefore unspecified.
package scanner

import (
	"math"
	"strconv"
	"strings"

	"github.com/ajitpratap0/pairscan/pkg/errors"
)

// Mode is a correlation scan topology.
type Mode int

const (
	// ModeWithin correlates every column pair i<j of the source table
	ModeWithin Mode = iota
	// ModeCross correlates every source column with every target column
	ModeCross
	// ModeCombination correlates every target column with arithmetic
	// combinations of every source column pair i<j
	ModeCombination
)

// ParseMode accepts "within", "cross" and "combination", with or without a
// "_set"/"_cross_set" suffix, in any case.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "within", "within_set":
		return ModeWithin, nil
	case "cross", "cross_set":
		return ModeCross, nil
	case "combination", "combination_cross_set":
		return ModeCombination, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument,
			"unknown mode %q: must be within, cross or combination", name)
	}
}

// Valid reports whether m is a defined mode.
func (m Mode) Valid() bool {
	return m >= ModeWithin && m <= ModeCombination
}

// NeedsTarget reports whether the mode reads a second table.
func (m Mode) NeedsTarget() bool {
	return m == ModeCross || m == ModeCombination
}

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeWithin:
		return "within"
	case ModeCross:
		return "cross"
	case ModeCombination:
		return "combination"
	default:
		return "unknown"
	}
}

// Match is one accepted correlation.
//
// In ModeWithin, I<J are source columns. In ModeCross, I is a source column
// and J a target column. In ModeCombination, K is the target column and I<J
// are the combined source columns; K is zero in the other modes.
type Match struct {
	K      int
	I      int
	J      int
	Scaled int64
}

// Corr returns the correlation as a float at fixed-point precision.
func (m Match) Corr() float64 {
	return float64(m.Scaled) / fixedPointScale
}

// StableMatch is one accepted stable pair: Greater exceeds Lesser in Count
// source samples. RevCount is the supporting count in the target table and
// zero without one.
type StableMatch struct {
	Greater  int
	Lesser   int
	Count    int
	RevCount int
}

const fixedPointScale = 1000

// Scale converts a correlation to fixed point: round(v*1000), halves away
// from zero. ok is false for NaN and infinite values.
func Scale(v float64) (scaled int64, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int64(math.Round(v * fixedPointScale)), true
}

// ScaleThreshold converts a threshold to the fixed-point value compared
// against |Scale(corr)|.
func ScaleThreshold(t float64) int64 {
	return int64(math.Round(t * fixedPointScale))
}

// Exceeds reports whether |scaled| is strictly greater than threshold.
func Exceeds(scaled, threshold int64) bool {
	if scaled < 0 {
		scaled = -scaled
	}
	return scaled > threshold
}

func formatCorr(scaled int64) string {
	return strconv.FormatFloat(float64(scaled)/fixedPointScale, 'f', 3, 64)
}

func formatRatio(count, rows int) string {
	return strconv.FormatFloat(float64(count)/float64(rows), 'f', -1, 64)
}
