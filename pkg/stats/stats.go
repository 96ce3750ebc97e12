// Package stats implements the correlation measures used by the scanners:
// Pearson (plain and NaN-aware), Spearman and Kendall tau-a.
//
// All functions take two vectors of equal length and never modify them.
// Degenerate inputs (constant vectors, too few samples) yield NaN rather
// than an error; callers treat NaN as "no relationship".
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Pearson returns the product-moment correlation of x and y. The population
// and sample forms give the same ratio. Any NaN in either input yields NaN,
// as does a constant vector.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// PearsonNaNAware computes Pearson over the positions where both x and y are
// defined. It returns NaN when fewer than two complete pairs remain or when
// either filtered variance is exactly zero.
func PearsonNaNAware(x, y []float64) float64 {
	if len(x) != len(y) {
		return math.NaN()
	}

	var sumX, sumY, sumXX, sumYY, sumXY float64
	count := 0
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		sumX += x[i]
		sumY += y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
		sumXY += x[i] * y[i]
		count++
	}
	if count < 2 {
		return math.NaN()
	}

	n := float64(count)
	meanX := sumX / n
	meanY := sumY / n
	cov := sumXY/n - meanX*meanY
	varX := sumXX/n - meanX*meanX
	varY := sumYY/n - meanY*meanY
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / (math.Sqrt(varX) * math.Sqrt(varY))
}

// Rank returns the 0-based position of each element of x in a stable
// ascending sort. Ties keep their input order and are not averaged.
func Rank(x []float64) []float64 {
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[order[a]] < x[order[b]]
	})

	ranks := make([]float64, len(x))
	for pos, i := range order {
		ranks[i] = float64(pos)
	}
	return ranks
}

// Spearman returns Pearson(Rank(x), Rank(y)).
func Spearman(x, y []float64) float64 {
	if len(x) != len(y) {
		return math.NaN()
	}
	return Pearson(Rank(x), Rank(y))
}

// Kendall returns tau-a: (concordant - discordant) / (n(n-1)/2). Pairs tied
// in either vector count as neither. Fewer than two samples yield NaN.
func Kendall(x, y []float64) float64 {
	n := len(x)
	if n != len(y) {
		return math.NaN()
	}

	var concordant, discordant int64
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			d := (x[i] - x[j]) * (y[i] - y[j])
			switch {
			case d > 0:
				concordant++
			case d < 0:
				discordant++
			}
		}
	}

	pairs := float64(n) * float64(n-1) / 2
	return float64(concordant-discordant) / pairs
}

// Correlation dispatches on method. It returns an ErrorTypeInvalidArgument
// error for an unknown method.
func Correlation(x, y []float64, method Method) (float64, error) {
	c, err := NewCorrelator(method, false)
	if err != nil {
		return math.NaN(), err
	}
	return c.Compute(x, y), nil
}
