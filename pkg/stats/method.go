package stats

import (
	"strings"

	"github.com/ajitpratap0/pairscan/pkg/errors"
)

// Method selects a correlation measure.
type Method int

const (
	// MethodPearson is the product-moment correlation
	MethodPearson Method = iota
	// MethodSpearman is Pearson over ranks
	MethodSpearman
	// MethodKendall is Kendall's tau-a
	MethodKendall
)

// ParseMethod converts "pearson", "spearman" or "kendall" (any case) to a Method.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pearson":
		return MethodPearson, nil
	case "spearman":
		return MethodSpearman, nil
	case "kendall":
		return MethodKendall, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument,
			"unknown correlation method %q: must be pearson, spearman or kendall", name)
	}
}

// String returns the lower-case method name.
func (m Method) String() string {
	switch m {
	case MethodPearson:
		return "pearson"
	case MethodSpearman:
		return "spearman"
	case MethodKendall:
		return "kendall"
	default:
		return "unknown"
	}
}

// Correlator computes one correlation coefficient. Implementations are
// stateless and safe for concurrent use.
type Correlator interface {
	Compute(x, y []float64) float64
}

// CorrelatorFunc adapts a plain function to the Correlator interface.
type CorrelatorFunc func(x, y []float64) float64

// Compute calls f(x, y).
func (f CorrelatorFunc) Compute(x, y []float64) float64 {
	return f(x, y)
}

// NewCorrelator returns the Correlator for method. With skipNaN, Pearson
// ignores positions where either vector is NaN; the rank-based methods are
// unaffected.
func NewCorrelator(method Method, skipNaN bool) (Correlator, error) {
	switch method {
	case MethodPearson:
		if skipNaN {
			return CorrelatorFunc(PearsonNaNAware), nil
		}
		return CorrelatorFunc(Pearson), nil
	case MethodSpearman:
		return CorrelatorFunc(Spearman), nil
	case MethodKendall:
		return CorrelatorFunc(Kendall), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown correlation method %d", int(method))
	}
}
