package frame

import (
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/ajitpratap0/pairscan/pkg/errors"
)

// Operator is an elementwise arithmetic operation between two features.
type Operator int

const (
	// Add computes a + b
	Add Operator = iota
	// Subtract computes a - b
	Subtract
	// Multiply computes a * b
	Multiply
	// Divide computes a / b (IEEE semantics, division by zero yields ±Inf or NaN)
	Divide
)

var operatorNames = map[string]Operator{
	"add":      Add,
	"subtract": Subtract,
	"multiply": Multiply,
	"divide":   Divide,
	"+":        Add,
	"-":        Subtract,
	"*":        Multiply,
	"/":        Divide,
}

// ParseOperator converts a name ("add", "subtract", "multiply", "divide") or
// a symbol to an Operator. Matching is case-insensitive.
func ParseOperator(name string) (Operator, error) {
	op, ok := operatorNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument,
			"unknown operator %q: must be add, subtract, multiply or divide", name)
	}
	return op, nil
}

// Valid reports whether op is one of the four defined operators.
func (op Operator) Valid() bool {
	return op >= Add && op <= Divide
}

// Symbol returns the single character used in result headers.
func (op Operator) Symbol() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

// String returns the operator name.
func (op Operator) String() string {
	switch op {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Multiply:
		return "multiply"
	case Divide:
		return "divide"
	default:
		return "unknown"
	}
}

// Arithmetic applies op elementwise to a and b and returns a new vector.
// Neither input is modified.
func Arithmetic(a, b []float64, op Operator) ([]float64, error) {
	if len(a) != len(b) {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"operand lengths differ: %d vs %d", len(a), len(b))
	}
	dst := make([]float64, len(a))
	if err := ArithmeticTo(dst, a, b, op); err != nil {
		return nil, err
	}
	return dst, nil
}

// ArithmeticTo is Arithmetic writing into dst, which must have the operands'
// length. Scan workers use it to reuse one buffer per worker.
func ArithmeticTo(dst, a, b []float64, op Operator) error {
	if len(a) != len(b) || len(dst) != len(a) {
		return errors.Newf(errors.ErrorTypeInvalidArgument,
			"operand lengths differ: dst %d, a %d, b %d", len(dst), len(a), len(b))
	}
	switch op {
	case Add:
		floats.AddTo(dst, a, b)
	case Subtract:
		floats.SubTo(dst, a, b)
	case Multiply:
		floats.MulTo(dst, a, b)
	case Divide:
		floats.DivTo(dst, a, b)
	default:
		return errors.Newf(errors.ErrorTypeInvalidArgument, "unknown operator %d", int(op))
	}
	return nil
}
