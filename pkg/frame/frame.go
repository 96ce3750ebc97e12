// Package frame provides the labeled, read-only numeric matrix that both
// scanners operate on. Rows are samples, columns are features; a missing or
// empty cell is NaN.
//
// Values are stored feature-major in a gonum mat.Dense so a column is one
// contiguous slice. Once a Frame is built nothing mutates it, which is what
// lets scan workers read it concurrently without locks.
package frame

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ajitpratap0/pairscan/pkg/errors"
)

// DefaultIndexName is the index header used when the table has none.
const DefaultIndexName = "index"

// Frame is a row/column labeled matrix of float64 values.
type Frame struct {
	// features × samples; row j of data is column j of the table
	data      *mat.Dense
	index     []string
	columns   []string
	indexName string
	source    string
}

// FromDense builds a Frame from a samples × features matrix. The matrix is
// copied, so later changes to data do not affect the Frame.
func FromDense(data *mat.Dense, index, columns []string) (*Frame, error) {
	if data == nil {
		return nil, errors.New(errors.ErrorTypeEmptyInput, "matrix is nil")
	}
	r, c := data.Dims()
	if r == 0 || c == 0 {
		return nil, errors.New(errors.ErrorTypeEmptyInput, "frame has no rows or no columns")
	}
	if len(index) != r || len(columns) != c {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"label lengths (%d index, %d columns) do not match matrix shape %dx%d",
			len(index), len(columns), r, c)
	}

	t := mat.DenseCopyOf(data.T())
	return &Frame{
		data:      t,
		index:     append([]string(nil), index...),
		columns:   append([]string(nil), columns...),
		indexName: DefaultIndexName,
	}, nil
}

// New builds a Frame from row-major values. Every row must have len(columns)
// values. A nil index is replaced by generated row names.
func New(rows [][]float64, index, columns []string) (*Frame, error) {
	if len(rows) == 0 || len(columns) == 0 {
		return nil, errors.New(errors.ErrorTypeEmptyInput, "frame has no rows or no columns")
	}
	if index == nil {
		index = generatedNames("row_%d", len(rows))
	}
	if len(index) != len(rows) {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"index has %d labels for %d rows", len(index), len(rows))
	}

	nCols := len(columns)
	values := make([]float64, nCols*len(rows))
	for i, row := range rows {
		if len(row) != nCols {
			return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
				"row %d has %d values, want %d", i, len(row), nCols)
		}
		for j, v := range row {
			values[j*len(rows)+i] = v
		}
	}

	return &Frame{
		data:      mat.NewDense(nCols, len(rows), values),
		index:     append([]string(nil), index...),
		columns:   append([]string(nil), columns...),
		indexName: DefaultIndexName,
	}, nil
}

// Rows returns the number of samples.
func (f *Frame) Rows() int {
	_, c := f.data.Dims()
	return c
}

// Cols returns the number of features.
func (f *Frame) Cols() int {
	r, _ := f.data.Dims()
	return r
}

// Shape returns (rows, cols).
func (f *Frame) Shape() (int, int) {
	return f.Rows(), f.Cols()
}

// At returns the value of sample i for feature j.
func (f *Frame) At(i, j int) float64 {
	return f.data.At(j, i)
}

// Column returns a copy of feature j across all samples.
func (f *Frame) Column(j int) []float64 {
	return mat.Row(nil, j, f.data)
}

// ColumnView returns feature j without copying. Callers must not modify
// the returned slice.
func (f *Frame) ColumnView(j int) []float64 {
	return f.data.RawRowView(j)
}

// Matrix returns a read-only samples × features view of the data.
func (f *Frame) Matrix() mat.Matrix {
	return f.data.T()
}

// ColumnName returns the label of feature j.
func (f *Frame) ColumnName(j int) string {
	return f.columns[j]
}

// ColumnNames returns a copy of the feature labels.
func (f *Frame) ColumnNames() []string {
	return append([]string(nil), f.columns...)
}

// IndexNames returns a copy of the sample labels.
func (f *Frame) IndexNames() []string {
	return append([]string(nil), f.index...)
}

// IndexName returns the header of the sample id column.
func (f *Frame) IndexName() string {
	return f.indexName
}

// Source returns the path the frame was loaded from, if any.
func (f *Frame) Source() string {
	return f.source
}

// SizeBytes returns the memory held by the values.
func (f *Frame) SizeBytes() int64 {
	return int64(f.Rows()) * int64(f.Cols()) * 8
}

// Combine applies op elementwise to features i and j and returns a new vector.
func (f *Frame) Combine(i, j int, op Operator) ([]float64, error) {
	return Arithmetic(f.ColumnView(i), f.ColumnView(j), op)
}

// String renders the shape and up to six rows, tab separated.
func (f *Frame) String() string {
	var b strings.Builder
	rows, cols := f.Shape()
	fmt.Fprintf(&b, "Matrix: %d X %d\n", rows, cols)
	b.WriteString(f.indexName)
	for _, name := range f.columns {
		b.WriteByte('\t')
		b.WriteString(name)
	}
	b.WriteByte('\n')

	preview := rows
	if preview > 6 {
		preview = 6
	}
	for i := 0; i < preview; i++ {
		b.WriteString(f.index[i])
		for j := 0; j < cols; j++ {
			fmt.Fprintf(&b, "\t%g", f.At(i, j))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func generatedNames(format string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf(format, i)
	}
	return names
}
