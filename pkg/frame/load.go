package frame

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/ajitpratap0/pairscan/pkg/compression"
	"github.com/ajitpratap0/pairscan/pkg/errors"
)

// LoadOptions controls how a table file is interpreted.
// The zero value reads a header row and a sample id column.
type LoadOptions struct {
	// NoHeader treats the first row as data and generates column_<n> names
	NoHeader bool `yaml:"no_header" json:"no_header"`
	// NoIndex treats the first column as data and generates row_<n> names
	NoIndex bool `yaml:"no_index" json:"no_index"`
	// Delimiter overrides the delimiter inferred from the file extension
	Delimiter rune `yaml:"-" json:"-"`
	// Sheet selects a workbook sheet; the first sheet is used when empty
	Sheet string `yaml:"sheet" json:"sheet"`
}

// recordSource yields raw table records with their 1-based line number.
// Next returns io.EOF after the last record.
type recordSource interface {
	Next() ([]string, int, error)
}

// Load reads a delimited or workbook table into a Frame.
//
// Errors:
//   - ErrorTypeFileFormat when the format cannot be inferred from path
//   - ErrorTypeIO when the file cannot be opened or read
//   - ErrorTypeParse when a non-empty cell is not a float literal
//   - ErrorTypeEmptyInput when no data rows or no feature columns remain
func Load(path string, opts LoadOptions) (*Frame, error) {
	format, err := DetectFormat(path)
	if err != nil {
		if opts.Delimiter == 0 {
			return nil, err
		}
		alg, _ := compression.FromPath(path)
		format = Format{Kind: Delimited, Compression: alg}
	}
	if opts.Delimiter != 0 {
		format.Kind = Delimited
		format.Delimiter = opts.Delimiter
	}

	file, err := os.Open(path) //nolint:gosec // G304: input path is chosen by the operator
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "could not open file").WithDetail("path", path)
	}
	defer file.Close()

	rc, err := compression.NewReader(bufio.NewReaderSize(file, 1<<16), format.Compression)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "could not decompress file").WithDetail("path", path)
	}
	defer rc.Close()

	var src recordSource
	switch format.Kind {
	case Workbook:
		src, err = newWorkbookSource(rc, opts.Sheet)
		if err != nil {
			return nil, err
		}
	default:
		src = newDelimitedSource(rc, format.Delimiter)
	}

	f, err := build(src, opts)
	if err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			e.WithDetail("path", path)
		}
		return nil, err
	}
	f.source = path
	return f, nil
}

// Read parses a delimited table from r. It is Load without file handling.
func Read(r io.Reader, delimiter rune, opts LoadOptions) (*Frame, error) {
	return build(newDelimitedSource(r, delimiter), opts)
}

func build(src recordSource, opts LoadOptions) (*Frame, error) {
	var (
		header  []string
		records [][]string
		lines   []int
	)

	first := true
	for {
		rec, line, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		if first {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			first = false
			if !opts.NoHeader {
				header = rec
				continue
			}
		}
		records = append(records, rec)
		lines = append(lines, line)
	}

	offset := 1
	if opts.NoIndex {
		offset = 0
	}

	width := len(header) - offset
	for _, rec := range records {
		if n := len(rec) - offset; n > width {
			width = n
		}
	}
	if len(records) == 0 || width <= 0 {
		return nil, errors.New(errors.ErrorTypeEmptyInput, "table has no data rows or no feature columns").
			WithDetail("rows", len(records)).
			WithDetail("cols", max(width, 0))
	}

	n := len(records)
	values := make([]float64, width*n)
	index := make([]string, n)
	for i, rec := range records {
		if offset == 1 {
			index[i] = rec[0]
		} else {
			index[i] = fmt.Sprintf("row_%d", i)
		}
		for j := 0; j < width; j++ {
			k := j + offset
			v := math.NaN()
			if k < len(rec) {
				parsed, err := parseCell(rec[k])
				if err != nil {
					return nil, errors.Wrap(err, errors.ErrorTypeParse, "cell is not a number").
						WithDetail("line", lines[i]).
						WithDetail("column", k+1).
						WithDetail("value", rec[k])
				}
				v = parsed
			}
			values[j*n+i] = v
		}
	}

	columns := make([]string, width)
	for j := range columns {
		if k := j + offset; header != nil && k < len(header) {
			columns[j] = header[k]
		} else {
			columns[j] = fmt.Sprintf("column_%d", j)
		}
	}

	indexName := DefaultIndexName
	if header != nil && offset == 1 && header[0] != "" {
		indexName = header[0]
	}

	return &Frame{
		data:      mat.NewDense(width, n, values),
		index:     index,
		columns:   columns,
		indexName: indexName,
	}, nil
}

// parseCell converts one table cell. Empty cells are NaN; out-of-range
// literals saturate to ±Inf or 0 as ParseFloat reports them.
func parseCell(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.EqualFold(s, "NA") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if stderrors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return v, nil
		}
		return 0, err
	}
	return v, nil
}

type delimitedSource struct {
	r *csv.Reader
}

func newDelimitedSource(r io.Reader, delimiter rune) *delimitedSource {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &delimitedSource{r: cr}
}

func (s *delimitedSource) Next() ([]string, int, error) {
	rec, err := s.r.Read()
	if err == io.EOF {
		return nil, 0, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if stderrors.As(err, &pe) {
			return nil, 0, errors.Wrap(err, errors.ErrorTypeParse, "malformed record").
				WithDetail("line", pe.Line)
		}
		return nil, 0, errors.Wrap(err, errors.ErrorTypeIO, "could not read table")
	}
	line, _ := s.r.FieldPos(0)
	return rec, line, nil
}

type workbookSource struct {
	rows [][]string
	pos  int
}

func newWorkbookSource(r io.Reader, sheet string) (*workbookSource, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "could not open workbook")
	}
	defer wb.Close()

	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New(errors.ErrorTypeEmptyInput, "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFileFormat, "could not read sheet").
			WithDetail("sheet", sheet)
	}
	return &workbookSource{rows: rows}, nil
}

func (s *workbookSource) Next() ([]string, int, error) {
	if s.pos >= len(s.rows) {
		return nil, 0, io.EOF
	}
	s.pos++
	return s.rows[s.pos-1], s.pos, nil
}
