package frame

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ajitpratap0/pairscan/pkg/compression"
	"github.com/ajitpratap0/pairscan/pkg/errors"
	"github.com/ajitpratap0/pairscan/pkg/testutil"
)

func TestLoadDelimited(t *testing.T) {
	path := testutil.WriteFixture(t, "expr.csv", "gene,a,b,c\ns1,1,2,3\ns2,4,5,6\n")

	f, err := Load(path, LoadOptions{})
	require.NoError(t, err)

	rows, cols := f.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []string{"a", "b", "c"}, f.ColumnNames())
	assert.Equal(t, []string{"s1", "s2"}, f.IndexNames())
	assert.Equal(t, "gene", f.IndexName())
	assert.Equal(t, path, f.Source())
	assert.Equal(t, []float64{2, 5}, f.Column(1))
	assert.Equal(t, 6.0, f.At(1, 2))
}

func TestLoadMissingCells(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"trailing delimiter", "id\ta\tb\tc\nr1\t1\t2\t\n"},
		{"empty cell", "id\ta\tb\tc\nr1\t1\t2\t \n"},
		{"short row", "id\ta\tb\tc\nr1\t1\t2\n"},
		{"NA literal", "id\ta\tb\tc\nr1\t1\t2\tNA\n"},
		{"lowercase na", "id\ta\tb\tc\nr1\t1\t2\tna\n"},
		{"NaN literal", "id\ta\tb\tc\nr1\t1\t2\tNaN\n"},
		{"nan literal", "id\ta\tb\tc\nr1\t1\t2\tnan\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFixture(t, "m.tsv", tt.content)
			f, err := Load(path, LoadOptions{})
			require.NoError(t, err)
			require.Equal(t, 3, f.Cols())
			assert.Equal(t, 1.0, f.At(0, 0))
			assert.Equal(t, 2.0, f.At(0, 1))
			assert.True(t, math.IsNaN(f.At(0, 2)))
		})
	}
}

func TestReadNALiteral(t *testing.T) {
	f, err := Read(strings.NewReader("id,a,b\nr1,1,NA\nr2,2,3\n"), ',', LoadOptions{})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f.At(0, 1)))
	assert.Equal(t, 3.0, f.At(1, 1))
}

func TestLoadGeneratedNames(t *testing.T) {
	path := testutil.WriteFixture(t, "bare.txt", "1\t2\n3\t4\n5\t6\n")

	f, err := Load(path, LoadOptions{NoHeader: true, NoIndex: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"column_0", "column_1"}, f.ColumnNames())
	assert.Equal(t, []string{"row_0", "row_1", "row_2"}, f.IndexNames())
	assert.Equal(t, DefaultIndexName, f.IndexName())
}

func TestLoadWiderDataThanHeader(t *testing.T) {
	f, err := Read(strings.NewReader("id,a\nr1,1,2\n"), ',', LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "column_1"}, f.ColumnNames())
}

func TestLoadStripsByteOrderMark(t *testing.T) {
	f, err := Read(strings.NewReader("\ufeffprobe,x\np1,0.5\n"), ',', LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "probe", f.IndexName())
}

func TestLoadOutOfRangeLiteral(t *testing.T) {
	f, err := Read(strings.NewReader("id,x\nr1,1e400\nr2,-1e400\n"), ',', LoadOptions{})
	require.NoError(t, err)
	assert.True(t, math.IsInf(f.At(0, 0), 1))
	assert.True(t, math.IsInf(f.At(1, 0), -1))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantType errors.ErrorType
	}{
		{"unknown extension", "data.json", "{}", errors.ErrorTypeFileFormat},
		{"non numeric cell", "bad.csv", "id,a\nr1,abc\n", errors.ErrorTypeParse},
		{"header only", "head.csv", "id,a,b\n", errors.ErrorTypeEmptyInput},
		{"index only", "index.csv", "id\nr1\nr2\n", errors.ErrorTypeEmptyInput},
		{"empty file", "empty.csv", "", errors.ErrorTypeEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFixture(t, tt.file, tt.content)
			_, err := Load(path, LoadOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.wantType, errors.TypeOf(err))
		})
	}
}

func TestLoadParseErrorDetails(t *testing.T) {
	path := testutil.WriteFixture(t, "bad.csv", "id,a,b\nr1,1,2\nr2,3,oops\n")

	_, err := Load(path, LoadOptions{})
	require.Error(t, err)

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 3, e.Details["line"])
	assert.Equal(t, 3, e.Details["column"])
	assert.Equal(t, "oops", e.Details["value"])
	assert.Equal(t, path, e.Details["path"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), LoadOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeIO, errors.TypeOf(err))
}

func TestLoadDelimiterOverride(t *testing.T) {
	path := testutil.WriteFixture(t, "semi.dat", "id;a;b\nr1;1;2\n")

	f, err := Load(path, LoadOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.ColumnNames())
}

func TestLoadCompressed(t *testing.T) {
	var buf bytes.Buffer
	w, err := compression.NewWriter(&buf, compression.Gzip, compression.Default)
	require.NoError(t, err)
	_, err = w.Write([]byte("id,a,b\nr1,1,2\nr2,3,4\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "expr.csv.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	f, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, f.Column(1))
}

func TestLoadWorkbook(t *testing.T) {
	wb := excelize.NewFile()
	defer wb.Close()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &[]interface{}{"id", "a", "b"}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A2", &[]interface{}{"r1", 1.5, 2}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A3", &[]interface{}{"r2", -3, 4.25}))

	path := filepath.Join(t.TempDir(), "expr.xlsx")
	require.NoError(t, wb.SaveAs(path))

	f, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.ColumnNames())
	assert.Equal(t, []string{"r1", "r2"}, f.IndexNames())
	assert.Equal(t, []float64{1.5, -3}, f.Column(0))
	assert.Equal(t, []float64{2, 4.25}, f.Column(1))

	_, err = Load(path, LoadOptions{Sheet: "Missing"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeFileFormat, errors.TypeOf(err))
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path  string
		kind  Kind
		delim rune
		alg   compression.Algorithm
	}{
		{"a.csv", Delimited, ',', compression.None},
		{"a.TSV", Delimited, '\t', compression.None},
		{"a.txt.zst", Delimited, '\t', compression.Zstd},
		{"a.xlsx", Workbook, 0, compression.None},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, err := DetectFormat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, format.Kind)
			assert.Equal(t, tt.delim, format.Delimiter)
			assert.Equal(t, tt.alg, format.Compression)
		})
	}

	_, err := Delimiter("out.xlsx")
	assert.Equal(t, errors.ErrorTypeFileFormat, errors.TypeOf(err))
}
